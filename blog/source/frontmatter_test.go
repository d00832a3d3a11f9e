package source

import (
	"errors"
	"testing"

	"github.com/dfryer1193/flog/blog/domain"
)

func TestParseFile(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		raw          string
		wantSlug     string
		wantTitle    string
		wantCategory string
		wantContent  string
		wantHidden   bool
	}{
		{
			name:         "front-matter title",
			path:         "hello.md",
			raw:          "---\ntitle: Hello, World\n---\nBody text\n",
			wantSlug:     "hello",
			wantTitle:    "Hello, World",
			wantCategory: "",
			wantContent:  "Body text\n",
		},
		{
			name:         "category from directory",
			path:         "tech/go/generics.md",
			raw:          "# Generics\n\nType parameters.",
			wantSlug:     "generics",
			wantTitle:    "Generics",
			wantCategory: "tech/go",
			wantContent:  "# Generics\n\nType parameters.",
		},
		{
			name:         "front-matter overrides",
			path:         "drafts/2024-01-01.md",
			raw:          "---\nslug: new-year\ncategory: life\nhidden: true\n---\nHappy new year",
			wantSlug:     "new-year",
			wantTitle:    "2024-01-01",
			wantCategory: "life",
			wantContent:  "Happy new year",
			wantHidden:   true,
		},
		{
			name:        "no front-matter, no heading",
			path:        "plain.md",
			raw:         "just words",
			wantSlug:    "plain",
			wantTitle:   "plain",
			wantContent: "just words",
		},
		{
			name:        "unclosed front-matter is body",
			path:        "open.md",
			raw:         "---\ntitle: nope\nstill body",
			wantSlug:    "open",
			wantTitle:   "open",
			wantContent: "---\ntitle: nope\nstill body",
		},
		{
			name:        "crlf delimiters",
			path:        "win.md",
			raw:         "---\r\ntitle: Windows\r\n---\r\nBody",
			wantSlug:    "win",
			wantTitle:   "Windows",
			wantContent: "Body",
		},
		{
			name:        "empty front-matter",
			path:        "empty.md",
			raw:         "---\n---\n# Heading\n",
			wantSlug:    "empty",
			wantTitle:   "Heading",
			wantContent: "# Heading\n",
		},
		{
			name:        "byte order mark",
			path:        "bom.md",
			raw:         "\xef\xbb\xbf---\ntitle: BOM\n---\nx",
			wantSlug:    "bom",
			wantTitle:   "BOM",
			wantContent: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFile(tt.path, []byte(tt.raw))
			if err != nil {
				t.Fatalf("ParseFile failed: %v", err)
			}
			if got.Slug != tt.wantSlug {
				t.Errorf("Slug = %q, want %q", got.Slug, tt.wantSlug)
			}
			if got.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", got.Title, tt.wantTitle)
			}
			if got.Category != tt.wantCategory {
				t.Errorf("Category = %q, want %q", got.Category, tt.wantCategory)
			}
			if got.Content != tt.wantContent {
				t.Errorf("Content = %q, want %q", got.Content, tt.wantContent)
			}
			if got.Hidden != tt.wantHidden {
				t.Errorf("Hidden = %v, want %v", got.Hidden, tt.wantHidden)
			}
			if got.Path != tt.path {
				t.Errorf("Path = %q, want %q", got.Path, tt.path)
			}
			if len(got.Hash) != 64 {
				t.Errorf("Hash = %q, want 64 hex chars", got.Hash)
			}
		})
	}
}

func TestParseFile_HashTracksBytes(t *testing.T) {
	a, _ := ParseFile("a.md", []byte("one"))
	b, _ := ParseFile("a.md", []byte("one"))
	c, _ := ParseFile("a.md", []byte("two"))
	if a.Hash != b.Hash {
		t.Errorf("hash differs for identical input: %s vs %s", a.Hash, b.Hash)
	}
	if a.Hash == c.Hash {
		t.Error("hash equal for different input")
	}
}

func TestParseFile_InvalidYAML(t *testing.T) {
	_, err := ParseFile("bad.md", []byte("---\ntitle: [unclosed\n---\nbody"))
	var ioErr *domain.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("ParseFile() error = %v, want IOError", err)
	}
	if ioErr.Path != "bad.md" {
		t.Errorf("Path = %q, want %q", ioErr.Path, "bad.md")
	}
}
