package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/google/go-github/v75/github"
)

func newTestSource(t *testing.T, mux *http.ServeMux, dir string) *GithubSource {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	client := github.NewClient(nil)
	base, err := url.Parse(server.URL + "/")
	if err != nil {
		t.Fatalf("failed to parse server URL: %v", err)
	}
	client.BaseURL = base
	return NewGithubSource(client, "owner", "blog", "main", dir)
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("failed to encode response: %v", err)
	}
}

func fileHandler(t *testing.T, content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("ref"); got != "main" {
			t.Errorf("ref = %v, want main", got)
		}
		writeJSON(t, w, map[string]any{
			"type":     "file",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte(content)),
		})
	}
}

func TestGithubSource_ListSourceFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/owner/blog/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("recursive") == "" {
			t.Error("tree request is not recursive")
		}
		writeJSON(t, w, map[string]any{
			"sha": "abc",
			"tree": []map[string]any{
				{"path": "README.md", "type": "blob"},
				{"path": "posts", "type": "tree"},
				{"path": "posts/hello.md", "type": "blob"},
				{"path": "posts/go/generics.md", "type": "blob"},
				{"path": "posts/.drafts/secret.md", "type": "blob"},
				{"path": "posts/image.png", "type": "blob"},
			},
		})
	})
	mux.HandleFunc("/repos/owner/blog/contents/posts/hello.md", fileHandler(t, "# Hello\n\nbody"))
	mux.HandleFunc("/repos/owner/blog/contents/posts/go/generics.md", fileHandler(t, "---\ntitle: Generics\n---\ntext"))

	files, err := newTestSource(t, mux, "/posts/").ListSourceFiles(context.Background())
	if err != nil {
		t.Fatalf("ListSourceFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("len(files) = %d, want 2", len(files))
	}

	want := map[string]struct{ path, title, category string }{
		"hello":    {"hello.md", "Hello", ""},
		"generics": {"go/generics.md", "Generics", "go"},
	}
	for _, f := range files {
		w, ok := want[f.Slug]
		if !ok {
			t.Errorf("unexpected slug %q", f.Slug)
			continue
		}
		if f.Path != w.path || f.Title != w.title || f.Category != w.category {
			t.Errorf("%s = %q/%q/%q, want %q/%q/%q", f.Slug, f.Path, f.Title, f.Category, w.path, w.title, w.category)
		}
	}
}

func TestGithubSource_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mux *http.ServeMux)
	}{
		{
			name: "tree not found",
			setup: func(mux *http.ServeMux) {
				mux.HandleFunc("/repos/owner/blog/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
				})
			},
		},
		{
			name: "truncated tree",
			setup: func(mux *http.ServeMux) {
				mux.HandleFunc("/repos/owner/blog/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(`{"sha":"abc","truncated":true,"tree":[]}`))
				})
			},
		},
		{
			name: "file fetch fails",
			setup: func(mux *http.ServeMux) {
				mux.HandleFunc("/repos/owner/blog/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("Content-Type", "application/json")
					w.Write([]byte(`{"sha":"abc","tree":[{"path":"a.md","type":"blob"}]}`))
				})
				mux.HandleFunc("/repos/owner/blog/contents/a.md", func(w http.ResponseWriter, r *http.Request) {
					http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			tt.setup(mux)
			src := newTestSource(t, mux, "")

			_, err := src.ListSourceFiles(context.Background())
			var ioErr *domain.IOError
			if !errors.As(err, &ioErr) {
				t.Errorf("error = %v, want IOError", err)
			}
		})
	}
}

func TestInHiddenDir(t *testing.T) {
	tests := []struct {
		rel  string
		want bool
	}{
		{"a.md", false},
		{"go/a.md", false},
		{".drafts/a.md", true},
		{"go/.wip/a.md", true},
		{".a.md", false},
	}
	for _, tt := range tests {
		if got := inHiddenDir(tt.rel); got != tt.want {
			t.Errorf("inHiddenDir(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}
