package source

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/dfryer1193/flog/blog/domain"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// frontMatter is the YAML header a post file may start with.
type frontMatter struct {
	Title    string `yaml:"title"`
	Slug     string `yaml:"slug"`
	Category string `yaml:"category"`
	Hidden   bool   `yaml:"hidden"`
}

// splitFrontMatter separates a leading "---" delimited block from the body.
// Without an opening and closing delimiter the whole input is body.
func splitFrontMatter(raw []byte) (header []byte, body []byte, ok bool) {
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))

	first, rest, found := bytes.Cut(raw, []byte("\n"))
	if !found || strings.TrimSpace(string(first)) != delimiter {
		return nil, raw, false
	}

	offset := 0
	for offset <= len(rest) {
		line, tail, more := bytes.Cut(rest[offset:], []byte("\n"))
		if strings.TrimSpace(string(line)) == delimiter {
			return rest[:offset], tail, true
		}
		if !more {
			break
		}
		offset += len(line) + 1
	}

	return nil, raw, false
}

// ParseFile turns the raw bytes of a Markdown file into a SourceFile.
// relPath is the slash-separated path of the file relative to the source root.
func ParseFile(relPath string, raw []byte) (domain.SourceFile, error) {
	sum := sha256.Sum256(raw)

	var meta frontMatter
	header, body, ok := splitFrontMatter(raw)
	if ok && len(bytes.TrimSpace(header)) > 0 {
		if err := yaml.Unmarshal(header, &meta); err != nil {
			return domain.SourceFile{}, &domain.IOError{Path: relPath, Err: fmt.Errorf("invalid front-matter: %w", err)}
		}
	}

	stem := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
	content := string(body)

	slug := strings.TrimSpace(meta.Slug)
	if slug == "" {
		slug = stem
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = extractHeading(content)
	}
	if title == "" {
		title = stem
	}

	category := strings.Trim(strings.TrimSpace(meta.Category), "/")
	if category == "" {
		if dir := path.Dir(relPath); dir != "." {
			category = dir
		}
	}

	return domain.SourceFile{
		Slug:     slug,
		Title:    title,
		Category: category,
		Content:  content,
		Path:     relPath,
		Hash:     hex.EncodeToString(sum[:]),
		Hidden:   meta.Hidden,
	}, nil
}

// extractHeading returns the text of a level-one heading on the first non-blank line.
func extractHeading(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		title, found := strings.CutPrefix(trimmed, "# ")
		if !found {
			return ""
		}
		return strings.TrimSpace(title)
	}
	return ""
}
