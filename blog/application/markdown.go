package application

import (
	"bytes"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

const (
	maxSnippetLength = 200
)

// RenderedPost is the display form of a post body.
type RenderedPost struct {
	Snippet string
	HTML    string
}

// postLinkTransformer points links to sibling .md files at the post route of the blog.
type postLinkTransformer struct {
	baseURL string
}

func (t *postLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		link, ok := n.(*ast.Link)
		if !ok {
			return ast.WalkContinue, nil
		}

		dest := string(link.Destination)
		if !isRelativeLink(dest) {
			return ast.WalkContinue, nil
		}

		target, fragment, _ := strings.Cut(dest, "#")
		if !strings.HasSuffix(target, ".md") {
			return ast.WalkContinue, nil
		}

		slug := strings.TrimSuffix(path.Base(target), ".md")
		rewritten := t.baseURL + "/posts/" + slug
		if fragment != "" {
			rewritten += "#" + fragment
		}
		link.Destination = []byte(rewritten)

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	// Absolute path check
	if strings.HasPrefix(dest, "/") {
		return !strings.HasPrefix(dest, "//")
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	if strings.Contains(dest, ":") {
		return false
	}

	return true
}

// MarkdownRenderer defines the interface for converting a post body to sanitised HTML.
type MarkdownRenderer interface {
	Render(markdown string) (*RenderedPost, error)
}

type MarkdownRendererImpl struct {
	renderer goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewMarkdownRenderer builds a renderer whose .md links resolve under baseURL.
// An empty baseURL produces root-relative links.
func NewMarkdownRenderer(baseURL string) MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&postLinkTransformer{baseURL: strings.TrimSuffix(baseURL, "/")}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
			// raw HTML is allowed through goldmark and cleaned by bluemonday
			html.WithUnsafe(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "span", "pre")
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")

	return &MarkdownRendererImpl{
		renderer: renderer,
		policy:   policy,
	}
}

func (r *MarkdownRendererImpl) Render(markdown string) (*RenderedPost, error) {
	var buf bytes.Buffer
	if err := r.renderer.Convert([]byte(markdown), &buf); err != nil {
		return nil, fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}

	return &RenderedPost{
		Snippet: extractSnippet(markdown),
		HTML:    r.policy.Sanitize(buf.String()),
	}, nil
}

func extractSnippet(markdown string) string {
	lines := strings.Split(markdown, "\n")
	var paragraphLines []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Skip headings before we find content
		if strings.HasPrefix(trimmed, "#") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		if trimmed == "" {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		// Stop at code blocks, horizontal rules, lists, tables
		if strings.HasPrefix(trimmed, "```") ||
			strings.HasPrefix(trimmed, "---") ||
			strings.HasPrefix(trimmed, "***") ||
			strings.HasPrefix(trimmed, "- ") ||
			strings.HasPrefix(trimmed, "* ") ||
			strings.HasPrefix(trimmed, "+ ") ||
			strings.HasPrefix(trimmed, "|") {
			if len(paragraphLines) > 0 {
				break
			}
			continue
		}

		paragraphLines = append(paragraphLines, trimmed)
	}

	if len(paragraphLines) == 0 {
		return ""
	}

	snippet := strings.Join(paragraphLines, " ")

	if len(snippet) > maxSnippetLength {
		cut := maxSnippetLength
		for cut > 0 && !utf8.RuneStart(snippet[cut]) {
			cut--
		}
		snippet = snippet[:cut]
		if lastSpace := strings.LastIndexAny(snippet, " \t"); lastSpace > 0 {
			snippet = snippet[:lastSpace]
		}
		snippet += "..."
	}

	return snippet
}
