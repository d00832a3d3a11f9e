package github

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/blog/source"
	"github.com/google/go-github/v75/github"
)

var _ domain.FileSource = (*GithubSource)(nil)

// GithubSource reads posts from a directory of a GitHub repository at a fixed ref.
type GithubSource struct {
	client  *github.Client
	owner   string
	gitRepo string
	ref     string
	dir     string
}

// NewClient returns a GitHub client, authenticated when token is set.
func NewClient(token string) *github.Client {
	client := github.NewClient(nil)
	if token != "" {
		client = client.WithAuthToken(token)
	}
	return client
}

// NewGithubSource creates a source for the Markdown files under dir at ref.
// An empty dir means the repository root.
func NewGithubSource(client *github.Client, owner, gitRepo, ref, dir string) *GithubSource {
	return &GithubSource{
		client:  client,
		owner:   owner,
		gitRepo: gitRepo,
		ref:     ref,
		dir:     strings.Trim(dir, "/"),
	}
}

// GetRepoFullName returns the repository's full name (e.g., "owner/repo").
func (g *GithubSource) GetRepoFullName() string {
	return fmt.Sprintf("%s/%s", g.owner, g.gitRepo)
}

// Ref is the branch, tag or commit the source reads from.
func (g *GithubSource) Ref() string {
	return g.ref
}

// ListSourceFiles fetches the repository tree at the configured ref and parses
// every *.md file under the source directory. Paths are reported relative to it.
func (g *GithubSource) ListSourceFiles(ctx context.Context) ([]domain.SourceFile, error) {
	paths, err := g.listPostPaths(ctx)
	if err != nil {
		return nil, err
	}

	files := make([]domain.SourceFile, 0, len(paths))
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, &domain.IOError{Path: g.GetRepoFullName(), Err: err}
		}

		raw, err := g.getFileContents(ctx, p)
		if err != nil {
			return nil, err
		}

		f, err := source.ParseFile(g.relative(p), raw)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}

func (g *GithubSource) listPostPaths(ctx context.Context) ([]string, error) {
	op := fmt.Sprintf("getting tree of %s at ref %s", g.GetRepoFullName(), g.ref)
	tree, _, err := g.client.Git.GetTree(ctx, g.owner, g.gitRepo, g.ref, true)
	if err != nil {
		return nil, &domain.IOError{Path: g.GetRepoFullName(), Err: handleGithubError(op, err)}
	}
	if tree.GetTruncated() {
		return nil, &domain.IOError{Path: g.GetRepoFullName(), Err: fmt.Errorf("github: %s returned a truncated tree", op)}
	}

	var paths []string
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" {
			continue
		}
		p := entry.GetPath()
		if g.dir != "" && !strings.HasPrefix(p, g.dir+"/") {
			continue
		}
		if inHiddenDir(g.relative(p)) || !source.IsPostFile(p) {
			continue
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// getFileContents fetches the contents of a file at the configured ref.
func (g *GithubSource) getFileContents(ctx context.Context, p string) ([]byte, error) {
	op := fmt.Sprintf("getting file %s at ref %s", p, g.ref)
	fileContent, _, _, err := g.client.Repositories.GetContents(ctx, g.owner, g.gitRepo, p, &github.RepositoryContentGetOptions{
		Ref: g.ref,
	})
	if err != nil {
		return nil, &domain.IOError{Path: p, Err: handleGithubError(op, err)}
	}

	if fileContent == nil {
		return nil, &domain.IOError{Path: p, Err: fmt.Errorf("github: %s returned nil file content", op)}
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return nil, &domain.IOError{Path: p, Err: fmt.Errorf("github: %s failed to decode content: %w", op, err)}
	}

	return []byte(content), nil
}

func (g *GithubSource) relative(p string) string {
	if g.dir == "" {
		return p
	}
	return strings.TrimPrefix(p, g.dir+"/")
}

func inHiddenDir(rel string) bool {
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if strings.HasPrefix(path.Base(dir), ".") {
			return true
		}
	}
	return false
}

// handleGithubError inspects an error from the go-github client and returns a more informative, structured error.
func handleGithubError(op string, err error) error {
	if err == nil {
		return nil
	}

	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return fmt.Errorf("github: %s failed with status %d: %s", op, errResp.Response.StatusCode, errResp.Message)
	}

	return fmt.Errorf("github: %s failed: %w", op, err)
}
