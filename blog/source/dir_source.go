package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/dfryer1193/flog/blog/domain"
)

var _ domain.FileSource = (*DirSource)(nil)

// DirSource reads posts from a directory tree of Markdown files.
type DirSource struct {
	root string
	fsys fs.FS
}

// NewDirSource creates a DirSource rooted at a directory on local disk.
func NewDirSource(root string) *DirSource {
	return &DirSource{root: root, fsys: os.DirFS(root)}
}

// NewFSSource creates a DirSource over an arbitrary fs.FS, such as an embed.FS or fstest.MapFS.
func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{fsys: fsys}
}

// Root is the local directory being read, empty for non-disk sources.
func (s *DirSource) Root() string {
	return s.root
}

// ListSourceFiles walks the tree and parses every *.md file.
// Dot-directories are skipped. A missing root is an error, not an empty source.
func (s *DirSource) ListSourceFiles(ctx context.Context) ([]domain.SourceFile, error) {
	info, err := fs.Stat(s.fsys, ".")
	if err != nil {
		return nil, &domain.IOError{Path: s.root, Err: err}
	}
	if !info.IsDir() {
		return nil, &domain.IOError{Path: s.root, Err: fmt.Errorf("not a directory")}
	}

	var files []domain.SourceFile
	err = fs.WalkDir(s.fsys, ".", func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return &domain.IOError{Path: p, Err: walkErr}
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !IsPostFile(p) {
			return nil
		}

		raw, err := fs.ReadFile(s.fsys, p)
		if err != nil {
			return &domain.IOError{Path: p, Err: err}
		}

		f, err := ParseFile(p, raw)
		if err != nil {
			return err
		}
		files = append(files, f)
		return nil
	})
	if err != nil {
		var ioErr *domain.IOError
		if !errors.As(err, &ioErr) {
			err = &domain.IOError{Path: s.root, Err: err}
		}
		return nil, err
	}

	return files, nil
}

// IsPostFile reports whether a slash-separated path names a Markdown post.
func IsPostFile(p string) bool {
	base := path.Base(p)
	return path.Ext(base) == ".md" && !strings.HasPrefix(base, ".")
}
