package domain

import (
	"context"
)

// SourceFile is one Markdown post as read from a file source during a sync run.
type SourceFile struct {
	Slug     string
	Title    string
	Category string
	Content  string

	// Path is relative to the source root.
	Path string
	Hash string

	// Hidden only applies when the post is first created.
	Hidden bool
}

// SyncResult counts the changes made by one sync run.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
}

// Changed reports whether the run wrote anything.
func (r SyncResult) Changed() bool {
	return r.Created+r.Updated+r.Deleted > 0
}

// FileSource enumerates the Markdown files that are the source of truth for posts.
// This allows the sync engine to be decoupled from where the files live (local disk, GitHub).
type FileSource interface {
	ListSourceFiles(ctx context.Context) ([]SourceFile, error)
}
