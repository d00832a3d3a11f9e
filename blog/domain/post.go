package domain

import (
	"context"
	"time"
)

// Post represents a blog post.
// A post is created from a Markdown source file by the sync engine; Slug is the
// join key between the file and the persisted row and never changes.
type Post struct {
	ID        int64
	Slug      string
	Title     string
	Category  string
	Content   string
	FilePath  string
	FileHash  string
	Status    Status
	ViewCount int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Visible reports whether the post is shown to anonymous readers.
func (p *Post) Visible() bool {
	return p.Status == StatusShow
}

// PostFields are the content fields sync is allowed to overwrite.
type PostFields struct {
	Title     string
	Category  string
	Content   string
	FilePath  string
	FileHash  string
	UpdatedAt time.Time
}

// PostFilter narrows post listings. A nil Status means any status.
type PostFilter struct {
	Status   *Status
	Category *string
	Search   string
}

// Category is a distinct post category and the number of visible posts in it.
type Category struct {
	Name      string
	PostCount int
}

// Stats summarises the blog for the admin dashboard.
type Stats struct {
	TotalPosts     int
	TotalComments  int
	TotalViews     int64
	RecentPosts    []*Post
	RecentComments []*Comment
}

type PostRepository interface {
	ListPostSlugs(ctx context.Context) (map[string]struct{}, error)
	GetPostBySlug(ctx context.Context, slug string) (*Post, error)
	CreatePost(ctx context.Context, src SourceFile, status Status, now time.Time) (*Post, error)
	UpdatePost(ctx context.Context, slug string, fields PostFields) (*Post, error)
	DeletePost(ctx context.Context, slug string) error

	GetPost(ctx context.Context, id int64) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter, page Page) (PageResult[*Post], error)
	SetStatus(ctx context.Context, id int64, status Status) error
	IncrementViewCount(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	TotalViews(ctx context.Context) (int64, error)
}
