package api

import (
	"time"

	"github.com/dfryer1193/flog/blog/domain"
)

// PostSummary is a post as it appears in listings.
type PostSummary struct {
	ID        int64         `json:"id"`
	Slug      string        `json:"slug"`
	Title     string        `json:"title"`
	Category  string        `json:"category"`
	Snippet   string        `json:"snippet"`
	Status    domain.Status `json:"status"`
	ViewCount int64         `json:"view_count"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type Post struct {
	PostSummary
	Content  string `json:"content"`
	HTML     string `json:"html"`
	FilePath string `json:"file_path"`
}

func NewPostSummary(p *domain.Post, snippet string) PostSummary {
	return PostSummary{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Category:  p.Category,
		Snippet:   snippet,
		Status:    p.Status,
		ViewCount: p.ViewCount,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func NewPost(p *domain.Post, snippet, html string) Post {
	return Post{
		PostSummary: NewPostSummary(p, snippet),
		Content:     p.Content,
		HTML:        html,
		FilePath:    p.FilePath,
	}
}

type Category struct {
	Name      string `json:"name"`
	PostCount int    `json:"post_count"`
}

type Stats struct {
	TotalPosts     int           `json:"total_posts"`
	TotalComments  int           `json:"total_comments"`
	TotalViews     int64         `json:"total_views"`
	RecentPosts    []PostSummary `json:"recent_posts"`
	RecentComments []Comment     `json:"recent_comments"`
}
