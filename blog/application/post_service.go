package application

import (
	"context"
	"fmt"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/rs/zerolog/log"
)

// PostQuery selects posts for a listing.
// Status is only honoured for privileged callers; everyone else sees visible posts.
type PostQuery struct {
	Status   *domain.Status
	Category *string
	Search   string
	Page     domain.Page
}

// PostService serves the read and moderation side of posts. Content changes only arrive through sync.
type PostService struct {
	repo     domain.PostRepository
	markdown MarkdownRenderer
}

func NewPostService(repo domain.PostRepository, markdown MarkdownRenderer) *PostService {
	return &PostService{
		repo:     repo,
		markdown: markdown,
	}
}

func (s *PostService) ListPosts(ctx context.Context, q PostQuery, privileged bool) (domain.PageResult[*domain.Post], error) {
	filter := domain.PostFilter{
		Status:   q.Status,
		Category: q.Category,
		Search:   q.Search,
	}
	if !privileged {
		show := domain.StatusShow
		filter.Status = &show
	}
	return s.repo.ListPosts(ctx, filter, q.Page)
}

// GetPost returns a post by ID. Hidden posts are not found for unprivileged
// callers, whose reads also count as a view.
func (s *PostService) GetPost(ctx context.Context, id int64, privileged bool) (*domain.Post, error) {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if privileged {
		return post, nil
	}
	if !post.Visible() {
		return nil, fmt.Errorf("post %d: %w", id, domain.ErrNotFound)
	}

	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		log.Warn().Err(err).Int64("postID", id).Msg("Failed to count post view")
	} else {
		post.ViewCount++
	}
	return post, nil
}

// Render converts the post body for display.
func (s *PostService) Render(post *domain.Post) (*RenderedPost, error) {
	return s.markdown.Render(post.Content)
}

func (s *PostService) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidStatus, status)
	}
	return s.repo.SetStatus(ctx, id, status)
}

// DeletePost removes a post and its comments. A post whose file still exists
// comes back on the next sync.
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	post, err := s.repo.GetPost(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.DeletePost(ctx, post.Slug)
}

func (s *PostService) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repo.ListCategories(ctx)
}

func (s *PostService) ListCategoryPosts(ctx context.Context, category string, page domain.Page, privileged bool) (domain.PageResult[*domain.Post], error) {
	return s.ListPosts(ctx, PostQuery{Category: &category, Page: page}, privileged)
}
