package application

import (
	"context"

	"github.com/dfryer1193/flog/blog/domain"
)

const recentItems = 5

type StatsService struct {
	posts    domain.PostRepository
	comments domain.CommentRepository
}

func NewStatsService(posts domain.PostRepository, comments domain.CommentRepository) *StatsService {
	return &StatsService{posts: posts, comments: comments}
}

// Stats summarises the blog for the admin dashboard. Counts include hidden items.
func (s *StatsService) Stats(ctx context.Context) (*domain.Stats, error) {
	recent, err := domain.NewPage(1, recentItems)
	if err != nil {
		return nil, err
	}

	posts, err := s.posts.ListPosts(ctx, domain.PostFilter{}, recent)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListComments(ctx, domain.CommentFilter{}, recent)
	if err != nil {
		return nil, err
	}
	views, err := s.posts.TotalViews(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{
		TotalPosts:     posts.Total,
		TotalComments:  comments.Total,
		TotalViews:     views,
		RecentPosts:    posts.Items,
		RecentComments: comments.Items,
	}, nil
}
