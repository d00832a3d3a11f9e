package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dfryer1193/flog/blog/domain"
)

const maxPlatformTitleLength = 100

type PlatformService struct {
	repo     domain.PlatformRepository
	defaults domain.Platform
}

// NewPlatformService returns a service that falls back to defaults until
// settings have been saved.
func NewPlatformService(repo domain.PlatformRepository, defaults domain.Platform) *PlatformService {
	return &PlatformService{repo: repo, defaults: defaults}
}

func (s *PlatformService) Get(ctx context.Context) (*domain.Platform, error) {
	p, err := s.repo.GetPlatform(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		d := s.defaults
		return &d, nil
	}
	return p, err
}

func (s *PlatformService) Update(ctx context.Context, p domain.Platform) (*domain.Platform, error) {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" || utf8.RuneCountInString(p.Title) > maxPlatformTitleLength {
		return nil, &domain.ValidationError{Field: "title", Message: fmt.Sprintf("must be 1 to %d characters", maxPlatformTitleLength)}
	}
	if err := s.repo.SavePlatform(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Seed stores the defaults unless settings already exist.
func (s *PlatformService) Seed(ctx context.Context) error {
	d := s.defaults
	return s.repo.SeedPlatform(ctx, &d)
}
