package domain

import "context"

// Platform holds the site-wide settings shown in page chrome.
type Platform struct {
	Title       string
	Description string
	Footer      string
}

type PlatformRepository interface {
	GetPlatform(ctx context.Context) (*Platform, error)
	// SavePlatform creates the singleton row or replaces it.
	SavePlatform(ctx context.Context, p *Platform) error
	// SeedPlatform writes p only if no row exists yet.
	SeedPlatform(ctx context.Context, p *Platform) error
}
