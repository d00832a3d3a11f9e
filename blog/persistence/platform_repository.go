package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/shared/db"
)

var _ domain.PlatformRepository = (*SQLitePlatformRepository)(nil)

type SQLitePlatformRepository struct {
	db *sql.DB
}

func NewPlatformRepository(db *sql.DB) *SQLitePlatformRepository {
	return &SQLitePlatformRepository{db: db}
}

const getPlatformQuery = `SELECT title, description, footer FROM platform WHERE id = 1`

func (r *SQLitePlatformRepository) GetPlatform(ctx context.Context) (*domain.Platform, error) {
	var p domain.Platform
	err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getPlatformQuery).Scan(&p.Title, &p.Description, &p.Footer)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("platform: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get platform: %w", err)
	}
	return &p, nil
}

const savePlatformQuery = `
	INSERT INTO platform (id, title, description, footer, updated_at)
	VALUES (1, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		title = excluded.title,
		description = excluded.description,
		footer = excluded.footer,
		updated_at = excluded.updated_at
`

func (r *SQLitePlatformRepository) SavePlatform(ctx context.Context, p *domain.Platform) error {
	if p == nil {
		return fmt.Errorf("platform cannot be nil")
	}
	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, savePlatformQuery, p.Title, p.Description, p.Footer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save platform: %w", err)
	}
	return nil
}

const seedPlatformQuery = `
	INSERT INTO platform (id, title, description, footer, updated_at)
	VALUES (1, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
`

func (r *SQLitePlatformRepository) SeedPlatform(ctx context.Context, p *domain.Platform) error {
	if p == nil {
		return fmt.Errorf("platform cannot be nil")
	}
	_, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, seedPlatformQuery, p.Title, p.Description, p.Footer, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to seed platform: %w", err)
	}
	return nil
}
