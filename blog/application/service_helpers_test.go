package application

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/blog/persistence"
	"github.com/dfryer1193/flog/shared/db/sqlite"
)

type testRepos struct {
	posts     *persistence.SQLitePostRepository
	comments  *persistence.SQLiteCommentRepository
	platforms *persistence.SQLitePlatformRepository
}

func setupRepos(t *testing.T) testRepos {
	t.Helper()
	database := sqlite.NewSQLiteDB(sqlite.SQLiteConfig{Path: filepath.Join(t.TempDir(), "app.db")})
	if err := database.Connect(); err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	return testRepos{
		posts:     persistence.NewPostRepository(database.DB()),
		comments:  persistence.NewCommentRepository(database.DB()),
		platforms: persistence.NewPlatformRepository(database.DB()),
	}
}

func seedPost(t *testing.T, repos testRepos, slug, category string, status domain.Status, at time.Time) *domain.Post {
	t.Helper()
	p, err := repos.posts.CreatePost(context.Background(), domain.SourceFile{
		Slug:     slug,
		Title:    "Title " + slug,
		Category: category,
		Content:  "# " + slug + "\n\nBody of " + slug,
		Path:     slug + ".md",
		Hash:     "hash-" + slug,
	}, status, at)
	if err != nil {
		t.Fatalf("CreatePost(%s) failed: %v", slug, err)
	}
	return p
}

func mustPage(t *testing.T, number, size int) domain.Page {
	t.Helper()
	p, err := domain.NewPage(number, size)
	if err != nil {
		t.Fatalf("NewPage(%d, %d) failed: %v", number, size, err)
	}
	return p
}
