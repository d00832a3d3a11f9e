package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/shared/db"
)

var _ domain.PostRepository = (*SQLitePostRepository)(nil)

// SQLitePostRepository implements domain.PostRepository using SQL database (SQLite)
type SQLitePostRepository struct {
	db *sql.DB
}

// NewPostRepository creates a new SQLitePostRepository from a standard sql.DB
func NewPostRepository(db *sql.DB) *SQLitePostRepository {
	return &SQLitePostRepository{
		db: db,
	}
}

const postColumns = `id, slug, title, category, content, file_path, file_hash, status, view_count, created_at, updated_at`

const listPostSlugsQuery = `SELECT slug FROM posts`

// ListPostSlugs returns the slug of every persisted post regardless of status.
func (r *SQLitePostRepository) ListPostSlugs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listPostSlugsQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list post slugs: %w", err)
	}
	defer rows.Close()

	slugs := make(map[string]struct{})
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("failed to scan slug: %w", err)
		}
		slugs[slug] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating slug rows: %w", err)
	}

	return slugs, nil
}

const getPostBySlugQuery = `SELECT ` + postColumns + ` FROM posts WHERE slug = ?`

func (r *SQLitePostRepository) GetPostBySlug(ctx context.Context, slug string) (*domain.Post, error) {
	if slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}
	return r.getOne(ctx, getPostBySlugQuery, slug)
}

const getPostQuery = `SELECT ` + postColumns + ` FROM posts WHERE id = ?`

// GetPost retrieves a single post by ID
func (r *SQLitePostRepository) GetPost(ctx context.Context, id int64) (*domain.Post, error) {
	return r.getOne(ctx, getPostQuery, id)
}

func (r *SQLitePostRepository) getOne(ctx context.Context, query string, arg any) (*domain.Post, error) {
	var row postRow
	err := row.scan(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %v: %w", arg, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return row.toDomain(), nil
}

const insertPostQuery = `
	INSERT INTO posts (slug, title, category, content, file_path, file_hash, status, view_count, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
`

// CreatePost inserts a post for a source file with created_at and updated_at set to now.
func (r *SQLitePostRepository) CreatePost(ctx context.Context, src domain.SourceFile, status domain.Status, now time.Time) (*domain.Post, error) {
	if src.Slug == "" {
		return nil, fmt.Errorf("post slug cannot be empty")
	}

	return db.InTransaction(ctx, r.db, func(txCtx context.Context) (*domain.Post, error) {
		now := now.UTC()
		res, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, insertPostQuery,
			src.Slug,
			src.Title,
			src.Category,
			src.Content,
			src.Path,
			src.Hash,
			status,
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert post: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read post id: %w", err)
		}

		return r.getOne(txCtx, getPostQuery, id)
	})
}

const updatePostQuery = `
	UPDATE posts
	SET title = ?, category = ?, content = ?, file_path = ?, file_hash = ?, updated_at = ?
	WHERE slug = ?
`

// UpdatePost overwrites the content fields of a post. Status, view_count
// and created_at are never touched.
func (r *SQLitePostRepository) UpdatePost(ctx context.Context, slug string, f domain.PostFields) (*domain.Post, error) {
	return db.InTransaction(ctx, r.db, func(txCtx context.Context) (*domain.Post, error) {
		res, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, updatePostQuery,
			f.Title,
			f.Category,
			f.Content,
			f.FilePath,
			f.FileHash,
			f.UpdatedAt.UTC(),
			slug,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to update post: %w", err)
		}
		if err := expectOneRow(res, "post", slug); err != nil {
			return nil, err
		}

		return r.getOne(txCtx, getPostBySlugQuery, slug)
	})
}

const (
	selectPostIDBySlugQuery = `SELECT id FROM posts WHERE slug = ?`
	deletePostCommentsQuery = `DELETE FROM comments WHERE post_id = ?`
	deletePostQuery         = `DELETE FROM posts WHERE id = ?`
)

// DeletePost removes a post and all of its comments.
func (r *SQLitePostRepository) DeletePost(ctx context.Context, slug string) error {
	return db.RunInTransaction(ctx, r.db, func(txCtx context.Context) error {
		executor := db.GetExecutor(txCtx, r.db)

		var id int64
		err := executor.QueryRowContext(txCtx, selectPostIDBySlugQuery, slug).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("post %s: %w", slug, domain.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to look up post: %w", err)
		}

		if _, err := executor.ExecContext(txCtx, deletePostCommentsQuery, id); err != nil {
			return fmt.Errorf("failed to delete comments of post %s: %w", slug, err)
		}
		if _, err := executor.ExecContext(txCtx, deletePostQuery, id); err != nil {
			return fmt.Errorf("failed to delete post %s: %w", slug, err)
		}

		return nil
	})
}

// ListPosts returns one page of posts, newest first.
func (r *SQLitePostRepository) ListPosts(ctx context.Context, filter domain.PostFilter, page domain.Page) (domain.PageResult[*domain.Post], error) {
	result := domain.PageResult[*domain.Post]{Page: page.Number, Size: page.Limit(), Items: []*domain.Post{}}

	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.Category != nil {
		where = append(where, "category = ?")
		args = append(args, *filter.Category)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		where = append(where, `(title LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	executor := db.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, "SELECT COUNT(*) FROM posts"+clause, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count posts: %w", err)
	}

	query := "SELECT " + postColumns + " FROM posts" + clause + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	rows, err := executor.QueryContext(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return result, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row postRow
		if err := row.scan(rows); err != nil {
			return result, fmt.Errorf("failed to scan post row: %w", err)
		}
		result.Items = append(result.Items, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return result, fmt.Errorf("error iterating post rows: %w", err)
	}

	return result, nil
}

const setPostStatusQuery = `UPDATE posts SET status = ? WHERE id = ?`

func (r *SQLitePostRepository) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, setPostStatusQuery, status, id)
	if err != nil {
		return fmt.Errorf("failed to set post status: %w", err)
	}
	return expectOneRow(res, "post", id)
}

const incrementViewCountQuery = `UPDATE posts SET view_count = view_count + 1 WHERE id = ?`

func (r *SQLitePostRepository) IncrementViewCount(ctx context.Context, id int64) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, incrementViewCountQuery, id)
	if err != nil {
		return fmt.Errorf("failed to increment view count: %w", err)
	}
	return expectOneRow(res, "post", id)
}

const listCategoriesQuery = `
	SELECT category, COUNT(*)
	FROM posts
	WHERE status = 'show' AND category <> ''
	GROUP BY category
	ORDER BY category
`

// ListCategories returns every category that has at least one visible post.
func (r *SQLitePostRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, listCategoriesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	categories := make([]domain.Category, 0)
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.Name, &c.PostCount); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}

	return categories, nil
}

const totalViewsQuery = `SELECT COALESCE(SUM(view_count), 0) FROM posts`

func (r *SQLitePostRepository) TotalViews(ctx context.Context) (int64, error) {
	var total int64
	if err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, totalViewsQuery).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum view counts: %w", err)
	}
	return total, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// postRow is a private struct used to scan database rows
// and provides a method to convert to the domain.Post model
type postRow struct {
	ID        int64
	Slug      string
	Title     string
	Category  string
	Content   string
	FilePath  string
	FileHash  string
	Status    domain.Status
	ViewCount int64
	CreatedAt sql.NullTime
	UpdatedAt sql.NullTime
}

func (pr *postRow) scan(s scanner) error {
	return s.Scan(
		&pr.ID,
		&pr.Slug,
		&pr.Title,
		&pr.Category,
		&pr.Content,
		&pr.FilePath,
		&pr.FileHash,
		&pr.Status,
		&pr.ViewCount,
		&pr.CreatedAt,
		&pr.UpdatedAt,
	)
}

// toDomain converts a postRow to a domain.Post, handling nullable times
func (pr *postRow) toDomain() *domain.Post {
	post := &domain.Post{
		ID:        pr.ID,
		Slug:      pr.Slug,
		Title:     pr.Title,
		Category:  pr.Category,
		Content:   pr.Content,
		FilePath:  pr.FilePath,
		FileHash:  pr.FileHash,
		Status:    pr.Status,
		ViewCount: pr.ViewCount,
	}

	if pr.CreatedAt.Valid {
		post.CreatedAt = pr.CreatedAt.Time.UTC()
	}
	if pr.UpdatedAt.Valid {
		post.UpdatedAt = pr.UpdatedAt.Time.UTC()
	}

	return post
}

func expectOneRow(res sql.Result, kind string, key any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %v: %w", kind, key, domain.ErrNotFound)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
