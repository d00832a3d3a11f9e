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

var _ domain.CommentRepository = (*SQLiteCommentRepository)(nil)

type SQLiteCommentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewCommentRepository(db *sql.DB) *SQLiteCommentRepository {
	return &SQLiteCommentRepository{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

const commentColumns = `id, post_id, parent_id, author_name, author_email, author_link, content, status, created_at, updated_at`

const insertCommentQuery = `
	INSERT INTO comments (post_id, parent_id, author_name, author_email, author_link, content, status, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (r *SQLiteCommentRepository) CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	if c == nil {
		return nil, fmt.Errorf("comment cannot be nil")
	}

	return db.InTransaction(ctx, r.db, func(txCtx context.Context) (*domain.Comment, error) {
		now := r.now()
		var parentID any
		if c.ParentID != nil {
			parentID = *c.ParentID
		}

		res, err := db.GetExecutor(txCtx, r.db).ExecContext(txCtx, insertCommentQuery,
			c.PostID,
			parentID,
			c.AuthorName,
			c.AuthorEmail,
			c.AuthorLink,
			c.Content,
			c.Status,
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert comment: %w", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read comment id: %w", err)
		}
		return r.GetComment(txCtx, id)
	})
}

const getCommentQuery = `SELECT ` + commentColumns + ` FROM comments WHERE id = ?`

func (r *SQLiteCommentRepository) GetComment(ctx context.Context, id int64) (*domain.Comment, error) {
	var row commentRow
	err := row.scan(db.GetExecutor(ctx, r.db).QueryRowContext(ctx, getCommentQuery, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment: %w", err)
	}
	return row.toDomain(), nil
}

// visibleCommentsCTE selects shown comments on shown posts whose every ancestor is shown.
const visibleCommentsCTE = `
	WITH RECURSIVE visible_comments(id) AS (
		SELECT c.id FROM comments c JOIN posts p ON p.id = c.post_id
		WHERE c.parent_id IS NULL AND c.status = 'show' AND p.status = 'show'
		UNION ALL
		SELECT c.id FROM comments c JOIN visible_comments v ON c.parent_id = v.id
		WHERE c.status = 'show'
	)
`

// ListComments returns one page of comments, newest first.
func (r *SQLiteCommentRepository) ListComments(ctx context.Context, filter domain.CommentFilter, page domain.Page) (domain.PageResult[*domain.Comment], error) {
	result := domain.PageResult[*domain.Comment]{Page: page.Number, Size: page.Limit(), Items: []*domain.Comment{}}

	var (
		where []string
		args  []any
	)
	if filter.PostID != nil {
		where = append(where, "post_id = ?")
		args = append(args, *filter.PostID)
	}
	if filter.Status != nil {
		where = append(where, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.TopLevel {
		where = append(where, "parent_id IS NULL")
	}

	prefix := ""
	if filter.Visible {
		prefix = visibleCommentsCTE
		where = append(where, "id IN (SELECT id FROM visible_comments)")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	executor := db.GetExecutor(ctx, r.db)
	if err := executor.QueryRowContext(ctx, prefix+"SELECT COUNT(*) FROM comments"+clause, args...).Scan(&result.Total); err != nil {
		return result, fmt.Errorf("failed to count comments: %w", err)
	}

	query := prefix + "SELECT " + commentColumns + " FROM comments" + clause + " ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
	items, err := r.query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return result, err
	}
	result.Items = items

	return result, nil
}

const listCommentsByPostQuery = `SELECT ` + commentColumns + ` FROM comments WHERE post_id = ? ORDER BY created_at, id`

// ListCommentsByPost returns every comment of a post, oldest first, in any status.
func (r *SQLiteCommentRepository) ListCommentsByPost(ctx context.Context, postID int64) ([]*domain.Comment, error) {
	return r.query(ctx, listCommentsByPostQuery, postID)
}

const listRepliesQuery = `SELECT ` + commentColumns + ` FROM comments WHERE parent_id = ? ORDER BY created_at, id`

func (r *SQLiteCommentRepository) ListReplies(ctx context.Context, parentID int64) ([]*domain.Comment, error) {
	return r.query(ctx, listRepliesQuery, parentID)
}

const countRepliesQuery = `SELECT COUNT(*) FROM comments WHERE parent_id = ?`

func (r *SQLiteCommentRepository) CountReplies(ctx context.Context, parentID int64) (int, error) {
	var n int
	if err := db.GetExecutor(ctx, r.db).QueryRowContext(ctx, countRepliesQuery, parentID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count replies: %w", err)
	}
	return n, nil
}

const setCommentStatusQuery = `UPDATE comments SET status = ?, updated_at = ? WHERE id = ?`

func (r *SQLiteCommentRepository) SetCommentStatus(ctx context.Context, id int64, status domain.Status) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, setCommentStatusQuery, status, r.now(), id)
	if err != nil {
		return fmt.Errorf("failed to set comment status: %w", err)
	}
	return expectOneRow(res, "comment", id)
}

const deleteCommentQuery = `DELETE FROM comments WHERE id = ?`

// DeleteComment removes a single comment. The caller checks for replies first;
// the schema cascades to any that remain.
func (r *SQLiteCommentRepository) DeleteComment(ctx context.Context, id int64) error {
	res, err := db.GetExecutor(ctx, r.db).ExecContext(ctx, deleteCommentQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return expectOneRow(res, "comment", id)
}

const commentSubtreeCTE = `
	WITH RECURSIVE subtree(id) AS (
		SELECT id FROM comments WHERE id = ?
		UNION ALL
		SELECT c.id FROM comments c JOIN subtree s ON c.parent_id = s.id
	)
`

const (
	countCommentTreeQuery  = commentSubtreeCTE + `SELECT COUNT(*) FROM subtree`
	deleteCommentTreeQuery = commentSubtreeCTE + `DELETE FROM comments WHERE id IN (SELECT id FROM subtree)`
)

// DeleteCommentWithReplies removes a comment and every reply below it,
// returning the number of comments removed. The count is taken before the
// delete since rows removed by the parent_id cascade are not reported as affected.
func (r *SQLiteCommentRepository) DeleteCommentWithReplies(ctx context.Context, id int64) (int, error) {
	return db.InTransaction(ctx, r.db, func(txCtx context.Context) (int, error) {
		if _, err := r.GetComment(txCtx, id); err != nil {
			return 0, err
		}

		executor := db.GetExecutor(txCtx, r.db)
		var n int
		if err := executor.QueryRowContext(txCtx, countCommentTreeQuery, id).Scan(&n); err != nil {
			return 0, fmt.Errorf("failed to count comment tree: %w", err)
		}
		if _, err := executor.ExecContext(txCtx, deleteCommentTreeQuery, id); err != nil {
			return 0, fmt.Errorf("failed to delete comment tree: %w", err)
		}
		return n, nil
	})
}

func (r *SQLiteCommentRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Comment, error) {
	rows, err := db.GetExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*domain.Comment, 0)
	for rows.Next() {
		var row commentRow
		if err := row.scan(rows); err != nil {
			return nil, fmt.Errorf("failed to scan comment row: %w", err)
		}
		comments = append(comments, row.toDomain())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comment rows: %w", err)
	}

	return comments, nil
}

type commentRow struct {
	ID          int64
	PostID      int64
	ParentID    sql.NullInt64
	AuthorName  string
	AuthorEmail string
	AuthorLink  string
	Content     string
	Status      domain.Status
	CreatedAt   sql.NullTime
	UpdatedAt   sql.NullTime
}

func (cr *commentRow) scan(s scanner) error {
	return s.Scan(
		&cr.ID,
		&cr.PostID,
		&cr.ParentID,
		&cr.AuthorName,
		&cr.AuthorEmail,
		&cr.AuthorLink,
		&cr.Content,
		&cr.Status,
		&cr.CreatedAt,
		&cr.UpdatedAt,
	)
}

func (cr *commentRow) toDomain() *domain.Comment {
	c := &domain.Comment{
		ID:          cr.ID,
		PostID:      cr.PostID,
		AuthorName:  cr.AuthorName,
		AuthorEmail: cr.AuthorEmail,
		AuthorLink:  cr.AuthorLink,
		Content:     cr.Content,
		Status:      cr.Status,
	}
	if cr.ParentID.Valid {
		parent := cr.ParentID.Int64
		c.ParentID = &parent
	}
	if cr.CreatedAt.Valid {
		c.CreatedAt = cr.CreatedAt.Time.UTC()
	}
	if cr.UpdatedAt.Valid {
		c.UpdatedAt = cr.UpdatedAt.Time.UTC()
	}
	return c
}
