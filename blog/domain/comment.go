package domain

import (
	"context"
	"time"
)

// Comment is a reader comment on a post. Replies point at their parent through ParentID.
type Comment struct {
	ID          int64
	PostID      int64
	ParentID    *int64
	AuthorName  string
	AuthorEmail string
	AuthorLink  string
	Content     string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (c *Comment) IsReply() bool {
	return c.ParentID != nil
}

// CommentNode is a comment placed in its thread.
type CommentNode struct {
	*Comment
	Level      int
	ReplyCount int
	Replies    []*CommentNode
}

type CommentFilter struct {
	PostID   *int64
	Status   *Status
	TopLevel bool
	// Visible keeps only comments a reader can reach: shown, on a shown post,
	// with no hidden comment above them.
	Visible bool
}

type CommentRepository interface {
	CreateComment(ctx context.Context, c *Comment) (*Comment, error)
	GetComment(ctx context.Context, id int64) (*Comment, error)
	ListComments(ctx context.Context, filter CommentFilter, page Page) (PageResult[*Comment], error)
	ListCommentsByPost(ctx context.Context, postID int64) ([]*Comment, error)
	ListReplies(ctx context.Context, parentID int64) ([]*Comment, error)
	CountReplies(ctx context.Context, parentID int64) (int, error)
	SetCommentStatus(ctx context.Context, id int64, status Status) error
	DeleteComment(ctx context.Context, id int64) error
	DeleteCommentWithReplies(ctx context.Context, id int64) (int, error)
}
