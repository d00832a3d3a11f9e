package api

import (
	"time"

	"github.com/dfryer1193/flog/blog/domain"
)

type Comment struct {
	ID         int64         `json:"id"`
	PostID     int64         `json:"post_id"`
	ParentID   *int64        `json:"parent_id"`
	AuthorName string        `json:"author_name"`
	AuthorLink string        `json:"author_link,omitempty"`
	Content    string        `json:"content"`
	Status     domain.Status `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CommentNode is a comment with its threaded replies.
type CommentNode struct {
	Comment
	Level      int           `json:"level"`
	ReplyCount int           `json:"reply_count"`
	Replies    []CommentNode `json:"replies"`
}

// CommentProto is the body of a new comment.
type CommentProto struct {
	PostID      int64  `json:"post_id" binding:"required"`
	ParentID    *int64 `json:"parent_id"`
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
	AuthorLink  string `json:"author_link"`
	Content     string `json:"content"`
}

// NewComment converts a domain comment. The author email is never exposed.
func NewComment(c *domain.Comment) Comment {
	return Comment{
		ID:         c.ID,
		PostID:     c.PostID,
		ParentID:   c.ParentID,
		AuthorName: c.AuthorName,
		AuthorLink: c.AuthorLink,
		Content:    c.Content,
		Status:     c.Status,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func NewComments(cs []*domain.Comment) []Comment {
	out := make([]Comment, 0, len(cs))
	for _, c := range cs {
		out = append(out, NewComment(c))
	}
	return out
}

func NewCommentNode(n *domain.CommentNode) CommentNode {
	node := CommentNode{
		Comment:    NewComment(n.Comment),
		Level:      n.Level,
		ReplyCount: n.ReplyCount,
		Replies:    make([]CommentNode, 0, len(n.Replies)),
	}
	for _, r := range n.Replies {
		node.Replies = append(node.Replies, NewCommentNode(r))
	}
	return node
}

func NewCommentNodes(ns []*domain.CommentNode) []CommentNode {
	out := make([]CommentNode, 0, len(ns))
	for _, n := range ns {
		out = append(out, NewCommentNode(n))
	}
	return out
}
