package application

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dfryer1193/flog/blog/domain"
	"github.com/microcosm-cc/bluemonday"
)

const (
	maxAuthorNameLength = 50
	maxContentLength    = 2000
	maxLinkLength       = 255
)

// NewComment is a reader-submitted comment before validation.
type NewComment struct {
	PostID      int64
	ParentID    *int64
	AuthorName  string
	AuthorEmail string
	AuthorLink  string
	Content     string
}

type CommentService struct {
	comments domain.CommentRepository
	posts    domain.PostRepository
	strip    *bluemonday.Policy
}

func NewCommentService(comments domain.CommentRepository, posts domain.PostRepository) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		strip:    bluemonday.StrictPolicy(),
	}
}

// Create validates and stores a comment on a visible post.
func (s *CommentService) Create(ctx context.Context, in NewComment) (*domain.Comment, error) {
	c, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.visiblePost(ctx, in.PostID, false); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetComment(ctx, *in.ParentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, &domain.ValidationError{Field: "parent_id", Message: "comment does not exist"}
			}
			return nil, err
		}
		if parent.PostID != in.PostID {
			return nil, &domain.ValidationError{Field: "parent_id", Message: "comment belongs to another post"}
		}
		if parent.Status != domain.StatusShow {
			return nil, &domain.ValidationError{Field: "parent_id", Message: "comment does not exist"}
		}
	}

	return s.comments.CreateComment(ctx, c)
}

func (s *CommentService) validate(in NewComment) (*domain.Comment, error) {
	name := strings.TrimSpace(in.AuthorName)
	if name == "" || utf8.RuneCountInString(name) > maxAuthorNameLength {
		return nil, &domain.ValidationError{Field: "author_name", Message: fmt.Sprintf("must be 1 to %d characters", maxAuthorNameLength)}
	}

	email := strings.TrimSpace(in.AuthorEmail)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, &domain.ValidationError{Field: "author_email", Message: "must be a valid email address"}
	}

	link := strings.TrimSpace(in.AuthorLink)
	if link != "" {
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || len(link) > maxLinkLength {
			return nil, &domain.ValidationError{Field: "author_link", Message: "must be an http or https URL"}
		}
	}

	content := strings.TrimSpace(s.strip.Sanitize(in.Content))
	if content == "" || utf8.RuneCountInString(content) > maxContentLength {
		return nil, &domain.ValidationError{Field: "content", Message: fmt.Sprintf("must be 1 to %d characters", maxContentLength)}
	}

	return &domain.Comment{
		PostID:      in.PostID,
		ParentID:    in.ParentID,
		AuthorName:  s.strip.Sanitize(name),
		AuthorEmail: email,
		AuthorLink:  link,
		Content:     content,
		Status:      domain.StatusShow,
	}, nil
}

func (s *CommentService) visiblePost(ctx context.Context, postID int64, privileged bool) (*domain.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !privileged && !post.Visible() {
		return nil, fmt.Errorf("post %d: %w", postID, domain.ErrNotFound)
	}
	return post, nil
}

// Tree returns the threaded comments of a post. Unprivileged callers only
// see visible comments, and replies under a hidden comment are pruned with it.
func (s *CommentService) Tree(ctx context.Context, postID int64, privileged bool) ([]*domain.CommentNode, error) {
	if _, err := s.visiblePost(ctx, postID, privileged); err != nil {
		return nil, err
	}

	all, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	roots, _ := buildTree(all, privileged)
	return roots, nil
}

// TopLevel pages through the top-level comments of a post, each with its replies attached.
func (s *CommentService) TopLevel(ctx context.Context, postID int64, page domain.Page, privileged bool) (domain.PageResult[*domain.CommentNode], error) {
	result := domain.PageResult[*domain.CommentNode]{Page: page.Number, Size: page.Limit(), Items: []*domain.CommentNode{}}
	if _, err := s.visiblePost(ctx, postID, privileged); err != nil {
		return result, err
	}

	filter := domain.CommentFilter{PostID: &postID, TopLevel: true}
	if !privileged {
		show := domain.StatusShow
		filter.Status = &show
		filter.Visible = true
	}
	top, err := s.comments.ListComments(ctx, filter, page)
	if err != nil {
		return result, err
	}

	all, err := s.comments.ListCommentsByPost(ctx, postID)
	if err != nil {
		return result, err
	}
	_, nodes := buildTree(all, privileged)

	result.Total = top.Total
	for _, c := range top.Items {
		if n, ok := nodes[c.ID]; ok {
			result.Items = append(result.Items, n)
		}
	}
	return result, nil
}

// Replies lists the direct replies to a comment.
func (s *CommentService) Replies(ctx context.Context, id int64, privileged bool) ([]*domain.Comment, error) {
	if _, err := s.Get(ctx, id, privileged); err != nil {
		return nil, err
	}

	replies, err := s.comments.ListReplies(ctx, id)
	if err != nil {
		return nil, err
	}
	if privileged {
		return replies, nil
	}
	visible := make([]*domain.Comment, 0, len(replies))
	for _, r := range replies {
		if r.Status == domain.StatusShow {
			visible = append(visible, r)
		}
	}
	return visible, nil
}

func (s *CommentService) Get(ctx context.Context, id int64, privileged bool) (*domain.Comment, error) {
	c, err := s.comments.GetComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !privileged {
		if c.Status != domain.StatusShow {
			return nil, fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
		}
		if _, err := s.visiblePost(ctx, c.PostID, false); err != nil {
			return nil, fmt.Errorf("comment %d: %w", id, domain.ErrNotFound)
		}
	}
	return c, nil
}

// List pages through comments. Unprivileged callers only see comments they
// could also reach through Get.
func (s *CommentService) List(ctx context.Context, filter domain.CommentFilter, page domain.Page, privileged bool) (domain.PageResult[*domain.Comment], error) {
	if !privileged {
		show := domain.StatusShow
		filter.Status = &show
		filter.Visible = true
	}
	return s.comments.ListComments(ctx, filter, page)
}

func (s *CommentService) SetStatus(ctx context.Context, id int64, status domain.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %v", domain.ErrInvalidStatus, status)
	}
	return s.comments.SetCommentStatus(ctx, id, status)
}

// Delete removes a comment. A comment that still has replies is only removed
// together with them, when withReplies is set. Returns the number of comments removed.
func (s *CommentService) Delete(ctx context.Context, id int64, withReplies bool) (int, error) {
	if withReplies {
		return s.comments.DeleteCommentWithReplies(ctx, id)
	}

	if _, err := s.comments.GetComment(ctx, id); err != nil {
		return 0, err
	}
	n, err := s.comments.CountReplies(ctx, id)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, fmt.Errorf("comment %d has %d replies: %w", id, n, domain.ErrHasReplies)
	}

	if err := s.comments.DeleteComment(ctx, id); err != nil {
		return 0, err
	}
	return 1, nil
}

// buildTree threads comments, given oldest first, into nodes. When
// includeHidden is false, hidden comments and everything below them are dropped.
func buildTree(comments []*domain.Comment, includeHidden bool) ([]*domain.CommentNode, map[int64]*domain.CommentNode) {
	nodes := make(map[int64]*domain.CommentNode, len(comments))
	for _, c := range comments {
		if !includeHidden && c.Status != domain.StatusShow {
			continue
		}
		nodes[c.ID] = &domain.CommentNode{Comment: c, Replies: []*domain.CommentNode{}}
	}

	roots := make([]*domain.CommentNode, 0)
	for _, c := range comments {
		n, ok := nodes[c.ID]
		if !ok {
			continue
		}
		if c.ParentID == nil {
			roots = append(roots, n)
			continue
		}
		if parent, ok := nodes[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, n)
		}
	}

	reachable := make(map[int64]*domain.CommentNode, len(nodes))
	var walk func(n *domain.CommentNode, level int)
	walk = func(n *domain.CommentNode, level int) {
		n.Level = level
		n.ReplyCount = len(n.Replies)
		reachable[n.ID] = n
		for _, r := range n.Replies {
			walk(r, level+1)
		}
	}
	for _, r := range roots {
		walk(r, 0)
	}

	return roots, reachable
}
