package rest

import (
	"net/http"
	"strconv"

	"github.com/dfryer1193/flog/api"
	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/internal/middleware"
	"github.com/gin-gonic/gin"
)

// POST /api/comments
func (h *Handler) PostComment(c *gin.Context) {
	var proto api.CommentProto
	if err := c.ShouldBindJSON(&proto); err != nil {
		fail(c, &domain.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	comment, err := h.comments.Create(c.Request.Context(), application.NewComment{
		PostID:      proto.PostID,
		ParentID:    proto.ParentID,
		AuthorName:  proto.AuthorName,
		AuthorEmail: proto.AuthorEmail,
		AuthorLink:  proto.AuthorLink,
		Content:     proto.Content,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, api.NewComment(comment))
}

// GET /api/posts/:id/comments
func (h *Handler) GetCommentTree(c *gin.Context) {
	postID, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	tree, err := h.comments.Tree(c.Request.Context(), postID, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.NewCommentNodes(tree))
}

// GET /api/posts/:id/comments/top-level
func (h *Handler) GetTopLevelComments(c *gin.Context) {
	postID, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.comments.TopLevel(c.Request.Context(), postID, page, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toPage(result, func(n *domain.CommentNode) api.CommentNode {
		return api.NewCommentNode(n)
	}))
}

// GET /api/comments?post_id=&status=&page=&size=
func (h *Handler) ListComments(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	var filter domain.CommentFilter
	if raw := c.Query("post_id"); raw != "" {
		postID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			fail(c, &domain.ValidationError{Field: "post_id", Message: "must be an integer"})
			return
		}
		filter.PostID = &postID
	}
	authed := middleware.IsAuthenticated(c)
	if authed {
		if filter.Status, err = parseStatusFilter(c); err != nil {
			fail(c, err)
			return
		}
	}

	result, err := h.comments.List(c.Request.Context(), filter, page, authed)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toPage(result, api.NewComment))
}

// GET /api/comments/:id
func (h *Handler) GetComment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	comment, err := h.comments.Get(c.Request.Context(), id, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.NewComment(comment))
}

// GET /api/comments/:id/replies
func (h *Handler) GetReplies(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	replies, err := h.comments.Replies(c.Request.Context(), id, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.NewComments(replies))
}

// PUT /api/comments/:id/status
func (h *Handler) SetCommentStatus(c *gin.Context) {
	id, status, err := bindStatusUpdate(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.comments.SetStatus(c.Request.Context(), id, status); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "status": status})
}

// DELETE /api/comments/:id?with_replies=true
func (h *Handler) DeleteComment(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}
	withReplies, err := strconv.ParseBool(c.DefaultQuery("with_replies", "false"))
	if err != nil {
		fail(c, &domain.ValidationError{Field: "with_replies", Message: "must be a boolean"})
		return
	}

	n, err := h.comments.Delete(c.Request.Context(), id, withReplies)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "deleted": n})
}
