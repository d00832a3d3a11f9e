package rest

import (
	"net/http"

	"github.com/dfryer1193/flog/api"
	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/dfryer1193/flog/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// GET /api/posts?page=&size=&category=&search=&status=
func (h *Handler) ListPosts(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	q := application.PostQuery{Search: c.Query("search"), Page: page}
	if category, ok := c.GetQuery("category"); ok {
		q.Category = &category
	}
	authed := middleware.IsAuthenticated(c)
	if authed {
		if q.Status, err = parseStatusFilter(c); err != nil {
			fail(c, err)
			return
		}
	}

	result, err := h.posts.ListPosts(c.Request.Context(), q, authed)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toPage(result, h.summary))
}

// GET /api/posts/:id
func (h *Handler) GetPost(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), id, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}

	rendered, err := h.posts.Render(post)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.NewPost(post, rendered.Snippet, rendered.HTML))
}

// GET /api/categories
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.posts.ListCategories(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	out := make([]api.Category, 0, len(categories))
	for _, cat := range categories {
		out = append(out, api.Category{Name: cat.Name, PostCount: cat.PostCount})
	}
	respond(c, http.StatusOK, out)
}

// GET /api/categories/:name/posts
func (h *Handler) ListCategoryPosts(c *gin.Context) {
	page, err := parsePage(c)
	if err != nil {
		fail(c, err)
		return
	}

	result, err := h.posts.ListCategoryPosts(c.Request.Context(), c.Param("name"), page, middleware.IsAuthenticated(c))
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, toPage(result, h.summary))
}

// PUT /api/posts/:id/status
func (h *Handler) SetPostStatus(c *gin.Context) {
	id, status, err := bindStatusUpdate(c)
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.posts.SetStatus(c.Request.Context(), id, status); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id, "status": status})
}

// DELETE /api/posts/:id
func (h *Handler) DeletePost(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		fail(c, err)
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"id": id})
}

func (h *Handler) summary(p *domain.Post) api.PostSummary {
	rendered, err := h.posts.Render(p)
	if err != nil {
		log.Warn().Err(err).Str("slug", p.Slug).Msg("Failed to render post snippet")
		return api.NewPostSummary(p, "")
	}
	return api.NewPostSummary(p, rendered.Snippet)
}

func bindStatusUpdate(c *gin.Context) (int64, domain.Status, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return 0, 0, err
	}

	var body api.StatusUpdate
	if err := c.ShouldBindJSON(&body); err != nil {
		return 0, 0, &domain.ValidationError{Field: "status", Message: "is required"}
	}
	status, err := domain.ParseStatus(body.Status)
	if err != nil {
		return 0, 0, err
	}
	return id, status, nil
}
