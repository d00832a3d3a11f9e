package rest

import (
	"net/http"

	"github.com/dfryer1193/flog/api"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/gin-gonic/gin"
)

// POST /api/posts/actions/sync
//
// A failed run still reports the writes it made before stopping.
func (h *Handler) SyncPosts(c *gin.Context) {
	result, err := h.syncer.Sync(c.Request.Context())
	body := api.SyncResult{
		Created: result.Created,
		Updated: result.Updated,
		Deleted: result.Deleted,
	}
	if err != nil {
		_ = c.Error(err)
		status, msg := statusFor(err)
		body.ErrorKind = domain.SyncErrorKind(err)
		c.AbortWithStatusJSON(status, api.Fail(status, msg, body))
		return
	}
	respond(c, http.StatusOK, body)
}

// GET /api/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.stats.Stats(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	recent := make([]api.PostSummary, 0, len(stats.RecentPosts))
	for _, p := range stats.RecentPosts {
		recent = append(recent, h.summary(p))
	}
	respond(c, http.StatusOK, api.Stats{
		TotalPosts:     stats.TotalPosts,
		TotalComments:  stats.TotalComments,
		TotalViews:     stats.TotalViews,
		RecentPosts:    recent,
		RecentComments: api.NewComments(stats.RecentComments),
	})
}

// GET /api/platform
func (h *Handler) GetPlatform(c *gin.Context) {
	p, err := h.platform.Get(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.Platform{Title: p.Title, Description: p.Description, Footer: p.Footer})
}

// PUT /api/platform
func (h *Handler) UpdatePlatform(c *gin.Context) {
	var body api.Platform
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, &domain.ValidationError{Field: "body", Message: err.Error()})
		return
	}

	p, err := h.platform.Update(c.Request.Context(), domain.Platform{
		Title:       body.Title,
		Description: body.Description,
		Footer:      body.Footer,
	})
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, api.Platform{Title: p.Title, Description: p.Description, Footer: p.Footer})
}
