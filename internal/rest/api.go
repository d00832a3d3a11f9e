package rest

import (
	"context"
	"net/http"

	"github.com/dfryer1193/flog/blog/application"
	"github.com/dfryer1193/flog/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Posts    *application.PostService
	Comments *application.CommentService
	Platform *application.PlatformService
	Stats    *application.StatsService
	Syncer   application.Syncer
}

type Options struct {
	// Admin routes are only registered when both are set.
	Username string
	Password string

	// CommentLimiter throttles comment creation when set.
	CommentLimiter *middleware.RateLimiter
	// Health backs GET /healthz.
	Health func(ctx context.Context) error
	// Metrics is served at GET /metrics when set.
	Metrics http.Handler
}

type Handler struct {
	posts    *application.PostService
	comments *application.CommentService
	platform *application.PlatformService
	stats    *application.StatsService
	syncer   application.Syncer
}

// NewApi registers every route on router.
func NewApi(router *gin.Engine, svc Services, opts Options) *Handler {
	h := &Handler{
		posts:    svc.Posts,
		comments: svc.Comments,
		platform: svc.Platform,
		stats:    svc.Stats,
		syncer:   svc.Syncer,
	}

	router.GET("/healthz", healthz(opts.Health))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(opts.Metrics))
	}

	public := router.Group("/api", middleware.BasicAuth(opts.Username, opts.Password, false))
	{
		public.GET("/posts", h.ListPosts)
		public.GET("/posts/:id", h.GetPost)
		public.GET("/posts/:id/comments", h.GetCommentTree)
		public.GET("/posts/:id/comments/top-level", h.GetTopLevelComments)

		public.GET("/categories", h.ListCategories)
		public.GET("/categories/:name/posts", h.ListCategoryPosts)

		public.GET("/comments", h.ListComments)
		public.GET("/comments/:id", h.GetComment)
		public.GET("/comments/:id/replies", h.GetReplies)
		createComment := []gin.HandlerFunc{h.PostComment}
		if opts.CommentLimiter != nil {
			createComment = append([]gin.HandlerFunc{opts.CommentLimiter.Middleware()}, createComment...)
		}
		public.POST("/comments", createComment...)

		public.GET("/platform", h.GetPlatform)
	}

	if opts.Username == "" || opts.Password == "" {
		return h
	}

	admin := router.Group("/api", middleware.BasicAuth(opts.Username, opts.Password, true))
	{
		admin.POST("/posts/actions/sync", h.SyncPosts)
		admin.PUT("/posts/:id/status", h.SetPostStatus)
		admin.DELETE("/posts/:id", h.DeletePost)

		admin.PUT("/comments/:id/status", h.SetCommentStatus)
		admin.DELETE("/comments/:id", h.DeleteComment)

		admin.GET("/stats", h.GetStats)
		admin.PUT("/platform", h.UpdatePlatform)
	}

	return h
}

func healthz(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
