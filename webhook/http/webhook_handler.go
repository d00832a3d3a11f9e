package http

import (
	"net/http"
	"strings"

	"github.com/dfryer1193/flog/api"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

// Trigger starts a background sync.
type Trigger interface {
	Trigger(reason string)
}

// WebhookHandler turns GitHub push events on the watched ref into syncs.
type WebhookHandler struct {
	webhookSecret []byte
	ref           string
	trigger       Trigger
}

// NewWebhookHandler watches pushes to ref, which may be a branch name or a full
// ref such as refs/tags/v1. With an empty secret signatures are not checked.
func NewWebhookHandler(secret, ref string, trigger Trigger) *WebhookHandler {
	if secret == "" {
		log.Warn().Msg("Webhook secret is not set, payload signatures will not be verified")
	}
	return &WebhookHandler{
		webhookSecret: []byte(secret),
		ref:           qualifyRef(ref),
		trigger:       trigger,
	}
}

func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook/git", h.HandleGitWebhook)
}

func (h *WebhookHandler) HandleGitWebhook(c *gin.Context) {
	payload, err := github.ValidatePayload(c.Request, h.webhookSecret)
	if err != nil {
		log.Warn().Err(err).Msg("Rejected webhook payload")
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid payload", nil))
		return
	}

	event, err := github.ParseWebHook(github.WebHookType(c.Request), payload)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, api.Fail(http.StatusBadRequest, "invalid event", nil))
		return
	}

	switch evt := event.(type) {
	case *github.PushEvent:
		if evt.GetRef() != h.ref {
			log.Debug().Str("ref", evt.GetRef()).Msg("Ignoring push to unwatched ref")
			break
		}
		log.Info().
			Str("ref", evt.GetRef()).
			Str("head", evt.GetAfter()).
			Str("repo", evt.GetRepo().GetFullName()).
			Msg("Push received, scheduling sync")
		h.trigger.Trigger("webhook")
		c.JSON(http.StatusAccepted, api.OK(gin.H{"queued": true}))
		return
	}

	c.Status(http.StatusNoContent)
}

func qualifyRef(ref string) string {
	if strings.HasPrefix(ref, "refs/") {
		return ref
	}
	return "refs/heads/" + ref
}
