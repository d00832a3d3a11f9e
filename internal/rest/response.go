package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dfryer1193/flog/api"
	"github.com/dfryer1193/flog/blog/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, api.OK(data))
}

func fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, api.Fail(status, msg, nil))
}

// statusFor maps an error to its HTTP status and client-facing message.
func statusFor(err error) (int, string) {
	var (
		validation *domain.ValidationError
		busy       *domain.SyncInProgressError
		duplicate  *domain.DuplicateSlugError
		ioErr      *domain.IOError
		persistErr *domain.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, validation.Error()
	case errors.Is(err, domain.ErrInvalidStatus):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.As(err, &busy):
		return http.StatusConflict, busy.Error()
	case errors.As(err, &duplicate):
		return http.StatusConflict, duplicate.Error()
	case errors.Is(err, domain.ErrHasReplies):
		return http.StatusConflict, "comment has replies"
	case errors.As(err, &ioErr):
		return http.StatusInternalServerError, ioErr.Error()
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, persistErr.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

func parsePage(c *gin.Context) (domain.Page, error) {
	number, err := queryInt(c, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.NewPage(number, size)
}

// queryInt returns 0 for an absent parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Message: "must be an integer"}
	}
	return n, nil
}

// parseStatusFilter reads ?status=show|hide|all. "all" and absent both mean no filter.
func parseStatusFilter(c *gin.Context) (*domain.Status, error) {
	raw := c.Query("status")
	if raw == "" || raw == "all" {
		return nil, nil
	}
	s, err := domain.ParseStatus(raw)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func toPage[T, U any](r domain.PageResult[T], convert func(T) U) api.Page[U] {
	items := make([]U, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, convert(item))
	}
	return api.Page[U]{Total: r.Total, Page: r.Page, Size: r.Size, Items: items}
}
