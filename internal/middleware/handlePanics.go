package middleware

import (
	"fmt"
	"net/http"

	"github.com/dfryer1193/flog/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HandlePanics is used with gin.CustomRecovery. The panic is logged and the client gets a 500 envelope.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("%v", recovered)
		}
		log.Error().
			Err(err).
			Str("requestID", RequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.Fail(http.StatusInternalServerError, "internal server error", nil))
	}
}
