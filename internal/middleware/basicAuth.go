package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"

	"github.com/dfryer1193/flog/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const authenticatedKey = "authenticated"

// BasicAuth checks HTTP Basic credentials against username and password.
//
// With required set, requests without valid credentials are rejected. Otherwise
// anonymous requests pass through and only a wrong password is rejected.
// Handlers read the outcome with IsAuthenticated.
func BasicAuth(username, password string, required bool) gin.HandlerFunc {
	wantUser := sha256.Sum256([]byte(username))
	wantPass := sha256.Sum256([]byte(password))
	configured := username != "" && password != ""

	return func(c *gin.Context) {
		user, pass, ok := c.Request.BasicAuth()
		if !ok {
			if required {
				unauthorized(c)
				return
			}
			c.Next()
			return
		}

		gotUser := sha256.Sum256([]byte(user))
		gotPass := sha256.Sum256([]byte(pass))
		userMatch := subtle.ConstantTimeCompare(gotUser[:], wantUser[:])
		passMatch := subtle.ConstantTimeCompare(gotPass[:], wantPass[:])
		if !configured || userMatch&passMatch != 1 {
			log.Warn().Str("requestID", RequestID(c)).Str("clientIP", c.ClientIP()).Msg("Rejected credentials")
			unauthorized(c)
			return
		}

		c.Set(authenticatedKey, true)
		c.Next()
	}
}

// IsAuthenticated reports whether BasicAuth accepted the request's credentials.
func IsAuthenticated(c *gin.Context) bool {
	return c.GetBool(authenticatedKey)
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="flog"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, api.Fail(http.StatusUnauthorized, "unauthorized", nil))
}
