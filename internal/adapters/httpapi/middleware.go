package httpapi

import (
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

const (
	UserIDHeader     = "X-User-ID"
	userIDContextKey = "userID"
)

// identify picks the acting user from the X-User-ID header, falling back
// to defaultUser.
func identify(defaultUser string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			userID = defaultUser
		}
		c.Set(userIDContextKey, userID)
		c.Next()
	}
}

// UserID returns the user chosen by identify.
func UserID(c *gin.Context) string {
	return c.GetString(userIDContextKey)
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"user", UserID(c),
			"elapsed", time.Since(start),
		)
	}
}
