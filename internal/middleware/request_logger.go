package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one line per request, graded by response status
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
			"ip":         utils.GetRealIP(c),
			"user_agent": utils.GetUserAgent(c),
		})
		if account, ok := GetAccount(c); ok {
			entry = entry.WithField("account_id", account.ID)
		}
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("Request failed")
		case status >= 400:
			entry.Warn("Request rejected")
		default:
			entry.Info("Request completed")
		}
	}
}
