package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"studybud/pkg/logger"
)

// RequestLogger 在請求結束後記錄方法、路徑、狀態碼與耗時
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		details := map[string]interface{}{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		}
		if visitor := CurrentVisitor(c); visitor.Authenticated() {
			details["user_id"] = visitor.User.ID
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			if len(c.Errors) > 0 {
				details["error"] = c.Errors.String()
			}
			log.Error("http", "request failed", details)
		case status >= 400:
			log.Warn("http", "request rejected", details)
		default:
			log.Info("http", "request handled", details)
		}
	}
}
