package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/pkg/logger"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's request id or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// LoggingMiddleware logs every request; 2xx responses are folded into batch summaries
func LoggingMiddleware(log *logger.BatchLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		log.LogRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start), logrus.Fields{
			"client_ip":     c.ClientIP(),
			"request_id":    c.GetString("request_id"),
			"user_agent":    c.Request.UserAgent(),
			"error_message": c.Errors.ByType(gin.ErrorTypePrivate).String(),
		})
	}
}
