package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const CtxRequestID = "request_id"

// RequestIDMiddleware ensures every request has a stable request ID.
// - Reads X-Request-Id header if present, otherwise generates one
// - Stores it in the Gin context and the request context
// - Echoes it back in response header X-Request-Id
// - Logs method, path, status and latency once the handler chain returns
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set(CtxRequestID, rid)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), rid))
		c.Writer.Header().Set("X-Request-Id", rid)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := logging.FromContext(c.Request.Context()).WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  status,
			"latency": time.Since(start).String(),
		})
		switch {
		case status >= 500:
			entry.Error("request")
		case status >= 400:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// GetRequestID extracts the request ID from a standard context
func GetRequestID(ctx context.Context) string {
	return logging.RequestID(ctx)
}
