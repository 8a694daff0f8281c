package http

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"buddy-server/internal/apperr"
	"buddy-server/internal/logging"
)

const requestIDHeader = "X-Request-ID"

func corsMiddleware() gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader},
		ExposeHeaders:   []string{requestIDHeader},
		MaxAge:          5 * time.Minute,
	})
}

// requestLogger tags the request context with a request id and writes one
// access log entry per request, leveled by response status.
func requestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Request = c.Request.WithContext(logging.WithRequestID(c.Request.Context(), requestID))

		c.Next()

		status := c.Writer.Status()
		fields := logging.Fields{
			"status":  status,
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"ip":      c.ClientIP(),
			"latency": time.Since(start).String(),
		}
		l := logging.ForContext(c.Request.Context(), log)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("Server Error", nil, fields)
		case status >= http.StatusBadRequest:
			l.Warn("Client Error", fields)
		default:
			l.Info("Request", fields)
		}
	}
}

// recovery turns a panicking handler into a 500 with the generic message.
func recovery(log logging.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logging.ForContext(c.Request.Context(), log).Error("Handler panicked", nil, logging.Fields{"panic": recovered})
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": apperr.Format(nil)})
	})
}
