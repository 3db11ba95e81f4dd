package middleware

import (
	"time"

	"knowledge-base-api/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader  = "X-Request-ID"
	ContextRequestID = "request_id"
)

// RequestLogger tags each request with an id and logs it once served.
// An incoming X-Request-ID is kept.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}

		start := time.Now()

		c.Set(ContextRequestID, reqID)
		c.Header(RequestIDHeader, reqID)

		c.Next()

		fields := []interface{}{
			"request_id", reqID,
			"method", c.Request.Method,
			"uri", c.Request.RequestURI,
			"status", c.Writer.Status(),
			"response_size", c.Writer.Size(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}

		if c.Writer.Status() >= 500 {
			logger.Log.Errorw("request", fields...)
			return
		}
		logger.Log.Infow("request", fields...)
	}
}
