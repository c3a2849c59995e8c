package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/twinj/uuid"
)

const RequestIDHeader = "X-Request-Id"

// RequestID Generate a UUID and attach it to each request
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewV4().String()
		c.Set("request_id", id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}
