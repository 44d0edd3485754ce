package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grc-center/internal/services"
)

const (
	HeaderRequestID = "X-Request-ID"

	// ContextKeyRequestID is the gin context key holding the request id.
	ContextKeyRequestID = "request_id"

	// maxRequestIDLen matches the audit_logs.request_id column.
	maxRequestIDLen = 64
)

// RequestID reuses the client's X-Request-ID or generates one, echoes it on
// the response and stores it in the request context for logging and audit.
// Oversized or non-printable ids are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set(ContextKeyRequestID, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
