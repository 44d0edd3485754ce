package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/integrations"
	"grc-center/internal/services"
)

const internalErrorDetail = "internal server error"

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	var svcErr *integrations.ServiceError
	switch {
	case errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case services.IsInvalidInput(err):
		return http.StatusBadRequest
	case errors.Is(err, integrations.ErrNotConfigured), errors.Is(err, integrations.ErrInvalidProjectKey):
		return http.StatusBadRequest
	case errors.As(err, &svcErr):
		return http.StatusBadGateway
	case errors.Is(err, services.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// fail aborts the request with the status matching err. Messages of
// unexpected errors are logged, not returned.
func (h *Handlers) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		h.log.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err)
		detail = internalErrorDetail
	}
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
