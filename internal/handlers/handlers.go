// Package handlers serves the JSON API on top of the services layer.
package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/services"
)

// Handlers groups the API handlers and their shared dependencies.
type Handlers struct {
	svc          *services.Service
	integrations Integrations
	log          *slog.Logger
}

func New(svc *services.Service, integ Integrations, log *slog.Logger) *Handlers {
	if log == nil {
		log = slog.Default()
	}
	return &Handlers{svc: svc, integrations: integ, log: log}
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindJSON decodes the request body into dst, reporting decode and binding
// failures as invalid input.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return &services.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}
