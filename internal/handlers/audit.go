package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
)

func (h *Handlers) ListAuditLogs(c *gin.Context) {
	f := database.AuditFilter{
		Entity: c.Query("entity"),
		Actor:  c.Query("actor"),
	}
	var err error
	if f.Page, err = page(c); err != nil {
		h.fail(c, err)
		return
	}
	logs, err := h.svc.ListAudit(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
