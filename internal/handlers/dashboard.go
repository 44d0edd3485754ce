package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handlers) DashboardOverview(c *gin.Context) {
	overview, err := h.svc.DashboardOverview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (h *Handlers) DashboardTrends(c *gin.Context) {
	days, err := queryInt(c, "days", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	trends, err := h.svc.DashboardTrends(c.Request.Context(), days)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, trends)
}

func (h *Handlers) DashboardKPIs(c *gin.Context) {
	kpis, err := h.svc.DashboardKPIs(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func (h *Handlers) ActionItems(c *gin.Context) {
	items, err := h.svc.ActionItems(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, items)
}

// RecomputeAll refreshes every framework's compliance figures and every
// vendor's risk score.
func (h *Handlers) RecomputeAll(c *gin.Context) {
	sum, err := h.svc.RecomputeAll(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
