package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/services"
	"grc-center/internal/transfer"
)

func riskFilter(c *gin.Context) (database.RiskFilter, error) {
	var f database.RiskFilter
	var err error
	if f.Category, err = queryEnum(c, "category", models.ParseRiskCategory); err != nil {
		return f, err
	}
	if f.Status, err = queryEnum(c, "status", models.ParseRiskStatus); err != nil {
		return f, err
	}
	if f.MinScore, err = queryFloat(c, "min_score"); err != nil {
		return f, err
	}
	if f.MaxScore, err = queryFloat(c, "max_score"); err != nil {
		return f, err
	}
	f.Page, err = page(c)
	return f, err
}

func (h *Handlers) ListRisks(c *gin.Context) {
	f, err := riskFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	risks, err := h.svc.ListRisks(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, risks)
}

func (h *Handlers) CreateRisk(c *gin.Context) {
	var in services.RiskInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	risk, err := h.svc.CreateRisk(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, risk)
}

func (h *Handlers) GetRisk(c *gin.Context) {
	risk, err := h.svc.GetRisk(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

func (h *Handlers) UpdateRisk(c *gin.Context) {
	var u services.RiskUpdate
	if err := bindJSON(c, &u); err != nil {
		h.fail(c, err)
		return
	}
	risk, err := h.svc.UpdateRisk(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, risk)
}

func (h *Handlers) DeleteRisk(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteRisk(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Risk deleted", "risk_id": id})
}

func (h *Handlers) RiskStatistics(c *gin.Context) {
	stats, err := h.svc.RiskStatistics(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handlers) RiskHeatmap(c *gin.Context) {
	cells, err := h.svc.RiskHeatmap(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"heatmap": cells})
}

// ImportRisks takes a multipart "file" holding a risk register workbook.
func (h *Handlers) ImportRisks(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, &services.ValidationError{Field: "file", Message: "an .xlsx upload is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()

	report, err := h.svc.ImportRisks(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handlers) ExportRisks(c *gin.Context) {
	f, err := riskFilter(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	buf, name, err := h.svc.ExportRisks(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
	c.Data(http.StatusOK, transfer.XLSXContentType, buf.Bytes())
}
