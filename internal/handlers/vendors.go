package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/services"
)

func (h *Handlers) ListVendors(c *gin.Context) {
	var f database.VendorFilter
	var err error
	if f.Status, err = queryEnum(c, "status", models.ParseVendorStatus); err != nil {
		h.fail(c, err)
		return
	}
	if f.RiskLevel, err = queryEnum(c, "risk_level", models.ParseVendorRiskLevel); err != nil {
		h.fail(c, err)
		return
	}
	if f.Page, err = page(c); err != nil {
		h.fail(c, err)
		return
	}
	vendors, err := h.svc.ListVendors(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vendors)
}

func (h *Handlers) CreateVendor(c *gin.Context) {
	var in services.VendorInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	vendor, err := h.svc.CreateVendor(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, vendor)
}

func (h *Handlers) GetVendor(c *gin.Context) {
	vendor, err := h.svc.GetVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handlers) UpdateVendor(c *gin.Context) {
	var u services.VendorUpdate
	if err := bindJSON(c, &u); err != nil {
		h.fail(c, err)
		return
	}
	vendor, err := h.svc.UpdateVendor(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handlers) RecomputeVendor(c *gin.Context) {
	vendor, err := h.svc.RecomputeVendor(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, vendor)
}

func (h *Handlers) CreateAssessment(c *gin.Context) {
	var in services.AssessmentInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	a, err := h.svc.CreateAssessment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (h *Handlers) ListAssessments(c *gin.Context) {
	list, err := h.svc.ListAssessments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetAssessment(c *gin.Context) {
	a, err := h.svc.GetAssessment(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handlers) CompleteAssessment(c *gin.Context) {
	var in services.ScoresInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.CompleteAssessment(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) VendorDistribution(c *gin.Context) {
	dist, err := h.svc.VendorDistribution(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dist)
}
