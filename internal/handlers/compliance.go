package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/services"
)

func (h *Handlers) InitComplianceFrameworks(c *gin.Context) {
	res, err := h.svc.InitComplianceFrameworks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) ListComplianceFrameworks(c *gin.Context) {
	active, err := queryBool(c, "is_active")
	if err != nil {
		h.fail(c, err)
		return
	}
	frameworks, err := h.svc.ListComplianceFrameworks(c.Request.Context(), active)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, frameworks)
}

func (h *Handlers) GetComplianceFramework(c *gin.Context) {
	fw, err := h.svc.GetComplianceFramework(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fw)
}

func (h *Handlers) ListRequirements(c *gin.Context) {
	reqs, err := h.svc.ListRequirements(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

func (h *Handlers) CreateRequirement(c *gin.Context) {
	var in services.RequirementInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	req, err := h.svc.CreateRequirement(c.Request.Context(), c.Param("code"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handlers) UpdateRequirementStatus(c *gin.Context) {
	var u services.RequirementStatusUpdate
	if err := bindJSON(c, &u); err != nil {
		h.fail(c, err)
		return
	}
	req, err := h.svc.UpdateRequirementStatus(c.Request.Context(), c.Param("code"), c.Param("req"), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handlers) RecomputeFramework(c *gin.Context) {
	res, err := h.svc.RecomputeFramework(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) ComplianceDashboard(c *gin.Context) {
	dash, err := h.svc.ComplianceDashboard(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"frameworks": dash})
}

func (h *Handlers) GapAnalysis(c *gin.Context) {
	gaps, err := h.svc.GapAnalysis(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gaps)
}
