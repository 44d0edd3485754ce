package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/services"
)

func (h *Handlers) ListControls(c *gin.Context) {
	var f database.ControlFilter
	var err error
	if f.Status, err = queryEnum(c, "status", models.ParseControlStatus); err != nil {
		h.fail(c, err)
		return
	}
	if f.Page, err = page(c); err != nil {
		h.fail(c, err)
		return
	}
	controls, err := h.svc.ListControls(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, controls)
}

func (h *Handlers) CreateControl(c *gin.Context) {
	var in services.ControlInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	control, err := h.svc.CreateControl(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, control)
}

func (h *Handlers) GetControl(c *gin.Context) {
	control, err := h.svc.GetControl(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, control)
}

func (h *Handlers) UpdateControl(c *gin.Context) {
	var u services.ControlUpdate
	if err := bindJSON(c, &u); err != nil {
		h.fail(c, err)
		return
	}
	control, err := h.svc.UpdateControl(c.Request.Context(), c.Param("id"), u)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, control)
}

func (h *Handlers) InitControlFrameworks(c *gin.Context) {
	res, err := h.svc.InitControlFrameworks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handlers) ListControlFrameworks(c *gin.Context) {
	frameworks, err := h.svc.ListControlFrameworks(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, frameworks)
}

func (h *Handlers) ControlMappings(c *gin.Context) {
	mappings, err := h.svc.ControlMappings(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, mappings)
}

func (h *Handlers) MapControl(c *gin.Context) {
	var in services.MappingInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	mapping, err := h.svc.MapControl(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapping)
}

func (h *Handlers) ControlCoverage(c *gin.Context) {
	cov, err := h.svc.ControlCoverage(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cov)
}
