package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"grc-center/internal/database"
	"grc-center/internal/models"
	"grc-center/internal/services"
)

const maxEvidenceUpload = 50 << 20

func (h *Handlers) ListEvidence(c *gin.Context) {
	f := database.EvidenceFilter{
		ControlRef: c.Query("control_id"),
		Framework:  c.Query("framework"),
	}
	var err error
	if f.Type, err = queryEnum(c, "evidence_type", models.ParseEvidenceType); err != nil {
		h.fail(c, err)
		return
	}
	if f.Status, err = queryEnum(c, "status", models.ParseEvidenceStatus); err != nil {
		h.fail(c, err)
		return
	}
	if f.Page, err = page(c); err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.svc.ListEvidence(c.Request.Context(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) CreateEvidence(c *gin.Context) {
	var in services.EvidenceInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	e, err := h.svc.CreateEvidence(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// UploadEvidence takes a multipart "file" plus optional form fields
// describing it.
func (h *Handlers) UploadEvidence(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.fail(c, &services.ValidationError{Field: "file", Message: "a file upload is required"})
		return
	}
	if fh.Size > maxEvidenceUpload {
		h.fail(c, &services.ValidationError{Field: "file", Message: fmt.Sprintf("must not exceed %d bytes", maxEvidenceUpload)})
		return
	}
	validUntil, err := parseTime("valid_until", c.PostForm("valid_until"))
	if err != nil {
		h.fail(c, err)
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("open upload: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		h.fail(c, fmt.Errorf("read upload: %w", err))
		return
	}

	e, err := h.svc.UploadEvidence(c.Request.Context(), services.UploadInput{
		Filename:      fh.Filename,
		Data:          data,
		Title:         c.PostForm("title"),
		Description:   c.PostForm("description"),
		EvidenceType:  c.PostForm("evidence_type"),
		CollectedBy:   c.PostForm("collected_by"),
		ControlID:     c.PostForm("control_id"),
		Framework:     c.PostForm("framework"),
		RequirementID: c.PostForm("requirement_id"),
		ValidUntil:    validUntil,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

func (h *Handlers) GetEvidence(c *gin.Context) {
	e, err := h.svc.GetEvidence(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handlers) DownloadEvidence(c *gin.Context) {
	name, data, err := h.svc.EvidenceFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, http.DetectContentType(data), data)
}

func (h *Handlers) VerifyEvidence(c *gin.Context) {
	var in services.VerifyInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	e, err := h.svc.VerifyEvidence(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (h *Handlers) CreateCollection(c *gin.Context) {
	var in services.CollectionInput
	if err := bindJSON(c, &in); err != nil {
		h.fail(c, err)
		return
	}
	coll, err := h.svc.CreateCollection(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, coll)
}

func (h *Handlers) ListCollections(c *gin.Context) {
	list, err := h.svc.ListCollections(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) EvidenceSummary(c *gin.Context) {
	sum, err := h.svc.EvidenceSummary(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
