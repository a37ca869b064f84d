package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// StaffHandler handles staff directory HTTP requests
type StaffHandler struct {
	staffService *services.StaffService
	logger       *logrus.Logger
}

// NewStaffHandler creates a new StaffHandler
func NewStaffHandler(staffService *services.StaffService, logger *logrus.Logger) *StaffHandler {
	return &StaffHandler{staffService: staffService, logger: logger}
}

// ListActive handles GET /api/staff
func (h *StaffHandler) ListActive(c *gin.Context) {
	h.list(c, true)
}

// ListAll handles GET /api/staff/all
func (h *StaffHandler) ListAll(c *gin.Context) {
	h.list(c, false)
}

func (h *StaffHandler) list(c *gin.Context, activeOnly bool) {
	members, err := h.staffService.List(c.Request.Context(), activeOnly)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"staff": members})
}

// Create handles POST /api/staff (multipart, optional "image")
func (h *StaffHandler) Create(c *gin.Context) {
	var req models.StaffInput
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}

	member, err := h.staffService.Create(c.Request.Context(), req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Staff member added", "staff": member})
}

// Update handles PUT /api/staff/:id
func (h *StaffHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.StaffInput
	if err := c.ShouldBind(&req); err != nil {
		respondValidation(c, err)
		return
	}
	image, ok := optionalFile(c, "image")
	if !ok {
		return
	}

	member, err := h.staffService.Update(c.Request.Context(), id, req, image)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Staff member updated", "staff": member})
}

// Delete handles DELETE /api/staff/:id
func (h *StaffHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.staffService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Staff member deleted"})
}

// optionalFile returns the uploaded file or nil when the field is absent.
// Any other multipart failure is answered with 400.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	file, err := c.FormFile(field)
	if err == nil {
		return file, true
	}
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, true
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid file upload"})
	return nil, false
}
