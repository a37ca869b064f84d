package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// QueryHandler serves booking and trial-stay inquiries
type QueryHandler struct {
	inquiryService *services.InquiryService
	logger         *logrus.Logger
}

// NewQueryHandler creates a new inquiry handler
func NewQueryHandler(inquiryService *services.InquiryService, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{inquiryService: inquiryService, logger: logger}
}

// Submit handles POST /api/queries
func (h *QueryHandler) Submit(c *gin.Context) {
	var req models.CreateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	inquiry, err := h.inquiryService.Submit(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Query submitted successfully. We will contact you soon!",
		"query":   inquiry,
	})
}

// List handles GET /api/queries?status=&trial=&page=&limit=
func (h *QueryHandler) List(c *gin.Context) {
	filter := models.InquiryFilter{
		Status: models.InquiryStatus(c.Query("status")),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 0),
	}
	switch c.Query("trial") {
	case "true":
		trial := true
		filter.Trial = &trial
	case "false":
		trial := false
		filter.Trial = &trial
	}

	page, err := h.inquiryService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Get handles GET /api/queries/:id
func (h *QueryHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	account := middleware.MustGetAccount(c)
	inquiry, err := h.inquiryService.Get(c.Request.Context(), account.Role, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, inquiry)
}

// Update handles PATCH /api/queries/:id
func (h *QueryHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateInquiryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	inquiry, err := h.inquiryService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Query updated", "query": inquiry})
}

// Delete handles DELETE /api/queries/:id
func (h *QueryHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.inquiryService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Query deleted"})
}
