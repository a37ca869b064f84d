package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// StudentHandler serves the occupant roster
type StudentHandler struct {
	occupantService *services.OccupantService
	logger          *logrus.Logger
}

// NewStudentHandler creates a new roster handler
func NewStudentHandler(occupantService *services.OccupantService, logger *logrus.Logger) *StudentHandler {
	return &StudentHandler{occupantService: occupantService, logger: logger}
}

// List handles GET /api/students
func (h *StudentHandler) List(c *gin.Context) {
	occupants, err := h.occupantService.List(c.Request.Context(), models.OccupantFilter{
		Status:     models.OccupantStatus(c.Query("status")),
		Coaching:   c.Query("coaching"),
		RoomNumber: c.Query("roomNumber"),
		Search:     c.Query("search"),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if occupants == nil {
		occupants = []models.Occupant{}
	}
	c.JSON(http.StatusOK, gin.H{"students": occupants, "count": len(occupants)})
}

// Stats handles GET /api/students/stats/summary
func (h *StudentHandler) Stats(c *gin.Context) {
	stats, err := h.occupantService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Get handles GET /api/students/:id
func (h *StudentHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	occupant, err := h.occupantService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, occupant)
}

// Create handles POST /api/students
func (h *StudentHandler) Create(c *gin.Context) {
	account := middleware.MustGetAccount(c)

	var req models.OccupantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	occupant, err := h.occupantService.Create(c.Request.Context(), account.ID, req, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Student created successfully", "student": occupant})
}

// Update handles PUT /api/students/:id
func (h *StudentHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.OccupantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	occupant, err := h.occupantService.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student updated successfully", "student": occupant})
}

// Checkout handles DELETE /api/students/:id
func (h *StudentHandler) Checkout(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.occupantService.Checkout(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Student checked out successfully"})
}

// UploadPhoto handles POST /api/students/:id/photo (multipart field "photo")
func (h *StudentHandler) UploadPhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "No file uploaded"})
		return
	}

	photoURL, err := h.occupantService.UpdatePhoto(c.Request.Context(), id, file)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Photo uploaded successfully", "photoUrl": photoURL})
}
