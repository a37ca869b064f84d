package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// SettingsHandler serves the public site content document
type SettingsHandler struct {
	settingsService *services.SettingsService
	logger          *logrus.Logger
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *services.SettingsService, logger *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService, logger: logger}
}

// RemoveImageRequest names an image to drop from a list
type RemoveImageRequest struct {
	ImagePath string `json:"imagePath" binding:"required"`
}

// Get handles GET /api/settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update handles PUT /api/settings
func (h *SettingsHandler) Update(c *gin.Context) {
	account := middleware.MustGetAccount(c)

	var req models.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), account.ID, req, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Settings updated successfully", "settings": settings})
}

// AddRoomImage handles POST /api/settings/room-image/:category
func (h *SettingsHandler) AddRoomImage(c *gin.Context) {
	file, ok := requiredFile(c, "image")
	if !ok {
		return
	}
	category := models.RoomCategory(c.Param("category"))

	settings, err := h.settingsService.AddRoomImage(c.Request.Context(), category, file)
	h.respondSettings(c, settings, err, "Image uploaded successfully")
}

// RemoveRoomImage handles DELETE /api/settings/room-image/:category
func (h *SettingsHandler) RemoveRoomImage(c *gin.Context) {
	var req RemoveImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}
	category := models.RoomCategory(c.Param("category"))

	settings, err := h.settingsService.RemoveRoomImage(c.Request.Context(), category, req.ImagePath)
	h.respondSettings(c, settings, err, "Image removed successfully")
}

// AddGalleryImage returns the upload handler for one gallery
func (h *SettingsHandler) AddGalleryImage(gallery models.ImageGallery) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, ok := requiredFile(c, "image")
		if !ok {
			return
		}
		settings, err := h.settingsService.AddGalleryImage(c.Request.Context(), gallery, file)
		h.respondSettings(c, settings, err, "Image uploaded successfully")
	}
}

// RemoveGalleryImage returns the removal handler for one gallery
func (h *SettingsHandler) RemoveGalleryImage(gallery models.ImageGallery) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RemoveImageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
		settings, err := h.settingsService.RemoveGalleryImage(c.Request.Context(), gallery, req.ImagePath)
		h.respondSettings(c, settings, err, "Image removed successfully")
	}
}

// ReplaceAboutImage handles POST /api/settings/about-image
func (h *SettingsHandler) ReplaceAboutImage(c *gin.Context) {
	file, ok := requiredFile(c, "image")
	if !ok {
		return
	}
	settings, err := h.settingsService.ReplaceAboutImage(c.Request.Context(), file)
	h.respondSettings(c, settings, err, "Image uploaded successfully")
}

func (h *SettingsHandler) respondSettings(c *gin.Context, settings *models.SiteSettings, err error, message string) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "settings": settings})
}

func requiredFile(c *gin.Context, field string) (*multipart.FileHeader, bool) {
	file, err := c.FormFile(field)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "No file uploaded"})
		return nil, false
	}
	return file, true
}
