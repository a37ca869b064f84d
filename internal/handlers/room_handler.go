package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// RoomHandler serves the building layout and occupancy views
type RoomHandler struct {
	occupancy *services.OccupancyService
	logger    *logrus.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(occupancy *services.OccupancyService, logger *logrus.Logger) *RoomHandler {
	return &RoomHandler{occupancy: occupancy, logger: logger}
}

// Availability handles GET /api/rooms/availability
func (h *RoomHandler) Availability(c *gin.Context) {
	availability, err := h.occupancy.Availability(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

// Config handles GET /api/rooms/config
func (h *RoomHandler) Config(c *gin.Context) {
	layout := h.occupancy.Layout()
	c.JSON(http.StatusOK, gin.H{
		"totalFloors": layout.TotalFloors(),
		"totalRooms":  layout.TotalRooms(),
		"floors":      layout.Floors(),
	})
}

// Occupancy handles GET /api/rooms/occupancy
func (h *RoomHandler) Occupancy(c *gin.Context) {
	building, err := h.occupancy.Building(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, building)
}

// Floor handles GET /api/rooms/floor/:floor
func (h *RoomHandler) Floor(c *gin.Context) {
	floor, err := strconv.Atoi(c.Param("floor"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_argument",
			Message: "Invalid floor number",
		})
		return
	}

	occupancy, err := h.occupancy.Floor(c.Request.Context(), floor)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, occupancy)
}
