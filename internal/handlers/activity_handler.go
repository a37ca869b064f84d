package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/mkheight/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ActivityHandler serves the activity log
type ActivityHandler struct {
	activityService *services.ActivityService
	loc             *time.Location
	logger          *logrus.Logger
}

// NewActivityHandler creates a new activity handler. Date filters are read in loc.
func NewActivityHandler(activityService *services.ActivityService, loc *time.Location, logger *logrus.Logger) *ActivityHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityHandler{activityService: activityService, loc: loc, logger: logger}
}

// List handles GET /api/activity?userId=&category=&action=&startDate=&endDate=&page=&limit=
func (h *ActivityHandler) List(c *gin.Context) {
	filter := models.ActivityFilter{
		Category: models.ActivityCategory(c.Query("category")),
		Action:   models.ActivityAction(c.Query("action")),
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", 0),
	}

	if raw := c.Query("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid userId"})
			return
		}
		filter.AccountID = &id
	}

	var ok bool
	if filter.From, ok = h.parseDay(c, "startDate", false); !ok {
		return
	}
	if filter.To, ok = h.parseDay(c, "endDate", true); !ok {
		return
	}

	page, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Stats handles GET /api/activity/stats
func (h *ActivityHandler) Stats(c *gin.Context) {
	stats, err := h.activityService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UserActivity handles GET /api/activity/user/:id
func (h *ActivityHandler) UserActivity(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	activity, err := h.activityService.UserActivity(c.Request.Context(), id, queryInt(c, "page", 1), queryInt(c, "limit", 0))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, activity)
}

// Record handles POST /api/activity
func (h *ActivityHandler) Record(c *gin.Context) {
	account := middleware.MustGetAccount(c)

	var req models.RecordActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	err := h.activityService.RecordClient(c.Request.Context(), account.ID, req, utils.GetRealIP(c), utils.GetUserAgent(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Activity logged"})
}

// parseDay reads a YYYY-MM-DD query parameter as the start of that day, or the
// start of the following day when endOfDay is set
func (h *ActivityHandler) parseDay(c *gin.Context, key string, endOfDay bool) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	day, err := time.ParseInLocation("2006-01-02", raw, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid " + key})
		return nil, false
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1)
	}
	return &day, true
}
