package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// RentHandler serves monthly rent status and payment recording
type RentHandler struct {
	rentService *services.RentService
	activity    services.ActivityRecorder
	logger      *logrus.Logger
}

// NewRentHandler creates a new rent handler
func NewRentHandler(rentService *services.RentService, activity services.ActivityRecorder, logger *logrus.Logger) *RentHandler {
	return &RentHandler{
		rentService: rentService,
		activity:    activity,
		logger:      logger,
	}
}

// Status handles GET /api/rent/status?month=YYYY-MM
func (h *RentHandler) Status(c *gin.Context) {
	status, err := h.rentService.Status(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Export handles GET /api/rent/export?month=YYYY-MM
func (h *RentHandler) Export(c *gin.Context) {
	status, err := h.rentService.Status(c.Request.Context(), c.Query("month"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	data, err := services.ExportRentStatus(status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="rent-status-%s.xlsx"`, status.Month))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// RecordPayment handles POST /api/rent/payment
func (h *RentHandler) RecordPayment(c *gin.Context) {
	account := middleware.MustGetAccount(c)

	var req models.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	occupantID, err := uuid.Parse(req.OccupantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid occupantId"})
		return
	}

	payment, err := h.rentService.RecordPayment(c.Request.Context(), services.RecordPaymentInput{
		OccupantID:    occupantID,
		Month:         req.Month,
		AmountPaid:    *req.AmountPaid,
		PaymentMethod: models.PaymentMethod(req.PaymentMethod),
		TransactionID: req.TransactionID,
		Notes:         req.Notes,
		RecordedBy:    account.ID,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"occupant_id": occupantID,
		"month":       payment.Month,
		"amount_paid": payment.AmountPaid,
		"status":      payment.Status,
		"recorded_by": account.ID,
	}).Info("Payment recorded")

	client := clientInfo(c)
	h.activity.Record(c.Request.Context(), services.ActivityEvent{
		AccountID: account.ID,
		Action:    models.ActionBookingPayment,
		Details: map[string]interface{}{
			"studentId":  occupantID.String(),
			"month":      string(payment.Month),
			"amountPaid": payment.AmountPaid,
			"status":     string(payment.Status),
		},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})

	c.JSON(http.StatusOK, gin.H{"message": "Payment recorded", "payment": payment})
}

// History handles GET /api/rent/history/:occupantId
func (h *RentHandler) History(c *gin.Context) {
	occupantID, ok := parseIDParam(c, "occupantId")
	if !ok {
		return
	}

	history, err := h.rentService.History(c.Request.Context(), occupantID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// Stats handles GET /api/rent/stats
func (h *RentHandler) Stats(c *gin.Context) {
	current, trend, err := h.rentService.CollectionTrend(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"currentMonth": current,
		"monthlyStats": trend,
	})
}
