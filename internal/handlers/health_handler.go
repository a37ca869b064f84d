package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports database reachability
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports service and database health
type HealthHandler struct {
	db     Pinger
	logger *logrus.Logger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, database, code := "ok", "connected", http.StatusOK
	if err := h.db.PingContext(ctx); err != nil {
		h.logger.WithError(err).Warn("Health check database ping failed")
		status, database, code = "degraded", "disconnected", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"database":  database,
		"timestamp": time.Now().UTC(),
	})
}
