package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// UserHandler serves account administration
type UserHandler struct {
	userService *services.UserService
	logger      *logrus.Logger
}

// NewUserHandler creates a new account administration handler
func NewUserHandler(userService *services.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// ResetPasswordRequest sets a new password for an account
type ResetPasswordRequest struct {
	NewPassword string `json:"newPassword" binding:"required,min=6"`
}

// List handles GET /api/users?role=&active=&search=
func (h *UserHandler) List(c *gin.Context) {
	filter := models.AccountFilter{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("search"),
	}
	if filter.Role != "" && !filter.Role.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid role"})
		return
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_argument", Message: "Invalid active filter"})
			return
		}
		filter.Active = &active
	}

	users, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if users == nil {
		users = []models.Account{}
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// Create handles POST /api/users
func (h *UserHandler) Create(c *gin.Context) {
	actor := middleware.MustGetAccount(c)

	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	account, err := h.userService.Create(c.Request.Context(), actor, req, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully", "user": account})
}

// Update handles PUT /api/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	actor := middleware.MustGetAccount(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	account, err := h.userService.Update(c.Request.Context(), actor, id, req, clientInfo(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully", "user": account})
}

// Deactivate handles DELETE /api/users/:id
func (h *UserHandler) Deactivate(c *gin.Context) {
	actor := middleware.MustGetAccount(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), actor, id, clientInfo(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.WithFields(logrus.Fields{"account_id": id, "actor_id": actor.ID}).Info("Account deactivated")
	c.JSON(http.StatusOK, MessageResponse{Message: "User deactivated successfully"})
}

// ResetPassword handles POST /api/users/:id/reset-password
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), id, req.NewPassword); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successfully"})
}
