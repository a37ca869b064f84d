package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
)

// AccountContextKey is the key used to store the authenticated account in Gin context
const AccountContextKey = "account"

// DemoModeMessage is returned to viewer accounts on every mutating request
const DemoModeMessage = "Demo mode: Changes are not allowed. This is a read-only account."

// Authenticator resolves a bearer token to an active account
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Account, error)
}

// AuthMiddleware creates a middleware that validates the bearer token and loads the account
func AuthMiddleware(auth Authenticator, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token", "MISSING_AUTH_HEADER")
			return
		}

		// Check Bearer token format
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abort(c, http.StatusUnauthorized, "unauthorized",
				"Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		account, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			var se *services.Error
			if errors.As(err, &se) && se.Kind == services.KindUnauthorized {
				logger.WithFields(logrus.Fields{
					"path": c.Request.URL.Path,
					"ip":   c.ClientIP(),
				}).Debugf("Auth failed: %s", se.Message)
				abort(c, http.StatusUnauthorized, "unauthorized", se.Message, "INVALID_TOKEN")
				return
			}
			logger.WithError(err).Error("Failed to authenticate request")
			abort(c, http.StatusInternalServerError, "internal_error", "Authentication failed", "")
			return
		}

		c.Set(AccountContextKey, account)
		c.Next()
	}
}

// RequireRole creates a middleware that admits only accounts whose role
// satisfies allowed
func RequireRole(allowed func(models.Role) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccount(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized",
				"User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}
		if !allowed(account.Role) {
			abort(c, http.StatusForbidden, "forbidden",
				"You don't have permission to access this resource", "INSUFFICIENT_PERMISSIONS")
			return
		}
		c.Next()
	}
}

// RequireStaff admits admin, manager, reception and viewer accounts
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.Role.IsStaff)
}

// RequireAdmin admits only admins
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(models.Role.IsAdmin)
}

// RequireAdminOrManager admits admins and managers
func RequireAdminOrManager() gin.HandlerFunc {
	return RequireRole(models.Role.IsAdminOrManager)
}

// RequireRecorder admits roles allowed to edit the roster and record rent
func RequireRecorder() gin.HandlerFunc {
	return RequireRole(models.Role.CanRecordPayments)
}

// BlockViewerWrites refuses POST, PUT, PATCH and DELETE from read-only accounts
func BlockViewerWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		account, ok := GetAccount(c)
		if ok && account.Role.IsReadOnly() && isMutating(c.Request.Method) {
			abort(c, http.StatusForbidden, "forbidden", DemoModeMessage, "DEMO_MODE")
			return
		}
		c.Next()
	}
}

// GetAccount retrieves the authenticated account from Gin context
func GetAccount(c *gin.Context) (*models.Account, bool) {
	value, exists := c.Get(AccountContextKey)
	if !exists {
		return nil, false
	}
	account, ok := value.(*models.Account)
	if !ok || account == nil {
		return nil, false
	}
	return account, true
}

// MustGetAccount retrieves the account or panics (use only after AuthMiddleware)
func MustGetAccount(c *gin.Context) *models.Account {
	account, ok := GetAccount(c)
	if !ok {
		panic("account not found in context - ensure AuthMiddleware is applied")
	}
	return account
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func abort(c *gin.Context, status int, errCode, message, code string) {
	body := gin.H{
		"error":   errCode,
		"message": message,
	}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}
