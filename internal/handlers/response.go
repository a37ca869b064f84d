package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/mkheight/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// MessageResponse is the body of operations that return nothing else
type MessageResponse struct {
	Message string `json:"message"`
}

var kindStatus = map[services.ErrorKind]int{
	services.KindUnauthorized:    http.StatusUnauthorized,
	services.KindForbidden:       http.StatusForbidden,
	services.KindNotFound:        http.StatusNotFound,
	services.KindInvalidArgument: http.StatusBadRequest,
	services.KindConflict:        http.StatusConflict,
	services.KindRateLimited:     http.StatusTooManyRequests,
}

// respondError maps a service error onto its HTTP status. Untyped errors are
// logged and reported as 500 without leaking their text.
func respondError(c *gin.Context, logger *logrus.Logger, err error) {
	var se *services.Error
	if errors.As(err, &se) {
		status, ok := kindStatus[se.Kind]
		if ok {
			if se.Kind == services.KindRateLimited && se.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(se.RetryAfter.Seconds()))))
			}
			c.JSON(status, ErrorResponse{
				Error:   string(se.Kind),
				Message: se.Message,
			})
			return
		}
	}

	logger.WithError(err).WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).Error("Request failed")
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "Server error",
	})
}

// respondValidation reports a binding failure, naming the first offending field
func respondValidation(c *gin.Context, err error) {
	message := "Invalid request body"
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		message = "Invalid value for " + verrs[0].Field()
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   "validation_error",
		Message: message,
	})
}

// parseIDParam reads a UUID path parameter, answering 400 when malformed
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_argument",
			Message: "Invalid " + name,
		})
		return uuid.Nil, false
	}
	return id, true
}

// queryInt reads an integer query parameter, falling back on absence or garbage
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func clientInfo(c *gin.Context) services.ClientInfo {
	return services.ClientInfo{
		IPAddress: utils.GetRealIP(c),
		UserAgent: utils.GetUserAgent(c),
	}
}
