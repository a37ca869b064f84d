package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	accounts map[string]*models.Account
	err      error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.Account, error) {
	if f.err != nil {
		return nil, f.err
	}
	account, ok := f.accounts[token]
	if !ok {
		return nil, services.Unauthorized("Invalid token")
	}
	return account, nil
}

func newAccount(role models.Role) *models.Account {
	return &models.Account{
		ID:       uuid.New(),
		Name:     "Test " + string(role),
		Email:    string(role) + "@example.com",
		Role:     role,
		IsActive: true,
	}
}

func setupTestRouter() (*gin.Engine, *fakeAuthenticator, *logrus.Logger) {
	gin.SetMode(gin.TestMode)
	logger, _ := test.NewNullLogger()
	auth := &fakeAuthenticator{accounts: map[string]*models.Account{}}
	return gin.New(), auth, logger
}

func TestAuthMiddleware_Success(t *testing.T) {
	router, auth, logger := setupTestRouter()
	account := newAccount(models.RoleManager)
	auth.accounts["good-token"] = account

	router.GET("/protected", AuthMiddleware(auth, logger), func(c *gin.Context) {
		got, exists := GetAccount(c)
		require.True(t, exists)
		c.JSON(http.StatusOK, gin.H{"message": "success", "email": got.Email})
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "success")
	assert.Contains(t, w.Body.String(), account.Email)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	tests := []struct {
		name         string
		header       string
		expectedCode string
	}{
		{"missing header", "", "MISSING_AUTH_HEADER"},
		{"no bearer prefix", "good-token", "INVALID_AUTH_FORMAT"},
		{"wrong scheme", "Basic good-token", "INVALID_AUTH_FORMAT"},
		{"empty token", "Bearer   ", "INVALID_AUTH_FORMAT"},
		{"unknown token", "Bearer nope", "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth, logger := setupTestRouter()
			auth.accounts["good-token"] = newAccount(models.RoleAdmin)
			router.GET("/protected", AuthMiddleware(auth, logger), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"message": "should not reach here"})
			})

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedCode)
			assert.NotContains(t, w.Body.String(), "should not reach here")
		})
	}
}

func TestAuthMiddleware_DeactivatedAccountMessage(t *testing.T) {
	router, auth, logger := setupTestRouter()
	auth.err = services.Unauthorized("Account is deactivated")
	router.GET("/protected", AuthMiddleware(auth, logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Account is deactivated")
}

func TestAuthMiddleware_StoreFailure(t *testing.T) {
	router, auth, logger := setupTestRouter()
	auth.err = errors.New("connection refused")
	router.GET("/protected", AuthMiddleware(auth, logger), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		guard      gin.HandlerFunc
		role       models.Role
		wantStatus int
	}{
		{"staff admits viewer", RequireStaff(), models.RoleViewer, http.StatusOK},
		{"staff admits reception", RequireStaff(), models.RoleReception, http.StatusOK},
		{"staff rejects student", RequireStaff(), models.RoleStudent, http.StatusForbidden},
		{"admin admits admin", RequireAdmin(), models.RoleAdmin, http.StatusOK},
		{"admin rejects manager", RequireAdmin(), models.RoleManager, http.StatusForbidden},
		{"admin or manager admits manager", RequireAdminOrManager(), models.RoleManager, http.StatusOK},
		{"admin or manager rejects reception", RequireAdminOrManager(), models.RoleReception, http.StatusForbidden},
		{"recorder admits reception", RequireRecorder(), models.RoleReception, http.StatusOK},
		{"recorder rejects viewer", RequireRecorder(), models.RoleViewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth, logger := setupTestRouter()
			auth.accounts["token"] = newAccount(tt.role)
			router.GET("/guarded", AuthMiddleware(auth, logger), tt.guard, func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
			req.Header.Set("Authorization", "Bearer token")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequireRole_WithoutAuth(t *testing.T) {
	router, _, _ := setupTestRouter()
	router.GET("/guarded", RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/guarded", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "MISSING_USER_CONTEXT")
}

func TestBlockViewerWrites(t *testing.T) {
	tests := []struct {
		name       string
		role       models.Role
		method     string
		wantStatus int
	}{
		{"viewer read allowed", models.RoleViewer, http.MethodGet, http.StatusOK},
		{"viewer post blocked", models.RoleViewer, http.MethodPost, http.StatusForbidden},
		{"viewer put blocked", models.RoleViewer, http.MethodPut, http.StatusForbidden},
		{"viewer patch blocked", models.RoleViewer, http.MethodPatch, http.StatusForbidden},
		{"viewer delete blocked", models.RoleViewer, http.MethodDelete, http.StatusForbidden},
		{"admin post allowed", models.RoleAdmin, http.MethodPost, http.StatusOK},
		{"student post allowed", models.RoleStudent, http.MethodPost, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, auth, logger := setupTestRouter()
			auth.accounts["token"] = newAccount(tt.role)
			router.Handle(tt.method, "/resource", AuthMiddleware(auth, logger), BlockViewerWrites(), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, "/resource", nil)
			req.Header.Set("Authorization", "Bearer token")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Body.String(), DemoModeMessage)
			}
		})
	}
}

func TestGetAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		account := newAccount(models.RoleAdmin)
		c.Set(AccountContextKey, account)

		got, ok := GetAccount(c)
		assert.True(t, ok)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("missing", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		_, ok := GetAccount(c)
		assert.False(t, ok)
	})

	t.Run("wrong type", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Set(AccountContextKey, "not an account")
		_, ok := GetAccount(c)
		assert.False(t, ok)
	})
}

func TestMustGetAccount(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Panics(t, func() {
		MustGetAccount(c)
	})

	c.Set(AccountContextKey, newAccount(models.RoleViewer))
	assert.NotPanics(t, func() {
		MustGetAccount(c)
	})
}

func TestRequestLogger_GradesByStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	router.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for path, level := range map[string]logrus.Level{
		"/ok":      logrus.InfoLevel,
		"/missing": logrus.WarnLevel,
		"/boom":    logrus.ErrorLevel,
	} {
		hook.Reset()
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))

		require.Len(t, hook.Entries, 1, path)
		assert.Equal(t, level, hook.LastEntry().Level, path)
		assert.Equal(t, path, hook.LastEntry().Data["path"])
	}
}
