package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AccountStore persists accounts
type AccountStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByGoogleID(ctx context.Context, googleID string) (*models.Account, error)
	List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error)
	Create(ctx context.Context, account *models.Account) error
	Update(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

// LoginLimiter throttles password sign-in attempts
type LoginLimiter interface {
	CheckLogin(ctx context.Context, email, ip string) error
	RecordAttempt(ctx context.Context, email, ip string, succeeded bool) error
}

// ClientInfo identifies the caller of an auth operation for logging and throttling
type ClientInfo struct {
	IPAddress string
	UserAgent string
}

// AuthResult is returned by every sign-in path
type AuthResult struct {
	Token        string          `json:"token"`
	RefreshToken string          `json:"refreshToken,omitempty"`
	User         *models.Account `json:"user"`
}

// RegisterInput is a self-service student sign-up
type RegisterInput struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty,indianphone"`
}

// AuthService authenticates accounts and issues tokens
type AuthService struct {
	accounts   AccountStore
	limiter    LoginLimiter
	google     GoogleVerifier
	jwtService *jwt.Service
	activity   ActivityRecorder
	bcryptCost int
	logger     *logrus.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	accounts AccountStore,
	limiter LoginLimiter,
	google GoogleVerifier,
	jwtService *jwt.Service,
	activity ActivityRecorder,
	bcryptCost int,
	logger *logrus.Logger,
) *AuthService {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		accounts:   accounts,
		limiter:    limiter,
		google:     google,
		jwtService: jwtService,
		activity:   activity,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// HashPassword hashes a plaintext password with the configured cost
func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Login verifies email and password
func (s *AuthService) Login(ctx context.Context, email, password string, client ClientInfo) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := s.limiter.CheckLogin(ctx, email, client.IPAddress); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil || !account.HasPassword() ||
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash.String), []byte(password)) != nil {
		s.recordAttempt(ctx, email, client.IPAddress, false)
		return nil, Unauthorized("Invalid credentials")
	}

	if !account.IsActive {
		return nil, Unauthorized("Account is deactivated")
	}

	s.recordAttempt(ctx, email, client.IPAddress, true)
	return s.completeSignIn(ctx, account, models.ActionLogin, client)
}

// Register creates a student account and signs it in
func (s *AuthService) Register(ctx context.Context, in RegisterInput, client ClientInfo) (*AuthResult, error) {
	existing, err := s.accounts.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if existing != nil {
		return nil, Conflict("User already exists")
	}

	hash, err := s.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		Phone:        models.NewNullString(in.Phone),
		PasswordHash: models.NewNullString(hash),
		Role:         models.RoleStudent,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, Conflict("User already exists")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.completeSignIn(ctx, account, models.ActionRegister, client)
}

// GoogleLogin signs in with a Google ID token, linking or creating the account
func (s *AuthService) GoogleLogin(ctx context.Context, credential string, client ClientInfo) (*AuthResult, error) {
	identity, err := s.google.Verify(credential)
	if err != nil {
		s.logger.WithError(err).Warn("Google sign-in rejected")
		return nil, Unauthorized("Invalid Google credential")
	}

	account, err := s.accounts.GetByGoogleID(ctx, identity.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}

	if account == nil {
		account, err = s.accounts.GetByEmail(ctx, identity.Email)
		if err != nil {
			return nil, fmt.Errorf("failed to load account: %w", err)
		}
		if account != nil && !account.GoogleID.Valid {
			if err := s.accounts.LinkGoogleID(ctx, account.ID, identity.Subject); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
			account.GoogleID = models.NewNullString(identity.Subject)
		}
	}

	if account == nil {
		name := identity.Name
		if name == "" {
			name = strings.Split(identity.Email, "@")[0]
		}
		account = &models.Account{
			Name:     name,
			Email:    identity.Email,
			GoogleID: models.NewNullString(identity.Subject),
			Role:     models.RoleStudent,
			IsActive: true,
		}
		if err := s.accounts.Create(ctx, account); err != nil {
			if errors.Is(err, database.ErrDuplicate) {
				return nil, Conflict("User already exists")
			}
			return nil, fmt.Errorf("failed to create account: %w", err)
		}
	}

	if !account.IsActive {
		return nil, Unauthorized("Account is deactivated")
	}

	return s.completeSignIn(ctx, account, models.ActionGoogleLogin, client)
}

// Refresh exchanges a refresh token for a new access token
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, Unauthorized("Invalid refresh token")
	}

	account, err := s.activeAccount(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateAccessToken(account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &AuthResult{Token: token, RefreshToken: refreshToken, User: account}, nil
}

// Authenticate resolves an access token to an active account
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Account, error) {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		return nil, Unauthorized("Invalid token")
	}
	return s.activeAccount(ctx, claims.UserID)
}

func (s *AuthService) activeAccount(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, Unauthorized("User not found")
	}
	if !account.IsActive {
		return nil, Unauthorized("Account is deactivated")
	}
	return account, nil
}

// ChangePassword replaces the caller's password. Accounts created through Google
// may set a first password without a current one.
func (s *AuthService) ChangePassword(ctx context.Context, accountID uuid.UUID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return NotFound("User not found")
	}

	if account.HasPassword() {
		if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash.String), []byte(currentPassword)) != nil {
			return InvalidArgument("Current password is incorrect")
		}
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, accountID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// Logout records the sign-out. Tokens are stateless and simply expire.
func (s *AuthService) Logout(ctx context.Context, accountID uuid.UUID, client ClientInfo) {
	s.activity.Record(ctx, ActivityEvent{
		AccountID: accountID,
		Action:    models.ActionLogout,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
}

func (s *AuthService) completeSignIn(ctx context.Context, account *models.Account, action models.ActivityAction, client ClientInfo) (*AuthResult, error) {
	token, err := s.jwtService.GenerateAccessToken(account.ID, account.Email, string(account.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(account.ID, account.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if action != models.ActionRegister {
		if err := s.accounts.UpdateLastLogin(ctx, account.ID); err != nil {
			s.logger.WithError(err).WithField("account_id", account.ID).Warn("Failed to update last login")
		}
	}

	s.activity.Record(ctx, ActivityEvent{
		AccountID: account.ID,
		Action:    action,
		Details:   map[string]interface{}{"email": account.Email},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})

	return &AuthResult{Token: token, RefreshToken: refreshToken, User: account}, nil
}

func (s *AuthService) recordAttempt(ctx context.Context, email, ip string, succeeded bool) {
	if err := s.limiter.RecordAttempt(ctx, email, ip, succeeded); err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
	}
}
