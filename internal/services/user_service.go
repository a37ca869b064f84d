package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
)

// UserService implements the account administration rules
type UserService struct {
	accounts AccountStore
	auth     *AuthService
	activity ActivityRecorder
}

// NewUserService creates a new user administration service
func NewUserService(accounts AccountStore, auth *AuthService, activity ActivityRecorder) *UserService {
	return &UserService{accounts: accounts, auth: auth, activity: activity}
}

// List returns accounts matching the filter
func (s *UserService) List(ctx context.Context, filter models.AccountFilter) ([]models.Account, error) {
	return s.accounts.List(ctx, filter)
}

// Create adds an account. Managers may only create student accounts.
func (s *UserService) Create(ctx context.Context, actor *models.Account, req models.CreateAccountRequest, client ClientInfo) (*models.Account, error) {
	role := req.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !role.IsValid() {
		return nil, InvalidArgumentf("invalid role: %q", role)
	}
	if actor.Role != models.RoleAdmin && role != models.RoleStudent {
		return nil, Forbidden("Managers can only create student accounts")
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        models.NewNullString(req.Phone),
		PasswordHash: models.NewNullString(hash),
		Role:         role,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, Conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.activity.Record(ctx, ActivityEvent{
		AccountID: actor.ID,
		Action:    models.ActionUserCreate,
		Details:   map[string]interface{}{"targetUserId": account.ID.String(), "email": account.Email, "role": account.Role},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
	return account, nil
}

// Update edits an account. Admins cannot deactivate or demote themselves.
func (s *UserService) Update(ctx context.Context, actor *models.Account, id uuid.UUID, req models.UpdateAccountRequest, client ClientInfo) (*models.Account, error) {
	account, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, NotFound("User not found")
	}

	self := actor.ID == account.ID
	if self && req.IsActive != nil && !*req.IsActive {
		return nil, InvalidArgument("Cannot deactivate your own account")
	}
	if self && req.Role != nil && *req.Role != account.Role && account.Role.IsAdmin() {
		return nil, InvalidArgument("Cannot change your own admin role")
	}

	if req.Name != nil {
		account.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		account.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Phone != nil {
		account.Phone = models.NewNullString(*req.Phone)
	}
	if req.Role != nil {
		if !req.Role.IsValid() {
			return nil, InvalidArgumentf("invalid role: %q", *req.Role)
		}
		account.Role = *req.Role
	}
	if req.IsActive != nil {
		account.IsActive = *req.IsActive
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, Conflict("User with this email already exists")
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFound("User not found")
		}
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	s.activity.Record(ctx, ActivityEvent{
		AccountID: actor.ID,
		Action:    models.ActionUserUpdate,
		Details:   map[string]interface{}{"targetUserId": account.ID.String(), "role": account.Role, "isActive": account.IsActive},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
	return account, nil
}

// Deactivate soft-deletes an account
func (s *UserService) Deactivate(ctx context.Context, actor *models.Account, id uuid.UUID, client ClientInfo) error {
	if actor.ID == id {
		return InvalidArgument("Cannot delete your own account")
	}

	if err := s.accounts.SetActive(ctx, id, false); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("User not found")
		}
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	s.activity.Record(ctx, ActivityEvent{
		AccountID: actor.ID,
		Action:    models.ActionUserDelete,
		Details:   map[string]interface{}{"targetUserId": id.String()},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
	return nil
}

// ResetPassword sets a new password for any account
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, newPassword string) error {
	if len(newPassword) < 6 {
		return InvalidArgument("Password must be at least 6 characters")
	}
	hash, err := s.auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("User not found")
		}
		return fmt.Errorf("failed to reset password: %w", err)
	}
	return nil
}
