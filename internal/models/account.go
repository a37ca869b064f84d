package models

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a login identity for staff and students
type Account struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Phone        NullString `json:"phone" db:"phone"`
	PasswordHash NullString `json:"-" db:"password_hash"`
	GoogleID     NullString `json:"-" db:"google_id"`
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	LastLoginAt  NullTime   `json:"lastLogin" db:"last_login_at"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// HasPassword reports whether the account can sign in with email and password
func (a *Account) HasPassword() bool {
	return a.PasswordHash.Valid && a.PasswordHash.String != ""
}

// AccountFilter narrows account listings
type AccountFilter struct {
	Role   Role
	Active *bool
	Search string
}

// CreateAccountRequest is the admin payload for creating an account
type CreateAccountRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone" binding:"omitempty,indianphone"`
	Role     Role   `json:"role" binding:"omitempty,role"`
}

// UpdateAccountRequest is the admin payload for editing an account
type UpdateAccountRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty"`
	Role     *Role   `json:"role" binding:"omitempty,role"`
	IsActive *bool   `json:"isActive"`
}
