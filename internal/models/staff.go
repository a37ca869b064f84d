package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStaffIcon is the Font Awesome icon used when none is given
const DefaultStaffIcon = "fa-user-tie"

// StaffMember is a public-facing staff profile card
type StaffMember struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Role         string     `json:"role" db:"role"`
	Description  NullString `json:"description" db:"description"`
	Icon         string     `json:"icon" db:"icon"`
	DisplayOrder int        `json:"order" db:"display_order"`
	ImageURL     NullString `json:"image" db:"image_url"`
	IsActive     bool       `json:"isActive" db:"is_active"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

// StaffInput is the multipart form payload for staff create and update
type StaffInput struct {
	Name         *string `form:"name" binding:"omitempty,min=2,max=100"`
	Role         *string `form:"role" binding:"omitempty,max=100"`
	Description  *string `form:"description" binding:"omitempty,max=1000"`
	Icon         *string `form:"icon" binding:"omitempty,max=50"`
	DisplayOrder *int    `form:"order"`
	IsActive     *bool   `form:"isActive"`
}
