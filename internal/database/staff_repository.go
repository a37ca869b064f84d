package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
)

const staffColumns = `id, name, role, description, icon, display_order, image_url, is_active, created_at, updated_at`

// StaffRepository handles public staff profile cards
type StaffRepository struct {
	db DB
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db DB) *StaffRepository {
	return &StaffRepository{db: db}
}

// List returns staff ordered for display. activeOnly hides inactive cards.
func (r *StaffRepository) List(ctx context.Context, activeOnly bool) ([]models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY display_order ASC, created_at ASC`

	staff := []models.StaffMember{}
	if err := r.db.SelectContext(ctx, &staff, query); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

// GetByID retrieves a staff member. Returns nil if not found.
func (r *StaffRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = $1`

	var member models.StaffMember
	if err := r.db.GetContext(ctx, &member, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get staff member: %w", err)
	}
	return &member, nil
}

// Create inserts a staff member
func (r *StaffRepository) Create(ctx context.Context, member *models.StaffMember) error {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	query := `
		INSERT INTO staff_members (id, name, role, description, icon, display_order, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		member.ID, member.Name, member.Role, member.Description, member.Icon,
		member.DisplayOrder, member.ImageURL, member.IsActive,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create staff member: %w", err)
	}
	return nil
}

// Update saves every editable field of a staff member
func (r *StaffRepository) Update(ctx context.Context, member *models.StaffMember) error {
	query := `
		UPDATE staff_members
		SET name = $2, role = $3, description = $4, icon = $5, display_order = $6,
		    image_url = $7, is_active = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		member.ID, member.Name, member.Role, member.Description, member.Icon,
		member.DisplayOrder, member.ImageURL, member.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff member: %w", err)
	}
	return expectOneRow(result, "staff member")
}

// Delete removes a staff member
func (r *StaffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM staff_members WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return expectOneRow(result, "staff member")
}
