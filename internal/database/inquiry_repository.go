package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
)

const inquiryColumns = `id, name, email, phone, address, city, state, course, coaching, room_preference,
		       pickup_location, message, arrival_date, number_of_guests, stay_duration, is_trial_stay,
		       status, admin_notes, created_at, updated_at`

// InquiryRepository handles booking and trial-stay inquiries
type InquiryRepository struct {
	db DB
}

// NewInquiryRepository creates a new inquiry repository
func NewInquiryRepository(db DB) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create inserts a new inquiry
func (r *InquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	if inquiry.ID == uuid.Nil {
		inquiry.ID = uuid.New()
	}
	if inquiry.Status == "" {
		inquiry.Status = models.InquiryStatusNew
	}

	query := `
		INSERT INTO inquiries (
			id, name, email, phone, address, city, state, course, coaching, room_preference,
			pickup_location, message, arrival_date, number_of_guests, stay_duration, is_trial_stay,
			status, admin_notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		inquiry.ID, inquiry.Name, inquiry.Email, inquiry.Phone, inquiry.Address, inquiry.City, inquiry.State,
		inquiry.Course, inquiry.Coaching, string(inquiry.RoomPreference), inquiry.PickupLocation,
		inquiry.Message, inquiry.ArrivalDate, inquiry.NumberOfGuests, inquiry.StayDuration,
		inquiry.IsTrialStay, string(inquiry.Status), inquiry.AdminNotes,
	).Scan(&inquiry.CreatedAt, &inquiry.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create inquiry: %w", err)
	}
	return nil
}

// GetByID retrieves an inquiry by ID. Returns nil if not found.
func (r *InquiryRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	query := `SELECT ` + inquiryColumns + ` FROM inquiries WHERE id = $1`

	var inquiry models.Inquiry
	if err := r.db.GetContext(ctx, &inquiry, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get inquiry: %w", err)
	}
	return &inquiry, nil
}

// List returns one page of inquiries, newest first, with the total matching count
func (r *InquiryRepository) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if filter.Trial != nil {
		args = append(args, *filter.Trial)
		where += fmt.Sprintf(" AND is_trial_stay = $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM inquiries`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + inquiryColumns + ` FROM inquiries` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	inquiries := []models.Inquiry{}
	if err := r.db.SelectContext(ctx, &inquiries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list inquiries: %w", err)
	}
	return inquiries, total, nil
}

// CountByStatus returns the number of inquiries in each status
func (r *InquiryRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	var rows []groupCount
	if err := r.db.SelectContext(ctx, &rows,
		`SELECT status AS key, COUNT(*) AS count FROM inquiries GROUP BY status`,
	); err != nil {
		return nil, fmt.Errorf("failed to count inquiries by status: %w", err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts, nil
}

// Update saves status and admin notes
func (r *InquiryRepository) Update(ctx context.Context, inquiry *models.Inquiry) error {
	query := `
		UPDATE inquiries
		SET status = $2, admin_notes = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRowxContext(ctx, query, inquiry.ID, string(inquiry.Status), inquiry.AdminNotes).
		Scan(&inquiry.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("inquiry %w", ErrNotFound)
		}
		return fmt.Errorf("failed to update inquiry: %w", err)
	}
	return nil
}

// Delete removes an inquiry
func (r *InquiryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inquiries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete inquiry: %w", err)
	}
	return expectOneRow(result, "inquiry")
}
