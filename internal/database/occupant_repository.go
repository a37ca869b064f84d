package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
)

const occupantSelect = `
		SELECT o.id, o.account_id, a.name, a.email, COALESCE(a.phone, '') AS phone,
		       o.father_name, o.mother_name, o.date_of_birth, o.gender, o.blood_group, o.aadhar_number,
		       o.address, o.city, o.state, o.pincode,
		       o.emergency_contact_name, o.emergency_contact_phone, o.emergency_contact_relation,
		       o.room_number, o.room_type, o.joining_date, o.checkout_date, o.monthly_rent, o.rent_due_day,
		       o.coaching, o.course, o.batch, o.target_exam,
		       o.photo_url, o.status, o.notes, o.created_at, o.updated_at
		FROM occupants o
		JOIN accounts a ON a.id = o.account_id
	`

// OccupantRepository handles roster database operations
type OccupantRepository struct {
	db DB
}

// NewOccupantRepository creates a new occupant repository
func NewOccupantRepository(db DB) *OccupantRepository {
	return &OccupantRepository{db: db}
}

// GetByID retrieves an occupant by ID. Returns nil if not found.
func (r *OccupantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Occupant, error) {
	var occupant models.Occupant
	if err := r.db.GetContext(ctx, &occupant, occupantSelect+` WHERE o.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get occupant: %w", err)
	}
	return &occupant, nil
}

// List returns occupants matching the filter, newest first
func (r *OccupantRepository) List(ctx context.Context, filter models.OccupantFilter) ([]models.Occupant, error) {
	query := occupantSelect + ` WHERE 1=1`
	var args []interface{}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += fmt.Sprintf(" AND o.status = $%d", len(args))
	}
	if filter.Coaching != "" {
		args = append(args, "%"+filter.Coaching+"%")
		query += fmt.Sprintf(" AND o.coaching ILIKE $%d", len(args))
	}
	if filter.RoomNumber != "" {
		args = append(args, filter.RoomNumber)
		query += fmt.Sprintf(" AND o.room_number = $%d", len(args))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (a.name ILIKE $%d OR a.email ILIKE $%d OR o.room_number ILIKE $%d OR o.father_name ILIKE $%d)", n, n, n, n)
	}
	query += " ORDER BY o.created_at DESC"

	occupants := []models.Occupant{}
	if err := r.db.SelectContext(ctx, &occupants, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list occupants: %w", err)
	}
	return occupants, nil
}

// ListActive returns every active occupant ordered by room number
func (r *OccupantRepository) ListActive(ctx context.Context) ([]models.Occupant, error) {
	query := occupantSelect + ` WHERE o.status = 'active' ORDER BY o.room_number ASC NULLS FIRST, a.name ASC`

	occupants := []models.Occupant{}
	if err := r.db.SelectContext(ctx, &occupants, query); err != nil {
		return nil, fmt.Errorf("failed to list active occupants: %w", err)
	}
	return occupants, nil
}

// ListAssigned returns active occupants that hold a room, in move-in order
func (r *OccupantRepository) ListAssigned(ctx context.Context) ([]models.Occupant, error) {
	query := occupantSelect + ` WHERE o.status = 'active' AND COALESCE(o.room_number, '') <> '' ORDER BY o.created_at ASC`

	occupants := []models.Occupant{}
	if err := r.db.SelectContext(ctx, &occupants, query); err != nil {
		return nil, fmt.Errorf("failed to list assigned occupants: %w", err)
	}
	return occupants, nil
}

// ListActiveInRoom returns the active occupants of one room
func (r *OccupantRepository) ListActiveInRoom(ctx context.Context, room string) ([]models.Occupant, error) {
	query := occupantSelect + ` WHERE o.status = 'active' AND o.room_number = $1 ORDER BY o.created_at ASC`

	occupants := []models.Occupant{}
	if err := r.db.SelectContext(ctx, &occupants, query, room); err != nil {
		return nil, fmt.Errorf("failed to list room occupants: %w", err)
	}
	return occupants, nil
}

// CreateWithAccount inserts the account and its occupant profile in one transaction
func (r *OccupantRepository) CreateWithAccount(ctx context.Context, account *models.Account, occupant *models.Occupant) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertAccount(ctx, tx, account); err != nil {
		return err
	}

	if occupant.ID == uuid.Nil {
		occupant.ID = uuid.New()
	}
	occupant.AccountID = account.ID

	query := `
		INSERT INTO occupants (
			id, account_id, father_name, mother_name, date_of_birth, gender, blood_group, aadhar_number,
			address, city, state, pincode,
			emergency_contact_name, emergency_contact_phone, emergency_contact_relation,
			room_number, room_type, joining_date, checkout_date, monthly_rent, rent_due_day,
			coaching, course, batch, target_exam, photo_url, status, notes, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12,
			$13, $14, $15,
			$16, $17, $18, $19, $20, $21,
			$22, $23, $24, $25, $26, $27, $28, NOW(), NOW()
		)
		RETURNING created_at, updated_at
	`
	err = tx.QueryRowxContext(ctx, query,
		occupant.ID, occupant.AccountID, occupant.FatherName, occupant.MotherName, occupant.DateOfBirth,
		occupant.Gender, occupant.BloodGroup, occupant.AadharNumber,
		occupant.Address, occupant.City, occupant.State, occupant.Pincode,
		occupant.EmergencyContactName, occupant.EmergencyContactPhone, occupant.EmergencyContactRelation,
		occupant.RoomNumber, string(occupant.RoomType), occupant.JoiningDate, occupant.CheckoutDate,
		occupant.MonthlyRent, occupant.RentDueDay,
		occupant.Coaching, occupant.Course, occupant.Batch, occupant.TargetExam,
		occupant.PhotoURL, string(occupant.Status), occupant.Notes,
	).Scan(&occupant.CreatedAt, &occupant.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create occupant: %w", mapError(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	occupant.Name = account.Name
	occupant.Email = account.Email
	occupant.Phone = account.Phone.String
	return nil
}

// Update saves the profile and propagates name and phone to the linked account
func (r *OccupantRepository) Update(ctx context.Context, occupant *models.Occupant) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE occupants SET
			father_name = $2, mother_name = $3, date_of_birth = $4, gender = $5, blood_group = $6,
			aadhar_number = $7, address = $8, city = $9, state = $10, pincode = $11,
			emergency_contact_name = $12, emergency_contact_phone = $13, emergency_contact_relation = $14,
			room_number = $15, room_type = $16, joining_date = $17, checkout_date = $18,
			monthly_rent = $19, rent_due_day = $20,
			coaching = $21, course = $22, batch = $23, target_exam = $24,
			photo_url = $25, status = $26, notes = $27, updated_at = NOW()
		WHERE id = $1
	`
	result, err := tx.ExecContext(ctx, query,
		occupant.ID, occupant.FatherName, occupant.MotherName, occupant.DateOfBirth, occupant.Gender,
		occupant.BloodGroup, occupant.AadharNumber, occupant.Address, occupant.City, occupant.State,
		occupant.Pincode, occupant.EmergencyContactName, occupant.EmergencyContactPhone,
		occupant.EmergencyContactRelation, occupant.RoomNumber, string(occupant.RoomType),
		occupant.JoiningDate, occupant.CheckoutDate, occupant.MonthlyRent, occupant.RentDueDay,
		occupant.Coaching, occupant.Course, occupant.Batch, occupant.TargetExam,
		occupant.PhotoURL, string(occupant.Status), occupant.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update occupant: %w", err)
	}
	if err := expectOneRow(result, "occupant"); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1`,
		occupant.AccountID, occupant.Name, models.NewNullString(occupant.Phone),
	)
	if err != nil {
		return fmt.Errorf("failed to update occupant account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdatePhoto replaces the photo reference
func (r *OccupantRepository) UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error {
	query := `UPDATE occupants SET photo_url = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, photoURL)
	if err != nil {
		return fmt.Errorf("failed to update occupant photo: %w", err)
	}
	return expectOneRow(result, "occupant")
}

// Checkout marks the occupant checked out and deactivates the account in one transaction
func (r *OccupantRepository) Checkout(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var accountID uuid.UUID
	err = tx.QueryRowxContext(ctx, `
		UPDATE occupants
		SET status = 'checkout', checkout_date = NOW(), updated_at = NOW()
		WHERE id = $1
		RETURNING account_id
	`, id).Scan(&accountID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("occupant %w", ErrNotFound)
		}
		return fmt.Errorf("failed to check out occupant: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, accountID,
	); err != nil {
		return fmt.Errorf("failed to deactivate occupant account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type groupCount struct {
	Key   string `db:"key"`
	Count int    `db:"count"`
}

// Stats summarizes the roster by status, coaching and room type
func (r *OccupantRepository) Stats(ctx context.Context) (*models.OccupantStats, error) {
	stats := &models.OccupantStats{
		ByCoaching: map[string]int{},
		ByRoomType: map[string]int{},
	}

	err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE status = 'checkout')
		FROM occupants
	`).Scan(&stats.Total, &stats.Active, &stats.Checkout)
	if err != nil {
		return nil, fmt.Errorf("failed to count occupants: %w", err)
	}

	var byCoaching []groupCount
	if err := r.db.SelectContext(ctx, &byCoaching, `
		SELECT COALESCE(coaching, '') AS key, COUNT(*) AS count
		FROM occupants WHERE status = 'active'
		GROUP BY COALESCE(coaching, '')
		ORDER BY count DESC
	`); err != nil {
		return nil, fmt.Errorf("failed to group occupants by coaching: %w", err)
	}
	for _, g := range byCoaching {
		stats.ByCoaching[g.Key] = g.Count
	}

	var byRoomType []groupCount
	if err := r.db.SelectContext(ctx, &byRoomType, `
		SELECT room_type AS key, COUNT(*) AS count
		FROM occupants WHERE status = 'active'
		GROUP BY room_type
	`); err != nil {
		return nil, fmt.Errorf("failed to group occupants by room type: %w", err)
	}
	for _, g := range byRoomType {
		stats.ByRoomType[g.Key] = g.Count
	}

	return stats, nil
}
