package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/mkheight/hostel-backend/internal/models"
)

const paymentColumns = `id, occupant_id, month, amount_due, amount_paid, status, paid_date,
		       payment_method, transaction_id, notes, recorded_by, created_at, updated_at`

// PaymentRepository handles monthly rent record operations
type PaymentRepository struct {
	db DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// ListByMonth returns every payment recorded for a month
func (r *PaymentRepository) ListByMonth(ctx context.Context, month models.MonthKey) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE month = $1`

	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, string(month)); err != nil {
		return nil, fmt.Errorf("failed to list payments for %s: %w", month, err)
	}
	return payments, nil
}

// GetByOccupantMonth returns the single record for (occupant, month). Returns nil if none exists.
func (r *PaymentRepository) GetByOccupantMonth(ctx context.Context, occupantID uuid.UUID, month models.MonthKey) (*models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE occupant_id = $1 AND month = $2`

	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, query, occupantID, string(month)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// Create inserts a payment. Returns ErrDuplicate when the month already has a record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}

	query := `
		INSERT INTO payments (
			id, occupant_id, month, amount_due, amount_paid, status, paid_date,
			payment_method, transaction_id, notes, recorded_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		payment.ID, payment.OccupantID, string(payment.Month), payment.AmountDue, payment.AmountPaid,
		string(payment.Status), payment.PaidDate, string(payment.PaymentMethod),
		payment.TransactionID, payment.Notes, payment.RecordedBy,
	).Scan(&payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", mapError(err))
	}
	return nil
}

// Update saves the mutable fields of an existing payment. AmountDue is never rewritten.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	query := `
		UPDATE payments
		SET amount_paid = $2, status = $3, paid_date = $4, payment_method = $5,
		    transaction_id = $6, notes = $7, recorded_by = $8, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.AmountPaid, string(payment.Status), payment.PaidDate,
		string(payment.PaymentMethod), payment.TransactionID, payment.Notes, payment.RecordedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update payment: %w", err)
	}
	return expectOneRow(result, "payment")
}

// ListByOccupant returns an occupant's payments, newest month first
func (r *PaymentRepository) ListByOccupant(ctx context.Context, occupantID uuid.UUID, limit int) ([]models.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE occupant_id = $1 ORDER BY month DESC LIMIT $2`

	payments := []models.Payment{}
	if err := r.db.SelectContext(ctx, &payments, query, occupantID, limit); err != nil {
		return nil, fmt.Errorf("failed to list payment history: %w", err)
	}
	return payments, nil
}

// MonthlyCollections aggregates collected amounts for the given months.
// Months without any record are absent from the result.
func (r *PaymentRepository) MonthlyCollections(ctx context.Context, months []models.MonthKey) ([]models.MonthlyCollection, error) {
	if len(months) == 0 {
		return []models.MonthlyCollection{}, nil
	}

	keys := make([]string, len(months))
	for i, m := range months {
		keys[i] = string(m)
	}

	query, args, err := sqlx.In(`
		SELECT month,
		       COALESCE(SUM(amount_paid), 0) AS total_paid,
		       COUNT(*) FILTER (WHERE status = 'paid') AS paid_count,
		       COUNT(*) AS total_payments
		FROM payments
		WHERE month IN (?)
		GROUP BY month
		ORDER BY month DESC
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection query: %w", err)
	}

	rows := []models.MonthlyCollection{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to aggregate collections: %w", err)
	}
	return rows, nil
}
