package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
)

const (
	paymentHistoryLimit = 12
	collectionTrendSize = 6
)

// RentOccupantReader supplies roster data for rent projection
type RentOccupantReader interface {
	ListActive(ctx context.Context) ([]models.Occupant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Occupant, error)
}

// PaymentStore persists monthly payment records
type PaymentStore interface {
	ListByMonth(ctx context.Context, month models.MonthKey) ([]models.Payment, error)
	GetByOccupantMonth(ctx context.Context, occupantID uuid.UUID, month models.MonthKey) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	ListByOccupant(ctx context.Context, occupantID uuid.UUID, limit int) ([]models.Payment, error)
	MonthlyCollections(ctx context.Context, months []models.MonthKey) ([]models.MonthlyCollection, error)
}

// RecordPaymentInput is a validated payment write
type RecordPaymentInput struct {
	OccupantID    uuid.UUID
	Month         string
	AmountPaid    float64
	PaymentMethod models.PaymentMethod
	TransactionID string
	Notes         string
	RecordedBy    uuid.UUID
}

// RentService derives monthly rent status and records payments
type RentService struct {
	occupants RentOccupantReader
	payments  PaymentStore
	loc       *time.Location
	now       func() time.Time
}

// NewRentService creates a new rent service evaluating "today" in loc
func NewRentService(occupants RentOccupantReader, payments PaymentStore, loc *time.Location) *RentService {
	if loc == nil {
		loc = time.UTC
	}
	return &RentService{
		occupants: occupants,
		payments:  payments,
		loc:       loc,
		now:       time.Now,
	}
}

// SetClock overrides the time source
func (s *RentService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *RentService) today() time.Time {
	return s.now().In(s.loc)
}

// CurrentMonth returns the billing month containing today
func (s *RentService) CurrentMonth() models.MonthKey {
	return models.MonthKeyOf(s.today())
}

// resolveMonth validates a month key, defaulting to the current month
func (s *RentService) resolveMonth(raw string) (models.MonthKey, error) {
	if raw == "" {
		return s.CurrentMonth(), nil
	}
	month, err := models.ParseMonthKey(raw)
	if err != nil {
		return "", InvalidArgument(err.Error())
	}
	return month, nil
}

// Status returns the per-occupant rent view for a month
func (s *RentService) Status(ctx context.Context, rawMonth string) (*models.RentStatus, error) {
	month, err := s.resolveMonth(rawMonth)
	if err != nil {
		return nil, err
	}

	occupants, err := s.occupants.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupants: %w", err)
	}

	payments, err := s.payments.ListByMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}

	status := ProjectRentStatus(month, s.today(), occupants, payments)
	return &status, nil
}

// ProjectRentStatus joins the active roster with a month's payments.
// A missing payment is overdue only in the current month after the due day.
func ProjectRentStatus(month models.MonthKey, today time.Time, occupants []models.Occupant, payments []models.Payment) models.RentStatus {
	byOccupant := make(map[uuid.UUID]*models.Payment, len(payments))
	for i := range payments {
		byOccupant[payments[i].OccupantID] = &payments[i]
	}

	isCurrentMonth := month == models.MonthKeyOf(today)
	rows := make([]models.RentStatusRow, 0, len(occupants))
	var stats models.RentStats

	for _, o := range occupants {
		if o.Status != models.OccupantStatusActive {
			continue
		}

		dueDay := o.RentDueDay
		if dueDay == 0 {
			dueDay = 1
		}

		row := models.RentStatusRow{
			OccupantID:  o.ID.String(),
			Name:        o.Name,
			Phone:       o.Phone,
			Room:        valueOr(o.RoomNumber.String, "-"),
			Coaching:    valueOr(o.Coaching.String, "-"),
			MonthlyRent: o.MonthlyRent,
			DueDay:      dueDay,
			Status:      models.PaymentStatusPending,
		}

		if p, ok := byOccupant[o.ID]; ok {
			row.Status = p.Status
			row.Payment = &models.PaymentSummary{
				AmountPaid:    p.AmountPaid,
				PaidDate:      p.PaidDate,
				PaymentMethod: p.PaymentMethod,
			}
			stats.TotalPaid += p.AmountPaid
		} else if isCurrentMonth && today.Day() > dueDay {
			row.Status = models.PaymentStatusOverdue
		}

		stats.TotalDue += o.MonthlyRent
		switch row.Status {
		case models.PaymentStatusPaid:
			stats.PaidCount++
		case models.PaymentStatusPending:
			stats.PendingCount++
		case models.PaymentStatusOverdue:
			stats.OverdueCount++
		}
		rows = append(rows, row)
	}

	stats.TotalStudents = len(rows)
	stats.TotalPending = stats.TotalDue - stats.TotalPaid

	return models.RentStatus{
		Month:    month,
		Students: rows,
		Stats:    stats,
	}
}

// RecordPayment upserts the payment for (occupant, month). The amount due is
// snapshotted from the occupant's current rent only when the record is created.
func (s *RentService) RecordPayment(ctx context.Context, in RecordPaymentInput) (*models.Payment, error) {
	month, err := models.ParseMonthKey(in.Month)
	if err != nil {
		return nil, InvalidArgument(err.Error())
	}
	if in.AmountPaid < 0 {
		return nil, InvalidArgument("amount paid cannot be negative")
	}
	if !in.PaymentMethod.IsValid() {
		return nil, InvalidArgumentf("invalid payment method: %q", in.PaymentMethod)
	}

	occupant, err := s.occupants.GetByID(ctx, in.OccupantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupant: %w", err)
	}
	if occupant == nil {
		return nil, NotFound("Student not found")
	}

	// A concurrent first write for the same month surfaces as a duplicate;
	// the second pass then finds that record and updates it.
	for attempt := 0; attempt < 2; attempt++ {
		existing, err := s.payments.GetByOccupantMonth(ctx, occupant.ID, month)
		if err != nil {
			return nil, fmt.Errorf("failed to load payment: %w", err)
		}

		paidAt := s.now()
		if existing != nil {
			existing.AmountPaid = in.AmountPaid
			if in.PaymentMethod != models.PaymentMethodNone {
				existing.PaymentMethod = in.PaymentMethod
			}
			if in.TransactionID != "" {
				existing.TransactionID = models.NewNullString(in.TransactionID)
			}
			if in.Notes != "" {
				existing.Notes = models.NewNullString(in.Notes)
			}
			existing.PaidDate = models.NewNullTime(paidAt)
			existing.RecordedBy = recordedBy(in.RecordedBy)
			existing.DeriveStatus()

			if err := s.payments.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update payment: %w", err)
			}
			return existing, nil
		}

		payment := &models.Payment{
			ID:            uuid.New(),
			OccupantID:    occupant.ID,
			Month:         month,
			AmountDue:     occupant.MonthlyRent,
			AmountPaid:    in.AmountPaid,
			Status:        models.PaymentStatusPending,
			PaidDate:      models.NewNullTime(paidAt),
			PaymentMethod: in.PaymentMethod,
			TransactionID: models.NewNullString(in.TransactionID),
			Notes:         models.NewNullString(in.Notes),
			RecordedBy:    recordedBy(in.RecordedBy),
		}
		payment.DeriveStatus()

		err = s.payments.Create(ctx, payment)
		if errors.Is(err, database.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to create payment: %w", err)
		}
		return payment, nil
	}

	return nil, Conflict("Payment for this month was recorded concurrently, please retry")
}

// History returns the most recent payments of one occupant, newest month first
func (s *RentService) History(ctx context.Context, occupantID uuid.UUID) (*models.PaymentHistory, error) {
	occupant, err := s.occupants.GetByID(ctx, occupantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupant: %w", err)
	}
	if occupant == nil {
		return nil, NotFound("Student not found")
	}

	payments, err := s.payments.ListByOccupant(ctx, occupantID, paymentHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load payment history: %w", err)
	}
	if payments == nil {
		payments = []models.Payment{}
	}

	return &models.PaymentHistory{
		Student: models.OccupantRentSnapshot{
			ID:          occupant.ID.String(),
			Name:        occupant.Name,
			Room:        occupant.RoomNumber.String,
			MonthlyRent: occupant.MonthlyRent,
		},
		Payments: payments,
	}, nil
}

// CollectionTrend returns collection totals for the last six months, current month first
func (s *RentService) CollectionTrend(ctx context.Context) (models.MonthKey, []models.MonthlyCollection, error) {
	current := s.CurrentMonth()
	months := make([]models.MonthKey, collectionTrendSize)
	for i := range months {
		months[i] = current.AddMonths(-i)
	}

	rows, err := s.payments.MonthlyCollections(ctx, months)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load collection stats: %w", err)
	}

	byMonth := make(map[models.MonthKey]models.MonthlyCollection, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	trend := make([]models.MonthlyCollection, len(months))
	for i, m := range months {
		if r, ok := byMonth[m]; ok {
			trend[i] = r
			continue
		}
		trend[i] = models.MonthlyCollection{Month: m}
	}
	return current, trend, nil
}

func recordedBy(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
