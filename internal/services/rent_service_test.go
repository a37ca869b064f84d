package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRentOccupants struct {
	occupants []models.Occupant
}

func (f *fakeRentOccupants) ListActive(ctx context.Context) ([]models.Occupant, error) {
	return f.occupants, nil
}

func (f *fakeRentOccupants) GetByID(ctx context.Context, id uuid.UUID) (*models.Occupant, error) {
	for i := range f.occupants {
		if f.occupants[i].ID == id {
			o := f.occupants[i]
			return &o, nil
		}
	}
	return nil, nil
}

// fakePayments keeps one record per (occupant, month). racer, when set, is
// inserted on the first Create to simulate a concurrent writer.
type fakePayments struct {
	records     map[string]*models.Payment
	racer       *models.Payment
	creates     int
	updates     int
	collections []models.MonthlyCollection
}

func newFakePayments() *fakePayments {
	return &fakePayments{records: make(map[string]*models.Payment)}
}

func paymentKey(id uuid.UUID, month models.MonthKey) string {
	return fmt.Sprintf("%s/%s", id, month)
}

func (f *fakePayments) ListByMonth(ctx context.Context, month models.MonthKey) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.records {
		if p.Month == month {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) GetByOccupantMonth(ctx context.Context, occupantID uuid.UUID, month models.MonthKey) (*models.Payment, error) {
	p, ok := f.records[paymentKey(occupantID, month)]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePayments) Create(ctx context.Context, payment *models.Payment) error {
	f.creates++
	if f.racer != nil {
		f.records[paymentKey(f.racer.OccupantID, f.racer.Month)] = f.racer
		f.racer = nil
		return database.ErrDuplicate
	}
	key := paymentKey(payment.OccupantID, payment.Month)
	if _, ok := f.records[key]; ok {
		return database.ErrDuplicate
	}
	cp := *payment
	f.records[key] = &cp
	return nil
}

func (f *fakePayments) Update(ctx context.Context, payment *models.Payment) error {
	f.updates++
	cp := *payment
	f.records[paymentKey(payment.OccupantID, payment.Month)] = &cp
	return nil
}

func (f *fakePayments) ListByOccupant(ctx context.Context, occupantID uuid.UUID, limit int) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.records {
		if p.OccupantID == occupantID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePayments) MonthlyCollections(ctx context.Context, months []models.MonthKey) ([]models.MonthlyCollection, error) {
	return f.collections, nil
}

func tenant(name string, rent float64, dueDay int) models.Occupant {
	return models.Occupant{
		ID:          uuid.New(),
		Name:        name,
		Phone:       "9876543210",
		RoomNumber:  models.NewNullString("305"),
		MonthlyRent: rent,
		RentDueDay:  dueDay,
		Status:      models.OccupantStatusActive,
	}
}

func TestProjectRentStatus(t *testing.T) {
	paid := tenant("Paid", 8000, 5)
	partial := tenant("Partial", 9000, 5)
	late := tenant("Late", 7000, 5)
	notYetDue := tenant("NotYetDue", 7500, 20)
	gone := tenant("Gone", 6000, 1)
	gone.Status = models.OccupantStatusCheckout

	month := models.MonthKey("2025-06")
	payments := []models.Payment{
		{OccupantID: paid.ID, Month: month, AmountDue: 8000, AmountPaid: 8000, Status: models.PaymentStatusPaid},
		{OccupantID: partial.ID, Month: month, AmountDue: 9000, AmountPaid: 4000, Status: models.PaymentStatusPartial},
	}
	today := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	status := ProjectRentStatus(month, today, []models.Occupant{paid, partial, late, notYetDue, gone}, payments)

	require.Len(t, status.Students, 4)
	byName := make(map[string]models.RentStatusRow)
	for _, row := range status.Students {
		byName[row.Name] = row
	}

	assert.Equal(t, models.PaymentStatusPaid, byName["Paid"].Status)
	assert.Equal(t, models.PaymentStatusPartial, byName["Partial"].Status)
	require.NotNil(t, byName["Partial"].Payment)
	assert.Equal(t, 4000.0, byName["Partial"].Payment.AmountPaid)
	assert.Equal(t, models.PaymentStatusOverdue, byName["Late"].Status)
	assert.Nil(t, byName["Late"].Payment)
	assert.Equal(t, models.PaymentStatusPending, byName["NotYetDue"].Status)

	assert.Equal(t, models.RentStats{
		TotalStudents: 4,
		TotalDue:      31500,
		TotalPaid:     12000,
		TotalPending:  19500,
		PaidCount:     1,
		PendingCount:  1,
		OverdueCount:  1,
	}, status.Stats)
}

func TestProjectRentStatus_OverpaymentLeavesNegativePending(t *testing.T) {
	o := tenant("Generous", 10000, 5)
	month := models.MonthKey("2025-06")
	payments := []models.Payment{
		{OccupantID: o.ID, Month: month, AmountDue: 10000, AmountPaid: 12000, Status: models.PaymentStatusPaid},
	}

	status := ProjectRentStatus(month, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), []models.Occupant{o}, payments)

	assert.Equal(t, 10000.0, status.Stats.TotalDue)
	assert.Equal(t, 12000.0, status.Stats.TotalPaid)
	assert.Equal(t, -2000.0, status.Stats.TotalPending)
	assert.Equal(t, 1, status.Stats.PaidCount)
}

func TestProjectRentStatus_DueDayBoundary(t *testing.T) {
	o := tenant("Bhavya", 10000, 5)

	tests := []struct {
		name  string
		today time.Time
		want  models.PaymentStatus
	}{
		{"after due day", time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), models.PaymentStatusOverdue},
		{"on due day", time.Date(2025, 6, 5, 23, 0, 0, 0, time.UTC), models.PaymentStatusPending},
		{"before due day", time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC), models.PaymentStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := ProjectRentStatus("2025-06", tt.today, []models.Occupant{o}, nil)
			require.Len(t, status.Students, 1)
			assert.Equal(t, tt.want, status.Students[0].Status)
			assert.Equal(t, 10000.0, status.Stats.TotalPending)
		})
	}
}

func TestProjectRentStatus_PastMonthNeverOverdue(t *testing.T) {
	late := tenant("Late", 7000, 5)
	today := time.Date(2025, 7, 28, 9, 0, 0, 0, time.UTC)

	status := ProjectRentStatus("2025-06", today, []models.Occupant{late}, nil)

	require.Len(t, status.Students, 1)
	assert.Equal(t, models.PaymentStatusPending, status.Students[0].Status)
	assert.Equal(t, 0, status.Stats.OverdueCount)
}

func TestProjectRentStatus_DefaultsDisplayFields(t *testing.T) {
	o := tenant("Bare", 5000, 0)
	o.RoomNumber = models.NullString{}

	status := ProjectRentStatus("2025-06", time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), []models.Occupant{o}, nil)

	row := status.Students[0]
	assert.Equal(t, "-", row.Room)
	assert.Equal(t, "-", row.Coaching)
	assert.Equal(t, 1, row.DueDay)
}

func TestRentService_StatusRejectsBadMonth(t *testing.T) {
	service := NewRentService(&fakeRentOccupants{}, newFakePayments(), time.UTC)

	for _, month := range []string{"2025-13", "2025-6", "June"} {
		_, err := service.Status(context.Background(), month)
		require.Error(t, err, month)
		assert.Equal(t, KindInvalidArgument, KindOf(err))
	}
}

func TestRentService_StatusUsesLocalMonth(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	service := NewRentService(&fakeRentOccupants{}, newFakePayments(), loc)
	service.SetClock(func() time.Time { return time.Date(2025, 6, 30, 20, 0, 0, 0, time.UTC) })

	status, err := service.Status(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, models.MonthKey("2025-07"), status.Month)
}

func TestRentService_RecordPayment(t *testing.T) {
	o := tenant("Aarav", 8000, 5)
	payments := newFakePayments()
	service := NewRentService(&fakeRentOccupants{occupants: []models.Occupant{o}}, payments, time.UTC)
	recorder := uuid.New()

	first, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		OccupantID:    o.ID,
		Month:         "2025-06",
		AmountPaid:    3000,
		PaymentMethod: models.PaymentMethodUPI,
		RecordedBy:    recorder,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, first.Status)
	assert.Equal(t, 8000.0, first.AmountDue)
	require.NotNil(t, first.RecordedBy)
	assert.Equal(t, recorder, *first.RecordedBy)

	// Rent changes after the record exists; the snapshot must not move.
	service.occupants.(*fakeRentOccupants).occupants[0].MonthlyRent = 9500

	second, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		OccupantID: o.ID,
		Month:      "2025-06",
		AmountPaid: 8000,
		Notes:      "balance cleared",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.PaymentStatusPaid, second.Status)
	assert.Equal(t, 8000.0, second.AmountDue)
	assert.Equal(t, models.PaymentMethodUPI, second.PaymentMethod)
	assert.Equal(t, "balance cleared", second.Notes.String)
	assert.Nil(t, second.RecordedBy)

	assert.Equal(t, 1, payments.creates)
	assert.Equal(t, 1, payments.updates)
	assert.Len(t, payments.records, 1)
}

func TestRentService_RecordPaymentConcurrentFirstWrite(t *testing.T) {
	o := tenant("Aarav", 8000, 5)
	payments := newFakePayments()
	payments.racer = &models.Payment{
		ID:         uuid.New(),
		OccupantID: o.ID,
		Month:      "2025-06",
		AmountDue:  8000,
		AmountPaid: 1000,
		Status:     models.PaymentStatusPartial,
	}
	service := NewRentService(&fakeRentOccupants{occupants: []models.Occupant{o}}, payments, time.UTC)

	payment, err := service.RecordPayment(context.Background(), RecordPaymentInput{
		OccupantID: o.ID,
		Month:      "2025-06",
		AmountPaid: 8000,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	assert.Equal(t, 1, payments.creates)
	assert.Equal(t, 1, payments.updates)
	assert.Len(t, payments.records, 1)
}

func TestRentService_RecordPaymentValidation(t *testing.T) {
	o := tenant("Aarav", 8000, 5)
	service := NewRentService(&fakeRentOccupants{occupants: []models.Occupant{o}}, newFakePayments(), time.UTC)

	tests := []struct {
		name string
		in   RecordPaymentInput
		kind ErrorKind
	}{
		{"bad month", RecordPaymentInput{OccupantID: o.ID, Month: "2025-00"}, KindInvalidArgument},
		{"negative amount", RecordPaymentInput{OccupantID: o.ID, Month: "2025-06", AmountPaid: -1}, KindInvalidArgument},
		{"bad method", RecordPaymentInput{OccupantID: o.ID, Month: "2025-06", PaymentMethod: "crypto"}, KindInvalidArgument},
		{"unknown occupant", RecordPaymentInput{OccupantID: uuid.New(), Month: "2025-06"}, KindNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.RecordPayment(context.Background(), tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestRentService_History(t *testing.T) {
	o := tenant("Aarav", 8000, 5)
	service := NewRentService(&fakeRentOccupants{occupants: []models.Occupant{o}}, newFakePayments(), time.UTC)

	history, err := service.History(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aarav", history.Student.Name)
	assert.NotNil(t, history.Payments)
	assert.Empty(t, history.Payments)

	_, err = service.History(context.Background(), uuid.New())
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestRentService_CollectionTrend(t *testing.T) {
	payments := newFakePayments()
	payments.collections = []models.MonthlyCollection{
		{Month: "2025-05", TotalPaid: 42000, PaidCount: 5, TotalPayments: 6},
	}
	service := NewRentService(&fakeRentOccupants{}, payments, time.UTC)
	service.SetClock(func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) })

	current, trend, err := service.CollectionTrend(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.MonthKey("2025-06"), current)
	require.Len(t, trend, 6)
	assert.Equal(t, models.MonthKey("2025-06"), trend[0].Month)
	assert.Equal(t, 0.0, trend[0].TotalPaid)
	assert.Equal(t, 42000.0, trend[1].TotalPaid)
	assert.Equal(t, models.MonthKey("2025-01"), trend[5].Month)
}
