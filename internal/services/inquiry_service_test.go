package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInquiries struct {
	byID    map[uuid.UUID]*models.Inquiry
	updates int
	filter  models.InquiryFilter
}

func newFakeInquiries(inquiries ...models.Inquiry) *fakeInquiries {
	f := &fakeInquiries{byID: make(map[uuid.UUID]*models.Inquiry)}
	for i := range inquiries {
		q := inquiries[i]
		f.byID[q.ID] = &q
	}
	return f
}

func (f *fakeInquiries) Create(ctx context.Context, inquiry *models.Inquiry) error {
	inquiry.ID = uuid.New()
	cp := *inquiry
	f.byID[inquiry.ID] = &cp
	return nil
}

func (f *fakeInquiries) GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error) {
	if q, ok := f.byID[id]; ok {
		cp := *q
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeInquiries) List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error) {
	f.filter = filter
	return nil, len(f.byID), nil
}

func (f *fakeInquiries) CountByStatus(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, q := range f.byID {
		counts[string(q.Status)]++
	}
	return counts, nil
}

func (f *fakeInquiries) Update(ctx context.Context, inquiry *models.Inquiry) error {
	if _, ok := f.byID[inquiry.ID]; !ok {
		return database.ErrNotFound
	}
	f.updates++
	cp := *inquiry
	f.byID[inquiry.ID] = &cp
	return nil
}

func (f *fakeInquiries) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return database.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeGateway struct {
	phones  []string
	message string
	err     error
}

func (g *fakeGateway) Send(ctx context.Context, phones []string, message string) error {
	g.phones, g.message = phones, message
	return g.err
}

func (g *fakeGateway) Name() string { return "fake" }

func TestInquiryService_SubmitTrialStay(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := newFakeInquiries()
	gateway := &fakeGateway{}
	service := NewInquiryService(store, gateway, []string{"9876543210"}, logger)

	inquiry, err := service.Submit(context.Background(), models.CreateInquiryRequest{
		Name:           " Riya ",
		Email:          "Riya@Example.com",
		Phone:          "9123456780",
		Coaching:       "Allen",
		RoomPreference: "double_balcony",
		IsTrialStay:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, "Riya", inquiry.Name)
	assert.Equal(t, "riya@example.com", inquiry.Email)
	assert.Equal(t, "none", inquiry.PickupLocation)
	assert.Equal(t, 1, inquiry.NumberOfGuests)
	assert.Equal(t, 1, inquiry.StayDuration)
	assert.Equal(t, models.InquiryStatusNew, inquiry.Status)

	assert.Equal(t, []string{"9876543210"}, gateway.phones)
	assert.Equal(t, "New Trial stay: Riya (9123456780), Allen, double_balcony", gateway.message)
}

func TestInquiryService_SubmitSurvivesAlertFailure(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := newFakeInquiries()
	service := NewInquiryService(store, &fakeGateway{err: errors.New("gateway timeout")}, []string{"9876543210"}, logger)

	inquiry, err := service.Submit(context.Background(), models.CreateInquiryRequest{
		Name:  "Riya",
		Email: "riya@example.com",
		Phone: "9123456780",
	})
	require.NoError(t, err)

	assert.Zero(t, inquiry.NumberOfGuests, "guest defaults apply to trial stays only")
	assert.Len(t, store.byID, 1)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestInquiryService_SubmitWithoutGateway(t *testing.T) {
	logger, _ := test.NewNullLogger()
	service := NewInquiryService(newFakeInquiries(), nil, nil, logger)

	_, err := service.Submit(context.Background(), models.CreateInquiryRequest{Name: "Riya", Email: "r@e.in", Phone: "9123456780"})
	assert.NoError(t, err)

	_, err = service.Submit(context.Background(), models.CreateInquiryRequest{Name: "Riya", RoomPreference: "suite"})
	assert.Equal(t, KindInvalidArgument, KindOf(err))
}

func TestInquiryService_GetMarksContacted(t *testing.T) {
	fresh := models.Inquiry{ID: uuid.New(), Name: "Riya", Status: models.InquiryStatusNew}
	logger, _ := test.NewNullLogger()

	tests := []struct {
		name   string
		viewer models.Role
		want   models.InquiryStatus
	}{
		{"reception opens", models.RoleReception, models.InquiryStatusContacted},
		{"admin opens", models.RoleAdmin, models.InquiryStatusContacted},
		{"viewer opens", models.RoleViewer, models.InquiryStatusNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeInquiries(fresh)
			service := NewInquiryService(store, nil, nil, logger)

			got, err := service.Get(context.Background(), tt.viewer, fresh.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, tt.want, store.byID[fresh.ID].Status)
		})
	}
}

func TestInquiryService_GetLeavesHandledQueries(t *testing.T) {
	booked := models.Inquiry{ID: uuid.New(), Status: models.InquiryStatusBooked}
	store := newFakeInquiries(booked)
	logger, _ := test.NewNullLogger()
	service := NewInquiryService(store, nil, nil, logger)

	got, err := service.Get(context.Background(), models.RoleAdmin, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusBooked, got.Status)
	assert.Zero(t, store.updates)

	_, err = service.Get(context.Background(), models.RoleAdmin, uuid.New())
	require.Error(t, err)
	assert.Equal(t, "Query not found", err.Error())
}

func TestInquiryService_List(t *testing.T) {
	store := newFakeInquiries(
		models.Inquiry{ID: uuid.New(), Status: models.InquiryStatusNew},
		models.Inquiry{ID: uuid.New(), Status: models.InquiryStatusNew},
		models.Inquiry{ID: uuid.New(), Status: models.InquiryStatusClosed},
	)
	logger, _ := test.NewNullLogger()
	service := NewInquiryService(store, nil, nil, logger)

	page, err := service.List(context.Background(), models.InquiryFilter{Page: 0, Limit: 500})
	require.NoError(t, err)

	assert.Equal(t, 1, store.filter.Page)
	assert.Equal(t, 100, store.filter.Limit)
	assert.NotNil(t, page.Queries)
	assert.Equal(t, map[string]int{"new": 2, "contacted": 0, "booked": 0, "converted": 0, "closed": 1}, page.Stats)
	assert.Equal(t, models.Pagination{Page: 1, Limit: 100, Total: 3, Pages: 1}, page.Pagination)
}

func TestInquiryService_UpdateAndDelete(t *testing.T) {
	q := models.Inquiry{ID: uuid.New(), Status: models.InquiryStatusContacted}
	store := newFakeInquiries(q)
	logger, _ := test.NewNullLogger()
	service := NewInquiryService(store, nil, nil, logger)
	ctx := context.Background()

	status, notes := "booked", "Paid token amount"
	updated, err := service.Update(ctx, q.ID, models.UpdateInquiryRequest{Status: &status, AdminNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, models.InquiryStatusBooked, updated.Status)
	assert.Equal(t, notes, updated.AdminNotes.String)

	require.NoError(t, service.Delete(ctx, q.ID))
	assert.Equal(t, KindNotFound, KindOf(service.Delete(ctx, q.ID)))

	_, err = service.Update(ctx, q.ID, models.UpdateInquiryRequest{})
	assert.Equal(t, KindNotFound, KindOf(err))
}
