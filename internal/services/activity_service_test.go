package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeActivityStore struct {
	created   []models.Activity
	createErr error
	filter    models.ActivityFilter
	since     map[string]time.Time
	tz        string
}

func (f *fakeActivityStore) Create(ctx context.Context, activity *models.Activity) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *activity)
	return nil
}

func (f *fakeActivityStore) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	f.filter = filter
	return []models.Activity{}, 120, nil
}

func (f *fakeActivityStore) mark(name string, t time.Time) {
	if f.since == nil {
		f.since = make(map[string]time.Time)
	}
	f.since[name] = t
}

func (f *fakeActivityStore) CountLoginsSince(ctx context.Context, since time.Time) (int, error) {
	f.mark("logins", since)
	return 4, nil
}

func (f *fakeActivityStore) CountSince(ctx context.Context, since time.Time) (int, error) {
	f.mark("activities", since)
	return 17, nil
}

func (f *fakeActivityStore) CountDistinctUsersSince(ctx context.Context, since time.Time) (int, error) {
	f.mark("users", since)
	return 6, nil
}

func (f *fakeActivityStore) CategoryBreakdown(ctx context.Context, since time.Time) ([]models.CategoryCount, error) {
	return []models.CategoryCount{{Category: models.CategoryAuth, Count: 9}}, nil
}

func (f *fakeActivityStore) LoginTrend(ctx context.Context, since time.Time, tz string) ([]models.DailyCount, error) {
	f.mark("trend", since)
	f.tz = tz
	return []models.DailyCount{}, nil
}

func (f *fakeActivityStore) ActiveUsersSince(ctx context.Context, since time.Time) ([]models.ActiveUser, error) {
	f.mark("active", since)
	return []models.ActiveUser{{ID: uuid.New()}, {ID: uuid.New()}}, nil
}

func (f *fakeActivityStore) UserStats(ctx context.Context, accountID uuid.UUID) (*models.UserActivityStats, error) {
	return &models.UserActivityStats{TotalActivities: 3, LoginCount: 2}, nil
}

const chromeOnAndroid = "Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.6099.144 Mobile Safari/537.36"

func TestActivityService_Record(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &fakeActivityStore{}
	service := NewActivityService(store, newFakeAccounts(), logger, true, time.UTC)
	id := uuid.New()

	service.Record(context.Background(), ActivityEvent{
		AccountID: id,
		Action:    models.ActionBookingPayment,
		Details:   map[string]interface{}{"month": "2025-06"},
		IPAddress: "49.36.10.2",
		UserAgent: chromeOnAndroid,
	})

	require.Len(t, store.created, 1)
	entry := store.created[0]
	assert.Equal(t, id, entry.AccountID)
	assert.Equal(t, models.CategoryBooking, entry.Category)
	assert.Equal(t, "2025-06", entry.Details["month"])
	assert.Equal(t, "49.36.10.2", entry.IPAddress.String)

	device, ok := entry.Details["device"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "mobile", device["deviceType"])
	assert.Contains(t, device["browser"], "Chrome")
}

func TestActivityService_RecordSkips(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &fakeActivityStore{}

	disabled := NewActivityService(store, newFakeAccounts(), logger, false, time.UTC)
	disabled.Record(context.Background(), ActivityEvent{Action: models.ActionLogin})
	assert.Empty(t, store.created)

	enabled := NewActivityService(store, newFakeAccounts(), logger, true, time.UTC)
	enabled.Record(context.Background(), ActivityEvent{Action: "teleport"})
	assert.Empty(t, store.created)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestActivityService_RecordSwallowsStoreError(t *testing.T) {
	logger, hook := test.NewNullLogger()
	store := &fakeActivityStore{createErr: errors.New("insert failed")}
	service := NewActivityService(store, newFakeAccounts(), logger, true, time.UTC)

	assert.NotPanics(t, func() {
		service.Record(context.Background(), ActivityEvent{Action: models.ActionLogin})
	})
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestActivityService_RecordClient(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &fakeActivityStore{}
	service := NewActivityService(store, newFakeAccounts(), logger, true, time.UTC)
	ctx := context.Background()

	err := service.RecordClient(ctx, uuid.New(), models.RecordActivityRequest{Action: "page_view", Details: map[string]interface{}{"page": "/rooms"}}, "", "")
	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Equal(t, models.CategoryNavigation, store.created[0].Category)

	err = service.RecordClient(ctx, uuid.New(), models.RecordActivityRequest{Action: "user_delete"}, "", "")
	assert.Equal(t, KindInvalidArgument, KindOf(err))
	assert.Len(t, store.created, 1)
}

func TestActivityService_Stats(t *testing.T) {
	logger, _ := test.NewNullLogger()
	store := &fakeActivityStore{}
	loc := time.FixedZone("IST", 5*3600+1800)
	service := NewActivityService(store, newFakeAccounts(), logger, true, loc)
	now := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	stats, err := service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, stats.TodayLogins)
	assert.Equal(t, 6, stats.WeeklyActiveUsers)
	assert.Equal(t, 17, stats.TodayActivities)
	assert.Equal(t, 2, stats.ActiveNow)
	assert.Equal(t, "IST", store.tz)

	// 20:00 UTC is 01:30 the next day in IST, so "today" starts at 11 June IST.
	todayStart := time.Date(2025, 6, 11, 0, 0, 0, 0, loc)
	assert.True(t, store.since["logins"].Equal(todayStart))
	assert.True(t, store.since["trend"].Equal(todayStart.AddDate(0, 0, -6)))
	assert.True(t, store.since["users"].Equal(now.AddDate(0, 0, -7)))
	assert.True(t, store.since["active"].Equal(now.Add(-30*time.Minute)))
}

func TestActivityService_UserActivity(t *testing.T) {
	logger, _ := test.NewNullLogger()
	account := &models.Account{ID: uuid.New(), Name: "Clerk", Email: "clerk@mkheights.in", Role: models.RoleReception}
	store := &fakeActivityStore{}
	service := NewActivityService(store, newFakeAccounts(account), logger, true, time.UTC)

	result, err := service.UserActivity(context.Background(), account.ID, 2, 0)
	require.NoError(t, err)

	assert.Equal(t, "Clerk", result.User.Name)
	assert.Equal(t, 2, result.Stats.LoginCount)
	require.NotNil(t, store.filter.AccountID)
	assert.Equal(t, account.ID, *store.filter.AccountID)
	assert.Equal(t, models.Pagination{Page: 2, Limit: 50, Total: 120, Pages: 3}, result.Pagination)

	_, err = service.UserActivity(context.Background(), uuid.New(), 1, 10)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page, limit         int
		wantPage, wantLimit int
	}{
		{0, 0, 1, 50},
		{-3, 20, 1, 20},
		{4, 101, 4, 100},
		{2, 100, 2, 100},
	}
	for _, tt := range tests {
		page, limit := clampPage(tt.page, tt.limit)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantLimit, limit)
	}
}
