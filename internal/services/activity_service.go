package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/utils"
	"github.com/sirupsen/logrus"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 100
	activeNowWindow  = 30 * time.Minute
	statsWindowDays  = 7
)

// ActivityStore persists and aggregates activity entries
type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error)
	CountLoginsSince(ctx context.Context, since time.Time) (int, error)
	CountSince(ctx context.Context, since time.Time) (int, error)
	CountDistinctUsersSince(ctx context.Context, since time.Time) (int, error)
	CategoryBreakdown(ctx context.Context, since time.Time) ([]models.CategoryCount, error)
	LoginTrend(ctx context.Context, since time.Time, tz string) ([]models.DailyCount, error)
	ActiveUsersSince(ctx context.Context, since time.Time) ([]models.ActiveUser, error)
	UserStats(ctx context.Context, accountID uuid.UUID) (*models.UserActivityStats, error)
}

// AccountReader loads accounts by id
type AccountReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
}

// ActivityEvent is one action to append to the activity log
type ActivityEvent struct {
	AccountID uuid.UUID
	Action    models.ActivityAction
	Details   map[string]interface{}
	IPAddress string
	UserAgent string
}

// ActivityRecorder appends activity entries without failing the caller
type ActivityRecorder interface {
	Record(ctx context.Context, event ActivityEvent)
}

// ActivityService records and reports account activity
type ActivityService struct {
	store    ActivityStore
	accounts AccountReader
	logger   *logrus.Logger
	enabled  bool
	loc      *time.Location
	now      func() time.Time
}

// NewActivityService creates a new activity service. When enabled is false
// Record is a no-op but reads still work.
func NewActivityService(store ActivityStore, accounts AccountReader, logger *logrus.Logger, enabled bool, loc *time.Location) *ActivityService {
	if loc == nil {
		loc = time.UTC
	}
	return &ActivityService{
		store:    store,
		accounts: accounts,
		logger:   logger,
		enabled:  enabled,
		loc:      loc,
		now:      time.Now,
	}
}

// Record appends an entry with parsed device details. Failures are logged only.
func (s *ActivityService) Record(ctx context.Context, event ActivityEvent) {
	if !s.enabled {
		return
	}

	category := event.Action.Category()
	if category == "" {
		s.logger.WithField("action", event.Action).Warn("Ignoring unknown activity action")
		return
	}

	details := models.ActivityDetails{}
	for k, v := range event.Details {
		details[k] = v
	}
	details["device"] = utils.ParseUserAgent(event.UserAgent).Map()

	activity := &models.Activity{
		AccountID: event.AccountID,
		Action:    event.Action,
		Category:  category,
		Details:   details,
		IPAddress: models.NewNullString(event.IPAddress),
		UserAgent: models.NewNullString(event.UserAgent),
	}
	if err := s.store.Create(ctx, activity); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"account_id": event.AccountID,
			"action":     event.Action,
		}).Error("Failed to record activity")
	}
}

// RecordClient records an action reported by the browser for the signed-in account
func (s *ActivityService) RecordClient(ctx context.Context, accountID uuid.UUID, req models.RecordActivityRequest, ip, userAgent string) error {
	action := models.ActivityAction(req.Action)
	if !action.IsClientReportable() {
		return InvalidArgument("Invalid action")
	}
	s.Record(ctx, ActivityEvent{
		AccountID: accountID,
		Action:    action,
		Details:   req.Details,
		IPAddress: ip,
		UserAgent: userAgent,
	})
	return nil
}

// List returns a page of activity entries, newest first
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) (*models.ActivityPage, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit)

	activities, total, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &models.ActivityPage{
		Activities: activities,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Stats builds the dashboard summary. Day boundaries use the hostel timezone.
func (s *ActivityService) Stats(ctx context.Context) (*models.ActivityStats, error) {
	now := s.now().In(s.loc)
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	weekAgo := now.AddDate(0, 0, -statsWindowDays)
	trendStart := todayStart.AddDate(0, 0, -(statsWindowDays - 1))

	stats := &models.ActivityStats{}
	var err error

	if stats.TodayLogins, err = s.store.CountLoginsSince(ctx, todayStart); err != nil {
		return nil, err
	}
	if stats.WeeklyActiveUsers, err = s.store.CountDistinctUsersSince(ctx, weekAgo); err != nil {
		return nil, err
	}
	if stats.TodayActivities, err = s.store.CountSince(ctx, todayStart); err != nil {
		return nil, err
	}
	if stats.CategoryBreakdown, err = s.store.CategoryBreakdown(ctx, weekAgo); err != nil {
		return nil, err
	}
	if stats.LoginTrend, err = s.store.LoginTrend(ctx, trendStart, s.loc.String()); err != nil {
		return nil, err
	}
	if stats.ActiveUsers, err = s.store.ActiveUsersSince(ctx, now.Add(-activeNowWindow)); err != nil {
		return nil, err
	}
	stats.ActiveNow = len(stats.ActiveUsers)

	return stats, nil
}

// UserActivity returns one account's summary and paged history
func (s *ActivityService) UserActivity(ctx context.Context, accountID uuid.UUID, page, limit int) (*models.UserActivity, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, NotFound("User not found")
	}

	stats, err := s.store.UserStats(ctx, accountID)
	if err != nil {
		return nil, err
	}

	page, limit = clampPage(page, limit)
	activities, total, err := s.store.List(ctx, models.ActivityFilter{
		AccountID: &accountID,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list user activity: %w", err)
	}

	return &models.UserActivity{
		User: models.ActiveUser{
			ID:    account.ID,
			Name:  account.Name,
			Email: account.Email,
			Role:  account.Role,
		},
		Stats:      *stats,
		Activities: activities,
		Pagination: models.NewPagination(page, limit, total),
	}, nil
}

// clampPage applies the default page size and the upper bound
func clampPage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}
