package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
)

const activitySelect = `
		SELECT l.id, l.account_id, a.name AS user_name, a.email AS user_email, a.role AS user_role,
		       l.action, l.category, l.details, l.ip_address, l.user_agent, l.created_at
		FROM activity_logs l
		JOIN accounts a ON a.id = l.account_id
	`

// ActivityRepository handles the append-only activity log
type ActivityRepository struct {
	db DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity entry
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	query := `
		INSERT INTO activity_logs (id, account_id, action, category, details, ip_address, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query,
		activity.ID, activity.AccountID, string(activity.Action), string(activity.Category),
		activity.Details, activity.IPAddress, activity.UserAgent,
	).Scan(&activity.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// List returns a page of activities, newest first, with the total matching count
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.Activity, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}

	if filter.AccountID != nil {
		args = append(args, *filter.AccountID)
		where += fmt.Sprintf(" AND l.account_id = $%d", len(args))
	}
	if filter.Category != "" {
		args = append(args, string(filter.Category))
		where += fmt.Sprintf(" AND l.category = $%d", len(args))
	}
	if filter.Action != "" {
		args = append(args, string(filter.Action))
		where += fmt.Sprintf(" AND l.action = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		where += fmt.Sprintf(" AND l.created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		where += fmt.Sprintf(" AND l.created_at < $%d", len(args))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM activity_logs l`+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count activities: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	if offset < 0 {
		offset = 0
	}
	query := activitySelect + where +
		fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	return activities, total, nil
}

// CountLoginsSince counts sign-ins at or after since
func (r *ActivityRepository) CountLoginsSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM activity_logs
		WHERE action IN ('login', 'google_login') AND created_at >= $1
	`, since)
	if err != nil {
		return 0, fmt.Errorf("failed to count logins: %w", err)
	}
	return count, nil
}

// CountSince counts every activity at or after since
func (r *ActivityRepository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM activity_logs WHERE created_at >= $1`, since,
	); err != nil {
		return 0, fmt.Errorf("failed to count activities: %w", err)
	}
	return count, nil
}

// CountDistinctUsersSince counts accounts with any activity at or after since
func (r *ActivityRepository) CountDistinctUsersSince(ctx context.Context, since time.Time) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(DISTINCT account_id) FROM activity_logs WHERE created_at >= $1`, since,
	); err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// CategoryBreakdown groups activity since the given time by category
func (r *ActivityRepository) CategoryBreakdown(ctx context.Context, since time.Time) ([]models.CategoryCount, error) {
	rows := []models.CategoryCount{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT category, COUNT(*) AS count
		FROM activity_logs
		WHERE created_at >= $1
		GROUP BY category
		ORDER BY count DESC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to group activities by category: %w", err)
	}
	return rows, nil
}

// LoginTrend counts sign-ins per calendar day in tz since the given time
func (r *ActivityRepository) LoginTrend(ctx context.Context, since time.Time, tz string) ([]models.DailyCount, error) {
	rows := []models.DailyCount{}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT TO_CHAR(created_at AT TIME ZONE $2, 'YYYY-MM-DD') AS day, COUNT(*) AS count
		FROM activity_logs
		WHERE action IN ('login', 'google_login') AND created_at >= $1
		GROUP BY day
		ORDER BY day ASC
	`, since, tz)
	if err != nil {
		return nil, fmt.Errorf("failed to build login trend: %w", err)
	}
	return rows, nil
}

// ActiveUsersSince lists accounts that signed in or navigated at or after since
func (r *ActivityRepository) ActiveUsersSince(ctx context.Context, since time.Time) ([]models.ActiveUser, error) {
	users := []models.ActiveUser{}
	err := r.db.SelectContext(ctx, &users, `
		SELECT DISTINCT a.id, a.name, a.email, a.role
		FROM activity_logs l
		JOIN accounts a ON a.id = l.account_id
		WHERE l.action IN ('login', 'google_login', 'page_view') AND l.created_at >= $1
		ORDER BY a.name ASC
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

// UserStats summarizes one account's activity history
func (r *ActivityRepository) UserStats(ctx context.Context, accountID uuid.UUID) (*models.UserActivityStats, error) {
	var stats models.UserActivityStats
	err := r.db.QueryRowxContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE action IN ('login', 'google_login')),
		       MAX(created_at) FILTER (WHERE action IN ('login', 'google_login'))
		FROM activity_logs
		WHERE account_id = $1
	`, accountID).Scan(&stats.TotalActivities, &stats.LoginCount, &stats.LastLogin)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize user activity: %w", err)
	}
	return &stats, nil
}
