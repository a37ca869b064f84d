package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActivityAction is the closed set of logged actions
type ActivityAction string

const (
	ActionLogin          ActivityAction = "login"
	ActionLogout         ActivityAction = "logout"
	ActionGoogleLogin    ActivityAction = "google_login"
	ActionRegister       ActivityAction = "register"
	ActionSessionExpired ActivityAction = "session_expired"
	ActionBookingCreate  ActivityAction = "booking_create"
	ActionBookingUpdate  ActivityAction = "booking_update"
	ActionBookingCancel  ActivityAction = "booking_cancel"
	ActionBookingPayment ActivityAction = "booking_payment"
	ActionUserCreate     ActivityAction = "user_create"
	ActionUserUpdate     ActivityAction = "user_update"
	ActionUserDelete     ActivityAction = "user_delete"
	ActionSettingsUpdate ActivityAction = "settings_update"
	ActionPageView       ActivityAction = "page_view"
)

// ActivityCategory groups actions for dashboards
type ActivityCategory string

const (
	CategoryAuth       ActivityCategory = "auth"
	CategoryBooking    ActivityCategory = "booking"
	CategoryAdmin      ActivityCategory = "admin"
	CategoryNavigation ActivityCategory = "navigation"
)

// Category returns the category an action is filed under, or "" for unknown actions
func (a ActivityAction) Category() ActivityCategory {
	switch a {
	case ActionLogin, ActionLogout, ActionGoogleLogin, ActionRegister, ActionSessionExpired:
		return CategoryAuth
	case ActionBookingCreate, ActionBookingUpdate, ActionBookingCancel, ActionBookingPayment:
		return CategoryBooking
	case ActionUserCreate, ActionUserUpdate, ActionUserDelete, ActionSettingsUpdate:
		return CategoryAdmin
	case ActionPageView:
		return CategoryNavigation
	}
	return ""
}

// IsValid reports whether a is a known action
func (a ActivityAction) IsValid() bool {
	return a.Category() != ""
}

// IsClientReportable reports whether a browser may record a on its own behalf
func (a ActivityAction) IsClientReportable() bool {
	switch a {
	case ActionPageView, ActionLogout, ActionSessionExpired:
		return true
	}
	return false
}

// LoginActions are the actions counted as sign-ins
var LoginActions = []ActivityAction{ActionLogin, ActionGoogleLogin}

// ActivityDetails is free-form context stored as JSONB
type ActivityDetails map[string]interface{}

// Value implements driver.Valuer
func (d ActivityDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner
func (d *ActivityDetails) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*d = ActivityDetails{}
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported activity details type %T", src)
	}
}

// Activity is an append-only activity log entry
type Activity struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	AccountID uuid.UUID        `json:"userId" db:"account_id"`
	UserName  string           `json:"userName" db:"user_name"`
	UserEmail string           `json:"userEmail" db:"user_email"`
	UserRole  Role             `json:"userRole" db:"user_role"`
	Action    ActivityAction   `json:"action" db:"action"`
	Category  ActivityCategory `json:"category" db:"category"`
	Details   ActivityDetails  `json:"details" db:"details"`
	IPAddress NullString       `json:"ip" db:"ip_address"`
	UserAgent NullString       `json:"userAgent" db:"user_agent"`
	CreatedAt time.Time        `json:"timestamp" db:"created_at"`
}

// ActivityFilter narrows activity listings
type ActivityFilter struct {
	AccountID *uuid.UUID
	Category  ActivityCategory
	Action    ActivityAction
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// ActivityPage is a page of activity entries
type ActivityPage struct {
	Activities []Activity `json:"activities"`
	Pagination Pagination `json:"pagination"`
}

// CategoryCount is one bucket of the category breakdown
type CategoryCount struct {
	Category ActivityCategory `json:"category" db:"category"`
	Count    int              `json:"count" db:"count"`
}

// DailyCount is one day of the login trend
type DailyCount struct {
	Date  string `json:"date" db:"day"`
	Count int    `json:"count" db:"count"`
}

// ActiveUser is an account seen in the recent activity window
type ActiveUser struct {
	ID    uuid.UUID `json:"id" db:"id"`
	Name  string    `json:"name" db:"name"`
	Email string    `json:"email" db:"email"`
	Role  Role      `json:"role" db:"role"`
}

// ActivityStats is the admin dashboard summary
type ActivityStats struct {
	TodayLogins       int             `json:"todayLogins"`
	WeeklyActiveUsers int             `json:"weeklyActiveUsers"`
	TodayActivities   int             `json:"todayActivities"`
	CategoryBreakdown []CategoryCount `json:"categoryBreakdown"`
	LoginTrend        []DailyCount    `json:"loginTrend"`
	ActiveNow         int             `json:"activeNow"`
	ActiveUsers       []ActiveUser    `json:"activeUsers"`
}

// UserActivityStats summarizes one account's history
type UserActivityStats struct {
	TotalActivities int      `json:"totalActivities"`
	LoginCount      int      `json:"loginCount"`
	LastLogin       NullTime `json:"lastLogin"`
}

// UserActivity is one account's paged activity history
type UserActivity struct {
	User       ActiveUser        `json:"user"`
	Stats      UserActivityStats `json:"stats"`
	Activities []Activity        `json:"activities"`
	Pagination Pagination        `json:"pagination"`
}

// RecordActivityRequest is the client-side activity payload
type RecordActivityRequest struct {
	Action  string                 `json:"action" binding:"required"`
	Details map[string]interface{} `json:"details"`
}
