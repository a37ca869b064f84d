package models

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the settlement state of a monthly rent record
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPartial PaymentStatus = "partial"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// PaymentMethod is how the rent was collected. The empty method means unspecified.
type PaymentMethod string

const (
	PaymentMethodNone         PaymentMethod = ""
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodUPI          PaymentMethod = "upi"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheque       PaymentMethod = "cheque"
)

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodNone, PaymentMethodCash, PaymentMethodUPI, PaymentMethodBankTransfer, PaymentMethodCheque:
		return true
	}
	return false
}

var monthKeyPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthKey identifies a billing month in "YYYY-MM" form
type MonthKey string

// ParseMonthKey validates a "YYYY-MM" string
func ParseMonthKey(s string) (MonthKey, error) {
	if !monthKeyPattern.MatchString(s) {
		return "", fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return MonthKey(s), nil
}

// MonthKeyOf returns the month key containing t
func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format("2006-01"))
}

// Start returns the first instant of the month in loc
func (m MonthKey) Start(loc *time.Location) time.Time {
	t, err := time.ParseInLocation("2006-01", string(m), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddMonths returns the month key n months after m (n may be negative)
func (m MonthKey) AddMonths(n int) MonthKey {
	return MonthKeyOf(m.Start(time.UTC).AddDate(0, n, 0))
}

// Payment is the single rent record for an (occupant, month) pair
type Payment struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	OccupantID    uuid.UUID     `json:"occupantId" db:"occupant_id"`
	Month         MonthKey      `json:"month" db:"month"`
	AmountDue     float64       `json:"amountDue" db:"amount_due"`
	AmountPaid    float64       `json:"amountPaid" db:"amount_paid"`
	Status        PaymentStatus `json:"status" db:"status"`
	PaidDate      NullTime      `json:"paidDate" db:"paid_date"`
	PaymentMethod PaymentMethod `json:"paymentMethod" db:"payment_method"`
	TransactionID NullString    `json:"transactionId" db:"transaction_id"`
	Notes         NullString    `json:"notes" db:"notes"`
	RecordedBy    *uuid.UUID    `json:"recordedBy" db:"recorded_by"`
	CreatedAt     time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time     `json:"updatedAt" db:"updated_at"`
}

// DeriveStatus applies the save-time status rule: paid when the full amount
// is covered, partial when something was paid, otherwise the stored status.
func (p *Payment) DeriveStatus() {
	switch {
	case p.AmountPaid >= p.AmountDue:
		p.Status = PaymentStatusPaid
	case p.AmountPaid > 0:
		p.Status = PaymentStatusPartial
	case p.Status == "":
		p.Status = PaymentStatusPending
	}
}

// RecordPaymentRequest is the payload for the rent write path
type RecordPaymentRequest struct {
	OccupantID    string   `json:"occupantId" binding:"required,uuid"`
	Month         string   `json:"month" binding:"required,monthkey"`
	AmountPaid    *float64 `json:"amountPaid" binding:"required,gte=0"`
	PaymentMethod string   `json:"paymentMethod" binding:"omitempty,oneof=cash upi bank_transfer cheque"`
	TransactionID string   `json:"transactionId" binding:"omitempty,max=100"`
	Notes         string   `json:"notes" binding:"omitempty,max=500"`
}

// PaymentSummary is the payment slice embedded in a rent status row
type PaymentSummary struct {
	AmountPaid    float64       `json:"amountPaid"`
	PaidDate      NullTime      `json:"paidDate"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
}

// RentStatusRow is one occupant's derived rent state for a month
type RentStatusRow struct {
	OccupantID  string          `json:"occupantId"`
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Room        string          `json:"room"`
	Coaching    string          `json:"coaching"`
	MonthlyRent float64         `json:"monthlyRent"`
	DueDay      int             `json:"dueDay"`
	Status      PaymentStatus   `json:"status"`
	Payment     *PaymentSummary `json:"payment"`
}

// RentStats aggregates a month's rent status
type RentStats struct {
	TotalStudents int     `json:"totalStudents"`
	TotalDue      float64 `json:"totalDue"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalPending  float64 `json:"totalPending"`
	PaidCount     int     `json:"paidCount"`
	PendingCount  int     `json:"pendingCount"`
	OverdueCount  int     `json:"overdueCount"`
}

// RentStatus is the month-level rent view
type RentStatus struct {
	Month    MonthKey        `json:"month"`
	Students []RentStatusRow `json:"students"`
	Stats    RentStats       `json:"stats"`
}

// OccupantRentSnapshot is the occupant header returned with payment history
type OccupantRentSnapshot struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Room        string  `json:"room"`
	MonthlyRent float64 `json:"monthlyRent"`
}

// PaymentHistory is the most recent payments for one occupant
type PaymentHistory struct {
	Student  OccupantRentSnapshot `json:"student"`
	Payments []Payment            `json:"payments"`
}

// MonthlyCollection is one month of the collection trend
type MonthlyCollection struct {
	Month         MonthKey `json:"month" db:"month"`
	TotalPaid     float64  `json:"totalPaid" db:"total_paid"`
	PaidCount     int      `json:"paidCount" db:"paid_count"`
	TotalPayments int      `json:"totalPayments" db:"total_payments"`
}
