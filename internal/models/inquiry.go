package models

import (
	"time"

	"github.com/google/uuid"
)

// InquiryStatus is the follow-up stage of a booking or trial-stay query
type InquiryStatus string

const (
	InquiryStatusNew       InquiryStatus = "new"
	InquiryStatusContacted InquiryStatus = "contacted"
	InquiryStatusBooked    InquiryStatus = "booked"
	InquiryStatusConverted InquiryStatus = "converted"
	InquiryStatusClosed    InquiryStatus = "closed"
)

// InquiryStatuses lists every status in lifecycle order
var InquiryStatuses = []InquiryStatus{
	InquiryStatusNew,
	InquiryStatusContacted,
	InquiryStatusBooked,
	InquiryStatusConverted,
	InquiryStatusClosed,
}

// Inquiry is a public booking or trial-stay submission
type Inquiry struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	Name           string        `json:"name" db:"name"`
	Email          string        `json:"email" db:"email"`
	Phone          string        `json:"phone" db:"phone"`
	Address        NullString    `json:"address" db:"address"`
	City           NullString    `json:"city" db:"city"`
	State          NullString    `json:"state" db:"state"`
	Course         string        `json:"course" db:"course"`
	Coaching       string        `json:"coaching" db:"coaching"`
	RoomPreference RoomCategory  `json:"roomPreference" db:"room_preference"`
	PickupLocation string        `json:"pickupLocation" db:"pickup_location"`
	Message        NullString    `json:"message" db:"message"`
	ArrivalDate    NullString    `json:"arrivalDate" db:"arrival_date"`
	NumberOfGuests int           `json:"numberOfGuests" db:"number_of_guests"`
	StayDuration   int           `json:"stayDuration" db:"stay_duration"`
	IsTrialStay    bool          `json:"isTrialStay" db:"is_trial_stay"`
	Status         InquiryStatus `json:"status" db:"status"`
	AdminNotes     NullString    `json:"adminNotes" db:"admin_notes"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time     `json:"updatedAt" db:"updated_at"`
}

// CreateInquiryRequest is the public submission payload
type CreateInquiryRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=100"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone" binding:"required,indianphone"`
	Address        string `json:"address" binding:"max=300"`
	City           string `json:"city" binding:"max=100"`
	State          string `json:"state" binding:"max=100"`
	Course         string `json:"course" binding:"omitempty,oneof=NEET JEE Foundation Other"`
	Coaching       string `json:"coaching" binding:"omitempty,oneof=Allen Resonance Motion Vibrant Other"`
	RoomPreference string `json:"roomPreference" binding:"omitempty,roomcategory"`
	PickupLocation string `json:"pickupLocation" binding:"omitempty,oneof=none kota_junction dakniya_talawa bus_stand"`
	Message        string `json:"message" binding:"max=2000"`
	ArrivalDate    string `json:"arrivalDate" binding:"omitempty,datetime=2006-01-02"`
	NumberOfGuests int    `json:"numberOfGuests" binding:"omitempty,min=1,max=10"`
	StayDuration   int    `json:"stayDuration" binding:"omitempty,min=1,max=30"`
	IsTrialStay    bool   `json:"isTrialStay"`
}

// UpdateInquiryRequest is the admin follow-up payload
type UpdateInquiryRequest struct {
	Status     *string `json:"status" binding:"omitempty,oneof=new contacted booked converted closed"`
	AdminNotes *string `json:"adminNotes" binding:"omitempty,max=2000"`
}

// InquiryFilter narrows inquiry listings
type InquiryFilter struct {
	Status InquiryStatus
	Trial  *bool
	Page   int
	Limit  int
}

// InquiryPage is a page of inquiries with per-status counts
type InquiryPage struct {
	Queries    []Inquiry      `json:"queries"`
	Stats      map[string]int `json:"stats"`
	Pagination Pagination     `json:"pagination"`
}

// Pagination describes a paged listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// NewPagination computes page count from the total
func NewPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
