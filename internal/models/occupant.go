package models

import (
	"time"

	"github.com/google/uuid"
)

// OccupantStatus is the lifecycle state of an occupant profile
type OccupantStatus string

const (
	OccupantStatusActive   OccupantStatus = "active"
	OccupantStatusCheckout OccupantStatus = "checkout"
	OccupantStatusPending  OccupantStatus = "pending"
)

// IsValid reports whether s is a known occupant status
func (s OccupantStatus) IsValid() bool {
	switch s {
	case OccupantStatusActive, OccupantStatusCheckout, OccupantStatusPending:
		return true
	}
	return false
}

// Occupant is a resident profile linked one-to-one with an Account.
// Name, Email and Phone are read from the linked account.
type Occupant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	AccountID uuid.UUID `json:"userId" db:"account_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`

	// Personal
	FatherName   NullString `json:"fatherName" db:"father_name"`
	MotherName   NullString `json:"motherName" db:"mother_name"`
	DateOfBirth  NullTime   `json:"dateOfBirth" db:"date_of_birth"`
	Gender       NullString `json:"gender" db:"gender"`
	BloodGroup   NullString `json:"bloodGroup" db:"blood_group"`
	AadharNumber NullString `json:"aadharNumber" db:"aadhar_number"`

	// Contact
	Address                  NullString `json:"address" db:"address"`
	City                     NullString `json:"city" db:"city"`
	State                    NullString `json:"state" db:"state"`
	Pincode                  NullString `json:"pincode" db:"pincode"`
	EmergencyContactName     NullString `json:"emergencyContactName" db:"emergency_contact_name"`
	EmergencyContactPhone    NullString `json:"emergencyContactPhone" db:"emergency_contact_phone"`
	EmergencyContactRelation NullString `json:"emergencyContactRelation" db:"emergency_contact_relation"`

	// Hostel
	RoomNumber   NullString   `json:"roomNumber" db:"room_number"`
	RoomType     RoomCategory `json:"roomType" db:"room_type"`
	JoiningDate  NullTime     `json:"joiningDate" db:"joining_date"`
	CheckoutDate NullTime     `json:"checkoutDate" db:"checkout_date"`
	MonthlyRent  float64      `json:"monthlyRent" db:"monthly_rent"`
	RentDueDay   int          `json:"rentDueDay" db:"rent_due_day"`

	// Academic
	Coaching   NullString `json:"coaching" db:"coaching"`
	Course     NullString `json:"course" db:"course"`
	Batch      NullString `json:"batch" db:"batch"`
	TargetExam NullString `json:"targetExam" db:"target_exam"`

	PhotoURL  NullString     `json:"photoUrl" db:"photo_url"`
	Status    OccupantStatus `json:"status" db:"status"`
	Notes     NullString     `json:"notes" db:"notes"`
	CreatedAt time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time      `json:"updatedAt" db:"updated_at"`
}

// Summary returns the room-card view of the occupant
func (o *Occupant) Summary() OccupantSummary {
	return OccupantSummary{
		ID:       o.ID.String(),
		Name:     o.Name,
		Phone:    o.Phone,
		Email:    o.Email,
		Coaching: o.Coaching.String,
		PhotoURL: o.PhotoURL.String,
	}
}

// OccupantFilter narrows roster listings
type OccupantFilter struct {
	Status     OccupantStatus
	Coaching   string
	RoomNumber string
	Search     string
}

// OccupantStats summarizes the roster
type OccupantStats struct {
	Total      int            `json:"total"`
	Active     int            `json:"active"`
	Checkout   int            `json:"checkout"`
	ByCoaching map[string]int `json:"byCoaching"`
	ByRoomType map[string]int `json:"byRoomType"`
}

// OccupantInput carries roster fields for create and update. Nil pointers are left unchanged on update.
type OccupantInput struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,indianphone"`
	Password *string `json:"password" binding:"omitempty,min=6"`

	FatherName   *string `json:"fatherName"`
	MotherName   *string `json:"motherName"`
	DateOfBirth  *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
	Gender       *string `json:"gender" binding:"omitempty,oneof=male female other"`
	BloodGroup   *string `json:"bloodGroup" binding:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	AadharNumber *string `json:"aadharNumber"`

	Address                  *string `json:"address"`
	City                     *string `json:"city"`
	State                    *string `json:"state"`
	Pincode                  *string `json:"pincode"`
	EmergencyContactName     *string `json:"emergencyContactName"`
	EmergencyContactPhone    *string `json:"emergencyContactPhone"`
	EmergencyContactRelation *string `json:"emergencyContactRelation"`

	RoomNumber  *string  `json:"roomNumber"`
	RoomType    *string  `json:"roomType" binding:"omitempty,roomcategory"`
	JoiningDate *string  `json:"joiningDate" binding:"omitempty,datetime=2006-01-02"`
	MonthlyRent *float64 `json:"monthlyRent" binding:"omitempty,gte=0"`
	RentDueDay  *int     `json:"rentDueDay" binding:"omitempty,min=1,max=28"`
	Coaching    *string  `json:"coaching"`
	Course      *string  `json:"course"`
	Batch       *string  `json:"batch"`
	TargetExam  *string  `json:"targetExam"`
	Status      *string  `json:"status" binding:"omitempty,oneof=active checkout pending"`
	Notes       *string  `json:"notes"`
}
