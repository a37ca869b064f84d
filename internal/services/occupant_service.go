package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// OccupantStore persists occupant profiles and their linked accounts
type OccupantStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Occupant, error)
	List(ctx context.Context, filter models.OccupantFilter) ([]models.Occupant, error)
	ListActiveInRoom(ctx context.Context, room string) ([]models.Occupant, error)
	CreateWithAccount(ctx context.Context, account *models.Account, occupant *models.Occupant) error
	Update(ctx context.Context, occupant *models.Occupant) error
	UpdatePhoto(ctx context.Context, id uuid.UUID, photoURL string) error
	Checkout(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*models.OccupantStats, error)
}

// OccupantService manages the student roster
type OccupantService struct {
	occupants OccupantStore
	auth      *AuthService
	images    ImageStore
	activity  ActivityRecorder
	logger    *logrus.Logger
	now       func() time.Time
}

// NewOccupantService creates a new roster service
func NewOccupantService(occupants OccupantStore, auth *AuthService, images ImageStore, activity ActivityRecorder, logger *logrus.Logger) *OccupantService {
	return &OccupantService{
		occupants: occupants,
		auth:      auth,
		images:    images,
		activity:  activity,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns occupants matching the filter, newest first
func (s *OccupantService) List(ctx context.Context, filter models.OccupantFilter) ([]models.Occupant, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, InvalidArgumentf("invalid status: %q", filter.Status)
	}
	return s.occupants.List(ctx, filter)
}

// Get returns one occupant
func (s *OccupantService) Get(ctx context.Context, id uuid.UUID) (*models.Occupant, error) {
	occupant, err := s.occupants.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load occupant: %w", err)
	}
	if occupant == nil {
		return nil, NotFound("Student not found")
	}
	return occupant, nil
}

// Stats summarizes the roster
func (s *OccupantService) Stats(ctx context.Context) (*models.OccupantStats, error) {
	return s.occupants.Stats(ctx)
}

// Create registers a student account and profile together
func (s *OccupantService) Create(ctx context.Context, actor uuid.UUID, in models.OccupantInput, client ClientInfo) (*models.Occupant, error) {
	name, email := deref(in.Name), strings.ToLower(strings.TrimSpace(deref(in.Email)))
	if strings.TrimSpace(name) == "" || email == "" {
		return nil, InvalidArgument("Name and email are required")
	}

	password := deref(in.Password)
	if password == "" {
		password = fmt.Sprintf("student_%d", s.now().UnixMilli())
	}
	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		Name:         strings.TrimSpace(name),
		Email:        email,
		Phone:        models.NewNullString(deref(in.Phone)),
		PasswordHash: models.NewNullString(hash),
		Role:         models.RoleStudent,
		IsActive:     true,
	}

	occupant := &models.Occupant{
		Status:     models.OccupantStatusActive,
		RentDueDay: 1,
	}
	if err := applyOccupantInput(occupant, in); err != nil {
		return nil, err
	}
	if err := s.checkRoom(ctx, occupant); err != nil {
		return nil, err
	}

	if err := s.occupants.CreateWithAccount(ctx, account, occupant); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, Conflict("User with this email already exists")
		}
		return nil, fmt.Errorf("failed to create student: %w", err)
	}

	s.activity.Record(ctx, ActivityEvent{
		AccountID: actor,
		Action:    models.ActionUserCreate,
		Details:   map[string]interface{}{"studentId": occupant.ID.String(), "email": email, "room": occupant.RoomNumber.String},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
	return occupant, nil
}

// Update applies a partial edit. Name and phone also change on the account.
func (s *OccupantService) Update(ctx context.Context, id uuid.UUID, in models.OccupantInput) (*models.Occupant, error) {
	occupant, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	prevRoom, prevType, prevStatus := occupant.RoomNumber.String, occupant.RoomType, occupant.Status
	if err := applyOccupantInput(occupant, in); err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, InvalidArgument("Name cannot be empty")
		}
		occupant.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		occupant.Phone = *in.Phone
	}

	if occupant.RoomNumber.String != prevRoom || occupant.RoomType != prevType || occupant.Status != prevStatus {
		if err := s.checkRoom(ctx, occupant); err != nil {
			return nil, err
		}
	}

	if err := s.occupants.Update(ctx, occupant); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFound("Student not found")
		}
		return nil, fmt.Errorf("failed to update student: %w", err)
	}
	return occupant, nil
}

// Checkout marks the occupant checked out and deactivates the account
func (s *OccupantService) Checkout(ctx context.Context, id uuid.UUID) error {
	if err := s.occupants.Checkout(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("Student not found")
		}
		return fmt.Errorf("failed to check out student: %w", err)
	}
	s.logger.WithField("occupant_id", id).Info("Student checked out")
	return nil
}

// UpdatePhoto stores a new profile photo and removes the previous file
func (s *OccupantService) UpdatePhoto(ctx context.Context, id uuid.UUID, file *multipart.FileHeader) (string, error) {
	occupant, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	photoURL, err := s.images.Save(file, UploadStudentPhoto)
	if err != nil {
		return "", err
	}
	if err := s.occupants.UpdatePhoto(ctx, id, photoURL); err != nil {
		_ = s.images.Delete(photoURL)
		return "", fmt.Errorf("failed to save photo: %w", err)
	}

	if old := occupant.PhotoURL.String; old != "" {
		if err := s.images.Delete(old); err != nil {
			s.logger.WithError(err).WithField("path", old).Warn("Failed to remove previous photo")
		}
	}
	return photoURL, nil
}

// checkRoom loads the other active occupants of the target room and applies
// CheckRoomAssignment
func (s *OccupantService) checkRoom(ctx context.Context, occupant *models.Occupant) error {
	room := occupant.RoomNumber.String
	if room == "" || occupant.Status != models.OccupantStatusActive {
		return nil
	}

	current, err := s.occupants.ListActiveInRoom(ctx, room)
	if err != nil {
		return fmt.Errorf("failed to load room occupants: %w", err)
	}

	roommates := make([]models.Occupant, 0, len(current))
	for _, o := range current {
		if o.ID != occupant.ID {
			roommates = append(roommates, o)
		}
	}
	return CheckRoomAssignment(room, occupant.RoomType, roommates)
}

// CheckRoomAssignment rejects a placement whose category disagrees with the
// room's existing occupants or that exceeds the category's bed count
func CheckRoomAssignment(room string, category models.RoomCategory, roommates []models.Occupant) error {
	effective := category
	for _, r := range roommates {
		if r.RoomType == models.RoomCategoryNone {
			continue
		}
		if category != models.RoomCategoryNone && r.RoomType != category {
			return Conflict(fmt.Sprintf("Room %s is already assigned as %s", room, r.RoomType))
		}
		if effective == models.RoomCategoryNone {
			effective = r.RoomType
		}
	}

	if beds := effective.Beds(); beds > 0 && len(roommates)+1 > beds {
		return Conflict(fmt.Sprintf("Room %s is full", room))
	}
	return nil
}

// applyOccupantInput copies the profile fields set in in onto o
func applyOccupantInput(o *models.Occupant, in models.OccupantInput) error {
	setString := func(dst *models.NullString, src *string) {
		if src != nil {
			*dst = models.NewNullString(strings.TrimSpace(*src))
		}
	}

	setString(&o.FatherName, in.FatherName)
	setString(&o.MotherName, in.MotherName)
	setString(&o.Gender, in.Gender)
	setString(&o.BloodGroup, in.BloodGroup)
	setString(&o.AadharNumber, in.AadharNumber)
	setString(&o.Address, in.Address)
	setString(&o.City, in.City)
	setString(&o.State, in.State)
	setString(&o.Pincode, in.Pincode)
	setString(&o.EmergencyContactName, in.EmergencyContactName)
	setString(&o.EmergencyContactPhone, in.EmergencyContactPhone)
	setString(&o.EmergencyContactRelation, in.EmergencyContactRelation)
	setString(&o.RoomNumber, in.RoomNumber)
	setString(&o.Coaching, in.Coaching)
	setString(&o.Course, in.Course)
	setString(&o.Batch, in.Batch)
	setString(&o.TargetExam, in.TargetExam)
	setString(&o.Notes, in.Notes)

	if in.DateOfBirth != nil {
		d, err := parseDate(*in.DateOfBirth, "dateOfBirth")
		if err != nil {
			return err
		}
		o.DateOfBirth = d
	}
	if in.JoiningDate != nil {
		d, err := parseDate(*in.JoiningDate, "joiningDate")
		if err != nil {
			return err
		}
		o.JoiningDate = d
	}
	if in.RoomType != nil {
		c, err := models.ParseRoomCategory(*in.RoomType)
		if err != nil {
			return InvalidArgument(err.Error())
		}
		o.RoomType = c
	}
	if in.MonthlyRent != nil {
		if *in.MonthlyRent < 0 {
			return InvalidArgument("monthlyRent cannot be negative")
		}
		o.MonthlyRent = *in.MonthlyRent
	}
	if in.RentDueDay != nil {
		if *in.RentDueDay < 1 || *in.RentDueDay > 28 {
			return InvalidArgument("rentDueDay must be between 1 and 28")
		}
		o.RentDueDay = *in.RentDueDay
	}
	if in.Status != nil {
		status := models.OccupantStatus(*in.Status)
		if !status.IsValid() {
			return InvalidArgumentf("invalid status: %q", *in.Status)
		}
		o.Status = status
	}
	return nil
}

func parseDate(s, field string) (models.NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.NullTime{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return models.NullTime{}, InvalidArgumentf("%s must be a YYYY-MM-DD date", field)
	}
	return models.NewNullTime(t), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
