package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/pkg/sms"
	"github.com/sirupsen/logrus"
)

// InquiryStore persists public booking and trial-stay queries
type InquiryStore interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Inquiry, error)
	List(ctx context.Context, filter models.InquiryFilter) ([]models.Inquiry, int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	Update(ctx context.Context, inquiry *models.Inquiry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// InquiryService handles the public query inbox
type InquiryService struct {
	inquiries   InquiryStore
	gateway     sms.Gateway
	alertPhones []string
	logger      *logrus.Logger
}

// NewInquiryService creates a new inquiry service. A nil gateway disables alerts.
func NewInquiryService(inquiries InquiryStore, gateway sms.Gateway, alertPhones []string, logger *logrus.Logger) *InquiryService {
	return &InquiryService{
		inquiries:   inquiries,
		gateway:     gateway,
		alertPhones: alertPhones,
		logger:      logger,
	}
}

// Submit stores a new query and alerts the owners
func (s *InquiryService) Submit(ctx context.Context, req models.CreateInquiryRequest) (*models.Inquiry, error) {
	category, err := models.ParseRoomCategory(req.RoomPreference)
	if err != nil {
		return nil, InvalidArgument(err.Error())
	}

	inquiry := &models.Inquiry{
		Name:           strings.TrimSpace(req.Name),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          strings.TrimSpace(req.Phone),
		Address:        models.NewNullString(strings.TrimSpace(req.Address)),
		City:           models.NewNullString(strings.TrimSpace(req.City)),
		State:          models.NewNullString(strings.TrimSpace(req.State)),
		Course:         req.Course,
		Coaching:       req.Coaching,
		RoomPreference: category,
		PickupLocation: req.PickupLocation,
		Message:        models.NewNullString(strings.TrimSpace(req.Message)),
		ArrivalDate:    models.NewNullString(req.ArrivalDate),
		NumberOfGuests: req.NumberOfGuests,
		StayDuration:   req.StayDuration,
		IsTrialStay:    req.IsTrialStay,
		Status:         models.InquiryStatusNew,
	}
	if inquiry.PickupLocation == "" {
		inquiry.PickupLocation = "none"
	}
	if inquiry.IsTrialStay {
		if inquiry.NumberOfGuests == 0 {
			inquiry.NumberOfGuests = 1
		}
		if inquiry.StayDuration == 0 {
			inquiry.StayDuration = 1
		}
	}

	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("failed to save query: %w", err)
	}

	s.alert(ctx, inquiry)
	return inquiry, nil
}

// alert texts the owners. Failures are logged and never fail the submission.
func (s *InquiryService) alert(ctx context.Context, inquiry *models.Inquiry) {
	if s.gateway == nil || len(s.alertPhones) == 0 {
		return
	}

	kind := "Query"
	if inquiry.IsTrialStay {
		kind = "Trial stay"
	}
	message := fmt.Sprintf("New %s: %s (%s)", kind, inquiry.Name, inquiry.Phone)
	if inquiry.Coaching != "" {
		message += ", " + inquiry.Coaching
	}
	if inquiry.RoomPreference != models.RoomCategoryNone {
		message += ", " + string(inquiry.RoomPreference)
	}

	if err := s.gateway.Send(ctx, s.alertPhones, message); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"inquiry_id": inquiry.ID,
			"gateway":    s.gateway.Name(),
		}).Warn("Failed to send query alert")
	}
}

// List returns a page of queries with per-status counts
func (s *InquiryService) List(ctx context.Context, filter models.InquiryFilter) (*models.InquiryPage, error) {
	filter.Page, filter.Limit = clampPage(filter.Page, filter.Limit)

	queries, total, err := s.inquiries.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list queries: %w", err)
	}
	stats, err := s.inquiries.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count queries: %w", err)
	}
	for _, st := range models.InquiryStatuses {
		if _, ok := stats[string(st)]; !ok {
			stats[string(st)] = 0
		}
	}

	if queries == nil {
		queries = []models.Inquiry{}
	}
	return &models.InquiryPage{
		Queries:    queries,
		Stats:      stats,
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// Get returns one query. A staff member other than a viewer opening a new
// query marks it contacted.
func (s *InquiryService) Get(ctx context.Context, viewer models.Role, id uuid.UUID) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load query: %w", err)
	}
	if inquiry == nil {
		return nil, NotFound("Query not found")
	}

	if inquiry.Status == models.InquiryStatusNew && !viewer.IsReadOnly() {
		inquiry.Status = models.InquiryStatusContacted
		if err := s.inquiries.Update(ctx, inquiry); err != nil {
			return nil, fmt.Errorf("failed to mark query contacted: %w", err)
		}
	}
	return inquiry, nil
}

// Update changes status and admin notes
func (s *InquiryService) Update(ctx context.Context, id uuid.UUID, req models.UpdateInquiryRequest) (*models.Inquiry, error) {
	inquiry, err := s.inquiries.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load query: %w", err)
	}
	if inquiry == nil {
		return nil, NotFound("Query not found")
	}

	if req.Status != nil {
		inquiry.Status = models.InquiryStatus(*req.Status)
	}
	if req.AdminNotes != nil {
		inquiry.AdminNotes = models.NewNullString(*req.AdminNotes)
	}

	if err := s.inquiries.Update(ctx, inquiry); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFound("Query not found")
		}
		return nil, fmt.Errorf("failed to update query: %w", err)
	}
	return inquiry, nil
}

// Delete removes a query permanently
func (s *InquiryService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.inquiries.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("Query not found")
		}
		return fmt.Errorf("failed to delete query: %w", err)
	}
	return nil
}
