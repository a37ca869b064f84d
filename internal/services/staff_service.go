package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// StaffStore persists the public staff directory
type StaffStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.StaffMember, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.StaffMember, error)
	Create(ctx context.Context, member *models.StaffMember) error
	Update(ctx context.Context, member *models.StaffMember) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StaffService handles business logic for the staff directory
type StaffService struct {
	staff  StaffStore
	images ImageStore
	logger *logrus.Logger
}

// NewStaffService creates a new StaffService
func NewStaffService(staff StaffStore, images ImageStore, logger *logrus.Logger) *StaffService {
	return &StaffService{
		staff:  staff,
		images: images,
		logger: logger,
	}
}

// List returns staff cards in display order
func (s *StaffService) List(ctx context.Context, activeOnly bool) ([]models.StaffMember, error) {
	members, err := s.staff.List(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	if members == nil {
		members = []models.StaffMember{}
	}
	return members, nil
}

// Create adds a staff card with an optional photo
func (s *StaffService) Create(ctx context.Context, in models.StaffInput, image *multipart.FileHeader) (*models.StaffMember, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" || in.Role == nil || strings.TrimSpace(*in.Role) == "" {
		return nil, InvalidArgument("Name and role are required")
	}

	member := &models.StaffMember{
		Icon:     models.DefaultStaffIcon,
		IsActive: true,
	}
	applyStaffInput(member, in)

	if image != nil {
		url, err := s.images.Save(image, UploadStaffPhoto)
		if err != nil {
			return nil, err
		}
		member.ImageURL = models.NewNullString(url)
	}

	if err := s.staff.Create(ctx, member); err != nil {
		s.discard(member.ImageURL.String)
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return member, nil
}

// Update edits a staff card. A new photo replaces the stored one.
func (s *StaffService) Update(ctx context.Context, id uuid.UUID, in models.StaffInput, image *multipart.FileHeader) (*models.StaffMember, error) {
	member, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	applyStaffInput(member, in)
	if strings.TrimSpace(member.Name) == "" {
		return nil, InvalidArgument("Name cannot be empty")
	}

	previous := member.ImageURL.String
	if image != nil {
		url, err := s.images.Save(image, UploadStaffPhoto)
		if err != nil {
			return nil, err
		}
		member.ImageURL = models.NewNullString(url)
	}

	if err := s.staff.Update(ctx, member); err != nil {
		if image != nil {
			s.discard(member.ImageURL.String)
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, NotFound("Staff member not found")
		}
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}

	if image != nil {
		s.discard(previous)
	}
	return member, nil
}

// Delete removes the card and its photo
func (s *StaffService) Delete(ctx context.Context, id uuid.UUID) error {
	member, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.staff.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return NotFound("Staff member not found")
		}
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	s.discard(member.ImageURL.String)
	return nil
}

func (s *StaffService) get(ctx context.Context, id uuid.UUID) (*models.StaffMember, error) {
	member, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load staff member: %w", err)
	}
	if member == nil {
		return nil, NotFound("Staff member not found")
	}
	return member, nil
}

func (s *StaffService) discard(path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(path); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove staff image")
	}
}

func applyStaffInput(m *models.StaffMember, in models.StaffInput) {
	if in.Name != nil {
		m.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		m.Role = strings.TrimSpace(*in.Role)
	}
	if in.Description != nil {
		m.Description = models.NewNullString(strings.TrimSpace(*in.Description))
	}
	if in.Icon != nil {
		m.Icon = strings.TrimSpace(*in.Icon)
		if m.Icon == "" {
			m.Icon = models.DefaultStaffIcon
		}
	}
	if in.DisplayOrder != nil {
		m.DisplayOrder = *in.DisplayOrder
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
}
