package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"

	"github.com/google/uuid"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/sirupsen/logrus"
)

// SettingsStore persists the singleton site settings document
type SettingsStore interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}

// SettingsService edits the public site content
type SettingsService struct {
	store    SettingsStore
	images   ImageStore
	activity ActivityRecorder
	logger   *logrus.Logger

	// mu serializes read-modify-write cycles on the document
	mu sync.Mutex
}

// NewSettingsService creates a new settings service
func NewSettingsService(store SettingsStore, images ImageStore, activity ActivityRecorder, logger *logrus.Logger) *SettingsService {
	return &SettingsService{
		store:    store,
		images:   images,
		activity: activity,
		logger:   logger,
	}
}

// Get returns the current settings, creating the defaults on first read
func (s *SettingsService) Get(ctx context.Context) (*models.SiteSettings, error) {
	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// Update merges a partial edit into the document
func (s *SettingsService) Update(ctx context.Context, actor uuid.UUID, req models.UpdateSettingsRequest, client ClientInfo) (*models.SiteSettings, error) {
	settings, err := s.modify(ctx, func(settings *models.SiteSettings) error {
		if err := settings.Apply(req); err != nil {
			return InvalidArgument(err.Error())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sections := []string{}
	if req.TrialStay != nil {
		sections = append(sections, "trialStay")
	}
	if len(req.Rooms) > 0 {
		sections = append(sections, "rooms")
	}
	if len(req.WeeklyMenu) > 0 {
		sections = append(sections, "weeklyMenu")
	}
	s.activity.Record(ctx, ActivityEvent{
		AccountID: actor,
		Action:    models.ActionSettingsUpdate,
		Details:   map[string]interface{}{"sections": sections},
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
	})
	return settings, nil
}

// AddRoomImage uploads an image onto a room category's card
func (s *SettingsService) AddRoomImage(ctx context.Context, category models.RoomCategory, file *multipart.FileHeader) (*models.SiteSettings, error) {
	if category == models.RoomCategoryNone {
		return nil, InvalidArgument("Invalid room type")
	}
	return s.addImage(ctx, file, UploadRoomImage, func(settings *models.SiteSettings) (*[]string, int, error) {
		room, ok := settings.Rooms[category]
		if !ok {
			return nil, 0, InvalidArgument("Invalid room type")
		}
		return &room.Images, models.MaxRoomImages, nil
	})
}

// RemoveRoomImage drops an image from a room category's card
func (s *SettingsService) RemoveRoomImage(ctx context.Context, category models.RoomCategory, imagePath string) (*models.SiteSettings, error) {
	return s.removeImage(ctx, imagePath, func(settings *models.SiteSettings) (*[]string, error) {
		room, ok := settings.Rooms[category]
		if !ok || category == models.RoomCategoryNone {
			return nil, InvalidArgument("Invalid room type")
		}
		return &room.Images, nil
	})
}

// AddGalleryImage uploads an image into a site gallery
func (s *SettingsService) AddGalleryImage(ctx context.Context, gallery models.ImageGallery, file *multipart.FileHeader) (*models.SiteSettings, error) {
	kind, ok := UploadKindForGallery(string(gallery))
	if !ok {
		return nil, InvalidArgument("Invalid gallery")
	}
	return s.addImage(ctx, file, kind, func(settings *models.SiteSettings) (*[]string, int, error) {
		return settings.Images(gallery), gallery.Limit(), nil
	})
}

// RemoveGalleryImage drops an image from a site gallery
func (s *SettingsService) RemoveGalleryImage(ctx context.Context, gallery models.ImageGallery, imagePath string) (*models.SiteSettings, error) {
	if gallery.Limit() == 0 {
		return nil, InvalidArgument("Invalid gallery")
	}
	return s.removeImage(ctx, imagePath, func(settings *models.SiteSettings) (*[]string, error) {
		return settings.Images(gallery), nil
	})
}

// ReplaceAboutImage uploads the about-section image and deletes the old one
func (s *SettingsService) ReplaceAboutImage(ctx context.Context, file *multipart.FileHeader) (*models.SiteSettings, error) {
	url, err := s.images.Save(file, UploadAboutImage)
	if err != nil {
		return nil, err
	}

	var previous string
	settings, err := s.modify(ctx, func(settings *models.SiteSettings) error {
		previous = settings.AboutImage
		settings.AboutImage = url
		return nil
	})
	if err != nil {
		s.discard(url)
		return nil, err
	}
	s.discard(previous)
	return settings, nil
}

type imageListFunc func(settings *models.SiteSettings) (*[]string, int, error)

func (s *SettingsService) addImage(ctx context.Context, file *multipart.FileHeader, kind UploadKind, list imageListFunc) (*models.SiteSettings, error) {
	// Check the limit before converting so a full gallery does not leave a stray file
	current, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	images, limit, err := list(current)
	if err != nil {
		return nil, err
	}
	if len(*images) >= limit {
		return nil, InvalidArgumentf("Maximum %d images allowed", limit)
	}

	url, err := s.images.Save(file, kind)
	if err != nil {
		return nil, err
	}

	settings, err := s.modify(ctx, func(settings *models.SiteSettings) error {
		images, limit, err := list(settings)
		if err != nil {
			return err
		}
		if len(*images) >= limit {
			return InvalidArgumentf("Maximum %d images allowed", limit)
		}
		*images = append(*images, url)
		return nil
	})
	if err != nil {
		s.discard(url)
		return nil, err
	}
	return settings, nil
}

func (s *SettingsService) removeImage(ctx context.Context, imagePath string, list func(*models.SiteSettings) (*[]string, error)) (*models.SiteSettings, error) {
	if imagePath == "" {
		return nil, InvalidArgument("imagePath is required")
	}

	settings, err := s.modify(ctx, func(settings *models.SiteSettings) error {
		images, err := list(settings)
		if err != nil {
			return err
		}
		kept := make([]string, 0, len(*images))
		for _, img := range *images {
			if img != imagePath {
				kept = append(kept, img)
			}
		}
		if len(kept) == len(*images) {
			return NotFound("Image not found")
		}
		*images = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.discard(imagePath)
	return settings, nil
}

// modify loads the document, applies fn and saves the result under mu
func (s *SettingsService) modify(ctx context.Context, fn func(*models.SiteSettings) error) (*models.SiteSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if err := fn(settings); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, settings); err != nil {
		return nil, fmt.Errorf("failed to save settings: %w", err)
	}
	return settings, nil
}

func (s *SettingsService) discard(path string) {
	if path == "" {
		return
	}
	if err := s.images.Delete(path); err != nil {
		s.logger.WithError(err).WithField("path", path).Warn("Failed to remove settings image")
	}
}
