package database

import (
	"context"
	"fmt"

	"github.com/mkheight/hostel-backend/internal/models"
)

// SettingsRepository stores the singleton site settings document as JSONB
type SettingsRepository struct {
	db DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the settings document, creating it with defaults on first read.
// Sections missing from an older stored document are filled from the defaults.
func (r *SettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	defaults := models.DefaultSiteSettings()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO site_settings (settings_key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (settings_key) DO NOTHING
	`, models.SettingsKey, defaults)
	if err != nil {
		return nil, fmt.Errorf("failed to seed settings: %w", err)
	}

	var settings models.SiteSettings
	err = r.db.QueryRowxContext(ctx,
		`SELECT document, updated_at FROM site_settings WHERE settings_key = $1`, models.SettingsKey,
	).Scan(&settings, &settings.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	settings.FillDefaults()
	return &settings, nil
}

// Save replaces the stored document
func (r *SettingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.SettingsKey = models.SettingsKey
	err := r.db.QueryRowxContext(ctx, `
		INSERT INTO site_settings (settings_key, document, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (settings_key) DO UPDATE SET document = EXCLUDED.document, updated_at = NOW()
		RETURNING updated_at
	`, models.SettingsKey, *settings).Scan(&settings.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
