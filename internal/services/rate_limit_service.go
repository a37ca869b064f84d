package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mkheight/hostel-backend/internal/database"
)

// RateLimitService throttles password sign-in attempts per email and per IP
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
	now    func() time.Time
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxFailures int           // Failed attempts allowed per identifier
	Window      time.Duration // Sliding window the failures are counted in
	MaxIPFails  int           // Failed attempts allowed per IP across all identifiers
}

// DefaultRateLimitConfig returns the default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		MaxFailures: 10,               // 10 failures
		Window:      15 * time.Minute, // per 15 minutes
		MaxIPFails:  30,
	}
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, config RateLimitConfig) *RateLimitService {
	if config.MaxFailures <= 0 || config.Window <= 0 {
		config = DefaultRateLimitConfig()
	}
	if config.MaxIPFails <= 0 {
		config.MaxIPFails = config.MaxFailures * 3
	}
	return &RateLimitService{
		db:     db,
		config: config,
		now:    time.Now,
	}
}

// CheckLogin returns a rate_limited error when the email or IP has too many
// recent failures
func (s *RateLimitService) CheckLogin(ctx context.Context, email, ip string) error {
	email = normalizeIdentifier(email)

	if email != "" {
		count, oldest, err := s.failureCount(ctx, "identifier", email)
		if err != nil {
			return fmt.Errorf("failed to check login rate limit: %w", err)
		}
		if count >= s.config.MaxFailures {
			return s.limited(oldest)
		}
	}

	if ip != "" {
		count, oldest, err := s.failureCount(ctx, "ip_address", ip)
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}
		if count >= s.config.MaxIPFails {
			return s.limited(oldest)
		}
	}

	return nil
}

func (s *RateLimitService) limited(oldest time.Time) error {
	retryAfter := oldest.Add(s.config.Window).Sub(s.now())
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return RateLimited("Too many login attempts. Please try again later.", retryAfter)
}

// failureCount returns the failures inside the window and when the oldest of them happened
func (s *RateLimitService) failureCount(ctx context.Context, column, value string) (int, time.Time, error) {
	windowStart := s.now().Add(-s.config.Window)

	query := fmt.Sprintf(`
		SELECT COUNT(*), COALESCE(MIN(attempted_at), NOW())
		FROM login_attempts
		WHERE %s = $1
		  AND succeeded = FALSE
		  AND attempted_at > $2
	`, column)

	var count int
	var oldest time.Time
	if err := s.db.QueryRowxContext(ctx, query, value, windowStart).Scan(&count, &oldest); err != nil {
		return 0, time.Time{}, err
	}
	return count, oldest, nil
}

// RecordAttempt stores a sign-in attempt. A success clears earlier failures for the email.
func (s *RateLimitService) RecordAttempt(ctx context.Context, email, ip string, succeeded bool) error {
	email = normalizeIdentifier(email)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO login_attempts (identifier, ip_address, succeeded, attempted_at)
		VALUES ($1, $2, $3, NOW())
	`, email, ip, succeeded)
	if err != nil {
		return fmt.Errorf("failed to record login attempt: %w", err)
	}

	if succeeded {
		_, err = s.db.ExecContext(ctx,
			`DELETE FROM login_attempts WHERE identifier = $1 AND succeeded = FALSE`, email)
		if err != nil {
			return fmt.Errorf("failed to reset login failures: %w", err)
		}
	}
	return nil
}

// CleanupExpired removes attempts older than the rate limit window
func (s *RateLimitService) CleanupExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().Add(-s.config.Window)

	result, err := s.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE attempted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

func normalizeIdentifier(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
