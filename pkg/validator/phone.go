package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrEmptyPhone indicates phone number is empty
	ErrEmptyPhone = errors.New("phone number cannot be empty")

	// ErrInvalidFormat indicates phone number contains invalid characters
	ErrInvalidFormat = errors.New("phone number can only contain digits")

	// ErrInvalidLength indicates the national number is not 10 digits
	ErrInvalidLength = errors.New("phone number must be exactly 10 digits")

	// ErrInvalidPrefix indicates the number is not an Indian mobile number
	ErrInvalidPrefix = errors.New("phone number must start with 6, 7, 8 or 9")
)

var digitsOnly = regexp.MustCompile(`^\d+$`)

var separators = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "+", "")

// PhoneValidator validates Indian mobile numbers
type PhoneValidator struct{}

// NewPhoneValidator creates a new phone validator instance
func NewPhoneValidator() *PhoneValidator {
	return &PhoneValidator{}
}

// Validate accepts 9876543210, 098765 43210, +91 98765-43210 and similar,
// returning the 10-digit national number.
func (v *PhoneValidator) Validate(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", ErrEmptyPhone
	}

	sanitized := v.Sanitize(phone)
	if !digitsOnly.MatchString(sanitized) {
		return "", ErrInvalidFormat
	}
	if len(sanitized) != 10 {
		return "", ErrInvalidLength
	}
	if sanitized[0] < '6' {
		return "", ErrInvalidPrefix
	}
	return sanitized, nil
}

// Sanitize strips separators and the +91 / 0 trunk prefixes
func (v *PhoneValidator) Sanitize(phone string) string {
	phone = separators.Replace(strings.TrimSpace(phone))

	switch {
	case len(phone) == 12 && strings.HasPrefix(phone, "91"):
		phone = phone[2:]
	case len(phone) == 11 && strings.HasPrefix(phone, "0"):
		phone = phone[1:]
	}
	return phone
}

// IsValid is a convenience method that returns true if phone is valid
func (v *PhoneValidator) IsValid(phone string) bool {
	_, err := v.Validate(phone)
	return err == nil
}

// E164 returns the number in +91XXXXXXXXXX form
func (v *PhoneValidator) E164(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return "+91" + sanitized, nil
}

// Format returns the display form 98765 43210
func (v *PhoneValidator) Format(phone string) (string, error) {
	sanitized, err := v.Validate(phone)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s", sanitized[:5], sanitized[5:]), nil
}
