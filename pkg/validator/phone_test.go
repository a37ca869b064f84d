package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"9876543210", "9876543210", "Standard format"},
		{"98765 43210", "9876543210", "With spaces"},
		{"98765-43210", "9876543210", "With dashes"},
		{"+91 98765 43210", "9876543210", "With country code"},
		{"919876543210", "9876543210", "Country code without plus"},
		{"09876543210", "9876543210", "With trunk zero"},
		{"6123456789", "6123456789", "Starts with 6"},
		{"(712) 345.6789", "7123456789", "With parentheses and dots"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty"},
		{"   ", ErrEmptyPhone, "Blank"},
		{"98765abc10", ErrInvalidFormat, "Letters"},
		{"987654321", ErrInvalidLength, "Too short"},
		{"98765432101", ErrInvalidLength, "Too long"},
		{"5876543210", ErrInvalidPrefix, "Starts with 5"},
		{"0771234567", ErrInvalidPrefix, "Sri Lankan style"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestE164AndFormat(t *testing.T) {
	validator := NewPhoneValidator()

	e164, err := validator.E164("098765 43210")
	require.NoError(t, err)
	assert.Equal(t, "+919876543210", e164)

	display, err := validator.Format("+919876543210")
	require.NoError(t, err)
	assert.Equal(t, "98765 43210", display)

	_, err = validator.E164("12345")
	assert.Error(t, err)
}
