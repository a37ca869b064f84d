package validator

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"
	"github.com/mkheight/hostel-backend/internal/models"
)

var phones = NewPhoneValidator()

// RegisterBindings installs the custom struct tags used by request payloads
// on gin's default validator: monthkey, indianphone, roomcategory and role.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*playground.Validate)
	if !ok {
		return fmt.Errorf("unexpected binding validator engine %T", binding.Validator.Engine())
	}
	return Register(v)
}

// Register installs the custom tags on v
func Register(v *playground.Validate) error {
	tags := map[string]playground.Func{
		"monthkey":     validateMonthKey,
		"indianphone":  validateIndianPhone,
		"roomcategory": validateRoomCategory,
		"role":         validateRole,
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

func validateMonthKey(fl playground.FieldLevel) bool {
	_, err := models.ParseMonthKey(fl.Field().String())
	return err == nil
}

func validateIndianPhone(fl playground.FieldLevel) bool {
	return phones.IsValid(fl.Field().String())
}

func validateRoomCategory(fl playground.FieldLevel) bool {
	c, err := models.ParseRoomCategory(fl.Field().String())
	return err == nil && c != models.RoomCategoryNone
}

func validateRole(fl playground.FieldLevel) bool {
	_, err := models.ParseRole(fl.Field().String())
	return err == nil
}
