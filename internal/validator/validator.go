package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/recompletion-service/internal/errors"
	"github.com/SAP-F-2025/recompletion-service/internal/services"
	"github.com/go-playground/validator/v10"
)

var settingNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,99}$`)

// Validator checks request payloads against their struct tags
type Validator struct {
	structValidator *validator.Validate
	now             func() time.Time
}

// New creates a validator with the recompletion tags registered
func New() *Validator {
	v := &Validator{
		structValidator: validator.New(),
		now:             time.Now,
	}
	v.registerCustomValidators()
	return v
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// Validate returns ValidationErrors describing every failed tag, or nil.
func (v *Validator) Validate(s interface{}) error {
	err := v.ValidateStruct(s)
	if err == nil {
		return nil
	}
	if errs := apperrors.ToValidationErrors(err); len(errs) > 0 {
		return errs
	}
	return err
}

func (v *Validator) registerCustomValidators() {
	v.structValidator.RegisterValidation("schedule", v.validateSchedule)
	v.structValidator.RegisterValidation("setting_name", validateSettingName)

	// Custom tag name function for better error messages
	v.structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})
}

func (v *Validator) validateSchedule(fl validator.FieldLevel) bool {
	return services.IsScheduleExpression(fl.Field().String(), v.now())
}

func validateSettingName(fl validator.FieldLevel) bool {
	return settingNamePattern.MatchString(fl.Field().String())
}
