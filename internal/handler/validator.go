package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	_ = v.RegisterValidation("activity_type", validateActivityType)
	_ = v.RegisterValidation("difficulty", validateDifficulty)
	_ = v.RegisterValidation("explanation_query", validateExplanationQuery)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a user-friendly map
// This prevents leaking internal struct names and provides cleaner error messages
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "activity_type":
			errs[field] = "Invalid activity type"
		case "difficulty":
			errs[field] = "Invalid difficulty"
		case "explanation_query":
			errs[field] = "Invalid explanation query"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gte":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "lte":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

func validateActivityType(fl validator.FieldLevel) bool {
	return domain.ValidActivityTypes[domain.ActivityType(fl.Field().String())]
}

func validateDifficulty(fl validator.FieldLevel) bool {
	return domain.ValidDifficulties[domain.Difficulty(fl.Field().String())]
}

func validateExplanationQuery(fl validator.FieldLevel) bool {
	return domain.ValidExplanationQueries[domain.ExplanationQuery(fl.Field().String())]
}
