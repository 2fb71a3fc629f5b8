package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Validation errors
	ErrMsgValidation      = "invalid activity data"
	ErrMsgInvalidInput    = "invalid input"
	ErrMsgUnknownActivity = "unknown activity type"
	ErrMsgUnknownQuery    = "unknown explanation query"

	// Award errors
	ErrMsgDuplicateActivity = "activity already awarded"
	ErrMsgGamingSuspected   = "gaming suspected"

	// Configuration errors
	ErrMsgConfiguration = "invalid configuration"
	ErrMsgWeightSum     = "core weights must sum to 1.0"

	// Not-found errors (distinct from validation failure)
	ErrMsgRecordNotFound = "xp record not found"
	ErrMsgReportNotFound = "transparency report not found"
	ErrMsgUserNotFound   = "user not found"

	// Database/System errors
	ErrMsgDatabaseError = "database error"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Validation errors
	ErrValidation   = errors.New(ErrMsgValidation)
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)

	// Award errors
	ErrDuplicateActivity = errors.New(ErrMsgDuplicateActivity)
	ErrGamingSuspected   = errors.New(ErrMsgGamingSuspected)

	// Configuration errors
	ErrConfiguration = errors.New(ErrMsgConfiguration)

	// Not-found errors
	ErrRecordNotFound = errors.New(ErrMsgRecordNotFound)
	ErrReportNotFound = errors.New(ErrMsgReportNotFound)
	ErrUserNotFound   = errors.New(ErrMsgUserNotFound)

	// System errors
	ErrDatabaseError = errors.New(ErrMsgDatabaseError)
)
