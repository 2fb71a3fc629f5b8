package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"

	// Query parameter error messages
	ErrMsgMissingQueryParam = "Missing %s query parameter"
	ErrMsgInvalidLimit      = "Invalid limit parameter"

	// Award error messages
	ErrMsgAwardFailed       = "Failed to award XP"
	ErrMsgDuplicateActivity = "Activity has already been awarded"
	ErrMsgGamingSuspected   = "Too many submissions in a short window. Slow down."

	// Query error messages
	ErrMsgGetXPFailed          = "Failed to retrieve XP"
	ErrMsgGetSummaryFailed     = "Failed to retrieve XP summary"
	ErrMsgGetLeaderboardFailed = "Failed to retrieve leaderboard"
	ErrMsgGetEventsFailed      = "Failed to retrieve events"

	// Transparency error messages
	ErrMsgGenerateReportFailed = "Failed to generate transparency report"
	ErrMsgReportNotFoundHTTP   = "Report not found"
	ErrMsgRecordNotFoundHTTP   = "No award found for that activity"
	ErrMsgUnknownQueryHTTP     = "Unknown explanation query"

	// Admin error messages
	ErrMsgSaveConfigFailed = "Failed to save weight configuration"
	ErrMsgSaveRuleFailed   = "Failed to save bonus rule"
)

// Success messages for API responses
const (
	MsgConfigSavedSuccess = "Weight configuration saved successfully"
	MsgRuleSavedSuccess   = "Bonus rule saved successfully"
)
