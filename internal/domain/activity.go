package domain

import "time"

// ActivityType identifies the kind of user activity eligible for XP
type ActivityType string

const (
	ActivityTicketCompletion      ActivityType = "ticket_completion"
	ActivityVerification          ActivityType = "verification"
	ActivityDocumentation         ActivityType = "documentation"
	ActivityCustomerCommunication ActivityType = "customer_communication"
	ActivityLearningProgress      ActivityType = "learning_progress"
	ActivityKnowledgeSearch       ActivityType = "knowledge_search"
)

// ValidActivityTypes is the set of recognized activity types
var ValidActivityTypes = map[ActivityType]bool{
	ActivityTicketCompletion:      true,
	ActivityVerification:          true,
	ActivityDocumentation:         true,
	ActivityCustomerCommunication: true,
	ActivityLearningProgress:      true,
	ActivityKnowledgeSearch:       true,
}

// Difficulty identifies the scenario difficulty of an activity
type Difficulty string

const (
	DifficultyStarter      Difficulty = "starter"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// ValidDifficulties is the set of recognized difficulties
var ValidDifficulties = map[Difficulty]bool{
	DifficultyStarter:      true,
	DifficultyIntermediate: true,
	DifficultyAdvanced:     true,
}

// PerformanceMetrics holds the raw per-dimension measurements of one activity.
// Bounded fields are validated to [0,100] before any scoring occurs.
type PerformanceMetrics struct {
	TechnicalAccuracy    float64 `json:"technical_accuracy"`
	CommunicationQuality float64 `json:"communication_quality"`
	CustomerSatisfaction float64 `json:"customer_satisfaction"`
	ProcessCompliance    float64 `json:"process_compliance"`
	ResolutionTime       float64 `json:"resolution_time"` // minutes
	VerificationSuccess  bool    `json:"verification_success"`
	FirstTimeResolution  bool    `json:"first_time_resolution"`
	KnowledgeSharing     bool    `json:"knowledge_sharing"`
}

// ActivityData is the immutable input of one XP calculation
type ActivityData struct {
	Type               ActivityType           `json:"type"`
	ScenarioDifficulty Difficulty             `json:"scenario_difficulty"`
	PerformanceMetrics PerformanceMetrics     `json:"performance_metrics"`
	AdditionalContext  map[string]interface{} `json:"additional_context,omitempty"`
}

// XPTransaction is one award submission
type XPTransaction struct {
	UserID       string       `json:"user_id"`
	ActivityID   string       `json:"activity_id"`
	ActivityData ActivityData `json:"activity_data"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}

// ScoringContext carries the activity context the scorer resolves weight
// configurations against
type ScoringContext struct {
	ActivityType    ActivityType `json:"activity_type"`
	Difficulty      Difficulty   `json:"difficulty"`
	UserID          string       `json:"user_id"`
	CustomerType    string       `json:"customer_type,omitempty"`
	ActivitiesDone  int          `json:"activities_done"` // lifetime completed activities, drives the experience bonus
}
