package domain

import "fmt"

// Validate checks every bounded numeric field. Any violation rejects the
// activity before scoring runs.
func (m PerformanceMetrics) Validate() error {
	bounded := map[string]float64{
		DimensionTechnicalAccuracy:    m.TechnicalAccuracy,
		DimensionCommunicationQuality: m.CommunicationQuality,
		DimensionCustomerSatisfaction: m.CustomerSatisfaction,
		DimensionProcessCompliance:    m.ProcessCompliance,
	}
	for name, v := range bounded {
		if v < 0 || v > 100 {
			return fmt.Errorf("%w: %s %.2f out of range [0,100]", ErrValidation, name, v)
		}
	}
	if m.ResolutionTime < 0 {
		return fmt.Errorf("%w: resolution_time %.2f must be >= 0", ErrValidation, m.ResolutionTime)
	}
	return nil
}

// Validate checks the activity enums and metrics
func (a ActivityData) Validate() error {
	if !ValidActivityTypes[a.Type] {
		return fmt.Errorf("%w: %s %q", ErrValidation, ErrMsgUnknownActivity, a.Type)
	}
	if !ValidDifficulties[a.ScenarioDifficulty] {
		return fmt.Errorf("%w: unknown difficulty %q", ErrValidation, a.ScenarioDifficulty)
	}
	return a.PerformanceMetrics.Validate()
}

// Validate checks the transaction identity fields and the activity payload
func (t XPTransaction) Validate() error {
	if t.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrValidation)
	}
	if t.ActivityID == "" {
		return fmt.Errorf("%w: activity_id is required", ErrValidation)
	}
	return t.ActivityData.Validate()
}
