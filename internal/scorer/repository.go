package scorer

import (
	"context"

	"github.com/skillforge/xp-engine/internal/domain"
)

// Repository defines the persistence interface for weight configurations.
// Configurations are read-mostly; writes go through ValidateConfiguration
// so a bad configuration is rejected at write time, never at calculation
// time.
type Repository interface {
	GetWeightConfigurations(ctx context.Context) ([]domain.WeightConfiguration, error)
	PutWeightConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error
}
