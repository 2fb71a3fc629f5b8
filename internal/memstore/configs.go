package memstore

import (
	"context"
	"sync"

	"github.com/skillforge/xp-engine/internal/domain"
)

// ConfigStore holds weight configurations in memory
type ConfigStore struct {
	mu      sync.RWMutex
	configs map[string]domain.WeightConfiguration
}

// NewConfigStore creates an empty configuration store. The scorer falls
// back to the balanced configuration when no stored configuration matches,
// so an empty store is a valid starting state.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{configs: make(map[string]domain.WeightConfiguration)}
}

// GetWeightConfigurations returns every stored configuration
func (s *ConfigStore) GetWeightConfigurations(ctx context.Context) ([]domain.WeightConfiguration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WeightConfiguration, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg)
	}
	return out, nil
}

// PutWeightConfiguration inserts or replaces a configuration by ID
func (s *ConfigStore) PutWeightConfiguration(ctx context.Context, cfg domain.WeightConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.configs[cfg.ID] = cfg
	return nil
}
