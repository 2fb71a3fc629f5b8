package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/skillforge/xp-engine/internal/domain"
)

// ReportStore holds transparency reports in memory
type ReportStore struct {
	mu      sync.RWMutex
	reports map[string]*domain.TransparencyReport
}

// NewReportStore creates an empty report store
func NewReportStore() *ReportStore {
	return &ReportStore{reports: make(map[string]*domain.TransparencyReport)}
}

// PutReport stores a report by ID
func (s *ReportStore) PutReport(ctx context.Context, report *domain.TransparencyReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *report
	s.reports[report.ID] = &clone
	return nil
}

// GetReport returns a stored report by ID
func (s *ReportStore) GetReport(ctx context.Context, reportID string) (*domain.TransparencyReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.reports[reportID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrReportNotFound, reportID)
	}
	clone := *report
	return &clone, nil
}
