package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillforge/xp-engine/internal/bonus"
	"github.com/skillforge/xp-engine/internal/database/postgres"
	"github.com/skillforge/xp-engine/internal/eventlog"
	"github.com/skillforge/xp-engine/internal/ledger"
	"github.com/skillforge/xp-engine/internal/memstore"
	"github.com/skillforge/xp-engine/internal/scorer"
	"github.com/skillforge/xp-engine/internal/transparency"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	WeightConfig scorer.Repository
	Bonus        bonus.Repository
	Ledger       ledger.Repository
	Reports      transparency.Repository
	EventLog     eventlog.Repository
}

// InitializeRepositories creates all repository implementations backed by Postgres.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		WeightConfig: postgres.NewWeightConfigRepository(dbPool),
		Bonus:        postgres.NewBonusRepository(dbPool),
		Ledger:       postgres.NewLedgerRepository(dbPool),
		Reports:      postgres.NewReportRepository(dbPool),
		EventLog:     postgres.NewEventLogRepository(dbPool),
	}
}

// InitializeMemoryRepositories creates in-memory repository implementations.
// Used when no database is configured, mainly for local development and tests.
func InitializeMemoryRepositories() *Repositories {
	return &Repositories{
		WeightConfig: memstore.NewConfigStore(),
		Bonus:        memstore.NewBonusStore(),
		Ledger:       memstore.NewLedgerStore(),
		Reports:      memstore.NewReportStore(),
		EventLog:     memstore.NewEventLogStore(),
	}
}
