package bootstrap

import (
	"context"
	"log/slog"

	"github.com/skillforge/xp-engine/internal/server"
	"github.com/skillforge/xp-engine/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server           *server.Server
	ReconcileWorker  *worker.IntervalWorker
	EventLogCleanup  *worker.IntervalWorker
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down components in the correct order:
// 1. HTTP server (stop accepting new requests)
// 2. Background workers (complete in-flight jobs)
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	// Shutdown server first (stop accepting new requests)
	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	// Shutdown workers to cancel pending timers
	if components.ReconcileWorker != nil {
		if err := components.ReconcileWorker.Shutdown(ctx); err != nil {
			slog.Error("Reconcile"+LogMsgWorkerShutdownFailed, "error", err)
		}
	}

	if components.EventLogCleanup != nil {
		if err := components.EventLogCleanup.Shutdown(ctx); err != nil {
			slog.Error("Event log cleanup"+LogMsgWorkerShutdownFailed, "error", err)
		}
	}

	slog.Info(LogMsgServerStopped)
}
