package worker

// Log messages - reconcile worker
const (
	LogMsgReconcileStarting  = "Leaderboard reconciliation starting"
	LogMsgReconcileCompleted = "Leaderboard reconciliation completed"
	LogMsgReconcileFailed    = "Leaderboard reconciliation failed"
	LogMsgTotalDriftFixed    = "Running total drift corrected"
)

// Log messages - shutdown
const (
	LogMsgWorkerShutdownComplete = "Worker shutdown complete"
	LogMsgWorkerShutdownTimeout  = "Worker shutdown timeout"
)
