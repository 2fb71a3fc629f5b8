package config

// Storage backend selectors
const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"
)

// Default values for environment-driven settings
const (
	DefaultPort = 8080

	// Gaming guard: more than DefaultGamingThreshold accepted awards inside
	// the window rejects further submissions
	DefaultGamingWindowSeconds = 60
	DefaultGamingThreshold     = 5

	DefaultConfigCacheTTLSeconds = 60
	DefaultReportCacheSize       = 512
	DefaultReportCacheTTLSeconds = 300

	DefaultReconcileSeconds   = 300
	DefaultEventRetentionDays = 90
)
