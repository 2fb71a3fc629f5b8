package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port     int
	LogLevel string
	LogDir   string
	APIKey   string // API key for authentication

	TrustedProxies []string // proxy IPs allowed to set X-Forwarded-For
	AllowedOrigins []string // CORS origins; empty disables CORS entirely

	StorageBackend string // "postgres" or "memory"

	DBUser     string
	DBPassword string
	DBHost     string
	DBPort     string
	DBName     string

	// Engine tunables
	GamingWindow     time.Duration // rolling window of the gaming guard
	GamingThreshold  int           // max accepted awards inside the window
	ConfigCacheTTL   time.Duration // weight/bonus configuration cache TTL
	ReportCacheSize  int           // transparency report LRU size
	ReportCacheTTL   time.Duration
	ReconcileEvery   time.Duration // leaderboard reconciliation interval
	EventRetention   int           // event log retention in days
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:   getEnv("LOG_LEVEL", "INFO"),
		LogDir:     getEnv("LOG_DIR", "logs"),
		APIKey:     getEnv("API_KEY", ""),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBName:     getEnv("DB_NAME", "xpengine"),

		StorageBackend: getEnv("STORAGE_BACKEND", StorageBackendPostgres),
	}

	if cfg.StorageBackend != StorageBackendPostgres && cfg.StorageBackend != StorageBackendMemory {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND value: %s", cfg.StorageBackend)
	}

	if proxies := getEnv("TRUSTED_PROXIES", ""); proxies != "" {
		for _, p := range strings.Split(proxies, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.TrustedProxies = append(cfg.TrustedProxies, p)
			}
		}
	}

	if origins := getEnv("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	port, err := getEnvInt("PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	cfg.Port = port

	windowSec, err := getEnvInt("GAMING_WINDOW_SECONDS", DefaultGamingWindowSeconds)
	if err != nil {
		return nil, err
	}
	cfg.GamingWindow = time.Duration(windowSec) * time.Second

	cfg.GamingThreshold, err = getEnvInt("GAMING_THRESHOLD", DefaultGamingThreshold)
	if err != nil {
		return nil, err
	}

	cacheTTLSec, err := getEnvInt("CONFIG_CACHE_TTL_SECONDS", DefaultConfigCacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	cfg.ConfigCacheTTL = time.Duration(cacheTTLSec) * time.Second

	cfg.ReportCacheSize, err = getEnvInt("REPORT_CACHE_SIZE", DefaultReportCacheSize)
	if err != nil {
		return nil, err
	}

	reportTTLSec, err := getEnvInt("REPORT_CACHE_TTL_SECONDS", DefaultReportCacheTTLSeconds)
	if err != nil {
		return nil, err
	}
	cfg.ReportCacheTTL = time.Duration(reportTTLSec) * time.Second

	reconcileSec, err := getEnvInt("RECONCILE_INTERVAL_SECONDS", DefaultReconcileSeconds)
	if err != nil {
		return nil, err
	}
	cfg.ReconcileEvery = time.Duration(reconcileSec) * time.Second

	cfg.EventRetention, err = getEnvInt("EVENT_RETENTION_DAYS", DefaultEventRetentionDays)
	if err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects unusable tunables at startup so a bad deployment fails
// fast instead of at award time
func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY environment variable must be set for security")
	}
	if c.GamingThreshold < 1 {
		return fmt.Errorf("GAMING_THRESHOLD must be at least 1, got %d", c.GamingThreshold)
	}
	if c.GamingWindow <= 0 {
		return fmt.Errorf("GAMING_WINDOW_SECONDS must be positive, got %s", c.GamingWindow)
	}
	if c.ReportCacheSize < 1 {
		return fmt.Errorf("REPORT_CACHE_SIZE must be at least 1, got %d", c.ReportCacheSize)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value: %w", key, err)
	}
	return v, nil
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
