package config

import (
	"sync"
	"time"
)

// AppConfig holds global process configuration read from the environment.
// Sync credentials and filters live in the configuration table, not here.
var AppConfig *Config
var once sync.Once

type Config struct {
	AppName  string
	Port     string
	Env      string
	Debug    bool
	DBDriver string

	SyncWorkers          int
	HTTPTimeout          time.Duration
	RetryMaxAttempts     int
	RetryInitialInterval time.Duration

	ArenaBaseURL  string
	ArenaPageSize int
	Cin7BaseURL   string

	AutoSyncSchedule   string
	ChangePollSchedule string
}

// LoadAppConfig initializes the global AppConfig variable
func LoadAppConfig() *Config {
	once.Do(func() {
		AppConfig = &Config{
			AppName:  GetEnv("APP_NAME", "plmsync"),
			Port:     GetEnv("PORT", "8080"),
			Env:      GetEnv("APP_ENV", "local"),
			Debug:    GetEnv("DEBUG", "") == "true",
			DBDriver: GetEnv("DB_DRIVER", "mysql"),

			SyncWorkers:          getEnvInt("SYNC_WORKERS", 10),
			HTTPTimeout:          getEnvDuration("HTTP_TIMEOUT", 30*time.Second),
			RetryMaxAttempts:     getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialInterval: getEnvDuration("RETRY_INITIAL_INTERVAL", 500*time.Millisecond),

			ArenaBaseURL:  GetEnv("ARENA_BASE_URL", "https://api.arena.com/v1"),
			ArenaPageSize: getEnvInt("ARENA_PAGE_SIZE", 400),
			Cin7BaseURL:   GetEnv("CIN7_BASE_URL", "https://api.cin7.com/api/v1"),

			AutoSyncSchedule:   GetEnv("AUTOSYNC_SCHEDULE", "@every 30m"),
			ChangePollSchedule: GetEnv("CHANGEPOLL_SCHEDULE", "@every 5m"),
		}
	})
	return AppConfig
}
