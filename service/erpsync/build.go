package erpsync

import (
	"gorm.io/gorm"

	"plmsync.GO/client/arena"
	"plmsync.GO/client/cin7"
	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	"plmsync.GO/core/retry"
	entity "plmsync.GO/model/entity"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/rules"
)

// Clients builds the vendor clients for cfg.
func Clients(cfg entity.Configuration, app *config.Config) (*arena.Client, *cin7.Client) {
	policy := retry.Policy{
		MaxAttempts:     app.RetryMaxAttempts,
		InitialInterval: app.RetryInitialInterval,
		MaxInterval:     10 * app.RetryInitialInterval,
	}
	src := arena.NewClient(cfg.ArenaWorkspaceID, cfg.ArenaEmail, cfg.ArenaPassword,
		arena.WithBaseURL(app.ArenaBaseURL),
		arena.WithTimeout(app.HTTPTimeout),
		arena.WithPageSize(app.ArenaPageSize),
		arena.WithRetry(policy),
	)
	dst := cin7.NewClient(cfg.Cin7APIUser, cfg.Cin7APIKey,
		cin7.WithBaseURL(app.Cin7BaseURL),
		cin7.WithTimeout(app.HTTPTimeout),
		cin7.WithRetry(policy),
	)
	return src, dst
}

// Build wires an engine for cfg using the process configuration in app.
func Build(db *gorm.DB, cfg entity.Configuration, app *config.Config) *Engine {
	src, dst := Clients(cfg, app)
	locker := lock.New(config.RedisClient)
	return New(db, src, dst,
		WithWorkers(app.SyncWorkers),
		WithRules(rules.NewProvider(db)),
		WithLocker(locker),
		WithSettings(settingsRepo.NewSettingsRepository(db, locker)),
	)
}
