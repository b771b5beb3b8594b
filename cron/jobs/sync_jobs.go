// Package jobs registers the scheduled sync passes.
package jobs

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"gorm.io/gorm"

	"plmsync.GO/config"
	"plmsync.GO/core/lock"
	"plmsync.GO/cron"
	entity "plmsync.GO/model/entity"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/erpsync"
)

const (
	AutoSyncJob   = "erp_autosync"
	ChangePollJob = "erp_changepoll"

	runTimeout = time.Hour
)

// Runner is the part of erpsync.Engine the jobs drive.
type Runner interface {
	PerformFullSync(ctx context.Context, cfg entity.Configuration, dryRun bool) (*erpsync.FullSyncResult, error)
	PollChanges(ctx context.Context, dryRun bool) (*erpsync.SyncResult, error)
}

var newRunner = func(db *gorm.DB, cfg entity.Configuration) Runner {
	return erpsync.Build(db, cfg, config.LoadAppConfig())
}

var (
	mu    sync.Mutex
	bound *gorm.DB
)

// Bind sets the database the jobs use. Without it the first run opens one.
func Bind(db *gorm.DB) {
	mu.Lock()
	defer mu.Unlock()
	bound = db
}

func database() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()
	if bound != nil {
		return bound, nil
	}
	db, err := config.NewDB()
	if err != nil {
		return nil, err
	}
	bound = db
	return db, nil
}

// Schedules returns the job specs configured for this process.
func Schedules(app *config.Config) map[string]string {
	return map[string]string{
		AutoSyncJob:   app.AutoSyncSchedule,
		ChangePollJob: app.ChangePollSchedule,
	}
}

func init() {
	cron.Register(AutoSyncJob, "@every 30m", func(...string) { run(AutoSyncJob, AutoSync) })
	cron.Register(ChangePollJob, "@every 5m", func(...string) { run(ChangePollJob, ChangePoll) })
}

func run(name string, fn func(context.Context, *gorm.DB) error) {
	db, err := database()
	if err != nil {
		log.Printf("[cron] %s: database unavailable: %v", name, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if err := fn(ctx, db); err != nil {
		log.Printf("[cron] %s failed: %v", name, err)
	}
}

// loadEnabled returns the configuration when scheduled syncs may run.
func loadEnabled(ctx context.Context, db *gorm.DB, job string) (entity.Configuration, bool, error) {
	cfg, err := settingsRepo.NewSettingsRepository(db, lock.New(config.RedisClient)).Get(ctx)
	if err != nil {
		return cfg, false, err
	}
	if !cfg.AutoSyncEnabled {
		log.Printf("[cron] %s: auto sync disabled, skipping", job)
		return cfg, false, nil
	}
	if !cfg.HasArenaCredentials() || !cfg.HasCin7Credentials() {
		log.Printf("[cron] %s: credentials incomplete, skipping", job)
		return cfg, false, nil
	}
	return cfg, true, nil
}

// AutoSync runs a live full sync when auto sync is enabled.
func AutoSync(ctx context.Context, db *gorm.DB) error {
	cfg, ok, err := loadEnabled(ctx, db, AutoSyncJob)
	if err != nil || !ok {
		return err
	}
	res, err := newRunner(db, cfg).PerformFullSync(ctx, cfg, false)
	if errors.Is(err, erpsync.ErrSyncInProgress) {
		log.Printf("[cron] %s: previous sync still running", AutoSyncJob)
		return nil
	}
	if err != nil {
		return err
	}
	log.Printf("[cron] %s: harvested %d, %s", AutoSyncJob, res.Harvest.Harvested, res.Push.Message)
	return nil
}

// ChangePoll syncs items of completed changes when auto sync is enabled.
func ChangePoll(ctx context.Context, db *gorm.DB) error {
	cfg, ok, err := loadEnabled(ctx, db, ChangePollJob)
	if err != nil || !ok {
		return err
	}
	res, err := newRunner(db, cfg).PollChanges(ctx, false)
	if err != nil {
		return err
	}
	log.Printf("[cron] %s: %d changes, %s", ChangePollJob, res.Changes, res.Message)
	return nil
}
