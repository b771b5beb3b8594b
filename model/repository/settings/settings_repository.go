package settings

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"plmsync.GO/core/lock"
	entity "plmsync.GO/model/entity"
)

const (
	lockKey = "lock:configuration"
	lockTTL = 30 * time.Second
)

// SettingsRepository owns the Configuration singleton. All writes go through
// the configuration lock so a single writer mutates the row at a time.
type SettingsRepository struct {
	db     *gorm.DB
	locker lock.Locker
}

func NewSettingsRepository(db *gorm.DB, locker lock.Locker) *SettingsRepository {
	if locker == nil {
		locker = lock.NewLocal()
	}
	return &SettingsRepository{db: db, locker: locker}
}

// Get returns the authoritative (lowest ID) row, creating a default one when the table is empty.
func (r *SettingsRepository) Get(ctx context.Context) (entity.Configuration, error) {
	cfg, err := r.first()
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Configuration{}, err
	}
	release, err := lock.Lock(ctx, r.locker, lockKey, lockTTL)
	if err != nil {
		return entity.Configuration{}, err
	}
	defer release()
	// Another writer may have created it while we waited.
	if cfg, err := r.first(); err == nil {
		return cfg, nil
	}
	cfg = entity.Configuration{ItemPrefixFilter: entity.PrefixWildcard}
	if err := r.db.Create(&cfg).Error; err != nil {
		return entity.Configuration{}, err
	}
	return cfg, nil
}

func (r *SettingsRepository) first() (entity.Configuration, error) {
	var cfg entity.Configuration
	err := r.db.Order("id ASC").First(&cfg).Error
	return cfg, err
}

// Save writes credentials and settings onto the authoritative row.
// Sync bookkeeping (last sync time, connectivity flags) is left untouched.
func (r *SettingsRepository) Save(ctx context.Context, in entity.Configuration) (entity.Configuration, error) {
	current, err := r.Get(ctx)
	if err != nil {
		return entity.Configuration{}, err
	}
	prefix := in.ItemPrefixFilter
	if prefix == "" {
		prefix = entity.PrefixWildcard
	}
	err = r.update(ctx, current.ID, map[string]interface{}{
		"arena_workspace_id": in.ArenaWorkspaceID,
		"arena_email":        in.ArenaEmail,
		"arena_password":     in.ArenaPassword,
		"cin7_api_user":      in.Cin7APIUser,
		"cin7_api_key":       in.Cin7APIKey,
		"item_prefix_filter": prefix,
		"auto_sync_enabled":  in.AutoSyncEnabled,
	})
	if err != nil {
		return entity.Configuration{}, err
	}
	return r.first()
}

func (r *SettingsRepository) SetAutoSync(ctx context.Context, enabled bool) error {
	cfg, err := r.Get(ctx)
	if err != nil {
		return err
	}
	return r.update(ctx, cfg.ID, map[string]interface{}{"auto_sync_enabled": enabled})
}

func (r *SettingsRepository) TouchLastSync(ctx context.Context, at time.Time) error {
	cfg, err := r.Get(ctx)
	if err != nil {
		return err
	}
	return r.update(ctx, cfg.ID, map[string]interface{}{"last_sync_time": at})
}

// SetConnectivity records the outcome of a connection test; nil leaves a flag unchanged.
func (r *SettingsRepository) SetConnectivity(ctx context.Context, arena, cin7 *bool) error {
	cfg, err := r.Get(ctx)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{}
	if arena != nil {
		updates["is_arena_connected"] = *arena
	}
	if cin7 != nil {
		updates["is_cin7_connected"] = *cin7
	}
	if len(updates) == 0 {
		return nil
	}
	return r.update(ctx, cfg.ID, updates)
}

func (r *SettingsRepository) update(ctx context.Context, id uint, updates map[string]interface{}) error {
	release, err := lock.Lock(ctx, r.locker, lockKey, lockTTL)
	if err != nil {
		return err
	}
	defer release()
	return r.db.Model(&entity.Configuration{}).Where("id = ?", id).Updates(updates).Error
}
