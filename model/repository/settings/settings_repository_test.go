package settings

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "plmsync.GO/model/entity"
)

func settingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "settings.db")), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA busy_timeout=5000")
	if err := db.AutoMigrate(&entity.Configuration{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestGet_CreatesDefault(t *testing.T) {
	repo := NewSettingsRepository(settingsTestDB(t), nil)
	cfg, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.ID == 0 {
		t.Error("default row should be persisted")
	}
	if cfg.ItemPrefixFilter != entity.PrefixWildcard || cfg.Prefix() != "" {
		t.Errorf("prefix = %q, want wildcard", cfg.ItemPrefixFilter)
	}
}

func TestGet_LowestIDWins(t *testing.T) {
	db := settingsTestDB(t)
	db.Create(&entity.Configuration{ID: 5, ArenaEmail: "second@example.com"})
	db.Create(&entity.Configuration{ID: 2, ArenaEmail: "first@example.com"})
	repo := NewSettingsRepository(db, nil)
	cfg, err := repo.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if cfg.ArenaEmail != "first@example.com" {
		t.Errorf("ArenaEmail = %q, want first@example.com", cfg.ArenaEmail)
	}
}

func TestSave_KeepsBookkeeping(t *testing.T) {
	repo := NewSettingsRepository(settingsTestDB(t), nil)
	ctx := context.Background()
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	if err := repo.TouchLastSync(ctx, at); err != nil {
		t.Fatalf("TouchLastSync: %v", err)
	}
	saved, err := repo.Save(ctx, entity.Configuration{
		ArenaWorkspaceID: "898", ArenaEmail: "eng@example.com", Cin7APIUser: "u", Cin7APIKey: "k",
		ItemPrefixFilter: "06-",
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.Prefix() != "06-" || !saved.HasCin7Credentials() {
		t.Errorf("saved = %+v", saved)
	}
	if saved.LastSyncTime == nil || !saved.LastSyncTime.Equal(at) {
		t.Errorf("LastSyncTime = %v, want %v", saved.LastSyncTime, at)
	}
}

func TestSetConnectivityAndAutoSync(t *testing.T) {
	repo := NewSettingsRepository(settingsTestDB(t), nil)
	ctx := context.Background()
	yes, no := true, false
	if err := repo.SetConnectivity(ctx, &yes, &no); err != nil {
		t.Fatalf("SetConnectivity: %v", err)
	}
	if err := repo.SetAutoSync(ctx, true); err != nil {
		t.Fatalf("SetAutoSync: %v", err)
	}
	cfg, _ := repo.Get(ctx)
	if !cfg.IsArenaConnected || cfg.IsCin7Connected || !cfg.AutoSyncEnabled {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestConcurrentWriters(t *testing.T) {
	repo := NewSettingsRepository(settingsTestDB(t), nil)
	ctx := context.Background()
	if _, err := repo.Get(ctx); err != nil {
		t.Fatalf("Get: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(on bool) {
			defer wg.Done()
			if err := repo.SetAutoSync(ctx, on); err != nil {
				t.Errorf("SetAutoSync: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()
	var n int64
	repo.db.Model(&entity.Configuration{}).Count(&n)
	if n != 1 {
		t.Errorf("configuration rows = %d, want 1", n)
	}
}
