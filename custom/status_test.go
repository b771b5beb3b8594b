package custom

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	entity "plmsync.GO/model/entity"
	"plmsync.GO/model/entity/plm"
)

func TestLoadStatus(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "status.db")), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Configuration{}, &plm.SourceItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	last := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := db.Create(&entity.Configuration{ItemPrefixFilter: "06-", AutoSyncEnabled: true, LastSyncTime: &last}).Error; err != nil {
		t.Fatalf("create configuration: %v", err)
	}
	if err := db.Create(&plm.SourceItem{GUID: "G1", ItemNumber: "06-001"}).Error; err != nil {
		t.Fatalf("create item: %v", err)
	}

	s, err := LoadStatus(context.Background(), db)
	if err != nil {
		t.Fatalf("LoadStatus: %v", err)
	}
	if !s.AutoSyncEnabled || s.ItemPrefixFilter != "06-" || s.HarvestedItems != 1 {
		t.Errorf("status = %+v", s)
	}
	if s.LastSyncTime == nil || !s.LastSyncTime.Equal(last) {
		t.Errorf("LastSyncTime = %v, want %v", s.LastSyncTime, last)
	}
}
