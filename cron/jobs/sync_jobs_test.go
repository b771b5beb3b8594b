package jobs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"plmsync.GO/config"
	"plmsync.GO/cron"
	entity "plmsync.GO/model/entity"
	"plmsync.GO/service/erpsync"
)

type stubRunner struct {
	full, polls int
	dryRun      bool
}

func (s *stubRunner) PerformFullSync(_ context.Context, _ entity.Configuration, dryRun bool) (*erpsync.FullSyncResult, error) {
	s.full++
	s.dryRun = dryRun
	return &erpsync.FullSyncResult{
		Phase:   erpsync.PhaseDone,
		Harvest: &erpsync.HarvestResult{Harvested: 1},
		Push:    &erpsync.SyncResult{Message: "Processed 1 items"},
	}, nil
}

func (s *stubRunner) PollChanges(_ context.Context, dryRun bool) (*erpsync.SyncResult, error) {
	s.polls++
	s.dryRun = dryRun
	return &erpsync.SyncResult{}, nil
}

func jobsDB(t *testing.T, cfg entity.Configuration) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "jobs.db")), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entity.Configuration{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := db.Create(&cfg).Error; err != nil {
		t.Fatalf("create configuration: %v", err)
	}
	return db
}

func withStub(t *testing.T) *stubRunner {
	t.Helper()
	stub := &stubRunner{}
	prev := newRunner
	newRunner = func(*gorm.DB, entity.Configuration) Runner { return stub }
	t.Cleanup(func() { newRunner = prev })
	return stub
}

var ready = entity.Configuration{
	ArenaWorkspaceID: "898", ArenaEmail: "eng@example.com", ArenaPassword: "pw",
	Cin7APIUser: "u", Cin7APIKey: "k", ItemPrefixFilter: "*", AutoSyncEnabled: true,
}

func TestAutoSync_SkipsWhenDisabled(t *testing.T) {
	stub := withStub(t)
	cfg := ready
	cfg.AutoSyncEnabled = false
	if err := AutoSync(context.Background(), jobsDB(t, cfg)); err != nil {
		t.Fatalf("AutoSync: %v", err)
	}
	if stub.full != 0 {
		t.Errorf("full syncs = %d, want 0", stub.full)
	}
}

func TestAutoSync_SkipsWithoutCredentials(t *testing.T) {
	stub := withStub(t)
	cfg := ready
	cfg.Cin7APIKey = ""
	if err := AutoSync(context.Background(), jobsDB(t, cfg)); err != nil {
		t.Fatalf("AutoSync: %v", err)
	}
	if stub.full != 0 {
		t.Errorf("full syncs = %d, want 0", stub.full)
	}
}

func TestAutoSync_RunsLive(t *testing.T) {
	stub := withStub(t)
	if err := AutoSync(context.Background(), jobsDB(t, ready)); err != nil {
		t.Fatalf("AutoSync: %v", err)
	}
	if stub.full != 1 || stub.dryRun {
		t.Errorf("full = %d dryRun = %v, want one live run", stub.full, stub.dryRun)
	}
}

func TestChangePoll_RunsLive(t *testing.T) {
	stub := withStub(t)
	if err := ChangePoll(context.Background(), jobsDB(t, ready)); err != nil {
		t.Fatalf("ChangePoll: %v", err)
	}
	if stub.polls != 1 || stub.dryRun {
		t.Errorf("polls = %d dryRun = %v, want one live run", stub.polls, stub.dryRun)
	}
}

func TestJobsRegistered(t *testing.T) {
	jobs := cron.Jobs()
	for _, name := range []string{AutoSyncJob, ChangePollJob} {
		if _, ok := jobs[name]; !ok {
			t.Errorf("job %s not registered", name)
		}
	}
	s := Schedules(&config.Config{AutoSyncSchedule: "@hourly", ChangePollSchedule: "@every 1m"})
	if s[AutoSyncJob] != "@hourly" || s[ChangePollJob] != "@every 1m" {
		t.Errorf("Schedules = %v", s)
	}
}
