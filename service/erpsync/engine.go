// Package erpsync moves product master data from the PLM into the ERP:
// harvest into the local store, resolve BOM dependencies, transform and upsert.
package erpsync

import (
	"context"
	"time"

	"gorm.io/gorm"

	"plmsync.GO/client/arena"
	"plmsync.GO/client/cin7"
	"plmsync.GO/core/lock"
	"plmsync.GO/core/observability"
	itemRepo "plmsync.GO/model/repository/item"
	settingsRepo "plmsync.GO/model/repository/settings"
	"plmsync.GO/service/rules"
)

const DefaultWorkers = 10

var tracer = observability.Tracer("plmsync.GO/service/erpsync")

// Source is the PLM capability set the engine consumes.
type Source interface {
	Authenticate(ctx context.Context) error
	ListItems(ctx context.Context, prefix string) ([]arena.ItemSummary, error)
	GetItem(ctx context.Context, guid string) (*arena.Item, error)
	GetSourcing(ctx context.Context, guid string) ([]arena.Sourcing, error)
	GetBOM(ctx context.Context, guid string) ([]arena.BOMLine, error)
	FindItemByNumber(ctx context.Context, number string) (*arena.Item, error)
	GetChanges(ctx context.Context) ([]arena.Change, error)
	GetChangeItems(ctx context.Context, changeGUID string) ([]arena.BOMLine, error)
}

// Target is the ERP capability set the engine consumes. UpsertProduct must
// look the SKU up first so repeated calls update rather than duplicate.
type Target interface {
	FindBySKU(ctx context.Context, sku string) (*cin7.Product, error)
	UpsertProduct(ctx context.Context, p cin7.Product) (cin7.Result, error)
	UploadBOM(ctx context.Context, productID cin7.ProductID, lines []cin7.BOMLine) (cin7.Result, error)
}

type Engine struct {
	db       *gorm.DB
	items    *itemRepo.ItemRepository
	source   Source
	target   Target
	rules    rules.Resolver
	settings *settingsRepo.SettingsRepository
	locker   lock.Locker
	workers  int
	now      func() time.Time
}

type Option func(*Engine)

func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func WithRules(r rules.Resolver) Option {
	return func(e *Engine) { e.rules = r }
}

// WithSettings lets full syncs record their completion time.
func WithSettings(s *settingsRepo.SettingsRepository) Option {
	return func(e *Engine) { e.settings = s }
}

func WithLocker(l lock.Locker) Option {
	return func(e *Engine) { e.locker = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(db *gorm.DB, source Source, target Target, opts ...Option) *Engine {
	e := &Engine{
		db:      db,
		items:   itemRepo.NewItemRepository(db),
		source:  source,
		target:  target,
		workers: DefaultWorkers,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rules == nil {
		e.rules = rules.NewProvider(db)
	}
	if e.locker == nil {
		e.locker = lock.NewLocal()
	}
	return e
}

// assemblyBOMEnabled reports whether products should carry BOM data.
func (e *Engine) assemblyBOMEnabled() bool {
	return e.rules.Resolve(rules.KeyAssemblyBOM, rules.DefaultAssemblyBOM) == Affirmative
}
