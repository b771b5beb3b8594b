package erpsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"plmsync.GO/client/arena"
	"plmsync.GO/client/cin7"
	"plmsync.GO/core/syncerr"
	entity "plmsync.GO/model/entity"
	"plmsync.GO/model/entity/plm"
	"plmsync.GO/service/rules"
)

var testNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func guidOf(number string) string { return "G-" + number }

// fakeSource is an in-memory PLM workspace keyed by item number.
type fakeSource struct {
	mu          sync.Mutex
	items       map[string]*arena.Item
	order       []string
	boms        map[string][]arena.BOMLine
	sourcing    map[string][]arena.Sourcing
	changes     []arena.Change
	changeItems map[string][]arena.BOMLine
	authErr     error
	itemErr     map[string]error
	bomCalls    int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		items:       map[string]*arena.Item{},
		boms:        map[string][]arena.BOMLine{},
		sourcing:    map[string][]arena.Sourcing{},
		changeItems: map[string][]arena.BOMLine{},
		itemErr:     map[string]error{},
	}
}

// add registers an eligible item.
func (s *fakeSource) add(number string) *arena.Item {
	return s.addWith(number, "In Production", "Yes")
}

func (s *fakeSource) addWith(number, phase, transfer string) *arena.Item {
	it := &arena.Item{
		GUID:           guidOf(number),
		Number:         number,
		Name:           "Item " + number,
		RevisionNumber: "A",
		UOM:            "EA",
		Category:       arena.Named{Name: "Finished Goods"},
		LifecyclePhase: arena.Named{Name: phase},
		AdditionalAttributes: []arena.Attribute{
			{Name: AttrTransferToERP, Value: transfer},
			{Name: AttrSellable, Value: "Yes"},
		},
	}
	s.items[number] = it
	s.order = append(s.order, number)
	return it
}

// bom makes each child a component of parent with quantity 1.
func (s *fakeSource) bom(parent string, children ...string) {
	lines := make([]arena.BOMLine, 0, len(children))
	for i, c := range children {
		lines = append(lines, arena.BOMLine{
			Item:       arena.ItemRef{Number: c},
			Quantity:   decimal.NewFromInt(1),
			LineNumber: i + 1,
		})
	}
	s.boms[guidOf(parent)] = lines
}

func (s *fakeSource) Authenticate(context.Context) error { return s.authErr }

func (s *fakeSource) ListItems(_ context.Context, prefix string) ([]arena.ItemSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]arena.ItemSummary, 0, len(s.order))
	for _, n := range s.order {
		it, ok := s.items[n]
		if !ok || !strings.HasPrefix(it.Number, prefix) {
			continue
		}
		out = append(out, arena.ItemSummary{GUID: it.GUID, Number: it.Number})
	}
	return out, nil
}

func (s *fakeSource) GetItem(_ context.Context, guid string) (*arena.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.itemErr[guid]; err != nil {
		return nil, err
	}
	for _, it := range s.items {
		if it.GUID == guid {
			cp := *it
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("GET /items/%s: %w", guid, syncerr.ErrNotFound)
}

func (s *fakeSource) GetSourcing(_ context.Context, guid string) ([]arena.Sourcing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourcing[guid], nil
}

func (s *fakeSource) GetBOM(_ context.Context, guid string) ([]arena.BOMLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bomCalls++
	return s.boms[guid], nil
}

func (s *fakeSource) FindItemByNumber(_ context.Context, number string) (*arena.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[number]
	if !ok {
		return nil, fmt.Errorf("item number %s: %w", number, syncerr.ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (s *fakeSource) GetChanges(context.Context) ([]arena.Change, error) {
	return s.changes, nil
}

func (s *fakeSource) GetChangeItems(_ context.Context, guid string) ([]arena.BOMLine, error) {
	return s.changeItems[guid], nil
}

// fakeTarget is an in-memory ERP catalog with the same upsert contract as the real client.
type fakeTarget struct {
	mu       sync.Mutex
	products map[string]cin7.Product
	boms     map[cin7.ProductID][]cin7.BOMLine
	nextID   int
	upserts  []string
	lookups  int
	reject   map[string]string
	panicOn  string
	bomFail  bool
	authErr  error
	noID     bool

	bomUploads int
}

func newFakeTarget() *fakeTarget {
	return &fakeTarget{
		products: map[string]cin7.Product{},
		boms:     map[cin7.ProductID][]cin7.BOMLine{},
		nextID:   1000,
		reject:   map[string]string{},
	}
}

// seed adds an existing ERP product.
func (f *fakeTarget) seed(sku string) cin7.ProductID {
	f.nextID++
	id := cin7.ProductID(fmt.Sprint(f.nextID))
	f.products[sku] = cin7.Product{ID: id, SKU: sku, Name: sku}
	return id
}

func (f *fakeTarget) mutations() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.upserts) + f.bomUploads
}

func (f *fakeTarget) FindBySKU(_ context.Context, sku string) (*cin7.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	p, ok := f.products[sku]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeTarget) UpsertProduct(_ context.Context, p cin7.Product) (cin7.Result, error) {
	if p.SKU == f.panicOn {
		panic("unexpected payload")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts = append(f.upserts, p.SKU)
	if f.authErr != nil {
		return cin7.Result{}, f.authErr
	}
	if msg, ok := f.reject[p.SKU]; ok {
		return cin7.Result{Status: cin7.StatusError, Message: msg}, nil
	}
	if existing, ok := f.products[p.SKU]; ok {
		p.ID = existing.ID
	} else {
		f.nextID++
		p.ID = cin7.ProductID(fmt.Sprint(f.nextID))
	}
	f.products[p.SKU] = p
	if f.noID {
		return cin7.Result{Status: cin7.StatusSuccess}, nil
	}
	return cin7.Result{Status: cin7.StatusSuccess, Data: &p}, nil
}

func (f *fakeTarget) UploadBOM(_ context.Context, id cin7.ProductID, lines []cin7.BOMLine) (cin7.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bomUploads++
	if f.bomFail {
		return cin7.Result{Status: cin7.StatusError, Message: "component not stocked"}, nil
	}
	f.boms[id] = lines
	return cin7.Result{Status: cin7.StatusSuccess}, nil
}

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "engine.db")), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&plm.SourceItem{}, &entity.SyncRule{}, &entity.Configuration{}))
	return db
}

func newTestEngine(t *testing.T, src Source, dst Target, opts ...Option) (*Engine, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	base := []Option{WithRules(rules.Static{}), WithClock(func() time.Time { return testNow }), WithWorkers(4)}
	return New(db, src, dst, append(base, opts...)...), db
}

// localItem builds the stored form of a fakeSource item.
func localItem(t *testing.T, it *arena.Item) plm.SourceItem {
	t.Helper()
	rec, err := ToSourceItem(it, nil, testNow)
	require.NoError(t, err)
	return rec
}
