package item

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plmsync.GO/model/entity/plm"
)

const upsertBatchSize = 200

// upsertColumns are overwritten when a GUID is harvested again; created_at is kept.
var upsertColumns = []string{
	"item_number", "name", "lifecycle_phase", "revision", "category", "description",
	"unit_of_measure", "costing_method", "inventory_account", "cogs_account", "sellable",
	"internal_note", "transfer_to_erp", "manufacturer", "manufacturer_part_number",
	"parent_guid", "attributes", "harvested_at", "updated_at",
}

type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *ItemRepository) WithTx(tx *gorm.DB) *ItemRepository {
	return &ItemRepository{db: tx}
}

// Upsert merges items by GUID.
func (r *ItemRepository) Upsert(items []plm.SourceItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guid"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).CreateInBatches(&items, upsertBatchSize).Error
}

// FindBySKU returns gorm.ErrRecordNotFound when no item carries the number.
func (r *ItemRepository) FindBySKU(sku string) (*plm.SourceItem, error) {
	var it plm.SourceItem
	if err := r.db.Where("item_number = ?", sku).Order("harvested_at DESC").First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ItemRepository) FindByGUID(guid string) (*plm.SourceItem, error) {
	var it plm.SourceItem
	if err := r.db.Where("guid = ?", guid).First(&it).Error; err != nil {
		return nil, err
	}
	return &it, nil
}

// ListByPrefix returns items whose number starts with prefix, all items when prefix is "".
func (r *ItemRepository) ListByPrefix(prefix string) ([]plm.SourceItem, error) {
	var items []plm.SourceItem
	q := r.db.Order("item_number ASC")
	if prefix != "" {
		q = q.Where("item_number LIKE ?", prefix+"%")
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *ItemRepository) Count() (int64, error) {
	var n int64
	err := r.db.Model(&plm.SourceItem{}).Count(&n).Error
	return n, err
}
