package plm

import (
	"time"

	"gorm.io/datatypes"
)

// SourceItem is a harvested PLM item, keyed by the source GUID.
// ItemNumber is the SKU used to join against the ERP catalog.
type SourceItem struct {
	GUID                   string            `gorm:"column:guid;type:varchar(64);primaryKey" json:"guid"`
	ItemNumber             string            `gorm:"column:item_number;type:varchar(64);not null;index" json:"item_number"`
	Name                   string            `gorm:"column:name;type:varchar(255)" json:"name"`
	LifecyclePhase         string            `gorm:"column:lifecycle_phase;type:varchar(64)" json:"lifecycle_phase"`
	Revision               string            `gorm:"column:revision;type:varchar(32)" json:"revision"`
	Category               string            `gorm:"column:category;type:varchar(255)" json:"category"`
	Description            string            `gorm:"column:description;type:text" json:"description"`
	UnitOfMeasure          string            `gorm:"column:unit_of_measure;type:varchar(32)" json:"unit_of_measure"`
	CostingMethod          string            `gorm:"column:costing_method;type:varchar(32)" json:"costing_method"`
	InventoryAccount       string            `gorm:"column:inventory_account;type:varchar(128)" json:"inventory_account"`
	COGSAccount            string            `gorm:"column:cogs_account;type:varchar(128)" json:"cogs_account"`
	Sellable               string            `gorm:"column:sellable;type:varchar(16)" json:"sellable"`
	InternalNote           string            `gorm:"column:internal_note;type:text" json:"internal_note"`
	TransferToERP          string            `gorm:"column:transfer_to_erp;type:varchar(16)" json:"transfer_to_erp"`
	Manufacturer           string            `gorm:"column:manufacturer;type:varchar(255)" json:"manufacturer"`
	ManufacturerPartNumber string            `gorm:"column:manufacturer_part_number;type:varchar(128)" json:"manufacturer_part_number"`
	ParentGUID             *string           `gorm:"column:parent_guid;type:varchar(64)" json:"parent_guid,omitempty"`
	Attributes             datatypes.JSONMap `gorm:"column:attributes" json:"attributes,omitempty"`
	HarvestedAt            time.Time         `gorm:"column:harvested_at" json:"harvested_at"`
	CreatedAt              time.Time         `gorm:"column:created_at" json:"created_at"`
	UpdatedAt              time.Time         `gorm:"column:updated_at" json:"updated_at"`
}

func (SourceItem) TableName() string {
	return "plm_source_item"
}
