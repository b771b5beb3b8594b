package erpsync

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"plmsync.GO/client/arena"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
)

// Custom attribute names as they appear on PLM items.
const (
	AttrTransferToERP    = "Transfer Data to ERP?"
	AttrCostingMethod    = "Costing Method"
	AttrInventoryAccount = "Inventory Account"
	AttrCOGSAccount      = "COGS Account"
	AttrSellable         = "Sellable"
	AttrInternalNote     = "Internal Note"
)

// ItemAttributes is the typed projection of the custom attributes the sync reads.
type ItemAttributes struct {
	TransferToERP    string `json:"transfer_to_erp"`
	CostingMethod    string `json:"costing_method"`
	InventoryAccount string `json:"inventory_account"`
	COGSAccount      string `json:"cogs_account"`
	Sellable         string `json:"sellable"`
	InternalNote     string `json:"internal_note"`
}

var attributeFields = map[string]func(*ItemAttributes) *string{
	AttrTransferToERP:    func(a *ItemAttributes) *string { return &a.TransferToERP },
	AttrCostingMethod:    func(a *ItemAttributes) *string { return &a.CostingMethod },
	AttrInventoryAccount: func(a *ItemAttributes) *string { return &a.InventoryAccount },
	AttrCOGSAccount:      func(a *ItemAttributes) *string { return &a.COGSAccount },
	AttrSellable:         func(a *ItemAttributes) *string { return &a.Sellable },
	AttrInternalNote:     func(a *ItemAttributes) *string { return &a.InternalNote },
}

// MapAttributes flattens {name, value} pairs. A repeated name keeps the last value.
func MapAttributes(attrs []arena.Attribute) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name] = a.Value
	}
	return out
}

// ExtractAttributes reads the known attributes out of a flat mapping.
func ExtractAttributes(m map[string]string) ItemAttributes {
	var a ItemAttributes
	for name, field := range attributeFields {
		if v, ok := m[name]; ok {
			*field(&a) = strings.TrimSpace(v)
		}
	}
	return a
}

// ToSourceItem builds the local record for a PLM item. Manufacturer data
// comes from the first sourcing entry, when there is one.
func ToSourceItem(it *arena.Item, sourcing []arena.Sourcing, now time.Time) (plm.SourceItem, error) {
	if it == nil {
		return plm.SourceItem{}, syncerr.MissingField("item", "record")
	}
	if strings.TrimSpace(it.GUID) == "" {
		return plm.SourceItem{}, syncerr.MissingField("item", "guid")
	}
	if strings.TrimSpace(it.Number) == "" {
		return plm.SourceItem{}, syncerr.MissingField("item "+it.GUID, "number")
	}
	raw := MapAttributes(it.AdditionalAttributes)
	attrs := ExtractAttributes(raw)

	rec := plm.SourceItem{
		GUID:             it.GUID,
		ItemNumber:       strings.TrimSpace(it.Number),
		Name:             it.Name,
		LifecyclePhase:   it.LifecyclePhase.Name,
		Revision:         it.RevisionNumber,
		Category:         it.Category.Name,
		Description:      it.Description,
		UnitOfMeasure:    it.UOM,
		CostingMethod:    attrs.CostingMethod,
		InventoryAccount: attrs.InventoryAccount,
		COGSAccount:      attrs.COGSAccount,
		Sellable:         attrs.Sellable,
		InternalNote:     attrs.InternalNote,
		TransferToERP:    attrs.TransferToERP,
		HarvestedAt:      now,
	}
	if len(raw) > 0 {
		rec.Attributes = make(datatypes.JSONMap, len(raw))
		for k, v := range raw {
			rec.Attributes[k] = v
		}
	}
	if len(sourcing) > 0 {
		rec.Manufacturer = sourcing[0].ManufacturerItem.Supplier.Name
		rec.ManufacturerPartNumber = sourcing[0].ManufacturerItem.Number
	}
	return rec, nil
}
