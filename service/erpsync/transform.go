package erpsync

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"plmsync.GO/client/cin7"
	"plmsync.GO/core/syncerr"
	"plmsync.GO/model/entity/plm"
	"plmsync.GO/service/rules"
)

const (
	Affirmative            = "Yes"
	FallbackCategory       = "General"
	FallbackUOM            = "EA"
	FallbackCostingMethod  = "FIFO"
	AssemblyCostEstimation = "Average Cost"
	ProductStatus          = "Active"
	PriceTierCount         = 10
)

// ResolvedLine is a BOM component after resolution. ComponentID is empty
// when the component could not be resolved in the ERP.
type ResolvedLine struct {
	SKU         string
	Quantity    decimal.Decimal
	ComponentID cin7.ProductID
}

// PriceTiers returns the zeroed tier object the ERP requires on every product.
func PriceTiers() map[string]float64 {
	tiers := make(map[string]float64, PriceTierCount)
	for i := 1; i <= PriceTierCount; i++ {
		tiers[fmt.Sprintf("Tier %d", i)] = 0
	}
	return tiers
}

// Transform maps a local item and its resolved BOM onto the ERP payload.
func Transform(item plm.SourceItem, r rules.Resolver, bom []ResolvedLine) (cin7.Product, error) {
	sku := strings.TrimSpace(item.ItemNumber)
	if sku == "" {
		return cin7.Product{}, syncerr.MissingField("item "+item.GUID, "number")
	}

	// Account hints on the item win over rules.
	inventoryAccount := firstNonEmpty(item.InventoryAccount, r.Resolve(rules.KeyInventoryAccount, rules.DefaultInventoryAccount))
	cogsAccount := firstNonEmpty(item.COGSAccount, r.Resolve(rules.KeyCOGSAccount, rules.DefaultCOGSAccount))

	p := cin7.Product{
		SKU:                  sku,
		Name:                 firstNonEmpty(item.Name, sku),
		Category:             firstNonEmpty(item.Category, FallbackCategory),
		Description:          item.Description,
		UOM:                  firstNonEmpty(item.UnitOfMeasure, FallbackUOM),
		CostingMethod:        firstNonEmpty(item.CostingMethod, FallbackCostingMethod),
		Type:                 r.Resolve(rules.KeyProductType, rules.DefaultProductType),
		Status:               ProductStatus,
		DefaultLocation:      r.Resolve(rules.KeyDefaultLocation, rules.DefaultLocation),
		RevenueAccount:       r.Resolve(rules.KeyRevenueAccount, rules.DefaultRevenueAccount),
		InventoryAccount:     inventoryAccount,
		COGSAccount:          cogsAccount,
		Sellable:             strings.TrimSpace(item.Sellable) == Affirmative,
		PriceTiers:           PriceTiers(),
		AdditionalAttribute1: item.Revision,
		AdditionalAttribute4: strings.TrimSpace(item.Manufacturer + " " + item.ManufacturerPartNumber),
		InternalNote:         item.InternalNote,
	}

	if len(bom) == 0 {
		p.BillOfMaterial = false
		p.AutoAssembly = false
		return p, nil
	}
	p.BillOfMaterial = true
	p.AutoAssembly = true
	p.QuantityToProduce = 1
	p.AssemblyCostEstimationMethod = AssemblyCostEstimation
	p.BillOfMaterialsProducts = bomLines(bom)
	return p, nil
}

func bomLines(bom []ResolvedLine) []cin7.BOMLine {
	lines := make([]cin7.BOMLine, 0, len(bom))
	for _, l := range bom {
		line := cin7.BOMLine{Quantity: l.Quantity.InexactFloat64()}
		if l.ComponentID != "" {
			line.ComponentProductID = l.ComponentID
		} else {
			line.ProductCode = l.SKU
		}
		lines = append(lines, line)
	}
	return lines
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
