package rules

// Rule keys consulted by the sync engine.
const (
	KeyTransferFilter    = "TransferFilter"
	KeyRevenueAccount    = "RevenueAccount"
	KeyInventoryAccount  = "InventoryAccount"
	KeyCOGSAccount       = "COGSAccount"
	KeyDefaultLocation   = "DefaultLocation"
	KeyProductType       = "ProductType"
	KeyAllowedLifecycles = "AllowedLifecycles"
	KeyAssemblyBOM       = "AssemblyBOM"
)

// Hard defaults used when a rule is absent or disabled.
const (
	DefaultTransferFilter    = "Yes"
	DefaultRevenueAccount    = "4001: OEM Product"
	DefaultInventoryAccount  = "1400: Inventory"
	DefaultCOGSAccount       = "5000: Cost of Goods Sold"
	DefaultLocation          = "Main Warehouse"
	DefaultProductType       = "Stock"
	DefaultAllowedLifecycles = "In Production, Production, Deprecated, Obsolete"
	DefaultAssemblyBOM       = "Yes"
)

// Definition is a rule shipped with the connector.
type Definition struct {
	Key   string
	Label string
	Value string
}

// Defaults is the seed set, in display order.
var Defaults = []Definition{
	{KeyTransferFilter, "Sync Filter (Transfer Data to ERP?)", DefaultTransferFilter},
	{KeyRevenueAccount, "Default Product Revenue Account", DefaultRevenueAccount},
	{KeyInventoryAccount, "Default Inventory Account", DefaultInventoryAccount},
	{KeyCOGSAccount, "Default COGS Account", DefaultCOGSAccount},
	{KeyDefaultLocation, "Default Product Location", DefaultLocation},
	{KeyProductType, "Default Product Type", DefaultProductType},
	{KeyAllowedLifecycles, "Arena Item Status Filter", DefaultAllowedLifecycles},
	{KeyAssemblyBOM, "Add BOMs to applicable NEW products", DefaultAssemblyBOM},
}
