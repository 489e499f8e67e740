package models

// Entity type labels shared by sync runs, error rows and record tables.
const (
	EntityTypeCompany    = "company"
	EntityTypeLedger     = "ledger"
	EntityTypeVoucher    = "voucher"
	EntityTypeStockItem  = "stock_item"
	EntityTypeGroup      = "group"
	EntityTypeCostCentre = "cost_centre"
	EntityTypeCurrency   = "currency"
)

// StockStatus summarizes a stock item's closing quantity relative to its
// configured levels. Derived at normalization time, never stored empty.
type StockStatus string

const (
	StockStatusOutOfStock    StockStatus = "OutOfStock"
	StockStatusCriticalStock StockStatus = "CriticalStock"
	StockStatusLowStock      StockStatus = "LowStock"
	StockStatusInStock       StockStatus = "InStock"
	StockStatusOverstock     StockStatus = "Overstock"
	StockStatusUnknown       StockStatus = "Unknown"
)
