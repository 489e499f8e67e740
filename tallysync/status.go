package tallysync

import (
	"bitbucket.org/mmdatafocus/tally_bridge/models"
	"github.com/shopspring/decimal"
)

// DeriveStockStatus maps a closing quantity onto the configured levels.
// First match wins; zero/negative quantity is always OutOfStock no matter
// what the thresholds say, and a quantity with no usable thresholds is
// simply InStock when positive.
func DeriveStockStatus(closingQty, reorderLevel, minLevel, maxLevel decimal.Decimal) models.StockStatus {
	switch {
	case closingQty.LessThanOrEqual(decimal.Zero):
		return models.StockStatusOutOfStock
	case maxLevel.IsPositive() && closingQty.GreaterThanOrEqual(maxLevel):
		return models.StockStatusOverstock
	case reorderLevel.IsPositive() && closingQty.LessThanOrEqual(reorderLevel):
		return models.StockStatusCriticalStock
	case minLevel.IsPositive() && closingQty.LessThanOrEqual(minLevel):
		return models.StockStatusLowStock
	case closingQty.IsPositive():
		return models.StockStatusInStock
	default:
		return models.StockStatusUnknown
	}
}
