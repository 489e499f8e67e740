package reports

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"bitbucket.org/mmdatafocus/tally_bridge/utils"
)

type StockSummaryRow struct {
	StockStatus string          `json:"stockStatus"`
	ItemCount   int             `json:"itemCount"`
	TotalQty    decimal.Decimal `json:"totalQty"`
	TotalValue  decimal.Decimal `json:"totalValue"`
}

type LowStockRow struct {
	Name         string          `json:"name"`
	Parent       string          `json:"parent,omitempty"`
	BaseUnits    string          `json:"baseUnits,omitempty"`
	ClosingQty   decimal.Decimal `json:"closingQty"`
	ReorderLevel decimal.Decimal `json:"reorderLevel"`
	MinimumLevel decimal.Decimal `json:"minimumLevel"`
	StockStatus  string          `json:"stockStatus"`
}

// GetStockSummaryReport aggregates synced stock items by derived status.
func GetStockSummaryReport(ctx context.Context) ([]*StockSummaryRow, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}

	sql := `
SELECT
    stock_status,
    COUNT(*) AS item_count,
    COALESCE(SUM(closing_qty), 0) AS total_qty,
    COALESCE(SUM(closing_value), 0) AS total_value
FROM tally_stock_items
WHERE business_id = @businessId
GROUP BY stock_status
ORDER BY stock_status;
`

	var results []*StockSummaryRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId": businessId,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockReport lists items at or below their reorder or minimum level.
func GetLowStockReport(ctx context.Context, limit int) ([]*LowStockRow, error) {
	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, errors.New("business id is required")
	}
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	sql := `
SELECT
    name,
    parent,
    base_units,
    closing_qty,
    reorder_level,
    minimum_level,
    stock_status
FROM tally_stock_items
WHERE business_id = @businessId
  AND stock_status IN ('OutOfStock', 'CriticalStock', 'LowStock')
ORDER BY closing_qty ASC, name ASC
LIMIT @limit;
`

	var results []*LowStockRow
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"businessId": businessId,
		"limit":      limit,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
