package tallysync

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

func TestDeriveStockStatus(t *testing.T) {
	cases := []struct {
		name     string
		qty      string
		reorder  string
		min      string
		max      string
		expected models.StockStatus
	}{
		{"zero qty", "0", "10", "5", "100", models.StockStatusOutOfStock},
		{"negative qty", "-3", "10", "5", "100", models.StockStatusOutOfStock},
		{"zero qty beats overstock threshold", "0", "0", "0", "0", models.StockStatusOutOfStock},
		{"at max", "100", "10", "5", "100", models.StockStatusOverstock},
		{"above max", "150", "10", "5", "100", models.StockStatusOverstock},
		{"at reorder", "10", "10", "5", "100", models.StockStatusCriticalStock},
		{"below reorder", "7", "10", "5", "100", models.StockStatusCriticalStock},
		{"at min with no reorder", "5", "0", "5", "100", models.StockStatusLowStock},
		{"between min and max", "50", "10", "5", "100", models.StockStatusInStock},
		{"positive with no thresholds", "3", "0", "0", "0", models.StockStatusInStock},
		{"reorder wins over min", "4", "10", "5", "0", models.StockStatusCriticalStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DeriveStockStatus(d(tc.qty), d(tc.reorder), d(tc.min), d(tc.max))
			assert.Equal(t, tc.expected, got)
		})
	}
}
