package tallysync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

func wrapCollection(elementName string, items any) map[string]any {
	return map[string]any{
		"ENVELOPE": map[string]any{
			"BODY": map[string]any{
				"DATA": map[string]any{
					"COLLECTION": map[string]any{elementName: items},
				},
			},
		},
	}
}

func TestNormalizeLedgers(t *testing.T) {
	doc := wrapCollection("LEDGER", []any{
		map[string]any{
			"NAME":           "Sundry Debtors",
			"GUID":           "g-001",
			"PARENT":         "Current Assets",
			"OPENINGBALANCE": "1,500.00 Dr",
			"CLOSINGBALANCE": map[string]any{"#text": "2,500.00 Cr", "-TYPE": "Amount"},
			"ISBILLWISEON":   "Yes",
			"ISREVENUE":      "No",
			"COSTCENTREALLOCATIONS.LIST": []any{
				map[string]any{"NAME": "Head Office", "AMOUNT": "900.00"},
			},
			"CATEGORYALLOCATIONS.LIST": map[string]any{
				"CATEGORY": "Primary Cost Category",
				"COSTCENTREALLOCATIONS.LIST": map[string]any{
					"NAME": "Branch", "AMOUNT": "100.00",
				},
			},
		},
	})

	ledgers, issues := NormalizeLedgers(doc)
	require.Empty(t, issues)
	require.Len(t, ledgers, 1)

	l := ledgers[0]
	assert.Equal(t, "guid:g-001", l.IdentityKey)
	assert.Equal(t, "Current Assets", l.Parent)
	assert.Equal(t, "1500", l.OpeningBalance.String())
	assert.Equal(t, "-2500", l.ClosingBalance.String())
	assert.True(t, l.Flags.IsBillwiseOn)
	assert.False(t, l.Flags.IsRevenue)

	require.Len(t, l.CostCentres, 2)
	assert.Equal(t, "Head Office", l.CostCentres[0].CostCentre)
	assert.Equal(t, "", l.CostCentres[0].Category)
	assert.Equal(t, "Branch", l.CostCentres[1].CostCentre)
	assert.Equal(t, "Primary Cost Category", l.CostCentres[1].Category)
}

func TestNormalizeLedgers_MissingIdentityBecomesIssue(t *testing.T) {
	doc := wrapCollection("LEDGER", []any{
		map[string]any{"PARENT": "Current Assets"},
		map[string]any{"NAME": "Cash"},
	})

	ledgers, issues := NormalizeLedgers(doc)
	require.Len(t, ledgers, 1)
	require.Len(t, issues, 1)
	assert.Equal(t, "name:cash", ledgers[0].IdentityKey)
	assert.Equal(t, EntityLedger, issues[0].EntityType)
}

func TestNormalizeLedgers_GuidWithoutNameIsDropped(t *testing.T) {
	doc := wrapCollection("LEDGER", []any{
		map[string]any{"GUID": "g-noname", "PARENT": "Assets"},
	})

	ledgers, issues := NormalizeLedgers(doc)
	assert.Empty(t, ledgers)
	require.Len(t, issues, 1)
	assert.Equal(t, EntityLedger, issues[0].EntityType)
}

func TestNormalizeVouchers_GuidWithoutUsableNameIsDropped(t *testing.T) {
	doc := wrapCollection("VOUCHER", map[string]any{
		"GUID":   "v-noname",
		"AMOUNT": "100.00",
	})

	vouchers, issues := NormalizeVouchers(doc)
	assert.Empty(t, vouchers)
	require.Len(t, issues, 1)
	assert.Equal(t, EntityVoucher, issues[0].EntityType)
}

func TestNormalizeVouchers_AmountFallbackFromEntries(t *testing.T) {
	doc := wrapCollection("VOUCHER", map[string]any{
		"GUID":            "v-001",
		"DATE":            "20240401",
		"VOUCHERTYPENAME": "Sales",
		"VOUCHERNUMBER":   "17",
		"ALLLEDGERENTRIES.LIST": []any{
			map[string]any{"LEDGERNAME": "Customer A", "AMOUNT": "1,000.00", "ISDEEMEDPOSITIVE": "Yes"},
			map[string]any{"LEDGERNAME": "Sales", "AMOUNT": "500.00 Dr", "ISDEEMEDPOSITIVE": "No"},
		},
	})

	vouchers, issues := NormalizeVouchers(doc)
	require.Empty(t, issues)
	require.Len(t, vouchers, 1)

	v := vouchers[0]
	assert.Equal(t, "20240401", v.Date)
	assert.Equal(t, "1500", v.Amount.String())
	require.Len(t, v.LedgerEntries, 2)
	assert.True(t, v.LedgerEntries[0].IsDebit)
	assert.False(t, v.LedgerEntries[1].IsDebit)
}

func TestNormalizeVouchers_ExplicitAmountWins(t *testing.T) {
	doc := wrapCollection("VOUCHER", map[string]any{
		"GUID":            "v-002",
		"VOUCHERTYPENAME": "Receipt",
		"VOUCHERNUMBER":   "7",
		"AMOUNT":          "2,000.00",
		"ALLLEDGERENTRIES.LIST": []any{
			map[string]any{"LEDGERNAME": "X", "AMOUNT": "999.00"},
		},
	})

	vouchers, _ := NormalizeVouchers(doc)
	require.Len(t, vouchers, 1)
	assert.Equal(t, "2000", vouchers[0].Amount.String())
}

func TestNormalizeVouchers_NameFromTypeAndNumber(t *testing.T) {
	doc := wrapCollection("VOUCHER", map[string]any{
		"VOUCHERTYPENAME": "Payment",
		"VOUCHERNUMBER":   "42",
	})

	vouchers, issues := NormalizeVouchers(doc)
	require.Empty(t, issues)
	require.Len(t, vouchers, 1)
	assert.Equal(t, "Payment 42", vouchers[0].Name)
	assert.Equal(t, "name:payment 42", vouchers[0].IdentityKey)
}

func TestNormalizeVouchers_BothEntrySpellingsCountOnce(t *testing.T) {
	entries := []any{
		map[string]any{"LEDGERNAME": "Customer A", "AMOUNT": "1,000.00"},
		map[string]any{"LEDGERNAME": "Sales", "AMOUNT": "500.00"},
	}
	doc := wrapCollection("VOUCHER", map[string]any{
		"VOUCHERTYPENAME":       "Sales",
		"VOUCHERNUMBER":         "18",
		"ALLLEDGERENTRIES.LIST": entries,
		"LEDGERENTRIES.LIST":    entries,
	})

	vouchers, issues := NormalizeVouchers(doc)
	require.Empty(t, issues)
	require.Len(t, vouchers, 1)
	require.Len(t, vouchers[0].LedgerEntries, 2)
	assert.Equal(t, "1500", vouchers[0].Amount.String())
}

func TestItemNumber_AttributeSpelling(t *testing.T) {
	item := map[string]any{"-AMOUNT": "1,250.00 Cr"}
	assert.Equal(t, "-1250", itemNumber(item, "AMOUNT").String())
}

func TestNormalizeVouchers_CostCentresTaggedWithLedger(t *testing.T) {
	doc := wrapCollection("VOUCHER", map[string]any{
		"GUID":            "v-003",
		"VOUCHERTYPENAME": "Journal",
		"VOUCHERNUMBER":   "9",
		"ALLLEDGERENTRIES.LIST": map[string]any{
			"LEDGERNAME": "Rent Expense",
			"AMOUNT":     "800.00",
			"CATEGORYALLOCATIONS.LIST": map[string]any{
				"CATEGORY": "Departments",
				"COSTCENTREALLOCATIONS.LIST": []any{
					map[string]any{"NAME": "Sales Dept", "AMOUNT": "800.00"},
				},
			},
		},
	})

	vouchers, _ := NormalizeVouchers(doc)
	require.Len(t, vouchers, 1)
	require.Len(t, vouchers[0].CostCentres, 1)
	cc := vouchers[0].CostCentres[0]
	assert.Equal(t, "Sales Dept", cc.CostCentre)
	assert.Equal(t, "Departments", cc.Category)
	assert.Equal(t, "Rent Expense", cc.LedgerName)
}

func TestNormalizeStockItems_RateDerivedFromValue(t *testing.T) {
	doc := wrapCollection("STOCKITEM", map[string]any{
		"NAME":           "Widget",
		"GUID":           "s-001",
		"BASEUNITS":      "Nos",
		"CLOSINGBALANCE": "10",
		"CLOSINGVALUE":   "1,250.00",
		"REORDERLEVEL":   "20",
	})

	items, issues := NormalizeStockItems(doc)
	require.Empty(t, issues)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "125", it.ClosingRate.String())
	assert.Equal(t, models.StockStatusCriticalStock, it.StockStatus)
}

func TestNormalizeCompanies_BareStringPayload(t *testing.T) {
	doc := wrapCollection("COMPANY", []any{
		"Acme Traders",
		map[string]any{"NAME": "Beta Industries", "GUID": "c-002", "STATENAME": "Karnataka"},
	})

	companies, issues := NormalizeCompanies(doc)
	require.Empty(t, issues)
	require.Len(t, companies, 2)

	assert.Equal(t, "Acme Traders", companies[0].Name)
	assert.Equal(t, "name:acme traders", companies[0].IdentityKey)
	assert.Equal(t, "guid:c-002", companies[1].IdentityKey)
	assert.Equal(t, "Karnataka", companies[1].State)
}

func TestNormalizeGroups(t *testing.T) {
	doc := wrapCollection("GROUP", map[string]any{
		"NAME":             "Sundry Debtors",
		"GUID":             "grp-001",
		"PARENT":           "Current Assets",
		"ISREVENUE":        "No",
		"ISDEEMEDPOSITIVE": "Yes",
		"SORTPOSITION":     "40",
	})

	groups, issues := NormalizeGroups(doc)
	require.Empty(t, issues)
	require.Len(t, groups, 1)
	assert.Equal(t, "Current Assets", groups[0].Parent)
	assert.True(t, groups[0].IsDeemedPositive)
	assert.Equal(t, 40, groups[0].SortPosition)
}

func TestNormalizeCurrencies(t *testing.T) {
	doc := wrapCollection("CURRENCY", map[string]any{
		"NAME":           "INR",
		"GUID":           "cur-001",
		"MAILINGNAME":    "Indian Rupees",
		"DECIMALPLACES":  "2",
		"RATEOFEXCHANGE": "1.00",
		"ISSUFFIX":       "No",
	})

	currencies, issues := NormalizeCurrencies(doc)
	require.Empty(t, issues)
	require.Len(t, currencies, 1)
	assert.Equal(t, "Indian Rupees", currencies[0].FormalName)
	assert.Equal(t, 2, currencies[0].DecimalPlaces)
}
