package tallysync

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// NormalizeStockItems converts a raw stock item export document into
// records, deriving the missing rate from value/quantity and classifying
// each item's stock status from its levels.
func NormalizeStockItems(doc map[string]any) ([]*models.TallyStockItem, []NormalizeIssue) {
	spec := entitySpecs[EntityStockItem]
	var out []*models.TallyStockItem
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityStockItem, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityStockItem, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}

		openingQty := itemNumber(item, "OPENINGBALANCE")
		openingValue := itemNumber(item, "OPENINGVALUE")
		closingQty := itemNumber(item, "CLOSINGBALANCE")
		closingValue := itemNumber(item, "CLOSINGVALUE")
		reorder := itemNumber(item, "REORDERLEVEL")
		minLevel := itemNumber(item, "MINIMUMLEVEL")
		maxLevel := itemNumber(item, "MAXIMUMLEVEL")

		out = append(out, &models.TallyStockItem{
			SyncedBase:       base,
			Parent:           itemText(item, "PARENT"),
			Category:         itemText(item, "CATEGORY"),
			BaseUnits:        itemText(item, "BASEUNITS"),
			OpeningQty:       openingQty,
			OpeningValue:     openingValue,
			OpeningRate:      rateOrDerive(itemNumber(item, "OPENINGRATE"), openingValue, openingQty),
			ClosingQty:       closingQty,
			ClosingValue:     closingValue,
			ClosingRate:      rateOrDerive(itemNumber(item, "CLOSINGRATE"), closingValue, closingQty),
			ReorderLevel:     reorder,
			MinimumLevel:     minLevel,
			MaximumLevel:     maxLevel,
			StockStatus:      DeriveStockStatus(closingQty, reorder, minLevel, maxLevel),
			Flags:            stockItemFlags(item),
			BatchAllocations: batchAllocations(item),
			GodownBalances:   godownBalances(item),
			StandardPrices:   priceDetails(item, "STANDARDPRICELIST.LIST"),
			StandardCosts:    priceDetails(item, "STANDARDCOSTLIST.LIST"),
			GSTDetails:       stockTaxDetails(item, "GSTDETAILS.LIST"),
			VATDetails:       stockTaxDetails(item, "VATDETAILS.LIST"),
		})
	}
	return out, issues
}

// rateOrDerive falls back to value/qty when the export omits the rate.
func rateOrDerive(rate, value, qty decimal.Decimal) decimal.Decimal {
	if !rate.IsZero() || qty.IsZero() {
		return rate
	}
	return value.DivRound(qty, 6)
}

func stockItemFlags(item map[string]any) models.StockItemFlags {
	return models.StockItemFlags{
		ForSale:                  itemBool(item, "FORSALE"),
		ForPurchase:              itemBool(item, "FORPURCHASE"),
		IsBatchWiseOn:            itemBool(item, "ISBATCHWISEON"),
		IsPerishableOn:           itemBool(item, "ISPERISHABLEON"),
		HasMfgDate:               itemBool(item, "HASMFGDATE"),
		AllowUseOfExpiredItems:   itemBool(item, "ALLOWUSEOFEXPIREDITEMS"),
		IgnoreBatches:            itemBool(item, "IGNOREBATCHES"),
		IgnoreGodowns:            itemBool(item, "IGNOREGODOWNS"),
		IsCostCentresOn:          itemBool(item, "ISCOSTCENTRESON"),
		IsEntryTaxApplicable:     itemBool(item, "ISENTRYTAXAPPLICABLE"),
		IsCostTrackingOn:         itemBool(item, "ISCOSTTRACKINGON"),
		IsUpdatingTargetId:       itemBool(item, "ISUPDATINGTARGETID"),
		IsSecurityOnWhenEntered:  itemBool(item, "ISSECURITYONWHENENTERED"),
		TreatSalesAsManufactured: itemBool(item, "TREATSALESASMANUFACTURED"),
		TreatPurchasesAsConsumed: itemBool(item, "TREATPURCHASESASCONSUMED"),
		TreatRejectsAsScrap:      itemBool(item, "TREATREJECTSASSCRAP"),
	}
}

func batchAllocations(item map[string]any) []models.BatchAllocation {
	var out []models.BatchAllocation
	for _, el := range itemList(item, "BATCHALLOCATIONS.LIST") {
		out = append(out, models.BatchAllocation{
			BatchName:  itemText(el, "BATCHNAME"),
			GodownName: itemText(el, "GODOWNNAME"),
			Quantity:   itemNumber(el, "OPENINGBALANCE"),
			Value:      itemNumber(el, "OPENINGVALUE"),
			MfgDate:    itemText(el, "MFDON"),
			ExpiryDate: itemText(el, "EXPIRYPERIOD"),
		})
	}
	return out
}

func godownBalances(item map[string]any) []models.GodownBalance {
	var out []models.GodownBalance
	for _, el := range itemList(item, "GODOWNBALANCE.LIST") {
		out = append(out, models.GodownBalance{
			GodownName: itemText(el, "GODOWNNAME"),
			Quantity:   itemNumber(el, "BALANCE"),
			Value:      itemNumber(el, "VALUE"),
		})
	}
	return out
}

func priceDetails(item map[string]any, key string) []models.PriceDetail {
	var out []models.PriceDetail
	for _, el := range itemList(item, key) {
		out = append(out, models.PriceDetail{
			PriceLevel: itemText(el, "PRICELEVEL"),
			Date:       itemText(el, "DATE"),
			Rate:       itemNumber(el, "RATE"),
		})
	}
	return out
}

func stockTaxDetails(item map[string]any, key string) []models.StockTaxDetail {
	var out []models.StockTaxDetail
	for _, el := range itemList(item, key) {
		out = append(out, models.StockTaxDetail{
			HSNCode:        itemText(el, "HSNCODE"),
			Taxability:     itemText(el, "TAXABILITY"),
			Rate:           itemNumber(el, "RATEOFTAX"),
			ApplicableFrom: itemText(el, "APPLICABLEFROM"),
		})
	}
	return out
}
