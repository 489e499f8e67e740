package tallysync

import (
	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// NormalizeLedgers converts a raw ledger export document into records.
func NormalizeLedgers(doc map[string]any) ([]*models.TallyLedger, []NormalizeIssue) {
	spec := entitySpecs[EntityLedger]
	var out []*models.TallyLedger
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityLedger, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityLedger, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		out = append(out, &models.TallyLedger{
			SyncedBase:      base,
			Parent:          itemText(item, "PARENT"),
			Currency:        itemText(item, "CURRENCYNAME"),
			OpeningBalance:  itemNumber(item, "OPENINGBALANCE"),
			ClosingBalance:  itemNumber(item, "CLOSINGBALANCE"),
			CreditPeriod:    itemText(item, "CREDITPERIOD"),
			CreditLimit:     itemNumber(item, "CREDITLIMIT"),
			Contact:         ledgerContact(item),
			BankDetails:     ledgerBankDetails(item),
			TaxRegistration: ledgerTaxRegistration(item),
			Flags:           ledgerFlags(item),
			BillAllocations: billAllocations(item),
			CostCentres:     costCentreAllocations(item),
			InterestDetails: interestDetails(item),
			ForexDetails:    forexDetails(item),
		})
	}
	return out, issues
}

func ledgerContact(item map[string]any) models.LedgerContact {
	return models.LedgerContact{
		AddressLines: addressLines(item),
		State:        itemText(item, "LEDSTATENAME"),
		Country:      itemText(item, "COUNTRYNAME"),
		Pincode:      itemText(item, "PINCODE"),
		Phone:        itemText(item, "LEDGERPHONE"),
		Mobile:       itemText(item, "LEDGERMOBILE"),
		Email:        itemText(item, "EMAIL"),
		ContactName:  itemText(item, "LEDGERCONTACT"),
	}
}

func ledgerBankDetails(item map[string]any) models.LedgerBankDetails {
	return models.LedgerBankDetails{
		AccountHolderName: itemText(item, "BANKACCHOLDERNAME"),
		AccountNumber:     itemText(item, "BANKDETAILS"),
		IFSCode:           itemText(item, "IFSCODE"),
		SwiftCode:         itemText(item, "SWIFTCODE"),
		BankName:          itemText(item, "BANKNAME"),
		BranchName:        itemText(item, "BANKBRANCHNAME"),
	}
}

func ledgerTaxRegistration(item map[string]any) models.LedgerTaxRegistration {
	return models.LedgerTaxRegistration{
		GSTIN:               itemText(item, "PARTYGSTIN"),
		GSTRegistrationType: itemText(item, "GSTREGISTRATIONTYPE"),
		GSTDutyHead:         itemText(item, "GSTDUTYHEAD"),
		VATTinNumber:        itemText(item, "VATTINNUMBER"),
		SalesTaxNumber:      itemText(item, "SALESTAXNUMBER"),
		IncomeTaxNumber:     itemText(item, "INCOMETAXNUMBER"),
		ServiceTaxNumber:    itemText(item, "SERVICETAXNUMBER"),
	}
}

func ledgerFlags(item map[string]any) models.LedgerFlags {
	return models.LedgerFlags{
		IsBillwiseOn:         itemBool(item, "ISBILLWISEON"),
		IsCostCentresOn:      itemBool(item, "ISCOSTCENTRESON"),
		IsInterestOn:         itemBool(item, "ISINTERESTON"),
		IsRevenue:            itemBool(item, "ISREVENUE"),
		IsDeemedPositive:     itemBool(item, "ISDEEMEDPOSITIVE"),
		AffectsStock:         itemBool(item, "AFFECTSSTOCK"),
		IsCondensed:          itemBool(item, "ISCONDENSED"),
		AllowInMobile:        itemBool(item, "ALLOWINMOBILE"),
		UseForVAT:            itemBool(item, "USEFORVAT"),
		IsGSTApplicable:      itemBool(item, "ISGSTAPPLICABLE"),
		IsTDSApplicable:      itemBool(item, "ISTDSAPPLICABLE"),
		IsTCSApplicable:      itemBool(item, "ISTCSAPPLICABLE"),
		IsServiceTaxApplic:   itemBool(item, "ISSERVICETAXAPPLICABLE"),
		IsExciseApplicable:   itemBool(item, "ISEXCISEAPPLICABLE"),
		ForPayroll:           itemBool(item, "FORPAYROLL"),
		IsABCEnabled:         itemBool(item, "ISABCENABLED"),
		InterestOnBillwise:   itemBool(item, "INTERESTONBILLWISE"),
		OverrideInterest:     itemBool(item, "OVERRIDEINTEREST"),
		OverrideAdvInterest:  itemBool(item, "OVERRIDEADVINTEREST"),
		UseForLoanAccount:    itemBool(item, "USEFORLOANACCOUNT"),
		IgnoreTDSExemptLimit: itemBool(item, "IGNORETDSEXEMPTLIMIT"),
		IsTDSExpense:         itemBool(item, "ISTDSEXPENSE"),
		IsECommerceSupplier:  itemBool(item, "ISECOMMERCESUPPLIER"),
		ShowInPayslip:        itemBool(item, "SHOWINPAYSLIP"),
		UseAsNotionalBank:    itemBool(item, "USEASNOTIONALBANK"),
	}
}

func billAllocations(item map[string]any) []models.BillAllocation {
	var out []models.BillAllocation
	for _, el := range itemList(item, "BILLALLOCATIONS.LIST") {
		out = append(out, models.BillAllocation{
			Name:     itemText(el, "NAME"),
			BillType: itemText(el, "BILLTYPE"),
			Amount:   itemNumber(el, "AMOUNT"),
		})
	}
	return out
}

// costCentreAllocations flattens both the direct COSTCENTREALLOCATIONS.LIST
// shape and the CATEGORYALLOCATIONS.LIST wrapper that nests the same
// entries one level deeper under a category.
func costCentreAllocations(item map[string]any) []models.CostCentreAllocation {
	var out []models.CostCentreAllocation
	for _, el := range itemList(item, "COSTCENTREALLOCATIONS.LIST") {
		out = append(out, models.CostCentreAllocation{
			CostCentre: itemText(el, "NAME"),
			Amount:     itemNumber(el, "AMOUNT"),
		})
	}
	for _, cat := range itemList(item, "CATEGORYALLOCATIONS.LIST") {
		category := itemText(cat, "CATEGORY")
		if category == "" {
			category = itemText(cat, "NAME")
		}
		for _, el := range itemList(cat, "COSTCENTREALLOCATIONS.LIST") {
			out = append(out, models.CostCentreAllocation{
				CostCentre: itemText(el, "NAME"),
				Amount:     itemNumber(el, "AMOUNT"),
				Category:   category,
			})
		}
	}
	return out
}

func interestDetails(item map[string]any) []models.InterestDetail {
	var out []models.InterestDetail
	for _, el := range itemList(item, "INTERESTCOLLECTION.LIST") {
		out = append(out, models.InterestDetail{
			Style:      itemText(el, "INTERESTSTYLE"),
			Rate:       itemNumber(el, "INTERESTRATE"),
			AppliedOn:  itemText(el, "INTERESTAPPLON"),
			FromEffect: itemText(el, "INTERESTFROMDATE"),
		})
	}
	return out
}

func forexDetails(item map[string]any) []models.ForexDetail {
	var out []models.ForexDetail
	for _, el := range itemList(item, "FOREXDETAILS.LIST") {
		out = append(out, models.ForexDetail{
			Currency:     itemText(el, "CURRENCY"),
			ForexAmount:  itemNumber(el, "FOREXAMOUNT"),
			ExchangeRate: itemNumber(el, "EXCHANGERATE"),
		})
	}
	return out
}
