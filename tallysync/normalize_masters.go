package tallysync

import (
	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// NormalizeGroups converts a raw group export document into records.
func NormalizeGroups(doc map[string]any) ([]*models.TallyGroup, []NormalizeIssue) {
	spec := entitySpecs[EntityGroup]
	var out []*models.TallyGroup
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityGroup, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityGroup, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		out = append(out, &models.TallyGroup{
			SyncedBase:         base,
			Parent:             itemText(item, "PARENT"),
			NatureOfGroup:      itemText(item, "NATUREOFGROUP"),
			IsRevenue:          itemBool(item, "ISREVENUE"),
			IsDeemedPositive:   itemBool(item, "ISDEEMEDPOSITIVE"),
			IsSubLedger:        itemBool(item, "ISSUBLEDGER"),
			AffectsGrossProfit: itemBool(item, "AFFECTSGROSSPROFIT"),
			SortPosition:       int(itemNumber(item, "SORTPOSITION").IntPart()),
		})
	}
	return out, issues
}

func NormalizeCostCentres(doc map[string]any) ([]*models.TallyCostCentre, []NormalizeIssue) {
	spec := entitySpecs[EntityCostCentre]
	var out []*models.TallyCostCentre
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityCostCentre, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityCostCentre, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		out = append(out, &models.TallyCostCentre{
			SyncedBase: base,
			Parent:     itemText(item, "PARENT"),
			Category:   itemText(item, "CATEGORY"),
			Email:      itemText(item, "EMAILID"),
		})
	}
	return out, issues
}

func NormalizeCurrencies(doc map[string]any) ([]*models.TallyCurrency, []NormalizeIssue) {
	spec := entitySpecs[EntityCurrency]
	var out []*models.TallyCurrency
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityCurrency, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityCurrency, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		symbol := itemText(item, "EXPANDEDSYMBOL")
		if symbol == "" {
			symbol = itemText(item, "ORIGINALSYMBOL")
		}
		out = append(out, &models.TallyCurrency{
			SyncedBase:    base,
			Symbol:        symbol,
			FormalName:    itemText(item, "MAILINGNAME"),
			DecimalPlaces: int(itemNumber(item, "DECIMALPLACES").IntPart()),
			ExchangeRate:  itemNumber(item, "RATEOFEXCHANGE"),
			IsSuffix:      itemBool(item, "ISSUFFIX"),
			HasSpace:      itemBool(item, "HASSPACE"),
			DecimalSymbol: itemText(item, "DECIMALSYMBOL"),
		})
	}
	return out, issues
}

// NormalizeCompanies handles the company list export. Older gateways render
// each company as a bare string rather than an object; those become records
// carrying only the name.
func NormalizeCompanies(doc map[string]any) ([]*models.TallyCompany, []NormalizeIssue) {
	spec := entitySpecs[EntityCompany]
	var out []*models.TallyCompany
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		node := unwrapNode(raw)
		if name, ok := node.(string); ok {
			name = NormalizeText(name)
			if name == "" {
				issues = append(issues, NormalizeIssue{EntityType: EntityCompany, Reason: "company has no name", Raw: raw})
				continue
			}
			rec := &models.TallyCompany{}
			rec.Name = name
			rec.IdentityKey = ResolveIdentity("", name).String()
			out = append(out, rec)
			continue
		}
		item, ok := node.(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityCompany, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := baseFromItem(EntityCompany, item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}
		out = append(out, &models.TallyCompany{
			SyncedBase:        base,
			FinancialYearFrom: itemText(item, "STARTINGFROM"),
			BooksFrom:         itemText(item, "BOOKSFROM"),
			AddressLines:      addressLines(item),
			State:             itemText(item, "STATENAME"),
			Pincode:           itemText(item, "PINCODE"),
			Email:             itemText(item, "EMAIL"),
			GSTIN:             itemText(item, "GSTREGISTRATIONNUMBER"),
			VATTinNumber:      itemText(item, "VATTINNUMBER"),
			IncomeTaxNumber:   itemText(item, "INCOMETAXNUMBER"),
		})
	}
	return out, issues
}

// baseFromItem extracts the shared identity columns. A record without a
// name cannot be stored, guid or not, and comes back as an issue.
func baseFromItem(entity EntityType, item map[string]any) (models.SyncedBase, *NormalizeIssue) {
	name := itemText(item, "NAME")
	if name == "" {
		return models.SyncedBase{}, &NormalizeIssue{
			EntityType: entity,
			Reason:     "record has no name",
			Raw:        item,
		}
	}
	key := itemIdentity(item)
	return models.SyncedBase{
		IdentityKey: key.String(),
		Guid:        key.Guid,
		MasterId:    itemText(item, "MASTERID"),
		AlterId:     itemText(item, "ALTERID"),
		Name:        name,
		RawPayload:  item,
	}, nil
}

// addressLines flattens ADDRESS.LIST entries, which arrive as repeated
// ADDRESS scalars.
func addressLines(item map[string]any) []string {
	var out []string
	for _, list := range itemList(item, "ADDRESS.LIST") {
		if v, ok := lookupKey(list, []string{"ADDRESS", "Address", "address"}); ok {
			for _, el := range CoerceToArray(v) {
				if s := NormalizeText(el); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	if len(out) == 0 {
		if v, ok := lookupKey(item, []string{"ADDRESS"}); ok {
			for _, el := range CoerceToArray(v) {
				if s := NormalizeText(el); s != "" {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
