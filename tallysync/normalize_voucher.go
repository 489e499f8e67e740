package tallysync

import (
	"github.com/shopspring/decimal"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// NormalizeVouchers converts a raw voucher export document into records.
// Vouchers frequently omit a top-level AMOUNT; when they do, the amount is
// the sum of the normalized ledger entry amounts.
func NormalizeVouchers(doc map[string]any) ([]*models.TallyVoucher, []NormalizeIssue) {
	spec := entitySpecs[EntityVoucher]
	var out []*models.TallyVoucher
	var issues []NormalizeIssue
	for _, raw := range collectionItems(doc, spec.itemKeys...) {
		item, ok := unwrapNode(raw).(map[string]any)
		if !ok {
			issues = append(issues, NormalizeIssue{EntityType: EntityVoucher, Reason: "item is not an object", Raw: raw})
			continue
		}
		base, issue := voucherBase(item)
		if issue != nil {
			issues = append(issues, *issue)
			continue
		}

		entries := voucherLedgerEntries(item)
		amount := itemNumber(item, "AMOUNT")
		if amount.IsZero() {
			sum := decimal.Zero
			for _, e := range entries {
				sum = sum.Add(e.Amount)
			}
			amount = sum
		}

		out = append(out, &models.TallyVoucher{
			SyncedBase:      base,
			Date:            itemText(item, "DATE"),
			VoucherNumber:   itemText(item, "VOUCHERNUMBER"),
			VoucherTypeName: itemText(item, "VOUCHERTYPENAME"),
			PartyLedgerName: itemText(item, "PARTYLEDGERNAME"),
			Narration:       itemText(item, "NARRATION"),
			Reference:       itemText(item, "REFERENCE"),
			Amount:          amount,
			IsCancelled:     itemBool(item, "ISCANCELLED"),
			IsOptional:      itemBool(item, "ISOPTIONAL"),
			LedgerEntries:   entries,
			CostCentres:     voucherCostCentres(item),
		})
	}
	return out, issues
}

// voucherBase differs from the master entities: a voucher rarely carries a
// NAME, so the display name falls back to its type and number. A voucher
// that yields no name either way is dropped, guid or not.
func voucherBase(item map[string]any) (models.SyncedBase, *NormalizeIssue) {
	guid := itemText(item, "GUID")
	name := itemText(item, "NAME")
	if name == "" {
		vtype := itemText(item, "VOUCHERTYPENAME")
		vnum := itemText(item, "VOUCHERNUMBER")
		if vtype != "" && vnum != "" {
			name = vtype + " " + vnum
		}
	}
	if name == "" {
		return models.SyncedBase{}, &NormalizeIssue{
			EntityType: EntityVoucher,
			Reason:     "voucher has no usable name",
			Raw:        item,
		}
	}
	key := ResolveIdentity(guid, name)
	return models.SyncedBase{
		IdentityKey: key.String(),
		Guid:        key.Guid,
		MasterId:    itemText(item, "MASTERID"),
		AlterId:     itemText(item, "ALTERID"),
		Name:        name,
		RawPayload:  item,
	}, nil
}

// voucherEntryList resolves the entry list under either spelling. The two
// are alternate serializations of the same list, so only the first
// non-empty one is used; reading both would double-count every entry.
func voucherEntryList(item map[string]any) []map[string]any {
	for _, key := range []string{"ALLLEDGERENTRIES.LIST", "LEDGERENTRIES.LIST"} {
		if els := itemList(item, key); len(els) > 0 {
			return els
		}
	}
	return nil
}

// voucherLedgerEntries maps the raw entry list. ISDEEMEDPOSITIVE is how
// Tally marks the debit side of an entry.
func voucherLedgerEntries(item map[string]any) []models.VoucherLedgerEntry {
	var out []models.VoucherLedgerEntry
	for _, el := range voucherEntryList(item) {
		out = append(out, models.VoucherLedgerEntry{
			LedgerName: itemText(el, "LEDGERNAME"),
			Amount:     itemNumber(el, "AMOUNT"),
			IsDebit:    itemBool(el, "ISDEEMEDPOSITIVE"),
		})
	}
	return out
}

// voucherCostCentres collects allocations across all ledger entries,
// tagging each with the owning ledger name.
func voucherCostCentres(item map[string]any) []models.CostCentreAllocation {
	var out []models.CostCentreAllocation
	for _, el := range voucherEntryList(item) {
		ledgerName := itemText(el, "LEDGERNAME")
		for _, alloc := range costCentreAllocations(el) {
			alloc.LedgerName = ledgerName
			out = append(out, alloc)
		}
	}
	return out
}
