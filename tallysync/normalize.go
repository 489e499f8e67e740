package tallysync

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeIssue records a raw item a normalizer had to skip or degrade.
// The orchestrator turns these into sync error rows instead of aborting
// the whole batch.
type NormalizeIssue struct {
	EntityType EntityType
	Reason     string
	Raw        any
}

// itemText reads a named scalar from a raw item, tolerating attribute
// spellings ("-NAME") and nested #text wrappers.
func itemText(item map[string]any, key string) string {
	if v, ok := lookupKey(item, []string{key, "-" + key}); ok {
		return NormalizeText(v)
	}
	return ""
}

func itemNumber(item map[string]any, key string) decimal.Decimal {
	if v, ok := lookupKey(item, []string{key, "-" + key}); ok {
		return NormalizeNumber(v)
	}
	return decimal.Zero
}

// itemBool treats Yes/True/1 as true, everything else as false, the way
// Tally renders logical fields.
func itemBool(item map[string]any, key string) bool {
	s := strings.ToLower(itemText(item, key))
	return s == "yes" || s == "true" || s == "1"
}

func itemIdentity(item map[string]any) IdentityKey {
	return ResolveIdentity(itemText(item, "GUID"), itemText(item, "NAME"))
}

// itemList returns the elements of a ".LIST" child as maps, skipping
// non-map noise such as stray whitespace text nodes.
func itemList(item map[string]any, key string) []map[string]any {
	v, ok := lookupKey(item, []string{key})
	if !ok {
		return nil
	}
	var out []map[string]any
	for _, el := range CoerceToArray(v) {
		if m, ok := unwrapNode(el).(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// collectionItems locates the collection in a parsed response document and
// returns the raw items under any of the given element spellings.
func collectionItems(doc map[string]any, keys ...string) []any {
	coll := LocateCollection(doc)
	if coll == nil {
		return nil
	}
	var out []any
	if v, ok := lookupKey(coll, keys); ok {
		out = append(out, CoerceToArray(v)...)
	}
	return out
}
