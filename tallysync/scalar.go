package tallysync

import (
	"fmt"
	"regexp"
	"strings"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"github.com/shopspring/decimal"
)

// Tally scalar values arrive in several physical shapes: plain strings,
// numbers, or attributed text nodes (a map carrying the value under "#text"
// next to TYPE attributes). Amounts additionally use accounting notation:
// thousands separators, trailing/leading Dr/Cr tokens, and parenthesized
// negatives. The helpers below are total functions; nothing here ever fails
// a batch.

var (
	// The token may sit flush against the digits ("1,234.50Cr"), so a word
	// boundary on the digit side is not enough; only the outer side must be
	// a non-letter to keep words like "Credit" intact.
	reSignToken = regexp.MustCompile(`(?i)(^|[^a-z])(cr|dr)([^a-z]|$)`)
	reNumJunk   = regexp.MustCompile(`[^0-9.]`)
)

// unwrapNode peels the attributed-text-node shape ({"#text": value, ...})
// and single-element arrays down to the scalar payload.
func unwrapNode(value any) any {
	for i := 0; i < 4; i++ {
		switch v := value.(type) {
		case map[string]any:
			inner, ok := v["#text"]
			if !ok {
				return v
			}
			value = inner
		case []any:
			if len(v) == 0 {
				return nil
			}
			value = v[0]
		default:
			return value
		}
	}
	return value
}

// NormalizeText unwraps, stringifies and trims. nil yields "".
func NormalizeText(value any) string {
	value = unwrapNode(value)
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return strings.TrimSpace(decimal.NewFromFloat(v).String())
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// NormalizeNumber recovers a finite numeric value from Tally's accounting
// notation. Sign tokens compose multiplicatively: "(500 Cr)" is two
// negations and therefore positive 500. Unparsable input logs a warning and
// normalizes to zero.
func NormalizeNumber(value any) decimal.Decimal {
	value = unwrapNode(value)

	switch v := value.(type) {
	case nil:
		return decimal.Zero
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case decimal.Decimal:
		return v
	}

	s := strings.TrimSpace(fmt.Sprint(value))
	if s == "" || strings.EqualFold(s, "undefined") || strings.EqualFold(s, "null") {
		return decimal.Zero
	}

	negative := false

	// Dr keeps the sign, Cr flips it. Resolve before any character-class
	// stripping or the sign information is lost.
	if m := reSignToken.FindStringSubmatch(s); m != nil {
		if strings.EqualFold(m[2], "cr") {
			negative = !negative
		}
		s = strings.TrimSpace(reSignToken.ReplaceAllString(s, "$1$3"))
	}

	// Thousands separators: commas and interior whitespace.
	s = strings.ReplaceAll(s, ",", "")
	s = strings.Join(strings.Fields(s), "")

	// Parenthesized value is another negation.
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") && len(s) > 1 {
		negative = !negative
		s = s[1 : len(s)-1]
	}

	// Only a leading minus is meaningful; everything else that is not a
	// digit or a dot is noise (unit suffixes, currency symbols).
	leadingMinus := strings.HasPrefix(s, "-")
	s = reNumJunk.ReplaceAllString(s, "")
	if leadingMinus {
		s = "-" + s
	}

	if s == "" || s == "-" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		config.LogWarn(config.GetLogger(), "tallysync", "NormalizeNumber", "unparsable numeric value, defaulting to 0", value)
		return decimal.Zero
	}
	if negative {
		d = d.Neg()
	}
	return d
}

// CoerceToArray absorbs the protocol's collapse of single-member lists to a
// bare object. It is idempotent and shape-agnostic; every list-typed field
// must pass through here before iteration.
func CoerceToArray(node any) []any {
	switch v := node.(type) {
	case nil:
		return nil
	case []any:
		return v
	default:
		return []any{node}
	}
}
