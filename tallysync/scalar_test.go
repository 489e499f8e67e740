package tallysync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNumber_AccountingNotation(t *testing.T) {
	cases := []struct {
		in       any
		expected string
	}{
		{"1,234.50", "1234.5"},
		{"1,234.50 Cr", "-1234.5"},
		{"1,234.50 Dr", "1234.5"},
		{"1,234.50Cr", "-1234.5"},
		{"500Dr", "500"},
		{"Cr 1,234.50", "-1234.5"},
		{"(500.00Cr)", "500"},
		{"2 Crores", "2"},
		{"(500.00)", "-500"},
		{"(500.00 Cr)", "500"},
		{"(500.00 Dr)", "-500"},
		{"-42.75", "-42.75"},
		{"1 234.50", "1234.5"},
		{"12,00,000", "1200000"},
		{"", "0"},
		{"   ", "0"},
		{"undefined", "0"},
		{"null", "0"},
		{nil, "0"},
		{float64(99.5), "99.5"},
		{42, "42"},
		{"not a number", "0"},
	}
	for _, tc := range cases {
		got := NormalizeNumber(tc.in)
		assert.Equal(t, tc.expected, got.String(), "input %v", tc.in)
	}
}

func TestNormalizeNumber_UnwrapsTextNode(t *testing.T) {
	node := map[string]any{"#text": "2,500.00 Cr", "-TYPE": "Amount"}
	assert.Equal(t, "-2500", NormalizeNumber(node).String())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "", NormalizeText(nil))
	assert.Equal(t, "Sundry Debtors", NormalizeText("  Sundry Debtors  "))
	assert.Equal(t, "Cash", NormalizeText(map[string]any{"#text": " Cash "}))
	assert.Equal(t, "Yes", NormalizeText(true))
	assert.Equal(t, "First", NormalizeText([]any{"First", "Second"}))
}

func TestCoerceToArray(t *testing.T) {
	require.Nil(t, CoerceToArray(nil))

	single := map[string]any{"NAME": "Cash"}
	got := CoerceToArray(single)
	require.Len(t, got, 1)
	assert.Equal(t, single, got[0])

	list := []any{"a", "b"}
	assert.Equal(t, list, CoerceToArray(list))
	// Idempotent: coercing a coerced value changes nothing.
	assert.Equal(t, list, CoerceToArray(CoerceToArray(list)))
}

func TestResolveIdentity(t *testing.T) {
	byGuid := ResolveIdentity("abc-123", "Cash")
	assert.True(t, byGuid.ByGuid())
	assert.Equal(t, "guid:abc-123", byGuid.String())

	byName := ResolveIdentity("  ", "Sundry Debtors")
	assert.False(t, byName.ByGuid())
	assert.Equal(t, "name:sundry debtors", byName.String())
}
