package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDereferencePtr(t *testing.T) {
	v := 7
	assert.Equal(t, 7, DereferencePtr(&v))
	assert.Equal(t, 0, DereferencePtr[int](nil))
	assert.Equal(t, 9, DereferencePtr(nil, 9))
}

func TestNilIfEmpty(t *testing.T) {
	assert.Nil(t, NilIfEmpty(""))
	got := NilIfEmpty("x")
	require.NotNil(t, got)
	assert.Equal(t, "x", *got)
}

func TestUniqueSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, UniqueSlice([]string{"a", "b", "a", "c", "b"}))
	assert.Empty(t, UniqueSlice([]int{}))
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal("12.5")
	require.NoError(t, err)
	assert.Equal(t, "12.5", d.String())

	_, err = ParseDecimal("abc")
	assert.Error(t, err)
}
