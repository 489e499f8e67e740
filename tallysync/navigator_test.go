package tallysync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateCollection_FullEnvelope(t *testing.T) {
	doc := map[string]any{
		"ENVELOPE": map[string]any{
			"BODY": map[string]any{
				"DATA": map[string]any{
					"COLLECTION": map[string]any{
						"LEDGER": []any{map[string]any{"NAME": "Cash"}},
					},
				},
			},
		},
	}
	coll := LocateCollection(doc)
	require.NotNil(t, coll)
	assert.Contains(t, coll, "LEDGER")
}

func TestLocateCollection_MixedCasing(t *testing.T) {
	doc := map[string]any{
		"Envelope": map[string]any{
			"Body": map[string]any{
				"Data": map[string]any{
					"Collection": map[string]any{"VOUCHER": map[string]any{}},
				},
			},
		},
	}
	require.NotNil(t, LocateCollection(doc))
}

func TestLocateCollection_MissingLevels(t *testing.T) {
	// Some responses skip ENVELOPE or DATA entirely.
	doc := map[string]any{
		"BODY": map[string]any{
			"COLLECTION": map[string]any{"GROUP": map[string]any{}},
		},
	}
	require.NotNil(t, LocateCollection(doc))
}

func TestLocateCollection_DataAsArray(t *testing.T) {
	doc := map[string]any{
		"ENVELOPE": map[string]any{
			"BODY": map[string]any{
				"DATA": []any{
					map[string]any{"DESC": map[string]any{}},
					map[string]any{"COLLECTION": map[string]any{"LEDGER": map[string]any{"NAME": "Bank"}}},
				},
			},
		},
	}
	coll := LocateCollection(doc)
	require.NotNil(t, coll)
	assert.Contains(t, coll, "LEDGER")
}

func TestLocateCollection_Absent(t *testing.T) {
	assert.Nil(t, LocateCollection(nil))
	assert.Nil(t, LocateCollection(map[string]any{"ENVELOPE": map[string]any{"BODY": map[string]any{}}}))
}

func TestCollectionItems_SingleObjectBecomesList(t *testing.T) {
	doc := map[string]any{
		"ENVELOPE": map[string]any{
			"BODY": map[string]any{
				"DATA": map[string]any{
					"COLLECTION": map[string]any{
						"LEDGER": map[string]any{"NAME": "Cash"},
					},
				},
			},
		},
	}
	items := collectionItems(doc, "LEDGER", "Ledger", "ledger")
	require.Len(t, items, 1)
}
