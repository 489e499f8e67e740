package tallysync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// memoryStore keys rows by (business, identity key) the way the unique
// index does in mysql.
type memoryStore struct {
	rows   map[string]models.SyncedRecord
	nextID uint
}

func newMemoryStore() *memoryStore {
	return &memoryStore{rows: map[string]models.SyncedRecord{}, nextID: 1}
}

func (m *memoryStore) Upsert(_ context.Context, businessId string, rec models.SyncedRecord) (bool, error) {
	key := businessId + "|" + rec.EntityType() + "|" + rec.GetIdentityKey()
	if existing, ok := m.rows[key]; ok {
		rec.SetID(existing.GetID())
		m.rows[key] = rec
		return false, nil
	}
	rec.SetID(m.nextID)
	m.nextID++
	m.rows[key] = rec
	return true, nil
}

type stubFetcher struct {
	docs map[EntityType]map[string]any
	err  error
}

func (s stubFetcher) fetch(_ context.Context, entity EntityType, _ DateRange) (map[string]any, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.docs[entity], nil
}

func ledgerDoc(entries ...any) map[string]any {
	return wrapCollection("LEDGER", entries)
}

func TestSyncEntityType_CreatesThenUpdates(t *testing.T) {
	store := newMemoryStore()
	fetcher := stubFetcher{docs: map[EntityType]map[string]any{
		EntityLedger: ledgerDoc(
			map[string]any{"NAME": "Cash", "GUID": "g-1", "CLOSINGBALANCE": "12,500.75 Cr"},
			map[string]any{"NAME": "Bank", "GUID": "g-2"},
		),
	}}
	syncer := NewSyncer(fetcher, store, DateRange{}, nil)

	report, err := syncer.SyncEntityType(context.Background(), "biz-1", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Total: 2, Created: 2, Updated: 0, Errors: 0}, report)

	// A second run over the same data updates in place. Run counts reset;
	// nothing is created twice.
	report, err = syncer.SyncEntityType(context.Background(), "biz-1", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Total: 2, Created: 0, Updated: 2, Errors: 0}, report)

	stored := store.rows["biz-1|ledger|guid:g-1"]
	require.NotNil(t, stored)
	ledger, ok := stored.(*models.TallyLedger)
	require.True(t, ok)
	assert.Equal(t, "-12500.75", ledger.ClosingBalance.String())
}

func TestSyncEntityType_BusinessesAreIsolated(t *testing.T) {
	store := newMemoryStore()
	fetcher := stubFetcher{docs: map[EntityType]map[string]any{
		EntityLedger: ledgerDoc(map[string]any{"NAME": "Cash"}),
	}}
	syncer := NewSyncer(fetcher, store, DateRange{}, nil)

	report, err := syncer.SyncEntityType(context.Background(), "biz-1", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)

	report, err = syncer.SyncEntityType(context.Background(), "biz-2", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Created)
	assert.Len(t, store.rows, 2)
}

func TestSyncEntityType_BadRecordGoesToSinkNotAbort(t *testing.T) {
	store := newMemoryStore()
	fetcher := stubFetcher{docs: map[EntityType]map[string]any{
		EntityLedger: ledgerDoc(
			map[string]any{"PARENT": "orphan without identity"},
			map[string]any{"NAME": "Cash"},
		),
	}}

	var sinkCalls []string
	sink := func(entity EntityType, identityKey string, code string, message string, payload any, retryable bool) {
		sinkCalls = append(sinkCalls, code)
	}
	syncer := NewSyncer(fetcher, store, DateRange{}, sink)

	report, err := syncer.SyncEntityType(context.Background(), "biz-1", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Total: 2, Created: 1, Updated: 0, Errors: 1}, report)
	assert.Equal(t, []string{"invalid_record"}, sinkCalls)
}

func TestSyncEntityType_SmallBatchesCoverAllRecords(t *testing.T) {
	store := newMemoryStore()
	fetcher := stubFetcher{docs: map[EntityType]map[string]any{
		EntityLedger: ledgerDoc(
			map[string]any{"NAME": "A", "GUID": "g-a"},
			map[string]any{"NAME": "B", "GUID": "g-b"},
			map[string]any{"NAME": "C", "GUID": "g-c"},
		),
	}}
	syncer := NewSyncer(fetcher, store, DateRange{}, nil)
	syncer.batchSize = 2

	report, err := syncer.SyncEntityType(context.Background(), "biz-1", EntityLedger)
	require.NoError(t, err)
	assert.Equal(t, SyncReport{Total: 3, Created: 3, Updated: 0, Errors: 0}, report)
	assert.Len(t, store.rows, 3)
}

func TestSyncEntityType_FetchFailureIsFatalForFamily(t *testing.T) {
	syncer := NewSyncer(stubFetcher{err: &TransportError{Kind: TransportTimeout, Attempts: 4}}, newMemoryStore(), DateRange{}, nil)

	_, err := syncer.SyncEntityType(context.Background(), "biz-1", EntityVoucher)
	require.Error(t, err)
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	assert.True(t, terr.Retryable())
}

func TestSyncModules_NormalizeAndOrder(t *testing.T) {
	all := SyncModules{}.Normalize()
	assert.Equal(t, DefaultSyncModules(), all)

	order := all.EntityTypes()
	require.Len(t, order, 7)
	// Masters before vouchers.
	assert.Equal(t, EntityVoucher, order[len(order)-1])

	some := SyncModules{Vouchers: true}.Normalize()
	assert.Equal(t, []EntityType{EntityVoucher}, some.EntityTypes())
}

func TestDecodeModules(t *testing.T) {
	m, err := DecodeModules(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSyncModules(), m)

	m, err = DecodeModules([]byte(`{"ledgers":true}`))
	require.NoError(t, err)
	assert.True(t, m.Ledgers)
	assert.False(t, m.Vouchers)

	_, err = DecodeModules([]byte(`{broken`))
	require.Error(t, err)
}

func TestSyncReport_SuccessRate(t *testing.T) {
	assert.Equal(t, float64(100), SyncReport{}.SuccessRatePercent())
	assert.Equal(t, float64(75), SyncReport{Total: 4, Errors: 1}.SuccessRatePercent())
}
