package tallysync

import (
	"context"

	"bitbucket.org/mmdatafocus/tally_bridge/models"
)

// Store persists normalized records. The production implementation sits on
// the shared gorm handle; tests use an in-memory map.
type Store interface {
	Upsert(ctx context.Context, businessId string, rec models.SyncedRecord) (created bool, err error)
}

type dbStore struct{}

func NewStore() Store { return dbStore{} }

func (dbStore) Upsert(ctx context.Context, businessId string, rec models.SyncedRecord) (bool, error) {
	return models.UpsertSyncedRecord(ctx, businessId, rec)
}
