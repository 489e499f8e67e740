package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlErrDuplicateEntry = 1062

// FindSyncedID returns the primary key of the record matching the identity
// key, or 0 when none exists.
func FindSyncedID(ctx context.Context, rec SyncedRecord, businessId string) (uint, error) {
	db := config.GetDB()
	if db == nil {
		return 0, errors.New("db is nil")
	}
	var ids []uint
	err := db.WithContext(ctx).
		Model(rec).
		Where("business_id = ? AND identity_key = ?", businessId, rec.GetIdentityKey()).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// UpsertSyncedRecord inserts the record or updates the existing row with the
// same (business, identity key). The composite unique index makes the insert
// race-safe: a concurrent insert surfaces as a duplicate-key error and is
// retried as an update. Returns whether a new row was created.
func UpsertSyncedRecord(ctx context.Context, businessId string, rec SyncedRecord) (bool, error) {
	db := config.GetDB()
	if db == nil {
		return false, errors.New("db is nil")
	}

	rec.SetBusinessId(businessId)
	rec.SetLastUpdated(time.Now().UTC())
	if !config.KeepRawPayloads() {
		rec.ClearRawPayload()
	}

	id, err := FindSyncedID(ctx, rec, businessId)
	if err != nil {
		return false, err
	}
	if id > 0 {
		rec.SetID(id)
		return false, db.WithContext(ctx).Save(rec).Error
	}

	err = db.WithContext(ctx).Create(rec).Error
	if err == nil {
		return true, nil
	}
	if !isDuplicateEntry(err) {
		return false, err
	}

	// Lost the insert race; the row exists now, so update it instead.
	rec.SetID(0)
	id, ferr := FindSyncedID(ctx, rec, businessId)
	if ferr != nil {
		return false, ferr
	}
	if id == 0 {
		return false, err
	}
	rec.SetID(id)
	return false, db.WithContext(ctx).Save(rec).Error
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlErrDuplicateEntry
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
