package models

import "time"

// SyncedBase carries the identity and bookkeeping columns shared by every
// normalized Tally record. IdentityKey is the dedupe key: "guid:<GUID>" when
// the remote record has a stable guid, otherwise "name:<name>" scoped by the
// owning business through the composite unique index.
type SyncedBase struct {
	ID          uint           `gorm:"primary_key" json:"id"`
	BusinessId  string         `gorm:"uniqueIndex:idx_identity,priority:1;not null" json:"business_id"`
	IdentityKey string         `gorm:"uniqueIndex:idx_identity,priority:2;size:255;not null" json:"identity_key"`
	Guid        string         `gorm:"size:128" json:"guid"`
	MasterId    string         `gorm:"size:64" json:"master_id"`
	AlterId     string         `gorm:"size:64" json:"alter_id"`
	Name        string         `gorm:"index;size:255;not null" json:"name"`
	RawPayload  map[string]any `gorm:"serializer:json" json:"raw_payload"`
	LastUpdated time.Time      `json:"last_updated"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

func (b *SyncedBase) GetID() uint            { return b.ID }
func (b *SyncedBase) SetID(id uint)          { b.ID = id }
func (b *SyncedBase) GetIdentityKey() string { return b.IdentityKey }
func (b *SyncedBase) GetName() string        { return b.Name }

func (b *SyncedBase) SetBusinessId(businessId string) { b.BusinessId = businessId }
func (b *SyncedBase) SetLastUpdated(t time.Time)      { b.LastUpdated = t }
func (b *SyncedBase) ClearRawPayload()                { b.RawPayload = nil }

// SyncedRecord is what the sync store needs from any normalized record.
type SyncedRecord interface {
	GetID() uint
	SetID(uint)
	GetIdentityKey() string
	GetName() string
	SetBusinessId(string)
	SetLastUpdated(time.Time)
	ClearRawPayload()
	EntityType() string
}
