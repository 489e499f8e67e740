package models

import "time"

const (
	IntegrationProviderTally = "tally"
)

const (
	IntegrationStatusConnected    = "connected"
	IntegrationStatusDisconnected = "disconnected"
	IntegrationStatusError        = "error"
)

const (
	SyncRunStatusQueued  = "queued"
	SyncRunStatusRunning = "running"
	SyncRunStatusSuccess = "success"
	SyncRunStatusFailed  = "failed"
	SyncRunStatusPartial = "partial"
)

const (
	SyncTriggeredManual = "manual"
	SyncTriggeredRetry  = "retry"
	SyncTriggeredSystem = "system"
)

// TallyConnection is the per-business endpoint configuration. Tally runs as a
// local single-tenant process; the endpoint URL is usually a LAN address of
// the machine running Tally with its XML gateway enabled.
type TallyConnection struct {
	ID                uint       `gorm:"primary_key" json:"id"`
	BusinessId        string     `gorm:"index;not null" json:"business_id"`
	Provider          string     `gorm:"index;size:50;not null" json:"provider"`
	Status            string     `gorm:"size:20;not null" json:"status"`
	EndpointURL       string     `gorm:"size:512" json:"endpoint_url"`
	CompanyName       string     `gorm:"size:255" json:"company_name"`
	SettingsJSON      []byte     `gorm:"type:json" json:"settings"`
	LastSyncAt        *time.Time `json:"last_sync_at"`
	LastSuccessSyncAt *time.Time `json:"last_success_sync_at"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type TallySyncRun struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	BusinessId    string     `gorm:"index;not null" json:"business_id"`
	ConnectionId  uint       `gorm:"index;not null" json:"connection_id"`
	Provider      string     `gorm:"index;size:50;not null" json:"provider"`
	Status        string     `gorm:"size:20;not null" json:"status"`
	TriggeredBy   string     `gorm:"size:20" json:"triggered_by"`
	ModulesJSON   []byte     `gorm:"type:json" json:"modules"`
	StatsJSON     []byte     `gorm:"type:json" json:"stats"`
	RecordsSynced int        `json:"records_synced"`
	ErrorCount    int        `json:"error_count"`
	ParentRunId   *uint      `gorm:"index" json:"parent_run_id"`
	StartedAt     *time.Time `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at"`
	DurationMs    int64      `json:"duration_ms"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type TallySyncError struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	SyncRunId   uint      `gorm:"index;not null" json:"sync_run_id"`
	BusinessId  string    `gorm:"index;not null" json:"business_id"`
	EntityType  string    `gorm:"size:50" json:"entity_type"`
	IdentityKey string    `gorm:"size:255" json:"identity_key"`
	ErrorCode   string    `gorm:"size:64" json:"error_code"`
	Message     string    `gorm:"type:text" json:"message"`
	PayloadJSON []byte    `gorm:"type:json" json:"payload"`
	Retryable   bool      `gorm:"default:false" json:"retryable"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}
