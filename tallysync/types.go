package tallysync

import (
	"time"

	"bitbucket.org/mmdatafocus/tally_bridge/utils"
)

// SyncModules selects which entity families a sync run covers.
type SyncModules struct {
	Companies   bool `json:"companies"`
	Ledgers     bool `json:"ledgers"`
	Vouchers    bool `json:"vouchers"`
	StockItems  bool `json:"stock_items"`
	Groups      bool `json:"groups"`
	CostCentres bool `json:"cost_centres"`
	Currencies  bool `json:"currencies"`
}

// DefaultSyncModules enables everything, the behavior of a bare trigger
// request with no module filter.
func DefaultSyncModules() SyncModules {
	return SyncModules{
		Companies:   true,
		Ledgers:     true,
		Vouchers:    true,
		StockItems:  true,
		Groups:      true,
		CostCentres: true,
		Currencies:  true,
	}
}

// Normalize widens an all-false selection into the default full set so a
// caller sending an empty object does not queue a no-op run.
func (m SyncModules) Normalize() SyncModules {
	if !m.Companies && !m.Ledgers && !m.Vouchers && !m.StockItems &&
		!m.Groups && !m.CostCentres && !m.Currencies {
		return DefaultSyncModules()
	}
	return m
}

// EntityTypes returns the enabled families in sync order. Masters go before
// vouchers so voucher rows land after the ledgers they reference.
func (m SyncModules) EntityTypes() []EntityType {
	var out []EntityType
	if m.Companies {
		out = append(out, EntityCompany)
	}
	if m.Groups {
		out = append(out, EntityGroup)
	}
	if m.Currencies {
		out = append(out, EntityCurrency)
	}
	if m.CostCentres {
		out = append(out, EntityCostCentre)
	}
	if m.Ledgers {
		out = append(out, EntityLedger)
	}
	if m.StockItems {
		out = append(out, EntityStockItem)
	}
	if m.Vouchers {
		out = append(out, EntityVoucher)
	}
	return out
}

func EncodeModules(m SyncModules) ([]byte, error) {
	s, err := utils.MarshalToJSON(m)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func DecodeModules(raw []byte) (SyncModules, error) {
	if len(raw) == 0 {
		return DefaultSyncModules(), nil
	}
	var m SyncModules
	if err := utils.UnmarshalFromJSON(raw, &m); err != nil {
		return SyncModules{}, err
	}
	return m.Normalize(), nil
}

// ConnectRequest registers or updates the Tally endpoint for a business.
type ConnectRequest struct {
	EndpointURL string `json:"endpoint_url" binding:"required,url"`
	CompanyName string `json:"company_name"`
}

// TriggerSyncRequest starts a sync run, optionally narrowed by module and
// voucher date range (YYYYMMDD).
type TriggerSyncRequest struct {
	Modules  *SyncModules `json:"modules"`
	FromDate string       `json:"from_date" binding:"omitempty,len=8,numeric"`
	ToDate   string       `json:"to_date" binding:"omitempty,len=8,numeric"`
}

// SyncReport is the per-entity tally of one run.
type SyncReport struct {
	Total   int `json:"total"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// SuccessRatePercent is 100 for an empty report so an entity with nothing
// to sync reads as healthy.
func (r SyncReport) SuccessRatePercent() float64 {
	if r.Total == 0 {
		return 100
	}
	return float64(r.Total-r.Errors) / float64(r.Total) * 100
}

type StatusResponse struct {
	Provider          string     `json:"provider"`
	Status            string     `json:"status"`
	EndpointURL       string     `json:"endpoint_url,omitempty"`
	CompanyName       string     `json:"company_name,omitempty"`
	LastSyncAt        *time.Time `json:"last_sync_at,omitempty"`
	LastSuccessSyncAt *time.Time `json:"last_success_sync_at,omitempty"`
}

type SyncRunResponse struct {
	ID            uint                  `json:"id"`
	Status        string                `json:"status"`
	Trigger       string                `json:"trigger"`
	Modules       SyncModules           `json:"modules"`
	Stats         map[string]SyncReport `json:"stats,omitempty"`
	RecordsSynced int                   `json:"records_synced"`
	ErrorCount    int                   `json:"error_count"`
	ParentRunId   *uint                 `json:"parent_run_id,omitempty"`
	StartedAt     *time.Time            `json:"started_at,omitempty"`
	FinishedAt    *time.Time            `json:"finished_at,omitempty"`
	DurationMs    int64                 `json:"duration_ms,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

type SyncHistoryResponse struct {
	Items []SyncRunResponse `json:"items"`
}

type SyncRunDetailResponse struct {
	SyncRunResponse
	Errors []SyncErrorResponse `json:"errors"`
}

type SyncErrorResponse struct {
	ID          uint      `json:"id"`
	EntityType  string    `json:"entity_type"`
	IdentityKey string    `json:"identity_key,omitempty"`
	ErrorCode   string    `json:"error_code"`
	Message     string    `json:"message"`
	Retryable   bool      `json:"retryable"`
	CreatedAt   time.Time `json:"created_at"`
}

// SyncPubSubPayload is the message body queued for the async worker.
type SyncPubSubPayload struct {
	RunId        uint   `json:"run_id"`
	BusinessId   string `json:"business_id"`
	ConnectionId uint   `json:"connection_id"`
	FromDate     string `json:"from_date,omitempty"`
	ToDate       string `json:"to_date,omitempty"`
}

// PubSubPushEnvelope matches the wrapper Google delivers to push endpoints.
type PubSubPushEnvelope struct {
	Message struct {
		Data      []byte `json:"data"`
		MessageId string `json:"messageId"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}
