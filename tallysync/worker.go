package tallysync

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"bitbucket.org/mmdatafocus/tally_bridge/models"
	"bitbucket.org/mmdatafocus/tally_bridge/utils"
)

const (
	syncLockTTL      = 30 * time.Minute
	defaultBatchSize = 100
)

// syncErrorSink receives per-record failures so a bad record never aborts
// the batch it arrived in.
type syncErrorSink func(entity EntityType, identityKey string, code string, message string, payload any, retryable bool)

// Syncer drives one run: fetch per entity, normalize, upsert in batches.
type Syncer struct {
	fetch     documentFetcher
	store     Store
	dateRange DateRange
	onError   syncErrorSink
	batchSize int
}

func NewSyncer(fetch documentFetcher, store Store, dateRange DateRange, onError syncErrorSink) *Syncer {
	if onError == nil {
		onError = func(EntityType, string, string, string, any, bool) {}
	}
	return &Syncer{
		fetch:     fetch,
		store:     store,
		dateRange: dateRange,
		onError:   onError,
		batchSize: batchSizeFromEnv(),
	}
}

func batchSizeFromEnv() int {
	if v := strings.TrimSpace(os.Getenv("TALLY_SYNC_BATCH_SIZE")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultBatchSize
}

// SyncEntityType fetches and persists one entity family. The returned error
// is a whole-family failure (transport, protocol); record-level failures go
// through the error sink and only bump the report's error count.
func (s *Syncer) SyncEntityType(ctx context.Context, businessId string, entity EntityType) (SyncReport, error) {
	var report SyncReport

	doc, err := s.fetch.fetch(ctx, entity, s.dateRange)
	if err != nil {
		return report, err
	}

	records, issues := normalizeDocument(entity, doc)
	for _, issue := range issues {
		report.Total++
		report.Errors++
		s.onError(entity, "", "invalid_record", issue.Reason, issue.Raw, false)
	}

	batchSize := s.batchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		for _, rec := range records[start:end] {
			report.Total++
			created, err := s.store.Upsert(ctx, businessId, rec)
			if err != nil {
				report.Errors++
				s.onError(entity, rec.GetIdentityKey(), "upsert_failed", err.Error(), nil, true)
				continue
			}
			if created {
				report.Created++
			} else {
				report.Updated++
			}
		}
		config.GetLogger().WithFields(logrus.Fields{
			"module":    "tallysync",
			"entity":    entity,
			"processed": end,
			"total":     len(records),
		}).Debug("sync batch processed")
	}
	return report, nil
}

// normalizeDocument dispatches to the per-entity normalizer and widens the
// results to the store interface.
func normalizeDocument(entity EntityType, doc map[string]any) ([]models.SyncedRecord, []NormalizeIssue) {
	switch entity {
	case EntityCompany:
		recs, issues := NormalizeCompanies(doc)
		return widen(recs), issues
	case EntityLedger:
		recs, issues := NormalizeLedgers(doc)
		return widen(recs), issues
	case EntityVoucher:
		recs, issues := NormalizeVouchers(doc)
		return widen(recs), issues
	case EntityStockItem:
		recs, issues := NormalizeStockItems(doc)
		return widen(recs), issues
	case EntityGroup:
		recs, issues := NormalizeGroups(doc)
		return widen(recs), issues
	case EntityCostCentre:
		recs, issues := NormalizeCostCentres(doc)
		return widen(recs), issues
	case EntityCurrency:
		recs, issues := NormalizeCurrencies(doc)
		return widen(recs), issues
	default:
		return nil, []NormalizeIssue{{EntityType: entity, Reason: "unsupported entity type"}}
	}
}

func widen[T models.SyncedRecord](recs []T) []models.SyncedRecord {
	out := make([]models.SyncedRecord, 0, len(recs))
	for _, r := range recs {
		out = append(out, r)
	}
	return out
}

// processSyncRun executes a queued run end to end. It is idempotent across
// redeliveries: a run already in a terminal state is acknowledged without
// work, and a per-business lock keeps concurrent deliveries from syncing
// the same business twice.
func processSyncRun(ctx context.Context, payload SyncPubSubPayload) error {
	if payload.RunId == 0 || payload.BusinessId == "" {
		return errors.New("invalid payload")
	}

	ctx = utils.SetBusinessIdInContext(ctx, payload.BusinessId)
	db := config.GetDB().WithContext(ctx)

	var run models.TallySyncRun
	if err := db.Where("id = ? AND business_id = ?", payload.RunId, payload.BusinessId).Take(&run).Error; err != nil {
		return err
	}
	if run.Status == models.SyncRunStatusSuccess || run.Status == models.SyncRunStatusFailed || run.Status == models.SyncRunStatusPartial {
		return nil
	}

	var conn models.TallyConnection
	if err := db.Where("id = ? AND business_id = ?", run.ConnectionId, payload.BusinessId).Take(&conn).Error; err != nil {
		return err
	}
	if conn.Status != models.IntegrationStatusConnected {
		return failRun(ctx, db, &run, "tally connection is not active")
	}
	if strings.TrimSpace(conn.EndpointURL) == "" {
		return failRun(ctx, db, &run, "tally endpoint url is not configured")
	}

	lock, err := utils.ObtainBusinessLock(ctx, payload.BusinessId, "tally-sync", syncLockTTL, "tallysync", "processSyncRun")
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release(context.Background()) }()

	modules, err := DecodeModules(run.ModulesJSON)
	if err != nil {
		return failRun(ctx, db, &run, "invalid module selection: "+err.Error())
	}

	now := time.Now()
	startedAt := run.StartedAt
	if startedAt == nil {
		startedAt = &now
	}
	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":     models.SyncRunStatusRunning,
		"started_at": startedAt,
	}).Error; err != nil {
		return err
	}

	client := newTallyClient(conn.EndpointURL, conn.CompanyName)
	sink := func(entity EntityType, identityKey string, code string, message string, payload0 any, retryable bool) {
		_ = createSyncError(ctx, db, run.ID, payload.BusinessId, string(entity), identityKey, code, message, payload0, retryable)
	}
	syncer := NewSyncer(client, NewStore(), DateRange{From: payload.FromDate, To: payload.ToDate}, sink)

	stats := map[string]SyncReport{}
	errorCount := 0
	totalSynced := 0

	for _, entity := range modules.EntityTypes() {
		report, err := syncer.SyncEntityType(ctx, payload.BusinessId, entity)
		if err != nil {
			errorCount++
			retryable := true
			var terr *TransportError
			if errors.As(err, &terr) {
				retryable = terr.Retryable()
			}
			_ = createSyncError(ctx, db, run.ID, payload.BusinessId, string(entity), "", "fetch_failed", err.Error(), nil, retryable)
			config.LogError(config.GetLogger(), "tallysync", "processSyncRun", "entity sync failed", map[string]any{
				"run_id": run.ID, "entity": entity,
			}, err)
		}
		errorCount += report.Errors
		totalSynced += report.Created + report.Updated
		stats[string(entity)] = report
	}

	finishedAt := time.Now()
	durationMs := finishedAt.Sub(*startedAt).Milliseconds()
	status := models.SyncRunStatusSuccess
	if errorCount > 0 && totalSynced == 0 {
		status = models.SyncRunStatusFailed
	} else if errorCount > 0 {
		status = models.SyncRunStatusPartial
	}

	statsJSON, _ := json.Marshal(stats)
	if err := db.Model(&run).Updates(map[string]interface{}{
		"status":         status,
		"finished_at":    finishedAt,
		"duration_ms":    durationMs,
		"records_synced": totalSynced,
		"error_count":    errorCount,
		"stats_json":     statsJSON,
	}).Error; err != nil {
		return err
	}

	connUpdates := map[string]interface{}{
		"last_sync_at": finishedAt,
	}
	if status == models.SyncRunStatusSuccess {
		connUpdates["last_success_sync_at"] = finishedAt
	}
	return db.Model(&models.TallyConnection{}).
		Where("id = ? AND business_id = ?", conn.ID, payload.BusinessId).
		Updates(connUpdates).Error
}

func failRun(ctx context.Context, db *gorm.DB, run *models.TallySyncRun, reason string) error {
	_ = createSyncError(ctx, db, run.ID, run.BusinessId, "", "", "run_failed", reason, nil, false)
	finishedAt := time.Now()
	return db.Model(run).Updates(map[string]interface{}{
		"status":      models.SyncRunStatusFailed,
		"finished_at": finishedAt,
		"error_count": gorm.Expr("error_count + 1"),
	}).Error
}

func createSyncError(ctx context.Context, db *gorm.DB, runId uint, businessId string, entityType string, identityKey string, code string, message string, payload any, retryable bool) error {
	var payloadJSON []byte
	if payload != nil {
		payloadJSON, _ = json.Marshal(payload)
	}
	errRec := models.TallySyncError{
		SyncRunId:   runId,
		BusinessId:  businessId,
		EntityType:  entityType,
		IdentityKey: identityKey,
		ErrorCode:   code,
		Message:     truncate(message, 2000),
		PayloadJSON: payloadJSON,
		Retryable:   retryable,
	}
	return db.WithContext(ctx).Create(&errRec).Error
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
