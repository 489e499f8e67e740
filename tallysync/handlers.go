package tallysync

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"bitbucket.org/mmdatafocus/tally_bridge/models"
	"bitbucket.org/mmdatafocus/tally_bridge/utils"
)

func StatusHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		conn, err := getConnection(db, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if conn == nil {
			c.JSON(http.StatusOK, StatusResponse{
				Provider: models.IntegrationProviderTally,
				Status:   models.IntegrationStatusDisconnected,
			})
			return
		}

		c.JSON(http.StatusOK, StatusResponse{
			Provider:          models.IntegrationProviderTally,
			Status:            conn.Status,
			EndpointURL:       conn.EndpointURL,
			CompanyName:       conn.CompanyName,
			LastSyncAt:        conn.LastSyncAt,
			LastSuccessSyncAt: conn.LastSuccessSyncAt,
		})
	}
}

func ConnectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req ConnectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
			return
		}
		if u, err := url.Parse(req.EndpointURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint_url must use http or https"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		conn, err := getConnection(db, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		now := time.Now()
		if conn == nil {
			settings, _ := EncodeModules(DefaultSyncModules())
			conn = &models.TallyConnection{
				BusinessId:   businessId,
				Provider:     models.IntegrationProviderTally,
				Status:       models.IntegrationStatusConnected,
				EndpointURL:  strings.TrimSpace(req.EndpointURL),
				CompanyName:  strings.TrimSpace(req.CompanyName),
				SettingsJSON: settings,
				UpdatedAt:    now,
			}
			if err := db.Create(conn).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		} else {
			update := map[string]interface{}{
				"status":       models.IntegrationStatusConnected,
				"endpoint_url": strings.TrimSpace(req.EndpointURL),
				"company_name": strings.TrimSpace(req.CompanyName),
				"updated_at":   now,
			}
			if len(conn.SettingsJSON) == 0 {
				settings, _ := EncodeModules(DefaultSyncModules())
				update["settings_json"] = settings
			}
			if err := db.Model(conn).Updates(update).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func DisconnectHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		conn, err := getConnection(db, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if conn == nil {
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}

		if err := db.Model(conn).Updates(map[string]interface{}{
			"status":     models.IntegrationStatusDisconnected,
			"updated_at": time.Now(),
		}).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func UpdateSettingsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req struct {
			Modules SyncModules `json:"modules"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)
		conn, err := getConnection(db, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		settings, _ := EncodeModules(req.Modules.Normalize())
		if conn == nil {
			conn = &models.TallyConnection{
				BusinessId:   businessId,
				Provider:     models.IntegrationProviderTally,
				Status:       models.IntegrationStatusDisconnected,
				SettingsJSON: settings,
			}
			if err := db.Create(conn).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		} else {
			if err := db.Model(conn).Updates(map[string]interface{}{
				"settings_json": settings,
				"updated_at":    time.Now(),
			}).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

func TriggerSyncHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		// An empty or absent body means "sync everything".
		var req TriggerSyncRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"errors": utils.ProcessValidationErrors(err)})
				return
			}
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		conn, err := getConnection(db, businessId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if conn == nil || conn.Status != models.IntegrationStatusConnected {
			c.JSON(http.StatusConflict, gin.H{"error": "tally is not connected"})
			return
		}

		var modules SyncModules
		if req.Modules != nil {
			modules = req.Modules.Normalize()
		} else {
			modules, _ = DecodeModules(conn.SettingsJSON)
		}

		modulesJSON, _ := EncodeModules(modules)
		run := models.TallySyncRun{
			BusinessId:   businessId,
			ConnectionId: conn.ID,
			Provider:     models.IntegrationProviderTally,
			Status:       models.SyncRunStatusQueued,
			TriggeredBy:  models.SyncTriggeredManual,
			ModulesJSON:  modulesJSON,
		}
		if err := db.Create(&run).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := PublishSyncRun(c.Request.Context(), SyncPubSubPayload{
			RunId:        run.ID,
			BusinessId:   businessId,
			ConnectionId: conn.ID,
			FromDate:     req.FromDate,
			ToDate:       req.ToDate,
		}); err != nil {
			config.LogError(config.GetLogger(), "tallysync", "TriggerSyncHandler", "publish failed", map[string]any{
				"run_id": run.ID,
			}, err)
		}

		c.JSON(http.StatusOK, gin.H{"id": run.ID})
	}
}

func SyncHistoryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit := 20
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
				limit = n
			}
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		var runs []models.TallySyncRun
		if err := db.Where("business_id = ? AND provider = ?", businessId, models.IntegrationProviderTally).
			Order("id desc").
			Limit(limit).
			Find(&runs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		items := make([]SyncRunResponse, 0, len(runs))
		for _, run := range runs {
			items = append(items, mapRunToResponse(run))
		}
		c.JSON(http.StatusOK, SyncHistoryResponse{Items: items})
	}
}

func SyncRunDetailHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		var run models.TallySyncRun
		if err := db.Where("id = ? AND business_id = ?", id, businessId).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		var errs []models.TallySyncError
		if err := db.Where("sync_run_id = ?", run.ID).Order("id desc").Limit(200).Find(&errs).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, SyncRunDetailResponse{
			SyncRunResponse: mapRunToResponse(run),
			Errors:          mapErrors(errs),
		})
	}
}

func RetrySyncRunHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid run id"})
			return
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		db := config.GetDB().WithContext(ctx)

		var run models.TallySyncRun
		if err := db.Where("id = ? AND business_id = ?", id, businessId).Take(&run).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		newRun := models.TallySyncRun{
			BusinessId:   businessId,
			ConnectionId: run.ConnectionId,
			Provider:     run.Provider,
			Status:       models.SyncRunStatusQueued,
			TriggeredBy:  models.SyncTriggeredRetry,
			ModulesJSON:  run.ModulesJSON,
			ParentRunId:  &run.ID,
		}
		if err := db.Create(&newRun).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		if err := PublishSyncRun(c.Request.Context(), SyncPubSubPayload{
			RunId:        newRun.ID,
			BusinessId:   businessId,
			ConnectionId: run.ConnectionId,
		}); err != nil {
			config.LogError(config.GetLogger(), "tallysync", "RetrySyncRunHandler", "publish failed", map[string]any{
				"run_id": newRun.ID,
			}, err)
		}

		c.JSON(http.StatusOK, gin.H{"id": newRun.ID})
	}
}

// RecordsHandler lists synced records of one entity type with paging and an
// optional name filter.
func RecordsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		dest, ok := recordSliceFor(EntityType(c.Param("entity")))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown entity type"})
			return
		}

		limit := 50
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		offset := 0
		if v := strings.TrimSpace(c.Query("offset")); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				offset = n
			}
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		q := config.GetDB().WithContext(ctx).Where("business_id = ?", businessId)
		if name := strings.TrimSpace(c.Query("name")); name != "" {
			q = q.Where("name LIKE ?", "%"+name+"%")
		}
		if err := q.Order("name asc").Limit(limit).Offset(offset).Find(dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": dest})
	}
}

func recordSliceFor(entity EntityType) (any, bool) {
	switch entity {
	case EntityCompany:
		return &[]models.TallyCompany{}, true
	case EntityLedger:
		return &[]models.TallyLedger{}, true
	case EntityVoucher:
		return &[]models.TallyVoucher{}, true
	case EntityStockItem:
		return &[]models.TallyStockItem{}, true
	case EntityGroup:
		return &[]models.TallyGroup{}, true
	case EntityCostCentre:
		return &[]models.TallyCostCentre{}, true
	case EntityCurrency:
		return &[]models.TallyCurrency{}, true
	default:
		return nil, false
	}
}

func resolveBusinessID(c *gin.Context) (string, error) {
	username, ok := utils.GetUsernameFromContext(c.Request.Context())
	if !ok || strings.TrimSpace(username) == "" {
		return "", errors.New("unauthorized")
	}

	businessId := strings.TrimSpace(c.Query("business_id"))
	if businessId != "" {
		if err := authorizeInternalBusiness(c.Request.Context(), businessId); err != nil {
			return "", err
		}
		return businessId, nil
	}

	user, err := lookupUser(c.Request.Context(), username)
	if err != nil {
		return "", err
	}
	businessId = strings.TrimSpace(user.BusinessId)
	if businessId == "" {
		return "", errors.New("business_id is required")
	}
	return businessId, nil
}

func authorizeInternalBusiness(ctx context.Context, businessId string) error {
	username, ok := utils.GetUsernameFromContext(ctx)
	if !ok || username == "" {
		return errors.New("unauthorized")
	}
	if businessId == "" {
		return errors.New("business_id is required")
	}

	user, err := lookupUser(ctx, username)
	if err != nil {
		return err
	}
	if user.Role == models.UserRoleAdmin {
		return nil
	}
	if user.BusinessId != businessId {
		return errors.New("unauthorized")
	}
	return nil
}

func lookupUser(ctx context.Context, username string) (models.User, error) {
	var user models.User
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return user, err
	}
	if exists {
		return user, nil
	}

	db := config.GetDB()
	if db == nil {
		return user, errors.New("db is nil")
	}
	if err := db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Take(&user).Error; err != nil {
		return user, errors.New("unauthorized")
	}
	_ = config.SetRedisObject("User:"+username, user, 15*time.Minute)
	return user, nil
}

func getConnection(db *gorm.DB, businessId string) (*models.TallyConnection, error) {
	var conn models.TallyConnection
	err := db.Where("business_id = ? AND provider = ?", businessId, models.IntegrationProviderTally).Take(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &conn, nil
}

func mapRunToResponse(run models.TallySyncRun) SyncRunResponse {
	modules, _ := DecodeModules(run.ModulesJSON)
	var stats map[string]SyncReport
	if len(run.StatsJSON) > 0 {
		_ = utils.UnmarshalFromJSON(run.StatsJSON, &stats)
	}
	return SyncRunResponse{
		ID:            run.ID,
		Status:        run.Status,
		Trigger:       run.TriggeredBy,
		Modules:       modules,
		Stats:         stats,
		RecordsSynced: run.RecordsSynced,
		ErrorCount:    run.ErrorCount,
		ParentRunId:   run.ParentRunId,
		StartedAt:     run.StartedAt,
		FinishedAt:    run.FinishedAt,
		DurationMs:    run.DurationMs,
		CreatedAt:     run.CreatedAt,
	}
}

func mapErrors(errorsList []models.TallySyncError) []SyncErrorResponse {
	out := make([]SyncErrorResponse, 0, len(errorsList))
	for _, errItem := range errorsList {
		out = append(out, SyncErrorResponse{
			ID:          errItem.ID,
			EntityType:  errItem.EntityType,
			IdentityKey: errItem.IdentityKey,
			ErrorCode:   errItem.ErrorCode,
			Message:     errItem.Message,
			Retryable:   errItem.Retryable,
			CreatedAt:   errItem.CreatedAt,
		})
	}
	return out
}
