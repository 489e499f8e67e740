package tallysync

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/tally_bridge/config"
	"bitbucket.org/mmdatafocus/tally_bridge/models/reports"
	"bitbucket.org/mmdatafocus/tally_bridge/utils"
)

func StockSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)

		rows, err := reports.GetStockSummaryReport(ctx)
		if err != nil {
			config.LogError(config.GetLogger(), "tallysync", "StockSummaryHandler", "report query failed", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rows})
	}
}

func LowStockHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		businessId, err := resolveBusinessID(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		limit := 100
		if v := strings.TrimSpace(c.Query("limit")); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				limit = n
			}
		}

		ctx := utils.SetBusinessIdInContext(c.Request.Context(), businessId)
		rows, err := reports.GetLowStockReport(ctx, limit)
		if err != nil {
			config.LogError(config.GetLogger(), "tallysync", "LowStockHandler", "report query failed", nil, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": rows})
	}
}
