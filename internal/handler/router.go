package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/middleware"
)

type RouterDeps struct {
	Contracts *ContractHandler
	Versions  *VersionHandler
	Changes   *ChangeHandler
	Alerts    *AlertHandler
	Analytics *AnalyticsHandler
	// UploadWindow throttles the ingestion endpoints per client. Zero
	// disables the limiter.
	UploadWindow time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/contracts", deps.Contracts.Create)
	api.GET("/contracts", deps.Contracts.List)
	api.GET("/contracts/:id", deps.Contracts.Get)
	api.PUT("/contracts/:id", deps.Contracts.Update)
	api.DELETE("/contracts/:id", deps.Contracts.Delete)

	ingest := api.Group("")
	ingest.Use(middleware.RateLimit(deps.UploadWindow))
	ingest.POST("/contracts/:id/upload", deps.Contracts.Upload)
	ingest.POST("/versions/:version_id/reprocess", deps.Versions.Reprocess)

	api.GET("/contracts/:id/versions", deps.Versions.List)
	api.GET("/versions/:version_id", deps.Versions.Get)
	api.GET("/versions/:version_id/snapshot", deps.Versions.Snapshot)

	api.GET("/changes", deps.Changes.List)
	api.GET("/changes/:id", deps.Changes.Get)

	api.GET("/alerts", deps.Alerts.List)
	api.PUT("/alerts/:id/acknowledge", deps.Alerts.Acknowledge)

	api.GET("/analytics/trends", deps.Analytics.Trend)
	api.GET("/analytics/risk-distribution", deps.Analytics.RiskDistribution)
	api.GET("/analytics/change-types", deps.Analytics.ChangeTypes)
	api.GET("/analytics/vendors", deps.Analytics.Vendors)
	api.GET("/stats", deps.Analytics.Stats)
}
