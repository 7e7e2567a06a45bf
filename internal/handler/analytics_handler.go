package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/pkg/response"
	"github.com/clausewatch/clausewatch/internal/service"
)

type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) RiskDistribution(c *gin.Context) {
	distribution, err := h.analytics.RiskDistribution(c.Request.Context(), c.Query("contract_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, distribution)
}

func (h *AnalyticsHandler) ChangeTypes(c *gin.Context) {
	counts, err := h.analytics.ChangeTypes(c.Request.Context(), c.Query("contract_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, counts)
}

func (h *AnalyticsHandler) Trend(c *gin.Context) {
	days := parseIntQuery(c, "days", 30)
	points, err := h.analytics.Trend(c.Request.Context(), c.Query("contract_id"), days)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, points)
}

func (h *AnalyticsHandler) Vendors(c *gin.Context) {
	summaries, err := h.analytics.VendorSummaries(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, summaries)
}

func (h *AnalyticsHandler) Stats(c *gin.Context) {
	totals, err := h.analytics.Stats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, totals)
}
