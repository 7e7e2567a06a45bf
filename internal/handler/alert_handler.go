package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/response"
	"github.com/clausewatch/clausewatch/internal/service"
)

type AlertHandler struct {
	alerts *service.AlertService
}

func NewAlertHandler(alerts *service.AlertService) *AlertHandler {
	return &AlertHandler{alerts: alerts}
}

func (h *AlertHandler) List(c *gin.Context) {
	limit := parseUintQuery(c, "limit", 100)
	offset := parseUintQuery(c, "offset", 0)
	alerts, err := h.alerts.List(c.Request.Context(),
		model.AlertStatus(c.Query("status")), c.Query("contract_id"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, alerts)
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	alert, err := h.alerts.Acknowledge(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, alert)
}
