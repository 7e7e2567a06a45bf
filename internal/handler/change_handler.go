package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/response"
	"github.com/clausewatch/clausewatch/internal/repo"
	"github.com/clausewatch/clausewatch/internal/service"
)

type ChangeHandler struct {
	changes *service.ChangeService
}

func NewChangeHandler(changes *service.ChangeService) *ChangeHandler {
	return &ChangeHandler{changes: changes}
}

func (h *ChangeHandler) List(c *gin.Context) {
	filter := repo.ChangeFilter{
		ContractID:  c.Query("contract_id"),
		ToVersionID: c.Query("version_id"),
		ChangeType:  model.ChangeType(c.Query("change_type")),
		RiskLevel:   model.RiskLevel(c.Query("risk_level")),
		MinScore:    parseIntQuery(c, "min_score", 0),
		Limit:       parseUintQuery(c, "limit", 100),
		Offset:      parseUintQuery(c, "offset", 0),
	}
	changes, err := h.changes.List(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, changes)
}

func (h *ChangeHandler) Get(c *gin.Context) {
	detail, err := h.changes.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, detail)
}
