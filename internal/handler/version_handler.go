package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/pkg/response"
	"github.com/clausewatch/clausewatch/internal/service"
)

type VersionHandler struct {
	contracts *service.ContractService
}

func NewVersionHandler(contracts *service.ContractService) *VersionHandler {
	return &VersionHandler{contracts: contracts}
}

func (h *VersionHandler) List(c *gin.Context) {
	limit := parseUintQuery(c, "limit", 50)
	offset := parseUintQuery(c, "offset", 0)
	versions, err := h.contracts.ListVersions(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, versions)
}

func (h *VersionHandler) Get(c *gin.Context) {
	version, clauses, err := h.contracts.GetVersion(c.Request.Context(), c.Param("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"version": version, "clauses": clauses})
}

// Snapshot downloads the archived original payload of a version.
func (h *VersionHandler) Snapshot(c *gin.Context) {
	version, data, err := h.contracts.SnapshotBytes(c.Request.Context(), c.Param("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", version.SnapshotKey))
	c.Data(http.StatusOK, snapshotContentType(version.SnapshotKey), data)
}

func snapshotContentType(key string) string {
	if strings.HasSuffix(key, ".pdf") {
		return "application/pdf"
	}
	return "text/plain; charset=utf-8"
}

// Reprocess reruns the pipeline for a stored version, synchronously.
func (h *VersionHandler) Reprocess(c *gin.Context) {
	result, err := h.contracts.Reprocess(c.Request.Context(), c.Param("version_id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
