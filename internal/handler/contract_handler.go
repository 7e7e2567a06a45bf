package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clausewatch/clausewatch/internal/model"
	"github.com/clausewatch/clausewatch/internal/pkg/errcode"
	"github.com/clausewatch/clausewatch/internal/pkg/response"
	"github.com/clausewatch/clausewatch/internal/service"
)

const maxUploadBytes = 20 << 20

type ContractHandler struct {
	contracts *service.ContractService
}

func NewContractHandler(contracts *service.ContractService) *ContractHandler {
	return &ContractHandler{contracts: contracts}
}

type createContractRequest struct {
	Vendor       string `json:"vendor"`
	ContractType string `json:"contract_type"`
	SourceURL    string `json:"source_url"`
	Watch        bool   `json:"watch"`
}

func (h *ContractHandler) Create(c *gin.Context) {
	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	contract, err := h.contracts.Create(c.Request.Context(), service.CreateContractArgs{
		Vendor:       req.Vendor,
		ContractType: model.ContractType(req.ContractType),
		SourceURL:    req.SourceURL,
		Watch:        req.Watch,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, contract)
}

func (h *ContractHandler) List(c *gin.Context) {
	limit := parseUintQuery(c, "limit", 50)
	offset := parseUintQuery(c, "offset", 0)
	contracts, total, err := h.contracts.List(c.Request.Context(), c.Query("vendor"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}
	response.SuccessPage(c, contracts, total)
}

func (h *ContractHandler) Get(c *gin.Context) {
	contract, err := h.contracts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, contract)
}

type updateContractRequest struct {
	Vendor       *string `json:"vendor"`
	ContractType *string `json:"contract_type"`
	SourceURL    *string `json:"source_url"`
	Watch        *bool   `json:"watch"`
}

func (h *ContractHandler) Update(c *gin.Context) {
	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	args := service.UpdateContractArgs{
		Vendor:    req.Vendor,
		SourceURL: req.SourceURL,
		Watch:     req.Watch,
	}
	if req.ContractType != nil {
		contractType := model.ContractType(*req.ContractType)
		args.ContractType = &contractType
	}
	contract, err := h.contracts.Update(c.Request.Context(), c.Param("id"), args)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, contract)
}

func (h *ContractHandler) Delete(c *gin.Context) {
	if err := h.contracts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

// Upload accepts one of three payload shapes: a multipart "file" part (pdf),
// a "url" form value, or a raw "text" form value. The new version is stored
// immediately and processed in the background.
func (h *ContractHandler) Upload(c *gin.Context) {
	doc, ok := h.buildDocument(c)
	if !ok {
		return
	}
	version, err := h.contracts.IngestVersion(c.Request.Context(), c.Param("id"), doc, service.IngestOptions{Async: true})
	if err != nil {
		handleError(c, err)
		return
	}
	version.RawText = ""
	response.Success(c, version)
}

func (h *ContractHandler) buildDocument(c *gin.Context) (model.Document, bool) {
	if url := strings.TrimSpace(c.PostForm("url")); url != "" {
		return model.Document{SourceType: model.SourceURL, URL: url}, true
	}
	if text := c.PostForm("text"); strings.TrimSpace(text) != "" {
		return model.Document{SourceType: model.SourceText, Data: []byte(text)}, true
	}
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, errcode.ErrInvalid, "one of file, url or text is required")
		return model.Document{}, false
	}
	defer file.Close()
	if header.Size > maxUploadBytes {
		response.Error(c, errcode.ErrInvalidFile, "file too large")
		return model.Document{}, false
	}
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		response.Error(c, errcode.ErrUploadFailed, "read upload failed")
		return model.Document{}, false
	}
	if len(data) > maxUploadBytes {
		response.Error(c, errcode.ErrInvalidFile, "file too large")
		return model.Document{}, false
	}
	sourceType := model.SourcePDF
	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		sourceType = model.SourceText
	}
	return model.Document{SourceType: sourceType, Data: data}, true
}
