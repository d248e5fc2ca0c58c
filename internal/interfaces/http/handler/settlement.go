package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	appsettlement "github.com/amai2222/shipment-data-view-sub003/internal/application/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/dto"
)

// SettlementHandler serves the settlement engine pages: eligible waybill
// listing, sheet preview, export, and the confirmed commit.
type SettlementHandler struct {
	BaseHandler
	service *appsettlement.Service
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(service *appsettlement.Service) *SettlementHandler {
	return &SettlementHandler{service: service}
}

// RegisterRoutes registers settlement engine routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	settlements := rg.Group("/settlements/:flow")
	{
		settlements.GET("/waybills", h.ListWaybills)
		settlements.POST("/preview", h.Preview)
		settlements.POST("/preview/export", h.ExportPreview)
		settlements.POST("/commit", h.Commit)
	}
}

// ListWaybills returns eligible waybills for the flow, filtered and paginated
func (h *SettlementHandler) ListWaybills(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	var query dto.WaybillFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	records, total, err := h.service.ListEligible(c.Request.Context(), flow, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]dto.WaybillResponse, 0, len(records))
	for i := range records {
		responses = append(responses, dto.NewWaybillResponse(&records[i], flow))
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// Preview aggregates the selection into per-partner settlement sheets
func (h *SettlementHandler) Preview(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	scope, filter, err := resolveScopeAndFilter(req.Selection, req.Filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.Preview(c.Request.Context(), flow, scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// ExportPreview streams the previewed sheets as an XLSX workbook
func (h *SettlementHandler) ExportPreview(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	var req dto.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	scope, filter, err := resolveScopeAndFilter(req.Selection, req.Filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.Preview(c.Request.Context(), flow, scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	workbook, err := appsettlement.BuildSheetWorkbook(flow, result)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	filename := fmt.Sprintf("settlement-%s-%s.xlsx", flow.RequestPrefix(), time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		workbook)
}

// Commit performs the confirmed settlement transition
func (h *SettlementHandler) Commit(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	var req dto.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	scope, filter, err := resolveScopeAndFilter(req.Selection, req.Filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	result, err := h.service.Commit(c.Request.Context(), flow, scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
