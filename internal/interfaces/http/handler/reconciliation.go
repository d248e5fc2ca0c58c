package handler

import (
	"github.com/gin-gonic/gin"

	appsettlement "github.com/amai2222/shipment-data-view-sub003/internal/application/settlement"
)

// ReconciliationHandler exposes the orphan check and its compensating reset
type ReconciliationHandler struct {
	BaseHandler
	service *appsettlement.ReconciliationService
}

// NewReconciliationHandler creates a new ReconciliationHandler
func NewReconciliationHandler(service *appsettlement.ReconciliationService) *ReconciliationHandler {
	return &ReconciliationHandler{service: service}
}

// RegisterRoutes registers reconciliation routes
func (h *ReconciliationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orphans := rg.Group("/settlements/:flow/orphans")
	{
		orphans.GET("", h.List)
		orphans.POST("/reset", h.Reset)
	}
}

// List returns waybill ids stuck in Processing with no covering request
func (h *ReconciliationHandler) List(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	ids, err := h.service.FindOrphans(c.Request.Context(), flow)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"waybill_ids": ids, "count": len(ids)})
}

// Reset returns orphaned waybills to the initial stage
func (h *ReconciliationHandler) Reset(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	count, err := h.service.ResetOrphans(c.Request.Context(), flow)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"reset": count})
}
