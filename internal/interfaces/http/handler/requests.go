package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appsettlement "github.com/amai2222/shipment-data-view-sub003/internal/application/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/interfaces/http/dto"
)

// RequestHandler serves the settlement request lifecycle after commit
type RequestHandler struct {
	BaseHandler
	service *appsettlement.RequestService
}

// NewRequestHandler creates a new RequestHandler
func NewRequestHandler(service *appsettlement.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// RegisterRoutes registers settlement request routes
func (h *RequestHandler) RegisterRoutes(rg *gin.RouterGroup) {
	requests := rg.Group("/settlements/:flow/requests")
	{
		requests.GET("", h.List)
		requests.GET("/:id", h.Get)
		requests.POST("/:id/void", h.Void)
	}
}

// List returns settlement requests for the flow, newest first
func (h *RequestHandler) List(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	var query dto.RequestFilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}
	filter, err := query.ToFilter()
	if err != nil {
		h.HandleError(c, err)
		return
	}

	requests, total, err := h.service.List(c.Request.Context(), flow, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	responses := make([]dto.RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, dto.NewRequestResponse(&requests[i], false))
	}

	h.SuccessWithMeta(c, responses, total, filter.Page, filter.PageSize)
}

// Get returns one settlement request with its items
func (h *RequestHandler) Get(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Request id is not a valid UUID")
		return
	}

	request, err := h.service.Get(c.Request.Context(), flow, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRequestResponse(request, true))
}

// Void withdraws a pending request and releases its covered waybills
func (h *RequestHandler) Void(c *gin.Context) {
	flow, ok := flowFromPath(c)
	if !ok {
		h.BadRequest(c, "Unknown settlement flow")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Request id is not a valid UUID")
		return
	}

	var req dto.VoidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, bindingErrorMessage(err))
		return
	}

	request, err := h.service.Void(c.Request.Context(), flow, id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.NewRequestResponse(request, true))
}
