package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// WaybillFilterQuery binds the filter bar query parameters
type WaybillFilterQuery struct {
	ProjectID     string `form:"project_id" binding:"omitempty,uuid"`
	PartnerID     string `form:"partner_id" binding:"omitempty,uuid"`
	DriverName    string `form:"driver_name"`
	WaybillNumber string `form:"waybill_number"`
	Keyword       string `form:"keyword"`
	LoadingFrom   string `form:"loading_from" binding:"omitempty,datetime=2006-01-02"`
	LoadingTo     string `form:"loading_to" binding:"omitempty,datetime=2006-01-02"`
	Page          int    `form:"page" binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ToFilter converts the query to the domain filter
func (q *WaybillFilterQuery) ToFilter() (waybill.Filter, error) {
	filter := waybill.Filter{
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 50
	}

	if q.ProjectID != "" {
		id, err := uuid.Parse(q.ProjectID)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "project_id is not a valid UUID")
		}
		filter.ProjectID = &id
	}
	if q.PartnerID != "" {
		id, err := uuid.Parse(q.PartnerID)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "partner_id is not a valid UUID")
		}
		filter.PartnerID = &id
	}
	if q.DriverName != "" {
		filter.DriverName = &q.DriverName
	}
	if q.WaybillNumber != "" {
		filter.WaybillNumber = &q.WaybillNumber
	}
	if q.Keyword != "" {
		filter.Keyword = &q.Keyword
	}
	if q.LoadingFrom != "" {
		from, err := time.Parse("2006-01-02", q.LoadingFrom)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "loading_from must be YYYY-MM-DD")
		}
		filter.LoadingFrom = &from
	}
	if q.LoadingTo != "" {
		to, err := time.Parse("2006-01-02", q.LoadingTo)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "loading_to must be YYYY-MM-DD")
		}
		// Inclusive end of day
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.LoadingTo = &to
	}

	return filter, nil
}

// SelectionRequest carries the client's selection scope. In all_filtered mode
// the ids are ignored; the server re-resolves the filter.
type SelectionRequest struct {
	Mode string   `json:"mode" binding:"required,oneof=none explicit all_filtered"`
	IDs  []string `json:"ids" binding:"omitempty,dive,uuid"`
}

// ToScope converts the selection to a domain scope
func (r *SelectionRequest) ToScope() (settlement.Scope, error) {
	switch r.Mode {
	case "all_filtered":
		return settlement.Scope{AllFiltered: true}, nil
	case "explicit":
		ids := make([]uuid.UUID, 0, len(r.IDs))
		for _, raw := range r.IDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return settlement.Scope{}, shared.NewDomainError("INVALID_INPUT", "selection ids must be valid UUIDs")
			}
			ids = append(ids, id)
		}
		return settlement.Scope{IDs: ids}, nil
	default:
		return settlement.Scope{}, nil
	}
}

// PreviewRequest carries the selection and the filter it was made against
type PreviewRequest struct {
	Selection SelectionRequest   `json:"selection" binding:"required"`
	Filter    WaybillFilterQuery `json:"filter"`
}

// CommitRequest is identical in shape to PreviewRequest; commit re-resolves
// everything server-side
type CommitRequest struct {
	Selection SelectionRequest   `json:"selection" binding:"required"`
	Filter    WaybillFilterQuery `json:"filter"`
}

// VoidRequest carries the reason for withdrawing a settlement request
type VoidRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// RequestFilterQuery binds request-list query parameters
type RequestFilterQuery struct {
	PartnerID string `form:"partner_id" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=PENDING COMPLETED VOIDED"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// ToFilter converts the query to the domain request filter
func (q *RequestFilterQuery) ToFilter() (settlement.RequestFilter, error) {
	filter := settlement.RequestFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 50
	}

	if q.PartnerID != "" {
		id, err := uuid.Parse(q.PartnerID)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "partner_id is not a valid UUID")
		}
		filter.PartnerID = &id
	}
	if q.Status != "" {
		status := settlement.RequestStatus(q.Status)
		filter.Status = &status
	}
	if q.From != "" {
		from, err := time.Parse("2006-01-02", q.From)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "from must be YYYY-MM-DD")
		}
		filter.From = &from
	}
	if q.To != "" {
		to, err := time.Parse("2006-01-02", q.To)
		if err != nil {
			return filter, shared.NewDomainError("INVALID_INPUT", "to must be YYYY-MM-DD")
		}
		to = to.Add(24*time.Hour - time.Nanosecond)
		filter.To = &to
	}

	return filter, nil
}

// WaybillResponse is the list representation of an eligible waybill
type WaybillResponse struct {
	ID                uuid.UUID            `json:"id"`
	WaybillNumber     string               `json:"waybill_number"`
	ProjectID         uuid.UUID            `json:"project_id"`
	ProjectName       string               `json:"project_name"`
	DriverName        string               `json:"driver_name"`
	LoadingLocation   string               `json:"loading_location"`
	UnloadingLocation string               `json:"unloading_location"`
	LoadingDate       time.Time            `json:"loading_date"`
	Status            string               `json:"status"`
	StatusLabel       string               `json:"status_label"`
	Allocations       []AllocationResponse `json:"allocations"`
	Remark            string               `json:"remark,omitempty"`
}

// AllocationResponse is the list representation of a partner allocation
type AllocationResponse struct {
	ID          uuid.UUID `json:"id"`
	PartnerID   uuid.UUID `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	Level       int       `json:"level"`
	Amount      string    `json:"amount"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
}

// NewWaybillResponse maps a waybill record for the given flow
func NewWaybillResponse(w *waybill.WaybillRecord, flow waybill.Flow) WaybillResponse {
	allocations := make([]AllocationResponse, 0, len(w.Allocations))
	for _, a := range w.Allocations {
		allocations = append(allocations, AllocationResponse{
			ID:          a.ID,
			PartnerID:   a.PartnerID,
			PartnerName: a.PartnerName,
			Level:       a.Level,
			Amount:      a.Amount.String(),
			Status:      a.StatusFor(flow).String(),
			StatusLabel: flow.StageLabel(a.StatusFor(flow)),
		})
	}
	return WaybillResponse{
		ID:                w.ID,
		WaybillNumber:     w.WaybillNumber,
		ProjectID:         w.ProjectID,
		ProjectName:       w.ProjectName,
		DriverName:        w.DriverName,
		LoadingLocation:   w.LoadingLocation,
		UnloadingLocation: w.UnloadingLocation,
		LoadingDate:       w.LoadingDate,
		Status:            w.StatusFor(flow).String(),
		StatusLabel:       flow.StageLabel(w.StatusFor(flow)),
		Allocations:       allocations,
		Remark:            w.Remark,
	}
}

// RequestResponse is the representation of a settlement request
type RequestResponse struct {
	ID             uuid.UUID             `json:"id"`
	RequestNumber  string                `json:"request_number"`
	Flow           string                `json:"flow"`
	PartnerID      uuid.UUID             `json:"partner_id"`
	PartnerName    string                `json:"partner_name"`
	TaxNumber      string                `json:"tax_number,omitempty"`
	CompanyAddress string                `json:"company_address,omitempty"`
	BankAccount    string                `json:"bank_account,omitempty"`
	BankName       string                `json:"bank_name,omitempty"`
	BranchName     string                `json:"branch_name,omitempty"`
	RecordCount    int                   `json:"record_count"`
	TotalAmount    string                `json:"total_amount"`
	Status         string                `json:"status"`
	Items          []RequestItemResponse `json:"items,omitempty"`
	VoidedAt       *time.Time            `json:"voided_at,omitempty"`
	VoidReason     string                `json:"void_reason,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// RequestItemResponse is one covered (waybill, allocation) pair
type RequestItemResponse struct {
	WaybillID    uuid.UUID `json:"waybill_id"`
	AllocationID uuid.UUID `json:"allocation_id"`
	Amount       string    `json:"amount"`
}

// NewRequestResponse maps a settlement request
func NewRequestResponse(r *settlement.SettlementRequest, includeItems bool) RequestResponse {
	resp := RequestResponse{
		ID:             r.ID,
		RequestNumber:  r.RequestNumber,
		Flow:           r.Flow.String(),
		PartnerID:      r.PartnerID,
		PartnerName:    r.PartnerName,
		TaxNumber:      r.TaxNumber,
		CompanyAddress: r.CompanyAddress,
		BankAccount:    r.BankAccount,
		BankName:       r.BankName,
		BranchName:     r.BranchName,
		RecordCount:    r.RecordCount,
		TotalAmount:    r.TotalAmount.String(),
		Status:         r.Status.String(),
		VoidedAt:       r.VoidedAt,
		VoidReason:     r.VoidReason,
		CreatedAt:      r.CreatedAt,
	}
	if includeItems {
		resp.Items = make([]RequestItemResponse, 0, len(r.Items))
		for _, item := range r.Items {
			resp.Items = append(resp.Items, RequestItemResponse{
				WaybillID:    item.WaybillID,
				AllocationID: item.AllocationID,
				Amount:       item.Amount.String(),
			})
		}
	}
	return resp
}
