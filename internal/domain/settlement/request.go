package settlement

import (
	"fmt"
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestStatus represents the lifecycle status of a settlement request
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"   // Created, awaiting downstream processing
	RequestStatusCompleted RequestStatus = "COMPLETED" // Invoiced / paid out
	RequestStatusVoided    RequestStatus = "VOIDED"    // Withdrawn, covered waybills released
)

// IsValid checks if the status is a valid RequestStatus
func (s RequestStatus) IsValid() bool {
	switch s {
	case RequestStatusPending, RequestStatusCompleted, RequestStatusVoided:
		return true
	}
	return false
}

// String returns the string representation of RequestStatus
func (s RequestStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the request is in a terminal state
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusCompleted || s == RequestStatusVoided
}

// CanVoid returns true if the request can be voided in this status
func (s RequestStatus) CanVoid() bool {
	return s == RequestStatusPending
}

// SettlementRequestItem links a settlement request to one covered
// (waybill, allocation) pair
type SettlementRequestItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	RequestID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	WaybillID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	AllocationID uuid.UUID       `gorm:"type:uuid;not null"`
	Amount       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SettlementRequestItem) TableName() string {
	return "settlement_request_items"
}

// SettlementRequest is the persisted artifact created on commit: one partner's
// sheet frozen into a request. Immutable once created except for its own
// lifecycle status.
type SettlementRequest struct {
	shared.BaseAggregateRoot
	RequestNumber  string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Flow           waybill.Flow            `gorm:"type:varchar(20);not null;index"`
	PartnerID      uuid.UUID               `gorm:"type:uuid;not null;index"`
	PartnerName    string                  `gorm:"type:varchar(200);not null"`
	TaxNumber      string                  `gorm:"type:varchar(50)"`
	CompanyAddress string                  `gorm:"type:varchar(500)"`
	BankAccount    string                  `gorm:"type:varchar(50)"`
	BankName       string                  `gorm:"type:varchar(200)"`
	BranchName     string                  `gorm:"type:varchar(200)"`
	RecordCount    int                     `gorm:"not null"`
	TotalAmount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status         RequestStatus           `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Items          []SettlementRequestItem `gorm:"foreignKey:RequestID;references:ID"`
	VoidedAt       *time.Time
	VoidReason     string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (SettlementRequest) TableName() string {
	return "settlement_requests"
}

// NewSettlementRequestFromSheet freezes a settlement sheet into a request
func NewSettlementRequestFromSheet(flow waybill.Flow, requestNumber string, sheet SettlementSheet) (*SettlementRequest, error) {
	if !flow.IsValid() {
		return nil, shared.NewDomainError("INVALID_FLOW", "Settlement flow is not valid")
	}
	if requestNumber == "" {
		return nil, shared.NewDomainError("INVALID_REQUEST_NUMBER", "Request number cannot be empty")
	}
	if sheet.PartnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Sheet partner ID cannot be empty")
	}
	if len(sheet.Items) == 0 {
		return nil, shared.NewDomainError("EMPTY_SHEET", "Sheet has no contributing allocations")
	}

	req := &SettlementRequest{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RequestNumber:     requestNumber,
		Flow:              flow,
		PartnerID:         sheet.PartnerID,
		PartnerName:       sheet.PartnerName,
		TaxNumber:         sheet.TaxNumber,
		CompanyAddress:    sheet.CompanyAddress,
		BankAccount:       sheet.BankAccount,
		BankName:          sheet.BankName,
		BranchName:        sheet.BranchName,
		RecordCount:       sheet.RecordCount,
		TotalAmount:       sheet.TotalAmount,
		Status:            RequestStatusPending,
		Items:             make([]SettlementRequestItem, 0, len(sheet.Items)),
	}

	now := time.Now()
	for _, item := range sheet.Items {
		req.Items = append(req.Items, SettlementRequestItem{
			ID:           uuid.New(),
			RequestID:    req.ID,
			WaybillID:    item.WaybillID,
			AllocationID: item.AllocationID,
			Amount:       item.Amount,
			CreatedAt:    now,
		})
	}

	req.AddDomainEvent(NewSettlementRequestCreatedEvent(req))

	return req, nil
}

// WaybillIDs returns the distinct waybill ids the request covers
func (r *SettlementRequest) WaybillIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(r.Items))
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		if _, ok := seen[item.WaybillID]; !ok {
			seen[item.WaybillID] = struct{}{}
			ids = append(ids, item.WaybillID)
		}
	}
	return ids
}

// AllocationIDs returns the allocation rows the request covers. Unlike
// waybills, allocations belong to exactly one request.
func (r *SettlementRequest) AllocationIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Items))
	for _, item := range r.Items {
		ids = append(ids, item.AllocationID)
	}
	return ids
}

// Void withdraws a pending request. The caller is responsible for the
// compensating reset of the covered waybills.
func (r *SettlementRequest) Void(reason string) error {
	if !r.Status.CanVoid() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot void request in %s status", r.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Void reason is required")
	}

	now := time.Now()
	r.Status = RequestStatusVoided
	r.VoidedAt = &now
	r.VoidReason = reason
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewSettlementRequestVoidedEvent(r))

	return nil
}

// Complete marks the request as fully processed downstream
func (r *SettlementRequest) Complete() error {
	if r.Status != RequestStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete request in %s status", r.Status))
	}
	r.Status = RequestStatusCompleted
	r.Touch()
	r.IncrementVersion()
	return nil
}
