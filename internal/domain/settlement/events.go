package settlement

import (
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SettlementRequestCreatedEvent is raised when a commit freezes a sheet into
// a settlement request
type SettlementRequestCreatedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID       `json:"request_id"`
	RequestNumber string          `json:"request_number"`
	Flow          waybill.Flow    `json:"flow"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	PartnerName   string          `json:"partner_name"`
	RecordCount   int             `json:"record_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// EventType returns the event type name
func (e *SettlementRequestCreatedEvent) EventType() string {
	return "SettlementRequestCreated"
}

// NewSettlementRequestCreatedEvent creates a new SettlementRequestCreatedEvent
func NewSettlementRequestCreatedEvent(r *SettlementRequest) *SettlementRequestCreatedEvent {
	return &SettlementRequestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementRequestCreated", r.ID, "SettlementRequest"),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
		Flow:            r.Flow,
		PartnerID:       r.PartnerID,
		PartnerName:     r.PartnerName,
		RecordCount:     r.RecordCount,
		TotalAmount:     r.TotalAmount,
	}
}

// SettlementRequestVoidedEvent is raised when a pending request is withdrawn
type SettlementRequestVoidedEvent struct {
	shared.BaseDomainEvent
	RequestID     uuid.UUID    `json:"request_id"`
	RequestNumber string       `json:"request_number"`
	Flow          waybill.Flow `json:"flow"`
	PartnerID     uuid.UUID    `json:"partner_id"`
	VoidReason    string       `json:"void_reason"`
	VoidedAt      time.Time    `json:"voided_at"`
}

// EventType returns the event type name
func (e *SettlementRequestVoidedEvent) EventType() string {
	return "SettlementRequestVoided"
}

// NewSettlementRequestVoidedEvent creates a new SettlementRequestVoidedEvent
func NewSettlementRequestVoidedEvent(r *SettlementRequest) *SettlementRequestVoidedEvent {
	voidedAt := time.Now()
	if r.VoidedAt != nil {
		voidedAt = *r.VoidedAt
	}
	return &SettlementRequestVoidedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("SettlementRequestVoided", r.ID, "SettlementRequest"),
		RequestID:       r.ID,
		RequestNumber:   r.RequestNumber,
		Flow:            r.Flow,
		PartnerID:       r.PartnerID,
		VoidReason:      r.VoidReason,
		VoidedAt:        voidedAt,
	}
}
