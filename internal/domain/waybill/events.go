package waybill

import (
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/google/uuid"
)

// WaybillCreatedEvent is raised when a new waybill record is created
type WaybillCreatedEvent struct {
	shared.BaseDomainEvent
	WaybillID     uuid.UUID `json:"waybill_id"`
	WaybillNumber string    `json:"waybill_number"`
	ProjectID     uuid.UUID `json:"project_id"`
	ProjectName   string    `json:"project_name"`
	LoadingDate   time.Time `json:"loading_date"`
}

// EventType returns the event type name
func (e *WaybillCreatedEvent) EventType() string {
	return "WaybillCreated"
}

// NewWaybillCreatedEvent creates a new WaybillCreatedEvent
func NewWaybillCreatedEvent(w *WaybillRecord) *WaybillCreatedEvent {
	return &WaybillCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WaybillCreated", w.ID, "WaybillRecord"),
		WaybillID:       w.ID,
		WaybillNumber:   w.WaybillNumber,
		ProjectID:       w.ProjectID,
		ProjectName:     w.ProjectName,
		LoadingDate:     w.LoadingDate,
	}
}

// WaybillStatusChangedEvent is raised when a waybill's flow status moves
type WaybillStatusChangedEvent struct {
	shared.BaseDomainEvent
	WaybillID     uuid.UUID `json:"waybill_id"`
	WaybillNumber string    `json:"waybill_number"`
	Flow          Flow      `json:"flow"`
	FromStage     Stage     `json:"from_stage"`
	ToStage       Stage     `json:"to_stage"`
}

// EventType returns the event type name
func (e *WaybillStatusChangedEvent) EventType() string {
	return "WaybillStatusChanged"
}

// NewWaybillStatusChangedEvent creates a new WaybillStatusChangedEvent
func NewWaybillStatusChangedEvent(w *WaybillRecord, flow Flow, from, to Stage) *WaybillStatusChangedEvent {
	return &WaybillStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("WaybillStatusChanged", w.ID, "WaybillRecord"),
		WaybillID:       w.ID,
		WaybillNumber:   w.WaybillNumber,
		Flow:            flow,
		FromStage:       from,
		ToStage:         to,
	}
}
