package waybill

import (
	"fmt"
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PartnerCostAllocation is one partner's cost share within a waybill at one level.
// Within one waybill there is at most one allocation per partner.
type PartnerCostAllocation struct {
	ID             uuid.UUID       `gorm:"type:uuid;primary_key"`
	WaybillID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	PartnerName    string          `gorm:"type:varchar(200);not null"`
	TaxNumber      string          `gorm:"type:varchar(50)"`  // Invoicing metadata
	CompanyAddress string          `gorm:"type:varchar(500)"` // Invoicing metadata
	BankAccount    string          `gorm:"type:varchar(50)"`  // Payment metadata
	BankName       string          `gorm:"type:varchar(200)"` // Payment metadata
	BranchName     string          `gorm:"type:varchar(200)"` // Payment metadata
	Level          int             `gorm:"not null"`          // Higher = closer to the commissioning party
	Amount         decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	InvoiceStatus  Stage           `gorm:"type:varchar(20);not null;default:'PENDING'"`
	PaymentStatus  Stage           `gorm:"type:varchar(20);not null;default:'PENDING'"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PartnerCostAllocation) TableName() string {
	return "partner_cost_allocations"
}

// NewPartnerCostAllocation creates a new allocation for a waybill
func NewPartnerCostAllocation(waybillID, partnerID uuid.UUID, partnerName string, level int, amount valueobject.Money) (*PartnerCostAllocation, error) {
	if partnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner ID cannot be empty")
	}
	if partnerName == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER_NAME", "Partner name cannot be empty")
	}
	if level < 1 {
		return nil, shared.NewDomainError("INVALID_LEVEL", "Allocation level must be at least 1")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Allocation amount cannot be negative")
	}
	now := time.Now()
	return &PartnerCostAllocation{
		ID:            uuid.New(),
		WaybillID:     waybillID,
		PartnerID:     partnerID,
		PartnerName:   partnerName,
		Level:         level,
		Amount:        amount.Amount(),
		InvoiceStatus: StagePending,
		PaymentStatus: StagePending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// StatusFor returns the allocation status for the given flow
func (a *PartnerCostAllocation) StatusFor(flow Flow) Stage {
	if flow == FlowInvoice {
		return a.InvoiceStatus
	}
	return a.PaymentStatus
}

// SetStatusFor sets the allocation status for the given flow
func (a *PartnerCostAllocation) SetStatusFor(flow Flow, stage Stage) {
	if flow == FlowInvoice {
		a.InvoiceStatus = stage
	} else {
		a.PaymentStatus = stage
	}
	a.UpdatedAt = time.Now()
}

// GetAmountMoney returns the amount as Money value object
func (a *PartnerCostAllocation) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyCNY(a.Amount)
}

// WaybillRecord represents one transport event, the unit of settlement.
// The settlement engine reads it and, at commit time, moves its flow status.
type WaybillRecord struct {
	shared.BaseAggregateRoot
	WaybillNumber     string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	ProjectID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ProjectName       string                  `gorm:"type:varchar(200);not null"`
	DriverName        string                  `gorm:"type:varchar(100);index"`
	LoadingLocation   string                  `gorm:"type:varchar(200)"`
	UnloadingLocation string                  `gorm:"type:varchar(200)"`
	LoadingDate       time.Time               `gorm:"not null;index"`
	InvoiceStatus     Stage                   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	PaymentStatus     Stage                   `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Allocations       []PartnerCostAllocation `gorm:"foreignKey:WaybillID;references:ID"`
	Remark            string                  `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (WaybillRecord) TableName() string {
	return "waybill_records"
}

// NewWaybillRecord creates a new waybill record
func NewWaybillRecord(waybillNumber string, projectID uuid.UUID, projectName, driverName string, loadingDate time.Time) (*WaybillRecord, error) {
	if waybillNumber == "" {
		return nil, shared.NewDomainError("INVALID_WAYBILL_NUMBER", "Waybill number cannot be empty")
	}
	if len(waybillNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_WAYBILL_NUMBER", "Waybill number cannot exceed 50 characters")
	}
	if projectID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project ID cannot be empty")
	}
	if projectName == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT_NAME", "Project name cannot be empty")
	}
	if loadingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_LOADING_DATE", "Loading date is required")
	}

	w := &WaybillRecord{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		WaybillNumber:     waybillNumber,
		ProjectID:         projectID,
		ProjectName:       projectName,
		DriverName:        driverName,
		LoadingDate:       loadingDate,
		InvoiceStatus:     StagePending,
		PaymentStatus:     StagePending,
		Allocations:       make([]PartnerCostAllocation, 0),
	}

	w.AddDomainEvent(NewWaybillCreatedEvent(w))

	return w, nil
}

// AddAllocation attaches a partner cost allocation to the waybill.
// Enforces the one-allocation-per-partner invariant.
func (w *WaybillRecord) AddAllocation(partnerID uuid.UUID, partnerName string, level int, amount valueobject.Money) (*PartnerCostAllocation, error) {
	for _, existing := range w.Allocations {
		if existing.PartnerID == partnerID {
			return nil, shared.NewDomainError("DUPLICATE_PARTNER", fmt.Sprintf("Partner %s already has an allocation on this waybill", partnerName))
		}
	}
	alloc, err := NewPartnerCostAllocation(w.ID, partnerID, partnerName, level, amount)
	if err != nil {
		return nil, err
	}
	w.Allocations = append(w.Allocations, *alloc)
	w.Touch()
	w.IncrementVersion()
	return alloc, nil
}

// StatusFor returns the waybill status for the given flow
func (w *WaybillRecord) StatusFor(flow Flow) Stage {
	if flow == FlowInvoice {
		return w.InvoiceStatus
	}
	return w.PaymentStatus
}

// SetStatusFor sets the waybill status for the given flow
func (w *WaybillRecord) SetStatusFor(flow Flow, stage Stage) {
	if flow == FlowInvoice {
		w.InvoiceStatus = stage
	} else {
		w.PaymentStatus = stage
	}
	w.Touch()
}

// IsEligible reports whether the waybill can still enter a settlement round
func (w *WaybillRecord) IsEligible(flow Flow) bool {
	return w.StatusFor(flow).IsInitial()
}

// MarkProcessing moves the flow status to Processing.
// A waybill already Processing is accepted as a no-op overwrite; a terminal
// waybill cannot re-enter settlement.
func (w *WaybillRecord) MarkProcessing(flow Flow) error {
	current := w.StatusFor(flow)
	if !current.CanStartProcessing() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start settlement for waybill in %s status", flow.StageLabel(current)))
	}
	if current == StageProcessing {
		return nil
	}
	w.SetStatusFor(flow, StageProcessing)
	w.IncrementVersion()
	w.AddDomainEvent(NewWaybillStatusChangedEvent(w, flow, current, StageProcessing))
	return nil
}

// ResetPending is the compensating action for an orphaned Processing waybill.
// It returns the flow status, and any Processing allocation rows, to the
// initial stage.
func (w *WaybillRecord) ResetPending(flow Flow) error {
	current := w.StatusFor(flow)
	if current != StageProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reset waybill in %s status", flow.StageLabel(current)))
	}
	w.SetStatusFor(flow, StagePending)
	for i := range w.Allocations {
		if w.Allocations[i].StatusFor(flow) == StageProcessing {
			w.Allocations[i].SetStatusFor(flow, StagePending)
		}
	}
	w.IncrementVersion()
	w.AddDomainEvent(NewWaybillStatusChangedEvent(w, flow, current, StagePending))
	return nil
}

// MaxAllocationLevel returns the highest allocation level, or 0 when the
// waybill has no allocations
func (w *WaybillRecord) MaxAllocationLevel() int {
	max := 0
	for _, a := range w.Allocations {
		if a.Level > max {
			max = a.Level
		}
	}
	return max
}

// AllocationForPartner returns the allocation belonging to the given partner
func (w *WaybillRecord) AllocationForPartner(partnerID uuid.UUID) *PartnerCostAllocation {
	for i := range w.Allocations {
		if w.Allocations[i].PartnerID == partnerID {
			return &w.Allocations[i]
		}
	}
	return nil
}

// TotalAllocatedMoney returns the sum of all allocation amounts
func (w *WaybillRecord) TotalAllocatedMoney() valueobject.Money {
	total := decimal.Zero
	for _, a := range w.Allocations {
		total = total.Add(a.Amount)
	}
	return valueobject.NewMoneyCNY(total)
}
