package settlement

import (
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SheetItem is one contributing (waybill, allocation) pair on a sheet
type SheetItem struct {
	WaybillID     uuid.UUID       `json:"waybill_id"`
	WaybillNumber string          `json:"waybill_number"`
	AllocationID  uuid.UUID       `json:"allocation_id"`
	Level         int             `json:"level"`
	Amount        decimal.Decimal `json:"amount"`
}

// SettlementSheet is the per-partner working aggregate built during preview
// and commit. It is never persisted; it is the blueprint for a
// SettlementRequest.
type SettlementSheet struct {
	PartnerID      uuid.UUID       `json:"partner_id"`
	PartnerName    string          `json:"partner_name"`
	TaxNumber      string          `json:"tax_number,omitempty"`      // Invoicing metadata
	CompanyAddress string          `json:"company_address,omitempty"` // Invoicing metadata
	BankAccount    string          `json:"bank_account,omitempty"`    // Payment metadata
	BankName       string          `json:"bank_name,omitempty"`       // Payment metadata
	BranchName     string          `json:"branch_name,omitempty"`     // Payment metadata
	RecordCount    int             `json:"record_count"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	Items          []SheetItem     `json:"items"`

	// seenWaybills guards record_count: a waybill counts once per sheet
	seenWaybills map[uuid.UUID]struct{}
}

// newSheet seeds a sheet with partner identity and metadata taken from the
// first allocation seen for the partner
func newSheet(a waybill.PartnerCostAllocation) *SettlementSheet {
	return &SettlementSheet{
		PartnerID:      a.PartnerID,
		PartnerName:    a.PartnerName,
		TaxNumber:      a.TaxNumber,
		CompanyAddress: a.CompanyAddress,
		BankAccount:    a.BankAccount,
		BankName:       a.BankName,
		BranchName:     a.BranchName,
		TotalAmount:    decimal.Zero,
		Items:          make([]SheetItem, 0),
		seenWaybills:   make(map[uuid.UUID]struct{}),
	}
}

// add accumulates one included allocation of the given waybill into the sheet
func (s *SettlementSheet) add(w *waybill.WaybillRecord, a waybill.PartnerCostAllocation) {
	if _, seen := s.seenWaybills[w.ID]; !seen {
		s.seenWaybills[w.ID] = struct{}{}
		s.RecordCount++
	}
	s.TotalAmount = s.TotalAmount.Add(a.Amount)
	s.Items = append(s.Items, SheetItem{
		WaybillID:     w.ID,
		WaybillNumber: w.WaybillNumber,
		AllocationID:  a.ID,
		Level:         a.Level,
		Amount:        a.Amount,
	})
}

// WaybillIDs returns the distinct waybill ids contributing to this sheet
func (s *SettlementSheet) WaybillIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.seenWaybills))
	seen := make(map[uuid.UUID]struct{}, len(s.seenWaybills))
	for _, item := range s.Items {
		if _, ok := seen[item.WaybillID]; !ok {
			seen[item.WaybillID] = struct{}{}
			ids = append(ids, item.WaybillID)
		}
	}
	return ids
}
