package settlement

import (
	"sort"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregator groups included allocations into per-partner settlement sheets
// and tracks the global set of contributing waybill ids.
type Aggregator struct {
	sheets       map[uuid.UUID]*SettlementSheet
	processedIDs map[uuid.UUID]struct{}
}

// NewAggregator creates an empty aggregator
func NewAggregator() *Aggregator {
	return &Aggregator{
		sheets:       make(map[uuid.UUID]*SettlementSheet),
		processedIDs: make(map[uuid.UUID]struct{}),
	}
}

// Add runs the allocation selector over one waybill and accumulates the
// included allocations into their partner sheets. A waybill contributing to
// any sheet joins the processed id set exactly once, regardless of how many
// partners it settles with.
func (g *Aggregator) Add(w *waybill.WaybillRecord) {
	included := IncludedAllocations(w)
	if len(included) == 0 {
		return
	}

	for _, alloc := range included {
		sheet, ok := g.sheets[alloc.PartnerID]
		if !ok {
			sheet = newSheet(alloc)
			g.sheets[alloc.PartnerID] = sheet
		}
		sheet.add(w, alloc)
	}
	g.processedIDs[w.ID] = struct{}{}
}

// AddAll accumulates a batch of waybills
func (g *Aggregator) AddAll(records []waybill.WaybillRecord) {
	for i := range records {
		g.Add(&records[i])
	}
}

// Sheets returns the accumulated sheets, ordered by partner name for a stable
// presentation (sheet order carries no semantic meaning)
func (g *Aggregator) Sheets() []SettlementSheet {
	result := make([]SettlementSheet, 0, len(g.sheets))
	for _, sheet := range g.sheets {
		result = append(result, *sheet)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].PartnerName != result[j].PartnerName {
			return result[i].PartnerName < result[j].PartnerName
		}
		return result[i].PartnerID.String() < result[j].PartnerID.String()
	})
	return result
}

// ProcessedIDs returns the union of contributing waybill ids, sorted for
// deterministic output regardless of input order
func (g *Aggregator) ProcessedIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(g.processedIDs))
	for id := range g.processedIDs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
	return ids
}

// TotalAmount returns the grand total across all sheets
func (g *Aggregator) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, sheet := range g.sheets {
		total = total.Add(sheet.TotalAmount)
	}
	return total
}

// IsEmpty reports whether nothing was aggregated
func (g *Aggregator) IsEmpty() bool {
	return len(g.sheets) == 0
}
