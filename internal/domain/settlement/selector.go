package settlement

import (
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// IncludedAllocations decides which of a waybill's partner cost allocations
// participate in a settlement round.
//
// The allocation at the highest level belongs to the party closest to the
// commissioning entity; that party originates the order and is never invoiced
// or paid through this flow, so it is excluded whenever a lower-level party
// exists to settle with. A waybill with a single allocation has no downstream
// party to distinguish, so its sole allocation is always included.
//
// Allocations already past the initial stage are still selected here; the
// orchestrator re-checks the waybill's current status at commit time.
func IncludedAllocations(w *waybill.WaybillRecord) []waybill.PartnerCostAllocation {
	if len(w.Allocations) == 0 {
		return nil
	}
	if len(w.Allocations) == 1 {
		return []waybill.PartnerCostAllocation{w.Allocations[0]}
	}

	maxLevel := w.MaxAllocationLevel()
	included := make([]waybill.PartnerCostAllocation, 0, len(w.Allocations))
	for _, a := range w.Allocations {
		if a.Level < maxLevel {
			included = append(included, a)
		}
	}
	return included
}
