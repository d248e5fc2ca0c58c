package settlement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared/valueobject"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

func newTestWaybill(t *testing.T, number string) *waybill.WaybillRecord {
	t.Helper()
	w, err := waybill.NewWaybillRecord(number, uuid.New(), "Coastal Freight", "Zhang Wei", time.Now())
	require.NoError(t, err)
	w.ClearDomainEvents()
	return w
}

func addAllocation(t *testing.T, w *waybill.WaybillRecord, partnerID uuid.UUID, name string, level int, amount float64) *waybill.PartnerCostAllocation {
	t.Helper()
	a, err := w.AddAllocation(partnerID, name, level, valueobject.NewMoneyCNYFromFloat(amount))
	require.NoError(t, err)
	return a
}

func TestIncludedAllocations(t *testing.T) {
	t.Run("includes the sole allocation of a single-partner waybill", func(t *testing.T) {
		w := newTestWaybill(t, "WB-2026-0001")
		carrier := uuid.New()
		addAllocation(t, w, carrier, "Carrier A", 1, 1000)

		included := IncludedAllocations(w)

		require.Len(t, included, 1)
		assert.Equal(t, carrier, included[0].PartnerID)
	})

	t.Run("excludes the top-level allocation when lower levels exist", func(t *testing.T) {
		w := newTestWaybill(t, "WB-2026-0002")
		carrier := uuid.New()
		broker := uuid.New()
		principal := uuid.New()
		addAllocation(t, w, carrier, "Carrier A", 1, 1000)
		addAllocation(t, w, broker, "Broker B", 2, 1050)
		addAllocation(t, w, principal, "Principal C", 3, 1100)

		included := IncludedAllocations(w)

		require.Len(t, included, 2)
		ids := []uuid.UUID{included[0].PartnerID, included[1].PartnerID}
		assert.Contains(t, ids, carrier)
		assert.Contains(t, ids, broker)
		assert.NotContains(t, ids, principal)
	})

	t.Run("excludes a level that ties for the maximum", func(t *testing.T) {
		w := newTestWaybill(t, "WB-2026-0003")
		addAllocation(t, w, uuid.New(), "Carrier A", 1, 1000)
		addAllocation(t, w, uuid.New(), "Broker B", 2, 1050)
		addAllocation(t, w, uuid.New(), "Broker C", 2, 1060)

		included := IncludedAllocations(w)

		require.Len(t, included, 1)
		assert.Equal(t, 1, included[0].Level)
	})

	t.Run("returns nothing for a waybill without allocations", func(t *testing.T) {
		w := newTestWaybill(t, "WB-2026-0004")
		assert.Nil(t, IncludedAllocations(w))
	})

	t.Run("includes allocations already past the initial stage", func(t *testing.T) {
		w := newTestWaybill(t, "WB-2026-0005")
		addAllocation(t, w, uuid.New(), "Carrier A", 1, 1000)
		w.Allocations[0].SetStatusFor(waybill.FlowInvoice, waybill.StageProcessing)

		included := IncludedAllocations(w)
		require.Len(t, included, 1)
	})
}
