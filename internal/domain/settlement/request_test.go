package settlement

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

func newTestSheet(t *testing.T) SettlementSheet {
	t.Helper()

	w1 := newTestWaybill(t, "WB-2026-0001")
	addAllocation(t, w1, uuid.New(), "Carrier A", 1, 1000)

	w2 := newTestWaybill(t, "WB-2026-0002")
	addAllocation(t, w2, w1.Allocations[0].PartnerID, "Carrier A", 1, 500)

	agg := NewAggregator()
	agg.Add(w1)
	agg.Add(w2)

	sheets := agg.Sheets()
	require.Len(t, sheets, 1)
	return sheets[0]
}

func newTestRequest(t *testing.T) *SettlementRequest {
	t.Helper()
	req, err := NewSettlementRequestFromSheet(waybill.FlowInvoice, "INV-20260901-0001", newTestSheet(t))
	require.NoError(t, err)
	req.ClearDomainEvents()
	return req
}

func TestNewSettlementRequestFromSheet(t *testing.T) {
	t.Run("freezes the sheet into a pending request", func(t *testing.T) {
		sheet := newTestSheet(t)

		req, err := NewSettlementRequestFromSheet(waybill.FlowInvoice, "INV-20260901-0001", sheet)
		require.NoError(t, err)

		assert.Equal(t, RequestStatusPending, req.Status)
		assert.Equal(t, sheet.PartnerID, req.PartnerID)
		assert.Equal(t, "Carrier A", req.PartnerName)
		assert.Equal(t, 2, req.RecordCount)
		assert.True(t, req.TotalAmount.Equal(decimal.NewFromInt(1500)))
		assert.Len(t, req.Items, 2)
		assert.Len(t, req.GetDomainEvents(), 1)
	})

	t.Run("rejects an invalid flow", func(t *testing.T) {
		_, err := NewSettlementRequestFromSheet(waybill.Flow("REFUND"), "INV-20260901-0001", newTestSheet(t))
		assert.Error(t, err)
	})

	t.Run("rejects an empty request number", func(t *testing.T) {
		_, err := NewSettlementRequestFromSheet(waybill.FlowInvoice, "", newTestSheet(t))
		assert.Error(t, err)
	})

	t.Run("rejects a sheet without items", func(t *testing.T) {
		sheet := newTestSheet(t)
		sheet.Items = nil

		_, err := NewSettlementRequestFromSheet(waybill.FlowInvoice, "INV-20260901-0001", sheet)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "EMPTY_SHEET", domainErr.Code)
	})
}

func TestSettlementRequestWaybillIDs(t *testing.T) {
	req := newTestRequest(t)

	ids := req.WaybillIDs()
	assert.Len(t, ids, 2)

	// A waybill covered by two items still appears once
	req.Items = append(req.Items, req.Items[0])
	assert.Len(t, req.WaybillIDs(), 2)
}

func TestSettlementRequestVoid(t *testing.T) {
	t.Run("voids a pending request", func(t *testing.T) {
		req := newTestRequest(t)
		versionBefore := req.GetVersion()

		err := req.Void("duplicate submission")
		require.NoError(t, err)

		assert.Equal(t, RequestStatusVoided, req.Status)
		assert.Equal(t, "duplicate submission", req.VoidReason)
		require.NotNil(t, req.VoidedAt)
		assert.Equal(t, versionBefore+1, req.GetVersion())
		assert.Len(t, req.GetDomainEvents(), 1)
	})

	t.Run("requires a reason", func(t *testing.T) {
		req := newTestRequest(t)
		assert.Error(t, req.Void(""))
		assert.Equal(t, RequestStatusPending, req.Status)
	})

	t.Run("rejects terminal states", func(t *testing.T) {
		req := newTestRequest(t)
		require.NoError(t, req.Complete())

		err := req.Void("too late")
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})
}

func TestSettlementRequestComplete(t *testing.T) {
	req := newTestRequest(t)

	require.NoError(t, req.Complete())
	assert.Equal(t, RequestStatusCompleted, req.Status)

	assert.Error(t, req.Complete())
}

func TestRequestStatus(t *testing.T) {
	assert.True(t, RequestStatusPending.CanVoid())
	assert.False(t, RequestStatusCompleted.CanVoid())
	assert.False(t, RequestStatusVoided.CanVoid())

	assert.False(t, RequestStatusPending.IsTerminal())
	assert.True(t, RequestStatusCompleted.IsTerminal())
	assert.True(t, RequestStatusVoided.IsTerminal())

	assert.False(t, RequestStatus("DRAFT").IsValid())
}
