package waybill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFlow(t *testing.T) {
	t.Run("parses route segments case-insensitively", func(t *testing.T) {
		for _, input := range []string{"invoice", "INVOICE", "Invoice"} {
			flow, err := ParseFlow(input)
			assert.NoError(t, err)
			assert.Equal(t, FlowInvoice, flow)
		}

		flow, err := ParseFlow("payment")
		assert.NoError(t, err)
		assert.Equal(t, FlowPayment, flow)
	})

	t.Run("rejects unknown flows", func(t *testing.T) {
		_, err := ParseFlow("refund")
		assert.Error(t, err)

		_, err = ParseFlow("")
		assert.Error(t, err)
	})
}

func TestFlowRequestPrefix(t *testing.T) {
	assert.Equal(t, "INV", FlowInvoice.RequestPrefix())
	assert.Equal(t, "APP", FlowPayment.RequestPrefix())
}

func TestStageTransitions(t *testing.T) {
	t.Run("pending is the only initial stage", func(t *testing.T) {
		assert.True(t, StagePending.IsInitial())
		assert.False(t, StageProcessing.IsInitial())
		assert.False(t, StageCompleted.IsInitial())
	})

	t.Run("completed is terminal", func(t *testing.T) {
		assert.False(t, StagePending.IsTerminal())
		assert.False(t, StageProcessing.IsTerminal())
		assert.True(t, StageCompleted.IsTerminal())
	})

	t.Run("processing can be overwritten by a racing commit", func(t *testing.T) {
		assert.True(t, StagePending.CanStartProcessing())
		assert.True(t, StageProcessing.CanStartProcessing())
		assert.False(t, StageCompleted.CanStartProcessing())
	})

	t.Run("rejects unknown stages", func(t *testing.T) {
		assert.False(t, Stage("SHIPPED").IsValid())
		assert.True(t, StageProcessing.IsValid())
	})
}

func TestStageLabels(t *testing.T) {
	t.Run("invoice flow labels", func(t *testing.T) {
		assert.Equal(t, "Uninvoiced", FlowInvoice.StageLabel(StagePending))
		assert.Equal(t, "Invoicing", FlowInvoice.StageLabel(StageProcessing))
		assert.Equal(t, "Invoiced", FlowInvoice.StageLabel(StageCompleted))
	})

	t.Run("payment flow labels", func(t *testing.T) {
		assert.Equal(t, "Unpaid", FlowPayment.StageLabel(StagePending))
		assert.Equal(t, "Paying", FlowPayment.StageLabel(StageProcessing))
		assert.Equal(t, "Paid", FlowPayment.StageLabel(StageCompleted))
	})
}
