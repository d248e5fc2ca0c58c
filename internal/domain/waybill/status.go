package waybill

import (
	"fmt"
	"strings"
)

// Flow identifies which settlement flow a status belongs to.
// The invoice and payment flows share one engine; the flow is configuration.
type Flow string

const (
	FlowInvoice Flow = "INVOICE"
	FlowPayment Flow = "PAYMENT"
)

// IsValid checks if the flow is a known settlement flow
func (f Flow) IsValid() bool {
	return f == FlowInvoice || f == FlowPayment
}

// String returns the string representation of the flow
func (f Flow) String() string {
	return string(f)
}

// ParseFlow parses a flow from a route segment like "invoice" or "payment"
func ParseFlow(s string) (Flow, error) {
	switch strings.ToUpper(s) {
	case "INVOICE":
		return FlowInvoice, nil
	case "PAYMENT":
		return FlowPayment, nil
	}
	return "", fmt.Errorf("unknown settlement flow: %q", s)
}

// RequestPrefix returns the request-number prefix used by the flow
func (f Flow) RequestPrefix() string {
	if f == FlowInvoice {
		return "INV"
	}
	return "APP"
}

// Stage is the closed status variant shared by both flows.
// Per flow it reads as Uninvoiced/Invoicing/Invoiced or Unpaid/Paying/Paid.
type Stage string

const (
	StagePending    Stage = "PENDING"    // Initial state, eligible for settlement
	StageProcessing Stage = "PROCESSING" // Covered by an open settlement request
	StageCompleted  Stage = "COMPLETED"  // Invoiced / paid, terminal
)

// IsValid checks if the stage is a valid Stage
func (s Stage) IsValid() bool {
	switch s {
	case StagePending, StageProcessing, StageCompleted:
		return true
	}
	return false
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// IsInitial returns true if the stage is the eligible initial state
func (s Stage) IsInitial() bool {
	return s == StagePending
}

// IsTerminal returns true if the stage is terminal
func (s Stage) IsTerminal() bool {
	return s == StageCompleted
}

// CanStartProcessing returns true if a commit may move this stage to Processing.
// Processing itself is allowed: two commits racing on the same waybill both move
// it to the same target, so the second write is an idempotent overwrite.
func (s Stage) CanStartProcessing() bool {
	return s == StagePending || s == StageProcessing
}

// StageLabel returns the human-readable label of a stage in this flow
func (f Flow) StageLabel(s Stage) string {
	if f == FlowInvoice {
		switch s {
		case StagePending:
			return "Uninvoiced"
		case StageProcessing:
			return "Invoicing"
		case StageCompleted:
			return "Invoiced"
		}
		return string(s)
	}
	switch s {
	case StagePending:
		return "Unpaid"
	case StageProcessing:
		return "Paying"
	case StageCompleted:
		return "Paid"
	}
	return string(s)
}
