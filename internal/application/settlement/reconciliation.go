package settlement

import (
	"context"
	"fmt"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReconciliationService resolves the detectable orphan state a failed commit
// leaves behind: waybills marked Processing with no settlement request
// referencing them. Orphans are either listed for an operator or reset to
// the initial stage as the compensating action.
type ReconciliationService struct {
	waybills waybill.Repository
	logger   *zap.Logger
}

// NewReconciliationService creates a reconciliation service
func NewReconciliationService(waybills waybill.Repository, logger *zap.Logger) *ReconciliationService {
	return &ReconciliationService{
		waybills: waybills,
		logger:   logger.Named("reconciliation"),
	}
}

// FindOrphans lists waybill ids stuck in Processing for the flow with no
// covering settlement request
func (s *ReconciliationService) FindOrphans(ctx context.Context, flow waybill.Flow) ([]uuid.UUID, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "find_orphans")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String())

	ids, err := s.waybills.FindOrphanIDs(ctx, flow)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to find orphan waybills: %w", err)
	}
	return ids, nil
}

// ResetOrphans applies the compensating action: orphaned waybills and their
// Processing allocation rows return to the initial stage. Running it twice
// is harmless; the second pass finds nothing.
func (s *ReconciliationService) ResetOrphans(ctx context.Context, flow waybill.Flow) (int, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "reconciliation", "reset_orphans")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String())

	ids, err := s.waybills.FindOrphanIDs(ctx, flow)
	if err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to find orphan waybills: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.waybills.ResetProcessing(ctx, flow, ids); err != nil {
		telemetry.RecordError(span, err)
		return 0, fmt.Errorf("failed to reset orphan waybills: %w", err)
	}

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}
	s.logger.Warn("reset orphaned waybills to initial stage",
		zap.String("flow", flow.String()),
		zap.Int("count", len(ids)),
		zap.Strings("waybill_ids", idStrings))

	return len(ids), nil
}

// Run sweeps both flows once. Used by the background scheduler.
func (s *ReconciliationService) Run(ctx context.Context) error {
	for _, flow := range []waybill.Flow{waybill.FlowInvoice, waybill.FlowPayment} {
		if _, err := s.ResetOrphans(ctx, flow); err != nil {
			return err
		}
	}
	return nil
}
