package settlement

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Service is the settlement engine behind the invoice and payment request
// pages. The two flows share every rule; the flow argument is configuration.
type Service struct {
	waybills       waybill.Repository
	requests       settlement.RequestRepository
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	logger         *zap.Logger
}

// NewService creates a settlement service
func NewService(
	waybills waybill.Repository,
	requests settlement.RequestRepository,
	idempotency shared.IdempotencyStore,
	idempotencyCfg shared.IdempotencyConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		waybills:       waybills,
		requests:       requests,
		idempotency:    idempotency,
		idempotencyCfg: idempotencyCfg,
		logger:         logger.Named("settlement"),
	}
}

// ListEligible returns waybills still awaiting settlement in the flow,
// matching the filter, paginated for display
func (s *Service) ListEligible(ctx context.Context, flow waybill.Flow, filter waybill.Filter) ([]waybill.WaybillRecord, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "list_eligible")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String())

	records, total, err := s.waybills.FindEligible(ctx, flow, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, fmt.Errorf("failed to list eligible waybills: %w", err)
	}
	return records, total, nil
}

// PreviewResult is the aggregation shown to the user before confirming
type PreviewResult struct {
	Sheets       []settlement.SettlementSheet `json:"sheets"`
	ProcessedIDs []uuid.UUID                  `json:"processed_ids"`
	TotalAmount  decimal.Decimal              `json:"total_amount"`
}

// Preview resolves the selection scope and aggregates the covered waybills
// into per-partner settlement sheets. Read-only; a failed preview has no
// side effects and can simply be retried.
func (s *Service) Preview(ctx context.Context, flow waybill.Flow, scope settlement.Scope, filter waybill.Filter) (*PreviewResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "preview")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String(), "all_filtered", scope.AllFiltered)

	agg, err := s.aggregateScope(ctx, flow, scope, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	return &PreviewResult{
		Sheets:       agg.Sheets(),
		ProcessedIDs: agg.ProcessedIDs(),
		TotalAmount:  agg.TotalAmount(),
	}, nil
}

// SheetOutcome reports the commit result for one partner sheet. A commit that
// fails partway never reports a blanket failure: each sheet carries its own
// outcome so the user can see which partners committed.
type SheetOutcome struct {
	PartnerID     uuid.UUID       `json:"partner_id"`
	PartnerName   string          `json:"partner_name"`
	RequestID     *uuid.UUID      `json:"request_id,omitempty"`
	RequestNumber string          `json:"request_number,omitempty"`
	RecordCount   int             `json:"record_count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Succeeded     bool            `json:"succeeded"`
	FailedStep    string          `json:"failed_step,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// CommitResult is the outcome of a confirmed settlement
type CommitResult struct {
	Sheets       []SheetOutcome `json:"sheets"`
	ProcessedIDs []uuid.UUID    `json:"processed_ids"`
	Committed    int            `json:"committed"`
	Failed       int            `json:"failed"`
}

// Commit performs the confirmed status transition:
//
//  1. Resolve the selection scope. An all-filtered selection re-queries the
//     eligibility filter server-side; a stale or page-capped client id list
//     is never trusted.
//  2. Re-aggregate authoritatively. Waybills that left the initial stage
//     between preview and confirm are silently dropped, not failed.
//  3. Transition in order: (a) mark contributing waybills Processing,
//     (b) per sheet create one SettlementRequest, (c) per sheet batch-mark
//     that partner's allocation rows Processing.
//
// Steps 1-2 are read-only and fail fast. Once (a) has run, sheet failures in
// (b)/(c) are recorded per sheet and surfaced in the result; the stranded
// waybills are picked up by the reconciliation path.
func (s *Service) Commit(ctx context.Context, flow waybill.Flow, scope settlement.Scope, filter waybill.Filter) (*CommitResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement", "commit")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String(), "all_filtered", scope.AllFiltered)

	agg, err := s.aggregateScope(ctx, flow, scope, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	processedIDs := agg.ProcessedIDs()
	scopeKey := commitScopeKey(flow, processedIDs)

	if s.idempotencyCfg.Enabled && s.idempotency != nil {
		seen, err := s.idempotency.IsProcessed(ctx, scopeKey)
		if err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to check commit idempotency: %w", err)
		}
		if seen {
			return nil, shared.ErrDuplicateCommit
		}
	}

	// Step (a): freeze the waybill set before any sheet is written
	if err := s.waybills.MarkProcessing(ctx, flow, processedIDs); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to mark waybills processing: %w", err)
	}

	if s.idempotencyCfg.Enabled && s.idempotency != nil {
		if _, err := s.idempotency.MarkProcessed(ctx, scopeKey, s.idempotencyCfg.TTL); err != nil {
			// The guard is advisory; the commit itself already started
			s.logger.Warn("failed to record commit idempotency key",
				zap.String("flow", flow.String()),
				zap.String("scope_key", scopeKey),
				zap.Error(err))
		}
	}

	sheets := agg.Sheets()
	result := &CommitResult{
		Sheets:       make([]SheetOutcome, 0, len(sheets)),
		ProcessedIDs: processedIDs,
	}

	day := time.Now()
	seq, err := s.requests.CountCreatedOn(ctx, flow, day)
	if err != nil {
		// Numbering must not strand the frozen waybills; fall back to zero
		// and let the per-day sequence restart from the insert count
		s.logger.Warn("failed to count requests for numbering",
			zap.String("flow", flow.String()), zap.Error(err))
		seq = 0
	}

	for _, sheet := range sheets {
		outcome := s.commitSheet(ctx, flow, sheet, nextRequestNumber(flow, day, seq+int64(result.Committed)+int64(result.Failed)+1))
		if outcome.Succeeded {
			result.Committed++
		} else {
			result.Failed++
		}
		result.Sheets = append(result.Sheets, outcome)
	}

	s.logger.Info("settlement commit finished",
		zap.String("flow", flow.String()),
		zap.Int("waybills", len(processedIDs)),
		zap.Int("sheets_committed", result.Committed),
		zap.Int("sheets_failed", result.Failed))

	return result, nil
}

// commitSheet runs steps (b) and (c) for one partner sheet. The two writes
// for a sheet are logged with enough context for the reconciliation job.
func (s *Service) commitSheet(ctx context.Context, flow waybill.Flow, sheet settlement.SettlementSheet, requestNumber string) SheetOutcome {
	outcome := SheetOutcome{
		PartnerID:   sheet.PartnerID,
		PartnerName: sheet.PartnerName,
		RecordCount: sheet.RecordCount,
		TotalAmount: sheet.TotalAmount,
	}

	request, err := settlement.NewSettlementRequestFromSheet(flow, requestNumber, sheet)
	if err != nil {
		s.logSheetFailure(flow, sheet, "build_request", err)
		outcome.FailedStep = "build_request"
		outcome.Error = err.Error()
		return outcome
	}

	// Step (b): persist the request covering this sheet's waybills
	if err := s.requests.Create(ctx, request); err != nil {
		s.logSheetFailure(flow, sheet, "create_request", err)
		outcome.FailedStep = "create_request"
		outcome.Error = err.Error()
		return outcome
	}

	// Step (c): one batch write for the sheet, not one per allocation, so no
	// other session observes a half-marked sheet longer than necessary
	if err := s.waybills.MarkAllocationsProcessing(ctx, flow, request.WaybillIDs(), sheet.PartnerID); err != nil {
		s.logSheetFailure(flow, sheet, "mark_allocations", err)
		outcome.RequestID = &request.ID
		outcome.RequestNumber = request.RequestNumber
		outcome.FailedStep = "mark_allocations"
		outcome.Error = err.Error()
		return outcome
	}

	request.ClearDomainEvents()
	outcome.RequestID = &request.ID
	outcome.RequestNumber = request.RequestNumber
	outcome.Succeeded = true
	return outcome
}

// aggregateScope resolves the scope to concrete ids and re-runs selection and
// aggregation against authoritative records
func (s *Service) aggregateScope(ctx context.Context, flow waybill.Flow, scope settlement.Scope, filter waybill.Filter) (*settlement.Aggregator, error) {
	ids, err := s.resolveScope(ctx, flow, scope, filter)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, shared.ErrEmptyScope
	}

	records, err := s.waybills.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load waybills for scope: %w", err)
	}

	agg := settlement.NewAggregator()
	dropped := 0
	for i := range records {
		if !records[i].IsEligible(flow) {
			dropped++
			continue
		}
		agg.Add(&records[i])
	}
	if dropped > 0 {
		s.logger.Info("dropped ineligible waybills from scope",
			zap.String("flow", flow.String()),
			zap.Int("dropped", dropped))
	}

	if agg.IsEmpty() {
		return nil, shared.ErrEmptyScope
	}
	return agg, nil
}

// resolveScope turns a selection scope into concrete waybill ids
func (s *Service) resolveScope(ctx context.Context, flow waybill.Flow, scope settlement.Scope, filter waybill.Filter) ([]uuid.UUID, error) {
	if scope.AllFiltered {
		ids, err := s.waybills.FindEligibleIDs(ctx, flow, filter)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve filtered scope: %w", err)
		}
		return ids, nil
	}
	return scope.IDs, nil
}

func (s *Service) logSheetFailure(flow waybill.Flow, sheet settlement.SettlementSheet, step string, err error) {
	ids := make([]string, 0, len(sheet.Items))
	for _, item := range sheet.Items {
		ids = append(ids, item.WaybillID.String())
	}
	s.logger.Error("settlement sheet commit failed",
		zap.String("flow", flow.String()),
		zap.String("step", step),
		zap.String("partner_id", sheet.PartnerID.String()),
		zap.String("partner_name", sheet.PartnerName),
		zap.Strings("waybill_ids", ids),
		zap.Error(err))
}

// commitScopeKey derives a stable idempotency key from the flow and the
// sorted contributing waybill ids
func commitScopeKey(flow waybill.Flow, ids []uuid.UUID) string {
	sorted := make([]string, 0, len(ids))
	for _, id := range ids {
		sorted = append(sorted, id.String())
	}
	sort.Strings(sorted)

	h := sha256.New()
	h.Write([]byte(flow.String()))
	for _, id := range sorted {
		h.Write([]byte(id))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// nextRequestNumber composes a request number like INV-20260901-0003
func nextRequestNumber(flow waybill.Flow, day time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%04d", flow.RequestPrefix(), day.Format("20060102"), seq)
}
