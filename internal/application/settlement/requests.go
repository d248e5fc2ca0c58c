package settlement

import (
	"context"
	"fmt"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/amai2222/shipment-data-view-sub003/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestService owns the lifecycle of persisted settlement requests after
// the commit created them
type RequestService struct {
	requests settlement.RequestRepository
	waybills waybill.Repository
	logger   *zap.Logger
}

// NewRequestService creates a request service
func NewRequestService(requests settlement.RequestRepository, waybills waybill.Repository, logger *zap.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		waybills: waybills,
		logger:   logger.Named("settlement_requests"),
	}
}

// List returns settlement requests for a flow, newest first
func (s *RequestService) List(ctx context.Context, flow waybill.Flow, filter settlement.RequestFilter) ([]settlement.SettlementRequest, int64, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement_request", "list")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String())

	requests, total, err := s.requests.FindAll(ctx, flow, filter)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, 0, fmt.Errorf("failed to list settlement requests: %w", err)
	}
	return requests, total, nil
}

// Get returns one settlement request with its items
func (s *RequestService) Get(ctx context.Context, flow waybill.Flow, id uuid.UUID) (*settlement.SettlementRequest, error) {
	request, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load settlement request: %w", err)
	}
	if request == nil || request.Flow != flow {
		return nil, shared.ErrNotFound
	}
	return request, nil
}

// Void withdraws a pending request and releases its own allocation rows.
// Covered waybills return to the initial stage only when no other live
// request still covers them. If the release fails after the void persisted,
// the stranded waybills surface through the orphan check.
func (s *RequestService) Void(ctx context.Context, flow waybill.Flow, id uuid.UUID, reason string) (*settlement.SettlementRequest, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "settlement_request", "void")
	defer span.End()
	telemetry.SetAttributes(span, "flow", flow.String(), "request_id", id.String())

	request, err := s.Get(ctx, flow, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := request.Void(reason); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.requests.Update(ctx, request); err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to persist void: %w", err)
	}
	request.ClearDomainEvents()

	covered := request.WaybillIDs()
	if err := s.waybills.ReleaseRequestScope(ctx, flow, covered, request.AllocationIDs()); err != nil {
		ids := make([]string, 0, len(covered))
		for _, wid := range covered {
			ids = append(ids, wid.String())
		}
		s.logger.Error("voided request but failed to release waybills",
			zap.String("flow", flow.String()),
			zap.String("request_number", request.RequestNumber),
			zap.Strings("waybill_ids", ids),
			zap.Error(err))
		return request, nil
	}

	s.logger.Info("settlement request voided",
		zap.String("flow", flow.String()),
		zap.String("request_number", request.RequestNumber),
		zap.Int("waybills_released", len(covered)))

	return request, nil
}
