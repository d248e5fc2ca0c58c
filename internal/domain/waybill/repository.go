package waybill

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Filter defines the query filter a caller's filter bar produces.
// All fields combine with AND; nil fields are ignored.
type Filter struct {
	ProjectID     *uuid.UUID // Filter by project
	PartnerID     *uuid.UUID // Filter by a partner appearing in the allocations
	DriverName    *string    // Filter by driver (exact)
	WaybillNumber *string    // Filter by waybill number (exact)
	Keyword       *string    // Free-text match on number, driver, locations
	LoadingFrom   *time.Time // Loading date range start
	LoadingTo     *time.Time // Loading date range end
	Page          int
	PageSize      int
}

// Repository defines waybill persistence as seen by the settlement engine.
// The engine reads records and moves their flow status; waybill entry itself
// is owned by the surrounding application.
type Repository interface {
	// Create persists a new waybill record with its allocations
	Create(ctx context.Context, record *WaybillRecord) error

	// FindByID finds a waybill with its allocations
	FindByID(ctx context.Context, id uuid.UUID) (*WaybillRecord, error)

	// FindEligible returns waybills still in the initial stage for the flow,
	// matching the filter, paginated for display. Total counts every match.
	FindEligible(ctx context.Context, flow Flow, filter Filter) ([]WaybillRecord, int64, error)

	// FindEligibleIDs resolves every matching id for the flow and filter,
	// ignoring pagination. Used to resolve an all-filtered selection scope.
	FindEligibleIDs(ctx context.Context, flow Flow, filter Filter) ([]uuid.UUID, error)

	// FindByIDs loads full records, with allocations, for the given ids
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]WaybillRecord, error)

	// MarkProcessing moves the flow status of the given waybills to Processing.
	// Rows already Processing are overwritten idempotently; terminal rows are
	// left untouched.
	MarkProcessing(ctx context.Context, flow Flow, ids []uuid.UUID) error

	// MarkAllocationsProcessing moves the flow status of the allocation rows
	// belonging to one partner across the given waybills, as a single batch
	// write per settlement sheet.
	MarkAllocationsProcessing(ctx context.Context, flow Flow, waybillIDs []uuid.UUID, partnerID uuid.UUID) error

	// ResetProcessing is the compensating write for orphaned waybills: flow
	// status and Processing allocation rows return to the initial stage.
	ResetProcessing(ctx context.Context, flow Flow, ids []uuid.UUID) error

	// ReleaseRequestScope is the compensating write for a voided request.
	// Only the request's own allocation rows are reset; a waybill returns to
	// the initial stage only when no live request still covers it. A waybill
	// settled across several partners can appear in several requests, and
	// voiding one must not reopen the others.
	ReleaseRequestScope(ctx context.Context, flow Flow, waybillIDs []uuid.UUID, allocationIDs []uuid.UUID) error

	// FindOrphanIDs returns ids of waybills stuck in Processing for the flow
	// with no settlement request item referencing them.
	FindOrphanIDs(ctx context.Context, flow Flow) ([]uuid.UUID, error)
}
