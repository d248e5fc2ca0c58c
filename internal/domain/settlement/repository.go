package settlement

import (
	"context"
	"time"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
	"github.com/google/uuid"
)

// RequestFilter defines filtering options for settlement request queries
type RequestFilter struct {
	PartnerID *uuid.UUID     // Filter by partner
	Status    *RequestStatus // Filter by lifecycle status
	From      *time.Time     // Filter by creation date range start
	To        *time.Time     // Filter by creation date range end
	Page      int
	PageSize  int
}

// RequestRepository defines settlement request persistence
type RequestRepository interface {
	// Create persists a new settlement request with its items
	Create(ctx context.Context, request *SettlementRequest) error

	// FindByID finds a request with its items
	FindByID(ctx context.Context, id uuid.UUID) (*SettlementRequest, error)

	// FindAll lists requests for a flow with filtering, newest first
	FindAll(ctx context.Context, flow waybill.Flow, filter RequestFilter) ([]SettlementRequest, int64, error)

	// CountCreatedOn counts requests created on the given day for a flow,
	// used to derive the next request-number sequence
	CountCreatedOn(ctx context.Context, flow waybill.Flow, day time.Time) (int64, error)

	// Update persists lifecycle changes (void, complete)
	Update(ctx context.Context, request *SettlementRequest) error
}
