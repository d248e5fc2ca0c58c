package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// GormSettlementRequestRepository implements settlement.RequestRepository
// using GORM
type GormSettlementRequestRepository struct {
	db *gorm.DB
}

// NewGormSettlementRequestRepository creates a new GormSettlementRequestRepository
func NewGormSettlementRequestRepository(db *gorm.DB) *GormSettlementRequestRepository {
	return &GormSettlementRequestRepository{db: db}
}

// Create persists a settlement request with its items
func (r *GormSettlementRequestRepository) Create(ctx context.Context, request *settlement.SettlementRequest) error {
	if err := r.db.WithContext(ctx).Create(request).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a request with its items
func (r *GormSettlementRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.SettlementRequest, error) {
	var request settlement.SettlementRequest
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&request, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

// FindAll lists requests for a flow with filtering, newest first
func (r *GormSettlementRequestRepository) FindAll(ctx context.Context, flow waybill.Flow, filter settlement.RequestFilter) ([]settlement.SettlementRequest, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&settlement.SettlementRequest{}).
		Where("flow = ?", flow.String())

	if filter.PartnerID != nil {
		query = query.Where("partner_id = ?", *filter.PartnerID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", filter.Status.String())
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var requests []settlement.SettlementRequest
	if err := query.
		Preload("Items").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// CountCreatedOn counts requests created on the given day for a flow
func (r *GormSettlementRequestRepository) CountCreatedOn(ctx context.Context, flow waybill.Flow, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&settlement.SettlementRequest{}).
		Where("flow = ? AND created_at >= ? AND created_at < ?", flow.String(), start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Update persists lifecycle changes to a request
func (r *GormSettlementRequestRepository) Update(ctx context.Context, request *settlement.SettlementRequest) error {
	result := r.db.WithContext(ctx).
		Model(&settlement.SettlementRequest{}).
		Where("id = ?", request.ID).
		Updates(map[string]interface{}{
			"status":      request.Status.String(),
			"voided_at":   request.VoidedAt,
			"void_reason": request.VoidReason,
			"version":     request.Version,
			"updated_at":  request.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ settlement.RequestRepository = (*GormSettlementRequestRepository)(nil)
