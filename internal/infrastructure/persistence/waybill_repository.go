package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// statusColumn maps a settlement flow to the status column it owns on both
// waybill_records and partner_cost_allocations.
func statusColumn(flow waybill.Flow) string {
	if flow == waybill.FlowInvoice {
		return "invoice_status"
	}
	return "payment_status"
}

// GormWaybillRepository implements waybill.Repository using GORM
type GormWaybillRepository struct {
	db *gorm.DB
}

// NewGormWaybillRepository creates a new GormWaybillRepository
func NewGormWaybillRepository(db *gorm.DB) *GormWaybillRepository {
	return &GormWaybillRepository{db: db}
}

// Create persists a waybill record with its allocations
func (r *GormWaybillRepository) Create(ctx context.Context, record *waybill.WaybillRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindByID finds a waybill with its allocations
func (r *GormWaybillRepository) FindByID(ctx context.Context, id uuid.UUID) (*waybill.WaybillRecord, error) {
	var record waybill.WaybillRecord
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindEligible returns waybills still in the initial stage for the flow,
// matching the filter, newest loading date first
func (r *GormWaybillRepository) FindEligible(ctx context.Context, flow waybill.Flow, filter waybill.Filter) ([]waybill.WaybillRecord, int64, error) {
	query := r.eligibleQuery(ctx, flow, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var records []waybill.WaybillRecord
	if err := query.
		Preload("Allocations").
		Order("loading_date DESC, waybill_number ASC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// FindEligibleIDs resolves every matching id for the flow and filter,
// ignoring pagination
func (r *GormWaybillRepository) FindEligibleIDs(ctx context.Context, flow waybill.Flow, filter waybill.Filter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.eligibleQuery(ctx, flow, filter).
		Order("loading_date DESC, waybill_number ASC").
		Pluck("waybill_records.id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// FindByIDs loads full records, with allocations, for the given ids
func (r *GormWaybillRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]waybill.WaybillRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var records []waybill.WaybillRecord
	if err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("id IN ?", ids).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkProcessing moves the flow status of the given waybills to Processing.
// The WHERE guard excludes terminal rows; rows already Processing are
// overwritten idempotently. When a waybill turned terminal since the scope
// was resolved, the whole batch rolls back so no row is left half-marked.
func (r *GormWaybillRepository) MarkProcessing(ctx context.Context, flow waybill.Flow, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	col := statusColumn(flow)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&waybill.WaybillRecord{}).
			Where("id IN ? AND "+col+" IN ?", ids, []string{
				waybill.StagePending.String(),
				waybill.StageProcessing.String(),
			}).
			Updates(map[string]interface{}{
				col:          waybill.StageProcessing.String(),
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected < int64(len(ids)) {
			return shared.NewDomainError("INVALID_STATE",
				"One or more waybills are no longer eligible for settlement")
		}
		return nil
	})
}

// MarkAllocationsProcessing moves one partner's allocation rows across the
// given waybills to Processing in a single batch write
func (r *GormWaybillRepository) MarkAllocationsProcessing(ctx context.Context, flow waybill.Flow, waybillIDs []uuid.UUID, partnerID uuid.UUID) error {
	if len(waybillIDs) == 0 {
		return nil
	}
	col := statusColumn(flow)
	return r.db.WithContext(ctx).
		Model(&waybill.PartnerCostAllocation{}).
		Where("waybill_id IN ? AND partner_id = ?", waybillIDs, partnerID).
		Updates(map[string]interface{}{
			col:          waybill.StageProcessing.String(),
			"updated_at": time.Now(),
		}).Error
}

// ResetProcessing returns Processing waybills, and their Processing
// allocation rows, to the initial stage
func (r *GormWaybillRepository) ResetProcessing(ctx context.Context, flow waybill.Flow, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	col := statusColumn(flow)
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&waybill.WaybillRecord{}).
			Where("id IN ? AND "+col+" = ?", ids, waybill.StageProcessing.String()).
			Updates(map[string]interface{}{
				col:          waybill.StagePending.String(),
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			}).Error; err != nil {
			return err
		}
		return tx.Model(&waybill.PartnerCostAllocation{}).
			Where("waybill_id IN ? AND "+col+" = ?", ids, waybill.StageProcessing.String()).
			Updates(map[string]interface{}{
				col:          waybill.StagePending.String(),
				"updated_at": now,
			}).Error
	})
}

// ReleaseRequestScope resets a voided request's own allocation rows, then
// resets each waybill only when no live request still covers it. The void
// must already be persisted so the voided request no longer counts as cover.
func (r *GormWaybillRepository) ReleaseRequestScope(ctx context.Context, flow waybill.Flow, waybillIDs []uuid.UUID, allocationIDs []uuid.UUID) error {
	if len(waybillIDs) == 0 && len(allocationIDs) == 0 {
		return nil
	}
	col := statusColumn(flow)
	now := time.Now()
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(allocationIDs) > 0 {
			if err := tx.Model(&waybill.PartnerCostAllocation{}).
				Where("id IN ? AND "+col+" = ?", allocationIDs, waybill.StageProcessing.String()).
				Updates(map[string]interface{}{
					col:          waybill.StagePending.String(),
					"updated_at": now,
				}).Error; err != nil {
				return err
			}
		}
		if len(waybillIDs) == 0 {
			return nil
		}
		return tx.Model(&waybill.WaybillRecord{}).
			Where("id IN ? AND "+col+" = ?", waybillIDs, waybill.StageProcessing.String()).
			Where(`NOT EXISTS (
				SELECT 1 FROM settlement_request_items i
				JOIN settlement_requests r ON r.id = i.request_id
				WHERE i.waybill_id = waybill_records.id
				  AND r.flow = ?
				  AND r.status <> ?
			)`, flow.String(), "VOIDED").
			Updates(map[string]interface{}{
				col:          waybill.StagePending.String(),
				"version":    gorm.Expr("version + 1"),
				"updated_at": now,
			}).Error
	})
}

// FindOrphanIDs returns waybills stuck in Processing for the flow with no
// live settlement request item covering them. Voided requests do not count
// as cover.
func (r *GormWaybillRepository) FindOrphanIDs(ctx context.Context, flow waybill.Flow) ([]uuid.UUID, error) {
	col := statusColumn(flow)
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&waybill.WaybillRecord{}).
		Where(col+" = ?", waybill.StageProcessing.String()).
		Where(`NOT EXISTS (
			SELECT 1 FROM settlement_request_items i
			JOIN settlement_requests r ON r.id = i.request_id
			WHERE i.waybill_id = waybill_records.id
			  AND r.flow = ?
			  AND r.status <> ?
		)`, flow.String(), "VOIDED").
		Pluck("waybill_records.id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// eligibleQuery builds the base query for eligible waybills: initial stage
// for the flow plus the caller's filter
func (r *GormWaybillRepository) eligibleQuery(ctx context.Context, flow waybill.Flow, filter waybill.Filter) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&waybill.WaybillRecord{}).
		Where(statusColumn(flow)+" = ?", waybill.StagePending.String())

	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.PartnerID != nil {
		query = query.Where(`EXISTS (
			SELECT 1 FROM partner_cost_allocations a
			WHERE a.waybill_id = waybill_records.id AND a.partner_id = ?
		)`, *filter.PartnerID)
	}
	if filter.DriverName != nil {
		query = query.Where("driver_name = ?", *filter.DriverName)
	}
	if filter.WaybillNumber != nil {
		query = query.Where("waybill_number = ?", *filter.WaybillNumber)
	}
	if filter.Keyword != nil && *filter.Keyword != "" {
		kw := "%" + *filter.Keyword + "%"
		query = query.Where(
			"waybill_number ILIKE ? OR driver_name ILIKE ? OR loading_location ILIKE ? OR unloading_location ILIKE ?",
			kw, kw, kw, kw)
	}
	if filter.LoadingFrom != nil {
		query = query.Where("loading_date >= ?", *filter.LoadingFrom)
	}
	if filter.LoadingTo != nil {
		query = query.Where("loading_date <= ?", *filter.LoadingTo)
	}

	return query
}

var _ waybill.Repository = (*GormWaybillRepository)(nil)
