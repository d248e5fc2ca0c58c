package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// MockWaybillRepository is a mock implementation of waybill.Repository
type MockWaybillRepository struct {
	mock.Mock
}

func (m *MockWaybillRepository) Create(ctx context.Context, record *waybill.WaybillRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockWaybillRepository) FindByID(ctx context.Context, id uuid.UUID) (*waybill.WaybillRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*waybill.WaybillRecord), args.Error(1)
}

func (m *MockWaybillRepository) FindEligible(ctx context.Context, flow waybill.Flow, filter waybill.Filter) ([]waybill.WaybillRecord, int64, error) {
	args := m.Called(ctx, flow, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]waybill.WaybillRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockWaybillRepository) FindEligibleIDs(ctx context.Context, flow waybill.Flow, filter waybill.Filter) ([]uuid.UUID, error) {
	args := m.Called(ctx, flow, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockWaybillRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]waybill.WaybillRecord, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]waybill.WaybillRecord), args.Error(1)
}

func (m *MockWaybillRepository) MarkProcessing(ctx context.Context, flow waybill.Flow, ids []uuid.UUID) error {
	args := m.Called(ctx, flow, ids)
	return args.Error(0)
}

func (m *MockWaybillRepository) MarkAllocationsProcessing(ctx context.Context, flow waybill.Flow, waybillIDs []uuid.UUID, partnerID uuid.UUID) error {
	args := m.Called(ctx, flow, waybillIDs, partnerID)
	return args.Error(0)
}

func (m *MockWaybillRepository) ResetProcessing(ctx context.Context, flow waybill.Flow, ids []uuid.UUID) error {
	args := m.Called(ctx, flow, ids)
	return args.Error(0)
}

func (m *MockWaybillRepository) ReleaseRequestScope(ctx context.Context, flow waybill.Flow, waybillIDs []uuid.UUID, allocationIDs []uuid.UUID) error {
	args := m.Called(ctx, flow, waybillIDs, allocationIDs)
	return args.Error(0)
}

func (m *MockWaybillRepository) FindOrphanIDs(ctx context.Context, flow waybill.Flow) ([]uuid.UUID, error) {
	args := m.Called(ctx, flow)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

// MockRequestRepository is a mock implementation of settlement.RequestRepository
type MockRequestRepository struct {
	mock.Mock
}

func (m *MockRequestRepository) Create(ctx context.Context, request *settlement.SettlementRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

func (m *MockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*settlement.SettlementRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*settlement.SettlementRequest), args.Error(1)
}

func (m *MockRequestRepository) FindAll(ctx context.Context, flow waybill.Flow, filter settlement.RequestFilter) ([]settlement.SettlementRequest, int64, error) {
	args := m.Called(ctx, flow, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]settlement.SettlementRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockRequestRepository) CountCreatedOn(ctx context.Context, flow waybill.Flow, day time.Time) (int64, error) {
	args := m.Called(ctx, flow, day)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepository) Update(ctx context.Context, request *settlement.SettlementRequest) error {
	args := m.Called(ctx, request)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
