package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/amai2222/shipment-data-view-sub003/internal/domain/settlement"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/shared"
	"github.com/amai2222/shipment-data-view-sub003/internal/domain/waybill"
)

// newMockRequestRepository creates a GormSettlementRequestRepository with a mocked SQL connection
func newMockRequestRepository(t *testing.T) (*GormSettlementRequestRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSettlementRequestRepository(gormDB), mock, mockDB
}

func TestGormSettlementRequestRepository_FindByID(t *testing.T) {
	t.Run("finds an existing request with its items", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "request_number", "flow", "partner_id", "partner_name", "record_count", "total_amount", "status"}).
			AddRow(requestID, "INV-20260901-0001", "INVOICE", uuid.New(), "Carrier A", 2, "1500", "PENDING")

		mock.ExpectQuery(`SELECT \* FROM "settlement_requests" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnRows(rows)
		mock.ExpectQuery(`SELECT \* FROM "settlement_request_items" WHERE "settlement_request_items"\."request_id" = \$1`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "waybill_id", "allocation_id", "amount"}).
				AddRow(uuid.New(), requestID, uuid.New(), uuid.New(), "1500"))

		request, err := repo.FindByID(context.Background(), requestID)

		assert.NoError(t, err)
		require.NotNil(t, request)
		assert.Equal(t, "INV-20260901-0001", request.RequestNumber)
		assert.Equal(t, settlement.RequestStatusPending, request.Status)
		assert.Len(t, request.Items, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a missing request to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "settlement_requests" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(requestID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		request, err := repo.FindByID(context.Background(), requestID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, request)
	})
}

func TestGormSettlementRequestRepository_FindAll(t *testing.T) {
	t.Run("filters by flow and counts every match", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		requestID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "settlement_requests" WHERE flow = \$1`).
			WithArgs("PAYMENT").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery(`SELECT \* FROM "settlement_requests" WHERE flow = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs("PAYMENT", 20).
			WillReturnRows(sqlmock.NewRows([]string{"id", "request_number", "flow", "status"}).
				AddRow(requestID, "APP-20260901-0001", "PAYMENT", "PENDING"))
		mock.ExpectQuery(`SELECT \* FROM "settlement_request_items" WHERE "settlement_request_items"\."request_id" = \$1`).
			WithArgs(requestID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "request_id"}))

		requests, total, err := repo.FindAll(context.Background(), waybill.FlowPayment, settlement.RequestFilter{Page: 1, PageSize: 20})

		assert.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, requests, 1)
		assert.Equal(t, "APP-20260901-0001", requests[0].RequestNumber)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("applies the status filter", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		status := settlement.RequestStatusVoided
		mock.ExpectQuery(`SELECT count\(\*\) FROM "settlement_requests" WHERE flow = \$1 AND status = \$2`).
			WithArgs("INVOICE", "VOIDED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery(`SELECT \* FROM "settlement_requests" WHERE flow = \$1 AND status = \$2 ORDER BY created_at DESC`).
			WithArgs("INVOICE", "VOIDED").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, total, err := repo.FindAll(context.Background(), waybill.FlowInvoice, settlement.RequestFilter{Status: &status})

		assert.NoError(t, err)
		assert.Zero(t, total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSettlementRequestRepository_CountCreatedOn(t *testing.T) {
	repo, mock, mockDB := newMockRequestRepository(t)
	defer mockDB.Close()

	day := time.Date(2026, 9, 1, 15, 30, 0, 0, time.UTC)
	start := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "settlement_requests" WHERE flow = \$1 AND created_at >= \$2 AND created_at < \$3`).
		WithArgs("INVOICE", start, start.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountCreatedOn(context.Background(), waybill.FlowInvoice, day)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSettlementRequestRepository_Update(t *testing.T) {
	t.Run("persists lifecycle fields", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		request := &settlement.SettlementRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Status:            settlement.RequestStatusVoided,
			VoidReason:        "duplicate submission",
		}

		mock.ExpectExec(`UPDATE "settlement_requests" SET .* WHERE id = \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), request))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps zero affected rows to not found", func(t *testing.T) {
		repo, mock, mockDB := newMockRequestRepository(t)
		defer mockDB.Close()

		request := &settlement.SettlementRequest{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Status:            settlement.RequestStatusVoided,
			VoidReason:        "duplicate submission",
		}

		mock.ExpectExec(`UPDATE "settlement_requests" SET .*`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), request), shared.ErrNotFound)
	})
}
