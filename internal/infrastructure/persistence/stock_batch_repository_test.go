package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stockadoodle/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockStockBatchRepository creates a GormStockBatchRepository with a mocked SQL connection
func newMockStockBatchRepository(t *testing.T) (*GormStockBatchRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormStockBatchRepository(gormDB), mock, mockDB
}

func TestGormStockBatchRepository_FindByID(t *testing.T) {
	t.Run("finds existing batch", func(t *testing.T) {
		repo, mock, mockDB := newMockStockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()
		productID := uuid.New()
		expiry := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{
			"id", "product_id", "quantity_received", "quantity_remaining",
			"expiry_date", "received_date", "disposed",
		}).AddRow(
			batchID, productID, int64(24), int64(10),
			expiry, expiry.AddDate(0, 0, -30), false,
		)

		mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE id = \$1`).
			WithArgs(batchID, 1).
			WillReturnRows(rows)

		batch, err := repo.FindByID(context.Background(), batchID)

		assert.NoError(t, err)
		require.NotNil(t, batch)
		assert.Equal(t, batchID, batch.ID)
		assert.Equal(t, productID, batch.ProductID)
		assert.Equal(t, int64(10), batch.QuantityRemaining)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns batch not found for a missing ID", func(t *testing.T) {
		repo, mock, mockDB := newMockStockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE id = \$1`).
			WithArgs(batchID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		batch, err := repo.FindByID(context.Background(), batchID)

		assert.Nil(t, batch)
		assert.ErrorIs(t, err, shared.ErrBatchNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockBatchRepository_FindAllocatable(t *testing.T) {
	t.Run("orders by expiry then received date then id", func(t *testing.T) {
		repo, mock, mockDB := newMockStockBatchRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "stock_batches" WHERE product_id = \$1 AND disposed = false AND quantity_remaining > 0 ORDER BY expiry_date ASC, received_date ASC, id ASC`).
			WithArgs(productID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "quantity_remaining"}))

		batches, err := repo.FindAllocatable(context.Background(), productID)

		assert.NoError(t, err)
		assert.Empty(t, batches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormStockBatchRepository_ApplyDraw(t *testing.T) {
	t.Run("decrements when remaining quantity covers the draw", func(t *testing.T) {
		repo, mock, mockDB := newMockStockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()

		mock.ExpectExec(`UPDATE "stock_batches" SET`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), batchID, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.ApplyDraw(context.Background(), batchID, 5)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when the guard matches no rows", func(t *testing.T) {
		repo, mock, mockDB := newMockStockBatchRepository(t)
		defer mockDB.Close()

		batchID := uuid.New()

		mock.ExpectExec(`UPDATE "stock_batches" SET`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), batchID, int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.ApplyDraw(context.Background(), batchID, 5)

		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
