package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockTransactionManager(t *testing.T) (*GormTransactionManager, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormTransactionManager(gormDB), mock, mockDB
}

func TestGormTransactionManager_WithinTransaction(t *testing.T) {
	t.Run("commits when the callback succeeds", func(t *testing.T) {
		manager, mock, mockDB := newMockTransactionManager(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectCommit()

		var sawTx bool
		err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
			_, sawTx = ctx.Value(txContextKey{}).(*gorm.DB)
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, sawTx)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the callback fails", func(t *testing.T) {
		manager, mock, mockDB := newMockTransactionManager(t)
		defer mockDB.Close()

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("allocation failed")
		err := manager.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDBFromContext(t *testing.T) {
	t.Run("falls back to the repository connection without a transaction", func(t *testing.T) {
		_, _, mockDB := newMockTransactionManager(t)
		defer mockDB.Close()

		dialector := postgres.New(postgres.Config{
			Conn:       mockDB,
			DriverName: "postgres",
		})
		gormDB, err := gorm.Open(dialector, &gorm.Config{SkipDefaultTransaction: true})
		require.NoError(t, err)

		got := dbFromContext(context.Background(), gormDB)
		assert.NotNil(t, got)
	})
}
