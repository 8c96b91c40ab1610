// Package integration exercises the billing stack end to end against a real
// database. An in-memory SQLite instance keeps the suite self-contained; the
// SQL the repositories emit is portable between it and PostgreSQL.
package integration

import (
	"testing"

	"github.com/billflow/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens an isolated in-memory database with the billing schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "Failed to get underlying SQL DB")

	// A single connection keeps every session on the same in-memory database
	// and serializes concurrent transactions the way row locks would.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.CustomerModel{},
		&models.InvoiceModel{},
		&models.PaymentModel{},
		&models.ReceiptModel{},
	), "Failed to migrate billing schema")

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}
