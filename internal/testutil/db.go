// Package testutil provides an in-memory database for service tests.
package testutil

import (
	"testing"

	"recipe-backend/internal/database"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenTestDB opens a fresh in-memory sqlite database, runs the migrations
// and installs it as the package-global connection. Each call gets its own
// database, so tests stay independent.
func OpenTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=private"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	database.DB = db
	return db
}
