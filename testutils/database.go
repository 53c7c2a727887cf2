package testutils

import (
	"fmt"
	"testing"

	"coursemaster/store/gormstore"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a private in-memory sqlite database and migrates every
// table. The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent), // Suppress logs in tests
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	// sqlite serializes writers; a single connection keeps concurrent tests deterministic
	sqlDB.SetMaxOpenConns(1)

	if err := gormstore.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// SetupTestStore returns a gorm-backed Record Store on a fresh database.
func SetupTestStore(t *testing.T) *gormstore.Store {
	t.Helper()
	return gormstore.New(SetupTestDB(t))
}
