// Package testutil holds helpers shared by package tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/monocle-dev/fleetwatch/db"
	"gorm.io/gorm"
)

// OpenDB returns a migrated sqlite database living in the test's temp dir.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	conn, err := db.Open("sqlite", filepath.Join(t.TempDir(), "fleetwatch.db"))
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return conn
}
