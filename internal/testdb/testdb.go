// Package testdb opens throwaway databases for tests
package testdb

import (
	"fmt"
	"testing"

	"tdls-api/db"

	nanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// New returns a migrated in-memory SQLite database private to t
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name, err := nanoid.New()
	if err != nil {
		t.Fatalf("failed to generate database name: %v", err)
	}

	// Shared cache keeps the in-memory database alive across pooled connections
	d, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := d.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() { sqlDB.Close() })

	return d
}
