// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() to ensure tests run against
// the authoritative schema, preventing drift between test and production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Instead, use
// setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/bellhop/internal/db"
)

var t0 = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with the authoritative schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// setupFileDB opens a file-backed database so that concurrent connections share state.
func setupFileDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.Open(filepath.Join(t.TempDir(), "bellhop.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		testDB.Close()
	})
	return testDB
}

// seedRequest inserts an open request created at t0 and returns its ID.
func seedRequest(t *testing.T, db *sql.DB, id, tenantID string) string {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO service_requests (id, tenant_id, channel, assigned_handler_id, status, created_at) VALUES (?, ?, 'push', 'staff-1', 'open', ?)",
		id, tenantID, t0,
	)
	if err != nil {
		t.Fatalf("failed to seed request: %v", err)
	}
	return id
}

// seedStaff inserts a staff member.
func seedStaff(t *testing.T, db *sql.DB, id, tenantID, role string, available bool) {
	t.Helper()
	_, err := db.Exec("INSERT INTO staff (id, tenant_id, name, role, available) VALUES (?, ?, ?, ?, ?)",
		id, tenantID, "Staff "+id, role, available)
	if err != nil {
		t.Fatalf("failed to seed staff: %v", err)
	}
}
