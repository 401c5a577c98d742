// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema; do not hardcode CREATE TABLE statements in test
// files.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/dossier/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedCase inserts a test case and returns its ID.
func seedCase(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "CASE-001"
	}
	_, err := db.Exec(
		"INSERT INTO cases (id, title, report_type, status, required_sections, section_order) VALUES (?, 'Test Case', 'field', 'active', 'cp,s1,s2,s3,fr', 'cp,s1,s2,s3,fr')",
		id,
	)
	if err != nil {
		t.Fatalf("failed to seed case: %v", err)
	}
	return id
}

// seedSection inserts a test section row.
func seedSection(t *testing.T, db *sql.DB, caseID, sectionID, state string) {
	t.Helper()
	if state == "" {
		state = "not_started"
	}
	_, err := db.Exec(
		"INSERT INTO sections (case_id, section_id, title, ordinal, state) VALUES (?, ?, ?, 1, ?)",
		caseID, sectionID, "Test Section", state,
	)
	if err != nil {
		t.Fatalf("failed to seed section: %v", err)
	}
}
