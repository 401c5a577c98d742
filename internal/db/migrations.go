package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_observed_at_to_facts",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_signal_log_table",
		Up:      migrationV2,
	},
}

// RunMigrations applies all pending migrations.
func RunMigrations(database *sql.DB) error {
	for _, m := range migrations {
		applied, err := migrationApplied(database, m.Version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := m.Up(database); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.Version, m.Name, err)
		}
		if _, err := database.Exec(
			"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
			m.Version, m.Name,
		); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func migrationApplied(database *sql.DB, version int) (bool, error) {
	var count int
	err := database.QueryRow(
		"SELECT COUNT(*) FROM schema_migrations WHERE version = ?", version,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check migration %d: %w", version, err)
	}
	return count > 0, nil
}

// migrationV1 backfills the observed_at column on installs predating it.
// Fresh installs already have the column via SchemaSQL.
func migrationV1(database *sql.DB) error {
	if columnExists(database, "facts", "observed_at") {
		return nil
	}
	_, err := database.Exec("ALTER TABLE facts ADD COLUMN observed_at TEXT")
	return err
}

// migrationV2 creates the signal_log table on installs predating it.
func migrationV2(database *sql.DB) error {
	_, err := database.Exec(`CREATE TABLE IF NOT EXISTS signal_log (
		id TEXT PRIMARY KEY,
		case_id TEXT NOT NULL,
		code INTEGER NOT NULL,
		source TEXT,
		subscriber TEXT NOT NULL,
		payload TEXT,
		delivered INTEGER NOT NULL,
		attempts INTEGER NOT NULL,
		emitted_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

func columnExists(database *sql.DB, table, column string) bool {
	rows, err := database.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &primaryKey); err != nil {
			return false
		}
		if name == column {
			return true
		}
	}
	return false
}
