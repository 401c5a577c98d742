package db

// SchemaSQL is the complete modern schema for fresh dossier installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// it via GetSchemaSQL(); if repository code references a column that doesn't
// exist here, tests fail immediately with "no such column".
//
// Keep this in sync with migrations: when adding columns or tables, add a
// migration in migrations.go and update SchemaSQL here.
const SchemaSQL = `
-- Cases (one investigative report each)
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	report_type TEXT NOT NULL,
	owner TEXT,
	status TEXT NOT NULL CHECK(status IN ('active', 'halted', 'archived')) DEFAULT 'active',
	required_sections TEXT NOT NULL,
	section_order TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	archived_at DATETIME
);

-- Sections (report units owned by a case; the orchestrator is the only
-- writer of state)
CREATE TABLE IF NOT EXISTS sections (
	case_id TEXT NOT NULL,
	section_id TEXT NOT NULL,
	title TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	state TEXT NOT NULL CHECK(state IN ('not_started', 'drafted', 'needs_revision', 'approved', 'locked')) DEFAULT 'not_started',
	content TEXT,
	manifest_complete INTEGER DEFAULT 0,
	depends_on TEXT,
	authoritative_keys TEXT,
	quality_note TEXT,
	warnings TEXT,
	last_modified DATETIME,
	approved_by TEXT,
	approved_at DATETIME,
	PRIMARY KEY (case_id, section_id),
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

-- Facts (append-only ledger; corrections supersede, never edit)
CREATE TABLE IF NOT EXISTS facts (
	id TEXT NOT NULL,
	case_id TEXT NOT NULL,
	subject TEXT NOT NULL CHECK(subject IN ('person', 'date', 'location', 'identifier')),
	subject_key TEXT NOT NULL,
	value TEXT NOT NULL,
	observed_at TEXT,
	section_id TEXT NOT NULL,
	confidence REAL DEFAULT 0,
	supersedes TEXT,
	authoritative INTEGER DEFAULT 0,
	extracted_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE,
	UNIQUE(case_id, id)
);

-- Findings (continuity findings keyed by fact pair within a case)
CREATE TABLE IF NOT EXISTS findings (
	id TEXT NOT NULL,
	case_id TEXT NOT NULL,
	pair_key TEXT NOT NULL,
	fact_a TEXT NOT NULL,
	fact_b TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('identity', 'date_location', 'contradiction')),
	severity TEXT NOT NULL CHECK(severity IN ('blocking', 'advisory')),
	resolution TEXT NOT NULL CHECK(resolution IN ('open', 'acknowledged', 'resolved')) DEFAULT 'open',
	explanation TEXT,
	detected_at DATETIME,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (case_id, pair_key),
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

-- Signal log (immutable delivery audit trail)
CREATE TABLE IF NOT EXISTS signal_log (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	code INTEGER NOT NULL,
	source TEXT,
	subscriber TEXT NOT NULL,
	payload TEXT,
	delivered INTEGER NOT NULL,
	attempts INTEGER NOT NULL,
	emitted_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_migrations (
	version INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the authoritative schema. Tests must use this
// instead of hardcoding CREATE TABLE statements.
func GetSchemaSQL() string {
	return SchemaSQL
}
