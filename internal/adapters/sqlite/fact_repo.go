package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dossier/internal/ports/secondary"
)

// FactRepository implements secondary.FactRepository with SQLite. The facts
// table is append-only: there is no UPDATE or DELETE path.
type FactRepository struct {
	db *sql.DB
}

// NewFactRepository creates a new SQLite fact repository.
func NewFactRepository(db *sql.DB) *FactRepository {
	return &FactRepository{db: db}
}

// Append persists new facts in order.
func (r *FactRepository) Append(ctx context.Context, caseID string, facts []*secondary.FactRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to append facts: %w", err)
	}
	defer tx.Rollback()

	for _, f := range facts {
		if f.ID == "" {
			return fmt.Errorf("fact ID must be pre-populated by service layer")
		}
		var supersedes sql.NullString
		if f.Supersedes != "" {
			supersedes = sql.NullString{String: f.Supersedes, Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO facts (id, case_id, subject, subject_key, value, observed_at, section_id, confidence, supersedes, authoritative, extracted_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, caseID, f.Subject, f.SubjectKey, f.Value, f.ObservedAt, f.SectionID,
			f.Confidence, supersedes, f.Authoritative, f.ExtractedAt,
		); err != nil {
			return fmt.Errorf("failed to append fact %s: %w", f.ID, err)
		}
	}
	return tx.Commit()
}

// ListByCase retrieves all facts for a case in append order.
func (r *FactRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.FactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, subject, subject_key, value, observed_at, section_id, confidence, supersedes, authoritative, extracted_at
		 FROM facts WHERE case_id = ? ORDER BY seq`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list facts: %w", err)
	}
	defer rows.Close()

	var facts []*secondary.FactRecord
	for rows.Next() {
		var (
			observedAt  sql.NullString
			supersedes  sql.NullString
			extractedAt time.Time
		)
		record := &secondary.FactRecord{}
		if err := rows.Scan(&record.ID, &record.CaseID, &record.Subject, &record.SubjectKey,
			&record.Value, &observedAt, &record.SectionID, &record.Confidence,
			&supersedes, &record.Authoritative, &extractedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fact: %w", err)
		}
		record.ObservedAt = observedAt.String
		record.Supersedes = supersedes.String
		record.ExtractedAt = extractedAt.Format(time.RFC3339)
		facts = append(facts, record)
	}
	return facts, nil
}

// CountByCase returns the number of facts ever appended for a case.
func (r *FactRepository) CountByCase(ctx context.Context, caseID string) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM facts WHERE case_id = ?", caseID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count facts: %w", err)
	}
	return count, nil
}
