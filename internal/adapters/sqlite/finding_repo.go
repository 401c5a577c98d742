package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dossier/internal/ports/secondary"
)

// FindingRepository implements secondary.FindingRepository with SQLite.
// Findings are keyed by (case_id, pair_key) so re-validation upserts rather
// than duplicating.
type FindingRepository struct {
	db *sql.DB
}

// NewFindingRepository creates a new SQLite finding repository.
func NewFindingRepository(db *sql.DB) *FindingRepository {
	return &FindingRepository{db: db}
}

// Upsert inserts or updates findings by pair key.
func (r *FindingRepository) Upsert(ctx context.Context, caseID string, findings []*secondary.FindingRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to upsert findings: %w", err)
	}
	defer tx.Rollback()

	for _, f := range findings {
		if f.ID == "" {
			return fmt.Errorf("finding ID must be pre-populated by service layer")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO findings (id, case_id, pair_key, fact_a, fact_b, kind, severity, resolution, explanation, detected_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(case_id, pair_key) DO UPDATE SET
			   severity = excluded.severity,
			   resolution = excluded.resolution,
			   kind = excluded.kind,
			   explanation = excluded.explanation,
			   detected_at = excluded.detected_at,
			   updated_at = CURRENT_TIMESTAMP`,
			f.ID, caseID, f.PairKey, f.FactA, f.FactB, f.Kind, f.Severity, f.Resolution, f.Explanation, f.DetectedAt,
		); err != nil {
			return fmt.Errorf("failed to upsert finding %s: %w", f.PairKey, err)
		}
	}
	return tx.Commit()
}

// ListByCase retrieves all findings for a case.
func (r *FindingRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.FindingRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, pair_key, fact_a, fact_b, kind, severity, resolution, explanation, detected_at, updated_at
		 FROM findings WHERE case_id = ? ORDER BY detected_at, pair_key`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list findings: %w", err)
	}
	defer rows.Close()

	var findings []*secondary.FindingRecord
	for rows.Next() {
		var (
			explanation sql.NullString
			detectedAt  sql.NullTime
			updatedAt   time.Time
		)
		record := &secondary.FindingRecord{}
		if err := rows.Scan(&record.ID, &record.CaseID, &record.PairKey, &record.FactA, &record.FactB,
			&record.Kind, &record.Severity, &record.Resolution, &explanation, &detectedAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}
		record.Explanation = explanation.String
		if detectedAt.Valid {
			record.DetectedAt = detectedAt.Time.Format(time.RFC3339)
		}
		record.UpdatedAt = updatedAt.Format(time.RFC3339)
		findings = append(findings, record)
	}
	return findings, nil
}

// UpdateResolution sets a finding's resolution state.
func (r *FindingRepository) UpdateResolution(ctx context.Context, caseID, pairKey, resolution string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE findings SET resolution = ?, updated_at = CURRENT_TIMESTAMP WHERE case_id = ? AND pair_key = ?",
		resolution, caseID, pairKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update finding resolution: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("finding %s not found in case %s", pairKey, caseID)
	}
	return nil
}
