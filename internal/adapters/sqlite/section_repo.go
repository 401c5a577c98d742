package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dossier/internal/ports/secondary"
)

// SectionRepository implements secondary.SectionRepository with SQLite.
type SectionRepository struct {
	db *sql.DB
}

// NewSectionRepository creates a new SQLite section repository.
func NewSectionRepository(db *sql.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// CreateAll persists the initial section rows for a new case.
func (r *SectionRepository) CreateAll(ctx context.Context, caseID string, sections []*secondary.SectionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to create sections: %w", err)
	}
	defer tx.Rollback()

	for _, s := range sections {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO sections (case_id, section_id, title, ordinal, state) VALUES (?, ?, ?, ?, ?)",
			caseID, s.SectionID, s.Title, s.Ordinal, s.State,
		); err != nil {
			return fmt.Errorf("failed to create section %s: %w", s.SectionID, err)
		}
	}
	return tx.Commit()
}

const sectionColumns = "case_id, section_id, title, ordinal, state, content, manifest_complete, depends_on, authoritative_keys, quality_note, warnings, last_modified, approved_by, approved_at"

func scanSection(scan func(dest ...any) error) (*secondary.SectionRecord, error) {
	var (
		content      sql.NullString
		complete     bool
		dependsOn    sql.NullString
		authKeys     sql.NullString
		qualityNote  sql.NullString
		warnings     sql.NullString
		lastModified sql.NullTime
		approvedBy   sql.NullString
		approvedAt   sql.NullTime
	)

	record := &secondary.SectionRecord{}
	err := scan(&record.CaseID, &record.SectionID, &record.Title, &record.Ordinal, &record.State,
		&content, &complete, &dependsOn, &authKeys, &qualityNote, &warnings, &lastModified, &approvedBy, &approvedAt)
	if err != nil {
		return nil, err
	}

	record.Content = content.String
	record.ManifestComplete = complete
	record.DependsOn = splitList(dependsOn.String)
	record.AuthoritativeKeys = splitList(authKeys.String)
	record.QualityNote = qualityNote.String
	record.Warnings = splitList(warnings.String)
	if lastModified.Valid {
		record.LastModified = lastModified.Time.Format(time.RFC3339)
	}
	record.ApprovedBy = approvedBy.String
	if approvedAt.Valid {
		record.ApprovedAt = approvedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// Get retrieves one section of a case.
func (r *SectionRepository) Get(ctx context.Context, caseID, sectionID string) (*secondary.SectionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sectionColumns+" FROM sections WHERE case_id = ? AND section_id = ?",
		caseID, sectionID,
	)
	record, err := scanSection(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return record, nil
}

// GetByCase retrieves all sections of a case in ordinal order.
func (r *SectionRepository) GetByCase(ctx context.Context, caseID string) ([]*secondary.SectionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+sectionColumns+" FROM sections WHERE case_id = ? ORDER BY ordinal",
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	defer rows.Close()

	var sections []*secondary.SectionRecord
	for rows.Next() {
		record, err := scanSection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan section: %w", err)
		}
		sections = append(sections, record)
	}
	return sections, nil
}

// UpdateDraft stores content, manifest fields, and the new state in one write.
func (r *SectionRepository) UpdateDraft(ctx context.Context, s *secondary.SectionRecord) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sections SET state = ?, content = ?, manifest_complete = ?, depends_on = ?,
		 authoritative_keys = ?, quality_note = ?, warnings = ?, title = ?,
		 last_modified = ?, approved_by = NULL, approved_at = NULL
		 WHERE case_id = ? AND section_id = ?`,
		s.State, s.Content, s.ManifestComplete, joinList(s.DependsOn),
		joinList(s.AuthoritativeKeys), s.QualityNote, joinList(s.Warnings), s.Title,
		s.LastModified, s.CaseID, s.SectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update draft: %w", err)
	}
	return requireRow(res, s.CaseID, s.SectionID)
}

// UpdateState transitions a section's state.
func (r *SectionRepository) UpdateState(ctx context.Context, caseID, sectionID, state string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sections SET state = ?, last_modified = CURRENT_TIMESTAMP WHERE case_id = ? AND section_id = ?",
		state, caseID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to update section state: %w", err)
	}
	return requireRow(res, caseID, sectionID)
}

// UpdateApproval records an approval and the approved state.
func (r *SectionRepository) UpdateApproval(ctx context.Context, caseID, sectionID, approver, approvedAt string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sections SET state = 'approved', approved_by = ?, approved_at = ?, last_modified = CURRENT_TIMESTAMP WHERE case_id = ? AND section_id = ?",
		approver, approvedAt, caseID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to record approval: %w", err)
	}
	return requireRow(res, caseID, sectionID)
}

// ClearApproval removes the approval record.
func (r *SectionRepository) ClearApproval(ctx context.Context, caseID, sectionID string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sections SET approved_by = NULL, approved_at = NULL WHERE case_id = ? AND section_id = ?",
		caseID, sectionID,
	)
	if err != nil {
		return fmt.Errorf("failed to clear approval: %w", err)
	}
	return requireRow(res, caseID, sectionID)
}

// ResetCase returns every section of a case to not_started and clears
// approval records. Content is kept for audit.
func (r *SectionRepository) ResetCase(ctx context.Context, caseID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE sections SET state = 'not_started', approved_by = NULL, approved_at = NULL, last_modified = CURRENT_TIMESTAMP WHERE case_id = ?",
		caseID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset case sections: %w", err)
	}
	return nil
}

func requireRow(res sql.Result, caseID, sectionID string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	return nil
}
