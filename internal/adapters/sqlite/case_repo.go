// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/dossier/internal/ports/secondary"
)

// CaseRepository implements secondary.CaseRepository with SQLite.
type CaseRepository struct {
	db *sql.DB
}

// NewCaseRepository creates a new SQLite case repository.
func NewCaseRepository(db *sql.DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// joinList encodes a string slice as a comma-separated column value.
func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

// Create persists a new case. ID, Status, and the section plan must be
// pre-populated by the service layer.
func (r *CaseRepository) Create(ctx context.Context, c *secondary.CaseRecord) error {
	if c.ID == "" {
		return fmt.Errorf("case ID must be pre-populated by service layer")
	}
	if c.Status == "" {
		return fmt.Errorf("case Status must be pre-populated by service layer")
	}
	if len(c.RequiredSections) == 0 {
		return fmt.Errorf("case required sections must be pre-populated by service layer")
	}

	var owner sql.NullString
	if c.Owner != "" {
		owner = sql.NullString{String: c.Owner, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO cases (id, title, report_type, owner, status, required_sections, section_order) VALUES (?, ?, ?, ?, ?, ?, ?)",
		c.ID, c.Title, c.ReportType, owner, c.Status, joinList(c.RequiredSections), joinList(c.SectionOrder),
	)
	if err != nil {
		return fmt.Errorf("failed to create case: %w", err)
	}
	return nil
}

// GetByID retrieves a case by its ID.
func (r *CaseRepository) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	var (
		owner      sql.NullString
		required   string
		order      string
		createdAt  time.Time
		updatedAt  time.Time
		archivedAt sql.NullTime
	)

	record := &secondary.CaseRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, title, report_type, owner, status, required_sections, section_order, created_at, updated_at, archived_at FROM cases WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Title, &record.ReportType, &owner, &record.Status, &required, &order, &createdAt, &updatedAt, &archivedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("case %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	record.Owner = owner.String
	record.RequiredSections = splitList(required)
	record.SectionOrder = splitList(order)
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	if archivedAt.Valid {
		record.ArchivedAt = archivedAt.Time.Format(time.RFC3339)
	}
	return record, nil
}

// List retrieves cases matching the given filters.
func (r *CaseRepository) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	query := "SELECT id, title, report_type, owner, status, required_sections, section_order, created_at, updated_at, archived_at FROM cases"
	args := []any{}

	if filters.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filters.Status)
	}
	query += " ORDER BY created_at DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	defer rows.Close()

	var cases []*secondary.CaseRecord
	for rows.Next() {
		var (
			owner      sql.NullString
			required   string
			order      string
			createdAt  time.Time
			updatedAt  time.Time
			archivedAt sql.NullTime
		)
		record := &secondary.CaseRecord{}
		if err := rows.Scan(&record.ID, &record.Title, &record.ReportType, &owner, &record.Status, &required, &order, &createdAt, &updatedAt, &archivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		record.Owner = owner.String
		record.RequiredSections = splitList(required)
		record.SectionOrder = splitList(order)
		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.UpdatedAt = updatedAt.Format(time.RFC3339)
		if archivedAt.Valid {
			record.ArchivedAt = archivedAt.Time.Format(time.RFC3339)
		}
		cases = append(cases, record)
	}
	return cases, nil
}

// UpdateStatus sets the case lifecycle status. Archiving also stamps
// archived_at.
func (r *CaseRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := "UPDATE cases SET status = ?, updated_at = CURRENT_TIMESTAMP"
	if status == secondary.CaseStatusArchived {
		query += ", archived_at = CURRENT_TIMESTAMP"
	}
	query += " WHERE id = ?"

	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update case status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("case %s not found", id)
	}
	return nil
}

// GetNextID returns the next available case ID.
func (r *CaseRepository) GetNextID(ctx context.Context) (string, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM cases").Scan(&count); err != nil {
		return "", fmt.Errorf("failed to generate case ID: %w", err)
	}
	return fmt.Sprintf("CASE-%03d", count+1), nil
}
