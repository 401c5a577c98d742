package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/dossier/internal/ports/secondary"
)

// SignalLogRepository implements secondary.SignalLogRepository with SQLite.
// The signal log is an immutable audit trail of delivery outcomes.
type SignalLogRepository struct {
	db *sql.DB
}

// NewSignalLogRepository creates a new SQLite signal log repository.
func NewSignalLogRepository(db *sql.DB) *SignalLogRepository {
	return &SignalLogRepository{db: db}
}

// Record appends a delivery outcome to the log.
func (r *SignalLogRepository) Record(ctx context.Context, entry *secondary.SignalLogRecord) error {
	if entry.ID == "" {
		return fmt.Errorf("signal log ID must be pre-populated")
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO signal_log (id, case_id, code, source, subscriber, payload, delivered, attempts, emitted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CaseID, entry.Code, entry.Source, entry.Subscriber,
		entry.Payload, entry.Delivered, entry.Attempts, entry.EmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record signal delivery: %w", err)
	}
	return nil
}

// ListByCase retrieves a case's signal log, oldest first.
func (r *SignalLogRepository) ListByCase(ctx context.Context, caseID string) ([]*secondary.SignalLogRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, case_id, code, source, subscriber, payload, delivered, attempts, emitted_at
		 FROM signal_log WHERE case_id = ? ORDER BY emitted_at, id`,
		caseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list signal log: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.SignalLogRecord
	for rows.Next() {
		var (
			source    sql.NullString
			payload   sql.NullString
			emittedAt time.Time
		)
		record := &secondary.SignalLogRecord{}
		if err := rows.Scan(&record.ID, &record.CaseID, &record.Code, &source, &record.Subscriber,
			&payload, &record.Delivered, &record.Attempts, &emittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal log entry: %w", err)
		}
		record.Source = source.String
		record.Payload = payload.String
		record.EmittedAt = emittedAt.Format(time.RFC3339)
		entries = append(entries, record)
	}
	return entries, nil
}
