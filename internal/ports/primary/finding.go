package primary

import (
	"context"

	"github.com/example/dossier/internal/core/continuity"
)

// FindingService defines the primary port for continuity finding review.
type FindingService interface {
	// ListFindings lists a case's findings with optional filters.
	ListFindings(ctx context.Context, caseID string, filters FindingFilters) ([]*Finding, error)

	// Acknowledge marks an open finding as acknowledged. Acknowledged
	// blocking findings no longer gate assembly.
	Acknowledge(ctx context.Context, caseID, pairKey string) error
}

// FindingFilters contains filter options for listing findings.
type FindingFilters struct {
	Severity   continuity.Severity
	Resolution continuity.Resolution
}

// Finding represents a continuity finding at the port boundary.
type Finding struct {
	ID          string
	PairKey     string
	FactA       string
	FactB       string
	Kind        continuity.Kind
	Severity    continuity.Severity
	Resolution  continuity.Resolution
	Explanation string
	DetectedAt  string
}
