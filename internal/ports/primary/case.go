// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the outside world
// drives the application.
package primary

import "context"

// CaseService defines the primary port for case operations.
type CaseService interface {
	// CreateCase creates a new case, snapshotting the report type's
	// required sections and ordering.
	CreateCase(ctx context.Context, req CreateCaseRequest) (*CreateCaseResponse, error)

	// GetCase retrieves a case with its sections.
	GetCase(ctx context.Context, caseID string) (*Case, error)

	// ListCases lists cases with optional filters.
	ListCases(ctx context.Context, filters CaseFilters) ([]*Case, error)

	// ResetCase performs a full case reset: every section returns to
	// not_started and approval records are cleared. The fact ledger is
	// kept for audit. This is the only way out of locked.
	ResetCase(ctx context.Context, caseID string) error
}

// CreateCaseRequest contains parameters for creating a case.
type CreateCaseRequest struct {
	Title      string
	ReportType string
	Owner      string
}

// CreateCaseResponse contains the result of creating a case.
type CreateCaseResponse struct {
	CaseID string
	Case   *Case
}

// Case represents a case at the port boundary.
type Case struct {
	ID         string
	Title      string
	ReportType string
	Owner      string
	Status     string
	Required   []string
	Sections   []*Section
	CreatedAt  string
	ArchivedAt string
}

// CaseFilters contains filter options for listing cases.
type CaseFilters struct {
	Status string
	Limit  int
}
