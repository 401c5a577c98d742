// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import "context"

// CaseRepository defines the secondary port for case persistence.
type CaseRepository interface {
	// Create persists a new case with its frozen section plan.
	Create(ctx context.Context, c *CaseRecord) error

	// GetByID retrieves a case by its ID.
	GetByID(ctx context.Context, id string) (*CaseRecord, error)

	// List retrieves cases matching the given filters.
	List(ctx context.Context, filters CaseFilters) ([]*CaseRecord, error)

	// UpdateStatus sets the case lifecycle status (active, halted, archived).
	UpdateStatus(ctx context.Context, id, status string) error

	// GetNextID returns the next available case ID.
	GetNextID(ctx context.Context) (string, error)
}

// CaseRecord represents a case as stored in persistence. RequiredSections
// and SectionOrder are the report-type snapshot taken at creation; they
// never change mid-lifecycle.
type CaseRecord struct {
	ID               string
	Title            string
	ReportType       string
	Owner            string
	Status           string
	RequiredSections []string
	SectionOrder     []string
	CreatedAt        string
	UpdatedAt        string
	ArchivedAt       string
}

// Case lifecycle status constants.
const (
	CaseStatusActive   = "active"
	CaseStatusHalted   = "halted"
	CaseStatusArchived = "archived"
)

// CaseFilters contains filter options for querying cases.
type CaseFilters struct {
	Status string
	Limit  int
}

// SectionRepository defines the secondary port for section persistence.
// The orchestrator is the only writer of State; renderers (via the
// orchestrator) are the only writers of Content and manifest fields.
type SectionRepository interface {
	// CreateAll persists the initial section rows for a new case.
	CreateAll(ctx context.Context, caseID string, sections []*SectionRecord) error

	// Get retrieves one section of a case.
	Get(ctx context.Context, caseID, sectionID string) (*SectionRecord, error)

	// GetByCase retrieves all sections of a case in ordinal order.
	GetByCase(ctx context.Context, caseID string) ([]*SectionRecord, error)

	// UpdateDraft stores content, manifest, and the drafted state in one write.
	UpdateDraft(ctx context.Context, s *SectionRecord) error

	// UpdateState transitions a section's state.
	UpdateState(ctx context.Context, caseID, sectionID, state string) error

	// UpdateApproval records an approval and the approved state.
	UpdateApproval(ctx context.Context, caseID, sectionID, approver, approvedAt string) error

	// ClearApproval removes the approval record (revision requested).
	ClearApproval(ctx context.Context, caseID, sectionID string) error

	// ResetCase returns every section of a case to not_started and clears
	// approval records. Content and facts are kept for audit.
	ResetCase(ctx context.Context, caseID string) error
}

// SectionRecord represents a section as stored in persistence.
type SectionRecord struct {
	CaseID            string
	SectionID         string
	Title             string
	Ordinal           int
	State             string
	Content           string
	ManifestComplete  bool
	DependsOn         []string
	AuthoritativeKeys []string
	QualityNote       string
	Warnings          []string
	LastModified      string
	ApprovedBy        string
	ApprovedAt        string
}

// FactRepository defines the secondary port for the append-only fact ledger.
// There is no update or delete: corrections supersede.
type FactRepository interface {
	// Append persists new facts in order.
	Append(ctx context.Context, caseID string, facts []*FactRecord) error

	// ListByCase retrieves all facts for a case in append order.
	ListByCase(ctx context.Context, caseID string) ([]*FactRecord, error)

	// CountByCase returns the number of facts ever appended for a case.
	// The service layer derives new fact IDs from it.
	CountByCase(ctx context.Context, caseID string) (int, error)
}

// FactRecord represents a ledger entry as stored in persistence.
type FactRecord struct {
	ID            string
	CaseID        string
	Subject       string
	SubjectKey    string
	Value         string
	ObservedAt    string
	SectionID     string
	Confidence    float64
	Supersedes    string
	Authoritative bool
	ExtractedAt   string
}

// FindingRepository defines the secondary port for continuity findings.
// Findings are keyed by fact pair within a case.
type FindingRepository interface {
	// Upsert inserts or updates findings by pair key.
	Upsert(ctx context.Context, caseID string, findings []*FindingRecord) error

	// ListByCase retrieves all findings for a case.
	ListByCase(ctx context.Context, caseID string) ([]*FindingRecord, error)

	// UpdateResolution sets a finding's resolution state.
	UpdateResolution(ctx context.Context, caseID, pairKey, resolution string) error
}

// FindingRecord represents a continuity finding as stored in persistence.
type FindingRecord struct {
	ID          string
	CaseID      string
	PairKey     string
	FactA       string
	FactB       string
	Kind        string
	Severity    string
	Resolution  string
	Explanation string
	DetectedAt  string
	UpdatedAt   string
}

// SignalLogRepository defines the secondary port for the signal delivery
// audit log.
type SignalLogRepository interface {
	// Record appends a delivery outcome to the log.
	Record(ctx context.Context, entry *SignalLogRecord) error

	// ListByCase retrieves a case's signal log, oldest first.
	ListByCase(ctx context.Context, caseID string) ([]*SignalLogRecord, error)
}

// SignalLogRecord represents one delivery outcome in the signal log.
type SignalLogRecord struct {
	ID         string
	CaseID     string
	Code       int
	Source     string
	Subscriber string
	Payload    string // JSON-encoded payload map
	Delivered  bool
	Attempts   int
	EmittedAt  string
}
