package primary

import (
	"context"
	"fmt"
	"time"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
)

// SectionService defines the primary port for section lifecycle operations.
// All state transitions for a given case are serialized through the case
// lock; different cases proceed independently.
type SectionService interface {
	// SubmitDraft stores content and manifest, appends the asserted facts
	// to the ledger, transitions the section to drafted, and re-runs the
	// continuity validators scoped to the changed facts.
	SubmitDraft(ctx context.Context, req SubmitDraftRequest) (*SubmitDraftResponse, error)

	// RequestRevision demotes a drafted or approved section to
	// needs_revision.
	RequestRevision(ctx context.Context, req RequestRevisionRequest) error

	// Approve transitions a drafted section to approved after a synchronous
	// continuity re-check scoped to the section's facts. A new blocking
	// finding refuses the approval and leaves the section drafted.
	Approve(ctx context.Context, req ApproveRequest) error

	// GetSection retrieves one section of a case.
	GetSection(ctx context.Context, caseID string, sectionID section.ID) (*Section, error)

	// RenderSections invokes the external renderer for the given sections
	// in parallel and submits each successful render as a draft. The
	// quality gate runs advisory-only on each render.
	RenderSections(ctx context.Context, req RenderSectionsRequest) (*RenderSectionsResponse, error)
}

// SubmitDraftRequest contains a renderer's output for one section.
type SubmitDraftRequest struct {
	CaseID    string
	SectionID section.ID
	Content   string
	Manifest  section.Manifest
	Facts     []fact.Fact
}

// SubmitDraftResponse reports the stored draft and any continuity findings
// the change introduced or resolved.
type SubmitDraftResponse struct {
	Section     *Section
	NewFindings []continuity.Finding
}

// RequestRevisionRequest contains parameters for demoting a section.
type RequestRevisionRequest struct {
	CaseID    string
	SectionID section.ID
	Reason    string
}

// ApproveRequest contains parameters for approving a section.
type ApproveRequest struct {
	CaseID    string
	SectionID section.ID
	Approver  string
}

// ApprovalBlockedError reports an approval refused because blocking
// continuity findings reference the section's facts. The section remains
// drafted; the findings are attached so the caller sees every blocker at
// once.
type ApprovalBlockedError struct {
	SectionID section.ID
	Findings  []continuity.Finding
}

func (e *ApprovalBlockedError) Error() string {
	return fmt.Sprintf("approval refused for section %s: %d blocking continuity finding(s)", e.SectionID, len(e.Findings))
}

// RenderSectionsRequest selects sections to render.
type RenderSectionsRequest struct {
	CaseID   string
	Sections []section.ID
	Timeout  time.Duration // per-section renderer timeout
}

// RenderSectionsResponse reports per-section render outcomes. Failed
// sections remain in their pre-call state.
type RenderSectionsResponse struct {
	Drafted []section.ID
	Failed  map[section.ID]string
}

// Section represents a section at the port boundary.
type Section struct {
	CaseID       string
	SectionID    section.ID
	Title        string
	Ordinal      int
	State        section.State
	Content      string
	Manifest     section.Manifest
	LastModified string
	ApprovedBy   string
	ApprovedAt   string
}
