package section

import "time"

// State represents the lifecycle state of a report section.
type State string

const (
	StateNotStarted    State = "not_started"
	StateDrafted       State = "drafted"
	StateNeedsRevision State = "needs_revision"
	StateApproved      State = "approved"
	StateLocked        State = "locked"
)

// Approval records who approved a section and when.
type Approval struct {
	By string
	At time.Time
}

// DraftResult captures the outcome of applying a draft submission.
type DraftResult struct {
	NewState     State
	LastModified time.Time
}

// ApplyDraft applies a draft submission transition. The caller passes the
// current time to enable testing.
func ApplyDraft(now time.Time) DraftResult {
	return DraftResult{
		NewState:     StateDrafted,
		LastModified: now,
	}
}

// ApprovalResult captures the outcome of approving a section.
type ApprovalResult struct {
	NewState State
	Approval Approval
}

// ApplyApproval applies an approval transition, recording the approver.
func ApplyApproval(approver string, now time.Time) ApprovalResult {
	return ApprovalResult{
		NewState: StateApproved,
		Approval: Approval{By: approver, At: now},
	}
}

// RevisionResult captures the outcome of a revision request.
type RevisionResult struct {
	NewState     State
	LastModified time.Time
}

// ApplyRevisionRequest applies a revision-request transition. Any approval
// record is discarded by the caller; the section must be re-approved after
// the next draft.
func ApplyRevisionRequest(now time.Time) RevisionResult {
	return RevisionResult{
		NewState:     StateNeedsRevision,
		LastModified: now,
	}
}

// InitialState returns the state for a freshly created section.
func InitialState() State {
	return StateNotStarted
}
