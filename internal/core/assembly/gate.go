// Package assembly contains the pure precondition logic for the final
// assembly gate. This is part of the Functional Core - no I/O. The gate
// authorizes and sequences document composition; it never renders.
package assembly

import (
	"fmt"
	"strings"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
)

// Input is everything the gate needs to evaluate a case.
type Input struct {
	// Required is the case's required-section set in sequence order,
	// frozen at case creation.
	Required []section.ID

	// States maps every section of the case to its current state.
	States map[section.ID]section.State

	// OpenBlocking holds the case's open blocking continuity findings.
	OpenBlocking []continuity.Finding
}

// Decision is the gate's evaluation result. The shell executes ToLock and
// hands Order to the document renderer only when Ready is true.
type Decision struct {
	Ready    bool
	Missing  []section.ID         // required sections not approved/locked
	Blockers []continuity.Finding // open blocking findings
	ToLock   []section.ID         // approved sections to transition to locked
	Order    []section.ID         // required sections in composition order
}

// Evaluate checks the gate preconditions. It is a pure function: repeated
// evaluation of the same input yields the same decision. Already-locked
// sections never reappear in ToLock, which keeps the shell's execution
// idempotent.
func Evaluate(in Input) Decision {
	d := Decision{Order: in.Required}

	for _, id := range in.Required {
		switch in.States[id] {
		case section.StateApproved:
			d.ToLock = append(d.ToLock, id)
		case section.StateLocked:
			// already terminal, nothing to do
		default:
			d.Missing = append(d.Missing, id)
		}
	}
	d.Blockers = in.OpenBlocking
	d.Ready = len(d.Missing) == 0 && len(d.Blockers) == 0

	if !d.Ready {
		d.ToLock = nil // nothing is locked on a failed evaluation
	}
	return d
}

// IncompleteSectionsError reports every required section that is not yet
// approved or locked, in one response, so the caller can resolve all of
// them before retrying.
type IncompleteSectionsError struct {
	Missing []section.ID
}

func (e *IncompleteSectionsError) Error() string {
	ids := make([]string, len(e.Missing))
	for i, id := range e.Missing {
		ids[i] = string(id)
	}
	return fmt.Sprintf("assembly blocked: %d required section(s) not approved: %s",
		len(e.Missing), strings.Join(ids, ", "))
}

// UnresolvedContinuityError reports every open blocking finding in one
// response.
type UnresolvedContinuityError struct {
	Findings []continuity.Finding
}

func (e *UnresolvedContinuityError) Error() string {
	return fmt.Sprintf("assembly blocked: %d unresolved blocking continuity finding(s)", len(e.Findings))
}

// Err converts a failed decision into its structured error, or nil when the
// decision is ready. Incomplete sections are reported before continuity.
func (d Decision) Err() error {
	if len(d.Missing) > 0 {
		return &IncompleteSectionsError{Missing: d.Missing}
	}
	if len(d.Blockers) > 0 {
		return &UnresolvedContinuityError{Findings: d.Blockers}
	}
	return nil
}
