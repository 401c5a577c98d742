package section

import "fmt"

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// InvalidTransitionError reports an attempted state change that is not
// permitted from the section's current state. No state is mutated.
type InvalidTransitionError struct {
	SectionID ID
	From      State
	Operation string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s section %s from state %s", e.Operation, e.SectionID, e.From)
}

// CanSubmitDraft evaluates whether a draft may be submitted.
// Rule: drafts are accepted from not_started and needs_revision only.
// A locked section can never be redrafted.
func CanSubmitDraft(id ID, state State) GuardResult {
	switch state {
	case StateNotStarted, StateNeedsRevision:
		return GuardResult{Allowed: true}
	default:
		return GuardResult{
			Allowed: false,
			Reason:  (&InvalidTransitionError{SectionID: id, From: state, Operation: "submit_draft"}).Error(),
		}
	}
}

// CanRequestRevision evaluates whether a revision may be requested.
// Rule: demotion is allowed from drafted or approved, never once locked.
func CanRequestRevision(id ID, state State) GuardResult {
	switch state {
	case StateDrafted, StateApproved:
		return GuardResult{Allowed: true}
	default:
		return GuardResult{
			Allowed: false,
			Reason:  (&InvalidTransitionError{SectionID: id, From: state, Operation: "request_revision"}).Error(),
		}
	}
}

// CanApprove evaluates whether a section may be approved.
// Rule: only drafted sections can be approved. Continuity checks are a
// separate gate run by the orchestrator before the transition is applied.
func CanApprove(id ID, state State) GuardResult {
	if state != StateDrafted {
		return GuardResult{
			Allowed: false,
			Reason:  (&InvalidTransitionError{SectionID: id, From: state, Operation: "approve"}).Error(),
		}
	}
	return GuardResult{Allowed: true}
}

// CanLock evaluates whether a section may be locked.
// Rule: locked is terminal and reachable only from approved. Locking an
// already-locked section is a no-op (still allowed, just does nothing).
func CanLock(id ID, state State) GuardResult {
	switch state {
	case StateApproved, StateLocked:
		return GuardResult{Allowed: true}
	default:
		return GuardResult{
			Allowed: false,
			Reason:  (&InvalidTransitionError{SectionID: id, From: state, Operation: "lock"}).Error(),
		}
	}
}

// DependencyWarnings returns a completeness warning for every declared soft
// dependency that has not been started yet. Drafting is never blocked on
// dependencies; the warnings surface in the stored manifest.
func DependencyWarnings(declared []ID, stateOf map[ID]State) []string {
	var warnings []string
	for _, dep := range declared {
		if stateOf[dep] == StateNotStarted || stateOf[dep] == "" {
			warnings = append(warnings, fmt.Sprintf("declared dependency %s has not been started", dep))
		}
	}
	return warnings
}
