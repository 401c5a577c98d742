// Package continuity contains the cross-section continuity validators and
// the findings model. All validators are pure functions over the fact
// ledger plus the newly changed facts - no I/O.
package continuity

import "time"

// Severity classifies how a finding gates assembly.
type Severity string

const (
	SeverityBlocking Severity = "blocking"
	SeverityAdvisory Severity = "advisory"
)

// Resolution tracks the lifecycle of a finding.
type Resolution string

const (
	ResolutionOpen         Resolution = "open"
	ResolutionAcknowledged Resolution = "acknowledged"
	ResolutionResolved     Resolution = "resolved"
)

// Kind identifies which validator produced a finding.
type Kind string

const (
	KindIdentity      Kind = "identity"
	KindDateLocation  Kind = "date_location"
	KindContradiction Kind = "contradiction"
)

// Finding records a detected inconsistency between a pair of facts.
// Exactly one finding exists per unordered fact pair; the pair key is
// canonical so that (A,B) and (B,A) collapse to the same finding.
type Finding struct {
	ID          string
	PairKey     string
	FactA       string
	FactB       string
	Kind        Kind
	Severity    Severity
	Resolution  Resolution
	Explanation string
	DetectedAt  time.Time
}

// PairKey returns the canonical key for an unordered fact pair.
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// newFinding builds an unsaved finding with a canonical pair key. The
// orchestrator assigns the ID and detection time when it persists the result.
func newFinding(kind Kind, severity Severity, factA, factB, explanation string) Finding {
	if factA > factB {
		factA, factB = factB, factA
	}
	return Finding{
		PairKey:     PairKey(factA, factB),
		FactA:       factA,
		FactB:       factB,
		Kind:        kind,
		Severity:    severity,
		Resolution:  ResolutionOpen,
		Explanation: explanation,
	}
}
