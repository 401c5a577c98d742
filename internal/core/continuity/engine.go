package continuity

import (
	"time"

	"github.com/example/dossier/internal/core/fact"
)

// Validator is a pure continuity check over the fact ledger plus the newly
// changed facts.
type Validator interface {
	Kind() Kind
	Subjects() []fact.SubjectType
	Check(ledger *fact.Ledger, changed []fact.Fact) []Finding
}

// Config tunes the validator set.
type Config struct {
	SimilarityThreshold float64
	TravelWindow        time.Duration
}

// Engine dispatches ledger changes to the validators whose subject-type
// filters match the changed facts. Validation is incremental: only the
// changed facts are compared against the existing ledger, never a full
// re-scan.
type Engine struct {
	validators []Validator
}

// NewEngine builds the standard validator set.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		validators: []Validator{
			IdentityMatcher{Threshold: cfg.SimilarityThreshold},
			DateLocationChecker{TravelWindow: cfg.TravelWindow},
			ContradictionDetector{},
		},
	}
}

// Evaluate runs every validator whose subject filter matches at least one
// changed fact and merges the results by pair key. When two validators flag
// the same pair, the blocking classification wins.
func (e *Engine) Evaluate(ledger *fact.Ledger, changed []fact.Fact) []Finding {
	changedSubjects := make(map[fact.SubjectType]bool)
	for _, c := range changed {
		changedSubjects[c.Subject] = true
	}

	byKey := make(map[string]Finding)
	var order []string
	for _, v := range e.validators {
		if !subjectsMatch(v.Subjects(), changedSubjects) {
			continue
		}
		for _, f := range v.Check(ledger, changed) {
			existing, seen := byKey[f.PairKey]
			if !seen {
				byKey[f.PairKey] = f
				order = append(order, f.PairKey)
				continue
			}
			if existing.Severity == SeverityAdvisory && f.Severity == SeverityBlocking {
				byKey[f.PairKey] = f
			}
		}
	}

	findings := make([]Finding, 0, len(order))
	for _, key := range order {
		findings = append(findings, byKey[key])
	}
	return findings
}

func subjectsMatch(subjects []fact.SubjectType, changed map[fact.SubjectType]bool) bool {
	for _, s := range subjects {
		if changed[s] {
			return true
		}
	}
	return false
}
