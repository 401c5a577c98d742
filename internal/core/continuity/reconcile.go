package continuity

import (
	"time"

	"github.com/example/dossier/internal/core/fact"
)

// Reconcile merges freshly detected findings into the existing findings set
// for a case. Findings are keyed by fact pair, so re-validation updates or
// removes entries rather than duplicating them:
//
//   - a detected pair with no existing finding is inserted as open;
//   - a re-detected pair keeps its finding, refreshing severity and
//     explanation; a previously resolved finding that re-conflicts reopens,
//     while an acknowledged one stays acknowledged;
//   - an existing finding whose facts were superseded resolves automatically;
//   - an existing open finding in scope of this run (one of its facts
//     changed) that is no longer detected resolves;
//   - findings out of scope are returned untouched.
//
// The returned slice is the full post-run findings set in stable order.
func Reconcile(existing []Finding, detected []Finding, ledger *fact.Ledger, changed []fact.Fact, now time.Time) []Finding {
	changedIDs := make(map[string]bool, len(changed))
	for _, c := range changed {
		changedIDs[c.ID] = true
	}

	detectedByKey := make(map[string]Finding, len(detected))
	var detectedOrder []string
	for _, d := range detected {
		if _, dup := detectedByKey[d.PairKey]; !dup {
			detectedOrder = append(detectedOrder, d.PairKey)
		}
		detectedByKey[d.PairKey] = d
	}

	out := make([]Finding, 0, len(existing)+len(detected))
	for _, e := range existing {
		if !ledger.IsActive(e.FactA) || !ledger.IsActive(e.FactB) {
			e.Resolution = ResolutionResolved
			delete(detectedByKey, e.PairKey)
			out = append(out, e)
			continue
		}

		if d, ok := detectedByKey[e.PairKey]; ok {
			e.Severity = d.Severity
			e.Explanation = d.Explanation
			e.Kind = d.Kind
			if e.Resolution == ResolutionResolved {
				e.Resolution = ResolutionOpen
				e.DetectedAt = now
			}
			delete(detectedByKey, e.PairKey)
			out = append(out, e)
			continue
		}

		if (changedIDs[e.FactA] || changedIDs[e.FactB]) && e.Resolution == ResolutionOpen {
			e.Resolution = ResolutionResolved
		}
		out = append(out, e)
	}

	for _, key := range detectedOrder {
		d, ok := detectedByKey[key]
		if !ok {
			continue // matched an existing finding above
		}
		d.DetectedAt = now
		out = append(out, d)
	}
	return out
}

// OpenBlocking filters a findings set down to open blocking findings, the
// ones that gate assembly.
func OpenBlocking(findings []Finding) []Finding {
	var out []Finding
	for _, f := range findings {
		if f.Severity == SeverityBlocking && f.Resolution == ResolutionOpen {
			out = append(out, f)
		}
	}
	return out
}
