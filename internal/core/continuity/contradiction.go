package continuity

import (
	"fmt"

	"github.com/example/dossier/internal/core/fact"
)

// ContradictionDetector is the general pairwise comparison for facts with
// the same subject type and subject key but differing values, where the
// conflict is not already covered by the identity matcher or the
// date/location checker. Findings are advisory unless one of the facts is
// marked authoritative by its section manifest, which promotes the conflict
// to blocking.
type ContradictionDetector struct{}

func (d ContradictionDetector) Kind() Kind { return KindContradiction }

func (d ContradictionDetector) Subjects() []fact.SubjectType {
	return []fact.SubjectType{fact.SubjectDate, fact.SubjectLocation}
}

// Check compares the changed facts against the active ledger.
func (d ContradictionDetector) Check(ledger *fact.Ledger, changed []fact.Fact) []Finding {
	var findings []Finding
	for _, pair := range pairsForChanged(ledger, changed, d.Subjects()) {
		a, b := pair[0], pair[1]
		if a.Subject != b.Subject || a.SubjectKey != b.SubjectKey || a.Value == b.Value {
			continue
		}
		if covered(a, b) {
			continue
		}

		severity := SeverityAdvisory
		note := ""
		if a.Authoritative || b.Authoritative {
			severity = SeverityBlocking
			note = " (conflicts with an authoritative fact)"
		}
		findings = append(findings, newFinding(KindContradiction, severity, a.ID, b.ID,
			fmt.Sprintf("%s facts for %q disagree: %q (section %s) vs %q (section %s)%s",
				a.Subject, a.SubjectKey, a.Value, a.SectionID, b.Value, b.SectionID, note)))
	}
	return findings
}

// covered reports whether a more specific validator already owns this pair.
func covered(a, b fact.Fact) bool {
	switch a.Subject {
	case fact.SubjectDate:
		return bothParseable(a.Value, b.Value)
	case fact.SubjectLocation:
		_, errA := parseObserved(a.ObservedAt)
		_, errB := parseObserved(b.ObservedAt)
		return errA == nil && errB == nil
	}
	return false
}
