package continuity

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/example/dossier/internal/core/fact"
)

// DefaultTravelWindow is the interval within which two different locations
// for the same subject are merely unusual rather than impossible.
const DefaultTravelWindow = time.Hour

// DateLocationChecker flags facts asserting mutually exclusive timelines or
// locations for the same subject. Direct temporal/spatial impossibility is
// blocking; unusual-but-possible patterns are advisory.
type DateLocationChecker struct {
	TravelWindow time.Duration
}

func (c DateLocationChecker) Kind() Kind { return KindDateLocation }

func (c DateLocationChecker) Subjects() []fact.SubjectType {
	return []fact.SubjectType{fact.SubjectDate, fact.SubjectLocation}
}

func (c DateLocationChecker) window() time.Duration {
	if c.TravelWindow > 0 {
		return c.TravelWindow
	}
	return DefaultTravelWindow
}

// Check compares the changed facts against the active ledger.
func (c DateLocationChecker) Check(ledger *fact.Ledger, changed []fact.Fact) []Finding {
	var findings []Finding
	for _, pair := range pairsForChanged(ledger, changed, c.Subjects()) {
		a, b := pair[0], pair[1]
		if a.Subject != b.Subject || a.SubjectKey != b.SubjectKey {
			continue
		}
		switch a.Subject {
		case fact.SubjectLocation:
			if f, ok := c.checkLocationPair(a, b); ok {
				findings = append(findings, f)
			}
		case fact.SubjectDate:
			if f, ok := c.checkDatePair(a, b); ok {
				findings = append(findings, f)
			}
		}
	}
	return findings
}

func (c DateLocationChecker) checkLocationPair(a, b fact.Fact) (Finding, bool) {
	if normalizePlace(a.Value) == normalizePlace(b.Value) {
		return Finding{}, false
	}
	ta, errA := parseObserved(a.ObservedAt)
	tb, errB := parseObserved(b.ObservedAt)
	if errA != nil || errB != nil {
		// Without event times the conflict is not provably impossible;
		// the contradiction detector covers it.
		return Finding{}, false
	}

	gap := ta.Sub(tb)
	if gap < 0 {
		gap = -gap
	}
	if gap == 0 {
		return newFinding(KindDateLocation, SeverityBlocking, a.ID, b.ID,
			fmt.Sprintf("subject %q placed at %q (section %s) and %q (section %s) at the same time %s",
				a.SubjectKey, a.Value, a.SectionID, b.Value, b.SectionID, ta.Format(time.RFC3339))), true
	}
	if gap <= c.window() {
		return newFinding(KindDateLocation, SeverityAdvisory, a.ID, b.ID,
			fmt.Sprintf("subject %q placed at %q and %q only %s apart (sections %s, %s)",
				a.SubjectKey, a.Value, b.Value, gap, a.SectionID, b.SectionID)), true
	}
	return Finding{}, false
}

func (c DateLocationChecker) checkDatePair(a, b fact.Fact) (Finding, bool) {
	ta, errA := dateparse.ParseAny(a.Value)
	tb, errB := dateparse.ParseAny(b.Value)
	if errA != nil || errB != nil {
		return Finding{}, false // left to the contradiction detector
	}
	if ta.Equal(tb) {
		return Finding{}, false // same instant, different formatting
	}
	return newFinding(KindDateLocation, SeverityBlocking, a.ID, b.ID,
		fmt.Sprintf("conflicting timeline for %q: section %s records %s, section %s records %s",
			a.SubjectKey, a.SectionID, ta.Format(time.RFC3339), b.SectionID, tb.Format(time.RFC3339))), true
}

// parseObserved parses a fact's free-form event time.
func parseObserved(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, fmt.Errorf("no observed time")
	}
	return dateparse.ParseAny(raw)
}

// normalizePlace canonicalizes a location value for equality comparison.
func normalizePlace(v string) string {
	return strings.Join(strings.Fields(strings.ToLower(v)), " ")
}

// BothParseable reports whether both raw date values parse. Exposed for the
// contradiction detector's coverage filter.
func bothParseable(a, b string) bool {
	_, errA := dateparse.ParseAny(a)
	_, errB := dateparse.ParseAny(b)
	return errA == nil && errB == nil
}
