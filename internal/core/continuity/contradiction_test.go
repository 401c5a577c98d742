package continuity

import (
	"testing"

	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
)

func TestContradictionUntimedLocationsAdvisory(t *testing.T) {
	a := locationFact("F-001", "vehicle-1", "long-term garage", "", section.S3)
	b := locationFact("F-002", "vehicle-1", "impound lot", "", section.S5)
	ledger := mustLedger(t, a, b)

	findings := ContradictionDetector{}.Check(ledger, []fact.Fact{b})

	if len(findings) != 1 {
		t.Fatalf("Check() returned %d findings, want 1", len(findings))
	}
	if findings[0].Severity != SeverityAdvisory {
		t.Errorf("severity = %q, want advisory", findings[0].Severity)
	}
	if findings[0].Kind != KindContradiction {
		t.Errorf("kind = %q, want contradiction", findings[0].Kind)
	}
}

func TestContradictionAuthoritativePromotesToBlocking(t *testing.T) {
	a := locationFact("F-001", "vehicle-1", "long-term garage", "", section.S3)
	a.Authoritative = true
	b := locationFact("F-002", "vehicle-1", "impound lot", "", section.S5)
	ledger := mustLedger(t, a, b)

	findings := ContradictionDetector{}.Check(ledger, []fact.Fact{b})

	if len(findings) != 1 {
		t.Fatalf("Check() returned %d findings, want 1", len(findings))
	}
	if findings[0].Severity != SeverityBlocking {
		t.Errorf("severity = %q, want blocking against authoritative fact", findings[0].Severity)
	}
}

func TestContradictionSkipsPairsOwnedByDateLocation(t *testing.T) {
	// Both facts carry parseable event times: the date/location checker owns
	// this pair, the general detector must not duplicate it.
	a := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	b := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	ledger := mustLedger(t, a, b)

	if findings := (ContradictionDetector{}).Check(ledger, []fact.Fact{b}); len(findings) != 0 {
		t.Errorf("Check() = %v, want none for timed location pair", findings)
	}
}

func TestContradictionUnparseableDates(t *testing.T) {
	a := dateFact("F-001", "meeting", "early spring", section.S4)
	b := dateFact("F-002", "meeting", "sometime in autumn", section.S8)
	ledger := mustLedger(t, a, b)

	findings := ContradictionDetector{}.Check(ledger, []fact.Fact{b})

	if len(findings) != 1 {
		t.Fatalf("Check() returned %d findings, want 1", len(findings))
	}
	if findings[0].Severity != SeverityAdvisory {
		t.Errorf("severity = %q, want advisory", findings[0].Severity)
	}
}

func TestContradictionDifferentSubjectKeysIgnored(t *testing.T) {
	a := locationFact("F-001", "vehicle-1", "garage", "", section.S3)
	b := locationFact("F-002", "vehicle-2", "impound lot", "", section.S5)
	ledger := mustLedger(t, a, b)

	if findings := (ContradictionDetector{}).Check(ledger, []fact.Fact{b}); len(findings) != 0 {
		t.Errorf("Check() = %v, want none across different subject keys", findings)
	}
}
