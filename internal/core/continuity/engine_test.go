package continuity

import (
	"testing"
	"time"

	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
)

func TestEngineSkipsValidatorsWithoutMatchingSubjects(t *testing.T) {
	// A person-only change must not trigger the date/location checker, even
	// though the ledger holds a conflicting location pair it would flag on a
	// full re-scan.
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	person := personFact("F-003", "subj-smith", "John Smith", section.S1)
	ledger := mustLedger(t, locA, locB, person)

	findings := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{person})

	if len(findings) != 0 {
		t.Errorf("Evaluate() = %v, want none for an incremental person-only change", findings)
	}
}

func TestEngineEvaluatesMatchingValidators(t *testing.T) {
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	ledger := mustLedger(t, locA, locB)

	findings := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})

	if len(findings) != 1 {
		t.Fatalf("Evaluate() returned %d findings, want 1", len(findings))
	}
	if findings[0].Kind != KindDateLocation {
		t.Errorf("kind = %q, want date_location", findings[0].Kind)
	}
}

func TestEngineOneFindingPerPair(t *testing.T) {
	// Location pairs with event times are owned by the date/location
	// checker; the general detector must not add a second finding for the
	// same pair even though the values also disagree.
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locA.Authoritative = true
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:45:00Z", section.S3)
	ledger := mustLedger(t, locA, locB)

	findings := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})

	if len(findings) != 1 {
		t.Fatalf("Evaluate() returned %d findings, want exactly 1 per pair", len(findings))
	}
}

func TestReconcileSupersedeAutoResolves(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)

	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S5)
	ledger := mustLedger(t, locA, locB)

	existing := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})
	if len(existing) != 1 || existing[0].Severity != SeverityBlocking {
		t.Fatalf("setup: expected one blocking finding, got %v", existing)
	}

	// The stale section 5 fact is corrected: same place as section 2.
	corrected := locationFact("F-003", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S5)
	corrected.Supersedes = "F-002"
	if err := ledger.Append(corrected); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	detected := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{corrected})
	result := Reconcile(existing, detected, ledger, []fact.Fact{corrected}, now)

	if len(result) != 1 {
		t.Fatalf("Reconcile() returned %d findings, want 1", len(result))
	}
	if result[0].Resolution != ResolutionResolved {
		t.Errorf("resolution = %q, want resolved after supersede", result[0].Resolution)
	}
	if len(OpenBlocking(result)) != 0 {
		t.Errorf("OpenBlocking() = %v, want none", OpenBlocking(result))
	}
}

func TestReconcileInsertsNewFindings(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	ledger := mustLedger(t, locA, locB)

	detected := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})
	result := Reconcile(nil, detected, ledger, []fact.Fact{locB}, now)

	if len(result) != 1 {
		t.Fatalf("Reconcile() returned %d findings, want 1", len(result))
	}
	if result[0].Resolution != ResolutionOpen {
		t.Errorf("resolution = %q, want open", result[0].Resolution)
	}
	if !result[0].DetectedAt.Equal(now) {
		t.Errorf("DetectedAt = %v, want %v", result[0].DetectedAt, now)
	}
}

func TestReconcileAcknowledgedStaysAcknowledged(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	ledger := mustLedger(t, locA, locB)

	detected := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})
	existing := Reconcile(nil, detected, ledger, []fact.Fact{locB}, now)
	existing[0].Resolution = ResolutionAcknowledged

	// Re-validation of the same pair must not reopen an acknowledged finding.
	redetected := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})
	result := Reconcile(existing, redetected, ledger, []fact.Fact{locB}, now.Add(time.Hour))

	if len(result) != 1 {
		t.Fatalf("Reconcile() returned %d findings, want 1", len(result))
	}
	if result[0].Resolution != ResolutionAcknowledged {
		t.Errorf("resolution = %q, want acknowledged preserved", result[0].Resolution)
	}
}

func TestReconcileNoDuplicatesOnRevalidation(t *testing.T) {
	now := time.Date(2026, 2, 2, 12, 0, 0, 0, time.UTC)
	locA := locationFact("F-001", "subj-smith", "Gloucester", "2026-02-01T14:30:00Z", section.S2)
	locB := locationFact("F-002", "subj-smith", "Boston", "2026-02-01T14:30:00Z", section.S3)
	ledger := mustLedger(t, locA, locB)

	detected := NewEngine(Config{}).Evaluate(ledger, []fact.Fact{locB})
	first := Reconcile(nil, detected, ledger, []fact.Fact{locB}, now)
	second := Reconcile(first, detected, ledger, []fact.Fact{locB}, now.Add(time.Minute))

	if len(second) != 1 {
		t.Errorf("Reconcile() after re-validation returned %d findings, want 1 (no duplicates)", len(second))
	}
}
