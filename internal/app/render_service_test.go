package app

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

func TestRenderSectionsDraftsEverySuccess(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	caseID := createFieldCase(t, env)

	env.renderer.outputs[section.S3] = &secondary.RenderOutput{
		Content:  "Surveillance log.",
		Manifest: section.Manifest{Complete: true},
		Facts: []fact.Fact{
			locationAssertion("subj-smith", "12 Harbor Rd", "2026-03-01T07:40:00Z"),
		},
	}

	resp, err := env.sections.RenderSections(ctx, primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: []section.ID{section.CP, section.S3},
	})
	if err != nil {
		t.Fatalf("RenderSections() error = %v", err)
	}
	if len(resp.Failed) != 0 {
		t.Fatalf("Failed = %v, want none", resp.Failed)
	}

	drafted := append([]section.ID(nil), resp.Drafted...)
	sort.Slice(drafted, func(i, j int) bool { return drafted[i] < drafted[j] })
	if len(drafted) != 2 || drafted[0] != section.CP || drafted[1] != section.S3 {
		t.Errorf("Drafted = %v, want [cp s3]", resp.Drafted)
	}

	got, _ := env.sectionRepo.Get(ctx, caseID, "s3")
	if got.State != string(section.StateDrafted) || got.Content != "Surveillance log." {
		t.Errorf("s3 = %+v, want rendered draft stored", got)
	}
	facts, _ := env.factRepo.ListByCase(ctx, caseID)
	if len(facts) != 1 {
		t.Errorf("stored facts = %d, want renderer facts appended", len(facts))
	}
}

func TestRenderSectionsFailureLeavesSectionUntouched(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	caseID := createFieldCase(t, env)

	env.renderer.errs[section.S2] = errors.New("model unavailable")

	resp, err := env.sections.RenderSections(ctx, primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: []section.ID{section.S1, section.S2},
	})
	if err != nil {
		t.Fatalf("RenderSections() error = %v", err)
	}
	if len(resp.Drafted) != 1 || resp.Drafted[0] != section.S1 {
		t.Errorf("Drafted = %v, want [s1]", resp.Drafted)
	}
	if _, failed := resp.Failed[section.S2]; !failed {
		t.Fatalf("Failed = %v, want s2 entry", resp.Failed)
	}

	got, _ := env.sectionRepo.Get(ctx, caseID, "s2")
	if got.State != string(section.StateNotStarted) {
		t.Errorf("s2 state = %q after failed render, want pre-call not_started", got.State)
	}
}

func TestRenderSectionsTimeoutFailsSection(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	caseID := createFieldCase(t, env)

	env.renderer.delay = 50 * time.Millisecond

	resp, err := env.sections.RenderSections(ctx, primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: []section.ID{section.S1},
		Timeout:  time.Millisecond,
	})
	if err != nil {
		t.Fatalf("RenderSections() error = %v", err)
	}
	if _, failed := resp.Failed[section.S1]; !failed {
		t.Fatalf("Failed = %v, want s1 timed out", resp.Failed)
	}
}

func TestRenderSectionsQualityGateIsAdvisory(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	caseID := createFieldCase(t, env)

	env.quality.check = secondary.QualityCheck{Pass: false, Reason: "missing date stamps"}

	resp, err := env.sections.RenderSections(ctx, primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: []section.ID{section.S1},
	})
	if err != nil {
		t.Fatalf("RenderSections() error = %v", err)
	}
	if len(resp.Drafted) != 1 {
		t.Fatalf("Drafted = %v, want failed quality check to still draft", resp.Drafted)
	}

	got, _ := env.sectionRepo.Get(ctx, caseID, "s1")
	if got.QualityNote != "missing date stamps" {
		t.Errorf("QualityNote = %q, want gate reason surfaced", got.QualityNote)
	}
}

func TestRenderSectionsRejectsUnknownSection(t *testing.T) {
	env := newTestEnv()
	caseID := createFieldCase(t, env)

	_, err := env.sections.RenderSections(context.Background(), primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: []section.ID{"appendix"},
	})
	if err == nil {
		t.Fatal("RenderSections() with unknown section = nil error, want rejection")
	}
}
