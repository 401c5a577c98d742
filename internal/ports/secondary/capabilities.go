package secondary

import (
	"context"
	"fmt"

	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
)

// RenderError reports a failed or timed-out external capability call. The
// section stays in its prior state; the orchestrator never retries
// automatically.
type RenderError struct {
	SectionID section.ID
	Reason    string
}

func (e *RenderError) Error() string {
	if e.SectionID != "" {
		return fmt.Sprintf("render failed for section %s: %s", e.SectionID, e.Reason)
	}
	return fmt.Sprintf("render failed: %s", e.Reason)
}

// RenderOutput is what a section renderer produces: opaque content, a
// structured manifest, and the facts the section asserts.
type RenderOutput struct {
	Content  string
	Manifest section.Manifest
	Facts    []fact.Fact
}

// SectionRenderer is the external section-rendering capability. The
// orchestrator only consumes this interface; rendering logic is out of
// scope. Calls honor ctx cancellation and deadlines; on cancellation the
// section remains in its pre-call state.
type SectionRenderer interface {
	Render(ctx context.Context, sectionID section.ID, caseCtx CaseContext) (*RenderOutput, error)
}

// CaseContext carries the case data a renderer needs.
type CaseContext struct {
	CaseID     string
	ReportType string
	Title      string
	Owner      string
}

// QualityCheck is the result of the external AI quality gate. Advisory
// only: a failed check surfaces as a manifest note and never blocks a
// draft.
type QualityCheck struct {
	Pass   bool
	Reason string
}

// QualityGate is the external language-model quality-scoring capability,
// treated as an opaque pass/fail check.
type QualityGate interface {
	Check(ctx context.Context, text string, kind string) (QualityCheck, error)
}

// OrderedSection pairs a section ID with its content for composition.
type OrderedSection struct {
	SectionID section.ID
	Title     string
	Content   string
}

// DocumentRenderer is the external document composition capability, invoked
// only after the assembly gate authorizes it.
type DocumentRenderer interface {
	Assemble(ctx context.Context, sections []OrderedSection) ([]byte, error)
}
