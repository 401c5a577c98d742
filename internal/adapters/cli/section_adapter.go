package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
)

// SectionAdapter is a thin adapter that translates CLI operations to
// SectionService calls.
type SectionAdapter struct {
	service primary.SectionService
	out     io.Writer
}

// NewSectionAdapter creates a new SectionAdapter with the given service.
func NewSectionAdapter(service primary.SectionService, out io.Writer) *SectionAdapter {
	return &SectionAdapter{
		service: service,
		out:     out,
	}
}

// Draft submits content for a section directly, without the external
// renderer.
func (a *SectionAdapter) Draft(ctx context.Context, caseID, sectionID, content string, complete bool) error {
	resp, err := a.service.SubmitDraft(ctx, primary.SubmitDraftRequest{
		CaseID:    caseID,
		SectionID: section.ID(sectionID),
		Content:   content,
		Manifest:  section.Manifest{Complete: complete},
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Section %s drafted in case %s\n", sectionID, caseID)
	for _, w := range resp.Section.Manifest.Warnings {
		fmt.Fprintf(a.out, "  warning: %s\n", w)
	}
	for _, f := range resp.NewFindings {
		fmt.Fprintf(a.out, "  continuity: [%s] %s (%s)\n", f.Severity, f.Explanation, f.PairKey)
	}
	return nil
}

// Render invokes the external renderer for the given sections.
func (a *SectionAdapter) Render(ctx context.Context, caseID string, sectionIDs []string, timeout time.Duration) error {
	ids := make([]section.ID, len(sectionIDs))
	for i, s := range sectionIDs {
		ids[i] = section.ID(s)
	}

	resp, err := a.service.RenderSections(ctx, primary.RenderSectionsRequest{
		CaseID:   caseID,
		Sections: ids,
		Timeout:  timeout,
	})
	if err != nil {
		return err
	}

	for _, id := range resp.Drafted {
		fmt.Fprintf(a.out, "✓ Section %s rendered and drafted\n", id)
	}
	for id, reason := range resp.Failed {
		fmt.Fprintf(a.out, "✗ Section %s failed: %s\n", id, reason)
	}
	if len(resp.Failed) > 0 {
		return fmt.Errorf("%d section(s) failed to render", len(resp.Failed))
	}
	return nil
}

// Approve approves a drafted section. A refused approval lists every
// blocking finding.
func (a *SectionAdapter) Approve(ctx context.Context, caseID, sectionID, approver string) error {
	err := a.service.Approve(ctx, primary.ApproveRequest{
		CaseID:    caseID,
		SectionID: section.ID(sectionID),
		Approver:  approver,
	})

	var blocked *primary.ApprovalBlockedError
	if errors.As(err, &blocked) {
		fmt.Fprintf(a.out, "✗ Approval refused for section %s: %d blocking finding(s)\n", sectionID, len(blocked.Findings))
		for _, f := range blocked.Findings {
			fmt.Fprintf(a.out, "  [%s] %s (%s)\n", f.Kind, f.Explanation, f.PairKey)
		}
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Section %s approved by %s\n", sectionID, approver)
	return nil
}

// Revise demotes a drafted or approved section to needs_revision.
func (a *SectionAdapter) Revise(ctx context.Context, caseID, sectionID, reason string) error {
	err := a.service.RequestRevision(ctx, primary.RequestRevisionRequest{
		CaseID:    caseID,
		SectionID: section.ID(sectionID),
		Reason:    reason,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Section %s sent back for revision\n", sectionID)
	return nil
}

// Show displays one section.
func (a *SectionAdapter) Show(ctx context.Context, caseID, sectionID string) error {
	s, err := a.service.GetSection(ctx, caseID, section.ID(sectionID))
	if err != nil {
		return fmt.Errorf("failed to get section: %w", err)
	}

	fmt.Fprintf(a.out, "\nSection: %s (%s)\n", s.SectionID, s.Title)
	fmt.Fprintf(a.out, "State:   %s\n", s.State)
	if s.ApprovedBy != "" {
		fmt.Fprintf(a.out, "Approved: %s at %s\n", s.ApprovedBy, s.ApprovedAt)
	}
	if s.Manifest.QualityNote != "" {
		fmt.Fprintf(a.out, "Quality note: %s\n", s.Manifest.QualityNote)
	}
	for _, w := range s.Manifest.Warnings {
		fmt.Fprintf(a.out, "Warning: %s\n", w)
	}
	if s.Content != "" {
		fmt.Fprintf(a.out, "\n%s\n", s.Content)
	}
	fmt.Fprintln(a.out)

	return nil
}
