// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing and output
// formatting, but delegate all business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/dossier/internal/ports/primary"
)

// CaseAdapter is a thin adapter that translates CLI operations to
// CaseService calls. It depends only on the CaseService interface, enabling
// easy testing with mocks.
type CaseAdapter struct {
	service primary.CaseService
	out     io.Writer
}

// NewCaseAdapter creates a new CaseAdapter with the given service.
func NewCaseAdapter(service primary.CaseService, out io.Writer) *CaseAdapter {
	return &CaseAdapter{
		service: service,
		out:     out,
	}
}

// Create creates a new case.
func (a *CaseAdapter) Create(ctx context.Context, title, reportType, owner string) error {
	resp, err := a.service.CreateCase(ctx, primary.CreateCaseRequest{
		Title:      title,
		ReportType: reportType,
		Owner:      owner,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created case %s (%s): %s\n", resp.CaseID, reportType, resp.Case.Title)
	fmt.Fprintf(a.out, "  required sections: %v\n", resp.Case.Required)
	return nil
}

// List lists cases with optional status filter.
func (a *CaseAdapter) List(ctx context.Context, status string) error {
	cases, err := a.service.ListCases(ctx, primary.CaseFilters{Status: status})
	if err != nil {
		return fmt.Errorf("failed to list cases: %w", err)
	}

	if len(cases) == 0 {
		fmt.Fprintln(a.out, "No cases found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-12s %-14s %-10s %s\n", "ID", "TYPE", "STATUS", "TITLE")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, c := range cases {
		fmt.Fprintf(a.out, "%-12s %-14s %-10s %s\n", c.ID, c.ReportType, c.Status, c.Title)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays a case with its sections.
func (a *CaseAdapter) Show(ctx context.Context, caseID string) (*primary.Case, error) {
	c, err := a.service.GetCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get case: %w", err)
	}

	fmt.Fprintf(a.out, "\nCase:   %s\n", c.ID)
	fmt.Fprintf(a.out, "Title:  %s\n", c.Title)
	fmt.Fprintf(a.out, "Type:   %s\n", c.ReportType)
	fmt.Fprintf(a.out, "Status: %s\n", c.Status)
	if c.Owner != "" {
		fmt.Fprintf(a.out, "Owner:  %s\n", c.Owner)
	}
	if c.ArchivedAt != "" {
		fmt.Fprintf(a.out, "Archived: %s\n", c.ArchivedAt)
	}

	required := make(map[string]bool, len(c.Required))
	for _, id := range c.Required {
		required[id] = true
	}
	fmt.Fprintf(a.out, "\n%-8s %-28s %-16s %s\n", "SECTION", "TITLE", "STATE", "REQUIRED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, s := range c.Sections {
		req := ""
		if required[string(s.SectionID)] {
			req = "yes"
		}
		fmt.Fprintf(a.out, "%-8s %-28s %-16s %s\n", s.SectionID, s.Title, s.State, req)
	}
	fmt.Fprintln(a.out)

	return c, nil
}

// Reset resets every section of a case to not_started.
func (a *CaseAdapter) Reset(ctx context.Context, caseID string) error {
	if err := a.service.ResetCase(ctx, caseID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Case %s reset: all sections returned to not_started\n", caseID)
	return nil
}
