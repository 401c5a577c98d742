package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

// FindingAdapter is a thin adapter that translates CLI operations to
// FindingService calls.
type FindingAdapter struct {
	service primary.FindingService
	out     io.Writer
}

// NewFindingAdapter creates a new FindingAdapter with the given service.
func NewFindingAdapter(service primary.FindingService, out io.Writer) *FindingAdapter {
	return &FindingAdapter{
		service: service,
		out:     out,
	}
}

// List lists a case's continuity findings.
func (a *FindingAdapter) List(ctx context.Context, caseID, severity, resolution string) error {
	findings, err := a.service.ListFindings(ctx, caseID, primary.FindingFilters{
		Severity:   continuity.Severity(severity),
		Resolution: continuity.Resolution(resolution),
	})
	if err != nil {
		return fmt.Errorf("failed to list findings: %w", err)
	}

	if len(findings) == 0 {
		fmt.Fprintln(a.out, "No findings")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-16s %-14s %-10s %-13s %s\n", "PAIR", "KIND", "SEVERITY", "RESOLUTION", "EXPLANATION")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────")
	for _, f := range findings {
		fmt.Fprintf(a.out, "%-16s %-14s %-10s %-13s %s\n", f.PairKey, f.Kind, f.Severity, f.Resolution, f.Explanation)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Acknowledge marks an open finding as acknowledged.
func (a *FindingAdapter) Acknowledge(ctx context.Context, caseID, pairKey string) error {
	if err := a.service.Acknowledge(ctx, caseID, pairKey); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Finding %s acknowledged; it no longer gates assembly\n", pairKey)
	return nil
}

// SignalAdapter lists the signal delivery audit log for a case.
type SignalAdapter struct {
	repo secondary.SignalLogRepository
	out  io.Writer
}

// NewSignalAdapter creates a new SignalAdapter over the signal log.
func NewSignalAdapter(repo secondary.SignalLogRepository, out io.Writer) *SignalAdapter {
	return &SignalAdapter{
		repo: repo,
		out:  out,
	}
}

// List prints a case's signal log, oldest first.
func (a *SignalAdapter) List(ctx context.Context, caseID string) error {
	entries, err := a.repo.ListByCase(ctx, caseID)
	if err != nil {
		return fmt.Errorf("failed to list signal log: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(a.out, "No signals recorded")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-5s %-8s %-12s %-10s %-9s %s\n", "CODE", "SOURCE", "SUBSCRIBER", "DELIVERED", "ATTEMPTS", "EMITTED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, e := range entries {
		delivered := "yes"
		if !e.Delivered {
			delivered = "NO"
		}
		fmt.Fprintf(a.out, "%-5d %-8s %-12s %-10s %-9d %s\n", e.Code, e.Source, e.Subscriber, delivered, e.Attempts, e.EmittedAt)
	}
	fmt.Fprintln(a.out)

	return nil
}
