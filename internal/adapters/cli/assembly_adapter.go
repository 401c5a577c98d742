package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/example/dossier/internal/core/assembly"
	"github.com/example/dossier/internal/ports/primary"
)

// AssemblyAdapter is a thin adapter that translates CLI operations to
// AssemblyService calls.
type AssemblyAdapter struct {
	service primary.AssemblyService
	out     io.Writer
}

// NewAssemblyAdapter creates a new AssemblyAdapter with the given service.
func NewAssemblyAdapter(service primary.AssemblyService, out io.Writer) *AssemblyAdapter {
	return &AssemblyAdapter{
		service: service,
		out:     out,
	}
}

// Request runs the assembly gate and, on success, writes the composed
// document to outputPath (or stdout when empty). A failed gate prints every
// blocker at once.
func (a *AssemblyAdapter) Request(ctx context.Context, caseID, outputPath string) error {
	result, err := a.service.RequestAssembly(ctx, caseID)
	if err != nil {
		a.printBlockers(err)
		return err
	}

	if result.AlreadyAssembled {
		fmt.Fprintf(a.out, "Case %s was already assembled; returning the same document\n", caseID)
	} else {
		fmt.Fprintf(a.out, "✓ Case %s assembled: %d section(s) locked, case archived\n", caseID, len(result.Locked))
	}

	if outputPath == "" {
		_, err = a.out.Write(result.Artifact)
		return err
	}
	if err := os.WriteFile(outputPath, result.Artifact, 0o644); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Document written to %s\n", outputPath)
	return nil
}

// Abort flags a pending assembly request for refusal.
func (a *AssemblyAdapter) Abort(ctx context.Context, caseID string) error {
	if err := a.service.AbortAssembly(ctx, caseID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Next assembly request for case %s will be refused\n", caseID)
	return nil
}

func (a *AssemblyAdapter) printBlockers(err error) {
	var incomplete *assembly.IncompleteSectionsError
	if errors.As(err, &incomplete) {
		fmt.Fprintf(a.out, "✗ Assembly blocked: %d required section(s) not approved\n", len(incomplete.Missing))
		for _, id := range incomplete.Missing {
			fmt.Fprintf(a.out, "  - %s\n", id)
		}
		return
	}
	var unresolved *assembly.UnresolvedContinuityError
	if errors.As(err, &unresolved) {
		fmt.Fprintf(a.out, "✗ Assembly blocked: %d unresolved blocking finding(s)\n", len(unresolved.Findings))
		for _, f := range unresolved.Findings {
			fmt.Fprintf(a.out, "  - [%s] %s (%s)\n", f.Kind, f.Explanation, f.PairKey)
		}
	}
}
