package primary

import (
	"context"

	"github.com/example/dossier/internal/core/section"
)

// AssemblyService defines the primary port for the final assembly gate.
type AssemblyService interface {
	// RequestAssembly re-evaluates the gate preconditions and, on success,
	// locks the approved sections, emits assembly-ready, hands the ordered
	// sections to the document renderer, and archives the case. Repeated
	// calls with no intervening state change yield the same result without
	// side effects.
	RequestAssembly(ctx context.Context, caseID string) (*AssemblyResult, error)

	// AbortAssembly prevents a pending RequestAssembly from entering the
	// case lock. Once gate evaluation has been admitted the abort is
	// rejected.
	AbortAssembly(ctx context.Context, caseID string) error
}

// AssemblyResult reports a successful gate pass.
type AssemblyResult struct {
	CaseID           string
	Locked           []section.ID // sections locked by this call; empty on repeat
	Order            []section.ID
	Artifact         []byte
	AlreadyAssembled bool
}
