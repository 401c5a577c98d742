package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/dossier/internal/ports/secondary"
)

// minContentLength is the shortest draft the gate accepts without a note.
const minContentLength = 40

// placeholderMarkers flag drafts that still contain scaffolding text.
var placeholderMarkers = []string{"TBD", "FIXME", "lorem ipsum", "<placeholder>"}

// HeuristicQualityGate is a local stand-in for the external quality-scoring
// capability. Like the real gate it is advisory: the orchestrator records
// the reason in the manifest and never blocks on it.
type HeuristicQualityGate struct{}

// NewHeuristicQualityGate creates the local quality gate.
func NewHeuristicQualityGate() *HeuristicQualityGate {
	return &HeuristicQualityGate{}
}

// Check scores a draft with cheap textual heuristics.
func (g *HeuristicQualityGate) Check(ctx context.Context, text string, kind string) (secondary.QualityCheck, error) {
	if err := ctx.Err(); err != nil {
		return secondary.QualityCheck{}, err
	}

	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minContentLength {
		return secondary.QualityCheck{
			Pass:   false,
			Reason: fmt.Sprintf("content is %d characters, expected at least %d", len(trimmed), minContentLength),
		}, nil
	}
	lower := strings.ToLower(trimmed)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, strings.ToLower(marker)) {
			return secondary.QualityCheck{
				Pass:   false,
				Reason: fmt.Sprintf("content contains placeholder marker %q", marker),
			}, nil
		}
	}
	return secondary.QualityCheck{Pass: true}, nil
}
