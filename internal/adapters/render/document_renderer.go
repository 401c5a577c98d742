package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/example/dossier/internal/ports/secondary"
)

// MarkdownComposer assembles the final report as a single markdown document
// in the order handed down by the assembly gate.
type MarkdownComposer struct{}

// NewMarkdownComposer creates the markdown document renderer.
func NewMarkdownComposer() *MarkdownComposer {
	return &MarkdownComposer{}
}

// Assemble concatenates the ordered sections into one document.
func (c *MarkdownComposer) Assemble(ctx context.Context, sections []secondary.OrderedSection) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, fmt.Errorf("nothing to assemble")
	}

	var buf bytes.Buffer
	for i, s := range sections {
		if i > 0 {
			buf.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&buf, "## %s\n\n", s.Title)
		buf.WriteString(s.Content)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}
