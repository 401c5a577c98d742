// Package render contains the local implementations of the external
// rendering capabilities: a file-bundle section renderer, a heuristic
// quality gate, and a markdown document composer. The orchestrator only
// sees the secondary port interfaces, so these can be swapped for remote
// capabilities without touching the services.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/secondary"
)

// BundleRenderer renders a section by loading a prepared bundle file from
// <dir>/<case-id>/<section-id>.yaml. Analysts or upstream tooling drop
// bundles there; a missing bundle is a render failure, not an empty draft.
type BundleRenderer struct {
	dir string
}

// NewBundleRenderer creates a renderer reading bundles under dir.
func NewBundleRenderer(dir string) *BundleRenderer {
	return &BundleRenderer{dir: dir}
}

// bundle is the on-disk shape of a prepared section.
type bundle struct {
	Content  string `yaml:"content"`
	Manifest struct {
		TitleOverride     string   `yaml:"title_override,omitempty"`
		Complete          bool     `yaml:"complete"`
		DependsOn         []string `yaml:"depends_on,omitempty"`
		AuthoritativeKeys []string `yaml:"authoritative_keys,omitempty"`
	} `yaml:"manifest"`
	Facts []bundleFact `yaml:"facts,omitempty"`
}

type bundleFact struct {
	Subject    string  `yaml:"subject"`
	Key        string  `yaml:"key"`
	Value      string  `yaml:"value"`
	ObservedAt string  `yaml:"observed_at,omitempty"`
	Confidence float64 `yaml:"confidence,omitempty"`
	Supersedes string  `yaml:"supersedes,omitempty"`
}

// Render loads the bundle for one section.
func (r *BundleRenderer) Render(ctx context.Context, sectionID section.ID, caseCtx secondary.CaseContext) (*secondary.RenderOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(r.dir, caseCtx.CaseID, string(sectionID)+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &secondary.RenderError{SectionID: sectionID, Reason: fmt.Sprintf("no bundle at %s", path)}
	}

	var b bundle
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &secondary.RenderError{SectionID: sectionID, Reason: fmt.Sprintf("malformed bundle: %v", err)}
	}
	if b.Content == "" {
		return nil, &secondary.RenderError{SectionID: sectionID, Reason: "bundle has no content"}
	}

	dependsOn := make([]section.ID, len(b.Manifest.DependsOn))
	for i, d := range b.Manifest.DependsOn {
		dependsOn[i] = section.ID(d)
	}
	facts := make([]fact.Fact, len(b.Facts))
	for i, f := range b.Facts {
		facts[i] = fact.Fact{
			Subject:    fact.SubjectType(f.Subject),
			SubjectKey: f.Key,
			Value:      f.Value,
			ObservedAt: f.ObservedAt,
			Confidence: f.Confidence,
			Supersedes: f.Supersedes,
		}
	}

	return &secondary.RenderOutput{
		Content: b.Content,
		Manifest: section.Manifest{
			TitleOverride:     b.Manifest.TitleOverride,
			Complete:          b.Manifest.Complete,
			DependsOn:         dependsOn,
			AuthoritativeKeys: b.Manifest.AuthoritativeKeys,
		},
		Facts: facts,
	}, nil
}
