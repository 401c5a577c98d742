// Package config loads the report-type registry: the enumerated mapping
// from report type to required sections, section sequence, and default
// titles. The registry is read once at case creation; the snapshot stored
// on the case is immutable thereafter.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/example/dossier/internal/core/section"
)

// ReportType describes one enumerated report type.
type ReportType struct {
	Required []section.ID          `yaml:"required"`
	Sequence []section.ID          `yaml:"sequence"`
	Titles   map[section.ID]string `yaml:"titles,omitempty"`
}

// Registry is the report-type configuration.
type Registry struct {
	Version     int                   `yaml:"version"`
	ReportTypes map[string]ReportType `yaml:"report_types"`
}

// defaultTitles applies when a report type does not override a title.
var defaultTitles = map[section.ID]string{
	section.Cover: "Cover Page",
	section.TOC:   "Table of Contents",
	section.CP:    "Case Particulars",
	section.S1:    "Assignment & Objectives",
	section.S2:    "Summary of Findings",
	section.S3:    "Surveillance Log",
	section.S4:    "Interviews",
	section.S5:    "Records Review",
	section.S6:    "Photographic Evidence",
	section.S7:    "Audio & Video Evidence",
	section.S8:    "Background",
	section.S9:    "Analyst Notes",
	section.DP:    "Disclosure Page",
	section.FR:    "Fee & Billing Summary",
}

// defaultRegistryYAML is the built-in registry used when no file overrides it.
const defaultRegistryYAML = `version: 1
report_types:
  surveillance:
    required: [cover, toc, cp, s1, s2, s3, fr]
    sequence: [cover, toc, cp, s1, s2, s3, s6, s7, fr]
  background:
    required: [cover, cp, s1, s5, s8, dp, fr]
    sequence: [cover, cp, s1, s5, s8, s9, dp, fr]
  field:
    required: [cp, s1, s2, s3, fr]
    sequence: [cp, s1, s2, s3, fr]
  full:
    required: [cover, toc, cp, s1, s2, s3, s4, s5, s6, s7, s8, s9, dp, fr]
    sequence: [cover, toc, cp, s1, s2, s3, s4, s5, s6, s7, s8, s9, dp, fr]
`

// DefaultRegistry returns the built-in report-type registry.
func DefaultRegistry() *Registry {
	reg, err := parseRegistry([]byte(defaultRegistryYAML))
	if err != nil {
		// The embedded registry is validated by tests; a parse failure here
		// is a build defect.
		panic(fmt.Sprintf("built-in report-type registry invalid: %v", err))
	}
	return reg
}

// LoadRegistry reads report_types.yaml from the dossier home directory,
// falling back to the built-in registry when no file exists.
func LoadRegistry(home string) (*Registry, error) {
	path := filepath.Join(home, "report_types.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultRegistry(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report-type registry: %w", err)
	}
	return parseRegistry(data)
}

func parseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse report-type registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks registry integrity: every referenced section ID must be
// valid and every required section must appear in the sequence.
func (r *Registry) Validate() error {
	if len(r.ReportTypes) == 0 {
		return fmt.Errorf("report-type registry has no report types")
	}
	for name, rt := range r.ReportTypes {
		inSequence := make(map[section.ID]bool, len(rt.Sequence))
		for _, id := range rt.Sequence {
			if !section.IsValid(id) {
				return fmt.Errorf("report type %q: unknown section %q in sequence", name, id)
			}
			inSequence[id] = true
		}
		for _, id := range rt.Required {
			if !section.IsValid(id) {
				return fmt.Errorf("report type %q: unknown section %q in required set", name, id)
			}
			if !inSequence[id] {
				return fmt.Errorf("report type %q: required section %q missing from sequence", name, id)
			}
		}
	}
	return nil
}

// Lookup returns the report type definition for a name.
func (r *Registry) Lookup(name string) (ReportType, error) {
	rt, ok := r.ReportTypes[name]
	if !ok {
		return ReportType{}, fmt.Errorf("unknown report type %q", name)
	}
	return rt, nil
}

// TitleFor returns the section title for a report type: the type's override
// when present, otherwise the default.
func (rt ReportType) TitleFor(id section.ID) string {
	if t, ok := rt.Titles[id]; ok {
		return t
	}
	if t, ok := defaultTitles[id]; ok {
		return t
	}
	return string(id)
}

// HomeDir returns the dossier home directory (~/.dossier).
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".dossier"), nil
}
