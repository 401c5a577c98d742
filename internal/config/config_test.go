package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/example/dossier/internal/core/section"
)

func TestDefaultRegistryValid(t *testing.T) {
	reg := DefaultRegistry()

	if reg.Version != 1 {
		t.Errorf("Version = %d, want 1", reg.Version)
	}
	for _, name := range []string{"surveillance", "background", "field", "full"} {
		if _, err := reg.Lookup(name); err != nil {
			t.Errorf("Lookup(%q) error = %v", name, err)
		}
	}
}

func TestFieldReportTypeRequiredSet(t *testing.T) {
	rt, err := DefaultRegistry().Lookup("field")
	if err != nil {
		t.Fatalf("Lookup(field) error = %v", err)
	}

	want := []section.ID{section.CP, section.S1, section.S2, section.S3, section.FR}
	if len(rt.Required) != len(want) {
		t.Fatalf("Required = %v, want %v", rt.Required, want)
	}
	for i, id := range want {
		if rt.Required[i] != id {
			t.Errorf("Required[%d] = %q, want %q", i, rt.Required[i], id)
		}
	}
}

func TestLookupUnknownReportType(t *testing.T) {
	if _, err := DefaultRegistry().Lookup("wellness"); err == nil {
		t.Error("Lookup(wellness) = nil error, want unknown report type")
	}
}

func TestTitleFor(t *testing.T) {
	rt := ReportType{Titles: map[section.ID]string{section.S3: "Observation Log"}}

	if got := rt.TitleFor(section.S3); got != "Observation Log" {
		t.Errorf("TitleFor(s3) = %q, want override", got)
	}
	if got := rt.TitleFor(section.CP); got != "Case Particulars" {
		t.Errorf("TitleFor(cp) = %q, want default title", got)
	}
}

func TestLoadRegistryFallsBackToDefaults(t *testing.T) {
	reg, err := LoadRegistry(t.TempDir())
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	if _, err := reg.Lookup("surveillance"); err != nil {
		t.Errorf("fallback registry missing surveillance: %v", err)
	}
}

func TestLoadRegistryFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `version: 2
report_types:
  custom:
    required: [cp, fr]
    sequence: [cp, s1, fr]
    titles:
      cp: "Particulars"
`
	if err := os.WriteFile(filepath.Join(dir, "report_types.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(dir)
	if err != nil {
		t.Fatalf("LoadRegistry() error = %v", err)
	}
	rt, err := reg.Lookup("custom")
	if err != nil {
		t.Fatalf("Lookup(custom) error = %v", err)
	}
	if rt.TitleFor(section.CP) != "Particulars" {
		t.Errorf("TitleFor(cp) = %q, want file override", rt.TitleFor(section.CP))
	}
}

func TestValidateRejectsUnknownSection(t *testing.T) {
	reg := &Registry{
		Version: 1,
		ReportTypes: map[string]ReportType{
			"bad": {Required: []section.ID{"s99"}, Sequence: []section.ID{"s99"}},
		},
	}
	if err := reg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for unknown section")
	}
}

func TestValidateRejectsRequiredOutsideSequence(t *testing.T) {
	reg := &Registry{
		Version: 1,
		ReportTypes: map[string]ReportType{
			"bad": {Required: []section.ID{section.CP}, Sequence: []section.ID{section.S1}},
		},
	}
	if err := reg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for required section missing from sequence")
	}
}
