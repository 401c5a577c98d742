// Package signal provides the typed signal bus and the closed, versioned
// registry of signal codes carried between the orchestrator, sections, and
// validators.
package signal

import (
	"fmt"
	"time"

	"github.com/example/dossier/internal/core/section"
)

// Code is a numeric signal code from the closed registry.
type Code int

// Registry v1. The 100 series covers section lifecycle, 200 continuity,
// 300 assembly.
const (
	CodeSectionDrafted           Code = 101
	CodeSectionRevisionRequested Code = 102
	CodeSectionApproved          Code = 103
	CodeContinuityFail           Code = 201
	CodeContinuityResolved       Code = 202
	CodeAssemblyReady            Code = 301
	CodeCaseArchived             Code = 302
)

// RegistryVersion identifies the signal-code registry in effect.
const RegistryVersion = 1

// Schema describes a registered signal code: its symbolic name and the
// payload keys every event carrying the code must provide.
type Schema struct {
	Name     string
	Required []string
}

var registry = map[Code]Schema{
	CodeSectionDrafted:           {Name: "section-drafted", Required: []string{"case_id"}},
	CodeSectionRevisionRequested: {Name: "section-revision-requested", Required: []string{"case_id", "reason"}},
	CodeSectionApproved:          {Name: "section-approved", Required: []string{"case_id", "approver"}},
	CodeContinuityFail:           {Name: "continuity-fail", Required: []string{"case_id", "pair_key", "severity"}},
	CodeContinuityResolved:       {Name: "continuity-resolved", Required: []string{"case_id", "pair_key"}},
	CodeAssemblyReady:            {Name: "assembly-ready", Required: []string{"case_id"}},
	CodeCaseArchived:             {Name: "case-archived", Required: []string{"case_id"}},
}

// Lookup returns the schema for a code and whether the code is registered.
func Lookup(code Code) (Schema, bool) {
	s, ok := registry[code]
	return s, ok
}

// Event is an immutable signal log entry. It is created by the orchestrator
// or a validator and never mutated after emission.
type Event struct {
	ID        string
	Code      Code
	Source    section.ID // originating section; empty for case-level events
	CaseID    string
	Payload   map[string]string
	EmittedAt time.Time
}

// Validate checks an event against the registry before publication.
// Publishing an unregistered code is a configuration error, not a runtime
// fault, so it is rejected synchronously.
func Validate(ev Event) error {
	schema, ok := Lookup(ev.Code)
	if !ok {
		return fmt.Errorf("signal code %d is not in registry v%d", ev.Code, RegistryVersion)
	}
	for _, key := range schema.Required {
		if _, present := ev.Payload[key]; !present {
			return fmt.Errorf("signal %s (%d) missing required payload key %q", schema.Name, ev.Code, key)
		}
	}
	return nil
}
