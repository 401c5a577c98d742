// Package fact contains the append-only fact ledger. This is part of the
// Functional Core - no I/O, only pure data and rules. Persistence lives
// behind the secondary ports.
package fact

import (
	"time"

	"github.com/example/dossier/internal/core/section"
)

// SubjectType classifies what a fact asserts something about.
type SubjectType string

const (
	SubjectPerson     SubjectType = "person"
	SubjectDate       SubjectType = "date"
	SubjectLocation   SubjectType = "location"
	SubjectIdentifier SubjectType = "identifier"
)

// Fact is a single extracted assertion tagged with its originating section.
// Facts are additive: corrections are recorded as new facts carrying a
// Supersedes pointer, never destructive edits. This preserves the audit
// trail for why a contradiction was or wasn't flagged.
type Fact struct {
	ID         string
	Subject    SubjectType
	SubjectKey string // scope grouping, e.g. an entity identifier or event key
	Value      string // canonical value

	// ObservedAt is the event time the fact asserts (free-form, as
	// extracted), distinct from ExtractedAt. Used by the date/location
	// checker; empty when the fact carries no event time.
	ObservedAt string

	SectionID     section.ID
	Confidence    float64
	ExtractedAt   time.Time
	Supersedes    string // ID of the fact this one corrects, or empty
	Authoritative bool   // set when the source manifest marks the subject key authoritative
}
