package fact

import (
	"errors"
	"fmt"

	"github.com/example/dossier/internal/core/section"
)

// ErrLedgerCorrupt marks an integrity fault in the fact ledger, e.g. a fact
// referencing a non-existent section. Processing for the affected case
// halts; facts are never silently dropped.
var ErrLedgerCorrupt = errors.New("fact ledger corrupt")

// Ledger is the append-only, in-memory view of a case's facts. Length is
// non-decreasing; supersedes pointers hide stale facts from Active() without
// removing them.
type Ledger struct {
	facts      []Fact
	byID       map[string]Fact
	superseded map[string]string // stale fact ID -> correcting fact ID
}

// NewLedger builds a ledger from existing facts, validating integrity.
// Facts must arrive in append order (oldest first).
func NewLedger(facts []Fact) (*Ledger, error) {
	l := &Ledger{
		byID:       make(map[string]Fact),
		superseded: make(map[string]string),
	}
	for _, f := range facts {
		if err := l.Append(f); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Append adds a fact to the ledger. A fact referencing an unknown section or
// superseding a fact that does not exist is an integrity fault.
func (l *Ledger) Append(f Fact) error {
	if f.ID == "" {
		return fmt.Errorf("%w: fact with empty ID", ErrLedgerCorrupt)
	}
	if !section.IsValid(f.SectionID) {
		return fmt.Errorf("%w: fact %s references non-existent section %q", ErrLedgerCorrupt, f.ID, f.SectionID)
	}
	if _, dup := l.byID[f.ID]; dup {
		return fmt.Errorf("%w: duplicate fact ID %s", ErrLedgerCorrupt, f.ID)
	}
	if f.Supersedes != "" {
		if _, ok := l.byID[f.Supersedes]; !ok {
			return fmt.Errorf("%w: fact %s supersedes unknown fact %s", ErrLedgerCorrupt, f.ID, f.Supersedes)
		}
		l.superseded[f.Supersedes] = f.ID
	}
	l.facts = append(l.facts, f)
	l.byID[f.ID] = f
	return nil
}

// Get returns the fact with the given ID.
func (l *Ledger) Get(id string) (Fact, bool) {
	f, ok := l.byID[id]
	return f, ok
}

// IsActive reports whether the fact exists and has not been superseded.
func (l *Ledger) IsActive(id string) bool {
	if _, ok := l.byID[id]; !ok {
		return false
	}
	_, stale := l.superseded[id]
	return !stale
}

// Active returns all facts that have not been superseded, in append order.
func (l *Ledger) Active() []Fact {
	var out []Fact
	for _, f := range l.facts {
		if _, stale := l.superseded[f.ID]; !stale {
			out = append(out, f)
		}
	}
	return out
}

// ActiveBySubject returns active facts of the given subject type.
func (l *Ledger) ActiveBySubject(st SubjectType) []Fact {
	var out []Fact
	for _, f := range l.Active() {
		if f.Subject == st {
			out = append(out, f)
		}
	}
	return out
}

// BySection returns all facts (active or superseded) originating from a section.
func (l *Ledger) BySection(id section.ID) []Fact {
	var out []Fact
	for _, f := range l.facts {
		if f.SectionID == id {
			out = append(out, f)
		}
	}
	return out
}

// Len returns the total number of facts ever appended.
func (l *Ledger) Len() int {
	return len(l.facts)
}
