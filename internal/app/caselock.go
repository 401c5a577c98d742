// Package app implements the application services behind the primary ports.
// Services follow the guard -> core rule -> repository write sequence; all
// state transitions for one case are serialized through its case lock.
package app

import (
	"fmt"
	"sync"
)

// CaseLocks hands out one lock per case ID so transitions for a case are
// serialized while unrelated cases proceed concurrently. It also tracks the
// assembly abort flag: an abort lands only while no assembly evaluation has
// been admitted for the case.
type CaseLocks struct {
	mu      sync.Mutex
	entries map[string]*caseEntry
}

type caseEntry struct {
	mu sync.Mutex // serializes state transitions for the case

	flagMu   sync.Mutex
	aborted  bool
	admitted bool
}

// NewCaseLocks creates an empty lock registry.
func NewCaseLocks() *CaseLocks {
	return &CaseLocks{entries: make(map[string]*caseEntry)}
}

func (l *CaseLocks) entry(caseID string) *caseEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[caseID]
	if !ok {
		e = &caseEntry{}
		l.entries[caseID] = e
	}
	return e
}

// Lock acquires the case's transition lock and returns the unlock function.
func (l *CaseLocks) Lock(caseID string) func() {
	e := l.entry(caseID)
	e.mu.Lock()
	return e.mu.Unlock
}

// AdmitAssembly consumes a pending abort or admits the assembly request.
// Once admitted, aborts are rejected until the returned release function
// runs.
func (l *CaseLocks) AdmitAssembly(caseID string) (release func(), err error) {
	e := l.entry(caseID)
	e.flagMu.Lock()
	defer e.flagMu.Unlock()

	if e.aborted {
		e.aborted = false
		return nil, fmt.Errorf("assembly of case %s aborted before gate evaluation", caseID)
	}
	e.admitted = true
	return func() {
		e.flagMu.Lock()
		e.admitted = false
		e.flagMu.Unlock()
	}, nil
}

// RequestAbort flags the case so the next assembly request is refused. An
// abort arriving after gate evaluation has been admitted is rejected.
func (l *CaseLocks) RequestAbort(caseID string) error {
	e := l.entry(caseID)
	e.flagMu.Lock()
	defer e.flagMu.Unlock()

	if e.admitted {
		return fmt.Errorf("cannot abort: assembly of case %s is already evaluating", caseID)
	}
	e.aborted = true
	return nil
}
