package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/core/assembly"
	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
	"github.com/example/dossier/internal/signal"
)

// AssemblyServiceImpl implements the AssemblyService interface. The gate
// decision itself is pure; this shell executes it: lock the approved
// sections, compose the document, archive the case.
type AssemblyServiceImpl struct {
	caseRepo    secondary.CaseRepository
	sectionRepo secondary.SectionRepository
	findingRepo secondary.FindingRepository
	docRenderer secondary.DocumentRenderer
	emitter     *emitter
	locks       *CaseLocks
	log         zerolog.Logger
	now         func() time.Time
}

// NewAssemblyService creates a new AssemblyService with injected dependencies.
func NewAssemblyService(
	caseRepo secondary.CaseRepository,
	sectionRepo secondary.SectionRepository,
	findingRepo secondary.FindingRepository,
	docRenderer secondary.DocumentRenderer,
	bus *signal.Bus,
	locks *CaseLocks,
	log zerolog.Logger,
) *AssemblyServiceImpl {
	serviceLog := log.With().Str("component", "assembly-service").Logger()
	return &AssemblyServiceImpl{
		caseRepo:    caseRepo,
		sectionRepo: sectionRepo,
		findingRepo: findingRepo,
		docRenderer: docRenderer,
		emitter:     newEmitter(bus, serviceLog, nil),
		locks:       locks,
		log:         serviceLog,
		now:         time.Now,
	}
}

// RequestAssembly re-evaluates the gate preconditions and, on success, locks
// the approved sections, emits assembly-ready, hands the ordered sections to
// the document renderer, and archives the case. Repeated calls with no
// intervening state change yield the same result without side effects.
func (s *AssemblyServiceImpl) RequestAssembly(ctx context.Context, caseID string) (*primary.AssemblyResult, error) {
	release, err := s.locks.AdmitAssembly(caseID)
	if err != nil {
		return nil, err
	}
	defer release()

	unlock := s.locks.Lock(caseID)
	defer unlock()

	caseRecord, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if caseRecord.Status == secondary.CaseStatusHalted {
		return nil, fmt.Errorf("case %s is halted and does not accept transitions", caseID)
	}
	alreadyAssembled := caseRecord.Status == secondary.CaseStatusArchived

	sections, err := s.sectionRepo.GetByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	findingRecords, err := s.findingRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}

	// 1. Pure gate evaluation; failure reports every blocker at once.
	decision := assembly.Evaluate(assembly.Input{
		Required:     requiredInOrder(caseRecord),
		States:       stateMap(sections),
		OpenBlocking: continuity.OpenBlocking(findingsFromRecords(findingRecords)),
	})
	if err := decision.Err(); err != nil {
		return nil, err
	}

	// 2. Execute the lock plan; already-locked sections are skipped.
	for _, id := range decision.ToLock {
		if result := section.CanLock(id, stateMap(sections)[id]); !result.Allowed {
			return nil, result.Error()
		}
		if err := s.sectionRepo.UpdateState(ctx, caseID, string(id), string(section.StateLocked)); err != nil {
			return nil, fmt.Errorf("failed to lock section %s: %w", id, err)
		}
	}

	// 3. Compose the document from the locked content in sequence order
	artifact, err := s.compose(ctx, sections, decision.Order)
	if err != nil {
		return nil, err
	}

	// 4. First pass archives the case; repeats change nothing.
	if !alreadyAssembled {
		s.emitter.emit(signal.CodeAssemblyReady, "", caseID, nil)
		if err := s.caseRepo.UpdateStatus(ctx, caseID, secondary.CaseStatusArchived); err != nil {
			return nil, fmt.Errorf("failed to archive case: %w", err)
		}
		s.emitter.emit(signal.CodeCaseArchived, "", caseID, nil)
		s.log.Info().
			Str("case_id", caseID).
			Int("locked", len(decision.ToLock)).
			Int("sections", len(decision.Order)).
			Msg("case assembled and archived")
	}

	return &primary.AssemblyResult{
		CaseID:           caseID,
		Locked:           decision.ToLock,
		Order:            decision.Order,
		Artifact:         artifact,
		AlreadyAssembled: alreadyAssembled,
	}, nil
}

// AbortAssembly prevents a pending RequestAssembly from entering the case
// lock. Once gate evaluation has been admitted the abort is rejected.
func (s *AssemblyServiceImpl) AbortAssembly(ctx context.Context, caseID string) error {
	if _, err := s.caseRepo.GetByID(ctx, caseID); err != nil {
		return err
	}
	if err := s.locks.RequestAbort(caseID); err != nil {
		return err
	}
	s.log.Info().Str("case_id", caseID).Msg("assembly abort flagged")
	return nil
}

// compose hands the ordered section content to the document renderer.
func (s *AssemblyServiceImpl) compose(ctx context.Context, sections []*secondary.SectionRecord, order []section.ID) ([]byte, error) {
	if s.docRenderer == nil {
		return nil, nil
	}
	byID := make(map[section.ID]*secondary.SectionRecord, len(sections))
	for _, rec := range sections {
		byID[section.ID(rec.SectionID)] = rec
	}
	ordered := make([]secondary.OrderedSection, 0, len(order))
	for _, id := range order {
		rec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("section %s missing from case", id)
		}
		ordered = append(ordered, secondary.OrderedSection{
			SectionID: id,
			Title:     rec.Title,
			Content:   rec.Content,
		})
	}

	artifact, err := s.docRenderer.Assemble(ctx, ordered)
	if err != nil {
		return nil, &secondary.RenderError{Reason: err.Error()}
	}
	return artifact, nil
}

// requiredInOrder projects the case's frozen required set onto its frozen
// sequence order.
func requiredInOrder(c *secondary.CaseRecord) []section.ID {
	required := make(map[string]bool, len(c.RequiredSections))
	for _, id := range c.RequiredSections {
		required[id] = true
	}
	var out []section.ID
	for _, id := range c.SectionOrder {
		if required[id] {
			out = append(out, section.ID(id))
		}
	}
	return out
}

func stateMap(sections []*secondary.SectionRecord) map[section.ID]section.State {
	states := make(map[section.ID]section.State, len(sections))
	for _, rec := range sections {
		states[section.ID(rec.SectionID)] = section.State(rec.State)
	}
	return states
}
