package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/config"
	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
	"github.com/example/dossier/internal/signal"
)

// SectionServiceImpl implements the SectionService interface. Every state
// transition runs under the case lock: guard first, then the core rule, then
// the repository write, then signal emission.
type SectionServiceImpl struct {
	caseRepo    secondary.CaseRepository
	sectionRepo secondary.SectionRepository
	factRepo    secondary.FactRepository
	findingRepo secondary.FindingRepository
	renderer    secondary.SectionRenderer
	quality     secondary.QualityGate
	engine      *continuity.Engine
	registry    *config.Registry
	emitter     *emitter
	locks       *CaseLocks
	log         zerolog.Logger
	now         func() time.Time
}

// NewSectionService creates a new SectionService with injected dependencies.
// renderer and quality may be nil when no external capabilities are wired;
// RenderSections then fails cleanly and direct draft submission still works.
func NewSectionService(
	caseRepo secondary.CaseRepository,
	sectionRepo secondary.SectionRepository,
	factRepo secondary.FactRepository,
	findingRepo secondary.FindingRepository,
	renderer secondary.SectionRenderer,
	quality secondary.QualityGate,
	engine *continuity.Engine,
	registry *config.Registry,
	bus *signal.Bus,
	locks *CaseLocks,
	log zerolog.Logger,
) *SectionServiceImpl {
	serviceLog := log.With().Str("component", "section-service").Logger()
	return &SectionServiceImpl{
		caseRepo:    caseRepo,
		sectionRepo: sectionRepo,
		factRepo:    factRepo,
		findingRepo: findingRepo,
		renderer:    renderer,
		quality:     quality,
		engine:      engine,
		registry:    registry,
		emitter:     newEmitter(bus, serviceLog, nil),
		locks:       locks,
		log:         serviceLog,
		now:         time.Now,
	}
}

// SubmitDraft stores content and manifest, appends the asserted facts to the
// ledger, transitions the section to drafted, and re-runs the continuity
// validators scoped to the changed facts.
func (s *SectionServiceImpl) SubmitDraft(ctx context.Context, req primary.SubmitDraftRequest) (*primary.SubmitDraftResponse, error) {
	unlock := s.locks.Lock(req.CaseID)
	defer unlock()

	// 1. The case must exist and accept transitions
	caseRecord, err := s.activeCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}

	// 2. Guard the lifecycle transition
	sectionRecord, err := s.sectionRepo.Get(ctx, req.CaseID, string(req.SectionID))
	if err != nil {
		return nil, err
	}
	if result := section.CanSubmitDraft(req.SectionID, section.State(sectionRecord.State)); !result.Allowed {
		return nil, result.Error()
	}

	// 3. Rebuild the ledger and append the submitted facts. Integrity
	// faults halt the case rather than dropping facts.
	factRecords, err := s.factRepo.ListByCase(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load fact ledger: %w", err)
	}
	ledger, err := ledgerFromRepo(factRecords)
	if err != nil {
		return nil, s.haltCase(ctx, req.CaseID, err)
	}

	now := s.now()
	changed, err := s.appendFacts(ctx, req, ledger, now)
	if err != nil {
		if errors.Is(err, fact.ErrLedgerCorrupt) {
			return nil, s.haltCase(ctx, req.CaseID, err)
		}
		return nil, err
	}

	// 4. Apply the draft transition with dependency warnings
	draft := section.ApplyDraft(now)
	warnings, err := s.dependencyWarnings(ctx, req.CaseID, req.Manifest.DependsOn)
	if err != nil {
		return nil, err
	}

	updated := &secondary.SectionRecord{
		CaseID:            req.CaseID,
		SectionID:         string(req.SectionID),
		Title:             s.titleFor(caseRecord, req),
		Ordinal:           sectionRecord.Ordinal,
		State:             string(draft.NewState),
		Content:           req.Content,
		ManifestComplete:  req.Manifest.Complete,
		DependsOn:         idsToStrings(req.Manifest.DependsOn),
		AuthoritativeKeys: req.Manifest.AuthoritativeKeys,
		QualityNote:       req.Manifest.QualityNote,
		Warnings:          warnings,
		LastModified:      draft.LastModified.Format(time.RFC3339),
	}
	if err := s.sectionRepo.UpdateDraft(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to store draft: %w", err)
	}

	// 5. Incremental continuity validation scoped to the changed facts
	newFindings, err := s.validate(ctx, req.CaseID, req.SectionID, ledger, changed, now)
	if err != nil {
		return nil, err
	}

	// 6. Announce the draft
	s.emitter.emit(signal.CodeSectionDrafted, req.SectionID, req.CaseID, nil)
	s.log.Info().
		Str("case_id", req.CaseID).
		Str("section_id", string(req.SectionID)).
		Int("facts", len(changed)).
		Int("new_findings", len(newFindings)).
		Msg("draft submitted")

	return &primary.SubmitDraftResponse{
		Section:     sectionFromRecord(updated),
		NewFindings: newFindings,
	}, nil
}

// RequestRevision demotes a drafted or approved section to needs_revision,
// discarding any approval record.
func (s *SectionServiceImpl) RequestRevision(ctx context.Context, req primary.RequestRevisionRequest) error {
	unlock := s.locks.Lock(req.CaseID)
	defer unlock()

	if _, err := s.activeCase(ctx, req.CaseID); err != nil {
		return err
	}
	sectionRecord, err := s.sectionRepo.Get(ctx, req.CaseID, string(req.SectionID))
	if err != nil {
		return err
	}
	if result := section.CanRequestRevision(req.SectionID, section.State(sectionRecord.State)); !result.Allowed {
		return result.Error()
	}

	revision := section.ApplyRevisionRequest(s.now())
	if err := s.sectionRepo.UpdateState(ctx, req.CaseID, string(req.SectionID), string(revision.NewState)); err != nil {
		return fmt.Errorf("failed to demote section: %w", err)
	}
	if err := s.sectionRepo.ClearApproval(ctx, req.CaseID, string(req.SectionID)); err != nil {
		return fmt.Errorf("failed to clear approval: %w", err)
	}

	s.emitter.emit(signal.CodeSectionRevisionRequested, req.SectionID, req.CaseID, map[string]string{
		"reason": req.Reason,
	})
	return nil
}

// Approve transitions a drafted section to approved. The continuity
// validators re-run synchronously over the section's active facts first; a
// blocking finding refuses the approval and leaves the section drafted.
func (s *SectionServiceImpl) Approve(ctx context.Context, req primary.ApproveRequest) error {
	unlock := s.locks.Lock(req.CaseID)
	defer unlock()

	if _, err := s.activeCase(ctx, req.CaseID); err != nil {
		return err
	}
	sectionRecord, err := s.sectionRepo.Get(ctx, req.CaseID, string(req.SectionID))
	if err != nil {
		return err
	}
	if result := section.CanApprove(req.SectionID, section.State(sectionRecord.State)); !result.Allowed {
		return result.Error()
	}

	// Scoped re-check: another section may have contributed conflicting
	// facts since this one was drafted.
	factRecords, err := s.factRepo.ListByCase(ctx, req.CaseID)
	if err != nil {
		return fmt.Errorf("failed to load fact ledger: %w", err)
	}
	ledger, err := ledgerFromRepo(factRecords)
	if err != nil {
		return s.haltCase(ctx, req.CaseID, err)
	}

	now := s.now()
	sectionFacts := activeSectionFacts(ledger, req.SectionID)
	if len(sectionFacts) > 0 {
		if _, err := s.validate(ctx, req.CaseID, req.SectionID, ledger, sectionFacts, now); err != nil {
			return err
		}
	}

	blockers, err := s.openBlockingFor(ctx, req.CaseID, sectionFacts)
	if err != nil {
		return err
	}
	if len(blockers) > 0 {
		s.log.Warn().
			Str("case_id", req.CaseID).
			Str("section_id", string(req.SectionID)).
			Int("blockers", len(blockers)).
			Msg("approval refused by continuity re-check")
		return &primary.ApprovalBlockedError{SectionID: req.SectionID, Findings: blockers}
	}

	approval := section.ApplyApproval(req.Approver, now)
	if err := s.sectionRepo.UpdateApproval(ctx, req.CaseID, string(req.SectionID),
		approval.Approval.By, approval.Approval.At.Format(time.RFC3339)); err != nil {
		return fmt.Errorf("failed to record approval: %w", err)
	}

	s.emitter.emit(signal.CodeSectionApproved, req.SectionID, req.CaseID, map[string]string{
		"approver": req.Approver,
	})
	return nil
}

// GetSection retrieves one section of a case.
func (s *SectionServiceImpl) GetSection(ctx context.Context, caseID string, sectionID section.ID) (*primary.Section, error) {
	record, err := s.sectionRepo.Get(ctx, caseID, string(sectionID))
	if err != nil {
		return nil, err
	}
	return sectionFromRecord(record), nil
}

// activeCase loads a case and rejects transitions for halted or archived
// cases.
func (s *SectionServiceImpl) activeCase(ctx context.Context, caseID string) (*secondary.CaseRecord, error) {
	record, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if record.Status != secondary.CaseStatusActive {
		return nil, fmt.Errorf("case %s is %s and does not accept transitions", caseID, record.Status)
	}
	return record, nil
}

// haltCase marks the case halted after a ledger integrity fault. The fault
// itself is returned so the caller sees the cause.
func (s *SectionServiceImpl) haltCase(ctx context.Context, caseID string, cause error) error {
	s.log.Error().Str("case_id", caseID).Err(cause).Msg("ledger integrity fault, halting case")
	if err := s.caseRepo.UpdateStatus(ctx, caseID, secondary.CaseStatusHalted); err != nil {
		s.log.Error().Str("case_id", caseID).Err(err).Msg("failed to halt case")
	}
	return fmt.Errorf("case %s halted: %w", caseID, cause)
}

// appendFacts assigns ledger IDs to the submitted facts, stamps their origin,
// and appends them to both the in-memory ledger and the repository.
func (s *SectionServiceImpl) appendFacts(ctx context.Context, req primary.SubmitDraftRequest, ledger *fact.Ledger, now time.Time) ([]fact.Fact, error) {
	if len(req.Facts) == 0 {
		return nil, nil
	}

	count, err := s.factRepo.CountByCase(ctx, req.CaseID)
	if err != nil {
		return nil, fmt.Errorf("failed to count facts: %w", err)
	}

	authoritative := make(map[string]bool, len(req.Manifest.AuthoritativeKeys))
	for _, key := range req.Manifest.AuthoritativeKeys {
		authoritative[key] = true
	}

	changed := make([]fact.Fact, 0, len(req.Facts))
	records := make([]*secondary.FactRecord, 0, len(req.Facts))
	for i, f := range req.Facts {
		if f.ID == "" {
			f.ID = fmt.Sprintf("F-%03d", count+i+1)
		}
		f.SectionID = req.SectionID
		f.ExtractedAt = now
		if authoritative[f.SubjectKey] {
			f.Authoritative = true
		}
		if err := ledger.Append(f); err != nil {
			return nil, err
		}
		changed = append(changed, f)
		records = append(records, factToRecord(req.CaseID, f))
	}

	if err := s.factRepo.Append(ctx, req.CaseID, records); err != nil {
		return nil, fmt.Errorf("failed to append facts: %w", err)
	}
	return changed, nil
}

// validate runs the incremental continuity validators, reconciles the result
// into the stored findings set, persists it, and emits continuity signals.
// It returns the findings newly opened by this run.
func (s *SectionServiceImpl) validate(ctx context.Context, caseID string, source section.ID, ledger *fact.Ledger, changed []fact.Fact, now time.Time) ([]continuity.Finding, error) {
	if len(changed) == 0 {
		return nil, nil
	}

	existingRecords, err := s.findingRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}
	existing := findingsFromRecords(existingRecords)

	detected := s.engine.Evaluate(ledger, changed)
	after := continuity.Reconcile(existing, detected, ledger, changed, now)

	records := make([]*secondary.FindingRecord, 0, len(after))
	for i := range after {
		if after[i].ID == "" {
			after[i].ID = uuid.NewString()
		}
		records = append(records, findingToRecord(caseID, after[i]))
	}
	if len(records) > 0 {
		if err := s.findingRepo.Upsert(ctx, caseID, records); err != nil {
			return nil, fmt.Errorf("failed to store findings: %w", err)
		}
	}

	s.emitter.emitContinuity(source, caseID, existing, after)

	prior := make(map[string]continuity.Resolution, len(existing))
	for _, f := range existing {
		prior[f.PairKey] = f.Resolution
	}
	var opened []continuity.Finding
	for _, f := range after {
		if f.Resolution != continuity.ResolutionOpen {
			continue
		}
		if was, existed := prior[f.PairKey]; !existed || was != continuity.ResolutionOpen {
			opened = append(opened, f)
		}
	}
	return opened, nil
}

// openBlockingFor returns the case's open blocking findings that reference
// any of the given facts.
func (s *SectionServiceImpl) openBlockingFor(ctx context.Context, caseID string, facts []fact.Fact) ([]continuity.Finding, error) {
	records, err := s.findingRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}

	factIDs := make(map[string]bool, len(facts))
	for _, f := range facts {
		factIDs[f.ID] = true
	}

	var blockers []continuity.Finding
	for _, f := range continuity.OpenBlocking(findingsFromRecords(records)) {
		if factIDs[f.FactA] || factIDs[f.FactB] {
			blockers = append(blockers, f)
		}
	}
	return blockers, nil
}

// dependencyWarnings computes completeness warnings for declared soft
// dependencies against the case's current section states.
func (s *SectionServiceImpl) dependencyWarnings(ctx context.Context, caseID string, declared []section.ID) ([]string, error) {
	if len(declared) == 0 {
		return nil, nil
	}
	sections, err := s.sectionRepo.GetByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	stateOf := make(map[section.ID]section.State, len(sections))
	for _, rec := range sections {
		stateOf[section.ID(rec.SectionID)] = section.State(rec.State)
	}
	return section.DependencyWarnings(declared, stateOf), nil
}

// titleFor resolves the stored section title: the manifest override when
// present, otherwise the report type's default.
func (s *SectionServiceImpl) titleFor(caseRecord *secondary.CaseRecord, req primary.SubmitDraftRequest) string {
	if req.Manifest.TitleOverride != "" {
		return req.Manifest.TitleOverride
	}
	if rt, err := s.registry.Lookup(caseRecord.ReportType); err == nil {
		return rt.TitleFor(req.SectionID)
	}
	return string(req.SectionID)
}

func activeSectionFacts(ledger *fact.Ledger, id section.ID) []fact.Fact {
	var out []fact.Fact
	for _, f := range ledger.BySection(id) {
		if ledger.IsActive(f.ID) {
			out = append(out, f)
		}
	}
	return out
}
