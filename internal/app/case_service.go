package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/config"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

// CaseServiceImpl implements the CaseService interface.
type CaseServiceImpl struct {
	caseRepo    secondary.CaseRepository
	sectionRepo secondary.SectionRepository
	registry    *config.Registry
	locks       *CaseLocks
	log         zerolog.Logger
	now         func() time.Time
}

// NewCaseService creates a new CaseService with injected dependencies.
func NewCaseService(
	caseRepo secondary.CaseRepository,
	sectionRepo secondary.SectionRepository,
	registry *config.Registry,
	locks *CaseLocks,
	log zerolog.Logger,
) *CaseServiceImpl {
	return &CaseServiceImpl{
		caseRepo:    caseRepo,
		sectionRepo: sectionRepo,
		registry:    registry,
		locks:       locks,
		log:         log.With().Str("component", "case-service").Logger(),
		now:         time.Now,
	}
}

// CreateCase creates a new case, snapshotting the report type's required
// sections and ordering. The snapshot is frozen: later registry edits never
// affect an existing case.
func (s *CaseServiceImpl) CreateCase(ctx context.Context, req primary.CreateCaseRequest) (*primary.CreateCaseResponse, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("case title is required")
	}

	// 1. Resolve the report type from the registry
	reportType, err := s.registry.Lookup(req.ReportType)
	if err != nil {
		return nil, err
	}

	// 2. Generate ID
	nextID, err := s.caseRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate case ID: %w", err)
	}

	// 3. Create case record with the frozen section plan
	record := &secondary.CaseRecord{
		ID:               nextID,
		Title:            req.Title,
		ReportType:       req.ReportType,
		Owner:            req.Owner,
		Status:           secondary.CaseStatusActive,
		RequiredSections: idsToStrings(reportType.Required),
		SectionOrder:     idsToStrings(reportType.Sequence),
	}
	if err := s.caseRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	// 4. Create a section row for every section in the sequence
	sections := make([]*secondary.SectionRecord, len(reportType.Sequence))
	for i, id := range reportType.Sequence {
		sections[i] = &secondary.SectionRecord{
			CaseID:    nextID,
			SectionID: string(id),
			Title:     reportType.TitleFor(id),
			Ordinal:   i,
			State:     string(section.InitialState()),
		}
	}
	if err := s.sectionRepo.CreateAll(ctx, nextID, sections); err != nil {
		return nil, fmt.Errorf("failed to create sections: %w", err)
	}

	s.log.Info().
		Str("case_id", nextID).
		Str("report_type", req.ReportType).
		Int("sections", len(sections)).
		Msg("case created")

	created, err := s.caseRepo.GetByID(ctx, nextID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload case: %w", err)
	}
	return &primary.CreateCaseResponse{
		CaseID: nextID,
		Case:   caseFromRecord(created, sections),
	}, nil
}

// GetCase retrieves a case with its sections.
func (s *CaseServiceImpl) GetCase(ctx context.Context, caseID string) (*primary.Case, error) {
	record, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	sections, err := s.sectionRepo.GetByCase(ctx, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sections: %w", err)
	}
	return caseFromRecord(record, sections), nil
}

// ListCases lists cases with optional filters.
func (s *CaseServiceImpl) ListCases(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	records, err := s.caseRepo.List(ctx, secondary.CaseFilters{
		Status: filters.Status,
		Limit:  filters.Limit,
	})
	if err != nil {
		return nil, err
	}
	cases := make([]*primary.Case, 0, len(records))
	for _, r := range records {
		cases = append(cases, caseFromRecord(r, nil))
	}
	return cases, nil
}

// ResetCase returns every section of the case to not_started and clears
// approval records. This is the only way out of locked. The fact ledger,
// findings, and signal log are kept for audit, and an archived or halted
// case returns to active.
func (s *CaseServiceImpl) ResetCase(ctx context.Context, caseID string) error {
	unlock := s.locks.Lock(caseID)
	defer unlock()

	record, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	if err := s.sectionRepo.ResetCase(ctx, caseID); err != nil {
		return fmt.Errorf("failed to reset sections: %w", err)
	}
	if record.Status != secondary.CaseStatusActive {
		if err := s.caseRepo.UpdateStatus(ctx, caseID, secondary.CaseStatusActive); err != nil {
			return fmt.Errorf("failed to reactivate case: %w", err)
		}
	}

	s.log.Info().Str("case_id", caseID).Msg("case reset to not_started")
	return nil
}

func idsToStrings(ids []section.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}
