package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

// FindingServiceImpl implements the FindingService interface.
type FindingServiceImpl struct {
	findingRepo secondary.FindingRepository
	locks       *CaseLocks
	log         zerolog.Logger
}

// NewFindingService creates a new FindingService with injected dependencies.
func NewFindingService(findingRepo secondary.FindingRepository, locks *CaseLocks, log zerolog.Logger) *FindingServiceImpl {
	return &FindingServiceImpl{
		findingRepo: findingRepo,
		locks:       locks,
		log:         log.With().Str("component", "finding-service").Logger(),
	}
}

// ListFindings lists a case's findings with optional filters.
func (s *FindingServiceImpl) ListFindings(ctx context.Context, caseID string, filters primary.FindingFilters) ([]*primary.Finding, error) {
	records, err := s.findingRepo.ListByCase(ctx, caseID)
	if err != nil {
		return nil, err
	}

	var out []*primary.Finding
	for _, r := range records {
		if filters.Severity != "" && continuity.Severity(r.Severity) != filters.Severity {
			continue
		}
		if filters.Resolution != "" && continuity.Resolution(r.Resolution) != filters.Resolution {
			continue
		}
		out = append(out, &primary.Finding{
			ID:          r.ID,
			PairKey:     r.PairKey,
			FactA:       r.FactA,
			FactB:       r.FactB,
			Kind:        continuity.Kind(r.Kind),
			Severity:    continuity.Severity(r.Severity),
			Resolution:  continuity.Resolution(r.Resolution),
			Explanation: r.Explanation,
			DetectedAt:  r.DetectedAt,
		})
	}
	return out, nil
}

// Acknowledge marks an open finding as acknowledged. An acknowledged
// blocking finding no longer gates assembly; it stays acknowledged through
// later re-validation unless the underlying facts change.
func (s *FindingServiceImpl) Acknowledge(ctx context.Context, caseID, pairKey string) error {
	unlock := s.locks.Lock(caseID)
	defer unlock()

	records, err := s.findingRepo.ListByCase(ctx, caseID)
	if err != nil {
		return err
	}
	var target *secondary.FindingRecord
	for _, r := range records {
		if r.PairKey == pairKey {
			target = r
			break
		}
	}
	if target == nil {
		return fmt.Errorf("finding %s not found in case %s", pairKey, caseID)
	}
	if continuity.Resolution(target.Resolution) != continuity.ResolutionOpen {
		return fmt.Errorf("finding %s is %s, only open findings can be acknowledged", pairKey, target.Resolution)
	}

	if err := s.findingRepo.UpdateResolution(ctx, caseID, pairKey, string(continuity.ResolutionAcknowledged)); err != nil {
		return err
	}
	s.log.Info().Str("case_id", caseID).Str("pair_key", pairKey).Msg("finding acknowledged")
	return nil
}
