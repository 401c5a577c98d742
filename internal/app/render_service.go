package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

// defaultRenderTimeout bounds each external renderer call when the request
// does not specify one.
const defaultRenderTimeout = 2 * time.Minute

// RenderSections invokes the external renderer for the given sections in
// parallel and submits each successful render as a draft. Rendering happens
// outside the case lock; only the draft submission serializes. A failed or
// timed-out render leaves its section in the pre-call state and is never
// retried automatically.
func (s *SectionServiceImpl) RenderSections(ctx context.Context, req primary.RenderSectionsRequest) (*primary.RenderSectionsResponse, error) {
	if s.renderer == nil {
		return nil, fmt.Errorf("no section renderer configured")
	}
	caseRecord, err := s.activeCase(ctx, req.CaseID)
	if err != nil {
		return nil, err
	}
	for _, id := range req.Sections {
		if !section.IsValid(id) {
			return nil, fmt.Errorf("unknown section %q", id)
		}
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultRenderTimeout
	}
	caseCtx := secondary.CaseContext{
		CaseID:     caseRecord.ID,
		ReportType: caseRecord.ReportType,
		Title:      caseRecord.Title,
		Owner:      caseRecord.Owner,
	}

	resp := &primary.RenderSectionsResponse{Failed: make(map[section.ID]string)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, id := range req.Sections {
		id := id
		g.Go(func() error {
			output, err := s.renderOne(gctx, id, caseCtx, timeout)
			if err == nil {
				_, err = s.SubmitDraft(ctx, primary.SubmitDraftRequest{
					CaseID:    req.CaseID,
					SectionID: id,
					Content:   output.Content,
					Manifest:  output.Manifest,
					Facts:     output.Facts,
				})
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				resp.Failed[id] = err.Error()
				s.log.Warn().
					Str("case_id", req.CaseID).
					Str("section_id", string(id)).
					Err(err).
					Msg("render failed, section unchanged")
				return nil // one failed section never cancels the others
			}
			resp.Drafted = append(resp.Drafted, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resp, nil
}

// renderOne runs a single renderer call under its timeout and applies the
// advisory quality gate to the result.
func (s *SectionServiceImpl) renderOne(ctx context.Context, id section.ID, caseCtx secondary.CaseContext, timeout time.Duration) (*secondary.RenderOutput, error) {
	renderCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	output, err := s.renderer.Render(renderCtx, id, caseCtx)
	if err != nil {
		return nil, &secondary.RenderError{SectionID: id, Reason: err.Error()}
	}

	// The quality gate is advisory: a failed check becomes a manifest note
	// and a gate error is ignored entirely.
	if s.quality != nil {
		check, err := s.quality.Check(renderCtx, output.Content, string(id))
		if err != nil {
			s.log.Warn().Str("section_id", string(id)).Err(err).Msg("quality gate unavailable, skipping")
		} else if !check.Pass {
			output.Manifest.QualityNote = check.Reason
		}
	}
	return output, nil
}
