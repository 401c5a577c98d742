package app

import (
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/signal"
)

// emitter publishes lifecycle signals for the services. Publish failures are
// registry violations; they are logged and never fail the originating
// transition.
type emitter struct {
	bus *signal.Bus
	log zerolog.Logger
	now func() time.Time
}

func newEmitter(bus *signal.Bus, log zerolog.Logger, now func() time.Time) *emitter {
	if now == nil {
		now = time.Now
	}
	return &emitter{
		bus: bus,
		log: log.With().Str("component", "emitter").Logger(),
		now: now,
	}
}

func (e *emitter) emit(code signal.Code, source section.ID, caseID string, payload map[string]string) {
	if e.bus == nil {
		return
	}
	if payload == nil {
		payload = map[string]string{}
	}
	payload["case_id"] = caseID

	ev := signal.Event{
		ID:        uuid.NewString(),
		Code:      code,
		Source:    source,
		CaseID:    caseID,
		Payload:   payload,
		EmittedAt: e.now(),
	}
	if err := e.bus.Publish(ev); err != nil {
		e.log.Error().
			Int("code", int(code)).
			Str("case_id", caseID).
			Err(err).
			Msg("signal rejected by registry")
	}
}

// emitContinuity publishes continuity-fail for findings that opened and
// continuity-resolved for findings that closed, relative to the prior set.
func (e *emitter) emitContinuity(source section.ID, caseID string, before, after []continuity.Finding) {
	prior := make(map[string]continuity.Resolution, len(before))
	for _, f := range before {
		prior[f.PairKey] = f.Resolution
	}

	for _, f := range after {
		was, existed := prior[f.PairKey]
		switch {
		case f.Resolution == continuity.ResolutionOpen && (!existed || was != continuity.ResolutionOpen):
			e.emit(signal.CodeContinuityFail, source, caseID, map[string]string{
				"pair_key": f.PairKey,
				"severity": string(f.Severity),
				"kind":     string(f.Kind),
			})
		case f.Resolution == continuity.ResolutionResolved && existed && was != continuity.ResolutionResolved:
			e.emit(signal.CodeContinuityResolved, source, caseID, map[string]string{
				"pair_key": f.PairKey,
			})
		}
	}
}
