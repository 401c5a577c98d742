package app

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/dossier/internal/config"
	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/secondary"
	"github.com/example/dossier/internal/signal"
)

// Ensure mocks implement the secondary ports
var (
	_ secondary.CaseRepository      = (*mockCaseRepo)(nil)
	_ secondary.SectionRepository   = (*mockSectionRepo)(nil)
	_ secondary.FactRepository      = (*mockFactRepo)(nil)
	_ secondary.FindingRepository   = (*mockFindingRepo)(nil)
	_ secondary.SectionRenderer     = (*mockRenderer)(nil)
	_ secondary.QualityGate         = (*mockQualityGate)(nil)
	_ secondary.DocumentRenderer    = (*mockDocRenderer)(nil)
	_ secondary.SignalLogRepository = (*mockSignalLogRepo)(nil)
)

type mockCaseRepo struct {
	mu    sync.Mutex
	cases map[string]*secondary.CaseRecord
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{cases: make(map[string]*secondary.CaseRecord)}
}

func (m *mockCaseRepo) Create(ctx context.Context, c *secondary.CaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		return fmt.Errorf("case ID must be pre-populated")
	}
	stored := *c
	stored.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.cases[c.ID] = &stored
	return nil
}

func (m *mockCaseRepo) GetByID(ctx context.Context, id string) (*secondary.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return nil, fmt.Errorf("case %s not found", id)
	}
	copied := *c
	return &copied, nil
}

func (m *mockCaseRepo) List(ctx context.Context, filters secondary.CaseFilters) ([]*secondary.CaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.CaseRecord
	for _, c := range m.cases {
		if filters.Status != "" && c.Status != filters.Status {
			continue
		}
		copied := *c
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockCaseRepo) UpdateStatus(ctx context.Context, id, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cases[id]
	if !ok {
		return fmt.Errorf("case %s not found", id)
	}
	c.Status = status
	if status == secondary.CaseStatusArchived {
		c.ArchivedAt = time.Now().UTC().Format(time.RFC3339)
	}
	return nil
}

func (m *mockCaseRepo) GetNextID(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fmt.Sprintf("CASE-%03d", len(m.cases)+1), nil
}

type mockSectionRepo struct {
	mu       sync.Mutex
	sections map[string]*secondary.SectionRecord // key: caseID/sectionID
}

func newMockSectionRepo() *mockSectionRepo {
	return &mockSectionRepo{sections: make(map[string]*secondary.SectionRecord)}
}

func sectionKey(caseID, sectionID string) string { return caseID + "/" + sectionID }

func (m *mockSectionRepo) CreateAll(ctx context.Context, caseID string, sections []*secondary.SectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range sections {
		copied := *s
		copied.CaseID = caseID
		m.sections[sectionKey(caseID, s.SectionID)] = &copied
	}
	return nil
}

func (m *mockSectionRepo) Get(ctx context.Context, caseID, sectionID string) (*secondary.SectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[sectionKey(caseID, sectionID)]
	if !ok {
		return nil, fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	copied := *s
	return &copied, nil
}

func (m *mockSectionRepo) GetByCase(ctx context.Context, caseID string) ([]*secondary.SectionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.SectionRecord
	for _, s := range m.sections {
		if s.CaseID == caseID {
			copied := *s
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ordinal < out[j].Ordinal })
	return out, nil
}

func (m *mockSectionRepo) UpdateDraft(ctx context.Context, s *secondary.SectionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.sections[sectionKey(s.CaseID, s.SectionID)]
	if !ok {
		return fmt.Errorf("section %s not found in case %s", s.SectionID, s.CaseID)
	}
	copied := *s
	copied.Ordinal = existing.Ordinal
	m.sections[sectionKey(s.CaseID, s.SectionID)] = &copied
	return nil
}

func (m *mockSectionRepo) UpdateState(ctx context.Context, caseID, sectionID, state string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[sectionKey(caseID, sectionID)]
	if !ok {
		return fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	s.State = state
	return nil
}

func (m *mockSectionRepo) UpdateApproval(ctx context.Context, caseID, sectionID, approver, approvedAt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[sectionKey(caseID, sectionID)]
	if !ok {
		return fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	s.State = string(section.StateApproved)
	s.ApprovedBy = approver
	s.ApprovedAt = approvedAt
	return nil
}

func (m *mockSectionRepo) ClearApproval(ctx context.Context, caseID, sectionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sections[sectionKey(caseID, sectionID)]
	if !ok {
		return fmt.Errorf("section %s not found in case %s", sectionID, caseID)
	}
	s.ApprovedBy = ""
	s.ApprovedAt = ""
	return nil
}

func (m *mockSectionRepo) ResetCase(ctx context.Context, caseID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sections {
		if s.CaseID == caseID {
			s.State = string(section.StateNotStarted)
			s.ApprovedBy = ""
			s.ApprovedAt = ""
		}
	}
	return nil
}

type mockFactRepo struct {
	mu    sync.Mutex
	facts map[string][]*secondary.FactRecord // key: caseID
}

func newMockFactRepo() *mockFactRepo {
	return &mockFactRepo{facts: make(map[string][]*secondary.FactRecord)}
}

func (m *mockFactRepo) Append(ctx context.Context, caseID string, facts []*secondary.FactRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range facts {
		copied := *f
		m.facts[caseID] = append(m.facts[caseID], &copied)
	}
	return nil
}

func (m *mockFactRepo) ListByCase(ctx context.Context, caseID string) ([]*secondary.FactRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.FactRecord, 0, len(m.facts[caseID]))
	for _, f := range m.facts[caseID] {
		copied := *f
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockFactRepo) CountByCase(ctx context.Context, caseID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.facts[caseID]), nil
}

type mockFindingRepo struct {
	mu       sync.Mutex
	findings map[string][]*secondary.FindingRecord // key: caseID
}

func newMockFindingRepo() *mockFindingRepo {
	return &mockFindingRepo{findings: make(map[string][]*secondary.FindingRecord)}
}

func (m *mockFindingRepo) Upsert(ctx context.Context, caseID string, findings []*secondary.FindingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range findings {
		replaced := false
		for i, existing := range m.findings[caseID] {
			if existing.PairKey == f.PairKey {
				copied := *f
				copied.ID = existing.ID // pair identity survives re-validation
				m.findings[caseID][i] = &copied
				replaced = true
				break
			}
		}
		if !replaced {
			copied := *f
			m.findings[caseID] = append(m.findings[caseID], &copied)
		}
	}
	return nil
}

func (m *mockFindingRepo) ListByCase(ctx context.Context, caseID string) ([]*secondary.FindingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*secondary.FindingRecord, 0, len(m.findings[caseID]))
	for _, f := range m.findings[caseID] {
		copied := *f
		out = append(out, &copied)
	}
	return out, nil
}

func (m *mockFindingRepo) UpdateResolution(ctx context.Context, caseID, pairKey, resolution string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.findings[caseID] {
		if f.PairKey == pairKey {
			f.Resolution = resolution
			return nil
		}
	}
	return fmt.Errorf("finding %s not found in case %s", pairKey, caseID)
}

type mockSignalLogRepo struct {
	mu      sync.Mutex
	entries []*secondary.SignalLogRecord
}

func (m *mockSignalLogRepo) Record(ctx context.Context, entry *secondary.SignalLogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *entry
	m.entries = append(m.entries, &copied)
	return nil
}

func (m *mockSignalLogRepo) ListByCase(ctx context.Context, caseID string) ([]*secondary.SignalLogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*secondary.SignalLogRecord
	for _, e := range m.entries {
		if e.CaseID == caseID {
			copied := *e
			out = append(out, &copied)
		}
	}
	return out, nil
}

// mockRenderer scripts renderer output per section ID.
type mockRenderer struct {
	mu      sync.Mutex
	outputs map[section.ID]*secondary.RenderOutput
	errs    map[section.ID]error
	delay   time.Duration
	calls   []section.ID
}

func newMockRenderer() *mockRenderer {
	return &mockRenderer{
		outputs: make(map[section.ID]*secondary.RenderOutput),
		errs:    make(map[section.ID]error),
	}
}

func (m *mockRenderer) Render(ctx context.Context, sectionID section.ID, caseCtx secondary.CaseContext) (*secondary.RenderOutput, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, sectionID)
	output, okOut := m.outputs[sectionID]
	err := m.errs[sectionID]
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if !okOut {
		return &secondary.RenderOutput{Content: "rendered " + string(sectionID)}, nil
	}
	return output, nil
}

// mockQualityGate scripts one check result for every call.
type mockQualityGate struct {
	check secondary.QualityCheck
	err   error
}

func (m *mockQualityGate) Check(ctx context.Context, text, kind string) (secondary.QualityCheck, error) {
	if m.err != nil {
		return secondary.QualityCheck{}, m.err
	}
	return m.check, nil
}

// mockDocRenderer concatenates section titles as the composed artifact.
type mockDocRenderer struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockDocRenderer) Assemble(ctx context.Context, sections []secondary.OrderedSection) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []byte
	for _, s := range sections {
		out = append(out, []byte(s.Title+"\n")...)
	}
	return out, nil
}

// signalRecorder captures published events through a bus subscription.
type signalRecorder struct {
	mu     sync.Mutex
	events []signal.Event
}

func (r *signalRecorder) handle(ev signal.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *signalRecorder) codes() []signal.Code {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]signal.Code, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Code
	}
	return out
}

func (r *signalRecorder) count(code signal.Code) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Code == code {
			n++
		}
	}
	return n
}

// testEnv bundles a fully wired service set over in-memory mocks.
type testEnv struct {
	caseRepo    *mockCaseRepo
	sectionRepo *mockSectionRepo
	factRepo    *mockFactRepo
	findingRepo *mockFindingRepo
	renderer    *mockRenderer
	quality     *mockQualityGate
	docRenderer *mockDocRenderer
	bus         *signal.Bus
	recorder    *signalRecorder
	locks       *CaseLocks

	cases    *CaseServiceImpl
	sections *SectionServiceImpl
	assembly *AssemblyServiceImpl
	findings *FindingServiceImpl
}

func newTestEnv() *testEnv {
	env := &testEnv{
		caseRepo:    newMockCaseRepo(),
		sectionRepo: newMockSectionRepo(),
		factRepo:    newMockFactRepo(),
		findingRepo: newMockFindingRepo(),
		renderer:    newMockRenderer(),
		quality:     &mockQualityGate{check: secondary.QualityCheck{Pass: true}},
		docRenderer: &mockDocRenderer{},
		recorder:    &signalRecorder{},
		locks:       NewCaseLocks(),
	}
	env.bus = signal.NewBus(zerolog.Nop(), signal.WithBackoff(func(int) time.Duration { return 0 }))
	env.bus.Subscribe("recorder", env.recorder.handle,
		signal.CodeSectionDrafted,
		signal.CodeSectionRevisionRequested,
		signal.CodeSectionApproved,
		signal.CodeContinuityFail,
		signal.CodeContinuityResolved,
		signal.CodeAssemblyReady,
		signal.CodeCaseArchived,
	)

	registry := config.DefaultRegistry()
	engine := continuity.NewEngine(continuity.Config{
		SimilarityThreshold: continuity.DefaultSimilarityThreshold,
		TravelWindow:        time.Hour,
	})
	log := zerolog.Nop()

	env.cases = NewCaseService(env.caseRepo, env.sectionRepo, registry, env.locks, log)
	env.sections = NewSectionService(env.caseRepo, env.sectionRepo, env.factRepo, env.findingRepo,
		env.renderer, env.quality, engine, registry, env.bus, env.locks, log)
	env.assembly = NewAssemblyService(env.caseRepo, env.sectionRepo, env.findingRepo,
		env.docRenderer, env.bus, env.locks, log)
	env.findings = NewFindingService(env.findingRepo, env.locks, log)
	return env
}
