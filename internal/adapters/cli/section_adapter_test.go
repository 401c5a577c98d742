package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
)

// mockSectionService implements primary.SectionService for testing
type mockSectionService struct {
	submitDraftFn     func(ctx context.Context, req primary.SubmitDraftRequest) (*primary.SubmitDraftResponse, error)
	approveFn         func(ctx context.Context, req primary.ApproveRequest) error
	requestRevisionFn func(ctx context.Context, req primary.RequestRevisionRequest) error
	renderSectionsFn  func(ctx context.Context, req primary.RenderSectionsRequest) (*primary.RenderSectionsResponse, error)
}

func (m *mockSectionService) SubmitDraft(ctx context.Context, req primary.SubmitDraftRequest) (*primary.SubmitDraftResponse, error) {
	if m.submitDraftFn != nil {
		return m.submitDraftFn(ctx, req)
	}
	return &primary.SubmitDraftResponse{
		Section: &primary.Section{CaseID: req.CaseID, SectionID: req.SectionID, State: section.StateDrafted},
	}, nil
}

func (m *mockSectionService) RequestRevision(ctx context.Context, req primary.RequestRevisionRequest) error {
	if m.requestRevisionFn != nil {
		return m.requestRevisionFn(ctx, req)
	}
	return nil
}

func (m *mockSectionService) Approve(ctx context.Context, req primary.ApproveRequest) error {
	if m.approveFn != nil {
		return m.approveFn(ctx, req)
	}
	return nil
}

func (m *mockSectionService) GetSection(ctx context.Context, caseID string, sectionID section.ID) (*primary.Section, error) {
	return &primary.Section{CaseID: caseID, SectionID: sectionID, State: section.StateDrafted}, nil
}

func (m *mockSectionService) RenderSections(ctx context.Context, req primary.RenderSectionsRequest) (*primary.RenderSectionsResponse, error) {
	if m.renderSectionsFn != nil {
		return m.renderSectionsFn(ctx, req)
	}
	return &primary.RenderSectionsResponse{Drafted: req.Sections, Failed: map[section.ID]string{}}, nil
}

func TestSectionAdapterDraftPrintsFindings(t *testing.T) {
	service := &mockSectionService{
		submitDraftFn: func(ctx context.Context, req primary.SubmitDraftRequest) (*primary.SubmitDraftResponse, error) {
			return &primary.SubmitDraftResponse{
				Section: &primary.Section{SectionID: req.SectionID, State: section.StateDrafted},
				NewFindings: []continuity.Finding{{
					PairKey:     "F-001|F-002",
					Severity:    continuity.SeverityBlocking,
					Explanation: "subject placed in two locations at the same time",
				}},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewSectionAdapter(service, &buf)

	if err := adapter.Draft(context.Background(), "CASE-001", "s2", "Summary.", true); err != nil {
		t.Fatalf("Draft() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "drafted") || !strings.Contains(out, "F-001|F-002") {
		t.Errorf("output = %q, want draft confirmation with finding", out)
	}
}

func TestSectionAdapterApproveBlockedShowsBlockers(t *testing.T) {
	service := &mockSectionService{
		approveFn: func(ctx context.Context, req primary.ApproveRequest) error {
			return &primary.ApprovalBlockedError{
				SectionID: req.SectionID,
				Findings: []continuity.Finding{{
					PairKey:     "F-001|F-002",
					Kind:        continuity.KindDateLocation,
					Explanation: "same instant, different locations",
				}},
			}
		},
	}
	var buf bytes.Buffer
	adapter := NewSectionAdapter(service, &buf)

	err := adapter.Approve(context.Background(), "CASE-001", "s2", "analyst-7")
	if err == nil {
		t.Fatal("Approve() = nil error, want blocked error propagated")
	}
	if !strings.Contains(buf.String(), "Approval refused") || !strings.Contains(buf.String(), "F-001|F-002") {
		t.Errorf("output = %q, want refusal with blocker list", buf.String())
	}
}

func TestSectionAdapterRenderReportsFailures(t *testing.T) {
	service := &mockSectionService{
		renderSectionsFn: func(ctx context.Context, req primary.RenderSectionsRequest) (*primary.RenderSectionsResponse, error) {
			return &primary.RenderSectionsResponse{
				Drafted: []section.ID{section.S1},
				Failed:  map[section.ID]string{section.S2: "renderer timed out"},
			}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewSectionAdapter(service, &buf)

	err := adapter.Render(context.Background(), "CASE-001", []string{"s1", "s2"}, time.Second)
	if err == nil {
		t.Fatal("Render() = nil error, want failure summary error")
	}
	out := buf.String()
	if !strings.Contains(out, "s1 rendered") || !strings.Contains(out, "renderer timed out") {
		t.Errorf("output = %q, want mixed outcome report", out)
	}
}
