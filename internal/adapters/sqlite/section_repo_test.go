package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/dossier/internal/adapters/sqlite"
	"github.com/example/dossier/internal/ports/secondary"
)

func TestSectionRepositoryCreateAllAndGetByCase(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSectionRepository(database)
	ctx := context.Background()

	caseID := seedCase(t, database, "")
	sections := []*secondary.SectionRecord{
		{SectionID: "cp", Title: "Case Particulars", Ordinal: 0, State: "not_started"},
		{SectionID: "s1", Title: "Assignment & Objectives", Ordinal: 1, State: "not_started"},
		{SectionID: "fr", Title: "Fee & Billing Summary", Ordinal: 2, State: "not_started"},
	}
	if err := repo.CreateAll(ctx, caseID, sections); err != nil {
		t.Fatalf("CreateAll() error = %v", err)
	}

	got, err := repo.GetByCase(ctx, caseID)
	if err != nil {
		t.Fatalf("GetByCase() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("GetByCase() returned %d sections, want 3", len(got))
	}
	if got[0].SectionID != "cp" || got[1].SectionID != "s1" || got[2].SectionID != "fr" {
		t.Errorf("GetByCase() order = %v, want ordinal order", got)
	}
}

func TestSectionRepositoryUpdateDraft(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSectionRepository(database)
	ctx := context.Background()

	caseID := seedCase(t, database, "")
	seedSection(t, database, caseID, "s3", "not_started")

	record := &secondary.SectionRecord{
		CaseID:            caseID,
		SectionID:         "s3",
		Title:             "Observation Log",
		State:             "drafted",
		Content:           "Subject observed departing residence at 07:40.",
		ManifestComplete:  true,
		DependsOn:         []string{"cp"},
		AuthoritativeKeys: []string{"subj-smith"},
		QualityNote:       "pass",
		Warnings:          []string{"declared dependency cp has not been started"},
		LastModified:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC).Format(time.RFC3339),
	}
	if err := repo.UpdateDraft(ctx, record); err != nil {
		t.Fatalf("UpdateDraft() error = %v", err)
	}

	got, err := repo.Get(ctx, caseID, "s3")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != "drafted" || got.Content == "" || !got.ManifestComplete {
		t.Errorf("Get() = %+v, want stored draft", got)
	}
	if len(got.DependsOn) != 1 || got.DependsOn[0] != "cp" {
		t.Errorf("DependsOn = %v, want [cp]", got.DependsOn)
	}
	if len(got.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one warning", got.Warnings)
	}
	if got.Title != "Observation Log" {
		t.Errorf("Title = %q, want manifest override", got.Title)
	}
}

func TestSectionRepositoryApprovalRoundTrip(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSectionRepository(database)
	ctx := context.Background()

	caseID := seedCase(t, database, "")
	seedSection(t, database, caseID, "s1", "drafted")

	approvedAt := time.Date(2026, 3, 2, 14, 0, 0, 0, time.UTC).Format(time.RFC3339)
	if err := repo.UpdateApproval(ctx, caseID, "s1", "analyst-7", approvedAt); err != nil {
		t.Fatalf("UpdateApproval() error = %v", err)
	}

	got, err := repo.Get(ctx, caseID, "s1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.State != "approved" || got.ApprovedBy != "analyst-7" || got.ApprovedAt == "" {
		t.Errorf("Get() after approval = %+v, want approval recorded", got)
	}

	if err := repo.ClearApproval(ctx, caseID, "s1"); err != nil {
		t.Fatalf("ClearApproval() error = %v", err)
	}
	got, _ = repo.Get(ctx, caseID, "s1")
	if got.ApprovedBy != "" || got.ApprovedAt != "" {
		t.Errorf("Get() after clear = %+v, want approval cleared", got)
	}
}

func TestSectionRepositoryResetCase(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSectionRepository(database)
	ctx := context.Background()

	caseID := seedCase(t, database, "")
	seedSection(t, database, caseID, "s1", "locked")
	seedSection(t, database, caseID, "s2", "approved")

	if err := repo.ResetCase(ctx, caseID); err != nil {
		t.Fatalf("ResetCase() error = %v", err)
	}

	sections, err := repo.GetByCase(ctx, caseID)
	if err != nil {
		t.Fatalf("GetByCase() error = %v", err)
	}
	for _, s := range sections {
		if s.State != "not_started" {
			t.Errorf("section %s state = %q after reset, want not_started", s.SectionID, s.State)
		}
		if s.ApprovedBy != "" {
			t.Errorf("section %s keeps approval after reset", s.SectionID)
		}
	}
}

func TestSectionRepositoryUpdateStateUnknownSection(t *testing.T) {
	database := setupTestDB(t)
	repo := sqlite.NewSectionRepository(database)

	caseID := seedCase(t, database, "")
	if err := repo.UpdateState(context.Background(), caseID, "s9", "drafted"); err == nil {
		t.Error("UpdateState(missing section) = nil error, want not found")
	}
}
