package app

import (
	"time"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/fact"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/ports/secondary"
)

func sectionFromRecord(r *secondary.SectionRecord) *primary.Section {
	dependsOn := make([]section.ID, len(r.DependsOn))
	for i, d := range r.DependsOn {
		dependsOn[i] = section.ID(d)
	}
	return &primary.Section{
		CaseID:    r.CaseID,
		SectionID: section.ID(r.SectionID),
		Title:     r.Title,
		Ordinal:   r.Ordinal,
		State:     section.State(r.State),
		Content:   r.Content,
		Manifest: section.Manifest{
			Complete:          r.ManifestComplete,
			DependsOn:         dependsOn,
			AuthoritativeKeys: r.AuthoritativeKeys,
			QualityNote:       r.QualityNote,
			Warnings:          r.Warnings,
		},
		LastModified: r.LastModified,
		ApprovedBy:   r.ApprovedBy,
		ApprovedAt:   r.ApprovedAt,
	}
}

func caseFromRecord(r *secondary.CaseRecord, sections []*secondary.SectionRecord) *primary.Case {
	c := &primary.Case{
		ID:         r.ID,
		Title:      r.Title,
		ReportType: r.ReportType,
		Owner:      r.Owner,
		Status:     r.Status,
		Required:   r.RequiredSections,
		CreatedAt:  r.CreatedAt,
		ArchivedAt: r.ArchivedAt,
	}
	for _, s := range sections {
		c.Sections = append(c.Sections, sectionFromRecord(s))
	}
	return c
}

func factFromRecord(r *secondary.FactRecord) (fact.Fact, error) {
	extractedAt, err := time.Parse(time.RFC3339, r.ExtractedAt)
	if err != nil {
		extractedAt = time.Time{}
	}
	return fact.Fact{
		ID:            r.ID,
		Subject:       fact.SubjectType(r.Subject),
		SubjectKey:    r.SubjectKey,
		Value:         r.Value,
		ObservedAt:    r.ObservedAt,
		SectionID:     section.ID(r.SectionID),
		Confidence:    r.Confidence,
		ExtractedAt:   extractedAt,
		Supersedes:    r.Supersedes,
		Authoritative: r.Authoritative,
	}, nil
}

func factToRecord(caseID string, f fact.Fact) *secondary.FactRecord {
	return &secondary.FactRecord{
		ID:            f.ID,
		CaseID:        caseID,
		Subject:       string(f.Subject),
		SubjectKey:    f.SubjectKey,
		Value:         f.Value,
		ObservedAt:    f.ObservedAt,
		SectionID:     string(f.SectionID),
		Confidence:    f.Confidence,
		Supersedes:    f.Supersedes,
		Authoritative: f.Authoritative,
		ExtractedAt:   f.ExtractedAt.Format(time.RFC3339),
	}
}

func findingFromRecord(r *secondary.FindingRecord) continuity.Finding {
	detectedAt, _ := time.Parse(time.RFC3339, r.DetectedAt)
	return continuity.Finding{
		ID:          r.ID,
		PairKey:     r.PairKey,
		FactA:       r.FactA,
		FactB:       r.FactB,
		Kind:        continuity.Kind(r.Kind),
		Severity:    continuity.Severity(r.Severity),
		Resolution:  continuity.Resolution(r.Resolution),
		Explanation: r.Explanation,
		DetectedAt:  detectedAt,
	}
}

func findingToRecord(caseID string, f continuity.Finding) *secondary.FindingRecord {
	return &secondary.FindingRecord{
		ID:          f.ID,
		CaseID:      caseID,
		PairKey:     f.PairKey,
		FactA:       f.FactA,
		FactB:       f.FactB,
		Kind:        string(f.Kind),
		Severity:    string(f.Severity),
		Resolution:  string(f.Resolution),
		Explanation: f.Explanation,
		DetectedAt:  f.DetectedAt.Format(time.RFC3339),
	}
}

func findingsFromRecords(records []*secondary.FindingRecord) []continuity.Finding {
	findings := make([]continuity.Finding, 0, len(records))
	for _, r := range records {
		findings = append(findings, findingFromRecord(r))
	}
	return findings
}

// ledgerFromRepo loads a case's facts and rebuilds the in-memory ledger.
// Integrity faults surface as fact.ErrLedgerCorrupt.
func ledgerFromRepo(records []*secondary.FactRecord) (*fact.Ledger, error) {
	facts := make([]fact.Fact, 0, len(records))
	for _, r := range records {
		f, err := factFromRecord(r)
		if err != nil {
			return nil, err
		}
		facts = append(facts, f)
	}
	return fact.NewLedger(facts)
}
