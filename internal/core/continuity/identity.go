package continuity

import (
	"fmt"
	"strings"

	"github.com/agext/levenshtein"

	"github.com/example/dossier/internal/core/fact"
)

// DefaultSimilarityThreshold is the normalized edit-distance score above
// which two names are considered the same entity.
const DefaultSimilarityThreshold = 0.85

// nicknames maps common short forms to their canonical given name. The
// matcher tolerates nickname variants before computing similarity.
var nicknames = map[string]string{
	"jon": "john", "jack": "john",
	"bill": "william", "billy": "william", "will": "william",
	"bob": "robert", "bobby": "robert", "rob": "robert",
	"jim": "james", "jimmy": "james",
	"mike": "michael", "tom": "thomas", "tony": "anthony",
	"liz": "elizabeth", "beth": "elizabeth",
	"kate": "katherine", "katie": "katherine",
	"dave": "david", "dan": "daniel", "danny": "daniel",
	"chris": "christopher", "steve": "steven",
	"ed": "edward", "eddie": "edward",
	"rick": "richard", "dick": "richard",
	"pete": "peter", "sam": "samuel",
	"alex": "alexander", "nick": "nicholas",
	"matt": "matthew", "joe": "joseph",
	"ben": "benjamin", "greg": "gregory",
	"jeff": "jeffrey", "ken": "kenneth",
	"andy": "andrew", "tim": "timothy",
}

// NormalizeName canonicalizes a person name for comparison: lowercase,
// punctuation stripped, single-letter initials and middle tokens dropped,
// nicknames mapped to their canonical form.
func NormalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}

	tokens := strings.Fields(b.String())
	var kept []string
	for _, tok := range tokens {
		if len(tok) == 1 {
			continue // initials carry no matching signal
		}
		kept = append(kept, tok)
	}
	if len(kept) > 2 {
		kept = []string{kept[0], kept[len(kept)-1]}
	}
	if len(kept) > 0 {
		if canonical, ok := nicknames[kept[0]]; ok {
			kept[0] = canonical
		}
	}
	return strings.Join(kept, " ")
}

// NameSimilarity returns a 0..1 similarity score between two normalized names.
func NameSimilarity(a, b string) float64 {
	return levenshtein.Similarity(NormalizeName(a), NormalizeName(b), levenshtein.NewParams())
}

// IdentityMatcher fuzzy-matches person/entity names across sections. Two
// facts naming what appears to be the same entity with materially different
// canonical values produce a blocking finding.
type IdentityMatcher struct {
	Threshold float64
}

func (m IdentityMatcher) Kind() Kind { return KindIdentity }

func (m IdentityMatcher) Subjects() []fact.SubjectType {
	return []fact.SubjectType{fact.SubjectPerson, fact.SubjectIdentifier}
}

func (m IdentityMatcher) threshold() float64 {
	if m.Threshold > 0 {
		return m.Threshold
	}
	return DefaultSimilarityThreshold
}

// Check compares the changed facts against the active ledger.
func (m IdentityMatcher) Check(ledger *fact.Ledger, changed []fact.Fact) []Finding {
	var findings []Finding
	for _, pair := range pairsForChanged(ledger, changed, m.Subjects()) {
		a, b := pair[0], pair[1]
		if a.Subject != b.Subject {
			continue
		}
		switch a.Subject {
		case fact.SubjectPerson:
			if f, ok := m.checkPersonPair(a, b); ok {
				findings = append(findings, f)
			}
		case fact.SubjectIdentifier:
			if a.SubjectKey == b.SubjectKey && a.Value != b.Value {
				findings = append(findings, newFinding(KindIdentity, SeverityBlocking, a.ID, b.ID,
					fmt.Sprintf("identifier conflict for %q: section %s recorded %q, section %s recorded %q",
						a.SubjectKey, a.SectionID, a.Value, b.SectionID, b.Value)))
			}
		}
	}
	return findings
}

func (m IdentityMatcher) checkPersonPair(a, b fact.Fact) (Finding, bool) {
	sameKey := a.SubjectKey == b.SubjectKey
	sim := NameSimilarity(a.Value, b.Value)

	if sameKey && sim < m.threshold() {
		return newFinding(KindIdentity, SeverityBlocking, a.ID, b.ID,
			fmt.Sprintf("entity %q named %q in section %s but %q in section %s (similarity %.2f below threshold %.2f)",
				a.SubjectKey, a.Value, a.SectionID, b.Value, b.SectionID, sim, m.threshold())), true
	}
	if !sameKey && NormalizeName(a.Value) == NormalizeName(b.Value) && NormalizeName(a.Value) != "" {
		return newFinding(KindIdentity, SeverityBlocking, a.ID, b.ID,
			fmt.Sprintf("name %q is bound to two different identifiers: %q (section %s) and %q (section %s)",
				a.Value, a.SubjectKey, a.SectionID, b.SubjectKey, b.SectionID)), true
	}
	return Finding{}, false
}
