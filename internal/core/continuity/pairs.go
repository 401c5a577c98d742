package continuity

import "github.com/example/dossier/internal/core/fact"

// pairsForChanged enumerates the fact pairs a validator must examine after a
// ledger change: each changed fact against every active fact of a matching
// subject type. When both facts of a pair are in the changed set the pair is
// emitted once, keeping findings symmetric (one finding per unordered pair).
func pairsForChanged(ledger *fact.Ledger, changed []fact.Fact, subjects []fact.SubjectType) [][2]fact.Fact {
	subjectSet := make(map[fact.SubjectType]bool, len(subjects))
	for _, s := range subjects {
		subjectSet[s] = true
	}

	changedSet := make(map[string]bool, len(changed))
	for _, c := range changed {
		changedSet[c.ID] = true
	}

	var pairs [][2]fact.Fact
	for _, c := range changed {
		if !subjectSet[c.Subject] || !ledger.IsActive(c.ID) {
			continue
		}
		for _, other := range ledger.Active() {
			if other.ID == c.ID || !subjectSet[other.Subject] {
				continue
			}
			if changedSet[other.ID] && c.ID > other.ID {
				continue // pair already emitted from the other side
			}
			pairs = append(pairs, [2]fact.Fact{c, other})
		}
	}
	return pairs
}
