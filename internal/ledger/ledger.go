// Package ledger decides which participants are liable for which expenses.
//
// Eligibility used to be re-derived ad hoc wherever splits were built;
// consolidating it behind IsLiable keeps the "new expense" and "new
// participant" flows from drifting apart.
package ledger

import (
	"slices"

	"github.com/weichenh/splitledger/internal/models"
)

// IsLiable reports whether the participant owes a share of the expense,
// per their join policy:
//
//   - FULL_SPLIT: liable for every expense of the activity, including ones
//     recorded before they joined.
//   - NO_SPLIT: liable only for expenses dated at or after their join time.
//   - PARTIAL_SPLIT: liable for the expense IDs enumerated at join time
//     plus everything dated at or after their join time.
//
// A participant who has left (Active=false) is never liable for new
// splits; their historical split rows are retained elsewhere as a
// liability snapshot.
func IsLiable(p *models.Participant, e *models.Expense) bool {
	if !p.Active {
		return false
	}
	switch p.JoinPolicy {
	case models.JoinFullSplit:
		return true
	case models.JoinNoSplit:
		return e.Date >= p.JoinedAt
	case models.JoinPartialSplit:
		if e.Date >= p.JoinedAt {
			return true
		}
		return slices.Contains(p.PartialExpenseIDs, e.ID)
	}
	return false
}

// EligibleParticipants filters participants down to those liable for the
// expense, preserving input order.
func EligibleParticipants(participants []*models.Participant, e *models.Expense) []*models.Participant {
	var eligible []*models.Participant
	for _, p := range participants {
		if IsLiable(p, e) {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
