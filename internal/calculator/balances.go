package calculator

import (
	"sort"

	"github.com/weichenh/splitledger/internal/models"
)

// ExpenseForBalance carries the minimal expense information settlement
// aggregation needs: who paid, how much, and the split rows in force.
type ExpenseForBalance struct {
	ExpenseID   string
	PaidBy      string
	AmountCents int64 // absolute value
	Splits      []Share
}

// MismatchTolerancePerSplit is the allowed gap, in cents, between an
// expense's amount and the sum of its split shares, per split row. AVERAGE
// rounding can lose up to one cent per participant; anything beyond that is
// reported as a mismatch.
const MismatchTolerancePerSplit = int64(1)

// ComputeBalances aggregates expenses and their splits into net balances
// per participant.
//
// Convention, applied consistently everywhere: net = paid - owed, so a
// positive net means the group owes the participant money. Results are
// sorted by user ID so reports are reproducible.
func ComputeBalances(expenses []ExpenseForBalance) []models.ParticipantBalance {
	byUser := make(map[string]*models.ParticipantBalance)
	get := func(userID string) *models.ParticipantBalance {
		b, ok := byUser[userID]
		if !ok {
			b = &models.ParticipantBalance{UserID: userID}
			byUser[userID] = b
		}
		return b
	}

	for _, e := range expenses {
		if e.PaidBy != "" {
			get(e.PaidBy).TotalPaidCents += e.AmountCents
		}
		for _, s := range e.Splits {
			get(s.UserID).TotalOwedCents += s.AmountCents
		}
	}

	balances := make([]models.ParticipantBalance, 0, len(byUser))
	for _, b := range byUser {
		b.NetCents = b.TotalPaidCents - b.TotalOwedCents
		balances = append(balances, *b)
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].UserID < balances[j].UserID })
	return balances
}

// DetectMismatches returns one entry per expense whose splits do not sum to
// its amount within the per-split tolerance. FIXED splits may legitimately
// leave a remainder; the mismatch is surfaced, never silently corrected.
func DetectMismatches(expenses []ExpenseForBalance) []models.SplitMismatch {
	var mismatches []models.SplitMismatch
	for _, e := range expenses {
		actual := SumShares(e.Splits)
		diff := e.AmountCents - actual
		if diff < 0 {
			diff = -diff
		}
		tolerance := MismatchTolerancePerSplit * int64(len(e.Splits))
		if diff > tolerance {
			mismatches = append(mismatches, models.SplitMismatch{
				ExpenseID:     e.ExpenseID,
				ExpectedCents: e.AmountCents,
				ActualCents:   actual,
			})
		}
	}
	return mismatches
}

// SimplifyDebts matches debtors against creditors greedily, producing a
// small set of transfers that settles the balances. Inputs must already be
// sorted (ComputeBalances output); the pairing walks both lists in order so
// the transfer list is deterministic.
func SimplifyDebts(balances []models.ParticipantBalance) []models.Transfer {
	var debtors, creditors []models.ParticipantBalance
	for _, b := range balances {
		switch {
		case b.NetCents < 0:
			debtors = append(debtors, b)
		case b.NetCents > 0:
			creditors = append(creditors, b)
		}
	}

	owes := make(map[string]int64, len(debtors))
	owed := make(map[string]int64, len(creditors))
	for _, d := range debtors {
		owes[d.UserID] = -d.NetCents
	}
	for _, c := range creditors {
		owed[c.UserID] = c.NetCents
	}

	var transfers []models.Transfer
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		from := debtors[i].UserID
		to := creditors[j].UserID

		amount := owes[from]
		if owed[to] < amount {
			amount = owed[to]
		}
		if amount > 0 {
			transfers = append(transfers, models.Transfer{
				FromUserID:  from,
				ToUserID:    to,
				AmountCents: amount,
			})
		}

		owes[from] -= amount
		owed[to] -= amount
		if owes[from] == 0 {
			i++
		}
		if owed[to] == 0 {
			j++
		}
	}
	return transfers
}
