package calculator

import (
	"testing"

	"github.com/weichenh/splitledger/internal/models"
)

func TestComputeBalances(t *testing.T) {
	// Alice pays 300.00 split three ways; Bob pays 90.00 split two ways.
	expenses := []ExpenseForBalance{
		{
			ExpenseID:   "e1",
			PaidBy:      "alice",
			AmountCents: 30000,
			Splits: []Share{
				{UserID: "alice", AmountCents: 10000},
				{UserID: "bob", AmountCents: 10000},
				{UserID: "carol", AmountCents: 10000},
			},
		},
		{
			ExpenseID:   "e2",
			PaidBy:      "bob",
			AmountCents: 9000,
			Splits: []Share{
				{UserID: "alice", AmountCents: 4500},
				{UserID: "bob", AmountCents: 4500},
			},
		},
	}

	balances := ComputeBalances(expenses)
	if len(balances) != 3 {
		t.Fatalf("got %d balances, want 3", len(balances))
	}

	want := map[string]models.ParticipantBalance{
		"alice": {UserID: "alice", TotalPaidCents: 30000, TotalOwedCents: 14500, NetCents: 15500},
		"bob":   {UserID: "bob", TotalPaidCents: 9000, TotalOwedCents: 14500, NetCents: -5500},
		"carol": {UserID: "carol", TotalPaidCents: 0, TotalOwedCents: 10000, NetCents: -10000},
	}
	for _, b := range balances {
		if b != want[b.UserID] {
			t.Errorf("balance for %s = %+v, want %+v", b.UserID, b, want[b.UserID])
		}
	}

	// Output must be sorted by user ID for reproducible reports.
	for i := 1; i < len(balances); i++ {
		if balances[i-1].UserID > balances[i].UserID {
			t.Errorf("balances not sorted: %s before %s", balances[i-1].UserID, balances[i].UserID)
		}
	}
}

func TestDetectMismatches(t *testing.T) {
	tests := []struct {
		name     string
		expense  ExpenseForBalance
		wantHit  bool
		expected int64
		actual   int64
	}{
		{
			name: "fixed splits short of the total are reported",
			expense: ExpenseForBalance{
				ExpenseID:   "e1",
				AmountCents: 9000,
				Splits: []Share{
					{UserID: "a", AmountCents: 4000},
					{UserID: "b", AmountCents: 4000},
				},
			},
			wantHit:  true,
			expected: 9000,
			actual:   8000,
		},
		{
			name: "average rounding loss stays within tolerance",
			expense: ExpenseForBalance{
				ExpenseID:   "e2",
				AmountCents: 10000,
				Splits: []Share{
					{UserID: "a", AmountCents: 3333},
					{UserID: "b", AmountCents: 3333},
					{UserID: "c", AmountCents: 3333},
				},
			},
			wantHit: false,
		},
		{
			name: "exact splits are clean",
			expense: ExpenseForBalance{
				ExpenseID:   "e3",
				AmountCents: 10000,
				Splits: []Share{
					{UserID: "a", AmountCents: 5000},
					{UserID: "b", AmountCents: 5000},
				},
			},
			wantHit: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mismatches := DetectMismatches([]ExpenseForBalance{tt.expense})
			if tt.wantHit {
				if len(mismatches) != 1 {
					t.Fatalf("got %d mismatches, want 1", len(mismatches))
				}
				m := mismatches[0]
				if m.ExpectedCents != tt.expected || m.ActualCents != tt.actual {
					t.Errorf("mismatch = %+v, want expected %d actual %d", m, tt.expected, tt.actual)
				}
			} else if len(mismatches) != 0 {
				t.Errorf("unexpected mismatches: %+v", mismatches)
			}
		})
	}
}

func TestSimplifyDebts(t *testing.T) {
	balances := []models.ParticipantBalance{
		{UserID: "alice", NetCents: 15500},
		{UserID: "bob", NetCents: -5500},
		{UserID: "carol", NetCents: -10000},
	}

	transfers := SimplifyDebts(balances)
	want := []models.Transfer{
		{FromUserID: "bob", ToUserID: "alice", AmountCents: 5500},
		{FromUserID: "carol", ToUserID: "alice", AmountCents: 10000},
	}
	if len(transfers) != len(want) {
		t.Fatalf("got %d transfers, want %d: %+v", len(transfers), len(want), transfers)
	}
	for i := range want {
		if transfers[i] != want[i] {
			t.Errorf("transfer %d = %+v, want %+v", i, transfers[i], want[i])
		}
	}
}

func TestSimplifyDebtsAllSettled(t *testing.T) {
	balances := []models.ParticipantBalance{
		{UserID: "alice", NetCents: 0},
		{UserID: "bob", NetCents: 0},
	}
	if transfers := SimplifyDebts(balances); len(transfers) != 0 {
		t.Errorf("expected no transfers, got %+v", transfers)
	}
}
