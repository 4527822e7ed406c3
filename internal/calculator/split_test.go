package calculator

import (
	"testing"

	"github.com/weichenh/splitledger/internal/models"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		totalCents int64
		splitType  models.SplitType
		directives []Directive
		wantErr    bool
		validate   func(t *testing.T, shares []Share)
	}{
		{
			name:       "average three ways splits evenly",
			totalCents: 30000,
			splitType:  models.SplitAverage,
			directives: []Directive{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}},
			validate: func(t *testing.T, shares []Share) {
				for _, s := range shares {
					if s.AmountCents != 10000 {
						t.Errorf("%s share = %d, want 10000", s.UserID, s.AmountCents)
					}
				}
				if sum := SumShares(shares); sum != 30000 {
					t.Errorf("sum = %d, want 30000", sum)
				}
			},
		},
		{
			name:       "average keeps rounding loss",
			totalCents: 10000,
			splitType:  models.SplitAverage,
			directives: []Directive{{UserID: "a"}, {UserID: "b"}, {UserID: "c"}},
			validate: func(t *testing.T, shares []Share) {
				// 100.00 / 3 = 33.33 each; the lost cent is not redistributed.
				for _, s := range shares {
					if s.AmountCents != 3333 {
						t.Errorf("%s share = %d, want 3333", s.UserID, s.AmountCents)
					}
				}
				if sum := SumShares(shares); sum != 9999 {
					t.Errorf("sum = %d, want 9999", sum)
				}
			},
		},
		{
			name:       "average rounds half up",
			totalCents: 101,
			splitType:  models.SplitAverage,
			directives: []Directive{{UserID: "a"}, {UserID: "b"}},
			validate: func(t *testing.T, shares []Share) {
				// 50.5 cents rounds up to 51.
				for _, s := range shares {
					if s.AmountCents != 51 {
						t.Errorf("%s share = %d, want 51", s.UserID, s.AmountCents)
					}
				}
			},
		},
		{
			name:       "ratio 1:1:2 splits proportionally",
			totalCents: 10000,
			splitType:  models.SplitRatio,
			directives: []Directive{{UserID: "a", Value: 1}, {UserID: "b", Value: 1}, {UserID: "c", Value: 2}},
			validate: func(t *testing.T, shares []Share) {
				want := map[string]int64{"a": 2500, "b": 2500, "c": 5000}
				for _, s := range shares {
					if s.AmountCents != want[s.UserID] {
						t.Errorf("%s share = %d, want %d", s.UserID, s.AmountCents, want[s.UserID])
					}
				}
			},
		},
		{
			name:       "ratio distributes remainder and sums exactly",
			totalCents: 10000,
			splitType:  models.SplitRatio,
			directives: []Directive{{UserID: "a", Value: 1}, {UserID: "b", Value: 1}, {UserID: "c", Value: 1}},
			validate: func(t *testing.T, shares []Share) {
				if sum := SumShares(shares); sum != 10000 {
					t.Errorf("sum = %d, want exactly 10000", sum)
				}
				// Remainder cent lands on the first directive (largest
				// remainder, ties by order).
				if shares[0].AmountCents != 3334 {
					t.Errorf("first share = %d, want 3334", shares[0].AmountCents)
				}
			},
		},
		{
			name:       "ratio with zero total weight fails",
			totalCents: 10000,
			splitType:  models.SplitRatio,
			directives: []Directive{{UserID: "a", Value: 0}, {UserID: "b", Value: 0}},
			wantErr:    true,
		},
		{
			name:       "fixed values are taken verbatim",
			totalCents: 9000,
			splitType:  models.SplitFixed,
			directives: []Directive{{UserID: "a", Value: 4000}, {UserID: "b", Value: 4000}},
			validate: func(t *testing.T, shares []Share) {
				// Sum 8000 != 9000 is allowed here; settlement reports it.
				for _, s := range shares {
					if s.AmountCents != 4000 {
						t.Errorf("%s share = %d, want 4000", s.UserID, s.AmountCents)
					}
				}
			},
		},
		{
			name:       "selective averages over chosen subset",
			totalCents: 9000,
			splitType:  models.SplitSelective,
			directives: []Directive{{UserID: "a", Value: 1}, {UserID: "b", Value: 0}, {UserID: "c", Value: 1}},
			validate: func(t *testing.T, shares []Share) {
				if len(shares) != 2 {
					t.Fatalf("got %d shares, want 2", len(shares))
				}
				for _, s := range shares {
					if s.UserID == "b" {
						t.Errorf("unselected participant b received a share")
					}
					if s.AmountCents != 4500 {
						t.Errorf("%s share = %d, want 4500", s.UserID, s.AmountCents)
					}
				}
			},
		},
		{
			name:       "selective with nobody selected fails",
			totalCents: 9000,
			splitType:  models.SplitSelective,
			directives: []Directive{{UserID: "a", Value: 0}},
			wantErr:    true,
		},
		{
			name:       "empty directives fail",
			totalCents: 1000,
			splitType:  models.SplitAverage,
			directives: nil,
			wantErr:    true,
		},
		{
			name:       "negative value fails",
			totalCents: 1000,
			splitType:  models.SplitRatio,
			directives: []Directive{{UserID: "a", Value: -1}, {UserID: "b", Value: 2}},
			wantErr:    true,
		},
		{
			name:       "unknown split type fails",
			totalCents: 1000,
			splitType:  models.SplitType("WEIGHTED"),
			directives: []Directive{{UserID: "a"}},
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares, err := Compute(tt.totalCents, tt.splitType, tt.directives)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Compute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !models.IsInvalidSplit(err) {
					t.Errorf("error %v is not an InvalidSplitError", err)
				}
				return
			}
			if tt.validate != nil {
				tt.validate(t, shares)
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	directives := []Directive{
		{UserID: "a", Value: 3},
		{UserID: "b", Value: 7},
		{UserID: "c", Value: 11},
	}
	first, err := Compute(99999, models.SplitRatio, directives)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	for i := 0; i < 100; i++ {
		got, err := Compute(99999, models.SplitRatio, directives)
		if err != nil {
			t.Fatalf("Compute failed: %v", err)
		}
		for i := range got {
			if got[i] != first[i] {
				t.Fatalf("run differs at %d: %+v vs %+v", i, got[i], first[i])
			}
		}
	}
}

func TestRoundHalfUp(t *testing.T) {
	tests := []struct {
		in   float64
		want int64
	}{
		{0, 0},
		{0.4, 0},
		{0.5, 1},
		{1.5, 2},
		{2.4999, 2},
		{-0.5, -1},
		{-0.4, 0},
	}
	for _, tt := range tests {
		if got := RoundHalfUp(tt.in); got != tt.want {
			t.Errorf("RoundHalfUp(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
