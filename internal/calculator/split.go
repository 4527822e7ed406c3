// Package calculator implements the pure split and settlement math.
// Functions here are stateless: they take amounts and directives and return
// shares, with no storage or clock access, so results are reproducible.
package calculator

import (
	"math"

	"github.com/weichenh/splitledger/internal/models"
)

// Directive is one participant's split instruction for a single expense.
// Value's meaning depends on the split type: ignored for AVERAGE, a weight
// for RATIO, an amount in cents for FIXED, and a participation flag
// (>0 participates) for SELECTIVE.
type Directive struct {
	UserID string
	Value  float64
}

// Share is one participant's computed slice of an expense.
type Share struct {
	UserID string

	// SplitValue is the directive value the share was computed from. For
	// AVERAGE and SELECTIVE it is the equal fraction 1/n.
	SplitValue float64

	// AmountCents is the owed amount, rounded half-up to the cent.
	AmountCents int64
}

// RoundHalfUp rounds a fractional cent amount to whole cents, half away
// from zero. All split rounding goes through here so every caller agrees
// on the result.
func RoundHalfUp(cents float64) int64 {
	if cents < 0 {
		return -int64(math.Floor(-cents + 0.5))
	}
	return int64(math.Floor(cents + 0.5))
}

// Compute divides totalCents over the directives according to splitType.
//
// Strategy rules:
//
//   - AVERAGE: every participant owes halfUp(total/n). The rounding
//     remainder is not redistributed; a 100.00 bill over 3 people yields
//     3 x 33.33 and the lost cent is a documented tolerance.
//   - RATIO: shares are proportional to weights and distributed by largest
//     remainder, so they always sum exactly to totalCents.
//   - FIXED: each directive's value is the share, verbatim. The sum is not
//     forced to match totalCents; settlement reports any gap.
//   - SELECTIVE: directives with Value > 0 participate; the rest get no
//     share row. The selected subset splits as AVERAGE.
//
// Mixing strategies within one expense is not supported.
func Compute(totalCents int64, splitType models.SplitType, directives []Directive) ([]Share, error) {
	if len(directives) == 0 {
		return nil, &models.InvalidSplitError{Reason: "at least one directive required"}
	}
	for _, d := range directives {
		if d.UserID == "" {
			return nil, &models.InvalidSplitError{Reason: "directive missing user id"}
		}
		if d.Value < 0 {
			return nil, &models.InvalidSplitError{Reason: "negative split value"}
		}
	}

	switch splitType {
	case models.SplitAverage:
		return average(totalCents, directives), nil
	case models.SplitRatio:
		return ratio(totalCents, directives)
	case models.SplitFixed:
		return fixed(directives), nil
	case models.SplitSelective:
		return selective(totalCents, directives)
	default:
		return nil, &models.InvalidSplitError{Reason: "unknown split type " + string(splitType)}
	}
}

func average(totalCents int64, directives []Directive) []Share {
	n := len(directives)
	per := RoundHalfUp(float64(totalCents) / float64(n))
	fraction := 1.0 / float64(n)

	shares := make([]Share, n)
	for i, d := range directives {
		shares[i] = Share{UserID: d.UserID, SplitValue: fraction, AmountCents: per}
	}
	return shares
}

func ratio(totalCents int64, directives []Directive) ([]Share, error) {
	var totalWeight float64
	for _, d := range directives {
		totalWeight += d.Value
	}
	if totalWeight == 0 {
		return nil, &models.InvalidSplitError{Reason: "ratio weights sum to zero"}
	}

	// Largest-remainder distribution: floor every share, then hand the
	// leftover cents to the largest fractional parts. Ties break by
	// directive order, which keeps the result deterministic.
	shares := make([]Share, len(directives))
	remainders := make([]float64, len(directives))
	var floored int64
	for i, d := range directives {
		exact := float64(totalCents) * d.Value / totalWeight
		base := int64(math.Floor(exact))
		shares[i] = Share{UserID: d.UserID, SplitValue: d.Value, AmountCents: base}
		remainders[i] = exact - float64(base)
		floored += base
	}

	leftover := totalCents - floored
	for leftover > 0 {
		best := -1
		for i, r := range remainders {
			if best == -1 || r > remainders[best] {
				best = i
			}
		}
		shares[best].AmountCents++
		remainders[best] = -1
		leftover--
	}
	return shares, nil
}

func fixed(directives []Directive) []Share {
	shares := make([]Share, len(directives))
	for i, d := range directives {
		shares[i] = Share{
			UserID:      d.UserID,
			SplitValue:  d.Value,
			AmountCents: RoundHalfUp(d.Value),
		}
	}
	return shares
}

func selective(totalCents int64, directives []Directive) ([]Share, error) {
	var selected []Directive
	for _, d := range directives {
		if d.Value > 0 {
			selected = append(selected, d)
		}
	}
	if len(selected) == 0 {
		return nil, &models.InvalidSplitError{Reason: "selective split selects no participants"}
	}
	return average(totalCents, selected), nil
}

// SumShares adds up the share amounts, used by settlement mismatch checks.
func SumShares(shares []Share) int64 {
	var sum int64
	for _, s := range shares {
		sum += s.AmountCents
	}
	return sum
}
