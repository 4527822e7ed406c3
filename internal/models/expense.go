package models

// ExpenseKind distinguishes money going out from money coming in.
type ExpenseKind string

const (
	KindExpense ExpenseKind = "EXPENSE"
	KindIncome  ExpenseKind = "INCOME"
)

// Expense is a single money record. The sign of Amount encodes the kind:
// negative for expenses, positive for income. That is a data-entry
// convention only; split math always works on the absolute value, and
// income rows are never split.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// ActivityID is the owning activity, empty for standalone records.
	// Only expenses attached to an activity participate in splitting.
	ActivityID string

	// PaidBy is the user ID of whoever fronted the money.
	PaidBy string

	// Amount in cents. Negative = expense, positive = income.
	Amount int64

	// Date is the Unix timestamp the expense occurred. Join-policy
	// liability compares against this, not CreatedAt.
	Date int64

	Description string

	// CreatedAt is the Unix timestamp the record was entered.
	CreatedAt int64
}

// Kind derives the record kind from the amount sign.
func (e *Expense) Kind() ExpenseKind {
	if e.Amount > 0 {
		return KindIncome
	}
	return KindExpense
}

// AbsAmount returns the unsigned amount in cents, the value split math
// operates on.
func (e *Expense) AbsAmount() int64 {
	if e.Amount < 0 {
		return -e.Amount
	}
	return e.Amount
}

// Splittable reports whether split rows may exist for this expense.
func (e *Expense) Splittable() bool {
	return e.ActivityID != "" && e.Kind() == KindExpense
}

// SplitType selects the strategy used to divide an expense.
type SplitType string

const (
	// SplitAverage divides the amount equally over all directives.
	SplitAverage SplitType = "AVERAGE"
	// SplitRatio divides the amount proportionally to directive weights.
	SplitRatio SplitType = "RATIO"
	// SplitFixed takes each directive's value verbatim as cents.
	SplitFixed SplitType = "FIXED"
	// SplitSelective averages over the subset of directives with value > 0.
	SplitSelective SplitType = "SELECTIVE"
)

// Valid reports whether t is a known split type.
func (t SplitType) Valid() bool {
	switch t {
	case SplitAverage, SplitRatio, SplitFixed, SplitSelective:
		return true
	}
	return false
}

// ExpenseSplit is one participant's computed share of one expense.
//
// Rows are created when an expense is entered (auto AVERAGE split over the
// eligible participants), regenerated when membership or strategy changes,
// and become permanently read-only once the owning activity locks.
type ExpenseSplit struct {
	// ID is the unique identifier for the split row (UUID format).
	ID string

	ExpenseID string

	// UserID is the participant's user this share belongs to.
	UserID string

	SplitType SplitType

	// SplitValue's meaning depends on SplitType: the equal fraction for
	// AVERAGE, the weight for RATIO, the amount in cents for FIXED, and a
	// participation flag for SELECTIVE.
	SplitValue float64

	// CalculatedAmount is the owed share in cents.
	CalculatedAmount int64

	// IsAdjusted is true when a human overrode the auto-computed value.
	// Adjustments are ephemeral: a regeneration without matching
	// directives discards them.
	IsAdjusted bool

	// AdjustedBy is the user ID of the adjuster, empty when IsAdjusted is
	// false.
	AdjustedBy string

	// AdjustedAt is the Unix timestamp of the adjustment, zero otherwise.
	AdjustedAt int64

	CreatedAt int64
}
