package models

// ParticipantBalance is one participant's net position at settlement.
type ParticipantBalance struct {
	// UserID identifies the participant's user.
	UserID string

	// TotalPaidCents is the sum of expense amounts this user fronted.
	TotalPaidCents int64

	// TotalOwedCents is the sum of this user's split shares.
	TotalOwedCents int64

	// NetCents = TotalPaidCents - TotalOwedCents.
	// Positive = the group owes them money, negative = they owe the group.
	NetCents int64
}

// Transfer is a suggested payment that helps clear the activity's debts.
type Transfer struct {
	// FromUserID owes the money.
	FromUserID string

	// ToUserID is owed the money.
	ToUserID string

	// AmountCents is the suggested payment amount.
	AmountCents int64
}

// SplitMismatch flags an expense whose split rows do not sum to its amount.
// FIXED splits are allowed to leave a remainder, so this is a reportable
// condition rather than an error; settlement surfaces it instead of
// silently netting it away.
type SplitMismatch struct {
	ExpenseID string

	// ExpectedCents is the expense's absolute amount.
	ExpectedCents int64

	// ActualCents is the sum of the expense's split shares.
	ActualCents int64
}

// SettlementReport is the terminal aggregation of an activity's splits.
// Producing one locks the activity.
type SettlementReport struct {
	// ID is the unique identifier for the report (UUID format).
	ID string

	ActivityID string

	Balances []ParticipantBalance

	// Transfers is a minimized set of payments settling the balances.
	Transfers []Transfer

	// Mismatches lists expenses whose splits do not sum to their amount
	// beyond the per-split tolerance.
	Mismatches []SplitMismatch

	// SettledBy is the user ID that ran the settlement.
	SettledBy string

	// CreatedAt is the Unix timestamp the settlement ran.
	CreatedAt int64
}
