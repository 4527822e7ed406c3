package models

// ActionType classifies activity log entries.
type ActionType string

const (
	ActionExpenseAdd    ActionType = "EXPENSE_ADD"
	ActionExpenseEdit   ActionType = "EXPENSE_EDIT"
	ActionExpenseDelete ActionType = "EXPENSE_DELETE"
	ActionUserJoin      ActionType = "USER_JOIN"
	ActionUserLeave     ActionType = "USER_LEAVE"
	ActionSplitAdjust   ActionType = "SPLIT_ADJUST"
	ActionSettlement    ActionType = "SETTLEMENT"
)

// ActivityEvent is one append-only audit log entry. Entries are written
// asynchronously and never updated or deleted.
type ActivityEvent struct {
	// ID is the unique identifier for the entry (UUID format).
	ID string

	ActivityID string

	Action ActionType

	// Description is a human-readable summary of what happened.
	Description string

	// OperatorID is the user who performed the action, empty for system
	// actions.
	OperatorID string

	// CreatedAt is the Unix timestamp of the action.
	CreatedAt int64
}
