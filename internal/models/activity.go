package models

// ActivityStatus is the lifecycle state of an activity.
type ActivityStatus string

const (
	ActivityActive    ActivityStatus = "ACTIVE"
	ActivityCompleted ActivityStatus = "COMPLETED"
	ActivityCancelled ActivityStatus = "CANCELLED"
)

// Activity is a bounded event under which shared expenses are recorded.
//
// Once Locked is true no expense or split belonging to the activity may be
// created, edited, or deleted. There is no transition back: correcting a
// settled activity means creating a new one.
type Activity struct {
	// ID is the unique identifier for the activity (UUID format).
	ID string

	// Name is the display name of the activity.
	Name string

	// Description is an optional free-form description.
	Description string

	Status ActivityStatus

	// Locked is set together with Status=COMPLETED when the activity is
	// settled. Mutation checks read Locked, not Status.
	Locked bool

	// StartDate and EndDate bound the activity (Unix seconds).
	StartDate int64
	EndDate   int64

	// SettledAt is the Unix timestamp of settlement, zero if unsettled.
	SettledAt int64

	// CreatedBy is the user ID of the creator.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the activity was created.
	CreatedAt int64
}

// Mutable reports whether expenses and splits under the activity may still
// be changed.
func (a *Activity) Mutable() bool {
	return !a.Locked
}

// JoinPolicy decides which of an activity's expenses a participant is
// liable for, relative to their join time.
type JoinPolicy string

const (
	// JoinFullSplit makes the participant liable for every expense of the
	// activity, including ones recorded before they joined.
	JoinFullSplit JoinPolicy = "FULL_SPLIT"

	// JoinNoSplit makes the participant liable only for expenses recorded
	// at or after their join time.
	JoinNoSplit JoinPolicy = "NO_SPLIT"

	// JoinPartialSplit makes the participant liable for an explicitly
	// enumerated subset of pre-existing expenses plus everything recorded
	// at or after their join time. The subset is fixed at join time.
	JoinPartialSplit JoinPolicy = "PARTIAL_SPLIT"
)

// Valid reports whether p is a known join policy.
func (p JoinPolicy) Valid() bool {
	switch p {
	case JoinFullSplit, JoinNoSplit, JoinPartialSplit:
		return true
	}
	return false
}

// Participant is one user's membership record within one activity.
type Participant struct {
	// ID is the unique identifier for the membership row (UUID format).
	ID string

	// ActivityID is the activity this membership belongs to.
	ActivityID string

	// UserID references the user.
	UserID string

	// JoinedAt is the Unix timestamp when the user joined the activity.
	JoinedAt int64

	JoinPolicy JoinPolicy

	// Active is false once the participant leaves. Historical split rows
	// referencing them are retained; only future expenses stop including
	// them.
	Active bool

	// PartialExpenseIDs lists the pre-join expenses a PARTIAL_SPLIT
	// participant opted into. Empty for other policies.
	PartialExpenseIDs []string
}
