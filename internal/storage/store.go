// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/weichenh/splitledger/internal/models"
)

// Store defines the persistence operations for the activity graph.
// The abstraction allows swapping storage backends without changing the
// service layer; the bundled implementation is SQLite.
type Store interface {
	// CreateUser persists a new user. The ID and CreatedAt fields are
	// populated by the store.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUser retrieves a user by ID. Returns models.ErrNotFound if absent.
	GetUser(ctx context.Context, userID string) (*models.User, error)

	// GetUserByEmail retrieves a user by email for login.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// CreateActivity persists a new activity (ID, CreatedAt assigned).
	CreateActivity(ctx context.Context, activity *models.Activity) error

	// GetActivity retrieves an activity by ID.
	GetActivity(ctx context.Context, activityID string) (*models.Activity, error)

	// AddParticipant persists a membership row, including any
	// PARTIAL_SPLIT expense enumeration.
	AddParticipant(ctx context.Context, p *models.Participant) error

	// ListParticipants returns all membership rows of an activity, active
	// and left alike, ordered by join time.
	ListParticipants(ctx context.Context, activityID string) ([]*models.Participant, error)

	// GetParticipant retrieves one membership row by activity and user.
	GetParticipant(ctx context.Context, activityID, userID string) (*models.Participant, error)

	// DeactivateParticipant flips a membership to inactive. Split rows
	// referencing the participant are untouched.
	DeactivateParticipant(ctx context.Context, activityID, userID string) error

	// CreateExpense persists a new expense (ID, CreatedAt assigned).
	CreateExpense(ctx context.Context, e *models.Expense) error

	// GetExpense retrieves an expense by ID.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// ListExpensesByActivity returns an activity's expenses ordered by
	// date then ID.
	ListExpensesByActivity(ctx context.Context, activityID string) ([]*models.Expense, error)

	// ReplaceSplits atomically deletes an expense's split rows and inserts
	// the given ones.
	ReplaceSplits(ctx context.Context, expenseID string, splits []*models.ExpenseSplit) error

	// ListSplitsByExpense returns an expense's split rows ordered by user.
	ListSplitsByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error)

	// SaveSettlement persists the report and locks the activity in one
	// transaction. Fails with models.ErrActivityLocked when the activity
	// is already locked, leaving the stored state untouched.
	SaveSettlement(ctx context.Context, report *models.SettlementReport) error

	// GetSettlement retrieves the stored report for an activity.
	GetSettlement(ctx context.Context, activityID string) (*models.SettlementReport, error)

	// AppendEvent persists one activity log entry.
	AppendEvent(ctx context.Context, evt *models.ActivityEvent) error

	// ListEventsByActivity returns an activity's log entries, newest first.
	ListEventsByActivity(ctx context.Context, activityID string) ([]*models.ActivityEvent, error)

	// Close releases any resources held by the store.
	Close() error
}
