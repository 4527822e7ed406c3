// Package service orchestrates split generation and settlement over the
// storage layer. The pure math lives in internal/calculator and
// internal/ledger; this package owns the regeneration protocol, the
// per-activity write serialization, and the audit trail.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/weichenh/splitledger/internal/calculator"
	"github.com/weichenh/splitledger/internal/eventlog"
	"github.com/weichenh/splitledger/internal/ledger"
	"github.com/weichenh/splitledger/internal/models"
	"github.com/weichenh/splitledger/internal/storage"
)

// SplitManager keeps ExpenseSplit rows consistent with activity
// membership and the chosen split strategy.
type SplitManager struct {
	store storage.Store
	log   *eventlog.Worker
	locks *ActivityLocks
}

// NewSplitManager creates a SplitManager. The eventlog worker may be nil
// (audit logging disabled, used in some tests); locks must be shared with
// the SettlementEngine operating on the same store.
func NewSplitManager(store storage.Store, log *eventlog.Worker, locks *ActivityLocks) *SplitManager {
	return &SplitManager{store: store, log: log, locks: locks}
}

func (m *SplitManager) record(activityID string, action models.ActionType, operatorID, description string) {
	if m.log != nil {
		m.log.Record(activityID, action, operatorID, description)
	}
}

// CreateActivity persists a new activity and enrolls its creator as a
// FULL_SPLIT participant.
func (m *SplitManager) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.CreatedBy == "" {
		return &models.InvalidSplitError{Reason: "activity requires a creator"}
	}
	if err := m.store.CreateActivity(ctx, activity); err != nil {
		return err
	}

	creator := &models.Participant{
		ActivityID: activity.ID,
		UserID:     activity.CreatedBy,
		JoinedAt:   activity.CreatedAt,
		JoinPolicy: models.JoinFullSplit,
		Active:     true,
	}
	if err := m.store.AddParticipant(ctx, creator); err != nil {
		return fmt.Errorf("failed to enroll creator: %w", err)
	}

	slog.Info("activity created", "activity_id", activity.ID, "created_by", activity.CreatedBy)
	return nil
}

// Join adds a user to an activity under the given policy. For
// PARTIAL_SPLIT the caller enumerates the pre-existing expenses the
// participant opts into; the list is fixed at join time. Existing split
// rows are not regenerated here; the new participant starts appearing in
// splits the next time an expense is created or regenerated.
func (m *SplitManager) Join(ctx context.Context, activityID, userID string, policy models.JoinPolicy, partialExpenseIDs []string) (*models.Participant, error) {
	if !policy.Valid() {
		return nil, &models.InvalidSplitError{Reason: "unknown join policy " + string(policy)}
	}
	if policy != models.JoinPartialSplit && len(partialExpenseIDs) > 0 {
		return nil, &models.InvalidSplitError{Reason: "expense enumeration only valid for PARTIAL_SPLIT"}
	}

	m.locks.Lock(activityID)
	defer m.locks.Unlock(activityID)

	activity, err := m.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Mutable() {
		return nil, models.ErrActivityLocked
	}

	existing, err := m.store.GetParticipant(ctx, activityID, userID)
	if err == nil {
		if existing.Active {
			return nil, &models.InvalidSplitError{Reason: "user is already a participant"}
		}
		return nil, &models.InvalidSplitError{Reason: "user previously left the activity"}
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	// Enumerated expenses must exist and belong to this activity.
	for _, expenseID := range partialExpenseIDs {
		e, err := m.store.GetExpense(ctx, expenseID)
		if err != nil {
			return nil, err
		}
		if e.ActivityID != activityID {
			return nil, &models.InvalidSplitError{Reason: "expense " + expenseID + " does not belong to activity"}
		}
	}

	p := &models.Participant{
		ActivityID:        activityID,
		UserID:            userID,
		JoinedAt:          time.Now().Unix(),
		JoinPolicy:        policy,
		Active:            true,
		PartialExpenseIDs: partialExpenseIDs,
	}
	if err := m.store.AddParticipant(ctx, p); err != nil {
		return nil, err
	}

	m.record(activityID, models.ActionUserJoin, userID, fmt.Sprintf("user joined with policy %s", policy))
	slog.Info("participant joined", "activity_id", activityID, "user_id", userID, "policy", policy)
	return p, nil
}

// Leave deactivates a membership. Historical split rows referencing the
// participant are retained as a liability snapshot; only future expenses
// stop including them.
func (m *SplitManager) Leave(ctx context.Context, activityID, userID string) error {
	m.locks.Lock(activityID)
	defer m.locks.Unlock(activityID)

	activity, err := m.store.GetActivity(ctx, activityID)
	if err != nil {
		return err
	}
	if !activity.Mutable() {
		return models.ErrActivityLocked
	}

	if err := m.store.DeactivateParticipant(ctx, activityID, userID); err != nil {
		return err
	}

	m.record(activityID, models.ActionUserLeave, userID, "user left the activity")
	slog.Info("participant left", "activity_id", activityID, "user_id", userID)
	return nil
}

// AddExpense persists an expense and, when it is splittable, creates the
// default AVERAGE splits over the currently eligible participants.
func (m *SplitManager) AddExpense(ctx context.Context, e *models.Expense) ([]*models.ExpenseSplit, error) {
	if e.Amount == 0 {
		return nil, &models.InvalidSplitError{Reason: "expense amount cannot be zero"}
	}

	if e.ActivityID == "" {
		// Standalone record, no activity graph involved.
		return nil, m.store.CreateExpense(ctx, e)
	}

	m.locks.Lock(e.ActivityID)
	defer m.locks.Unlock(e.ActivityID)

	activity, err := m.store.GetActivity(ctx, e.ActivityID)
	if err != nil {
		return nil, err
	}
	if !activity.Mutable() {
		return nil, models.ErrActivityLocked
	}

	if err := m.store.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	var splits []*models.ExpenseSplit
	if e.Splittable() {
		splits, err = m.regenerate(ctx, e, models.SplitAverage, nil, "")
		if err != nil {
			return nil, err
		}
	}

	m.record(e.ActivityID, models.ActionExpenseAdd, e.PaidBy,
		fmt.Sprintf("expense of %d cents recorded", e.AbsAmount()))
	return splits, nil
}

// RegenerateSplits rebuilds an expense's split rows under the given
// strategy. With nil directives it defaults to AVERAGE over the eligible
// participant set. Regeneration is destructive: previously adjusted rows
// survive only if the caller re-passes matching directives.
func (m *SplitManager) RegenerateSplits(ctx context.Context, activityID, expenseID string, splitType models.SplitType, directives []calculator.Directive, operatorID string) ([]*models.ExpenseSplit, error) {
	m.locks.Lock(activityID)
	defer m.locks.Unlock(activityID)

	activity, err := m.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Mutable() {
		return nil, models.ErrActivityLocked
	}

	e, err := m.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.ActivityID != activityID {
		return nil, &models.InvalidSplitError{Reason: "expense does not belong to activity"}
	}
	if !e.Splittable() {
		return nil, &models.InvalidSplitError{Reason: "only activity expenses can be split"}
	}

	splits, err := m.regenerate(ctx, e, splitType, directives, operatorID)
	if err != nil {
		return nil, err
	}

	m.record(activityID, models.ActionSplitAdjust, operatorID,
		fmt.Sprintf("splits regenerated as %s over %d participants", splits[0].SplitType, len(splits)))
	return splits, nil
}

// regenerate does the unlocked regeneration work. Callers must hold the
// activity lock and have verified the activity is mutable and the
// expense splittable.
func (m *SplitManager) regenerate(ctx context.Context, e *models.Expense, splitType models.SplitType, directives []calculator.Directive, operatorID string) ([]*models.ExpenseSplit, error) {
	participants, err := m.store.ListParticipants(ctx, e.ActivityID)
	if err != nil {
		return nil, err
	}
	eligible := ledger.EligibleParticipants(participants, e)

	if directives == nil {
		// Auto-split: AVERAGE over everyone currently liable.
		splitType = models.SplitAverage
		if len(eligible) == 0 {
			return nil, &models.InvalidSplitError{Reason: "no eligible participants to split over"}
		}
		for _, p := range eligible {
			directives = append(directives, calculator.Directive{UserID: p.UserID})
		}
	} else {
		eligibleSet := make(map[string]bool, len(eligible))
		for _, p := range eligible {
			eligibleSet[p.UserID] = true
		}
		for _, d := range directives {
			if !eligibleSet[d.UserID] {
				return nil, &models.ParticipantNotEligibleError{UserID: d.UserID, ExpenseID: e.ID}
			}
		}
	}

	shares, err := calculator.Compute(e.AbsAmount(), splitType, directives)
	if err != nil {
		return nil, err
	}

	splits := sharesToSplits(e.ID, splitType, shares)
	if err := m.store.ReplaceSplits(ctx, e.ID, splits); err != nil {
		return nil, err
	}
	return splits, nil
}

// AdjustSplits applies caller-supplied per-participant overrides (FIXED
// or RATIO), marking the rows adjusted. Eligibility is deliberately not
// re-derived: the caller is assumed to have already filtered to a valid
// participant set.
func (m *SplitManager) AdjustSplits(ctx context.Context, activityID, expenseID string, splitType models.SplitType, directives []calculator.Directive, operatorID string) ([]*models.ExpenseSplit, error) {
	if splitType != models.SplitFixed && splitType != models.SplitRatio {
		return nil, &models.InvalidSplitError{Reason: "adjustment supports FIXED or RATIO only"}
	}

	m.locks.Lock(activityID)
	defer m.locks.Unlock(activityID)

	activity, err := m.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Mutable() {
		return nil, models.ErrActivityLocked
	}

	e, err := m.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	if e.ActivityID != activityID {
		return nil, &models.InvalidSplitError{Reason: "expense does not belong to activity"}
	}
	if !e.Splittable() {
		return nil, &models.InvalidSplitError{Reason: "only activity expenses can be split"}
	}

	shares, err := calculator.Compute(e.AbsAmount(), splitType, directives)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	splits := sharesToSplits(e.ID, splitType, shares)
	for _, s := range splits {
		s.IsAdjusted = true
		s.AdjustedBy = operatorID
		s.AdjustedAt = now
	}
	if err := m.store.ReplaceSplits(ctx, e.ID, splits); err != nil {
		return nil, err
	}

	m.record(activityID, models.ActionSplitAdjust, operatorID,
		fmt.Sprintf("splits manually adjusted as %s", splitType))
	return splits, nil
}

// Splits returns the current split rows of an expense.
func (m *SplitManager) Splits(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error) {
	return m.store.ListSplitsByExpense(ctx, expenseID)
}

func sharesToSplits(expenseID string, splitType models.SplitType, shares []calculator.Share) []*models.ExpenseSplit {
	splits := make([]*models.ExpenseSplit, len(shares))
	for i, s := range shares {
		splits[i] = &models.ExpenseSplit{
			ExpenseID:        expenseID,
			UserID:           s.UserID,
			SplitType:        splitType,
			SplitValue:       s.SplitValue,
			CalculatedAmount: s.AmountCents,
		}
	}
	return splits
}
