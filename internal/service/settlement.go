package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/weichenh/splitledger/internal/calculator"
	"github.com/weichenh/splitledger/internal/eventlog"
	"github.com/weichenh/splitledger/internal/models"
	"github.com/weichenh/splitledger/internal/storage"
)

// SettlementEngine converts an activity's expense and split history into
// net balances and locks the activity. Settlement is one-shot: a settled
// activity rejects any further mutation, including a second settlement.
type SettlementEngine struct {
	store   storage.Store
	log     *eventlog.Worker
	locks   *ActivityLocks
	manager *SplitManager
}

// NewSettlementEngine creates a SettlementEngine sharing the manager's
// store and activity locks.
func NewSettlementEngine(store storage.Store, log *eventlog.Worker, locks *ActivityLocks, manager *SplitManager) *SettlementEngine {
	return &SettlementEngine{store: store, log: log, locks: locks, manager: manager}
}

// Settle aggregates every EXPENSE-kind expense of the activity into net
// per-participant balances, records per-expense split mismatches, and
// locks the activity atomically with the report write.
//
// Expenses with no split rows at all get default AVERAGE splits
// generated first, so nothing is silently excluded from the books.
func (s *SettlementEngine) Settle(ctx context.Context, activityID, settledBy string) (*models.SettlementReport, error) {
	s.locks.Lock(activityID)
	defer s.locks.Unlock(activityID)

	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	if !activity.Mutable() {
		return nil, models.ErrActivityLocked
	}

	expenses, err := s.store.ListExpensesByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	var forBalance []calculator.ExpenseForBalance
	for _, e := range expenses {
		if !e.Splittable() {
			// Income rows never enter settlement.
			continue
		}

		splits, err := s.store.ListSplitsByExpense(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		if len(splits) == 0 {
			rebuilt, err := s.manager.regenerate(ctx, e, models.SplitAverage, nil, settledBy)
			if err != nil {
				return nil, fmt.Errorf("failed to backfill splits for expense %s: %w", e.ID, err)
			}
			splits = rebuilt
		}

		shares := make([]calculator.Share, len(splits))
		for i, split := range splits {
			shares[i] = calculator.Share{
				UserID:      split.UserID,
				SplitValue:  split.SplitValue,
				AmountCents: split.CalculatedAmount,
			}
		}
		forBalance = append(forBalance, calculator.ExpenseForBalance{
			ExpenseID:   e.ID,
			PaidBy:      e.PaidBy,
			AmountCents: e.AbsAmount(),
			Splits:      shares,
		})
	}

	balances := calculator.ComputeBalances(forBalance)
	report := &models.SettlementReport{
		ActivityID: activityID,
		Balances:   balances,
		Transfers:  calculator.SimplifyDebts(balances),
		Mismatches: calculator.DetectMismatches(forBalance),
		SettledBy:  settledBy,
	}

	if err := s.store.SaveSettlement(ctx, report); err != nil {
		return nil, err
	}

	s.record(activityID, settledBy, len(report.Mismatches))
	slog.Info("activity settled",
		"activity_id", activityID,
		"expenses", len(forBalance),
		"participants", len(balances),
		"mismatches", len(report.Mismatches),
	)
	return report, nil
}

// Report returns the stored settlement report for an activity.
func (s *SettlementEngine) Report(ctx context.Context, activityID string) (*models.SettlementReport, error) {
	return s.store.GetSettlement(ctx, activityID)
}

func (s *SettlementEngine) record(activityID, settledBy string, mismatches int) {
	if s.log == nil {
		return
	}
	desc := "activity settled"
	if mismatches > 0 {
		desc = fmt.Sprintf("activity settled with %d split mismatch(es)", mismatches)
	}
	s.log.Record(activityID, models.ActionSettlement, settledBy, desc)
}
