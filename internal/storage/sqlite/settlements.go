package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/weichenh/splitledger/internal/models"
)

// SaveSettlement persists the report and locks the activity in one
// transaction. Locking is conditional on the activity still being
// unlocked, so settlement cannot run twice: the second attempt fails with
// models.ErrActivityLocked and writes nothing.
func (s *SQLiteStore) SaveSettlement(ctx context.Context, report *models.SettlementReport) error {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	if report.CreatedAt == 0 {
		report.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		"UPDATE activities SET locked = 1, status = ?, settled_at = ? WHERE id = ? AND locked = 0",
		string(models.ActivityCompleted), report.CreatedAt, report.ActivityID,
	)
	if err != nil {
		return fmt.Errorf("failed to lock activity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check activity lock: %w", err)
	}
	if n == 0 {
		// Either already locked or missing; distinguish for the caller.
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM activities WHERE id = ?", report.ActivityID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("activity %s: %w", report.ActivityID, models.ErrNotFound)
		}
		if err != nil {
			return fmt.Errorf("failed to check activity existence: %w", err)
		}
		return models.ErrActivityLocked
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO settlements (id, activity_id, settled_by, created_at) VALUES (?, ?, ?, ?)",
		report.ID, report.ActivityID, report.SettledBy, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	for _, b := range report.Balances {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_balances (settlement_id, user_id, total_paid_cents, total_owed_cents, net_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			report.ID, b.UserID, b.TotalPaidCents, b.TotalOwedCents, b.NetCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement balance: %w", err)
		}
	}

	for i, tr := range report.Transfers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_transfers (settlement_id, seq, from_user_id, to_user_id, amount_cents)
			 VALUES (?, ?, ?, ?, ?)`,
			report.ID, i, tr.FromUserID, tr.ToUserID, tr.AmountCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement transfer: %w", err)
		}
	}

	for _, m := range report.Mismatches {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO settlement_mismatches (settlement_id, expense_id, expected_cents, actual_cents)
			 VALUES (?, ?, ?, ?)`,
			report.ID, m.ExpenseID, m.ExpectedCents, m.ActualCents,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement mismatch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement retrieves the stored report for an activity.
func (s *SQLiteStore) GetSettlement(ctx context.Context, activityID string) (*models.SettlementReport, error) {
	report := &models.SettlementReport{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, activity_id, settled_by, created_at FROM settlements WHERE activity_id = ?",
		activityID,
	).Scan(&report.ID, &report.ActivityID, &report.SettledBy, &report.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("settlement for activity %s: %w", activityID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id, total_paid_cents, total_owed_cents, net_cents
		 FROM settlement_balances WHERE settlement_id = ? ORDER BY user_id`,
		report.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement balances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b models.ParticipantBalance
		if err := rows.Scan(&b.UserID, &b.TotalPaidCents, &b.TotalOwedCents, &b.NetCents); err != nil {
			return nil, fmt.Errorf("failed to scan settlement balance: %w", err)
		}
		report.Balances = append(report.Balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement balances: %w", err)
	}

	trRows, err := s.db.QueryContext(ctx,
		`SELECT from_user_id, to_user_id, amount_cents
		 FROM settlement_transfers WHERE settlement_id = ? ORDER BY seq`,
		report.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement transfers: %w", err)
	}
	defer trRows.Close()
	for trRows.Next() {
		var tr models.Transfer
		if err := trRows.Scan(&tr.FromUserID, &tr.ToUserID, &tr.AmountCents); err != nil {
			return nil, fmt.Errorf("failed to scan settlement transfer: %w", err)
		}
		report.Transfers = append(report.Transfers, tr)
	}
	if err := trRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement transfers: %w", err)
	}

	mRows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, expected_cents, actual_cents
		 FROM settlement_mismatches WHERE settlement_id = ? ORDER BY expense_id`,
		report.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement mismatches: %w", err)
	}
	defer mRows.Close()
	for mRows.Next() {
		var m models.SplitMismatch
		if err := mRows.Scan(&m.ExpenseID, &m.ExpectedCents, &m.ActualCents); err != nil {
			return nil, fmt.Errorf("failed to scan settlement mismatch: %w", err)
		}
		report.Mismatches = append(report.Mismatches, m)
	}
	if err := mRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement mismatches: %w", err)
	}

	return report, nil
}

// AppendEvent persists one activity log entry.
func (s *SQLiteStore) AppendEvent(ctx context.Context, evt *models.ActivityEvent) error {
	if evt.ID == "" {
		evt.ID = uuid.New().String()
	}
	if evt.CreatedAt == 0 {
		evt.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activity_events (id, activity_id, action, description, operator_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		evt.ID, evt.ActivityID, string(evt.Action), evt.Description, evt.OperatorID, evt.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity event: %w", err)
	}
	return nil
}

// ListEventsByActivity returns an activity's log entries, newest first.
func (s *SQLiteStore) ListEventsByActivity(ctx context.Context, activityID string) ([]*models.ActivityEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity_id, action, description, operator_id, created_at
		 FROM activity_events WHERE activity_id = ? ORDER BY created_at DESC, id`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity events: %w", err)
	}
	defer rows.Close()

	var events []*models.ActivityEvent
	for rows.Next() {
		evt := &models.ActivityEvent{}
		var action string
		if err := rows.Scan(&evt.ID, &evt.ActivityID, &action, &evt.Description, &evt.OperatorID, &evt.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		evt.Action = models.ActionType(action)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity events: %w", err)
	}
	return events, nil
}
