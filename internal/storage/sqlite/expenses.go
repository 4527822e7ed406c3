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

// CreateExpense persists a new expense, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	if e.Date == 0 {
		e.Date = e.CreatedAt
	}

	var activityID any
	if e.ActivityID != "" {
		activityID = e.ActivityID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO expenses (id, activity_id, paid_by, amount_cents, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, activityID, e.PaidBy, e.Amount, e.Date, e.Description, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	e := &models.Expense{}
	var activityID sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT id, activity_id, paid_by, amount_cents, date, description, created_at
		 FROM expenses WHERE id = ?`,
		expenseID,
	).Scan(&e.ID, &activityID, &e.PaidBy, &e.Amount, &e.Date, &e.Description, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %s: %w", expenseID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	if activityID.Valid {
		e.ActivityID = activityID.String
	}
	return e, nil
}

// ListExpensesByActivity returns an activity's expenses ordered by date
// then ID.
func (s *SQLiteStore) ListExpensesByActivity(ctx context.Context, activityID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity_id, paid_by, amount_cents, date, description, created_at
		 FROM expenses WHERE activity_id = ? ORDER BY date, id`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		e := &models.Expense{}
		var aid sql.NullString
		if err := rows.Scan(&e.ID, &aid, &e.PaidBy, &e.Amount, &e.Date, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		if aid.Valid {
			e.ActivityID = aid.String
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

// ReplaceSplits atomically deletes an expense's split rows and inserts
// the given ones.
func (s *SQLiteStore) ReplaceSplits(ctx context.Context, expenseID string, splits []*models.ExpenseSplit) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expenseID); err != nil {
		return fmt.Errorf("failed to delete splits: %w", err)
	}

	now := time.Now().Unix()
	for _, split := range splits {
		if split.ID == "" {
			split.ID = uuid.New().String()
		}
		if split.CreatedAt == 0 {
			split.CreatedAt = now
		}
		split.ExpenseID = expenseID

		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits
			 (id, expense_id, user_id, split_type, split_value, calculated_amount_cents, is_adjusted, adjusted_by, adjusted_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			split.ID, split.ExpenseID, split.UserID, string(split.SplitType), split.SplitValue,
			split.CalculatedAmount, boolToInt(split.IsAdjusted), split.AdjustedBy, split.AdjustedAt, split.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListSplitsByExpense returns an expense's split rows ordered by user.
func (s *SQLiteStore) ListSplitsByExpense(ctx context.Context, expenseID string) ([]*models.ExpenseSplit, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, expense_id, user_id, split_type, split_value, calculated_amount_cents, is_adjusted, adjusted_by, adjusted_at, created_at
		 FROM expense_splits WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list splits: %w", err)
	}
	defer rows.Close()

	var splits []*models.ExpenseSplit
	for rows.Next() {
		split := &models.ExpenseSplit{}
		var splitType string
		var adjusted int
		if err := rows.Scan(&split.ID, &split.ExpenseID, &split.UserID, &splitType, &split.SplitValue,
			&split.CalculatedAmount, &adjusted, &split.AdjustedBy, &split.AdjustedAt, &split.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan split: %w", err)
		}
		split.SplitType = models.SplitType(splitType)
		split.IsAdjusted = adjusted != 0
		splits = append(splits, split)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate splits: %w", err)
	}
	return splits, nil
}
