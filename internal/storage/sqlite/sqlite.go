// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/weichenh/splitledger/internal/models"
	"github.com/weichenh/splitledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser persists a new user, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)",
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *SQLiteStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?",
		userID,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", userID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?",
		email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", email, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// CreateActivity persists a new activity, assigning ID and CreatedAt.
func (s *SQLiteStore) CreateActivity(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if activity.CreatedAt == 0 {
		activity.CreatedAt = time.Now().Unix()
	}
	if activity.Status == "" {
		activity.Status = models.ActivityActive
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO activities (id, name, description, status, locked, start_date, end_date, settled_at, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID, activity.Name, activity.Description, string(activity.Status), boolToInt(activity.Locked),
		activity.StartDate, activity.EndDate, activity.SettledAt, activity.CreatedBy, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}
	return nil
}

// GetActivity retrieves an activity by ID.
func (s *SQLiteStore) GetActivity(ctx context.Context, activityID string) (*models.Activity, error) {
	activity := &models.Activity{}
	var status string
	var locked int
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, status, locked, start_date, end_date, settled_at, created_by, created_at
		 FROM activities WHERE id = ?`,
		activityID,
	).Scan(&activity.ID, &activity.Name, &activity.Description, &status, &locked,
		&activity.StartDate, &activity.EndDate, &activity.SettledAt, &activity.CreatedBy, &activity.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("activity %s: %w", activityID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	activity.Status = models.ActivityStatus(status)
	activity.Locked = locked != 0
	return activity, nil
}

// AddParticipant persists a membership row with its partial-split
// expense enumeration.
func (s *SQLiteStore) AddParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.JoinedAt == 0 {
		p.JoinedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO participants (id, activity_id, user_id, joined_at, join_policy, active) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.ActivityID, p.UserID, p.JoinedAt, string(p.JoinPolicy), boolToInt(p.Active),
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}

	for _, expenseID := range p.PartialExpenseIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO participant_partial_expenses (participant_id, expense_id) VALUES (?, ?)",
			p.ID, expenseID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert partial expense: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListParticipants returns all membership rows of an activity ordered by
// join time.
func (s *SQLiteStore) ListParticipants(ctx context.Context, activityID string) ([]*models.Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, activity_id, user_id, joined_at, join_policy, active
		 FROM participants WHERE activity_id = ? ORDER BY joined_at, user_id`,
		activityID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	for _, p := range participants {
		if p.JoinPolicy == models.JoinPartialSplit {
			if err := s.loadPartialExpenses(ctx, p); err != nil {
				return nil, err
			}
		}
	}
	return participants, nil
}

// GetParticipant retrieves one membership row by activity and user.
func (s *SQLiteStore) GetParticipant(ctx context.Context, activityID, userID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, activity_id, user_id, joined_at, join_policy, active
		 FROM participants WHERE activity_id = ? AND user_id = ?`,
		activityID, userID,
	)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("participant %s in activity %s: %w", userID, activityID, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if p.JoinPolicy == models.JoinPartialSplit {
		if err := s.loadPartialExpenses(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// DeactivateParticipant flips a membership to inactive.
func (s *SQLiteStore) DeactivateParticipant(ctx context.Context, activityID, userID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET active = 0 WHERE activity_id = ? AND user_id = ?",
		activityID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate participant: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivation: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("participant %s in activity %s: %w", userID, activityID, models.ErrNotFound)
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanParticipant(row scanner) (*models.Participant, error) {
	p := &models.Participant{}
	var policy string
	var active int
	err := row.Scan(&p.ID, &p.ActivityID, &p.UserID, &p.JoinedAt, &policy, &active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}
	p.JoinPolicy = models.JoinPolicy(policy)
	p.Active = active != 0
	return p, nil
}

func (s *SQLiteStore) loadPartialExpenses(ctx context.Context, p *models.Participant) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT expense_id FROM participant_partial_expenses WHERE participant_id = ? ORDER BY expense_id",
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get partial expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var expenseID string
		if err := rows.Scan(&expenseID); err != nil {
			return fmt.Errorf("failed to scan partial expense: %w", err)
		}
		p.PartialExpenseIDs = append(p.PartialExpenseIDs, expenseID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate partial expenses: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
