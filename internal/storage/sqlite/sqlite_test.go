package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/weichenh/splitledger/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
		os.Remove(dbPath)
	})
	return store
}

func seedUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: name + "@example.com", PasswordHash: "x"}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", name, err)
	}
	return user
}

func seedActivity(t *testing.T, store *SQLiteStore, createdBy string) *models.Activity {
	t.Helper()
	activity := &models.Activity{
		Name:      "camping trip",
		StartDate: 1000,
		EndDate:   2000,
		CreatedBy: createdBy,
	}
	if err := store.CreateActivity(context.Background(), activity); err != nil {
		t.Fatalf("failed to create activity: %v", err)
	}
	return activity
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice")
	if user.ID == "" || user.CreatedAt == 0 {
		t.Fatalf("store did not assign ID/CreatedAt: %+v", user)
	}

	got, err := store.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Email != "alice@example.com" {
		t.Errorf("email = %s, want alice@example.com", got.Email)
	}

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("ID = %s, want %s", byEmail.ID, user.ID)
	}

	if _, err := store.GetUser(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParticipantLifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	activity := seedActivity(t, store, alice.ID)

	if err := store.AddParticipant(ctx, &models.Participant{
		ActivityID: activity.ID,
		UserID:     alice.ID,
		JoinedAt:   1000,
		JoinPolicy: models.JoinFullSplit,
		Active:     true,
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if err := store.AddParticipant(ctx, &models.Participant{
		ActivityID:        activity.ID,
		UserID:            bob.ID,
		JoinedAt:          1500,
		JoinPolicy:        models.JoinPartialSplit,
		Active:            true,
		PartialExpenseIDs: []string{"e1", "e2"},
	}); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	participants, err := store.ListParticipants(ctx, activity.ID)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	if len(participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(participants))
	}
	if participants[0].UserID != alice.ID {
		t.Errorf("first participant = %s, want alice (ordered by join time)", participants[0].UserID)
	}
	if got := participants[1].PartialExpenseIDs; len(got) != 2 || got[0] != "e1" || got[1] != "e2" {
		t.Errorf("partial expenses = %v, want [e1 e2]", got)
	}

	if err := store.DeactivateParticipant(ctx, activity.ID, bob.ID); err != nil {
		t.Fatalf("DeactivateParticipant failed: %v", err)
	}
	p, err := store.GetParticipant(ctx, activity.ID, bob.ID)
	if err != nil {
		t.Fatalf("GetParticipant failed: %v", err)
	}
	if p.Active {
		t.Error("participant still active after deactivation")
	}

	if err := store.DeactivateParticipant(ctx, activity.ID, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSplitReplaceIsDestructive(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	activity := seedActivity(t, store, alice.ID)
	expense := &models.Expense{
		ActivityID: activity.ID,
		PaidBy:     alice.ID,
		Amount:     -30000,
		Date:       1200,
	}
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	first := []*models.ExpenseSplit{
		{UserID: "u1", SplitType: models.SplitAverage, SplitValue: 0.5, CalculatedAmount: 15000},
		{UserID: "u2", SplitType: models.SplitAverage, SplitValue: 0.5, CalculatedAmount: 15000},
	}
	if err := store.ReplaceSplits(ctx, expense.ID, first); err != nil {
		t.Fatalf("ReplaceSplits failed: %v", err)
	}

	second := []*models.ExpenseSplit{
		{UserID: "u3", SplitType: models.SplitFixed, SplitValue: 30000, CalculatedAmount: 30000, IsAdjusted: true, AdjustedBy: alice.ID},
	}
	if err := store.ReplaceSplits(ctx, expense.ID, second); err != nil {
		t.Fatalf("ReplaceSplits failed: %v", err)
	}

	splits, err := store.ListSplitsByExpense(ctx, expense.ID)
	if err != nil {
		t.Fatalf("ListSplitsByExpense failed: %v", err)
	}
	if len(splits) != 1 {
		t.Fatalf("got %d splits, want 1 (replace must delete old rows)", len(splits))
	}
	s := splits[0]
	if s.UserID != "u3" || !s.IsAdjusted || s.CalculatedAmount != 30000 {
		t.Errorf("unexpected split: %+v", s)
	}
}

func TestSaveSettlementLocksOnce(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	activity := seedActivity(t, store, alice.ID)

	report := &models.SettlementReport{
		ActivityID: activity.ID,
		SettledBy:  alice.ID,
		Balances: []models.ParticipantBalance{
			{UserID: "u1", TotalPaidCents: 30000, TotalOwedCents: 10000, NetCents: 20000},
			{UserID: "u2", TotalPaidCents: 0, TotalOwedCents: 20000, NetCents: -20000},
		},
		Transfers: []models.Transfer{
			{FromUserID: "u2", ToUserID: "u1", AmountCents: 20000},
		},
		Mismatches: []models.SplitMismatch{
			{ExpenseID: "e1", ExpectedCents: 9000, ActualCents: 8000},
		},
	}
	if err := store.SaveSettlement(ctx, report); err != nil {
		t.Fatalf("SaveSettlement failed: %v", err)
	}

	locked, err := store.GetActivity(ctx, activity.ID)
	if err != nil {
		t.Fatalf("GetActivity failed: %v", err)
	}
	if !locked.Locked || locked.Status != models.ActivityCompleted || locked.SettledAt == 0 {
		t.Errorf("activity not locked atomically with report: %+v", locked)
	}

	// Second settlement must fail and leave the first report untouched.
	again := &models.SettlementReport{ActivityID: activity.ID, SettledBy: alice.ID}
	if err := store.SaveSettlement(ctx, again); !errors.Is(err, models.ErrActivityLocked) {
		t.Fatalf("expected ErrActivityLocked, got %v", err)
	}

	stored, err := store.GetSettlement(ctx, activity.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if stored.ID != report.ID {
		t.Errorf("stored report ID = %s, want %s", stored.ID, report.ID)
	}
	if len(stored.Balances) != 2 || len(stored.Transfers) != 1 || len(stored.Mismatches) != 1 {
		t.Errorf("stored report incomplete: %+v", stored)
	}
	if stored.Balances[0].NetCents != 20000 {
		t.Errorf("balance net = %d, want 20000", stored.Balances[0].NetCents)
	}
	if stored.Mismatches[0].ExpectedCents != 9000 || stored.Mismatches[0].ActualCents != 8000 {
		t.Errorf("mismatch = %+v, want expected 9000 actual 8000", stored.Mismatches[0])
	}
}

func TestSaveSettlementMissingActivity(t *testing.T) {
	store := newTestStore(t)
	report := &models.SettlementReport{ActivityID: "missing", SettledBy: "u1"}
	if err := store.SaveSettlement(context.Background(), report); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityEvents(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	activity := seedActivity(t, store, alice.ID)

	events := []*models.ActivityEvent{
		{ActivityID: activity.ID, Action: models.ActionExpenseAdd, Description: "added expense", OperatorID: alice.ID, CreatedAt: 100},
		{ActivityID: activity.ID, Action: models.ActionSettlement, Description: "settled", OperatorID: alice.ID, CreatedAt: 200},
	}
	for _, evt := range events {
		if err := store.AppendEvent(ctx, evt); err != nil {
			t.Fatalf("AppendEvent failed: %v", err)
		}
	}

	got, err := store.ListEventsByActivity(ctx, activity.ID)
	if err != nil {
		t.Fatalf("ListEventsByActivity failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Action != models.ActionSettlement {
		t.Errorf("first event = %s, want SETTLEMENT (newest first)", got[0].Action)
	}
}
