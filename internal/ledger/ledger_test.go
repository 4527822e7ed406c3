package ledger

import (
	"testing"

	"github.com/weichenh/splitledger/internal/models"
)

func participant(policy models.JoinPolicy, joinedAt int64) *models.Participant {
	return &models.Participant{
		ID:         "p1",
		ActivityID: "act1",
		UserID:     "u1",
		JoinedAt:   joinedAt,
		JoinPolicy: policy,
		Active:     true,
	}
}

func expense(id string, date int64) *models.Expense {
	return &models.Expense{ID: id, ActivityID: "act1", Amount: -1000, Date: date}
}

func TestIsLiable(t *testing.T) {
	tests := []struct {
		name        string
		participant *models.Participant
		expense     *models.Expense
		want        bool
	}{
		{
			name:        "full split owes pre-join expenses",
			participant: participant(models.JoinFullSplit, 100),
			expense:     expense("e1", 50),
			want:        true,
		},
		{
			name:        "full split owes post-join expenses",
			participant: participant(models.JoinFullSplit, 100),
			expense:     expense("e1", 150),
			want:        true,
		},
		{
			name:        "no split skips pre-join expenses",
			participant: participant(models.JoinNoSplit, 100),
			expense:     expense("e1", 50),
			want:        false,
		},
		{
			name:        "no split owes expenses at join time",
			participant: participant(models.JoinNoSplit, 100),
			expense:     expense("e1", 100),
			want:        true,
		},
		{
			name:        "no split owes post-join expenses",
			participant: participant(models.JoinNoSplit, 100),
			expense:     expense("e1", 101),
			want:        true,
		},
		{
			name: "partial split owes enumerated pre-join expense",
			participant: func() *models.Participant {
				p := participant(models.JoinPartialSplit, 100)
				p.PartialExpenseIDs = []string{"e1"}
				return p
			}(),
			expense: expense("e1", 50),
			want:    true,
		},
		{
			name: "partial split skips unlisted pre-join expense",
			participant: func() *models.Participant {
				p := participant(models.JoinPartialSplit, 100)
				p.PartialExpenseIDs = []string{"e1"}
				return p
			}(),
			expense: expense("e2", 50),
			want:    false,
		},
		{
			name:        "partial split owes post-join expenses regardless of list",
			participant: participant(models.JoinPartialSplit, 100),
			expense:     expense("e9", 200),
			want:        true,
		},
		{
			name: "left participant is never liable",
			participant: func() *models.Participant {
				p := participant(models.JoinFullSplit, 100)
				p.Active = false
				return p
			}(),
			expense: expense("e1", 150),
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLiable(tt.participant, tt.expense); got != tt.want {
				t.Errorf("IsLiable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEligibleParticipants(t *testing.T) {
	e := expense("e1", 100)
	participants := []*models.Participant{
		{ID: "p1", UserID: "u1", JoinPolicy: models.JoinFullSplit, JoinedAt: 200, Active: true},
		{ID: "p2", UserID: "u2", JoinPolicy: models.JoinNoSplit, JoinedAt: 200, Active: true},
		{ID: "p3", UserID: "u3", JoinPolicy: models.JoinNoSplit, JoinedAt: 50, Active: true},
		{ID: "p4", UserID: "u4", JoinPolicy: models.JoinFullSplit, JoinedAt: 50, Active: false},
	}

	eligible := EligibleParticipants(participants, e)
	if len(eligible) != 2 {
		t.Fatalf("got %d eligible, want 2", len(eligible))
	}
	if eligible[0].UserID != "u1" || eligible[1].UserID != "u3" {
		t.Errorf("eligible = [%s %s], want [u1 u3]", eligible[0].UserID, eligible[1].UserID)
	}
}
