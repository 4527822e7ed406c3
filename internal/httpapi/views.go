package httpapi

import "github.com/weichenh/splitledger/internal/models"

// View structs keep the wire format decoupled from the storage models;
// in particular the password hash never leaves the server.

type userView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"created_at"`
}

func toUserView(u *models.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

type activityView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Locked      bool   `json:"locked"`
	StartDate   int64  `json:"start_date,omitempty"`
	EndDate     int64  `json:"end_date,omitempty"`
	SettledAt   int64  `json:"settled_at,omitempty"`
	CreatedBy   string `json:"created_by"`
	CreatedAt   int64  `json:"created_at"`
}

func toActivityView(a *models.Activity) activityView {
	return activityView{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		Status:      string(a.Status),
		Locked:      a.Locked,
		StartDate:   a.StartDate,
		EndDate:     a.EndDate,
		SettledAt:   a.SettledAt,
		CreatedBy:   a.CreatedBy,
		CreatedAt:   a.CreatedAt,
	}
}

type participantView struct {
	ID                string   `json:"id"`
	ActivityID        string   `json:"activity_id"`
	UserID            string   `json:"user_id"`
	JoinedAt          int64    `json:"joined_at"`
	JoinPolicy        string   `json:"join_policy"`
	Active            bool     `json:"active"`
	PartialExpenseIDs []string `json:"partial_expense_ids,omitempty"`
}

func toParticipantView(p *models.Participant) participantView {
	return participantView{
		ID:                p.ID,
		ActivityID:        p.ActivityID,
		UserID:            p.UserID,
		JoinedAt:          p.JoinedAt,
		JoinPolicy:        string(p.JoinPolicy),
		Active:            p.Active,
		PartialExpenseIDs: p.PartialExpenseIDs,
	}
}

type expenseView struct {
	ID          string `json:"id"`
	ActivityID  string `json:"activity_id,omitempty"`
	PaidBy      string `json:"paid_by"`
	AmountCents int64  `json:"amount_cents"`
	Kind        string `json:"kind"`
	Date        int64  `json:"date"`
	Description string `json:"description,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func toExpenseView(e *models.Expense) expenseView {
	return expenseView{
		ID:          e.ID,
		ActivityID:  e.ActivityID,
		PaidBy:      e.PaidBy,
		AmountCents: e.AbsAmount(),
		Kind:        string(e.Kind()),
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}

type splitView struct {
	ID              string  `json:"id"`
	ExpenseID       string  `json:"expense_id"`
	UserID          string  `json:"user_id"`
	SplitType       string  `json:"split_type"`
	SplitValue      float64 `json:"split_value"`
	CalculatedCents int64   `json:"calculated_amount_cents"`
	IsAdjusted      bool    `json:"is_adjusted"`
	AdjustedBy      string  `json:"adjusted_by,omitempty"`
	AdjustedAt      int64   `json:"adjusted_at,omitempty"`
	CreatedAt       int64   `json:"created_at"`
}

func toSplitView(s *models.ExpenseSplit) splitView {
	return splitView{
		ID:              s.ID,
		ExpenseID:       s.ExpenseID,
		UserID:          s.UserID,
		SplitType:       string(s.SplitType),
		SplitValue:      s.SplitValue,
		CalculatedCents: s.CalculatedAmount,
		IsAdjusted:      s.IsAdjusted,
		AdjustedBy:      s.AdjustedBy,
		AdjustedAt:      s.AdjustedAt,
		CreatedAt:       s.CreatedAt,
	}
}

type balanceView struct {
	UserID         string `json:"user_id"`
	TotalPaidCents int64  `json:"total_paid_cents"`
	TotalOwedCents int64  `json:"total_owed_cents"`
	NetCents       int64  `json:"net_cents"`
}

type transferView struct {
	FromUserID  string `json:"from_user_id"`
	ToUserID    string `json:"to_user_id"`
	AmountCents int64  `json:"amount_cents"`
}

type mismatchView struct {
	ExpenseID     string `json:"expense_id"`
	ExpectedCents int64  `json:"expected_cents"`
	ActualCents   int64  `json:"actual_cents"`
}

type reportView struct {
	ID         string         `json:"id"`
	ActivityID string         `json:"activity_id"`
	Balances   []balanceView  `json:"balances"`
	Transfers  []transferView `json:"transfers"`
	Mismatches []mismatchView `json:"mismatches"`
	SettledBy  string         `json:"settled_by"`
	CreatedAt  int64          `json:"created_at"`
}

func toReportView(r *models.SettlementReport) reportView {
	view := reportView{
		ID:         r.ID,
		ActivityID: r.ActivityID,
		Balances:   make([]balanceView, 0, len(r.Balances)),
		Transfers:  make([]transferView, 0, len(r.Transfers)),
		Mismatches: make([]mismatchView, 0, len(r.Mismatches)),
		SettledBy:  r.SettledBy,
		CreatedAt:  r.CreatedAt,
	}
	for _, b := range r.Balances {
		view.Balances = append(view.Balances, balanceView{
			UserID:         b.UserID,
			TotalPaidCents: b.TotalPaidCents,
			TotalOwedCents: b.TotalOwedCents,
			NetCents:       b.NetCents,
		})
	}
	for _, t := range r.Transfers {
		view.Transfers = append(view.Transfers, transferView{
			FromUserID:  t.FromUserID,
			ToUserID:    t.ToUserID,
			AmountCents: t.AmountCents,
		})
	}
	for _, m := range r.Mismatches {
		view.Mismatches = append(view.Mismatches, mismatchView{
			ExpenseID:     m.ExpenseID,
			ExpectedCents: m.ExpectedCents,
			ActualCents:   m.ActualCents,
		})
	}
	return view
}

type eventView struct {
	ID          string `json:"id"`
	ActivityID  string `json:"activity_id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	OperatorID  string `json:"operator_id,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func toEventView(e *models.ActivityEvent) eventView {
	return eventView{
		ID:          e.ID,
		ActivityID:  e.ActivityID,
		Action:      string(e.Action),
		Description: e.Description,
		OperatorID:  e.OperatorID,
		CreatedAt:   e.CreatedAt,
	}
}
