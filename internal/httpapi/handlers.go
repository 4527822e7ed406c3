package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/weichenh/splitledger/internal/calculator"
	"github.com/weichenh/splitledger/internal/middleware"
	"github.com/weichenh/splitledger/internal/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string   `json:"token"`
	User  userView `json:"user"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}

	user, err := s.auth.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{Token: token, User: toUserView(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	user, err := s.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := s.jwt.Generate(user)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{Token: token, User: toUserView(user)})
}

// handleMe returns the account behind the presented token, looked up by
// the authenticated email so a token surviving an account deletion gets
// a 404 instead of stale claims.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, err := s.store.GetUserByEmail(r.Context(), middleware.GetEmail(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(user))
}

type createActivityRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	StartDate   int64  `json:"start_date"`
	EndDate     int64  `json:"end_date"`
}

func (s *Server) handleCreateActivity(w http.ResponseWriter, r *http.Request) {
	var req createActivityRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.Name == "" {
		badRequest(w, "name is required")
		return
	}

	activity := &models.Activity{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreatedBy:   middleware.GetUserID(r.Context()),
	}
	if err := s.manager.CreateActivity(r.Context(), activity); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityView(activity))
}

func (s *Server) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	activity, err := s.store.GetActivity(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}
	participants, err := s.store.ListParticipants(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}

	view := struct {
		activityView
		Participants []participantView `json:"participants"`
	}{activityView: toActivityView(activity)}
	for _, p := range participants {
		view.Participants = append(view.Participants, toParticipantView(p))
	}
	writeJSON(w, http.StatusOK, view)
}

type joinRequest struct {
	UserID            string   `json:"user_id"`
	Policy            string   `json:"policy"`
	PartialExpenseIDs []string `json:"partial_expense_ids"`
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	var req joinRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = middleware.GetUserID(r.Context())
	}

	p, err := s.manager.Join(r.Context(), activityID, userID, models.JoinPolicy(req.Policy), req.PartialExpenseIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toParticipantView(p))
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")
	userID := chi.URLParam(r, "userID")

	if err := s.manager.Leave(r.Context(), activityID, userID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addExpenseRequest struct {
	PaidBy      string `json:"paid_by"`
	AmountCents int64  `json:"amount_cents"`
	Kind        string `json:"kind"`
	Date        int64  `json:"date"`
	Description string `json:"description"`
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	var req addExpenseRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	if req.AmountCents <= 0 {
		badRequest(w, "amount_cents must be positive")
		return
	}
	paidBy := req.PaidBy
	if paidBy == "" {
		paidBy = middleware.GetUserID(r.Context())
	}

	// Amount sign encodes the record kind in storage.
	amount := -req.AmountCents
	if models.ExpenseKind(req.Kind) == models.KindIncome {
		amount = req.AmountCents
	}

	e := &models.Expense{
		ActivityID:  activityID,
		PaidBy:      paidBy,
		Amount:      amount,
		Date:        req.Date,
		Description: req.Description,
	}
	splits, err := s.manager.AddExpense(r.Context(), e)
	if err != nil {
		writeError(w, err)
		return
	}

	view := struct {
		expenseView
		Splits []splitView `json:"splits"`
	}{expenseView: toExpenseView(e)}
	for _, split := range splits {
		view.Splits = append(view.Splits, toSplitView(split))
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleGetSplits(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")

	splits, err := s.manager.Splits(r.Context(), expenseID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]splitView, 0, len(splits))
	for _, split := range splits {
		views = append(views, toSplitView(split))
	}
	writeJSON(w, http.StatusOK, views)
}

type splitRequest struct {
	SplitType  string `json:"split_type"`
	Directives []struct {
		UserID string  `json:"user_id"`
		Value  float64 `json:"value"`
	} `json:"directives"`
}

func (r *splitRequest) directives() []calculator.Directive {
	if r.Directives == nil {
		return nil
	}
	ds := make([]calculator.Directive, len(r.Directives))
	for i, d := range r.Directives {
		ds[i] = calculator.Directive{UserID: d.UserID, Value: d.Value}
	}
	return ds
}

func (s *Server) handleRegenerateSplits(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")

	var req splitRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	e, err := s.store.GetExpense(r.Context(), expenseID)
	if err != nil {
		writeError(w, err)
		return
	}

	splits, err := s.manager.RegenerateSplits(r.Context(), e.ActivityID, expenseID,
		models.SplitType(req.SplitType), req.directives(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]splitView, 0, len(splits))
	for _, split := range splits {
		views = append(views, toSplitView(split))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAdjustSplits(w http.ResponseWriter, r *http.Request) {
	expenseID := chi.URLParam(r, "expenseID")

	var req splitRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, "invalid request body")
		return
	}

	e, err := s.store.GetExpense(r.Context(), expenseID)
	if err != nil {
		writeError(w, err)
		return
	}

	splits, err := s.manager.AdjustSplits(r.Context(), e.ActivityID, expenseID,
		models.SplitType(req.SplitType), req.directives(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]splitView, 0, len(splits))
	for _, split := range splits {
		views = append(views, toSplitView(split))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleSettle(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	report, err := s.engine.Settle(r.Context(), activityID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportView(report))
}

func (s *Server) handleGetSettlement(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	report, err := s.engine.Report(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportView(report))
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	activityID := chi.URLParam(r, "activityID")

	events, err := s.store.ListEventsByActivity(r.Context(), activityID)
	if err != nil {
		writeError(w, err)
		return
	}
	views := make([]eventView, 0, len(events))
	for _, evt := range events {
		views = append(views, toEventView(evt))
	}
	writeJSON(w, http.StatusOK, views)
}
