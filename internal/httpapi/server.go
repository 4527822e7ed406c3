// Package httpapi exposes the split and settlement services over a JSON
// REST API.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weichenh/splitledger/internal/auth"
	"github.com/weichenh/splitledger/internal/middleware"
	"github.com/weichenh/splitledger/internal/models"
	"github.com/weichenh/splitledger/internal/service"
	"github.com/weichenh/splitledger/internal/storage"
)

// Server wires the HTTP routes to the service layer.
type Server struct {
	auth    *auth.PasswordAuthenticator
	jwt     *auth.JWTManager
	manager *service.SplitManager
	engine  *service.SettlementEngine
	store   storage.Store
}

// NewServer creates a Server over the given services.
func NewServer(authenticator *auth.PasswordAuthenticator, jwt *auth.JWTManager, manager *service.SplitManager, engine *service.SettlementEngine, store storage.Store) *Server {
	return &Server{
		auth:    authenticator,
		jwt:     jwt,
		manager: manager,
		engine:  engine,
		store:   store,
	}
}

// Router builds the chi router with all routes and middleware attached.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Metrics)
	r.Use(middleware.RequestLogger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/auth/register", s.handleRegister)
	r.Post("/api/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(s.jwt))

		r.Get("/api/auth/me", s.handleMe)

		r.Post("/api/activities", s.handleCreateActivity)
		r.Get("/api/activities/{activityID}", s.handleGetActivity)
		r.Post("/api/activities/{activityID}/participants", s.handleJoin)
		r.Delete("/api/activities/{activityID}/participants/{userID}", s.handleLeave)
		r.Post("/api/activities/{activityID}/expenses", s.handleAddExpense)
		r.Post("/api/activities/{activityID}/settle", s.handleSettle)
		r.Get("/api/activities/{activityID}/settlement", s.handleGetSettlement)
		r.Get("/api/activities/{activityID}/logs", s.handleListLogs)

		r.Get("/api/expenses/{expenseID}/splits", s.handleGetSplits)
		r.Post("/api/expenses/{expenseID}/splits/regenerate", s.handleRegenerateSplits)
		r.Post("/api/expenses/{expenseID}/splits/adjust", s.handleAdjustSplits)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service errors onto HTTP status codes. Locked
// activities conflict, validation problems are bad requests, everything
// unrecognized is a 500 with the detail kept out of the response body.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrActivityLocked):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case models.IsInvalidSplit(err), models.IsNotEligible(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrWeakPassword):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, auth.ErrEmailExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}
