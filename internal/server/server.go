package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/choreledger/internal/handler"
	"github.com/dukerupert/choreledger/internal/ledger"
	"github.com/dukerupert/choreledger/internal/middleware"
	ws "github.com/dukerupert/choreledger/internal/websocket"
)

type Server struct {
	ledger      *ledger.Ledger
	hub         *ws.Hub
	verifier    middleware.Verifier
	accountH    *handler.AccountHandler
	familyH     *handler.FamilyHandler
	taskH       *handler.TaskHandler
	rewardH     *handler.RewardHandler
	tokenH      *handler.TokenHandler
	rateLimiter *middleware.RateLimiter
	rateLimit   int
	logger      *slog.Logger
}

// New wires the HTTP surface around a ledger. rateLimit is the number of
// mutating requests a caller may make per minute.
func New(l *ledger.Ledger, hub *ws.Hub, verifier middleware.Verifier, rateLimit int, logger *slog.Logger) *Server {
	return &Server{
		ledger:      l,
		hub:         hub,
		verifier:    verifier,
		accountH:    handler.NewAccountHandler(l, logger.With("component", "account")),
		familyH:     handler.NewFamilyHandler(l, logger.With("component", "family")),
		taskH:       handler.NewTaskHandler(l, logger.With("component", "task")),
		rewardH:     handler.NewRewardHandler(l, logger.With("component", "reward")),
		tokenH:      handler.NewTokenHandler(l, logger.With("component", "token")),
		rateLimiter: middleware.NewRateLimiter(),
		rateLimit:   rateLimit,
		logger:      logger,
	}
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("GET /health", s.healthHandler)
	outerMux.HandleFunc("GET /api/token", s.tokenH.Info)
	outerMux.HandleFunc("GET /api/counters", s.tokenH.Counters)
	outerMux.HandleFunc("GET /api/balances/{address}", s.tokenH.Balance)
	outerMux.HandleFunc("GET /api/events", s.tokenH.Events)
	outerMux.HandleFunc("GET /api/events/verify", s.tokenH.VerifyEvents)
	outerMux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.ledger))

	// Protected routes, wrapped with RequireAuth
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.verifier)
	outerMux.Handle("/api/", authMiddleware(protectedMux))

	// Apply request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// limited applies the per-caller mutation budget.
func (s *Server) limited(h http.HandlerFunc) http.HandlerFunc {
	rl := middleware.RateLimit(s.rateLimiter, middleware.CallerOrIP, s.rateLimit, time.Minute)
	wrapped := rl(h)
	return wrapped.ServeHTTP
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Account registry
	mux.HandleFunc("POST /api/parents", s.limited(s.accountH.RegisterParent))
	mux.HandleFunc("DELETE /api/parents/me", s.limited(s.accountH.DeleteParent))
	mux.HandleFunc("GET /api/profile", s.accountH.GetProfile)
	mux.HandleFunc("PUT /api/profile", s.limited(s.accountH.EditProfile))

	// Family group
	mux.HandleFunc("POST /api/children", s.limited(s.familyH.AddChild))
	mux.HandleFunc("DELETE /api/children/{address}", s.limited(s.familyH.RemoveChild))
	mux.HandleFunc("GET /api/family", s.familyH.Get)

	// Task ledger
	mux.HandleFunc("POST /api/tasks", s.limited(s.taskH.Create))
	mux.HandleFunc("GET /api/tasks", s.taskH.List)
	mux.HandleFunc("PUT /api/tasks/{id}", s.limited(s.taskH.Update))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.limited(s.taskH.Delete))
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.limited(s.taskH.Complete))
	mux.HandleFunc("DELETE /api/tasks/{id}/complete", s.limited(s.taskH.CancelCompletion))
	mux.HandleFunc("POST /api/tasks/{id}/approve", s.limited(s.taskH.Approve))

	// Reward ledger
	mux.HandleFunc("POST /api/rewards", s.limited(s.rewardH.Create))
	mux.HandleFunc("GET /api/rewards", s.rewardH.List)
	mux.HandleFunc("PUT /api/rewards/{id}", s.limited(s.rewardH.Update))
	mux.HandleFunc("DELETE /api/rewards/{id}", s.limited(s.rewardH.Delete))
	mux.HandleFunc("POST /api/rewards/{id}/purchase", s.limited(s.rewardH.Purchase))
	mux.HandleFunc("POST /api/rewards/{id}/redeem", s.limited(s.rewardH.Redeem))
	mux.HandleFunc("DELETE /api/rewards/{id}/redeem", s.limited(s.rewardH.CancelRedemption))
	mux.HandleFunc("POST /api/rewards/{id}/approve", s.limited(s.rewardH.Approve))
}
