package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/choreledger/internal/ledger"
)

// TokenHandler serves the public read-only views: balances, token info,
// counters and the event log.
type TokenHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewTokenHandler(l *ledger.Ledger, logger *slog.Logger) *TokenHandler {
	return &TokenHandler{ledger: l, logger: logger}
}

func (h *TokenHandler) Balance(w http.ResponseWriter, r *http.Request) {
	addr := r.PathValue("address")
	balance, err := h.ledger.BalanceOf(r.Context(), addr)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"address": addr,
		"balance": balance,
		"symbol":  h.ledger.Symbol(),
	})
}

func (h *TokenHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.ledger.TokenInfo(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *TokenHandler) Counters(w http.ResponseWriter, r *http.Request) {
	c, err := h.ledger.Counters(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Events pages through the audit log: ?after=<seq>&limit=<n>.
func (h *TokenHandler) Events(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var after int64
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			badRequest(w, "after must be a non-negative integer")
			return
		}
		after = n
	}
	limit := 0
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	events, err := h.ledger.Events(r.Context(), after, limit)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	next := after
	if len(events) > 0 {
		next = events[len(events)-1].Seq
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "next": next})
}

// VerifyEvents recomputes the audit log hash chain.
func (h *TokenHandler) VerifyEvents(w http.ResponseWriter, r *http.Request) {
	broken, err := h.ledger.VerifyEvents(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"intact": broken == 0, "broken_at": broken})
}
