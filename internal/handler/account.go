package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreledger/internal/auth"
	"github.com/dukerupert/choreledger/internal/ledger"
)

type AccountHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewAccountHandler(l *ledger.Ledger, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{ledger: l, logger: logger}
}

type nameRequest struct {
	Name string `json:"name"`
}

func (h *AccountHandler) RegisterParent(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	caller := auth.Address(r.Context())
	if err := h.ledger.RegisterParent(r.Context(), caller, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeProfile(w, r, http.StatusCreated)
}

func (h *AccountHandler) DeleteParent(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.DeleteParent(r.Context(), auth.Address(r.Context())); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	h.writeProfile(w, r, http.StatusOK)
}

func (h *AccountHandler) EditProfile(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.ledger.EditProfile(r.Context(), auth.Address(r.Context()), req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeProfile(w, r, http.StatusOK)
}

func (h *AccountHandler) writeProfile(w http.ResponseWriter, r *http.Request, status int) {
	caller := auth.Address(r.Context())
	p, err := h.ledger.Profile(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, status, map[string]any{
		"address": caller,
		"kind":    p.Kind,
		"name":    p.Name,
	})
}
