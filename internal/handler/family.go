package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreledger/internal/auth"
	"github.com/dukerupert/choreledger/internal/ledger"
)

type FamilyHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewFamilyHandler(l *ledger.Ledger, logger *slog.Logger) *FamilyHandler {
	return &FamilyHandler{ledger: l, logger: logger}
}

type childRequest struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

func (h *FamilyHandler) AddChild(w http.ResponseWriter, r *http.Request) {
	var req childRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	caller := auth.Address(r.Context())
	if err := h.ledger.AddChild(r.Context(), caller, req.Address, req.Name); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.writeGroup(w, r, http.StatusCreated)
}

func (h *FamilyHandler) RemoveChild(w http.ResponseWriter, r *http.Request) {
	caller := auth.Address(r.Context())
	if err := h.ledger.RemoveChild(r.Context(), caller, r.PathValue("address")); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FamilyHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.writeGroup(w, r, http.StatusOK)
}

func (h *FamilyHandler) writeGroup(w http.ResponseWriter, r *http.Request, status int) {
	group, err := h.ledger.FamilyGroup(r.Context(), auth.Address(r.Context()))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, status, map[string]any{"children": group})
}
