package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/choreledger/internal/auth"
	"github.com/dukerupert/choreledger/internal/ledger"
	"github.com/dukerupert/choreledger/internal/model"
	"github.com/dukerupert/choreledger/internal/status"
)

type RewardHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewRewardHandler(l *ledger.Ledger, logger *slog.Logger) *RewardHandler {
	return &RewardHandler{ledger: l, logger: logger}
}

type rewardRequest struct {
	Child       string `json:"child"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
}

func (req rewardRequest) input() ledger.RewardInput {
	return ledger.RewardInput{Description: req.Description, Price: req.Price}
}

func (h *RewardHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reward, err := h.ledger.AddReward(r.Context(), auth.Address(r.Context()), req.Child, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, reward)
}

func (h *RewardHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "reward")
	if !ok {
		return
	}
	var req rewardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	reward, err := h.ledger.EditReward(r.Context(), auth.Address(r.Context()), id, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

func (h *RewardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "reward")
	if !ok {
		return
	}
	if err := h.ledger.DeleteReward(r.Context(), auth.Address(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RewardHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.PurchaseReward)
}

func (h *RewardHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.RedeemReward)
}

func (h *RewardHandler) CancelRedemption(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.CancelRewardRedemption)
}

func (h *RewardHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.ApproveRewardRedemption)
}

func (h *RewardHandler) transition(w http.ResponseWriter, r *http.Request,
	fn func(ctx context.Context, caller string, id int64) (model.Reward, error)) {
	id, ok := pathID(w, r, "reward")
	if !ok {
		return
	}
	reward, err := fn(r.Context(), auth.Address(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, reward)
}

// List mirrors TaskHandler.List: a child sees its own rewards, a parent the
// family group's.
func (h *RewardHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.Address(r.Context())
	p, err := h.ledger.Profile(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var rewards []status.RewardWithStatus
	switch p.Kind {
	case model.KindChild:
		rewards, err = h.ledger.ChildRewards(r.Context(), caller)
	default:
		rewards, err = h.ledger.FamilyGroupRewards(r.Context(), caller)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if rewards == nil {
		rewards = []status.RewardWithStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rewards": rewards})
}
