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

type TaskHandler struct {
	ledger *ledger.Ledger
	logger *slog.Logger
}

func NewTaskHandler(l *ledger.Ledger, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{ledger: l, logger: logger}
}

type taskRequest struct {
	Child       string `json:"child"`
	Description string `json:"description"`
	Reward      int64  `json:"reward"`
	DueDate     int64  `json:"due_date"`
}

func (req taskRequest) input() ledger.TaskInput {
	return ledger.TaskInput{Description: req.Description, Reward: req.Reward, DueDate: req.DueDate}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.ledger.AddTask(r.Context(), auth.Address(r.Context()), req.Child, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	task, err := h.ledger.EditTask(r.Context(), auth.Address(r.Context()), id, req.input())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}
	if err := h.ledger.DeleteTask(r.Context(), auth.Address(r.Context()), id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.CompleteTask)
}

func (h *TaskHandler) CancelCompletion(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.CancelTaskCompletion)
}

func (h *TaskHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.ledger.ApproveTaskCompletion)
}

type taskTransition func(ctx context.Context, caller string, id int64) (model.Task, error)

func (h *TaskHandler) transition(w http.ResponseWriter, r *http.Request, fn taskTransition) {
	id, ok := pathID(w, r, "task")
	if !ok {
		return
	}
	task, err := fn(r.Context(), auth.Address(r.Context()), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// List returns the caller's own tasks for a child and the whole family
// group's tasks for a parent.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := auth.Address(r.Context())
	p, err := h.ledger.Profile(r.Context(), caller)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var tasks []status.TaskWithStatus
	switch p.Kind {
	case model.KindChild:
		tasks, err = h.ledger.ChildTasks(r.Context(), caller)
	default:
		tasks, err = h.ledger.FamilyGroupTasks(r.Context(), caller)
	}
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if tasks == nil {
		tasks = []status.TaskWithStatus{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}
