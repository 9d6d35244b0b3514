package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/choreledger/internal/ledger"
)

type errorBody struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Kind     string            `json:"kind"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps a ledger rejection to its status and JSON body. Anything
// else is an infrastructure failure: logged, and reported as a bare 500.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var lerr *ledger.Error
	if errors.As(err, &lerr) {
		writeJSON(w, lerr.Code.HTTPStatus(), errorBody{
			Error:    lerr.Message,
			Code:     string(lerr.Code),
			Kind:     string(lerr.Code.Kind()),
			Metadata: lerr.Metadata,
		})
		return
	}
	logger.Error("request failed", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorBody{
		Error: "internal error",
		Code:  "INTERNAL",
		Kind:  string(ledger.KindInternal),
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorBody{
		Error: msg,
		Code:  string(ledger.CodeInvalidArgument),
		Kind:  string(ledger.KindValidation),
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, "invalid JSON")
		return false
	}
	return true
}

func parseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

// pathID reads {id}; a malformed id is reported the same way as an unknown
// one.
func pathID(w http.ResponseWriter, r *http.Request, entity string) (int64, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{
			Error:    "no " + entity + " with that id",
			Code:     string(ledger.CodeInvalidID),
			Kind:     string(ledger.KindReference),
			Metadata: map[string]string{"entity": entity},
		})
		return 0, false
	}
	return id, true
}
