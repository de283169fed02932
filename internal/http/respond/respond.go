// Package respond writes JSON responses and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/chat"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/importer"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

type errorResponse struct {
	Error    string     `json:"error"`
	Kind     split.Kind `json:"kind,omitempty"`
	MemberID *uuid.UUID `json:"member_id,omitempty"`
	Expected string     `json:"expected,omitempty"`
	Actual   string     `json:"actual,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as a JSON error body. Validation errors are 400 with
// their detail, unknown groups or members are 404, anything else is 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var verr *split.ValidationError

	switch {
	case errors.As(err, &verr):
		resp := errorResponse{
			Error:    verr.Error(),
			Kind:     verr.Kind,
			Expected: verr.Expected,
			Actual:   verr.Actual,
		}

		if verr.Member != uuid.Nil {
			resp.MemberID = new(verr.Member)
		}

		JSON(w, http.StatusBadRequest, resp)
	case errors.Is(err, group.ErrNotFound):
		JSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, group.ErrEmptyName),
		errors.Is(err, group.ErrDuplicateUser),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, importer.ErrNoHeader):
		JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		slog.ErrorContext(r.Context(), "request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		JSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// BadRequest writes a 400 with a plain message.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

// ID parses raw as a UUID, writing a 400 on failure.
func ID(w http.ResponseWriter, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		BadRequest(w, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}
