package export

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/divvy/internal/export"
	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
)

type Handler struct {
	svc *export.Service
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/{id}/statement", h.statement)
}

// statement serves the group statement as CSV, or as plain text with ?format=text.
func (h *Handler) statement(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	st, err := h.svc.Statement(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte(h.svc.Summary(st)))

		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=\"%s_%s.csv\"", slug(st.GroupName), time.Now().Format("20060102")))

	if err := h.svc.WriteCSV(w, st); err != nil {
		slog.Error("failed to write statement", "error", err, "group_id", id)
	}
}

func slug(name string) string {
	s := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, name)
	if s == "" {
		return "statement"
	}

	return s
}
