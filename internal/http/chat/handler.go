package chat

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/chat"
	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
)

type Handler struct {
	svc *chat.Service
}

func NewHandler(svc *chat.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.ask)
}

type askRequest struct {
	Message  string     `json:"message"`
	MemberID *uuid.UUID `json:"member_id,omitempty"`
}

type contextResponse struct {
	Members    int    `json:"members_count"`
	Groups     int    `json:"groups_count"`
	Expenses   int    `json:"expenses_count"`
	Balances   int    `json:"balances_count"`
	TotalSpent int64  `json:"total_amount"`
	Model      string `json:"model_used"`
}

type askResponse struct {
	Response string          `json:"response"`
	Success  bool            `json:"success"`
	Context  contextResponse `json:"context_used"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	reply, err := h.svc.Ask(r.Context(), req.Message, req.MemberID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, askResponse{
		Response: reply.Text,
		Success:  reply.Success,
		Context: contextResponse{
			Members:    reply.Context.Members,
			Groups:     reply.Context.Groups,
			Expenses:   reply.Context.Expenses,
			Balances:   reply.Context.Balances,
			TotalSpent: reply.Context.TotalSpent,
			Model:      reply.Context.Model,
		},
	})
}
