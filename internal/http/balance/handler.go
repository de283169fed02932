package balance

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
)

type Handler struct {
	svc *balance.Service
}

func NewHandler(svc *balance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) GroupRoutes(r chi.Router) {
	r.Get("/{id}/balances", h.group)
}

func (h *Handler) MemberRoutes(r chi.Router) {
	r.Get("/{id}/balances", h.member)
}

type memberBalanceResponse struct {
	MemberID uuid.UUID `json:"member_id"`
	Name     string    `json:"name"`
	Balance  int64     `json:"balance"`
}

type settlementResponse struct {
	From   uuid.UUID `json:"from"`
	To     uuid.UUID `json:"to"`
	Amount int64     `json:"amount"`
}

type groupBalancesResponse struct {
	GroupID     uuid.UUID               `json:"group_id"`
	GroupName   string                  `json:"group_name"`
	TotalSpent  int64                   `json:"total_spent"`
	Balances    []memberBalanceResponse `json:"balances"`
	Settlements []settlementResponse    `json:"settlements"`
}

type groupBalanceResponse struct {
	GroupID   uuid.UUID `json:"group_id"`
	GroupName string    `json:"group_name"`
	Balance   int64     `json:"balance"`
}

type memberBalancesResponse struct {
	MemberID      uuid.UUID              `json:"member_id"`
	MemberName    string                 `json:"member_name"`
	TotalBalance  int64                  `json:"total_balance"`
	GroupBalances []groupBalanceResponse `json:"group_balances"`
}

func (h *Handler) group(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	report, err := h.svc.GroupBalances(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := groupBalancesResponse{
		GroupID:     report.GroupID,
		GroupName:   report.GroupName,
		TotalSpent:  report.TotalSpent,
		Balances:    make([]memberBalanceResponse, len(report.Balances)),
		Settlements: make([]settlementResponse, len(report.Settlements)),
	}

	for i, b := range report.Balances {
		resp.Balances[i] = memberBalanceResponse{MemberID: b.MemberID, Name: b.Name, Balance: b.Amount}
	}

	for i, tx := range report.Settlements {
		resp.Settlements[i] = settlementResponse{From: tx.From, To: tx.To, Amount: tx.Amount}
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) member(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	report, err := h.svc.MemberBalances(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := memberBalancesResponse{
		MemberID:      report.MemberID,
		MemberName:    report.MemberName,
		TotalBalance:  report.Total,
		GroupBalances: make([]groupBalanceResponse, len(report.PerGroup)),
	}

	for i, g := range report.PerGroup {
		resp.GroupBalances[i] = groupBalanceResponse{GroupID: g.GroupID, GroupName: g.GroupName, Balance: g.Amount}
	}

	respond.JSON(w, http.StatusOK, resp)
}
