package group

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
)

type Handler struct {
	svc    *group.Service
	ledger *ledger.Ledger
}

func NewHandler(svc *group.Service, expenses *ledger.Ledger) *Handler {
	return &Handler{svc: svc, ledger: expenses}
}

func (h *Handler) MemberRoutes(r chi.Router) {
	r.Post("/", h.createMember)
	r.Get("/", h.listMembers)
}

func (h *Handler) GroupRoutes(r chi.Router) {
	r.Post("/", h.createGroup)
	r.Get("/", h.listGroups)
	r.Get("/{id}", h.getGroup)
}

type createMemberRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *Handler) createMember(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	m, err := h.svc.CreateMember(r.Context(), group.CreateMemberParams{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toMemberResponse(*m))
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.ListMembers(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toMemberResponseList(members))
}

type createGroupRequest struct {
	Name      string      `json:"name"`
	MemberIDs []uuid.UUID `json:"member_ids"`
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	g, err := h.svc.CreateGroup(r.Context(), group.CreateGroupParams{
		Name:      req.Name,
		MemberIDs: req.MemberIDs,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toGroupResponse(g))
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.svc.ListGroups(r.Context())
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toGroupResponseList(groups))
}

func (h *Handler) getGroup(w http.ResponseWriter, r *http.Request) {
	id, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	g, err := h.svc.GetGroup(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	expenses, err := h.ledger.List(r.Context(), id)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := groupDetailResponse{groupResponse: toGroupResponse(g)}
	for _, e := range expenses {
		resp.TotalExpenses += e.Amount
	}

	respond.JSON(w, http.StatusOK, resp)
}
