package expense

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/http/respond"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

type Handler struct {
	groups *group.Service
	ledger *ledger.Ledger
}

func NewHandler(groups *group.Service, expenses *ledger.Ledger) *Handler {
	return &Handler{groups: groups, ledger: expenses}
}

// Routes expects to be mounted under a path carrying the {id} group parameter.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
}

var (
	minInt64 = decimal.NewFromInt(math.MinInt64)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
)

type createExpenseRequest struct {
	Description string                        `json:"description"`
	Amount      int64                         `json:"amount"`
	PayerID     uuid.UUID                     `json:"payer_id"`
	SplitType   string                        `json:"split_type"`
	Splits      map[uuid.UUID]decimal.Decimal `json:"splits"`
}

type expenseResponse struct {
	ID          uuid.UUID           `json:"id"`
	GroupID     uuid.UUID           `json:"group_id"`
	Description string              `json:"description"`
	Amount      int64               `json:"amount"`
	PayerID     uuid.UUID           `json:"payer_id"`
	SplitType   split.Policy        `json:"split_type"`
	Shares      map[uuid.UUID]int64 `json:"shares"`
	CreatedAt   time.Time           `json:"created_at"`
}

func toResponse(e ledger.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount,
		PayerID:     e.PayerID,
		SplitType:   e.Policy(),
		Shares:      e.Shares,
		CreatedAt:   e.CreatedAt,
	}
}

// toInput converts the request's split fields. Exact splits must be whole
// minor units that fit in an int64.
func toInput(req createExpenseRequest) (split.Input, error) {
	policy := split.PolicyEqual
	if req.SplitType != "" {
		p, err := split.ParsePolicy(req.SplitType)
		if err != nil {
			return nil, err
		}

		policy = p
	}

	switch policy {
	case split.PolicyPercentage:
		return split.PercentageInput{Entries: req.Splits}, nil
	case split.PolicyExact:
		entries := make(map[uuid.UUID]int64, len(req.Splits))

		for id, v := range req.Splits {
			if !v.IsInteger() || v.LessThan(minInt64) || v.GreaterThan(maxInt64) {
				return nil, &split.ValidationError{Kind: split.KindInvalidSplitValue, Member: id, Actual: v.String()}
			}

			entries[id] = v.IntPart()
		}

		return split.ExactInput{Entries: entries}, nil
	default:
		return split.EqualInput{}, nil
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	groupID, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}

	in, err := toInput(req)
	if err != nil {
		var verr *split.ValidationError
		if errors.As(err, &verr) {
			respond.Error(w, r, err)
			return
		}

		respond.BadRequest(w, err.Error())

		return
	}

	e, err := h.ledger.Append(r.Context(), ledger.CreateParams{
		GroupID:     groupID,
		Description: req.Description,
		Amount:      req.Amount,
		PayerID:     req.PayerID,
		Split:       in,
	})
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(*e))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	groupID, ok := respond.ID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if _, err := h.groups.GetGroup(r.Context(), groupID); err != nil {
		respond.Error(w, r, err)
		return
	}

	expenses, err := h.ledger.List(r.Context(), groupID)
	if err != nil {
		respond.Error(w, r, err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, e := range expenses {
		resp[i] = toResponse(e)
	}

	respond.JSON(w, http.StatusOK, resp)
}
