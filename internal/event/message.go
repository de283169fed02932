package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/ledger"
)

// ExpenseCreated is published once an expense has been recorded.
type ExpenseCreated struct {
	ExpenseID uuid.UUID `json:"expense_id"`
	GroupID   uuid.UUID `json:"group_id"`
	PayerID   uuid.UUID `json:"payer_id"`
	Amount    int64     `json:"amount"`
	SplitType string    `json:"split_type"`
	CreatedAt time.Time `json:"created_at"`
}

func NewExpenseCreated(e ledger.Expense) ExpenseCreated {
	return ExpenseCreated{
		ExpenseID: e.ID,
		GroupID:   e.GroupID,
		PayerID:   e.PayerID,
		Amount:    e.Amount,
		SplitType: string(e.Policy()),
		CreatedAt: e.CreatedAt,
	}
}

func (m ExpenseCreated) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExpenseCreatedFromJSON(data []byte) (*ExpenseCreated, error) {
	var msg ExpenseCreated
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	return &msg, nil
}
