package ledger

import (
	"maps"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/split"
)

// Expense is an immutable record of a validated shared expense.
// Shares hold what each member owed at the time the expense was recorded.
type Expense struct {
	ID          uuid.UUID
	GroupID     uuid.UUID
	Description string
	Amount      int64 // Amount in minor units
	PayerID     uuid.UUID
	Split       split.Input
	Shares      split.Shares
	CreatedAt   time.Time
}

// Policy returns how the expense was divided.
func (e Expense) Policy() split.Policy {
	if e.Split == nil {
		return split.PolicyEqual
	}

	return e.Split.Policy()
}

func (e Expense) clone() Expense {
	e.Shares = maps.Clone(e.Shares)

	switch in := e.Split.(type) {
	case split.PercentageInput:
		e.Split = split.PercentageInput{Entries: maps.Clone(in.Entries)}
	case split.ExactInput:
		e.Split = split.ExactInput{Entries: maps.Clone(in.Entries)}
	}

	return e
}

type CreateParams struct {
	GroupID     uuid.UUID
	Description string
	Amount      int64
	PayerID     uuid.UUID
	Split       split.Input
}
