package balance

import (
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/ledger"
)

// Balances maps a member to their net position in minor units. Positive means
// the member is owed money, negative means they owe. The values sum to zero.
type Balances map[uuid.UUID]int64

// Sum returns the total of all balances. It is zero for any ledger-derived value.
func (b Balances) Sum() int64 {
	var total int64
	for _, v := range b {
		total += v
	}

	return total
}

// Compute folds expenses into net balances. Every id in members starts at
// zero; former members that still appear in expenses keep their entry.
func Compute(members []uuid.UUID, expenses []ledger.Expense) Balances {
	out := make(Balances, len(members))
	for _, id := range members {
		out[id] = 0
	}

	for _, e := range expenses {
		out[e.PayerID] += e.Amount

		for id, share := range e.Shares {
			out[id] -= share
		}
	}

	return out
}
