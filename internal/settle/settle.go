// Package settle turns net balances into suggested point-to-point payments.
//
// Simplify is a greedy matcher: it repeatedly pays the largest debtor into the
// largest creditor. It emits at most n-1 payments for n non-zero balances but
// does not guarantee the global minimum, which is NP-hard to find in general.
package settle

import (
	"bytes"
	"container/heap"

	"github.com/google/uuid"
)

// Transaction is a suggested payment of Amount minor units from From to To.
type Transaction struct {
	From   uuid.UUID
	To     uuid.UUID
	Amount int64
}

type party struct {
	id        uuid.UUID
	remaining int64
}

// partyHeap is a max-heap on remaining, ties broken by ascending id.
type partyHeap []party

func (h partyHeap) Len() int { return len(h) }

func (h partyHeap) Less(i, j int) bool {
	if h[i].remaining != h[j].remaining {
		return h[i].remaining > h[j].remaining
	}

	return bytes.Compare(h[i].id[:], h[j].id[:]) < 0
}

func (h partyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *partyHeap) Push(x any) { *h = append(*h, x.(party)) }

func (h *partyHeap) Pop() any {
	old := *h
	n := len(old)
	p := old[n-1]
	*h = old[:n-1]

	return p
}

// Simplify returns the payments that settle balances, where a positive
// balance is owed money and a negative balance owes money. The result is
// deterministic for a given input and empty when every balance is zero.
// The input map is not modified.
func Simplify(balances map[uuid.UUID]int64) []Transaction {
	var creditors, debtors partyHeap

	for id, amount := range balances {
		switch {
		case amount > 0:
			creditors = append(creditors, party{id: id, remaining: amount})
		case amount < 0:
			debtors = append(debtors, party{id: id, remaining: -amount})
		}
	}

	heap.Init(&creditors)
	heap.Init(&debtors)

	var txs []Transaction

	for creditors.Len() > 0 && debtors.Len() > 0 {
		c := heap.Pop(&creditors).(party)
		d := heap.Pop(&debtors).(party)

		amount := min(c.remaining, d.remaining)
		txs = append(txs, Transaction{From: d.id, To: c.id, Amount: amount})

		c.remaining -= amount
		d.remaining -= amount

		if c.remaining > 0 {
			heap.Push(&creditors, c)
		}

		if d.remaining > 0 {
			heap.Push(&debtors, d)
		}
	}

	return txs
}

// Apply returns the balances left after every transaction is paid.
// Settling the output of Simplify yields all zeros.
func Apply(balances map[uuid.UUID]int64, txs []Transaction) map[uuid.UUID]int64 {
	out := make(map[uuid.UUID]int64, len(balances))
	for id, v := range balances {
		out[id] = v
	}

	for _, tx := range txs {
		out[tx.From] += tx.Amount
		out[tx.To] -= tx.Amount
	}

	return out
}
