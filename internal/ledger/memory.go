package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryJournal keeps expenses in process memory. It is the default journal
// and can be shared by several ledgers.
type MemoryJournal struct {
	mu     sync.RWMutex
	groups map[uuid.UUID][]Expense
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{groups: make(map[uuid.UUID][]Expense)}
}

func (j *MemoryJournal) SaveExpense(_ context.Context, e *Expense) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.groups[e.GroupID] = append(j.groups[e.GroupID], e.clone())

	return nil
}

func (j *MemoryJournal) ListExpenses(_ context.Context, groupID uuid.UUID) ([]*Expense, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	stored := j.groups[groupID]

	out := make([]*Expense, len(stored))
	for i, e := range stored {
		c := e.clone()
		out[i] = &c
	}

	return out, nil
}
