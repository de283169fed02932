package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

var ErrEmptyDescription = errors.New("description can't be empty")

//go:generate mockgen -source=ledger.go -destination=ledger_mock.go -package=ledger
type Membership interface {
	MembersOf(ctx context.Context, groupID uuid.UUID) ([]group.Member, error)
}

// Journal durably records expenses. Ledgers read through it, so every
// ledger sharing a journal sees the same history.
type Journal interface {
	SaveExpense(ctx context.Context, e *Expense) error
	// ListExpenses returns the group's expenses in the order they were recorded.
	ListExpenses(ctx context.Context, groupID uuid.UUID) ([]*Expense, error)
}

// Publisher announces newly recorded expenses.
type Publisher interface {
	PublishExpenseCreated(ctx context.Context, e Expense) error
}

type Option func(*Ledger)

func WithJournal(j Journal) Option {
	return func(l *Ledger) {
		l.journal = j
	}
}

func WithPublisher(p Publisher) Option {
	return func(l *Ledger) {
		l.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// Ledger is the append-only, per-group record of expenses. Appends to one
// group are serialized; reads copy a consistent snapshot.
type Ledger struct {
	members   Membership
	journal   Journal
	publisher Publisher
	now       func() time.Time

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.RWMutex
}

func New(members Membership, opts ...Option) *Ledger {
	l := &Ledger{
		members: members,
		journal: NewMemoryJournal(),
		now:     time.Now,
		locks:   make(map[uuid.UUID]*sync.RWMutex),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}
// Append validates params against the group's current members and records
// the expense. A rejected expense leaves the ledger untouched.
func (l *Ledger) Append(ctx context.Context, params CreateParams) (*Expense, error) {
	description := strings.TrimSpace(params.Description)
	if description == "" {
		return nil, ErrEmptyDescription
	}

	members, err := l.members.MembersOf(ctx, params.GroupID)
	if err != nil {
		return nil, fmt.Errorf("looking up group members: %w", err)
	}

	ids := make([]uuid.UUID, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}

	shares, err := split.Compute(params.Amount, ids, params.Split)
	if err != nil {
		return nil, err
	}

	if !slices.Contains(ids, params.PayerID) {
		return nil, &split.ValidationError{Kind: split.KindUnknownMember, Member: params.PayerID}
	}

	in := params.Split
	if in == nil {
		in = split.EqualInput{}
	}

	e := Expense{
		ID:          uuid.New(),
		GroupID:     params.GroupID,
		Description: description,
		Amount:      params.Amount,
		PayerID:     params.PayerID,
		Split:       in,
		Shares:      shares,
		CreatedAt:   l.now().UTC(),
	}.clone()

	if err := l.commit(ctx, e); err != nil {
		return nil, err
	}

	if l.publisher != nil {
		if err := l.publisher.PublishExpenseCreated(ctx, e.clone()); err != nil {
			slog.ErrorContext(ctx, "failed to publish expense event", "error", err, "expense_id", e.ID)
		}
	}

	out := e.clone()

	return &out, nil
}

func (l *Ledger) commit(ctx context.Context, e Expense) error {
	lock := l.lock(e.GroupID)

	lock.Lock()
	defer lock.Unlock()

	if err := l.journal.SaveExpense(ctx, &e); err != nil {
		return fmt.Errorf("saving expense: %w", err)
	}

	return nil
}

func (l *Ledger) lock(groupID uuid.UUID) *sync.RWMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[groupID]
	if !ok {
		lock = &sync.RWMutex{}
		l.locks[groupID] = lock
	}

	return lock
}

// List returns a snapshot of the group's expenses in creation order, read
// from the journal. The snapshot is a copy; later appends do not affect it.
func (l *Ledger) List(ctx context.Context, groupID uuid.UUID) ([]Expense, error) {
	lock := l.lock(groupID)

	lock.RLock()
	stored, err := l.journal.ListExpenses(ctx, groupID)
	lock.RUnlock()

	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}

	out := make([]Expense, len(stored))
	for i, e := range stored {
		out[i] = e.clone()
	}

	return out, nil
}
