package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

var (
	ErrUnknownPayer   = errors.New("payer is not a member of the group")
	ErrAmbiguousPayer = errors.New("payer name matches more than one member")
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=importer
type Directory interface {
	GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error)
}

type Ledger interface {
	Append(ctx context.Context, params ledger.CreateParams) (*ledger.Expense, error)
}

// RowError is a rejected line of an import file.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

type Result struct {
	Imported []ledger.Expense
	Failed   []*RowError
}

type Service struct {
	directory Directory
	ledger    Ledger
	money     *money.Formatter
}

func NewService(directory Directory, expenses Ledger, fm *money.Formatter) *Service {
	return &Service{directory: directory, ledger: expenses, money: fm}
}

// Import appends every line of r to the group as an equally split expense,
// in file order. Lines that fail validation are reported in the result and
// skipped; any other failure stops the import.
func (s *Service) Import(ctx context.Context, groupID uuid.UUID, r io.Reader) (*Result, error) {
	g, err := s.directory.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	rows, err := Parse(r)
	if err != nil {
		return nil, err
	}

	payers := newPayerIndex(g.Members)
	result := &Result{Imported: []ledger.Expense{}, Failed: []*RowError{}}

	for _, row := range rows {
		e, err := s.importRow(ctx, groupID, payers, row)
		if err == nil {
			result.Imported = append(result.Imported, *e)
			continue
		}

		if !rejected(err) {
			return nil, fmt.Errorf("line %d: %w", row.Line, err)
		}

		result.Failed = append(result.Failed, &RowError{Line: row.Line, Err: err})
	}

	slog.InfoContext(ctx, "expenses imported",
		"group_id", groupID, "imported", len(result.Imported), "failed", len(result.Failed))

	return result, nil
}

func (s *Service) importRow(ctx context.Context, groupID uuid.UUID, payers payerIndex, row Row) (*ledger.Expense, error) {
	amount, err := s.money.Parse(row.Amount)
	if err != nil {
		return nil, err
	}

	payerID, err := payers.resolve(row.Payer)
	if err != nil {
		return nil, err
	}

	return s.ledger.Append(ctx, ledger.CreateParams{
		GroupID:     groupID,
		Description: row.Description,
		Amount:      amount,
		PayerID:     payerID,
		Split:       split.EqualInput{},
	})
}

// rejected reports whether err is about the line's content rather than the system.
func rejected(err error) bool {
	var verr *split.ValidationError

	return errors.As(err, &verr) ||
		errors.Is(err, money.ErrInvalidAmount) ||
		errors.Is(err, ledger.ErrEmptyDescription) ||
		errors.Is(err, ErrUnknownPayer) ||
		errors.Is(err, ErrAmbiguousPayer)
}

// payerIndex resolves a payer cell by member email or name, ignoring case.
type payerIndex map[string][]uuid.UUID

func newPayerIndex(members []group.Member) payerIndex {
	idx := make(payerIndex)

	for _, m := range members {
		idx.add(m.Name, m.ID)

		if m.Email != "" {
			idx.add(m.Email, m.ID)
		}
	}

	return idx
}

func (p payerIndex) add(key string, id uuid.UUID) {
	key = strings.ToLower(strings.TrimSpace(key))
	p[key] = append(p[key], id)
}

func (p payerIndex) resolve(cell string) (uuid.UUID, error) {
	ids := p[strings.ToLower(strings.TrimSpace(cell))]

	switch len(ids) {
	case 0:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrUnknownPayer, cell)
	case 1:
		return ids[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%w: %q", ErrAmbiguousPayer, cell)
	}
}
