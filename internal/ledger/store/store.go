package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

// Store is the Postgres-backed ledger journal.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveExpense writes the expense and its per-member split rows in one transaction.
func (s *Store) SaveExpense(ctx context.Context, e *ledger.Expense) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO expenses (id, group_id, description, amount, payer_id, split_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := dbTx.ExecContext(ctx, query,
		e.ID, e.GroupID, e.Description, e.Amount, e.PayerID, string(e.Policy()), e.CreatedAt,
	); err != nil {
		return fmt.Errorf("inserting expense: %w", err)
	}

	splitQuery := `INSERT INTO expense_splits (expense_id, member_id, raw_value, share) VALUES ($1, $2, $3, $4)`
	for memberID, share := range e.Shares {
		if _, err := dbTx.ExecContext(ctx, splitQuery, e.ID, memberID, rawValue(e.Split, memberID), share); err != nil {
			return fmt.Errorf("inserting split for member %s: %w", memberID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// rawValue is the caller-supplied entry for member, or NULL for equal splits.
func rawValue(in split.Input, memberID uuid.UUID) decimal.NullDecimal {
	switch in := in.(type) {
	case split.PercentageInput:
		if v, ok := in.Entries[memberID]; ok {
			return decimal.NewNullDecimal(v)
		}
	case split.ExactInput:
		if v, ok := in.Entries[memberID]; ok {
			return decimal.NewNullDecimal(decimal.NewFromInt(v))
		}
	}

	return decimal.NullDecimal{}
}

// ListExpenses returns the group's stored expenses in the order they were recorded.
func (s *Store) ListExpenses(ctx context.Context, groupID uuid.UUID) ([]*ledger.Expense, error) {
	query := `
		SELECT id, group_id, description, amount, payer_id, split_type, created_at
		FROM expenses
		WHERE group_id = $1
		ORDER BY seq ASC
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var (
		expenses = []*ledger.Expense{}
		byID     = make(map[uuid.UUID]*ledger.Expense)
		policies = make(map[uuid.UUID]split.Policy)
	)

	for rows.Next() {
		var (
			e         ledger.Expense
			splitType string
		)

		if err := rows.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PayerID, &splitType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		policy, err := split.ParsePolicy(splitType)
		if err != nil {
			return nil, fmt.Errorf("expense %s: %w", e.ID, err)
		}

		e.Shares = make(split.Shares)
		e.CreatedAt = e.CreatedAt.UTC()

		expenses = append(expenses, &e)
		byID[e.ID] = &e
		policies[e.ID] = policy
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	if err := s.attachSplits(ctx, groupID, byID, policies); err != nil {
		return nil, err
	}

	return expenses, nil
}

func (s *Store) attachSplits(ctx context.Context, groupID uuid.UUID, byID map[uuid.UUID]*ledger.Expense, policies map[uuid.UUID]split.Policy) error {
	if len(byID) == 0 {
		return nil
	}

	query := `
		SELECT s.expense_id, s.member_id, s.raw_value, s.share
		FROM expense_splits s
		JOIN expenses e ON e.id = s.expense_id
		WHERE e.group_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return fmt.Errorf("listing expense splits: %w", err)
	}
	defer rows.Close()

	percentages := make(map[uuid.UUID]map[uuid.UUID]decimal.Decimal)
	exacts := make(map[uuid.UUID]map[uuid.UUID]int64)

	for rows.Next() {
		var (
			expenseID, memberID uuid.UUID
			raw                 decimal.NullDecimal
			share               int64
		)

		if err := rows.Scan(&expenseID, &memberID, &raw, &share); err != nil {
			return fmt.Errorf("scanning expense split: %w", err)
		}

		e, ok := byID[expenseID]
		if !ok {
			continue
		}

		e.Shares[memberID] = share

		if !raw.Valid {
			continue
		}

		switch policies[expenseID] {
		case split.PolicyPercentage:
			if percentages[expenseID] == nil {
				percentages[expenseID] = make(map[uuid.UUID]decimal.Decimal)
			}

			percentages[expenseID][memberID] = raw.Decimal
		case split.PolicyExact:
			if exacts[expenseID] == nil {
				exacts[expenseID] = make(map[uuid.UUID]int64)
			}

			exacts[expenseID][memberID] = raw.Decimal.IntPart()
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating expense split rows: %w", err)
	}

	for id, e := range byID {
		switch policies[id] {
		case split.PolicyPercentage:
			e.Split = split.PercentageInput{Entries: percentages[id]}
		case split.PolicyExact:
			e.Split = split.ExactInput{Entries: exacts[id]}
		default:
			e.Split = split.EqualInput{}
		}
	}

	return nil
}
