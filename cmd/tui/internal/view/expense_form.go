package view

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

// expenseFields holds the form bindings. Models must keep it by pointer.
type expenseFields struct {
	description string
	amount      string
	payer       string
}

func newExpenseForm(g *group.Group, fm *money.Formatter, fields *expenseFields) *huh.Form {
	options := make([]huh.Option[string], len(g.Members))
	for i, m := range g.Members {
		options[i] = huh.NewOption(m.Name, m.ID.String())
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("description").
				Title("Description").
				Value(&fields.description).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("description cannot be empty")
					}

					return nil
				}),

			huh.NewInput().
				Key("amount").
				Title("Amount").
				Description("Split equally between all members").
				Placeholder("0.00").
				Value(&fields.amount).
				Validate(func(s string) error {
					v, err := fm.Parse(s)
					if err != nil {
						return err
					}

					if v <= 0 {
						return errors.New("amount must be positive")
					}

					return nil
				}),

			huh.NewSelect[string]().
				Key("payer").
				Title("Paid by").
				Options(options...).
				Value(&fields.payer),
		),
	).WithWidth(45).WithShowHelp(false)
}

func (f *expenseFields) params(groupID uuid.UUID, fm *money.Formatter) (ledger.CreateParams, error) {
	amount, err := fm.Parse(f.amount)
	if err != nil {
		return ledger.CreateParams{}, err
	}

	payer, err := uuid.Parse(f.payer)
	if err != nil {
		return ledger.CreateParams{}, err
	}

	return ledger.CreateParams{
		GroupID:     groupID,
		Description: f.description,
		Amount:      amount,
		PayerID:     payer,
		Split:       split.EqualInput{},
	}, nil
}
