package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=export
type Ledger interface {
	List(ctx context.Context, groupID uuid.UUID) ([]ledger.Expense, error)
}

type Balances interface {
	GroupBalances(ctx context.Context, groupID uuid.UUID) (*balance.GroupReport, error)
}

// Row is one expense in a statement. Shares line up with Statement.Members.
type Row struct {
	Date        time.Time
	Description string
	Payer       string
	Amount      int64
	Policy      split.Policy
	Shares      []int64
}

// Statement is a printable account of a group's expenses and balances.
type Statement struct {
	GroupID   uuid.UUID
	GroupName string
	Members   []balance.MemberBalance
	Rows      []Row
	Report    *balance.GroupReport
}

// Service builds group statements.
type Service struct {
	ledger   Ledger
	balances Balances
	money    *money.Formatter
}

func NewService(expenses Ledger, balances Balances, formatter *money.Formatter) *Service {
	return &Service{ledger: expenses, balances: balances, money: formatter}
}

// Statement collects the group's expenses in creation order together with
// its current balances and suggested payments.
func (s *Service) Statement(ctx context.Context, groupID uuid.UUID) (*Statement, error) {
	report, err := s.balances.GroupBalances(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("computing balances: %w", err)
	}

	names := make(map[uuid.UUID]string, len(report.Balances))
	for _, b := range report.Balances {
		names[b.MemberID] = b.Name
	}

	expenses, err := s.ledger.List(ctx, groupID)
	if err != nil {
		return nil, err
	}

	st := &Statement{
		GroupID:   report.GroupID,
		GroupName: report.GroupName,
		Members:   report.Balances,
		Rows:      make([]Row, 0, len(expenses)),
		Report:    report,
	}

	for _, e := range expenses {
		row := Row{
			Date:        e.CreatedAt,
			Description: e.Description,
			Payer:       names[e.PayerID],
			Amount:      e.Amount,
			Policy:      e.Policy(),
			Shares:      make([]int64, len(report.Balances)),
		}

		for i, b := range report.Balances {
			row.Shares[i] = e.Shares[b.MemberID]
		}

		st.Rows = append(st.Rows, row)
	}

	return st, nil
}

// WriteCSV writes one header line and one line per expense, followed by a
// balance line per member. Amounts are plain major-unit decimals.
func (s *Service) WriteCSV(w io.Writer, st *Statement) error {
	cw := csv.NewWriter(w)

	header := []string{"date", "description", "payer", "amount", "split"}
	for _, m := range st.Members {
		header = append(header, m.Name)
	}

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, row := range st.Rows {
		record := []string{
			row.Date.Format("2006-01-02"),
			row.Description,
			row.Payer,
			s.money.Plain(row.Amount),
			string(row.Policy),
		}

		for _, share := range row.Shares {
			record = append(record, s.money.Plain(share))
		}

		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	balances := []string{"", "balance", "", s.money.Plain(st.Report.TotalSpent), ""}
	for _, m := range st.Members {
		balances = append(balances, s.money.Plain(m.Amount))
	}

	if err := cw.Write(balances); err != nil {
		return fmt.Errorf("writing balances: %w", err)
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// Summary renders the statement's balances and suggested payments as text.
func (s *Service) Summary(st *Statement) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s: %d expenses, %s total\n", st.GroupName, len(st.Rows), s.money.Format(st.Report.TotalSpent))

	names := make(map[uuid.UUID]string, len(st.Members))

	for _, m := range st.Members {
		names[m.MemberID] = m.Name

		switch {
		case m.Amount > 0:
			fmt.Fprintf(&sb, "* %s is owed %s\n", m.Name, s.money.Format(m.Amount))
		case m.Amount < 0:
			fmt.Fprintf(&sb, "* %s owes %s\n", m.Name, s.money.Format(-m.Amount))
		default:
			fmt.Fprintf(&sb, "* %s is settled up\n", m.Name)
		}
	}

	if len(st.Report.Settlements) == 0 {
		sb.WriteString("Nothing to settle.\n")
		return sb.String()
	}

	sb.WriteString("Suggested payments:\n")

	for _, tx := range st.Report.Settlements {
		fmt.Fprintf(&sb, "* %s -> %s: %s\n", names[tx.From], names[tx.To], s.money.Format(tx.Amount))
	}

	return sb.String()
}
