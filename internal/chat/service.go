package chat

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
)

var ErrEmptyMessage = errors.New("message can't be empty")

const (
	recentExpenses = 10

	systemPrompt = "You are a helpful assistant for a shared expense application. " +
		"Provide accurate and helpful responses based on the expense data provided."
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=chat
type Directory interface {
	ListMembers(ctx context.Context) ([]*group.Member, error)
	ListGroups(ctx context.Context) ([]*group.Group, error)
}

type Ledger interface {
	List(ctx context.Context, groupID uuid.UUID) ([]ledger.Expense, error)
}

type Balances interface {
	GroupBalances(ctx context.Context, groupID uuid.UUID) (*balance.GroupReport, error)
}

type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
	Model() string
}

type Service struct {
	directory Directory
	ledger    Ledger
	balances  Balances
	completer Completer
	money     *money.Formatter
}

func NewService(directory Directory, expenses Ledger, balances Balances, completer Completer, formatter *money.Formatter) *Service {
	return &Service{
		directory: directory,
		ledger:    expenses,
		balances:  balances,
		completer: completer,
		money:     formatter,
	}
}

// Summary describes the data an answer was based on.
type Summary struct {
	Members    int
	Groups     int
	Expenses   int
	Balances   int
	TotalSpent int64
	Model      string
}

type Reply struct {
	Text    string
	Success bool
	Context Summary
}

// Ask answers a free-form question about the current expense data. Failures
// of the chat provider are reported in the reply text, not as errors.
func (s *Service) Ask(ctx context.Context, question string, memberID *uuid.UUID) (*Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyMessage
	}

	snap, err := s.snapshot(ctx, memberID)
	if err != nil {
		return nil, err
	}

	reply := &Reply{
		Context: Summary{
			Members:    len(snap.members),
			Groups:     len(snap.groups),
			Expenses:   len(snap.expenses),
			Balances:   len(snap.balances),
			TotalSpent: snap.totalSpent,
			Model:      s.completer.Model(),
		},
	}

	answer, err := s.completer.Complete(ctx, systemPrompt, s.prompt(snap, question))
	if err != nil {
		slog.WarnContext(ctx, "chat completion failed", "error", err)
		reply.Text = friendly(err)

		return reply, nil
	}

	reply.Text = answer
	reply.Success = true

	return reply, nil
}

func friendly(err error) string {
	switch {
	case errors.Is(err, ErrNoToken):
		return "I need an API token to help you. Please set the CHAT_TOKEN environment variable."
	case errors.Is(err, ErrUnauthorized):
		return "Authentication failed. Please check your API token."
	case errors.Is(err, ErrRateLimited):
		return "Rate limit exceeded. Please try again in a moment."
	case errors.Is(err, ErrUnavailable):
		return "The AI model is currently unavailable. Please try again in a few seconds."
	case errors.Is(err, ErrEmptyResponse):
		return "I couldn't generate a proper response. Please try rephrasing your question."
	default:
		return "I encountered a technical issue. Please try again later."
	}
}

type expenseLine struct {
	ledger.Expense
	groupName string
	payerName string
}

type balanceLine struct {
	groupName string
	name      string
	amount    int64
}

type settlementLine struct {
	groupName string
	from, to  string
	amount    int64
}

type snapshot struct {
	asker       *group.Member
	members     []*group.Member
	groups      []*group.Group
	expenses    []expenseLine
	balances    []balanceLine
	settlements []settlementLine
	totalSpent  int64
}

func (s *Service) snapshot(ctx context.Context, memberID *uuid.UUID) (*snapshot, error) {
	members, err := s.directory.ListMembers(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	groups, err := s.directory.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}

	names := make(map[uuid.UUID]string, len(members))
	for _, m := range members {
		names[m.ID] = m.Name
	}

	snap := &snapshot{members: members, groups: groups}

	if memberID != nil {
		idx := slices.IndexFunc(members, func(m *group.Member) bool { return m.ID == *memberID })
		if idx < 0 {
			return nil, fmt.Errorf("member %s: %w", *memberID, group.ErrNotFound)
		}

		snap.asker = members[idx]
	}

	for _, g := range groups {
		expenses, err := s.ledger.List(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("expenses for group %s: %w", g.ID, err)
		}

		for _, e := range expenses {
			snap.totalSpent += e.Amount
			snap.expenses = append(snap.expenses, expenseLine{Expense: e, groupName: g.Name, payerName: names[e.PayerID]})
		}

		report, err := s.balances.GroupBalances(ctx, g.ID)
		if err != nil {
			return nil, fmt.Errorf("balances for group %s: %w", g.ID, err)
		}

		for _, b := range report.Balances {
			if b.Amount != 0 {
				snap.balances = append(snap.balances, balanceLine{groupName: g.Name, name: b.Name, amount: b.Amount})
			}
		}

		for _, tx := range report.Settlements {
			snap.settlements = append(snap.settlements, settlementLine{
				groupName: g.Name, from: names[tx.From], to: names[tx.To], amount: tx.Amount,
			})
		}
	}

	return snap, nil
}

func (s *Service) prompt(snap *snapshot, question string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "USER QUESTION: %q\n", question)

	if snap.asker != nil {
		fmt.Fprintf(&sb, "ASKED BY: %s\n", snap.asker.Name)
	}

	fmt.Fprintf(&sb, "\n=== MEMBERS ===\nTotal Members: %d\n", len(snap.members))

	for _, m := range snap.members {
		fmt.Fprintf(&sb, "• %s\n", m.Name)
	}

	fmt.Fprintf(&sb, "\n=== GROUPS ===\nTotal Groups: %d\n", len(snap.groups))

	for _, g := range snap.groups {
		memberNames := make([]string, len(g.Members))
		for i, m := range g.Members {
			memberNames[i] = m.Name
		}

		fmt.Fprintf(&sb, "• '%s' (%d members): %s\n", g.Name, len(g.Members), strings.Join(memberNames, ", "))
	}

	fmt.Fprintf(&sb, "\n=== EXPENSES ===\nTotal Expenses: %d\n", len(snap.expenses))
	fmt.Fprintf(&sb, "Total Amount Spent: %s\n", s.money.Format(snap.totalSpent))

	if n := int64(len(snap.expenses)); n > 0 {
		fmt.Fprintf(&sb, "Average Expense: %s\n", s.money.Format(snap.totalSpent/n))
	}

	recent := slices.Clone(snap.expenses)
	slices.SortStableFunc(recent, func(a, b expenseLine) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	for _, e := range recent[:min(len(recent), recentExpenses)] {
		fmt.Fprintf(&sb, "• %s: %s paid by %s in '%s' on %s (%s split)\n",
			e.Description, s.money.Format(e.Amount), e.payerName, e.groupName, e.CreatedAt.Format("2006-01-02 15:04"), e.Policy())
	}

	if len(recent) > recentExpenses {
		fmt.Fprintf(&sb, "... and %d more expenses\n", len(recent)-recentExpenses)
	}

	sb.WriteString("\n=== CURRENT BALANCES ===\n")

	if len(snap.balances) == 0 {
		sb.WriteString("All balances are settled!\n")
	}

	for _, b := range snap.balances {
		status := "owes"
		if b.amount > 0 {
			status = "is owed"
		}

		fmt.Fprintf(&sb, "• %s %s %s in '%s'\n", b.name, status, s.money.Format(abs(b.amount)), b.groupName)
	}

	if len(snap.settlements) > 0 {
		sb.WriteString("\n=== SUGGESTED PAYMENTS ===\n")

		for _, tx := range snap.settlements {
			fmt.Fprintf(&sb, "• %s pays %s %s in '%s'\n", tx.from, tx.to, s.money.Format(tx.amount), tx.groupName)
		}
	}

	s.writeStatistics(&sb, snap)

	sb.WriteString(`
=== INSTRUCTIONS ===
Answer the question using only the data above. Use exact names and numbers,
be conversational and precise, and express amounts in the currency shown.
If the question is unclear, ask for clarification and describe what you can help with.

ANSWER:`)

	return sb.String()
}

type tally struct {
	count  int
	amount int64
}

func (s *Service) writeStatistics(sb *strings.Builder, snap *snapshot) {
	if len(snap.expenses) == 0 {
		return
	}

	byPayer := make(map[string]*tally)
	byGroup := make(map[string]*tally)

	for _, e := range snap.expenses {
		count(byPayer, e.payerName, e.Amount)
		count(byGroup, e.groupName, e.Amount)
	}

	sb.WriteString("\n=== STATISTICS ===\n")

	name, t := top(byPayer, func(t *tally) int64 { return int64(t.count) })
	fmt.Fprintf(sb, "• Most Active Payer: %s (%d expenses)\n", name, t.count)

	name, t = top(byPayer, func(t *tally) int64 { return t.amount })
	fmt.Fprintf(sb, "• Highest Spender: %s (%s)\n", name, s.money.Format(t.amount))

	name, t = top(byGroup, func(t *tally) int64 { return int64(t.count) })
	fmt.Fprintf(sb, "• Most Active Group: '%s' (%d expenses)\n", name, t.count)

	name, t = top(byGroup, func(t *tally) int64 { return t.amount })
	fmt.Fprintf(sb, "• Group with Highest Expenses: '%s' (%s)\n", name, s.money.Format(t.amount))
}

func count(m map[string]*tally, key string, amount int64) {
	t, ok := m[key]
	if !ok {
		t = &tally{}
		m[key] = t
	}

	t.count++
	t.amount += amount
}

// top returns the entry with the largest key, ties broken by name.
func top(m map[string]*tally, key func(*tally) int64) (string, *tally) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	best := slices.MaxFunc(names, func(a, b string) int {
		if c := cmp.Compare(key(m[a]), key(m[b])); c != 0 {
			return c
		}

		return cmp.Compare(b, a)
	})

	return best, m[best]
}

func abs(v int64) int64 {
	if v < 0 {
		return -v
	}

	return v
}
