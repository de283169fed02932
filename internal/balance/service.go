package balance

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/settle"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=balance
type Directory interface {
	GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error)
	GetMember(ctx context.Context, id uuid.UUID) (*group.Member, error)
	GroupsOf(ctx context.Context, memberID uuid.UUID) ([]*group.Group, error)
}

type Ledger interface {
	List(ctx context.Context, groupID uuid.UUID) ([]ledger.Expense, error)
}

type Service struct {
	directory Directory
	ledger    Ledger
}

func NewService(directory Directory, expenses Ledger) *Service {
	return &Service{directory: directory, ledger: expenses}
}

type MemberBalance struct {
	MemberID uuid.UUID
	Name     string
	Amount   int64
}

type GroupReport struct {
	GroupID     uuid.UUID
	GroupName   string
	Balances    []MemberBalance
	Settlements []settle.Transaction
	TotalSpent  int64
}

type GroupBalance struct {
	GroupID   uuid.UUID
	GroupName string
	Amount    int64
}

type MemberReport struct {
	MemberID   uuid.UUID
	MemberName string
	Total      int64
	PerGroup   []GroupBalance
}

// GroupBalances reports every member's net position in the group together
// with the payments that would settle it. Balances follow membership order;
// former members that still appear in the history come last, by id.
func (s *Service) GroupBalances(ctx context.Context, groupID uuid.UUID) (*GroupReport, error) {
	grp, err := s.directory.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("getting group: %w", err)
	}

	expenses, err := s.ledger.List(ctx, groupID)
	if err != nil {
		return nil, err
	}

	balances := Compute(grp.MemberIDs(), expenses)

	report := &GroupReport{
		GroupID:     grp.ID,
		GroupName:   grp.Name,
		Balances:    make([]MemberBalance, 0, len(balances)),
		Settlements: settle.Simplify(balances),
	}

	for _, e := range expenses {
		report.TotalSpent += e.Amount
	}

	for _, m := range grp.Members {
		report.Balances = append(report.Balances, MemberBalance{MemberID: m.ID, Name: m.Name, Amount: balances[m.ID]})
	}

	var former []uuid.UUID

	for id := range balances {
		if !grp.HasMember(id) {
			former = append(former, id)
		}
	}

	slices.SortFunc(former, func(a, b uuid.UUID) int {
		return bytes.Compare(a[:], b[:])
	})

	for _, id := range former {
		m, err := s.directory.GetMember(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("getting former member %s: %w", id, err)
		}

		report.Balances = append(report.Balances, MemberBalance{MemberID: id, Name: m.Name, Amount: balances[id]})
	}

	return report, nil
}

// MemberBalances sums the member's net position across every group they
// belong to. Groups are aggregated concurrently.
func (s *Service) MemberBalances(ctx context.Context, memberID uuid.UUID) (*MemberReport, error) {
	member, err := s.directory.GetMember(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("getting member: %w", err)
	}

	groups, err := s.directory.GroupsOf(ctx, memberID)
	if err != nil {
		return nil, fmt.Errorf("listing member groups: %w", err)
	}

	perGroup := make([]GroupBalance, len(groups))

	g, gctx := errgroup.WithContext(ctx)

	for i, grp := range groups {
		g.Go(func() error {
			expenses, err := s.ledger.List(gctx, grp.ID)
			if err != nil {
				return fmt.Errorf("group %s: %w", grp.ID, err)
			}

			balances := Compute(grp.MemberIDs(), expenses)
			perGroup[i] = GroupBalance{GroupID: grp.ID, GroupName: grp.Name, Amount: balances[memberID]}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &MemberReport{
		MemberID:   member.ID,
		MemberName: member.Name,
		PerGroup:   perGroup,
	}

	for _, gb := range perGroup {
		report.Total += gb.Amount
	}

	return report, nil
}
