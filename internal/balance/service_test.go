package balance_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/settle"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

func TestService_GroupBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := balance.NewMockDirectory(ctrl)
	expenses := balance.NewMockLedger(ctrl)

	groupID := uuid.New()
	grp := &group.Group{
		ID:   groupID,
		Name: "Trip",
		Members: []group.Member{
			{ID: c, Name: "Carol"},
			{ID: a, Name: "Alice"},
			{ID: b, Name: "Bob"},
		},
	}

	directory.EXPECT().GetGroup(gomock.Any(), groupID).Return(grp, nil)
	directory.EXPECT().GetMember(gomock.Any(), d).Return(&group.Member{ID: d, Name: "Dave"}, nil)
	expenses.EXPECT().List(gomock.Any(), groupID).Return([]ledger.Expense{
		expense(a, 300, split.Shares{a: 100, b: 100, c: 100}),
		expense(d, 40, split.Shares{d: 20, c: 20}),
	}, nil)

	svc := balance.NewService(directory, expenses)

	got, err := svc.GroupBalances(context.Background(), groupID)
	require.NoError(t, err)

	assert.Equal(t, "Trip", got.GroupName)
	assert.Equal(t, int64(340), got.TotalSpent)
	assert.Equal(t, []balance.MemberBalance{
		{MemberID: c, Name: "Carol", Amount: -120},
		{MemberID: a, Name: "Alice", Amount: 200},
		{MemberID: b, Name: "Bob", Amount: -100},
		{MemberID: d, Name: "Dave", Amount: 20},
	}, got.Balances)
	assert.Equal(t, []settle.Transaction{
		{From: c, To: a, Amount: 120},
		{From: b, To: a, Amount: 80},
		{From: b, To: d, Amount: 20},
	}, got.Settlements)
}

func TestService_GroupBalances_NoExpenses(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := balance.NewMockDirectory(ctrl)
	expenses := balance.NewMockLedger(ctrl)

	groupID := uuid.New()
	directory.EXPECT().GetGroup(gomock.Any(), groupID).Return(&group.Group{
		ID: groupID, Name: "Flat", Members: []group.Member{{ID: a, Name: "Alice"}},
	}, nil)
	expenses.EXPECT().List(gomock.Any(), groupID).Return([]ledger.Expense{}, nil)

	got, err := balance.NewService(directory, expenses).GroupBalances(context.Background(), groupID)
	require.NoError(t, err)

	assert.Equal(t, []balance.MemberBalance{{MemberID: a, Name: "Alice", Amount: 0}}, got.Balances)
	assert.Empty(t, got.Settlements)
	assert.Zero(t, got.TotalSpent)
}

func TestService_GroupBalances_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := balance.NewMockDirectory(ctrl)
	directory.EXPECT().GetGroup(gomock.Any(), gomock.Any()).Return(nil, group.ErrNotFound)

	_, err := balance.NewService(directory, balance.NewMockLedger(ctrl)).GroupBalances(context.Background(), uuid.New())
	assert.ErrorIs(t, err, group.ErrNotFound)
}

func TestService_MemberBalances(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := balance.NewMockDirectory(ctrl)
	expenses := balance.NewMockLedger(ctrl)

	trip := &group.Group{ID: uuid.New(), Name: "Trip", Members: []group.Member{{ID: a}, {ID: b}}}
	flat := &group.Group{ID: uuid.New(), Name: "Flat", Members: []group.Member{{ID: a}, {ID: c}}}
	quiet := &group.Group{ID: uuid.New(), Name: "Quiet", Members: []group.Member{{ID: a}}}

	directory.EXPECT().GetMember(gomock.Any(), a).Return(&group.Member{ID: a, Name: "Alice"}, nil)
	directory.EXPECT().GroupsOf(gomock.Any(), a).Return([]*group.Group{trip, flat, quiet}, nil)

	expenses.EXPECT().List(gomock.Any(), trip.ID).Return([]ledger.Expense{expense(a, 100, split.Shares{a: 50, b: 50})}, nil)
	expenses.EXPECT().List(gomock.Any(), flat.ID).Return([]ledger.Expense{expense(c, 80, split.Shares{a: 40, c: 40})}, nil)
	expenses.EXPECT().List(gomock.Any(), quiet.ID).Return(nil, nil)

	got, err := balance.NewService(directory, expenses).MemberBalances(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, "Alice", got.MemberName)
	assert.Equal(t, int64(10), got.Total)
	assert.Equal(t, []balance.GroupBalance{
		{GroupID: trip.ID, GroupName: "Trip", Amount: 50},
		{GroupID: flat.ID, GroupName: "Flat", Amount: -40},
		{GroupID: quiet.ID, GroupName: "Quiet", Amount: 0},
	}, got.PerGroup)
}

func TestService_MemberBalances_UnknownMember(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	directory := balance.NewMockDirectory(ctrl)
	directory.EXPECT().GetMember(gomock.Any(), gomock.Any()).Return(nil, group.ErrNotFound)

	_, err := balance.NewService(directory, balance.NewMockLedger(ctrl)).MemberBalances(context.Background(), uuid.New())
	assert.ErrorIs(t, err, group.ErrNotFound)
}
