package chat_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/divvy/internal/balance"
	"github.com/MrJamesThe3rd/divvy/internal/chat"
	"github.com/MrJamesThe3rd/divvy/internal/group"
	"github.com/MrJamesThe3rd/divvy/internal/ledger"
	"github.com/MrJamesThe3rd/divvy/internal/money"
	"github.com/MrJamesThe3rd/divvy/internal/settle"
	"github.com/MrJamesThe3rd/divvy/internal/split"
)

type fixture struct {
	directory *chat.MockDirectory
	ledger    *chat.MockLedger
	balances  *chat.MockBalances
	completer *chat.MockCompleter
	svc       *chat.Service
}

var (
	alice = &group.Member{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000a"), Name: "Alice"}
	bob   = &group.Member{ID: uuid.MustParse("00000000-0000-0000-0000-00000000000b"), Name: "Bob"}
	trip  = &group.Group{ID: uuid.MustParse("10000000-0000-0000-0000-000000000001"), Name: "Goa Trip", Members: []group.Member{*alice, *bob}}
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	formatter, err := money.NewFormatter("INR")
	require.NoError(t, err)

	f := &fixture{
		directory: chat.NewMockDirectory(ctrl),
		ledger:    chat.NewMockLedger(ctrl),
		balances:  chat.NewMockBalances(ctrl),
		completer: chat.NewMockCompleter(ctrl),
	}
	f.svc = chat.NewService(f.directory, f.ledger, f.balances, f.completer, formatter)

	return f
}

func (f *fixture) expectData() {
	f.directory.EXPECT().ListMembers(gomock.Any()).Return([]*group.Member{alice, bob}, nil)
	f.directory.EXPECT().ListGroups(gomock.Any()).Return([]*group.Group{trip}, nil)
	f.ledger.EXPECT().List(gomock.Any(), trip.ID).Return([]ledger.Expense{
		{
			ID: uuid.New(), GroupID: trip.ID, Description: "Hotel", Amount: 20000, PayerID: alice.ID,
			Split: split.EqualInput{}, Shares: split.Shares{alice.ID: 10000, bob.ID: 10000},
			CreatedAt: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}, nil)
	f.balances.EXPECT().GroupBalances(gomock.Any(), trip.ID).Return(&balance.GroupReport{
		GroupID:   trip.ID,
		GroupName: trip.Name,
		Balances: []balance.MemberBalance{
			{MemberID: alice.ID, Name: "Alice", Amount: 10000},
			{MemberID: bob.ID, Name: "Bob", Amount: -10000},
		},
		Settlements: []settle.Transaction{{From: bob.ID, To: alice.ID, Amount: 10000}},
		TotalSpent:  20000,
	}, nil)
	f.completer.EXPECT().Model().Return("llama").AnyTimes()
}

func TestService_Ask(t *testing.T) {
	f := newFixture(t)
	f.expectData()

	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, system, prompt string) (string, error) {
			assert.NotEmpty(t, system)
			assert.Contains(t, prompt, `USER QUESTION: "who owes alice?"`)
			assert.Contains(t, prompt, "ASKED BY: Bob")
			assert.Contains(t, prompt, "'Goa Trip' (2 members): Alice, Bob")
			assert.Contains(t, prompt, "Hotel: ₹ 200.00 paid by Alice in 'Goa Trip' on 2025-05-01 12:00 (equal split)")
			assert.Contains(t, prompt, "Bob owes ₹ 100.00 in 'Goa Trip'")
			assert.Contains(t, prompt, "Alice is owed ₹ 100.00 in 'Goa Trip'")
			assert.Contains(t, prompt, "Bob pays Alice ₹ 100.00 in 'Goa Trip'")
			assert.Contains(t, prompt, "Highest Spender: Alice (₹ 200.00)")

			return "Bob owes Alice ₹100.", nil
		})

	got, err := f.svc.Ask(context.Background(), "  who owes alice?  ", &bob.ID)
	require.NoError(t, err)

	assert.True(t, got.Success)
	assert.Equal(t, "Bob owes Alice ₹100.", got.Text)
	assert.Equal(t, chat.Summary{Members: 2, Groups: 1, Expenses: 1, Balances: 2, TotalSpent: 20000, Model: "llama"}, got.Context)
}

func TestService_Ask_ProviderFailuresBecomeReplies(t *testing.T) {
	type testCase struct {
		name string
		err  error
		want string
	}

	tests := []testCase{
		{name: "NoToken", err: chat.ErrNoToken, want: "I need an API token to help you. Please set the CHAT_TOKEN environment variable."},
		{name: "RateLimited", err: chat.ErrRateLimited, want: "Rate limit exceeded. Please try again in a moment."},
		{name: "Unknown", err: errors.New("boom"), want: "I encountered a technical issue. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectData()
			f.completer.EXPECT().Complete(gomock.Any(), gomock.Any(), gomock.Any()).Return("", tt.err)

			got, err := f.svc.Ask(context.Background(), "hi", nil)
			require.NoError(t, err)

			assert.False(t, got.Success)
			assert.Equal(t, tt.want, got.Text)
		})
	}
}

func TestService_Ask_EmptyMessage(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Ask(context.Background(), "   ", nil)
	assert.ErrorIs(t, err, chat.ErrEmptyMessage)
}

func TestService_Ask_UnknownMember(t *testing.T) {
	f := newFixture(t)
	f.directory.EXPECT().ListMembers(gomock.Any()).Return([]*group.Member{alice}, nil)
	f.directory.EXPECT().ListGroups(gomock.Any()).Return(nil, nil)

	stranger := uuid.New()

	_, err := f.svc.Ask(context.Background(), "hello", &stranger)
	assert.ErrorIs(t, err, group.ErrNotFound)
}

func TestService_Ask_NoExpenses(t *testing.T) {
	f := newFixture(t)
	f.directory.EXPECT().ListMembers(gomock.Any()).Return([]*group.Member{alice}, nil)
	f.directory.EXPECT().ListGroups(gomock.Any()).Return(nil, nil)
	f.completer.EXPECT().Model().Return("llama")
	f.completer.EXPECT().
		Complete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _, prompt string) (string, error) {
			assert.Contains(t, prompt, "All balances are settled!")
			assert.NotContains(t, prompt, "STATISTICS")

			return "Nothing to settle.", nil
		})

	got, err := f.svc.Ask(context.Background(), "anything to pay?", nil)
	require.NoError(t, err)
	assert.Equal(t, "Nothing to settle.", got.Text)
}
