package settle_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/divvy/internal/settle"
)

var (
	a = uuid.MustParse("00000000-0000-0000-0000-00000000000a")
	b = uuid.MustParse("00000000-0000-0000-0000-00000000000b")
	c = uuid.MustParse("00000000-0000-0000-0000-00000000000c")
	d = uuid.MustParse("00000000-0000-0000-0000-00000000000d")
	e = uuid.MustParse("00000000-0000-0000-0000-00000000000e")
)

func TestSimplify(t *testing.T) {
	type testCase struct {
		name     string
		balances map[uuid.UUID]int64
		want     []settle.Transaction
	}

	tests := []testCase{
		{
			name:     "OnePayerTwoDebtors",
			balances: map[uuid.UUID]int64{a: 200, b: -100, c: -100},
			want: []settle.Transaction{
				{From: b, To: a, Amount: 100},
				{From: c, To: a, Amount: 100},
			},
		},
		{
			name:     "TwoCreditorsTieBrokenByID",
			balances: map[uuid.UUID]int64{b: 10, a: 10, c: -20},
			want: []settle.Transaction{
				{From: c, To: a, Amount: 10},
				{From: c, To: b, Amount: 10},
			},
		},
		{
			name:     "LargestPartiesMatchedFirst",
			balances: map[uuid.UUID]int64{a: 50, b: 30, c: -60, d: -20},
			want: []settle.Transaction{
				{From: c, To: a, Amount: 50},
				{From: d, To: b, Amount: 20},
				{From: c, To: b, Amount: 10},
			},
		},
		{
			name:     "AllZero",
			balances: map[uuid.UUID]int64{a: 0, b: 0, c: 0},
			want:     nil,
		},
		{
			name:     "Empty",
			balances: nil,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := settle.Simplify(tt.balances)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSimplify_Soundness(t *testing.T) {
	cases := []map[uuid.UUID]int64{
		{a: 200, b: -100, c: -100},
		{a: 1, b: 1, c: 1, d: 1, e: -4},
		{a: 733, b: -1, c: -300, d: -432},
		{a: 15, b: -7, c: 9, d: -8, e: -9},
		{a: 99999, b: -33333, c: -33333, d: -33333},
	}

	for _, balances := range cases {
		txs := settle.Simplify(balances)

		nonZero := 0
		for _, v := range balances {
			if v != 0 {
				nonZero++
			}
		}

		assert.LessOrEqual(t, len(txs), nonZero-1)

		for id, v := range settle.Apply(balances, txs) {
			assert.Zero(t, v, "member %s not settled", id)
		}

		paid := make(map[uuid.UUID]int64)
		for _, tx := range txs {
			assert.Positive(t, tx.Amount)
			assert.NotEqual(t, tx.From, tx.To)

			paid[tx.From] += tx.Amount
			paid[tx.To] -= tx.Amount
		}

		for id, v := range balances {
			assert.Equal(t, -v, paid[id])
		}
	}
}

func TestSimplify_CyclicDebtsCancel(t *testing.T) {
	// A owes B, B owes C and C owes A the same amount: every net balance is zero.
	balances := map[uuid.UUID]int64{
		a: -50 + 50,
		b: 50 - 50,
		c: 50 - 50,
	}

	assert.Empty(t, settle.Simplify(balances))
}

func TestSimplify_Deterministic(t *testing.T) {
	balances := map[uuid.UUID]int64{a: 10, b: 10, c: 10, d: -15, e: -15}

	first := settle.Simplify(balances)
	for range 20 {
		assert.Equal(t, first, settle.Simplify(balances))
	}
}

func TestSimplify_DoesNotMutateInput(t *testing.T) {
	balances := map[uuid.UUID]int64{a: 10, b: -10}
	settle.Simplify(balances)

	assert.Equal(t, map[uuid.UUID]int64{a: 10, b: -10}, balances)
}
