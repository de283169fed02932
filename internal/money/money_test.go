package money_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/divvy/internal/money"
)

func TestNewFormatter(t *testing.T) {
	f, err := money.NewFormatter("INR")
	require.NoError(t, err)
	assert.Equal(t, "INR", f.Code())
	assert.Equal(t, int32(2), f.Scale())

	jpy, err := money.NewFormatter("JPY")
	require.NoError(t, err)
	assert.Equal(t, int32(0), jpy.Scale())

	_, err = money.NewFormatter("NOPE")
	assert.Error(t, err)
}

func TestFormatter_Format(t *testing.T) {
	type testCase struct {
		name  string
		code  string
		minor int64
		want  string
	}

	tests := []testCase{
		{name: "Rupees", code: "INR", minor: 1250, want: "₹ 12.50"},
		{name: "Negative", code: "INR", minor: -5, want: "-₹ 0.05"},
		{name: "Zero", code: "INR", minor: 0, want: "₹ 0.00"},
		{name: "Euro", code: "EUR", minor: 123456, want: "€ 1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := money.NewFormatter(tt.code)
			require.NoError(t, err)

			assert.Equal(t, tt.want, f.Format(tt.minor))
		})
	}
}

func TestFormatter_Parse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}

	tests := []testCase{
		{name: "Whole", input: "12", want: 1200},
		{name: "OneDecimal", input: "12.5", want: 1250},
		{name: "TwoDecimals", input: " 0.05 ", want: 5},
		{name: "TooPrecise", input: "1.005", wantErr: true},
		{name: "Garbage", input: "twelve", wantErr: true},
		{name: "LargestMinorUnits", input: "92233720368547758.07", want: math.MaxInt64},
		{name: "BeyondInt64", input: "92233720368547758.08", wantErr: true},
		{name: "FarBeyondInt64", input: "1e30", wantErr: true},
		{name: "FarBelowInt64", input: "-1e30", wantErr: true},
	}

	f, err := money.NewFormatter("INR")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Parse(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrInvalidAmount)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, f, f.Plain(got)))
		})
	}
}

func mustParse(t *testing.T, f *money.Formatter, s string) int64 {
	t.Helper()

	v, err := f.Parse(s)
	require.NoError(t, err)

	return v
}
