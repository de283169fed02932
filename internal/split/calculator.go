package split

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	hundred          = decimal.NewFromInt(100)
	percentTolerance = decimal.RequireFromString("0.01")
)

// Compute divides amount among members according to in and returns the
// per-member shares. The shares always add up to amount exactly.
//
// Leftover minor units are assigned in ascending member id order (equal) or
// by largest remainder with ascending member id as tie-break (percentage).
func Compute(amount int64, members []uuid.UUID, in Input) (Shares, error) {
	if amount <= 0 {
		return nil, &ValidationError{
			Kind:     KindNonPositiveAmount,
			Expected: "> 0",
			Actual:   strconv.FormatInt(amount, 10),
		}
	}

	ids := sortedUnique(members)
	if len(ids) == 0 {
		return nil, &ValidationError{Kind: KindEmptyGroup}
	}

	switch in := in.(type) {
	case nil, EqualInput:
		return equalShares(amount, ids), nil
	case PercentageInput:
		return percentageShares(amount, ids, in.Entries)
	case ExactInput:
		return exactShares(amount, ids, in.Entries)
	default:
		return nil, fmt.Errorf("unsupported split input %T", in)
	}
}

func equalShares(amount int64, ids []uuid.UUID) Shares {
	n := int64(len(ids))
	base, extra := amount/n, amount%n

	shares := make(Shares, len(ids))
	for i, id := range ids {
		share := base
		if int64(i) < extra {
			share++
		}

		shares[id] = share
	}

	return shares
}

type remainder struct {
	id  uuid.UUID
	rem decimal.Decimal
}

func percentageShares(amount int64, ids []uuid.UUID, entries map[uuid.UUID]decimal.Decimal) (Shares, error) {
	if err := checkCoverage(ids, entries); err != nil {
		return nil, err
	}

	sum := decimal.Zero

	for _, id := range ids {
		pct := entries[id]
		if pct.IsNegative() || pct.GreaterThan(hundred) {
			return nil, &ValidationError{
				Kind:     KindInvalidSplitValue,
				Member:   id,
				Expected: "0-100",
				Actual:   pct.String(),
			}
		}

		sum = sum.Add(pct)
	}

	if sum.Sub(hundred).Abs().GreaterThan(percentTolerance) {
		return nil, &ValidationError{
			Kind:     KindSplitSumMismatch,
			Expected: "100",
			Actual:   sum.String(),
		}
	}

	// amount*pct/sum is split into an integer quotient and an exact remainder.
	// All remainders share the divisor, so they compare like the fractional parts.
	total := decimal.NewFromInt(amount)
	shares := make(Shares, len(ids))
	rems := make([]remainder, 0, len(ids))

	var allocated int64

	for _, id := range ids {
		q, r := total.Mul(entries[id]).QuoRem(sum, 0)
		shares[id] = q.IntPart()
		allocated += shares[id]
		rems = append(rems, remainder{id: id, rem: r})
	}

	slices.SortStableFunc(rems, func(a, b remainder) int {
		if c := b.rem.Cmp(a.rem); c != 0 {
			return c
		}

		return compareIDs(a.id, b.id)
	})

	for i := int64(0); i < amount-allocated; i++ {
		shares[rems[i].id]++
	}

	return shares, nil
}

func exactShares(amount int64, ids []uuid.UUID, entries map[uuid.UUID]int64) (Shares, error) {
	if err := checkCoverage(ids, entries); err != nil {
		return nil, err
	}

	shares := make(Shares, len(ids))
	sum := decimal.Zero

	for _, id := range ids {
		v := entries[id]
		if v < 0 || v > amount {
			return nil, &ValidationError{
				Kind:     KindInvalidSplitValue,
				Member:   id,
				Expected: "0.." + strconv.FormatInt(amount, 10),
				Actual:   strconv.FormatInt(v, 10),
			}
		}

		shares[id] = v
		sum = sum.Add(decimal.NewFromInt(v))
	}

	if !sum.Equal(decimal.NewFromInt(amount)) {
		return nil, &ValidationError{
			Kind:     KindSplitSumMismatch,
			Expected: strconv.FormatInt(amount, 10),
			Actual:   sum.String(),
		}
	}

	return shares, nil
}

// checkCoverage requires entries to hold exactly the members in ids.
// Unknown entries are reported before missing ones, lowest id first.
func checkCoverage[V any](ids []uuid.UUID, entries map[uuid.UUID]V) error {
	known := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	var unknown []uuid.UUID

	for id := range entries {
		if _, ok := known[id]; !ok {
			unknown = append(unknown, id)
		}
	}

	if len(unknown) > 0 {
		slices.SortFunc(unknown, compareIDs)
		return &ValidationError{Kind: KindUnknownMember, Member: unknown[0]}
	}

	for _, id := range ids {
		if _, ok := entries[id]; !ok {
			return &ValidationError{Kind: KindMissingMember, Member: id}
		}
	}

	return nil
}

func sortedUnique(ids []uuid.UUID) []uuid.UUID {
	out := slices.Clone(ids)
	slices.SortFunc(out, compareIDs)

	return slices.Compact(out)
}

func compareIDs(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}
