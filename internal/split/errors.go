package split

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind classifies a ValidationError.
type Kind string

const (
	KindNonPositiveAmount Kind = "non_positive_amount"
	KindUnknownMember     Kind = "unknown_member"
	KindMissingMember     Kind = "missing_member"
	KindSplitSumMismatch  Kind = "split_sum_mismatch"
	KindEmptyGroup        Kind = "empty_group"
	KindInvalidSplitValue Kind = "invalid_split_value"
)

// ValidationError describes why an expense was rejected.
// Member, Expected and Actual are set when they apply to the Kind.
type ValidationError struct {
	Kind     Kind
	Member   uuid.UUID
	Expected string
	Actual   string
}

var (
	ErrNonPositiveAmount = &ValidationError{Kind: KindNonPositiveAmount}
	ErrUnknownMember     = &ValidationError{Kind: KindUnknownMember}
	ErrMissingMember     = &ValidationError{Kind: KindMissingMember}
	ErrSplitSumMismatch  = &ValidationError{Kind: KindSplitSumMismatch}
	ErrEmptyGroup        = &ValidationError{Kind: KindEmptyGroup}
	ErrInvalidSplitValue = &ValidationError{Kind: KindInvalidSplitValue}
)

func (e *ValidationError) Error() string {
	var sb strings.Builder

	switch e.Kind {
	case KindNonPositiveAmount:
		sb.WriteString("amount must be positive")
	case KindUnknownMember:
		sb.WriteString("member is not part of the group")
	case KindMissingMember:
		sb.WriteString("member has no split entry")
	case KindSplitSumMismatch:
		sb.WriteString("split values do not add up")
	case KindEmptyGroup:
		sb.WriteString("group has no members")
	case KindInvalidSplitValue:
		sb.WriteString("split value out of range")
	default:
		sb.WriteString(string(e.Kind))
	}

	if e.Member != uuid.Nil {
		fmt.Fprintf(&sb, ": member %s", e.Member)
	}

	if e.Expected != "" || e.Actual != "" {
		fmt.Fprintf(&sb, " (expected %s, got %s)", e.Expected, e.Actual)
	}

	return sb.String()
}

// Is reports whether target is a ValidationError of the same kind, so the
// package sentinels match any detailed error.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}
