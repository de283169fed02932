package split

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Policy names how an expense amount is divided among group members.
type Policy string

const (
	PolicyEqual      Policy = "equal"
	PolicyPercentage Policy = "percentage"
	PolicyExact      Policy = "exact"
)

// ParsePolicy maps a policy name to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyEqual, PolicyPercentage, PolicyExact:
		return p, nil
	}

	return "", fmt.Errorf("unknown split policy %q", s)
}

// Input is the policy-specific split payload of an expense.
// Only the types in this package implement it.
type Input interface {
	Policy() Policy
	isInput()
}

// EqualInput divides the amount evenly among all group members.
type EqualInput struct{}

// PercentageInput assigns each member a percentage (0-100) of the amount.
type PercentageInput struct {
	Entries map[uuid.UUID]decimal.Decimal
}

// ExactInput assigns each member an exact owed amount in minor units.
type ExactInput struct {
	Entries map[uuid.UUID]int64
}

func (EqualInput) Policy() Policy      { return PolicyEqual }
func (PercentageInput) Policy() Policy { return PolicyPercentage }
func (ExactInput) Policy() Policy      { return PolicyExact }

func (EqualInput) isInput()      {}
func (PercentageInput) isInput() {}
func (ExactInput) isInput()      {}

// Shares maps a member to the minor-unit amount they owe for one expense.
type Shares map[uuid.UUID]int64

// Sum returns the total of all shares.
func (s Shares) Sum() int64 {
	var total int64
	for _, v := range s {
		total += v
	}

	return total
}
