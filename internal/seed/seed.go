// Package seed fills an empty database with sample members for local use.
package seed

import (
	"context"
	"fmt"

	"github.com/MrJamesThe3rd/divvy/internal/group"
)

type Directory interface {
	ListMembers(ctx context.Context) ([]*group.Member, error)
	CreateMember(ctx context.Context, params group.CreateMemberParams) (*group.Member, error)
}

var Members = []group.CreateMemberParams{
	{Name: "Ramtej Vigna", Email: "ramtej@example.com"},
	{Name: "Vamsi", Email: "vamsi@example.com"},
	{Name: "Rajesh", Email: "rajesh@example.com"},
	{Name: "William", Email: "william@example.com"},
	{Name: "Dhamodhar", Email: "dhamodhar@example.com"},
}

// Run creates the sample members and returns how many it created. It does
// nothing when any member already exists.
func Run(ctx context.Context, dir Directory) (int, error) {
	existing, err := dir.ListMembers(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing members: %w", err)
	}

	if len(existing) > 0 {
		return 0, nil
	}

	for i, params := range Members {
		if _, err := dir.CreateMember(ctx, params); err != nil {
			return i, fmt.Errorf("creating member %q: %w", params.Name, err)
		}
	}

	return len(Members), nil
}
