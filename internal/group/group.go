package group

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyName     = errors.New("name can't be empty")
	ErrDuplicateUser = errors.New("member listed more than once")
)

// Member is a person who can take part in shared expenses.
type Member struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Group is a named set of members sharing expenses.
// Members keep the order in which they were added.
type Group struct {
	ID        uuid.UUID
	Name      string
	Members   []Member
	CreatedAt time.Time
}

// MemberIDs returns the ids of the group's members in insertion order.
func (g *Group) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}

	return ids
}

// HasMember reports whether id belongs to the group.
func (g *Group) HasMember(id uuid.UUID) bool {
	for _, m := range g.Members {
		if m.ID == id {
			return true
		}
	}

	return false
}
