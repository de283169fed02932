package group

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=group
type Repository interface {
	CreateMember(ctx context.Context, member *Member) error
	GetMember(ctx context.Context, id uuid.UUID) (*Member, error)
	ListMembers(ctx context.Context) ([]*Member, error)

	CreateGroup(ctx context.Context, grp *Group) error
	GetGroup(ctx context.Context, id uuid.UUID) (*Group, error)
	ListGroups(ctx context.Context) ([]*Group, error)
	ListGroupsForMember(ctx context.Context, memberID uuid.UUID) ([]*Group, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateMemberParams struct {
	Name  string
	Email string
}

type CreateGroupParams struct {
	Name      string
	MemberIDs []uuid.UUID
}

func (s *Service) CreateMember(ctx context.Context, params CreateMemberParams) (*Member, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	m := &Member{
		Name:  name,
		Email: strings.TrimSpace(params.Email),
	}
	if err := s.repo.CreateMember(ctx, m); err != nil {
		return nil, err
	}

	return m, nil
}

func (s *Service) GetMember(ctx context.Context, id uuid.UUID) (*Member, error) {
	return s.repo.GetMember(ctx, id)
}

func (s *Service) ListMembers(ctx context.Context) ([]*Member, error) {
	return s.repo.ListMembers(ctx)
}

// CreateGroup creates a group with the given members in the given order.
// Every member must already exist.
func (s *Service) CreateGroup(ctx context.Context, params CreateGroupParams) (*Group, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return nil, ErrEmptyName
	}

	seen := make(map[uuid.UUID]struct{}, len(params.MemberIDs))
	members := make([]Member, 0, len(params.MemberIDs))

	for _, id := range params.MemberIDs {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateUser, id)
		}

		seen[id] = struct{}{}

		m, err := s.repo.GetMember(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", id, err)
		}

		members = append(members, *m)
	}

	g := &Group{
		Name:    name,
		Members: members,
	}
	if err := s.repo.CreateGroup(ctx, g); err != nil {
		return nil, err
	}

	return g, nil
}

func (s *Service) GetGroup(ctx context.Context, id uuid.UUID) (*Group, error) {
	return s.repo.GetGroup(ctx, id)
}

func (s *Service) ListGroups(ctx context.Context) ([]*Group, error) {
	return s.repo.ListGroups(ctx)
}

// MembersOf returns the current members of a group in insertion order.
func (s *Service) MembersOf(ctx context.Context, groupID uuid.UUID) ([]Member, error) {
	g, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	return g.Members, nil
}

// GroupsOf returns every group the member belongs to.
func (s *Service) GroupsOf(ctx context.Context, memberID uuid.UUID) ([]*Group, error) {
	if _, err := s.repo.GetMember(ctx, memberID); err != nil {
		return nil, err
	}

	return s.repo.ListGroupsForMember(ctx, memberID)
}
