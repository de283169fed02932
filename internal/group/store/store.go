package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMember(s scanner) (*group.Member, error) {
	var (
		m     group.Member
		email sql.NullString
	)

	if err := s.Scan(&m.ID, &m.Name, &email, &m.CreatedAt); err != nil {
		return nil, err
	}

	m.Email = email.String

	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, member *group.Member) error {
	query := `
		INSERT INTO members (name, email, created_at)
		VALUES ($1, NULLIF($2, ''), NOW())
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, member.Name, member.Email).Scan(&member.ID, &member.CreatedAt); err != nil {
		return fmt.Errorf("creating member: %w", err)
	}

	return nil
}

func (s *Store) GetMember(ctx context.Context, id uuid.UUID) (*group.Member, error) {
	query := `SELECT id, name, email, created_at FROM members WHERE id = $1`

	m, err := scanMember(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, group.ErrNotFound
		}

		return nil, fmt.Errorf("getting member: %w", err)
	}

	return m, nil
}

func (s *Store) ListMembers(ctx context.Context) ([]*group.Member, error) {
	query := `SELECT id, name, email, created_at FROM members ORDER BY created_at ASC, name ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	defer rows.Close()

	var members []*group.Member

	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning member: %w", err)
		}

		members = append(members, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating member rows: %w", err)
	}

	return members, nil
}

// CreateGroup inserts the group and its ordered membership in one transaction.
func (s *Store) CreateGroup(ctx context.Context, grp *group.Group) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	groupQuery := `
		INSERT INTO groups (name, created_at)
		VALUES ($1, NOW())
		RETURNING id, created_at
	`
	if err := dbTx.QueryRowContext(ctx, groupQuery, grp.Name).Scan(&grp.ID, &grp.CreatedAt); err != nil {
		return fmt.Errorf("creating group: %w", err)
	}

	memberQuery := `INSERT INTO group_members (group_id, member_id, position) VALUES ($1, $2, $3)`
	for i, m := range grp.Members {
		if _, err := dbTx.ExecContext(ctx, memberQuery, grp.ID, m.ID, i); err != nil {
			return fmt.Errorf("adding member %s: %w", m.ID, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetGroup(ctx context.Context, id uuid.UUID) (*group.Group, error) {
	var g group.Group

	err := s.db.QueryRowContext(ctx, `SELECT id, name, created_at FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, group.ErrNotFound
		}

		return nil, fmt.Errorf("getting group: %w", err)
	}

	if err := s.attachMembers(ctx, []*group.Group{&g}); err != nil {
		return nil, err
	}

	return &g, nil
}

func (s *Store) ListGroups(ctx context.Context) ([]*group.Group, error) {
	return s.listGroups(ctx, `SELECT id, name, created_at FROM groups ORDER BY created_at ASC`)
}

func (s *Store) ListGroupsForMember(ctx context.Context, memberID uuid.UUID) ([]*group.Group, error) {
	query := `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.member_id = $1
		ORDER BY g.created_at ASC
	`

	return s.listGroups(ctx, query, memberID)
}

func (s *Store) listGroups(ctx context.Context, query string, args ...any) ([]*group.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing groups: %w", err)
	}
	defer rows.Close()

	var groups []*group.Group

	for rows.Next() {
		var g group.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning group: %w", err)
		}

		groups = append(groups, &g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating group rows: %w", err)
	}

	if err := s.attachMembers(ctx, groups); err != nil {
		return nil, err
	}

	return groups, nil
}

// attachMembers loads the ordered membership of every group with a single query.
func (s *Store) attachMembers(ctx context.Context, groups []*group.Group) error {
	if len(groups) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*group.Group, len(groups))
	ids := make([]string, 0, len(groups))

	for _, g := range groups {
		byID[g.ID] = g
		ids = append(ids, g.ID.String())
	}

	query := `
		SELECT gm.group_id, m.id, m.name, m.email, m.created_at
		FROM group_members gm
		JOIN members m ON m.id = gm.member_id
		WHERE gm.group_id = ANY($1::uuid[])
		ORDER BY gm.group_id, gm.position ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return fmt.Errorf("listing group members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			groupID uuid.UUID
			m       group.Member
			email   sql.NullString
		)

		if err := rows.Scan(&groupID, &m.ID, &m.Name, &email, &m.CreatedAt); err != nil {
			return fmt.Errorf("scanning group member: %w", err)
		}

		m.Email = email.String

		if g, ok := byID[groupID]; ok {
			g.Members = append(g.Members, m)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating group member rows: %w", err)
	}

	return nil
}
