package group

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/divvy/internal/group"
)

type memberResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type groupResponse struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Members   []memberResponse `json:"members"`
	CreatedAt time.Time        `json:"created_at"`
}

type groupDetailResponse struct {
	groupResponse
	TotalExpenses int64 `json:"total_expenses"`
}

func toMemberResponse(m group.Member) memberResponse {
	return memberResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		CreatedAt: m.CreatedAt,
	}
}

func toMemberResponseList(members []*group.Member) []memberResponse {
	resp := make([]memberResponse, len(members))
	for i, m := range members {
		resp[i] = toMemberResponse(*m)
	}

	return resp
}

func toGroupResponse(g *group.Group) groupResponse {
	resp := groupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Members:   make([]memberResponse, len(g.Members)),
		CreatedAt: g.CreatedAt,
	}

	for i, m := range g.Members {
		resp.Members[i] = toMemberResponse(m)
	}

	return resp
}

func toGroupResponseList(groups []*group.Group) []groupResponse {
	resp := make([]groupResponse, len(groups))
	for i, g := range groups {
		resp[i] = toGroupResponse(g)
	}

	return resp
}
