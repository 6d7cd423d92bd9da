// ABOUTME: Team MCP tool handler
// ABOUTME: Implements get_team
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/models"
)

type GetTeamInput struct {
	Type string `json:"type,omitempty" jsonschema:"Filter: direct, indirect, or empty for all"`
}

type MemberOutput struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Phone  string  `json:"phone"`
	Amount float64 `json:"amount"`
	Profit float64 `json:"profit"`
	Joined string  `json:"joined"`
	Upline string  `json:"upline"`
	Type   string  `json:"type"`
}

type GetTeamOutput struct {
	Direct   int            `json:"direct_count"`
	Indirect int            `json:"indirect_count"`
	Members  []MemberOutput `json:"members"`
}

func (h *Handlers) GetTeam(ctx context.Context, _ *mcp.CallToolRequest, input GetTeamInput) (*mcp.CallToolResult, GetTeamOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, GetTeamOutput{}, err
	}

	var members []models.TeamMember
	if err := h.st.Team.FetchMembers(ctx); err != nil {
		return nil, GetTeamOutput{}, fmt.Errorf("failed to fetch team: %w", err)
	}
	team := h.st.State().Team

	switch input.Type {
	case "":
		members = team.All
	case models.MemberDirect:
		members = team.Direct
	case models.MemberIndirect:
		members = team.Indirect
	default:
		return nil, GetTeamOutput{}, fmt.Errorf("invalid type: %s (valid: direct, indirect)", input.Type)
	}

	out := GetTeamOutput{Direct: len(team.Direct), Indirect: len(team.Indirect), Members: []MemberOutput{}}
	for _, m := range members {
		out.Members = append(out.Members, MemberOutput{
			ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone,
			Amount: m.Amount, Profit: m.Profit, Joined: m.Date, Upline: m.Upline, Type: m.Type,
		})
	}
	return &mcp.CallToolResult{}, out, nil
}
