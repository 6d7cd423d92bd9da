// ABOUTME: MCP resource handlers for exposing account data
// ABOUTME: Provides read-only JSON views of the dashboard, team, and payouts via rankup:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const resourceScheme = "rankup://"

func (h *Handlers) registerResources(server *mcp.Server) {
	for _, r := range []struct {
		name, desc string
	}{
		{"dashboard", "Dashboard statistics and level ladder"},
		{"team", "Direct and indirect team members"},
		{"withdrawals", "Balance and withdrawal history"},
	} {
		server.AddResource(&mcp.Resource{
			URI:         resourceScheme + r.name,
			Name:        r.name,
			Description: r.desc,
			MIMEType:    "application/json",
		}, h.ReadResource)
	}
}

// ReadResource handles resource read requests
func (h *Handlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, resourceScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", resourceScheme)
	}
	if err := h.requireLogin(); err != nil {
		return nil, err
	}

	var v any
	switch strings.TrimPrefix(uri, resourceScheme) {
	case "dashboard":
		if err := h.st.Dashboard.FetchStats(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
		}
		if stats := h.st.State().Dashboard.Stats; stats != nil {
			v = h.dashboardOutput(stats)
		}

	case "team":
		if err := h.st.Team.FetchMembers(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch team: %w", err)
		}
		v = h.st.State().Team

	case "withdrawals":
		if err := h.st.Withdrawal.FetchBalance(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch balance: %w", err)
		}
		if err := h.st.Withdrawal.FetchHistory(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch withdrawals: %w", err)
		}
		w := h.st.State().Withdrawal
		v = map[string]any{"balance": w.Balance, "history": w.History}

	default:
		return nil, fmt.Errorf("unknown resource: %s", uri)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}
