// ABOUTME: Dashboard MCP tool handlers
// ABOUTME: Implements get_dashboard and claim_reward tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

type GetDashboardInput struct{}

type LevelOutput struct {
	ID          int     `json:"id"`
	No          string  `json:"no"`
	Name        string  `json:"name"`
	Criteria    string  `json:"criteria"`
	Reward      string  `json:"reward"`
	Status      string  `json:"status"`
	ClaimStatus string  `json:"claim_status"`
	Progress    float64 `json:"progress"`
	Claimable   bool    `json:"claimable"`
}

type DashboardOutput struct {
	Name          string                 `json:"name"`
	Rank          string                 `json:"rank"`
	ReferralID    string                 `json:"referral_id"`
	ReferralLink  string                 `json:"referral_link,omitempty"`
	KPIs          models.KPIs            `json:"kpis"`
	Team          models.TeamStats       `json:"team"`
	Investment    models.InvestmentStats `json:"investment"`
	Income        models.RewardSummary   `json:"income"`
	Levels        []LevelOutput          `json:"levels"`
	BalanceString string                 `json:"balance_display"`
}

func (h *Handlers) GetDashboard(ctx context.Context, _ *mcp.CallToolRequest, _ GetDashboardInput) (*mcp.CallToolResult, DashboardOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, DashboardOutput{}, err
	}
	if err := h.st.Dashboard.FetchStats(ctx); err != nil {
		return nil, DashboardOutput{}, fmt.Errorf("failed to fetch dashboard: %w", err)
	}

	stats := h.st.State().Dashboard.Stats
	if stats == nil {
		return nil, DashboardOutput{}, fmt.Errorf("dashboard returned no data")
	}
	return &mcp.CallToolResult{}, h.dashboardOutput(stats), nil
}

func (h *Handlers) dashboardOutput(stats *models.DashboardStats) DashboardOutput {
	levels := make([]LevelOutput, 0, len(stats.Levels))
	for _, l := range stats.Levels {
		levels = append(levels, LevelOutput{
			ID:          l.ID,
			No:          l.No,
			Name:        l.Name,
			Criteria:    l.Criteria,
			Reward:      l.Reward,
			Status:      l.Status,
			ClaimStatus: l.ClaimStatus,
			Progress:    l.Progress,
			Claimable:   l.Claimable(),
		})
	}
	return DashboardOutput{
		Name:          stats.User.Name,
		Rank:          stats.User.Rank,
		ReferralID:    stats.User.ReferralID,
		ReferralLink:  format.ReferralLink(h.referralBase, stats.User.ReferralID),
		KPIs:          stats.KPIs,
		Team:          stats.TeamStats,
		Investment:    stats.Investment,
		Income:        stats.Rewards,
		Levels:        levels,
		BalanceString: format.Currency(stats.KPIs.AvailableBalance),
	}
}

type ClaimRewardInput struct {
	RankID int `json:"rank_id" jsonschema:"Level id from get_dashboard (required)"`
}

type ClaimRewardOutput struct {
	Message     string `json:"message"`
	ClaimStatus string `json:"claim_status"`
}

func (h *Handlers) ClaimReward(ctx context.Context, _ *mcp.CallToolRequest, input ClaimRewardInput) (*mcp.CallToolResult, ClaimRewardOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, ClaimRewardOutput{}, err
	}
	if input.RankID <= 0 {
		return nil, ClaimRewardOutput{}, fmt.Errorf("rank_id is required")
	}

	message, err := h.st.Dashboard.ClaimReward(ctx, input.RankID)
	if err != nil {
		return nil, ClaimRewardOutput{}, fmt.Errorf("failed to claim reward: %w", err)
	}

	out := ClaimRewardOutput{Message: message}
	if level, ok := h.st.State().Dashboard.Stats.Level(input.RankID); ok {
		out.ClaimStatus = level.ClaimStatus
	}
	return &mcp.CallToolResult{}, out, nil
}
