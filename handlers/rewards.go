// ABOUTME: Reward MCP tool handlers
// ABOUTME: Implements get_reward_summary and list_rewards tools
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

type GetRewardSummaryInput struct{}

type RewardSummaryOutput struct {
	Staking         float64 `json:"staking"`
	Level           float64 `json:"level"`
	Referral        float64 `json:"referral"`
	Total           float64 `json:"total"`
	StakingPercent  int     `json:"staking_percent"`
	LevelPercent    int     `json:"level_percent"`
	ReferralPercent int     `json:"referral_percent"`
}

func (h *Handlers) GetRewardSummary(ctx context.Context, _ *mcp.CallToolRequest, _ GetRewardSummaryInput) (*mcp.CallToolResult, RewardSummaryOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, RewardSummaryOutput{}, err
	}
	if err := h.st.Rewards.FetchSummary(ctx); err != nil {
		return nil, RewardSummaryOutput{}, fmt.Errorf("failed to fetch reward summary: %w", err)
	}

	summary := h.st.State().Rewards.Summary
	split := format.IncomeSplit(summary)
	return &mcp.CallToolResult{}, RewardSummaryOutput{
		Staking:         summary.Staking,
		Level:           summary.Level,
		Referral:        summary.Referral,
		Total:           summary.Total,
		StakingPercent:  split.Staking,
		LevelPercent:    split.Level,
		ReferralPercent: split.Referral,
	}, nil
}

type ListRewardsInput struct {
	Page      int    `json:"page,omitempty" jsonschema:"Page number starting at 1"`
	Type      string `json:"type,omitempty" jsonschema:"Filter by type: staking, level, referral"`
	StartDate string `json:"start_date,omitempty" jsonschema:"Earliest date, YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Latest date, YYYY-MM-DD"`
}

type RewardOutput struct {
	ID     string  `json:"id"`
	Amount float64 `json:"amount"`
	Type   string  `json:"type"`
	From   string  `json:"from,omitempty"`
	Date   string  `json:"date"`
}

type ListRewardsOutput struct {
	Rewards       []RewardOutput `json:"rewards"`
	Page          int            `json:"page"`
	Pages         int            `json:"pages"`
	Total         int            `json:"total"`
	FilteredTotal float64        `json:"filtered_total"`
}

func isValidRewardType(t string) bool {
	switch t {
	case "", models.RewardStaking, models.RewardLevel, models.RewardReferral:
		return true
	}
	return false
}

func (h *Handlers) ListRewards(ctx context.Context, _ *mcp.CallToolRequest, input ListRewardsInput) (*mcp.CallToolResult, ListRewardsOutput, error) {
	if err := h.requireLogin(); err != nil {
		return nil, ListRewardsOutput{}, err
	}
	if !isValidRewardType(input.Type) {
		return nil, ListRewardsOutput{}, fmt.Errorf("invalid type: %s (valid: staking, level, referral)", input.Type)
	}

	q := models.RewardQuery{Page: input.Page, Type: input.Type, StartDate: input.StartDate, EndDate: input.EndDate}
	if err := h.st.Rewards.FetchList(ctx, q); err != nil {
		return nil, ListRewardsOutput{}, fmt.Errorf("failed to list rewards: %w", err)
	}

	r := h.st.State().Rewards
	out := ListRewardsOutput{Rewards: []RewardOutput{}, Page: r.Page, Pages: r.Pages, Total: r.Total, FilteredTotal: r.FilteredTotal}
	for _, item := range r.Items {
		ro := RewardOutput{ID: item.ID, Amount: item.Amount, Type: item.Type, Date: format.Date(item.CreatedAt)}
		if item.StakeID != nil {
			ro.From = item.StakeID.User.Name
		}
		out.Rewards = append(out.Rewards, ro)
	}
	return &mcp.CallToolResult{}, out, nil
}
