// ABOUTME: MCP prompt handlers for reusable account review templates
// ABOUTME: Builds income and team growth prompts from live store data
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

func (h *Handlers) registerPrompts(server *mcp.Server) {
	server.AddPrompt(&mcp.Prompt{
		Name:        "income-review",
		Description: "Review income by source and suggest where growth will come from",
	}, h.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "next-level",
		Description: "Explain what is needed to reach the next locked level",
	}, h.GetPrompt)
}

// GetPrompt generates the prompt message based on the template
func (h *Handlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	if err := h.requireLogin(); err != nil {
		return nil, err
	}
	switch request.Params.Name {
	case "income-review":
		return h.getIncomeReviewPrompt(ctx)
	case "next-level":
		return h.getNextLevelPrompt(ctx)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func (h *Handlers) getIncomeReviewPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	if err := h.st.Rewards.FetchSummary(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch reward summary: %w", err)
	}
	s := h.st.State().Rewards.Summary
	split := format.IncomeSplit(s)

	var text strings.Builder
	text.WriteString("Here is my income breakdown:\n\n")
	fmt.Fprintf(&text, "- Staking: %s (%d%%)\n", format.Currency(s.Staking), split.Staking)
	fmt.Fprintf(&text, "- Level: %s (%d%%)\n", format.Currency(s.Level), split.Level)
	fmt.Fprintf(&text, "- Referral: %s (%d%%)\n", format.Currency(s.Referral), split.Referral)
	fmt.Fprintf(&text, "- Total: %s\n", format.Currency(s.Total))
	text.WriteString("\nPlease review this and tell me:")
	text.WriteString("\n1. Which source is carrying my income")
	text.WriteString("\n2. Which source has the most room to grow")

	return userPrompt("Income review", text.String()), nil
}

func (h *Handlers) getNextLevelPrompt(ctx context.Context) (*mcp.GetPromptResult, error) {
	if err := h.st.Dashboard.FetchStats(ctx); err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard: %w", err)
	}
	stats := h.st.State().Dashboard.Stats

	var next *models.Level
	if stats != nil {
		for i := range stats.Levels {
			if stats.Levels[i].Status == models.LevelLocked {
				next = &stats.Levels[i]
				break
			}
		}
	}
	if next == nil {
		return userPrompt("Next level", "Every level is achieved. Suggest how I can keep my team volume growing."), nil
	}

	var text strings.Builder
	fmt.Fprintf(&text, "My next level is %s (%s), reward: %s.\n", next.Name, next.Criteria, next.Reward)
	fmt.Fprintf(&text, "Progress: %d%%. Remaining direct members: %.0f. Remaining team volume: %s.\n",
		format.Progress(next.Progress), next.RemainingDirect, format.Currency(next.RemainingTotal))
	fmt.Fprintf(&text, "My team has %d direct and %d indirect members.\n", stats.TeamStats.DirectTeam, stats.TeamStats.IndirectTeam)
	text.WriteString("\nPlease suggest a realistic plan to close the gap.")

	return userPrompt("Next level: "+next.Name, text.String()), nil
}
