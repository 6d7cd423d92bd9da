// ABOUTME: MCP tool handlers exposing store operations to assistants
// ABOUTME: Registers tools, resources, and prompts on an MCP server
package handlers

import (
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/store"
)

var errNotLoggedIn = errors.New("not logged in; run 'rankup login' first")

// Handlers serves store-backed MCP tools. Every tool reads through the
// store so the slices stay the single source of state.
type Handlers struct {
	st           *store.Store
	referralBase string
}

func New(st *store.Store, referralBase string) *Handlers {
	return &Handlers{st: st, referralBase: referralBase}
}

func (h *Handlers) requireLogin() error {
	if !h.st.State().Auth.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

// Register adds every tool, resource, and prompt to server.
func (h *Handlers) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Get the investor dashboard: KPIs, team size, investment, income, and the level ladder",
	}, h.GetDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "claim_reward",
		Description: "Submit a claim for an achieved, unclaimed level reward",
	}, h.ClaimReward)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_team",
		Description: "List direct and indirect team members",
	}, h.GetTeam)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_reward_summary",
		Description: "Get income totals by source (staking, level, referral) with percentage split",
	}, h.GetRewardSummary)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_rewards",
		Description: "List reward entries, filtered by type and date range, one page at a time",
	}, h.ListRewards)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_sales",
		Description: "List recorded investments with totals",
	}, h.ListSales)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_sale",
		Description: "Record a new investment; commission is derived from amount and rate",
	}, h.CreateSale)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_balance",
		Description: "Get the balance available for withdrawal",
	}, h.GetBalance)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_withdrawals",
		Description: "List past withdrawal requests",
	}, h.ListWithdrawals)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "request_withdrawal",
		Description: "Request a payout. Requires confirm=true; checked against the minimum and current balance first",
	}, h.RequestWithdrawal)

	h.registerResources(server)
	h.registerPrompts(server)
}
