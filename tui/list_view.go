// ABOUTME: Tabbed list view for the TUI
// ABOUTME: Renders per-tab tables for levels, team, income, investments, and withdrawals
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

var salesQuery = models.SalesQuery{Limit: 50}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("RANKUP"))
	s.WriteString("\n\n")

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	s.WriteString(m.renderHeader())
	s.WriteString(m.renderTable())
	s.WriteString("\n")

	s.WriteString(m.renderStatusLine())
	s.WriteString(m.renderToast())
	s.WriteString(m.renderListHelp())

	return s.String()
}

func (m Model) renderTabs() string {
	var rendered []string
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			rendered = append(rendered, tabActiveStyle.Render(name))
		} else {
			rendered = append(rendered, tabInactiveStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHeader() string {
	switch m.tab {
	case TabDashboard:
		stats := m.state.Dashboard.Stats
		if stats == nil {
			return ""
		}
		k := stats.KPIs
		line := fmt.Sprintf("%s • %s • volume %s • balance %s\n",
			stats.User.Name, rankLabel(stats.User.Rank), format.Currency(k.TotalBusinessVolume), format.Currency(k.AvailableBalance))
		if link := format.ReferralLink(m.referralBase, stats.User.ReferralID); link != "" {
			line += "Referral link: " + link + "\n"
		}
		return line + "\n"
	case TabTeam:
		t := m.state.Team
		return fmt.Sprintf("%d direct • %d indirect\n\n", len(t.Direct), len(t.Indirect))
	case TabIncome:
		r := m.state.Rewards
		split := format.IncomeSplit(r.Summary)
		return fmt.Sprintf("Total %s • staking %d%% • level %d%% • referral %d%%\nPage %d of %d • %d rewards • filtered %s\n\n",
			format.Currency(r.Summary.Total), split.Staking, split.Level, split.Referral,
			r.Page, r.Pages, r.Total, format.Currency(r.FilteredTotal))
	case TabInvestments:
		sum := m.state.Sales.Summary
		return fmt.Sprintf("Invested %s • profit %s\n\n", format.Currency(sum.TotalAmount), format.Currency(sum.TotalProfit))
	case TabWithdrawals:
		return fmt.Sprintf("Available %s • minimum Rs 50\n\n", format.Currency(m.state.Withdrawal.Balance))
	}
	return ""
}

func rankLabel(rank string) string {
	if rank == "" {
		return "no rank yet"
	}
	return rank
}

func (m Model) tableHeight() int {
	return max(5, m.height-16)
}

func (m Model) renderTable() string {
	columns, rows := m.tableData()

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(m.tableHeight()),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) tableData() ([]table.Column, []table.Row) {
	var rows []table.Row
	switch m.tab {
	case TabDashboard:
		var levels []models.Level
		if m.state.Dashboard.Stats != nil {
			levels = m.state.Dashboard.Stats.Levels
		}
		for _, l := range levels {
			rows = append(rows, table.Row{l.No, l.Name, l.Reward, format.Bar(l.Progress, 10), claimLabel(l)})
		}
		return []table.Column{
			{Title: "No", Width: 4},
			{Title: "Level", Width: 12},
			{Title: "Reward", Width: 18},
			{Title: "Progress", Width: 12},
			{Title: "Claim", Width: 14},
		}, rows

	case TabTeam:
		for _, mem := range m.state.Team.All {
			rows = append(rows, table.Row{mem.Name, mem.Type, mem.Upline, format.Currency(mem.Amount), format.Currency(mem.Profit), mem.Date})
		}
		return []table.Column{
			{Title: "Name", Width: 20},
			{Title: "Type", Width: 9},
			{Title: "Upline", Width: 18},
			{Title: "Amount", Width: 12},
			{Title: "Profit", Width: 10},
			{Title: "Joined", Width: 11},
		}, rows

	case TabIncome:
		for _, r := range m.state.Rewards.Items {
			from := ""
			if r.StakeID != nil {
				from = r.StakeID.User.Name
			}
			rows = append(rows, table.Row{format.Date(r.CreatedAt), r.Type, from, "+" + format.Currency(r.Amount)})
		}
		return []table.Column{
			{Title: "Date", Width: 11},
			{Title: "Type", Width: 10},
			{Title: "From", Width: 20},
			{Title: "Amount", Width: 14},
		}, rows

	case TabInvestments:
		for _, sale := range m.state.Sales.Sales {
			rows = append(rows, table.Row{format.Date(sale.CreatedAt), sale.Description, format.Currency(sale.Amount), format.Currency(sale.Commission), sale.PaymentMethod, sale.Status})
		}
		return []table.Column{
			{Title: "Date", Width: 11},
			{Title: "Description", Width: 22},
			{Title: "Amount", Width: 12},
			{Title: "Commission", Width: 11},
			{Title: "Payment", Width: 13},
			{Title: "Status", Width: 10},
		}, rows

	case TabWithdrawals:
		for _, w := range m.state.Withdrawal.History {
			rows = append(rows, table.Row{format.Date(w.CreatedAt), format.Currency(w.Amount), w.Method, w.Status, w.TxID})
		}
		return []table.Column{
			{Title: "Date", Width: 11},
			{Title: "Amount", Width: 12},
			{Title: "Method", Width: 14},
			{Title: "Status", Width: 10},
			{Title: "Tx", Width: 12},
		}, rows
	}
	return nil, nil
}

func claimLabel(l models.Level) string {
	switch {
	case l.Claimable():
		return "★ claim (c)"
	case l.Status == models.LevelLocked:
		return "locked"
	}
	return l.ClaimStatus
}

func (m Model) rowCount() int {
	_, rows := m.tableData()
	return len(rows)
}

func (m Model) renderToast() string {
	if m.toast.text == "" {
		return ""
	}
	if m.toast.isError {
		return toastErrorStyle.Render("✗ "+m.toast.text) + "\n"
	}
	return toastOKStyle.Render("✓ "+m.toast.text) + "\n"
}

func (m Model) renderListHelp() string {
	help := []string{
		"↑/↓: Navigate",
		"Tab: Switch tabs",
		"r: Refresh",
	}
	switch m.tab {
	case TabDashboard:
		help = append(help, "c: Claim level")
	case TabTeam:
		help = append(help, "g: Graph")
	case TabIncome:
		help = append(help, "n/p: Page")
	case TabWithdrawals:
		help = append(help, "w: Withdraw")
	}
	help = append(help, "q: Quit")
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.tab = tab
	m.selectedRow = 0
	return m, m.refresh(tab)
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < m.rowCount()-1 {
			m.selectedRow++
		}
	case "tab":
		return m.switchTab((m.tab + 1) % tabCount)
	case "shift+tab":
		return m.switchTab((m.tab + tabCount - 1) % tabCount)
	case "1", "2", "3", "4", "5":
		return m.switchTab(Tab(msg.String()[0] - '1'))
	case "r":
		return m, m.refresh(m.tab)
	case "c":
		return m.startClaim()
	case "w":
		return m.startWithdraw()
	case "g":
		if m.tab == TabTeam {
			return m.startGraph()
		}
	case "n":
		if m.tab == TabIncome && m.rewardPage < m.state.Rewards.Pages {
			m.rewardPage++
			m.selectedRow = 0
			return m, m.fetchRewardPage(m.rewardPage)
		}
	case "p":
		if m.tab == TabIncome && m.rewardPage > 1 {
			m.rewardPage--
			m.selectedRow = 0
			return m, m.fetchRewardPage(m.rewardPage)
		}
	}

	return m, nil
}

func (m Model) fetchRewardPage(page int) tea.Cmd {
	st := m.st
	return m.call("rewards", quiet(func(ctx context.Context) error {
		return st.Rewards.FetchList(ctx, models.RewardQuery{Page: page})
	}))
}
