// ABOUTME: Claim confirmation view for TUI
// ABOUTME: Asks before submitting a level reward claim
package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("220")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	confirmTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("220")).
				Bold(true)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("28")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

// startClaim opens the confirmation for the selected level if it can be claimed.
func (m Model) startClaim() (tea.Model, tea.Cmd) {
	if m.tab != TabDashboard || m.state.Dashboard.Stats == nil {
		return m, nil
	}
	levels := m.state.Dashboard.Stats.Levels
	if m.selectedRow >= len(levels) {
		return m, nil
	}
	level := levels[m.selectedRow]
	if !level.Claimable() {
		return m, m.showToast(fmt.Sprintf("%s cannot be claimed (%s)", level.Name, claimLabel(level)), true)
	}
	m.claimID = level.ID
	m.viewMode = ViewConfirmClaim
	return m, nil
}

func (m Model) renderConfirmClaimView() string {
	level, _ := m.state.Dashboard.Stats.Level(m.claimID)

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Claim (y)"),
		cancelButtonStyle.Render("Cancel (n/esc)"),
	)

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		confirmTitleStyle.Render("★  CLAIM REWARD  ★"),
		"",
		fmt.Sprintf("Level %s: %s", level.No, level.Name),
		"Reward: "+level.Reward,
		"",
		"The claim goes to admin review once submitted.",
		"",
		buttons,
	)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, confirmBoxStyle.Render(content))
}

func (m Model) handleConfirmClaimKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewMode = ViewList
		id := m.claimID
		st := m.st
		return m, m.call("dashboard", func(ctx context.Context) (string, error) {
			message, err := st.Dashboard.ClaimReward(ctx, id)
			if err == nil && message == "" {
				message = "Claim request submitted!"
			}
			return message, err
		})
	case "n", "N", "esc":
		m.viewMode = ViewList
	}

	return m, nil
}
