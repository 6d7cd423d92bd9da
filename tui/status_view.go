// ABOUTME: Request status line and session-expired screen for TUI
// ABOUTME: Shows which slices are loading or failed, plus recent lifecycle events
package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rankup/store"
)

var (
	statusIdleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	statusLoadingStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9"))

	activityStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

func (m Model) sliceStatuses() []struct {
	name   string
	status store.Status
} {
	return []struct {
		name   string
		status store.Status
	}{
		{"auth", m.state.Auth.Status},
		{"dashboard", m.state.Dashboard.Status},
		{"rewards", m.state.Rewards.Status},
		{"sales", m.state.Sales.Status},
		{"team", m.state.Team.Status},
		{"withdrawal", m.state.Withdrawal.Status},
	}
}

func (m Model) renderStatusLine() string {
	var parts []string
	for _, s := range m.sliceStatuses() {
		switch {
		case s.status.Loading:
			parts = append(parts, statusLoadingStyle.Render("⟳ "+s.name))
		case s.status.Error != "":
			parts = append(parts, statusErrorStyle.Render("✗ "+s.name))
		default:
			parts = append(parts, statusIdleStyle.Render("✓ "+s.name))
		}
	}

	var out strings.Builder
	out.WriteString(strings.Join(parts, "  "))
	out.WriteString("\n")

	if len(m.activity) > 0 {
		var recent []string
		for _, e := range m.activity {
			recent = append(recent, e.Op+" "+string(e.Phase))
		}
		out.WriteString(activityStyle.Render(strings.Join(recent, " · ")))
		out.WriteString("\n")
	}
	return out.String()
}

func (m Model) renderExpiredView() string {
	box := confirmBoxStyle.Render(lipgloss.JoinVertical(
		lipgloss.Center,
		toastErrorStyle.Render(store.MsgSessionExpired),
		"",
		"Run 'rankup login' and start the TUI again.",
		"",
		"Press any key to exit",
	))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
