// ABOUTME: Referral tree view for TUI
// ABOUTME: Shows DOT source for the loaded team
package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rankup/viz"
)

type graphMsg struct {
	dot string
	err error
}

func (m Model) startGraph() (tea.Model, tea.Cmd) {
	root := "You"
	if u := m.state.Auth.User; u != nil && u.Name != "" {
		root = u.Name
	}
	members := m.state.Team.All
	ctx := m.ctx

	m.viewMode = ViewGraph
	m.graphDOT = ""
	return m, func() tea.Msg {
		dot, err := viz.TeamGraph(ctx, root, members)
		return graphMsg{dot: dot, err: err}
	}
}

func (m Model) handleGraph(msg graphMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.viewMode = ViewList
		return m, m.showToast(msg.err.Error(), true)
	}
	m.graphDOT = msg.dot
	return m, nil
}

func (m Model) renderGraphView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("REFERRAL TREE"))
	s.WriteString("\n\n")

	if m.graphDOT == "" {
		s.WriteString("Generating graph...\n")
	} else {
		s.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Render(m.graphDOT))
	}

	s.WriteString("\n\n")

	help := []string{
		"Esc: Back",
		"q: Quit",
		"rankup team --graph out.svg renders an image",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handleGraphKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.viewMode = ViewList
	}
	return m, nil
}
