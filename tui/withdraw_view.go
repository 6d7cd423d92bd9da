// ABOUTME: Withdrawal request view for TUI
// ABOUTME: Amount input guarded by the minimum and balance checks before submitting
package tui

import (
	"context"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/validate"
)

func (m Model) startWithdraw() (tea.Model, tea.Cmd) {
	if m.tab != TabWithdrawals {
		return m, nil
	}
	m.viewMode = ViewWithdraw
	m.inputErr = ""
	m.amountInput.SetValue("")
	m.amountInput.Focus()
	return m, nil
}

func (m Model) renderWithdrawView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("REQUEST WITHDRAWAL"))
	s.WriteString("\n\n")
	s.WriteString("Available: " + format.Currency(m.state.Withdrawal.Balance) + "\n\n")
	s.WriteString("> " + m.amountInput.View() + "\n")
	if m.inputErr != "" {
		s.WriteString(toastErrorStyle.Render("✗ "+m.inputErr) + "\n")
	}

	help := []string{
		"Enter: Submit",
		"Esc: Cancel",
	}
	s.WriteString(helpStyle.Render(strings.Join(help, " • ")))

	return s.String()
}

func (m Model) handleWithdrawKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.viewMode = ViewList
		m.amountInput.Blur()
		return m, nil
	case "enter":
		amount, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(m.amountInput.Value()), ",", ""), 64)
		if err != nil {
			m.inputErr = validate.MsgInvalidAmount
			return m, nil
		}
		if err := validate.Withdrawal(amount, m.state.Withdrawal.Balance); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}

		m.viewMode = ViewList
		m.amountInput.Blur()
		st := m.st
		return m, m.call("withdrawal", func(ctx context.Context) (string, error) {
			if _, err := st.Withdrawal.SubmitRequest(ctx, amount); err != nil {
				return "", err
			}
			return "Withdrawal request submitted", nil
		})
	}

	var cmd tea.Cmd
	m.amountInput, cmd = m.amountInput.Update(msg)
	return m, cmd
}
