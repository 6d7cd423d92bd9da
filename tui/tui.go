// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Full-screen front end bound to the store, refreshed by its lifecycle events
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/rankup/store"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewConfirmClaim
	ViewWithdraw
	ViewGraph
)

// Tab is one page of the list view.
type Tab int

const (
	TabDashboard Tab = iota
	TabTeam
	TabIncome
	TabInvestments
	TabWithdrawals
	tabCount
)

var tabNames = []string{"Dashboard", "Team", "Income", "Investments", "Withdrawals"}

func (t Tab) String() string {
	return tabNames[t]
}

const (
	defaultToastTTL = 4 * time.Second
	activityKeep    = 5
)

// StoreEventMsg carries a store lifecycle event into the program.
type StoreEventMsg store.Event

type opDoneMsg struct {
	slice   string
	message string
	err     error
}

type toastExpiredMsg struct{ id int }

type toast struct {
	id      int
	text    string
	isError bool
}

// Model is the main bubbletea model
type Model struct {
	st           *store.Store
	ctx          context.Context
	referralBase string

	viewMode    ViewMode
	tab         Tab
	state       store.State
	selectedRow int
	rewardPage  int

	amountInput textinput.Model
	inputErr    string
	claimID     int
	graphDOT    string

	toast    toast
	toastTTL time.Duration
	activity []store.Event
	expired  bool

	width  int
	height int
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, st *store.Store, referralBase string) Model {
	in := textinput.New()
	in.Placeholder = "Amount"
	in.CharLimit = 12
	in.Prompt = "Rs "

	return Model{
		st:           st,
		ctx:          ctx,
		referralBase: referralBase,
		viewMode:     ViewList,
		tab:          TabDashboard,
		state:        st.State(),
		rewardPage:   1,
		amountInput:  in,
		toastTTL:     defaultToastTTL,
		width:        100,
		height:       30,
	}
}

func (m Model) Init() tea.Cmd {
	return m.refresh(m.tab)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case StoreEventMsg:
		return m.handleStoreEvent(store.Event(msg))
	case opDoneMsg:
		return m.handleOpDone(msg)
	case graphMsg:
		return m.handleGraph(msg)
	case toastExpiredMsg:
		if msg.id == m.toast.id {
			m.toast = toast{id: m.toast.id}
		}
		return m, nil
	}
	return m, nil
}

func (m Model) View() string {
	if m.expired {
		return m.renderExpiredView()
	}
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewConfirmClaim:
		return m.renderConfirmClaimView()
	case ViewWithdraw:
		return m.renderWithdrawView()
	case ViewGraph:
		return m.renderGraphView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.expired {
		return m, tea.Quit
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "q":
		if m.viewMode != ViewWithdraw {
			return m, tea.Quit
		}
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewConfirmClaim:
		return m.handleConfirmClaimKeys(msg)
	case ViewWithdraw:
		return m.handleWithdrawKeys(msg)
	case ViewGraph:
		return m.handleGraphKeys(msg)
	}

	return m, nil
}

func (m Model) handleStoreEvent(e store.Event) (tea.Model, tea.Cmd) {
	m.state = m.st.State()
	m.activity = append(m.activity, e)
	if len(m.activity) > activityKeep {
		m.activity = m.activity[len(m.activity)-activityKeep:]
	}
	if e.Slice == "auth" && e.Phase == store.PhaseReset && e.Err == store.MsgSessionExpired {
		m.expired = true
	}
	return m, nil
}

// handleOpDone shows the outcome of an operation, then returns the slice's
// error to idle so the same message is not shown twice.
func (m Model) handleOpDone(msg opDoneMsg) (tea.Model, tea.Cmd) {
	m.state = m.st.State()
	if errors.Is(msg.err, store.ErrSuperseded) {
		return m, nil
	}
	if msg.err != nil {
		cmd := m.showToast(msg.err.Error(), true)
		return m, tea.Batch(cmd, m.resetSlice(msg.slice))
	}
	if msg.message != "" {
		return m, m.showToast(msg.message, false)
	}
	return m, nil
}

func (m *Model) showToast(text string, isError bool) tea.Cmd {
	m.toast = toast{id: m.toast.id + 1, text: text, isError: isError}
	id := m.toast.id
	return tea.Tick(m.toastTTL, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })
}

func (m Model) resetSlice(slice string) tea.Cmd {
	st := m.st
	return func() tea.Msg {
		switch slice {
		case "auth":
			st.Auth.ClearError()
		case "dashboard":
			st.Dashboard.Reset()
		case "rewards":
			st.Rewards.Reset()
		case "sales":
			st.Sales.Reset()
		case "team":
			st.Team.Reset()
		case "withdrawal":
			st.Withdrawal.ClearError()
		}
		return nil
	}
}

// call runs fn off the update loop and reports its outcome.
func (m Model) call(slice string, fn func(ctx context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		message, err := fn(ctx)
		return opDoneMsg{slice: slice, message: message, err: err}
	}
}

func quiet(fn func(ctx context.Context) error) func(ctx context.Context) (string, error) {
	return func(ctx context.Context) (string, error) {
		return "", fn(ctx)
	}
}

func (m Model) refresh(tab Tab) tea.Cmd {
	st := m.st
	switch tab {
	case TabDashboard:
		return m.call("dashboard", quiet(st.Dashboard.FetchStats))
	case TabTeam:
		return m.call("team", quiet(st.Team.FetchMembers))
	case TabIncome:
		return tea.Batch(
			m.call("rewards", quiet(st.Rewards.FetchSummary)),
			m.fetchRewardPage(m.rewardPage),
		)
	case TabInvestments:
		return m.call("sales", quiet(func(ctx context.Context) error {
			return st.Sales.GetSales(ctx, salesQuery)
		}))
	case TabWithdrawals:
		return tea.Batch(
			m.call("withdrawal", quiet(st.Withdrawal.FetchBalance)),
			m.call("withdrawal", quiet(st.Withdrawal.FetchHistory)),
		)
	}
	return nil
}

// Run starts the full-screen program and forwards store events into it
// until it exits.
func Run(ctx context.Context, st *store.Store, referralBase string) error {
	if !st.State().Auth.LoggedIn() {
		return fmt.Errorf("not logged in; run 'rankup login' first")
	}

	p := tea.NewProgram(NewModel(ctx, st, referralBase), tea.WithAltScreen(), tea.WithContext(ctx))

	events := make(chan store.Event, 64)
	done := make(chan struct{})
	unsubscribe := st.Subscribe(func(e store.Event) {
		select {
		case events <- e:
		default:
		}
	})
	go func() {
		for {
			select {
			case e := <-events:
				p.Send(StoreEventMsg(e))
			case <-done:
				return
			}
		}
	}()
	defer func() {
		unsubscribe()
		close(done)
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			Background(lipgloss.Color("235")).
			Padding(0, 2)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	toastErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	toastOKStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)
)
