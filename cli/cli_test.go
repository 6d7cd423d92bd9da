// ABOUTME: Tests for CLI subcommands against the fake backend
// ABOUTME: Captures command output and checks session, journal, and guard behavior
package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rankup/config"
	"github.com/harperreed/rankup/session"
	"github.com/harperreed/rankup/store"
	"github.com/harperreed/rankup/twin"
	"github.com/harperreed/rankup/validate"
)

type testApp struct {
	*App
	twin *twin.Server
	out  *bytes.Buffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	orig := xdg.DataHome
	xdg.DataHome = t.TempDir()
	t.Cleanup(func() { xdg.DataHome = orig })

	tw := twin.New()
	srv := httptest.NewServer(tw)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.APIURL = srv.URL
	cfg.DBPath = ":memory:"

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(app.Close)

	out := &bytes.Buffer{}
	app.Out = out
	app.SetInput(strings.NewReader(""))
	app.ReadPassword = func() (string, error) { return "", errors.New("no terminal") }
	return &testApp{App: app, twin: tw, out: out}
}

// passwords makes ReadPassword return each value in turn.
func (a *testApp) passwords(values ...string) {
	a.ReadPassword = func() (string, error) {
		if len(values) == 0 {
			return "", errors.New("no more input")
		}
		v := values[0]
		values = values[1:]
		return v, nil
	}
}

func (a *testApp) login(t *testing.T) {
	t.Helper()
	require.NoError(t, LoginCommand(context.Background(), a.App, []string{"--email", twin.DemoEmail, "--password", twin.DemoPassword}))
	a.out.Reset()
}

func TestLoginPersistsSession(t *testing.T) {
	a := newTestApp(t)
	err := LoginCommand(context.Background(), a.App, []string{"--email", twin.DemoEmail, "--password", twin.DemoPassword})
	require.NoError(t, err)
	assert.Contains(t, a.out.String(), "✓ Logged in as Demo Investor")

	stored, err := session.NewFileStore("").Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, twin.DemoEmail, stored.Email)

	a.out.Reset()
	require.NoError(t, WhoamiCommand(context.Background(), a.App, nil))
	assert.Contains(t, a.out.String(), "RK-1001")
}

func TestLoginPromptsForMissingValues(t *testing.T) {
	a := newTestApp(t)
	a.SetInput(strings.NewReader(twin.DemoEmail + "\n"))
	a.passwords(twin.DemoPassword)

	require.NoError(t, LoginCommand(context.Background(), a.App, nil))
	assert.Contains(t, a.out.String(), "Email: ")
	assert.True(t, a.Store.State().Auth.LoggedIn())
}

func TestLoginValidatesBeforeSending(t *testing.T) {
	a := newTestApp(t)
	err := LoginCommand(context.Background(), a.App, []string{"--email", "not-an-email", "--password", "x"})

	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Please enter a valid email address", errs.First())
	assert.Empty(t, a.Store.State().Auth.Error, "no request should have been made")
}

func TestLoginFailureShowsServerMessage(t *testing.T) {
	a := newTestApp(t)
	err := LoginCommand(context.Background(), a.App, []string{"--email", twin.DemoEmail, "--password", "wrong-password"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")
}

func TestCommandsRequireLogin(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	for name, cmd := range map[string]func(context.Context, *App, []string) error{
		"dashboard":   DashboardCommand,
		"rewards":     RewardsCommand,
		"income":      IncomeCommand,
		"sales":       SalesCommand,
		"team":        TeamCommand,
		"balance":     BalanceCommand,
		"withdrawals": WithdrawalsCommand,
		"profile":     ProfileCommand,
		"password":    PasswordCommand,
		"tui":         TUICommand,
	} {
		assert.ErrorIs(t, cmd(ctx, a.App, nil), errNotLoggedIn, name)
	}
}

func TestLogout(t *testing.T) {
	a := newTestApp(t)
	a.login(t)

	require.NoError(t, LogoutCommand(context.Background(), a.App, nil))
	assert.Contains(t, a.out.String(), "✓ Logged out")
	assert.False(t, a.Store.State().Auth.LoggedIn())

	stored, err := session.NewFileStore("").Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDashboardShowsReferralLink(t *testing.T) {
	a := newTestApp(t)
	a.login(t)

	require.NoError(t, DashboardCommand(context.Background(), a.App, nil))
	out := a.out.String()
	assert.Contains(t, out, "RANKUP DASHBOARD")
	assert.Contains(t, out, "Referral link: http://localhost:5173/signup?ref=RK-1001")
}

func TestClaim(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	err := ClaimCommand(ctx, a.App, []string{"4"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not claimable")

	assert.Error(t, ClaimCommand(ctx, a.App, []string{"99"}))
	assert.Error(t, ClaimCommand(ctx, a.App, []string{"three"}))

	require.NoError(t, ClaimCommand(ctx, a.App, []string{"3"}))
	assert.Contains(t, a.out.String(), "✓")
	assert.Contains(t, a.out.String(), "Silver")

	level, ok := a.Store.State().Dashboard.Stats.Level(3)
	require.True(t, ok)
	assert.False(t, level.Claimable(), "stats are refetched after a claim")
}

func TestRewardsFilterAndIncome(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	require.NoError(t, RewardsCommand(ctx, a.App, []string{"--type", "staking"}))
	assert.Contains(t, a.out.String(), "filtered total Rs 3,000")

	err := RewardsCommand(ctx, a.App, []string{"--type", "bonus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid type")

	a.out.Reset()
	require.NoError(t, IncomeCommand(ctx, a.App, nil))
	assert.Contains(t, a.out.String(), "Total income: Rs 16,250")
}

func TestInvestAndListSales(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	err := InvestCommand(ctx, a.App, []string{"--amount", "20000"})
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Description is required", errs.First())

	err = InvestCommand(ctx, a.App, []string{"--description", "Gold plan", "--amount", "20000", "--commission", "0.1"})
	require.ErrorAs(t, err, &errs)

	require.NoError(t, InvestCommand(ctx, a.App, []string{"--description", "Gold plan", "--amount", "20000", "--commission", "0.07", "--bank"}))
	assert.Contains(t, a.out.String(), "commission Rs 1,400")
	assert.False(t, a.Store.State().Sales.Success, "success flag is reset after reporting")

	a.out.Reset()
	require.NoError(t, SalesCommand(ctx, a.App, nil))
	assert.Contains(t, a.out.String(), "Gold plan")
	assert.Contains(t, a.out.String(), "Starter package")
}

func TestInvestWithReceipt(t *testing.T) {
	a := newTestApp(t)
	a.login(t)

	receipt := filepath.Join(t.TempDir(), "receipt.png")
	require.NoError(t, os.WriteFile(receipt, []byte("png-bytes"), 0600))

	err := InvestCommand(context.Background(), a.App, []string{"--description", "Receipt plan", "--amount", "1000", "--receipt", receipt})
	require.NoError(t, err)
	require.NotEmpty(t, a.Store.State().Sales.Sales)
	assert.Equal(t, "uploads/receipt.png", a.Store.State().Sales.Sales[0].DocumentPath)

	err = InvestCommand(context.Background(), a.App, []string{"--description", "x", "--amount", "1000", "--receipt", "/missing/file"})
	assert.Error(t, err)
}

func TestTeamWritesGraph(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	out := filepath.Join(t.TempDir(), "team.dot")
	require.NoError(t, TeamCommand(ctx, a.App, []string{"--graph", out}))
	assert.Contains(t, a.out.String(), "Ayesha Khan")
	assert.Contains(t, a.out.String(), "Team graph written")

	dot, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(dot), "digraph")
	assert.Contains(t, string(dot), "Danish Ali")

	a.out.Reset()
	require.NoError(t, TeamCommand(ctx, a.App, []string{"--type", "indirect"}))
	assert.Contains(t, a.out.String(), "Danish Ali")
	assert.NotContains(t, a.out.String(), "Bilal Ahmed")

	assert.Error(t, TeamCommand(ctx, a.App, []string{"--type", "sideways"}))
}

func TestWithdraw(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	err := WithdrawCommand(ctx, a.App, []string{"10"})
	require.Error(t, err)
	assert.Equal(t, validate.MsgMinWithdrawal, err.Error())

	err = WithdrawCommand(ctx, a.App, []string{"1,000,000"})
	require.Error(t, err)
	assert.Equal(t, validate.MsgInsufficient, err.Error())

	require.NoError(t, WithdrawCommand(ctx, a.App, []string{"450"}))
	assert.Contains(t, a.out.String(), "To confirm")
	assert.Equal(t, float64(12450), a.Store.State().Withdrawal.Balance)

	a.out.Reset()
	require.NoError(t, WithdrawCommand(ctx, a.App, []string{"--yes", "450"}))
	assert.Contains(t, a.out.String(), "✓ Withdrawal request submitted")
	assert.Contains(t, a.out.String(), "Remaining balance: Rs 12,000")

	a.out.Reset()
	require.NoError(t, WithdrawalsCommand(ctx, a.App, nil))
	assert.Contains(t, a.out.String(), "TX-7781")
	assert.Contains(t, a.out.String(), "Total: 2 withdrawal(s)")
}

func TestServerRejectionSurfacesMessage(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	a.twin.FailNext(http.MethodGet, "/withdrawals/balance", http.StatusInternalServerError, "Ledger offline")

	err := BalanceCommand(context.Background(), a.App, nil)
	require.Error(t, err)
	assert.Equal(t, "failed to load balance: Ledger offline", err.Error())

	var opErr *store.OpError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "withdrawal/fetchBalance", opErr.Op)
}

func TestExpiredSessionLogsOut(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	a.twin.RevokeTokens()

	require.Error(t, DashboardCommand(context.Background(), a.App, nil))
	assert.False(t, a.Store.State().Auth.LoggedIn())

	a.out.Reset()
	require.NoError(t, WhoamiCommand(context.Background(), a.App, nil))
	assert.Contains(t, a.out.String(), store.MsgSessionExpired)
	assert.Contains(t, a.out.String(), "Not logged in")
}

func TestRegisterAndVerify(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	args := []string{
		"--name", "New Member", "--username", "newbie", "--email", "new@example.com",
		"--phone", "0300", "--branch", "karachi", "--password", "password1",
	}

	require.NoError(t, RegisterCommand(ctx, a.App, args))
	assert.Contains(t, a.out.String(), "rankup verify <token>")
	assert.False(t, a.Store.State().Auth.LoggedIn())

	token, ok := a.twin.VerificationToken("new@example.com")
	require.True(t, ok)

	a.out.Reset()
	require.NoError(t, VerifyCommand(ctx, a.App, []string{token}))
	assert.Contains(t, a.out.String(), "✓ Email verified")

	require.NoError(t, LoginCommand(ctx, a.App, []string{"--email", "new@example.com", "--password", "password1"}))
	assert.True(t, a.Store.State().Auth.LoggedIn())
}

func TestRegisterRejections(t *testing.T) {
	a := newTestApp(t)
	ctx := context.Background()
	base := []string{"--name", "Dup", "--email", "dup@example.com", "--phone", "0300", "--password", "password1"}

	err := RegisterCommand(ctx, a.App, append([]string{"--username", "demo"}, base...))
	require.Error(t, err)
	assert.Equal(t, "Username already taken", err.Error())

	err = RegisterCommand(ctx, a.App, append([]string{"--username", "fresh", "--branch", "Mars"}, base...))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown branch")

	a.passwords("password1", "different1")
	err = RegisterCommand(ctx, a.App, []string{"--name", "Dup", "--username", "fresh", "--email", "dup@example.com", "--phone", "0300"})
	var errs validate.Errors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Passwords do not match", errs.First())
}

func TestProfileAndPassword(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	ctx := context.Background()

	require.NoError(t, ProfileCommand(ctx, a.App, []string{"--address", "12 Mall Road"}))
	assert.Contains(t, a.out.String(), "✓ Profile updated")
	assert.Equal(t, "12 Mall Road", a.Store.State().Auth.User.Address)
	assert.NotEmpty(t, a.Store.State().Auth.User.Token, "token survives a profile update")

	a.out.Reset()
	a.passwords(twin.DemoPassword, "new-password-1", "new-password-1")
	require.NoError(t, PasswordCommand(ctx, a.App, nil))
	assert.Contains(t, a.out.String(), "✓ Password updated successfully")

	a.passwords("wrong-password", "new-password-2", "new-password-2")
	err := PasswordCommand(ctx, a.App, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Current password is incorrect")
}

func TestStatusReadsJournal(t *testing.T) {
	a := newTestApp(t)
	a.login(t)
	a.twin.FailNext(http.MethodGet, "/investors/team", http.StatusInternalServerError, "Team service down")

	require.NoError(t, DashboardCommand(context.Background(), a.App, nil))
	require.Error(t, TeamCommand(context.Background(), a.App, nil))
	a.out.Reset()

	require.NoError(t, StatusCommand(context.Background(), a.App, []string{"--recent", "3"}))
	out := a.out.String()
	assert.Contains(t, out, "Session:  Demo Investor (file)")
	assert.Contains(t, out, "auth/login")
	assert.Contains(t, out, "dashboard/fetchStats")
	assert.Contains(t, out, "Team service down")
	assert.Contains(t, out, "Recent events:")
}

func TestStatusWithoutJournal(t *testing.T) {
	a := newTestApp(t)
	a.DB = nil
	assert.Error(t, StatusCommand(context.Background(), a.App, nil))
}

func TestSessionCommandNeedsCharmBackend(t *testing.T) {
	a := newTestApp(t)
	err := SessionCommand(context.Background(), a.App, []string{"status"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session backend")

	assert.Error(t, SessionCommand(context.Background(), a.App, nil))
}

func TestNewMCPServer(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, NewMCPServer(a.App, "test"))
}
