// ABOUTME: Tests for the store and its slices against the fake backend
// ABOUTME: Covers lifecycle transitions, persistence, follow-up refreshes, and forced logout

package store

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/session"
	"github.com/harperreed/rankup/twin"
)

type fixture struct {
	twin     *twin.Server
	sessions *session.FileStore
	store    *Store
	url      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tw := twin.New()
	srv := httptest.NewServer(tw)
	t.Cleanup(srv.Close)

	sessions := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	st, err := New(Options{BaseURL: srv.URL, Sessions: sessions})
	require.NoError(t, err)
	return &fixture{twin: tw, sessions: sessions, store: st, url: srv.URL}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.store.Auth.Login(context.Background(), models.Credentials{
		Email: twin.DemoEmail, Password: twin.DemoPassword,
	}))
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: ""})
	assert.Error(t, err)
}

func TestLoginSucceedsAndPersists(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	st := f.store.State().Auth
	require.NotNil(t, st.User)
	assert.Equal(t, twin.DemoName, st.User.Name)
	assert.NotEmpty(t, st.User.Token)
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, st.User.Token, stored.Token)
}

func TestLoginFailureLeavesUserUnchanged(t *testing.T) {
	f := newFixture(t)
	err := f.store.Auth.Login(context.Background(), models.Credentials{Email: twin.DemoEmail, Password: "nope"})
	require.Error(t, err)

	st := f.store.State().Auth
	assert.Nil(t, st.User)
	assert.Equal(t, "Invalid credentials", st.Error)
	assert.False(t, st.Loading)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestLoginNetworkFailureUsesFallback(t *testing.T) {
	st, err := New(Options{BaseURL: "http://127.0.0.1:1"})
	require.NoError(t, err)

	err = st.Auth.Login(context.Background(), models.Credentials{Email: "a@b.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, msgLoginFailed, st.State().Auth.Error)
}

func TestSessionRestoredOnStartup(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	again, err := New(Options{BaseURL: f.url, Sessions: f.sessions})
	require.NoError(t, err)
	assert.True(t, again.State().Auth.LoggedIn())

	// The restored credential is attached to requests.
	require.NoError(t, again.Team.FetchMembers(context.Background()))
	assert.Len(t, again.State().Team.Direct, 2)
}

func TestCorruptSessionStartsLoggedOut(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0600))

	st, err := New(Options{BaseURL: "http://127.0.0.1:1", Sessions: session.NewFileStore(path)})
	require.NoError(t, err)
	assert.False(t, st.State().Auth.LoggedIn())
}

func TestLogoutClearsMemoryAndStorage(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.store.Auth.Logout()

	assert.Nil(t, f.store.State().Auth.User)
	stored, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)

	_, ok := f.store.Auth.Token()
	assert.False(t, ok)
}

func TestLogoutDuringInflightRequest(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.Delay(http.MethodGet, "/investors/team", 200*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- f.store.Team.FetchMembers(context.Background()) }()
	require.Eventually(t, func() bool { return f.store.State().Team.Loading }, time.Second, 5*time.Millisecond)

	f.store.Auth.Logout()
	require.NoError(t, <-done)

	st := f.store.State()
	assert.Nil(t, st.Auth.User)
	assert.Empty(t, st.Auth.Error)
	assert.NotEmpty(t, st.Team.All)
	assert.False(t, st.Team.Loading)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRepeatedReadsAreIdempotent(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.store.Dashboard.FetchStats(ctx))
	require.NoError(t, f.store.Team.FetchMembers(ctx))
	require.NoError(t, f.store.Rewards.FetchList(ctx, models.RewardQuery{}))
	first := f.store.State()

	require.NoError(t, f.store.Dashboard.FetchStats(ctx))
	require.NoError(t, f.store.Team.FetchMembers(ctx))
	require.NoError(t, f.store.Rewards.FetchList(ctx, models.RewardQuery{}))
	second := f.store.State()

	assert.Equal(t, first.Dashboard, second.Dashboard)
	assert.Equal(t, first.Team, second.Team)
	assert.Equal(t, first.Rewards, second.Rewards)
}

func TestPendingPhaseSetsLoading(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.Delay(http.MethodGet, "/investors/team", 100*time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- f.store.Team.FetchMembers(context.Background()) }()

	require.Eventually(t, func() bool { return f.store.State().Team.Loading }, time.Second, 5*time.Millisecond)
	assert.Empty(t, f.store.State().Team.Error)

	require.NoError(t, <-done)
	assert.False(t, f.store.State().Team.Loading)
}

func TestFailureKeepsPriorData(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.store.Dashboard.FetchStats(ctx))
	before := f.store.State().Dashboard.Stats
	require.NotNil(t, before)

	f.twin.FailNext(http.MethodGet, "/investors/dashboard/stats", http.StatusInternalServerError, "Server exploded")
	require.Error(t, f.store.Dashboard.FetchStats(ctx))

	st := f.store.State().Dashboard
	assert.Equal(t, "Server exploded", st.Error)
	assert.Same(t, before, st.Stats)

	// The next start clears the error.
	require.NoError(t, f.store.Dashboard.FetchStats(ctx))
	assert.Empty(t, f.store.State().Dashboard.Error)
}

func TestFailureWithoutMessageUsesDefault(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.FailNext(http.MethodGet, "/rewards/summary", http.StatusBadGateway, "")

	require.Error(t, f.store.Rewards.FetchSummary(context.Background()))
	assert.Equal(t, msgRewardSummaryFailed, f.store.State().Rewards.Error)
}

func TestClaimRewardRefreshesStats(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.store.Dashboard.FetchStats(ctx))
	level, ok := f.store.State().Dashboard.Stats.Level(3)
	require.True(t, ok)
	require.True(t, level.Claimable())

	msg, err := f.store.Dashboard.ClaimReward(ctx, 3)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	level, ok = f.store.State().Dashboard.Stats.Level(3)
	require.True(t, ok)
	assert.Equal(t, models.ClaimPending, level.ClaimStatus)
	assert.False(t, f.store.State().Dashboard.Loading)
}

func TestClaimSucceedsWhenRefreshFails(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.FailNext(http.MethodGet, "/investors/dashboard/stats", http.StatusInternalServerError, "refresh broke")

	_, err := f.store.Dashboard.ClaimReward(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "refresh broke", f.store.State().Dashboard.Error)
}

func TestClaimRejected(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.store.Dashboard.ClaimReward(context.Background(), 4)
	require.Error(t, err)
	assert.NotEmpty(t, f.store.State().Dashboard.Error)
}

func TestCreateSaleThenGetSales(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.store.Sales.GetSales(ctx, models.SalesQuery{}))
	require.Len(t, f.store.State().Sales.Sales, 1)

	sale, err := f.store.Sales.CreateSale(ctx, models.SaleInput{
		Description: "Family plan", Amount: 20000, Commission: 1000, InvestorProfit: 0.05,
		PaymentMethod: "Bank account", ProductStatus: models.WithoutProduct,
	})
	require.NoError(t, err)

	st := f.store.State().Sales
	assert.True(t, st.Success)
	require.Len(t, st.Sales, 2)
	assert.Equal(t, sale.ID, st.Sales[0].ID, "new sale is prepended")

	require.NoError(t, f.store.Sales.GetSales(ctx, models.SalesQuery{}))
	st = f.store.State().Sales
	require.Len(t, st.Sales, 2)
	assert.Equal(t, "Family plan", st.Sales[0].Description)
	assert.Equal(t, float64(70000), st.Summary.TotalAmount)

	f.store.Sales.Reset()
	assert.False(t, f.store.State().Sales.Success)
}

func TestCreateSaleWithReceipt(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	sale, err := f.store.Sales.CreateSale(context.Background(), models.SaleInput{
		Description: "Receipt plan", Amount: 1000, Commission: 50, InvestorProfit: 0.05, PaymentMethod: "Cash in hand",
		Receipt: &models.Upload{FileName: "r.jpg", Content: []byte("jpg")},
	})
	require.NoError(t, err)
	assert.Equal(t, "uploads/r.jpg", sale.DocumentPath)
}

func TestCreateSaleFailureClearsSuccess(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.store.Sales.CreateSale(ctx, models.SaleInput{Description: "ok", Amount: 10, PaymentMethod: "Cash in hand"})
	require.NoError(t, err)
	require.True(t, f.store.State().Sales.Success)

	_, err = f.store.Sales.CreateSale(ctx, models.SaleInput{Description: "", Amount: 0})
	require.Error(t, err)
	st := f.store.State().Sales
	assert.False(t, st.Success)
	assert.NotEmpty(t, st.Error)
	assert.Len(t, st.Sales, 1, "failed create leaves the list alone")
}

func TestRewardsPagination(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	initial := f.store.State().Rewards
	assert.Equal(t, 1, initial.Page)
	assert.Equal(t, 1, initial.Pages)
	assert.Empty(t, initial.Items)

	require.NoError(t, f.store.Rewards.FetchList(context.Background(), models.RewardQuery{Type: models.RewardStaking}))
	st := f.store.State().Rewards
	assert.Len(t, st.Items, 2)
	assert.Equal(t, 5, st.Total)
	assert.Equal(t, float64(3000), st.FilteredTotal)

	require.NoError(t, f.store.Rewards.FetchSummary(context.Background()))
	assert.Equal(t, float64(16250), f.store.State().Rewards.Summary.Total)
}

func TestTeamPartitionsDefaultToEmpty(t *testing.T) {
	f := newFixture(t)
	f.twin.SetAutoVerify(true)
	ctx := context.Background()

	loggedIn, err := f.store.Auth.Register(ctx, models.Registration{
		Name: "Fresh", UserName: "fresh", Email: "fresh@example.com", Phone: "1", Password: "password1",
	})
	require.NoError(t, err)
	require.True(t, loggedIn)

	require.NoError(t, f.store.Team.FetchMembers(ctx))
	st := f.store.State().Team
	assert.NotNil(t, st.Direct)
	assert.NotNil(t, st.Indirect)
	assert.NotNil(t, st.All)
	assert.Empty(t, st.All)
}

func TestRegisterWithoutTokenKeepsUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	loggedIn, err := f.store.Auth.Register(ctx, models.Registration{
		Name: "Pending", UserName: "pending", Email: "pending@example.com", Phone: "1", Password: "password1",
	})
	require.NoError(t, err)
	assert.False(t, loggedIn)
	assert.Nil(t, f.store.State().Auth.User)

	tok, ok := f.twin.VerificationToken("pending@example.com")
	require.True(t, ok)
	msg, err := f.store.Auth.VerifyEmail(ctx, tok)
	require.NoError(t, err)
	assert.NotEmpty(t, msg)

	_, err = f.store.Auth.VerifyEmail(ctx, "not-a-token")
	require.Error(t, err)
	assert.Equal(t, "Invalid or expired verification token", f.store.State().Auth.Error)
}

func TestUpdateProfileKeepsToken(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	token, _ := f.store.Auth.Token()

	require.NoError(t, f.store.Auth.UpdateProfile(context.Background(), models.ProfileUpdate{Name: "Renamed"}))

	st := f.store.State().Auth
	assert.Equal(t, "Renamed", st.User.Name)
	assert.Equal(t, token, st.User.Token)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, token, stored.Token)
}

func TestUpdatePassword(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.store.Auth.UpdatePassword(ctx, models.PasswordChange{CurrentPassword: "wrong", NewPassword: "newpassword"})
	require.Error(t, err)
	assert.Equal(t, "Current password is incorrect", f.store.State().Auth.Error)

	f.store.Auth.ClearError()
	assert.Empty(t, f.store.State().Auth.Error)

	msg, err := f.store.Auth.UpdatePassword(ctx, models.PasswordChange{CurrentPassword: twin.DemoPassword, NewPassword: "newpassword"})
	require.NoError(t, err)
	assert.Equal(t, "Password updated successfully", msg)
}

func TestWithdrawalRefreshesBalanceAndHistory(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.store.Withdrawal.FetchBalance(ctx))
	require.NoError(t, f.store.Withdrawal.FetchHistory(ctx))
	assert.Equal(t, float64(12450), f.store.State().Withdrawal.Balance)
	assert.Len(t, f.store.State().Withdrawal.History, 1)

	wd, err := f.store.Withdrawal.SubmitRequest(ctx, 450)
	require.NoError(t, err)
	assert.Equal(t, models.WithdrawalPending, wd.Status)

	st := f.store.State().Withdrawal
	assert.Equal(t, float64(12000), st.Balance)
	assert.Len(t, st.History, 2)
	assert.False(t, st.Loading)
}

func TestWithdrawalRejectedByServer(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	_, err := f.store.Withdrawal.SubmitRequest(context.Background(), 10)
	require.Error(t, err)
	assert.Equal(t, "Minimum withdrawal amount is $50", f.store.State().Withdrawal.Error)

	f.store.Withdrawal.ClearError()
	assert.Empty(t, f.store.State().Withdrawal.Error)
}

func TestNewerReadSupersedesOlder(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.Delay(http.MethodGet, "/investors/dashboard/stats", 300*time.Millisecond)

	first := make(chan error, 1)
	go func() { first <- f.store.Dashboard.FetchStats(context.Background()) }()
	require.Eventually(t, func() bool { return f.store.State().Dashboard.Loading }, time.Second, 5*time.Millisecond)

	f.twin.Delay(http.MethodGet, "/investors/dashboard/stats", 0)
	require.NoError(t, f.store.Dashboard.FetchStats(context.Background()))

	err := <-first
	assert.True(t, errors.Is(err, ErrSuperseded))

	st := f.store.State().Dashboard
	assert.NotNil(t, st.Stats)
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
}

func TestUnauthorizedForcesLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.RevokeTokens()

	err := f.store.Team.FetchMembers(context.Background())
	require.Error(t, err)

	st := f.store.State()
	assert.Nil(t, st.Auth.User)
	assert.Equal(t, MsgSessionExpired, st.Auth.Error)
	assert.Equal(t, "Not authorized, token failed", st.Team.Error)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestStaleUnauthorizedKeepsNewerSession(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	oldToken, ok := f.store.Auth.Token()
	require.True(t, ok)

	f.twin.Delay(http.MethodGet, "/investors/team", 200*time.Millisecond)
	f.twin.FailNext(http.MethodGet, "/investors/team", http.StatusUnauthorized, "Not authorized, token failed")

	done := make(chan error, 1)
	go func() { done <- f.store.Team.FetchMembers(context.Background()) }()
	require.Eventually(t, func() bool { return f.store.State().Team.Loading }, time.Second, 5*time.Millisecond)

	f.store.Auth.Logout()
	f.login(t)
	newToken, ok := f.store.Auth.Token()
	require.True(t, ok)
	require.NotEqual(t, oldToken, newToken)

	require.Error(t, <-done)

	st := f.store.State()
	require.NotNil(t, st.Auth.User)
	assert.Equal(t, newToken, st.Auth.User.Token)
	assert.Empty(t, st.Auth.Error)

	stored, err := f.sessions.Load()
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, newToken, stored.Token)
}

func TestUnauthorizedProfileUpdateKeepsExpiryMessage(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.RevokeTokens()

	require.Error(t, f.store.Auth.UpdateProfile(context.Background(), models.ProfileUpdate{Name: "x"}))
	assert.Equal(t, MsgSessionExpired, f.store.State().Auth.Error)
}

func TestSubscribeReceivesLifecycle(t *testing.T) {
	f := newFixture(t)

	var mu sync.Mutex
	var events []Event
	unsubscribe := f.store.Subscribe(func(e Event) {
		mu.Lock()
		events = append(events, e)
		mu.Unlock()
	})

	f.login(t)
	unsubscribe()
	f.store.Auth.Logout()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, "auth/login", events[0].Op)
	assert.Equal(t, PhasePending, events[0].Phase)
	assert.Equal(t, PhaseFulfilled, events[1].Phase)
	assert.Equal(t, "auth", events[1].Slice)
}

func TestRejectedEventCarriesMessage(t *testing.T) {
	f := newFixture(t)
	var got Event
	f.store.Subscribe(func(e Event) {
		if e.Phase == PhaseRejected {
			got = e
		}
	})

	_ = f.store.Auth.Login(context.Background(), models.Credentials{Email: "x@y.z", Password: "bad"})
	assert.Equal(t, "auth/login", got.Op)
	assert.Equal(t, "Invalid credentials", got.Err)
}

func TestResetClearsErrorOnly(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()
	require.NoError(t, f.store.Team.FetchMembers(ctx))

	f.twin.FailNext(http.MethodGet, "/investors/team", http.StatusInternalServerError, "down")
	require.Error(t, f.store.Team.FetchMembers(ctx))
	f.store.Team.Reset()

	st := f.store.State().Team
	assert.Empty(t, st.Error)
	assert.False(t, st.Loading)
	assert.Len(t, st.All, 3)
}

func TestRejectedOperationReturnsOpError(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.twin.FailNext(http.MethodGet, "/withdrawals/balance", http.StatusInternalServerError, "Ledger offline")

	err := f.store.Withdrawal.FetchBalance(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Ledger offline", err.Error())

	var opErr *OpError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "withdrawal/fetchBalance", opErr.Op)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}
