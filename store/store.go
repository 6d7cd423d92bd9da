// ABOUTME: Store aggregating the six slices behind one API client
// ABOUTME: Wires the auth slice as credential source and forced logout on 401

package store

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/session"
)

// Options configures a Store.
type Options struct {
	BaseURL string
	Timeout time.Duration

	// Sessions persists the logged-in user. Nil keeps the session in memory only.
	Sessions session.Store

	Logger     *log.Logger
	HTTPClient *http.Client
}

// Store is the application state container.
type Store struct {
	Auth       *AuthSlice
	Dashboard  *DashboardSlice
	Rewards    *RewardsSlice
	Sales      *SalesSlice
	Team       *TeamSlice
	Withdrawal *WithdrawalSlice

	api *api.Client
	hub *hub
}

// State is a point-in-time view of every slice. Each slice is internally
// consistent; slices are read one after another.
type State struct {
	Auth       AuthState
	Dashboard  DashboardState
	Rewards    RewardsState
	Sales      SalesState
	Team       TeamState
	Withdrawal WithdrawalState
}

// New builds the store and restores any persisted session.
func New(opts Options) (*Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	h := newHub()
	auth := newAuthSlice(h, opts.Sessions, logger)

	client, err := api.New(api.Config{
		BaseURL:        opts.BaseURL,
		Timeout:        opts.Timeout,
		Credentials:    auth,
		OnUnauthorized: auth.ExpireSession,
		Logger:         logger,
		HTTPClient:     opts.HTTPClient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create api client: %w", err)
	}
	auth.api = client

	return &Store{
		Auth:       auth,
		Dashboard:  newDashboardSlice(h, client, logger),
		Rewards:    newRewardsSlice(h, client),
		Sales:      newSalesSlice(h, client),
		Team:       newTeamSlice(h, client),
		Withdrawal: newWithdrawalSlice(h, client, logger),
		api:        client,
		hub:        h,
	}, nil
}

// API exposes the underlying client for lookups that carry no state.
func (s *Store) API() *api.Client {
	return s.api
}

func (s *Store) State() State {
	return State{
		Auth:       s.Auth.State(),
		Dashboard:  s.Dashboard.State(),
		Rewards:    s.Rewards.State(),
		Sales:      s.Sales.State(),
		Team:       s.Team.State(),
		Withdrawal: s.Withdrawal.State(),
	}
}

// Subscribe registers fn for every lifecycle event and returns a function
// that removes it. fn runs on the dispatching goroutine and must not block.
func (s *Store) Subscribe(fn func(Event)) func() {
	return s.hub.subscribe(fn)
}
