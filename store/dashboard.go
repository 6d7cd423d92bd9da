// ABOUTME: Dashboard slice with KPI stats and the level ladder
// ABOUTME: Fetches stats and claims level rewards, refreshing stats after a claim

package store

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
)

const (
	msgStatsFailed = "Failed to fetch dashboard statistics"
	msgClaimFailed = "Failed to claim reward"
)

// DashboardState is a snapshot of the dashboard slice. Stats is nil until the first fetch.
type DashboardState struct {
	Status
	Stats *models.DashboardStats
}

type DashboardSlice struct {
	slice
	stats  *models.DashboardStats
	api    *api.Client
	logger *log.Logger
}

func newDashboardSlice(h *hub, c *api.Client, logger *log.Logger) *DashboardSlice {
	return &DashboardSlice{slice: newSlice("dashboard", h), api: c, logger: logger}
}

func (d *DashboardSlice) State() DashboardState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return DashboardState{Status: d.status, Stats: d.stats}
}

// FetchStats loads the dashboard. A newer call supersedes one still in flight.
func (d *DashboardSlice) FetchStats(ctx context.Context) error {
	_, err := run(ctx, &d.slice, request[*models.DashboardStats]{
		op:       "fetchStats",
		fallback: msgStatsFailed,
		latest:   true,
		call: func(ctx context.Context) (*models.DashboardStats, error) {
			var stats models.DashboardStats
			if err := d.api.Get(ctx, "/investors/dashboard/stats", nil, &stats); err != nil {
				return nil, err
			}
			return &stats, nil
		},
		onFulfilled: func(s *models.DashboardStats) { d.stats = s },
	})
	return err
}

// ClaimReward submits a claim for the level with rankID and returns the
// server's message. On success the stats are refetched before returning; a
// failed refetch is recorded on the slice but does not fail the claim.
func (d *DashboardSlice) ClaimReward(ctx context.Context, rankID int) (string, error) {
	msg, err := run(ctx, &d.slice, request[string]{
		op:       "claimReward",
		fallback: msgClaimFailed,
		call: func(ctx context.Context) (string, error) {
			var resp struct {
				Message string `json:"message"`
			}
			err := d.api.Post(ctx, "/rewards/claim", map[string]int{"rankId": rankID}, &resp)
			return resp.Message, err
		},
	})
	if err != nil {
		return "", err
	}

	if err := d.FetchStats(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		d.logger.Debug("stats refresh after claim failed", "err", err)
	}
	return msg, nil
}

// Reset clears the error and loading flag.
// Loading reads false afterwards even if a request is still in flight; it is
// recomputed when that request settles.
func (d *DashboardSlice) Reset() {
	d.reset("reset", nil)
}
