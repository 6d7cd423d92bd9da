// ABOUTME: Rewards slice with income totals and the paginated reward ledger
// ABOUTME: Fetches the summary and filtered pages of individual rewards

package store

import (
	"context"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
)

const (
	msgRewardSummaryFailed = "Failed to fetch reward summary"
	msgRewardListFailed    = "Failed to fetch rewards list"
)

type RewardsState struct {
	Status
	Summary       models.RewardSummary
	Items         []models.Reward
	Page          int
	Pages         int
	Total         int
	FilteredTotal float64
}

type RewardsSlice struct {
	slice
	summary       models.RewardSummary
	items         []models.Reward
	page          int
	pages         int
	total         int
	filteredTotal float64
	api           *api.Client
}

func newRewardsSlice(h *hub, c *api.Client) *RewardsSlice {
	return &RewardsSlice{
		slice: newSlice("rewards", h),
		items: []models.Reward{},
		page:  1,
		pages: 1,
		api:   c,
	}
}

func (r *RewardsSlice) State() RewardsState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return RewardsState{
		Status:        r.status,
		Summary:       r.summary,
		Items:         r.items,
		Page:          r.page,
		Pages:         r.pages,
		Total:         r.total,
		FilteredTotal: r.filteredTotal,
	}
}

func (r *RewardsSlice) FetchSummary(ctx context.Context) error {
	_, err := run(ctx, &r.slice, request[models.RewardSummary]{
		op:       "fetchSummary",
		fallback: msgRewardSummaryFailed,
		latest:   true,
		call: func(ctx context.Context) (models.RewardSummary, error) {
			var env api.Envelope[models.RewardSummary]
			err := r.api.Get(ctx, "/rewards/summary", nil, &env)
			return env.Data, err
		},
		onFulfilled: func(s models.RewardSummary) { r.summary = s },
	})
	return err
}

// FetchList loads one page of rewards matching q.
func (r *RewardsSlice) FetchList(ctx context.Context, q models.RewardQuery) error {
	_, err := run(ctx, &r.slice, request[models.RewardPage]{
		op:       "fetchList",
		fallback: msgRewardListFailed,
		latest:   true,
		call: func(ctx context.Context) (models.RewardPage, error) {
			var env api.Envelope[models.RewardPage]
			err := r.api.Get(ctx, "/rewards", q.Values(), &env)
			return env.Data, err
		},
		onFulfilled: func(p models.RewardPage) {
			r.items = p.Items
			if r.items == nil {
				r.items = []models.Reward{}
			}
			r.page = p.Page
			r.pages = p.Pages
			r.total = p.Total
			r.filteredTotal = p.FilteredTotal
		},
	})
	return err
}

// Reset clears the error and loading flag, keeping the fetched data.
// Loading reads false afterwards even if a request is still in flight; it is
// recomputed when that request settles.
func (r *RewardsSlice) Reset() {
	r.reset("reset", nil)
}
