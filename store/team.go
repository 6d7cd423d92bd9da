// ABOUTME: Team slice with the investor's downline
// ABOUTME: Partitions members into direct, indirect, and all

package store

import (
	"context"

	"github.com/harperreed/rankup/api"
	"github.com/harperreed/rankup/models"
)

const msgTeamFailed = "Failed to fetch team members"

type TeamState struct {
	Status
	Direct   []models.TeamMember
	Indirect []models.TeamMember
	All      []models.TeamMember
}

type TeamSlice struct {
	slice
	team models.Team
	api  *api.Client
}

func newTeamSlice(h *hub, c *api.Client) *TeamSlice {
	return &TeamSlice{slice: newSlice("team", h), team: normalizeTeam(models.Team{}), api: c}
}

func (t *TeamSlice) State() TeamState {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return TeamState{Status: t.status, Direct: t.team.Direct, Indirect: t.team.Indirect, All: t.team.All}
}

func (t *TeamSlice) FetchMembers(ctx context.Context) error {
	_, err := run(ctx, &t.slice, request[models.Team]{
		op:       "fetchMembers",
		fallback: msgTeamFailed,
		latest:   true,
		call: func(ctx context.Context) (models.Team, error) {
			var team models.Team
			err := t.api.Get(ctx, "/investors/team", nil, &team)
			return team, err
		},
		onFulfilled: func(team models.Team) { t.team = normalizeTeam(team) },
	})
	return err
}

// Reset clears the error and loading flag, keeping the members.
// Loading reads false afterwards even if a request is still in flight; it is
// recomputed when that request settles.
func (t *TeamSlice) Reset() {
	t.reset("reset", nil)
}

// normalizeTeam replaces missing partitions with empty lists.
func normalizeTeam(team models.Team) models.Team {
	if team.Direct == nil {
		team.Direct = []models.TeamMember{}
	}
	if team.Indirect == nil {
		team.Indirect = []models.TeamMember{}
	}
	if team.All == nil {
		team.All = []models.TeamMember{}
	}
	return team
}
