// ABOUTME: Tests for dashboard rendering and the referral tree graph
// ABOUTME: Checks the rendered text rather than exact layout
package viz

import (
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"

	"github.com/harperreed/rankup/models"
)

func sampleStats() *models.DashboardStats {
	return &models.DashboardStats{
		User: models.DashboardUser{Name: "Demo Investor", ReferralID: "RK-1001", Rank: "Silver"},
		KPIs: models.KPIs{TotalBusinessVolume: 225000, AvailableBalance: 12450},
		TeamStats: models.TeamStats{TotalTeamSize: 3, DirectTeam: 2, IndirectTeam: 1},
		Rewards:   models.RewardSummary{Staking: 3000, Level: 10000, Referral: 3250, Total: 16250},
		Levels: []models.Level{
			{ID: 3, No: "03", Name: "Silver", Status: models.LevelAchieved, Progress: 100, ClaimStatus: models.ClaimNotClaimed, Reward: "Mobile phone"},
			{ID: 4, No: "04", Name: "Gold", Status: models.LevelLocked, Progress: 62.4, ClaimStatus: models.ClaimNotClaimed, RemainingTotal: 188000},
		},
	}
}

func TestRenderDashboard(t *testing.T) {
	out := RenderDashboard(sampleStats())

	for _, want := range []string{
		"RANKUP DASHBOARD",
		"Demo Investor",
		"Rs 225,000",
		"Rs 12,450",
		"3 members",
		"★ claimable",
		"Rs 188,000 to go",
		"Total     Rs 16,250",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q\n%s", want, out)
		}
	}
}

func TestRenderDashboardEmpty(t *testing.T) {
	out := RenderDashboard(nil)
	if !strings.Contains(out, "No dashboard data loaded.") {
		t.Errorf("expected placeholder, got %s", out)
	}
}

func TestTeamGraph(t *testing.T) {
	members := []models.TeamMember{
		{ID: "m1", Name: "Ayesha Khan", Amount: 100000, Upline: "Demo Investor", Type: models.MemberDirect},
		{ID: "m3", Name: "Danish Ali", Amount: 75000, Upline: "Ayesha Khan", Type: models.MemberIndirect},
		{ID: "m9", Name: "Orphan", Upline: "Someone Else", Type: models.MemberIndirect},
	}

	dot, err := TeamGraph(context.Background(), "Demo Investor", members)
	if err != nil {
		t.Fatalf("TeamGraph failed: %v", err)
	}

	for _, want := range []string{"Demo Investor", "Ayesha Khan", "Danish Ali", "Orphan", "->"} {
		if !strings.Contains(dot, want) {
			t.Errorf("graph missing %q", want)
		}
	}
}

func TestFormatFor(t *testing.T) {
	if FormatFor("team.svg") != graphviz.SVG {
		t.Error("expected svg")
	}
	if FormatFor("team.png") != graphviz.PNG {
		t.Error("expected png")
	}
	if FormatFor("team.dot") != graphviz.XDOT {
		t.Error("expected dot")
	}
}
