// ABOUTME: Terminal dashboard rendering
// ABOUTME: Provides an ASCII overview of KPIs, team, investment, and the level ladder
package viz

import (
	"fmt"
	"strings"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n"

func RenderDashboard(stats *models.DashboardStats) string {
	var out strings.Builder

	out.WriteString(rule)
	out.WriteString("  RANKUP DASHBOARD\n")
	out.WriteString(rule + "\n")

	if stats == nil {
		out.WriteString("  No dashboard data loaded.\n")
		return out.String()
	}

	fmt.Fprintf(&out, "  %s  (%s)  referral %s\n\n", stats.User.Name, rankOrNone(stats.User.Rank), stats.User.ReferralID)

	k := stats.KPIs
	out.WriteString("BUSINESS\n")
	fmt.Fprintf(&out, "  %-18s %s\n", "Total volume", format.Currency(k.TotalBusinessVolume))
	fmt.Fprintf(&out, "  %-18s %s\n", "Direct", format.Currency(k.TotalDirectBusiness))
	fmt.Fprintf(&out, "  %-18s %s\n", "Indirect", format.Currency(k.TotalIndirectBusiness))
	fmt.Fprintf(&out, "  %-18s %s\n\n", "Available balance", format.Currency(k.AvailableBalance))

	out.WriteString("INCOME\n")
	renderIncome(&out, stats.Rewards)
	out.WriteString("\n")

	t := stats.TeamStats
	out.WriteString("TEAM\n")
	fmt.Fprintf(&out, "  👥 %d members  (%d direct, %d indirect)\n\n", t.TotalTeamSize, t.DirectTeam, t.IndirectTeam)

	inv := stats.Investment
	out.WriteString("INVESTMENT\n")
	fmt.Fprintf(&out, "  %s invested, %s profit (%s/month at %s), phase %d, %s\n\n",
		format.Currency(inv.TotalInvestment), format.Currency(inv.TotalProfit),
		format.Currency(inv.MonthlyProfit), format.Rate(inv.ProfitRate), inv.CurrentPhase, inv.ROIStatus)

	if len(stats.Levels) > 0 {
		out.WriteString("LEVELS\n")
		renderLevels(&out, stats.Levels)
	}

	return out.String()
}

func rankOrNone(rank string) string {
	if rank == "" {
		return "no rank"
	}
	return rank
}

func renderIncome(out *strings.Builder, s models.RewardSummary) {
	split := format.IncomeSplit(s)
	rows := []struct {
		name   string
		amount float64
		share  int
	}{
		{"Staking", s.Staking, split.Staking},
		{"Level", s.Level, split.Level},
		{"Referral", s.Referral, split.Referral},
	}
	for _, r := range rows {
		fmt.Fprintf(out, "  %-9s %s %3d%%  %s\n", r.name, format.Bar(float64(r.share), 10), r.share, format.Currency(r.amount))
	}
	fmt.Fprintf(out, "  %-9s %s\n", "Total", format.Currency(s.Total))
}

func renderLevels(out *strings.Builder, levels []models.Level) {
	for _, l := range levels {
		fmt.Fprintf(out, "  %s %-8s %s %3d%%  %-14s %s\n",
			l.No, l.Name, format.Bar(l.Progress, 10), format.Progress(l.Progress), l.Reward, levelMarker(l))
	}
}

func levelMarker(l models.Level) string {
	switch {
	case l.Claimable():
		return "★ claimable"
	case l.Status == models.LevelLocked:
		if l.RemainingTotal > 0 {
			return "locked, " + format.Currency(l.RemainingTotal) + " to go"
		}
		return "locked"
	}
	return l.ClaimStatus
}
