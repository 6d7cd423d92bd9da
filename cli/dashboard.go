// ABOUTME: Dashboard subcommands
// ABOUTME: Prints the KPI overview and submits level reward claims
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/viz"
)

// DashboardCommand fetches and renders the dashboard.
func DashboardCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Dashboard.FetchStats(ctx); err != nil {
		return fmt.Errorf("failed to load dashboard: %w", err)
	}

	stats := app.Store.State().Dashboard.Stats
	app.printf("%s", viz.RenderDashboard(stats))
	if stats != nil {
		if link := format.ReferralLink(app.Config.ReferralBaseURL, stats.User.ReferralID); link != "" {
			app.printf("\nReferral link: %s\n", link)
		}
	}
	return nil
}

// ClaimCommand claims the reward for an achieved level.
func ClaimCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("claim", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rankup claim <level-id>")
	}
	rankID, err := strconv.Atoi(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid level id %q", fs.Arg(0))
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Dashboard.FetchStats(ctx); err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	level, ok := app.Store.State().Dashboard.Stats.Level(rankID)
	if !ok {
		return fmt.Errorf("level %d not found", rankID)
	}
	if !level.Claimable() {
		return fmt.Errorf("level %d (%s) is not claimable: status %s, claim %s", level.ID, level.Name, level.Status, level.ClaimStatus)
	}

	msg, err := app.Store.Dashboard.ClaimReward(ctx, rankID)
	if err != nil {
		return fmt.Errorf("claim failed: %w", err)
	}
	if msg == "" {
		msg = "Claim request submitted!"
	}
	app.printf("✓ %s\n", msg)
	app.printf("  Level %s %s: %s\n", level.No, level.Name, level.Reward)
	return nil
}
