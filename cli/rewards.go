// ABOUTME: Reward subcommands
// ABOUTME: Lists reward history with filters and prints the income split
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
)

// RewardsCommand lists one page of reward history.
func RewardsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("rewards", flag.ContinueOnError)
	page := fs.Int("page", 1, "Page number")
	kind := fs.String("type", "", "Filter by type (staking, level, referral)")
	from := fs.String("from", "", "Earliest date (YYYY-MM-DD)")
	to := fs.String("to", "", "Latest date (YYYY-MM-DD)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	switch *kind {
	case "", models.RewardStaking, models.RewardLevel, models.RewardReferral:
	default:
		return fmt.Errorf("invalid type: %s (valid: staking, level, referral)", *kind)
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	q := models.RewardQuery{Page: *page, Type: *kind, StartDate: *from, EndDate: *to}
	if err := app.Store.Rewards.FetchList(ctx, q); err != nil {
		return fmt.Errorf("failed to list rewards: %w", err)
	}

	r := app.Store.State().Rewards
	if len(r.Items) == 0 {
		app.println("No rewards found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tTYPE\tAMOUNT\tFROM")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t----")
	for _, item := range r.Items {
		source := "-"
		if item.StakeID != nil && item.StakeID.User.Name != "" {
			source = item.StakeID.User.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", format.Date(item.CreatedAt), item.Type, format.Currency(item.Amount), source)
	}
	_ = w.Flush()

	app.printf("\nPage %d of %d, %d reward(s), filtered total %s\n", r.Page, r.Pages, r.Total, format.Currency(r.FilteredTotal))
	return nil
}

// IncomeCommand prints income totals by source.
func IncomeCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("income", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Rewards.FetchSummary(ctx); err != nil {
		return fmt.Errorf("failed to load income summary: %w", err)
	}

	s := app.Store.State().Rewards.Summary
	split := format.IncomeSplit(s)

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SOURCE\tAMOUNT\tSHARE")
	_, _ = fmt.Fprintln(w, "------\t------\t-----")
	_, _ = fmt.Fprintf(w, "Staking\t%s\t%d%%\n", format.Currency(s.Staking), split.Staking)
	_, _ = fmt.Fprintf(w, "Level\t%s\t%d%%\n", format.Currency(s.Level), split.Level)
	_, _ = fmt.Fprintf(w, "Referral\t%s\t%d%%\n", format.Currency(s.Referral), split.Referral)
	_ = w.Flush()

	app.printf("\nTotal income: %s\n", format.Currency(s.Total))
	return nil
}
