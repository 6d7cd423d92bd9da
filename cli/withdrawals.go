// ABOUTME: Withdrawal subcommands: balance, withdrawals, withdraw
// ABOUTME: Requests are checked against the minimum and the fetched balance before submitting
package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/validate"
)

// BalanceCommand prints the withdrawable balance.
func BalanceCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Withdrawal.FetchBalance(ctx); err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	app.printf("Available balance: %s\n", format.Currency(app.Store.State().Withdrawal.Balance))
	return nil
}

// WithdrawalsCommand lists past withdrawal requests.
func WithdrawalsCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("withdrawals", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Withdrawal.FetchHistory(ctx); err != nil {
		return fmt.Errorf("failed to load withdrawals: %w", err)
	}

	history := app.Store.State().Withdrawal.History
	if len(history) == 0 {
		app.println("No withdrawals found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tAMOUNT\tSTATUS\tMETHOD\tTX")
	_, _ = fmt.Fprintln(w, "----\t------\t------\t------\t--")
	for _, wd := range history {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			format.Date(wd.CreatedAt), format.Currency(wd.Amount), wd.Status, orDash(wd.Method), orDash(wd.TxID))
	}
	_ = w.Flush()

	app.printf("\nTotal: %d withdrawal(s)\n", len(history))
	return nil
}

// WithdrawCommand requests a withdrawal. Without --yes it only shows what
// would be requested.
func WithdrawCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "Submit without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: rankup withdraw [--yes] <amount>")
	}
	amount, err := strconv.ParseFloat(strings.ReplaceAll(fs.Arg(0), ",", ""), 64)
	if err != nil {
		return fmt.Errorf("%s", validate.MsgInvalidAmount)
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Withdrawal.FetchBalance(ctx); err != nil {
		return fmt.Errorf("failed to load balance: %w", err)
	}
	balance := app.Store.State().Withdrawal.Balance
	if err := validate.Withdrawal(amount, balance); err != nil {
		return err
	}

	if !*yes {
		app.printf("Withdraw %s of %s available?\n", format.Currency(amount), format.Currency(balance))
		app.println()
		app.println("To confirm, run:")
		app.printf("  rankup withdraw --yes %s\n", fs.Arg(0))
		return nil
	}

	wd, err := app.Store.Withdrawal.SubmitRequest(ctx, amount)
	if err != nil {
		return fmt.Errorf("withdrawal failed: %w", err)
	}
	app.println("✓ Withdrawal request submitted")
	app.printf("  %s, status %s\n", format.Currency(wd.Amount), wd.Status)
	app.printf("  Remaining balance: %s\n", format.Currency(app.Store.State().Withdrawal.Balance))
	return nil
}
