// ABOUTME: Investment subcommands
// ABOUTME: Lists recorded sales and records a new one with an optional receipt
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/validate"
)

// SalesCommand lists recorded sales with their totals.
func SalesCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("sales", flag.ContinueOnError)
	status := fs.String("status", "", "Filter by status (pending, completed, rejected)")
	page := fs.Int("page", 1, "Page number")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Sales.GetSales(ctx, models.SalesQuery{Page: *page, Limit: *limit, Status: *status}); err != nil {
		return fmt.Errorf("failed to list sales: %w", err)
	}

	state := app.Store.State().Sales
	if len(state.Sales) == 0 {
		app.println("No sales found")
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tCOMMISSION\tPROFIT\tPAYMENT\tSTATUS")
	_, _ = fmt.Fprintln(w, "----\t-----------\t------\t----------\t------\t-------\t------")
	for _, s := range state.Sales {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			format.Date(s.CreatedAt), s.Description, format.Currency(s.Amount),
			format.Currency(s.Commission), format.Rate(s.InvestorProfit), s.PaymentMethod, s.Status)
	}
	_ = w.Flush()

	app.printf("\nTotal: %d sale(s), %s invested, %s profit\n",
		len(state.Sales), format.Currency(state.Summary.TotalAmount), format.Currency(state.Summary.TotalProfit))
	return nil
}

// InvestCommand records a sale.
func InvestCommand(ctx context.Context, app *App, args []string) error {
	form := validate.NewSaleForm()

	fs := flag.NewFlagSet("invest", flag.ContinueOnError)
	description := fs.String("description", "", "What was sold (required)")
	amount := fs.Float64("amount", 0, "Amount in rupees (required)")
	commission := fs.Float64("commission", form.CommissionRate, "Commission rate (0.05, 0.06, 0.07)")
	profit := fs.Float64("profit", form.InvestorProfit, "Investor profit share (0.05, 0.06, 0.07)")
	bank := fs.Bool("bank", false, "Paid into a bank account instead of cash")
	noProduct := fs.Bool("no-product", false, "Investor does not take the product")
	receipt := fs.String("receipt", "", "Path to a receipt image or PDF")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	form.Description = *description
	form.Amount = *amount
	form.CommissionRate = *commission
	form.InvestorProfit = *profit
	if *bank {
		form.PaymentMethod = validate.PaymentBank
	}
	if *noProduct {
		form.InvestorType = validate.InvestorNoProduct
	}
	if *receipt != "" {
		content, err := os.ReadFile(*receipt)
		if err != nil {
			return fmt.Errorf("failed to read receipt: %w", err)
		}
		form.Receipt = &models.Upload{FieldName: "receipt", FileName: filepath.Base(*receipt), Content: content}
	}
	if err := validate.Struct(form); err != nil {
		return err
	}

	sale, err := app.Store.Sales.CreateSale(ctx, form.Input())
	app.Store.Sales.Reset()
	if err != nil {
		return fmt.Errorf("failed to record investment: %w", err)
	}

	app.println("✓ Investment recorded")
	app.printf("  %s: %s, commission %s (%s)\n", sale.Description, format.Currency(sale.Amount),
		format.Currency(sale.Commission), format.Rate(form.CommissionRate))
	app.printf("  Status: %s\n", sale.Status)
	return nil
}
