// ABOUTME: Team subcommand
// ABOUTME: Lists downline members and optionally renders the referral tree with graphviz
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/harperreed/rankup/format"
	"github.com/harperreed/rankup/models"
	"github.com/harperreed/rankup/viz"
)

// TeamCommand lists team members. With --graph it also writes the tree to a
// file whose extension picks the format (.svg, .png, .jpg, anything else DOT).
func TeamCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("team", flag.ContinueOnError)
	kind := fs.String("type", "", "Filter by member type (direct, indirect)")
	graphOut := fs.String("graph", "", "Write the referral tree to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}

	if err := app.Store.Team.FetchMembers(ctx); err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}
	team := app.Store.State().Team

	var members []models.TeamMember
	switch *kind {
	case "":
		members = team.All
	case models.MemberDirect:
		members = team.Direct
	case models.MemberIndirect:
		members = team.Indirect
	default:
		return fmt.Errorf("invalid type: %s (valid: direct, indirect)", *kind)
	}

	if len(members) == 0 {
		app.println("No team members found")
	} else {
		w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "NAME\tTYPE\tUPLINE\tINVESTED\tPROFIT\tJOINED\tPHONE")
		_, _ = fmt.Fprintln(w, "----\t----\t------\t--------\t------\t------\t-----")
		for _, m := range members {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				m.Name, m.Type, orDash(m.Upline), format.Currency(m.Amount),
				format.Currency(m.Profit), format.Date(m.Date), orDash(m.Phone))
		}
		_ = w.Flush()
		app.printf("\nTotal: %d member(s), %d direct, %d indirect\n", len(members), len(team.Direct), len(team.Indirect))
	}

	if *graphOut == "" {
		return nil
	}

	f, err := os.Create(*graphOut)
	if err != nil {
		return fmt.Errorf("failed to create graph file: %w", err)
	}
	defer func() { _ = f.Close() }()

	root := app.Store.State().Auth.User.Name
	if err := viz.RenderTeamGraph(ctx, f, root, team.All, viz.FormatFor(*graphOut)); err != nil {
		return fmt.Errorf("failed to render team graph: %w", err)
	}
	app.printf("✓ Team graph written to %s\n", *graphOut)
	return nil
}
