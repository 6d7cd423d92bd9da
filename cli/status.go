// ABOUTME: Status subcommand
// ABOUTME: Prints the last outcome of every journaled store operation
package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/harperreed/rankup/config"
	"github.com/harperreed/rankup/db"
)

// StatusCommand shows the operation journal.
func StatusCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	recent := fs.Int("recent", 0, "Also show the N most recent events")
	prune := fs.Int("prune", 0, "Keep only the N most recent events")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if app.DB == nil {
		return fmt.Errorf("operation journal is disabled. Set \"journal\": true in %s", config.Path())
	}
	app.journal.flush()

	auth := app.Store.State().Auth
	if auth.LoggedIn() {
		app.printf("Session:  %s (%s)\n", auth.User.Name, app.Config.SessionBackend)
	} else {
		app.printf("Session:  none (%s)\n", app.Config.SessionBackend)
	}
	app.printf("API:      %s\n\n", app.Config.APIURL)

	if *prune > 0 {
		removed, err := db.PruneOperationLog(app.DB, *prune)
		if err != nil {
			return err
		}
		app.printf("✓ Pruned %d event(s)\n\n", removed)
	}

	states, err := db.GetAllOperationStates(app.DB)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		app.println("No operations recorded yet")
	} else {
		w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "OPERATION\tPHASE\tFINISHED\tERROR")
		_, _ = fmt.Fprintln(w, "---------\t-----\t--------\t-----")
		for _, s := range states {
			finished := "-"
			if s.LastFinishedAt != nil {
				finished = s.LastFinishedAt.Local().Format(time.DateTime)
			}
			errMsg := "-"
			if s.ErrorMessage != nil {
				errMsg = *s.ErrorMessage
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Op, s.LastPhase, finished, errMsg)
		}
		_ = w.Flush()
	}

	if *recent <= 0 {
		return nil
	}

	events, err := db.RecentOperations(app.DB, *recent)
	if err != nil {
		return err
	}
	app.println("\nRecent events:")
	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	for _, e := range events {
		errMsg := ""
		if e.ErrorMessage != nil {
			errMsg = *e.ErrorMessage
		}
		_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", e.OccurredAt.Local().Format(time.TimeOnly), e.Op, e.Phase, errMsg)
	}
	_ = w.Flush()
	return nil
}
