// ABOUTME: Session subcommands for the charm backend
// ABOUTME: Routes link, status, now, and wipe to the charm client
package cli

import (
	"context"
	"fmt"

	"github.com/harperreed/rankup/charm"
	"github.com/harperreed/rankup/config"
	"github.com/harperreed/rankup/session"
)

// SessionCommand manages the session copy held in Charm KV.
func SessionCommand(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: rankup session <link|status|now|wipe>")
	}
	if app.Charm == nil {
		return fmt.Errorf("session backend is %q. Set \"session_backend\": %q in %s or RANKUP_SESSION_BACKEND=%s",
			app.Config.SessionBackend, config.BackendCharm, config.Path(), config.BackendCharm)
	}

	sub, subArgs := args[0], args[1:]
	switch sub {
	case "link":
		return charm.LinkCommand(app.Charm, subArgs)
	case "status":
		return charm.StatusCommand(app.Charm, session.Key, subArgs)
	case "now":
		return charm.SyncNowCommand(app.Charm, subArgs)
	case "wipe":
		return charm.WipeCommand(app.Charm, subArgs)
	default:
		return fmt.Errorf("unknown session command: %s", sub)
	}
}
