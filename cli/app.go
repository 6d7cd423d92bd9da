// ABOUTME: Shared wiring for CLI subcommands
// ABOUTME: Builds the store with its session backend, journal, and terminal prompts
package cli

import (
	"bufio"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/harperreed/rankup/charm"
	"github.com/harperreed/rankup/config"
	"github.com/harperreed/rankup/db"
	"github.com/harperreed/rankup/session"
	"github.com/harperreed/rankup/store"
)

var errNotLoggedIn = errors.New("not logged in. Run 'rankup login' first")

// App carries what every subcommand needs.
type App struct {
	Store  *store.Store
	Config *config.Config
	Logger *log.Logger

	// Charm is set only when the session backend is charm.
	Charm *charm.Client
	// DB is the operation journal, nil when journaling is off.
	DB *sql.DB

	Out io.Writer
	in  *bufio.Reader

	// ReadPassword reads a secret without echo. Tests replace it.
	ReadPassword func() (string, error)

	journal     *journal
	unsubscribe func()
}

// NewApp builds the store described by cfg.
func NewApp(cfg *config.Config, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	timeout, err := cfg.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:       cfg,
		Logger:       logger,
		Out:          os.Stdout,
		in:           bufio.NewReader(os.Stdin),
		ReadPassword: readTerminalPassword,
	}

	var sessions session.Store
	switch cfg.SessionBackend {
	case config.BackendCharm:
		charmCfg, err := charm.LoadConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load charm config: %w", err)
		}
		client, err := charm.NewClient(charmCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to open charm session store: %w", err)
		}
		app.Charm = client
		sessions = session.NewKVStore(client)
	default:
		sessions = session.NewFileStore("")
	}

	st, err := store.New(store.Options{
		BaseURL:  cfg.APIURL,
		Timeout:  timeout,
		Sessions: sessions,
		Logger:   logger,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Store = st

	if cfg.Journal {
		path := cfg.DBPath
		if path == "" {
			path = db.DefaultPath()
		}
		database, err := db.OpenDatabase(path)
		if err != nil {
			// The journal is observational; commands still work without it.
			logger.Warn("operation journal unavailable", "path", path, "err", err)
		} else {
			app.DB = database
			app.journal = startJournal(database, logger)
			app.unsubscribe = st.Subscribe(app.journal.record)
		}
	}

	return app, nil
}

// Close flushes the journal and releases the session backend.
func (a *App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if a.journal != nil {
		a.journal.close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Charm != nil {
		_ = a.Charm.Close()
	}
}

// SetInput replaces the reader line prompts consume.
func (a *App) SetInput(r io.Reader) {
	a.in = bufio.NewReader(r)
}

func (a *App) requireLogin() error {
	if !a.Store.State().Auth.LoggedIn() {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Out, format, args...)
}

func (a *App) println(args ...any) {
	_, _ = fmt.Fprintln(a.Out, args...)
}

// prompt reads one line, returning def when the line is empty.
func (a *App) prompt(label, def string) (string, error) {
	if def != "" {
		a.printf("%s [%s]: ", label, def)
	} else {
		a.printf("%s: ", label)
	}
	line, err := a.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

func (a *App) promptPassword(label string) (string, error) {
	a.printf("%s: ", label)
	pw, err := a.ReadPassword()
	a.println()
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(label), err)
	}
	return pw, nil
}

func readTerminalPassword() (string, error) {
	b, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
