// ABOUTME: Entry point for the rankup CLI, TUI, and MCP server
// ABOUTME: Loads configuration, builds the store, and routes to subcommands
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/harperreed/rankup/cli"
	"github.com/harperreed/rankup/config"
)

const version = "0.1.0"

type command func(ctx context.Context, app *cli.App, args []string) error

var commands = map[string]command{
	"login":       cli.LoginCommand,
	"logout":      cli.LogoutCommand,
	"register":    cli.RegisterCommand,
	"verify":      cli.VerifyCommand,
	"whoami":      cli.WhoamiCommand,
	"profile":     cli.ProfileCommand,
	"password":    cli.PasswordCommand,
	"dashboard":   cli.DashboardCommand,
	"claim":       cli.ClaimCommand,
	"rewards":     cli.RewardsCommand,
	"income":      cli.IncomeCommand,
	"sales":       cli.SalesCommand,
	"invest":      cli.InvestCommand,
	"team":        cli.TeamCommand,
	"balance":     cli.BalanceCommand,
	"withdrawals": cli.WithdrawalsCommand,
	"withdraw":    cli.WithdrawCommand,
	"status":      cli.StatusCommand,
	"session":     cli.SessionCommand,
	"tui":         cli.TUICommand,
	"mcp": func(ctx context.Context, app *cli.App, args []string) error {
		return cli.MCPCommand(ctx, app, version, args)
	},
}

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	apiURL := flag.String("api-url", "", "Platform API base URL (default: http://localhost:5000/api)")
	dbPath := flag.String("db-path", "", "Journal database path (default: ~/.local/share/rankup/rankup.db)")
	debug := flag.Bool("debug", false, "Log every HTTP exchange to stderr")
	flag.Usage = printUsage

	// Parse global flags but stop at the first subcommand
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("rankup version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	name, commandArgs := args[0], args[1:]
	if name == "version" {
		fmt.Printf("rankup version %s\n", version)
		return
	}
	if name == "help" {
		printUsage()
		return
	}
	cmd, ok := commands[name]
	if !ok {
		fmt.Printf("Unknown command: %s\n\n", name)
		printUsage()
		os.Exit(1)
	}

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "rankup",
		ReportTimestamp: true,
		Level:           cfg.Level(),
	})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cmd(ctx, app, commandArgs)
	stop()
	app.Close()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`rankup v%s - terminal client for the referral investment platform

USAGE:
  rankup [global flags] <command> [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --api-url <url>        Platform API base URL (env: RANKUP_API_URL)
  --db-path <path>       Journal database path (env: RANKUP_DB_PATH)
  --debug                Log every HTTP exchange to stderr

ACCOUNT:
  rankup login              Log in (prompts for anything omitted)
    --email <email>
    --password <password>
  rankup logout             Drop the stored session
  rankup register           Create an account
    --name, --username, --email, --phone (required)
    --branch <name>           Branch name or ID
    --ref <code>              Upline referral code
    --password <password>     Prompted twice when omitted
  rankup verify <token>     Confirm an account with the emailed token
  rankup whoami             Show the logged-in user
  rankup profile            Show or update the profile
    --name, --phone, --address, --picture
  rankup password           Change the password (prompted)

DASHBOARD:
  rankup dashboard          KPIs, income, team, investment, and levels
  rankup claim <level-id>   Claim the reward for an achieved level

INCOME:
  rankup rewards            Reward history
    --page <n>
    --type <type>             staking, level, or referral
    --from, --to <date>       YYYY-MM-DD
  rankup income             Income split by source

INVESTMENTS:
  rankup sales              Recorded sales
    --status <status>         pending, completed, or rejected
    --page <n>, --limit <n>
  rankup invest             Record a sale
    --description <text>      (required)
    --amount <rupees>         (required)
    --commission <rate>       0.05, 0.06, or 0.07 (default 0.05)
    --profit <rate>           0.05, 0.06, or 0.07 (default 0.05)
    --bank                    Paid into a bank account
    --no-product              Investor does not take the product
    --receipt <file>          Attach a receipt

TEAM:
  rankup team               Downline members
    --type <type>             direct or indirect
    --graph <file>            Write the referral tree (.svg, .png, .jpg, or DOT)

WITHDRAWALS:
  rankup balance            Withdrawable balance
  rankup withdrawals        Withdrawal history
  rankup withdraw <amount>  Request a payout (minimum 50)
    --yes                     Submit without asking

OTHER:
  rankup status             Journal of recent store operations
    --recent <n>              Also list the n latest events
    --prune <n>               Keep only the n latest events
  rankup tui                Interactive dashboard
  rankup mcp                MCP server on stdio
  rankup session <cmd>      Charm session backend: link, status, now, wipe
  rankup version            Show version

EXAMPLES:
  rankup login --email demo@rankup.dev
  rankup team --graph team.svg
  rankup invest --description "Gold plan" --amount 20000 --commission 0.07
  rankup withdraw --yes 5000

`, version)
}
