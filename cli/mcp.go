// ABOUTME: MCP server and TUI subcommands
// ABOUTME: Serves the store's tools over stdio, or opens the interactive dashboard
package cli

import (
	"context"
	"flag"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/rankup/handlers"
	"github.com/harperreed/rankup/tui"
)

// NewMCPServer returns a server with every rankup tool, resource, and prompt registered.
func NewMCPServer(app *App, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "rankup",
		Version: version,
	}, nil)
	handlers.New(app.Store, app.Config.ReferralBaseURL).Register(server)
	return server
}

// MCPCommand starts the MCP server on stdio.
func MCPCommand(ctx context.Context, app *App, version string, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	// stdout carries the protocol; logs go to stderr.
	app.Logger.Info("starting rankup MCP server", "api", app.Config.APIURL)
	return NewMCPServer(app, version).Run(ctx, &mcp.StdioTransport{})
}

// TUICommand opens the interactive dashboard.
func TUICommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := app.requireLogin(); err != nil {
		return err
	}
	return tui.Run(ctx, app.Store, app.Config.ReferralBaseURL)
}
