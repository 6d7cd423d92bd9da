// ABOUTME: CLI commands for the charm-backed session
// ABOUTME: Link, inspect, sync, and wipe the session copy held in Charm KV

package charm

import (
	"flag"
	"fmt"
)

// LinkCommand links this device to a Charm account so the session follows it.
// Charm authenticates with the device SSH key.
func LinkCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("session link", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Printf("Linking to Charm Cloud (%s)...\n\n", cfg.Host)

	if err := c.Sync(); err != nil {
		return fmt.Errorf("link failed: %w", err)
	}

	id, err := c.ID()
	if err != nil {
		fmt.Println("✓ Device linked (ID unavailable)")
	} else {
		fmt.Printf("✓ Linked to account: %s\n", id)
	}
	fmt.Printf("✓ Auto-sync: %v\n", cfg.AutoSync)
	fmt.Println("\nLog in on any linked device and the session is shared.")
	return nil
}

// StatusCommand shows the charm connection and whether a session is stored.
func StatusCommand(c *Client, sessionKey string, args []string) error {
	fs := flag.NewFlagSet("session status", flag.ExitOnError)
	_ = fs.Parse(args)

	cfg := c.Config()
	fmt.Println("Charm Session Status")
	fmt.Println("────────────────────")
	fmt.Printf("Server:    %s\n", cfg.Host)
	fmt.Printf("Auto-sync: %v\n", cfg.AutoSync)

	if id, err := c.ID(); err != nil {
		fmt.Println("Status:    Not connected")
	} else {
		fmt.Printf("Status:    Connected (%s)\n", id)
	}

	if _, err := c.Get([]byte(sessionKey)); err == nil {
		fmt.Println("Session:   stored")
	} else {
		fmt.Println("Session:   none")
	}
	return nil
}

// SyncNowCommand performs an immediate sync.
func SyncNowCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("session now", flag.ExitOnError)
	verbose := fs.Bool("verbose", false, "Show verbose output")
	_ = fs.Parse(args)

	if *verbose {
		fmt.Println("Syncing with server...")
	}
	if err := c.Sync(); err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	fmt.Println("✓ Synced")
	return nil
}

// WipeCommand resets the KV store, dropping the shared session.
func WipeCommand(c *Client, args []string) error {
	fs := flag.NewFlagSet("session wipe", flag.ExitOnError)
	confirm := fs.Bool("confirm", false, "Confirm data wipe")
	_ = fs.Parse(args)

	if !*confirm {
		fmt.Println("WARNING: This removes the stored session from every linked device.")
		fmt.Println()
		fmt.Println("To confirm, run:")
		fmt.Println("  rankup session wipe --confirm")
		return nil
	}

	if err := c.Reset(); err != nil {
		return fmt.Errorf("failed to reset KV store: %w", err)
	}
	fmt.Println("✓ Session data wiped")
	return nil
}
