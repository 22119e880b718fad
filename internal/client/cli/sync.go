package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/iudanet/gcontacts/internal/client/sync"
)

func (c *Cli) runSync(ctx context.Context, args []string) error {
	opts := sync.Options{OnProgress: func(msg string) { c.io.Println(msg) }}
	for _, arg := range args {
		switch arg {
		case "--force", "-force", "-f":
			opts.Force = true
		default:
			return fmt.Errorf("unknown sync option: %s. Usage: gcontacts sync [--force]", arg)
		}
	}

	if err := c.signIn(ctx, true); err != nil {
		return err
	}

	result, err := c.syncService.Sync(ctx, c.userID, c.accessToken, opts)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	c.printSyncResult(result)
	return nil
}

func (c *Cli) printSyncResult(result *sync.Result) {
	switch {
	case result.Stale:
		c.io.Printf("Warning: could not fetch contacts: %v\n", result.FetchError)
		c.io.Printf("Showing %d cached contact(s) from %s.\n", len(result.Contacts), formatTime(result.LastSync))
	case result.FromCache:
		c.io.Printf("Contacts are up to date: %d cached contact(s), last sync %s.\n", len(result.Contacts), formatTime(result.LastSync))
	default:
		c.io.Printf("Synchronized %d contact(s).\n", len(result.Contacts))
		if result.Skipped > 0 {
			c.io.Printf("Skipped %d contact(s) without a name.\n", result.Skipped)
		}
	}

	if !result.Persisted {
		c.io.Println("⚠️  Local storage is full. Contacts are kept in memory only and will be refetched next time.")
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return t.Local().Format(time.RFC3339)
}
