package cli

import (
	"context"
	"fmt"
)

// Run выполняет команду
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "sync":
		return c.runSync(ctx, args)
	case "list":
		return c.runList(ctx, args)
	case "status":
		return c.runStatus(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "help":
		PrintUsage(c.io)
		return nil
	default:
		PrintUsage(c.io)
		return fmt.Errorf("unknown command: %s", command)
	}
}
