package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.signIn(ctx, false); err != nil {
		return err
	}

	if err := c.syncService.SignOut(ctx, c.userID); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}

	c.io.Println("Local contact cache cleared.")
	return nil
}
