package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/iudanet/gcontacts/internal/client/sync"
)

func (c *Cli) runList(ctx context.Context, args []string) error {
	var (
		short bool
		terms []string
	)
	for _, arg := range args {
		if arg == "--short" || arg == "-short" || arg == "-s" {
			short = true
			continue
		}
		terms = append(terms, arg)
	}
	query := strings.Join(terms, " ")

	if err := c.signIn(ctx, true); err != nil {
		return err
	}

	result, err := c.syncService.Sync(ctx, c.userID, c.accessToken, sync.Options{})
	if err != nil {
		return fmt.Errorf("failed to get contacts: %w", err)
	}
	if result.Stale {
		c.io.Printf("Warning: showing cached contacts from %s: %v\n\n", formatTime(result.LastSync), result.FetchError)
	}

	contacts := result.Contacts.Search(query).SortByName()

	if len(contacts) == 0 {
		if query != "" {
			c.io.Printf("No contacts match %q.\n", query)
		} else {
			c.io.Println("No contacts found.")
		}
		return nil
	}

	c.io.Printf("Found %d contact(s):\n", len(contacts))
	c.io.Println()

	for i, contact := range contacts {
		if short {
			c.io.Printf("%d. %s\t%s\t%s\n", i+1, contact.DisplayName, contact.PrimaryEmail(), contact.PrimaryPhone())
			continue
		}
		c.io.Printf("%d. %s\n", i+1, contact.DisplayName)
		for _, email := range contact.Emails {
			c.io.Printf("   Email: %s\n", email)
		}
		for _, phone := range contact.Phones {
			c.io.Printf("   Phone: %s\n", phone)
		}
	}

	return nil
}
