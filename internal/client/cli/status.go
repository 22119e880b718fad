package cli

import (
	"context"
	"fmt"
	"text/template"

	"github.com/iudanet/gcontacts/internal/crypto"
)

var statusTmpl = template.Must(template.New("status").Parse(statusTemplate))

type statusView struct {
	User       string
	LastSync   string
	Contacts   int
	Used       int64
	Quota      int64
	Cached     bool
	MemoryOnly bool
	NeedsSync  bool
	HasUsage   bool
}

func (c *Cli) runStatus(ctx context.Context) error {
	if err := c.signIn(ctx, false); err != nil {
		return err
	}

	st, err := c.syncService.Status(ctx, c.userID)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	view := statusView{
		User:       crypto.Fingerprint(c.userID),
		LastSync:   formatTime(st.LastSync),
		Contacts:   st.Contacts,
		Cached:     st.Cached,
		MemoryOnly: st.MemoryOnly,
		NeedsSync:  st.NeedsSync,
	}

	if c.usage != nil {
		used, quota, err := c.usage.Usage(ctx)
		if err != nil {
			// Не прерываем выполнение, просто показываем предупреждение
			c.io.Printf("Warning: failed to get storage usage: %v\n", err)
		} else {
			view.Used, view.Quota, view.HasUsage = used, quota, true
		}
	}

	if err := statusTmpl.Execute(c.io, view); err != nil {
		return fmt.Errorf("failed to render status: %w", err)
	}
	return nil
}
