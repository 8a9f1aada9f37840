// Package refresh periodically re-reads each client's balance from their
// most recent issued sheet and stores the fresh figure.
package refresh

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/robfig/cron/v3"

	"github.com/golandec/invoicebot/internal/bot"
	"github.com/golandec/invoicebot/internal/store"
)

// Refresher runs the balance sweep on a cron schedule.
type Refresher struct {
	store    *store.Store
	prov     bot.Provisioner
	cell     string
	schedule string
	out      io.Writer
	cron     *cron.Cron
}

// Opts holds parameters for creating a Refresher.
type Opts struct {
	Store       *store.Store
	Provisioner bot.Provisioner
	BalanceCell string // cell read from each client's latest artifact
	Schedule    string // cron expression, e.g. "0 * * * *"
	Out         io.Writer
}

// New creates a Refresher.
func New(opts Opts) (*Refresher, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("refresh: store is required")
	}
	if opts.Provisioner == nil {
		return nil, fmt.Errorf("refresh: provisioner is required")
	}
	if opts.BalanceCell == "" {
		return nil, fmt.Errorf("refresh: balance cell is required")
	}
	if opts.Schedule == "" {
		opts.Schedule = "0 * * * *"
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Refresher{
		store:    opts.Store,
		prov:     opts.Provisioner,
		cell:     opts.BalanceCell,
		schedule: opts.Schedule,
		out:      opts.Out,
	}, nil
}

// Start registers the sweep with the scheduler and begins running it. The
// scheduler stops when the context is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	c := cron.New()
	_, err := c.AddFunc(r.schedule, func() {
		if err := r.Sweep(ctx); err != nil {
			fmt.Fprintf(r.out, "[refresh] sweep: %v\n", err)
		}
	})
	if err != nil {
		return fmt.Errorf("refresh: schedule %q: %w", r.schedule, err)
	}
	c.Start()
	r.cron = c

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	fmt.Fprintf(r.out, "[refresh] balance sweep scheduled (%s)\n", r.schedule)
	return nil
}

// Sweep refreshes the stored balance of every client with at least one
// issued document. Per-client failures are logged and skipped so one stale
// or deleted sheet cannot stall the rest of the sweep.
func (r *Refresher) Sweep(ctx context.Context) error {
	clients, err := r.store.ClientsWithDocuments(ctx)
	if err != nil {
		return err
	}

	updated := 0
	for _, client := range clients {
		if client.LastDocumentID == nil || *client.LastDocumentID == "" {
			continue
		}
		val, err := r.prov.ReadCell(ctx, *client.LastDocumentID, r.cell)
		if err != nil {
			fmt.Fprintf(r.out, "[refresh] client %d: read balance: %v\n", client.ID, err)
			continue
		}
		if err := r.store.UpdateBalance(ctx, client.ID, val); err != nil {
			fmt.Fprintf(r.out, "[refresh] client %d: store balance: %v\n", client.ID, err)
			continue
		}
		updated++
	}
	fmt.Fprintf(r.out, "[refresh] swept %d clients, updated %d\n", len(clients), updated)
	return nil
}
