package bot

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// Daemon owns the adapter lifecycle: connect, pump inbound events through
// the router, disconnect on context cancellation.
type Daemon struct {
	adapter Adapter
	router  *Router
	out     io.Writer

	mu     sync.Mutex
	queues map[int64]chan Inbound
}

// DaemonOpts holds parameters for creating a Daemon.
type DaemonOpts struct {
	Adapter Adapter
	Router  *Router
	Out     io.Writer
}

// NewDaemon creates a Daemon.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if opts.Adapter == nil {
		return nil, fmt.Errorf("bot: adapter is required")
	}
	if opts.Router == nil {
		return nil, fmt.Errorf("bot: router is required")
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	return &Daemon{
		adapter: opts.Adapter,
		router:  opts.Router,
		out:     opts.Out,
		queues:  make(map[int64]chan Inbound),
	}, nil
}

// Run connects, then processes inbound events until the context is cancelled
// or the adapter closes its event channel. Events are handled by one worker
// per chat: a chat's events stay in order and never touch its session
// concurrently, while separate chats proceed in parallel.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.adapter.Connect(ctx); err != nil {
		return fmt.Errorf("bot: connect: %w", err)
	}
	defer d.adapter.Close()

	events, err := d.adapter.Listen(ctx)
	if err != nil {
		return fmt.Errorf("bot: listen: %w", err)
	}
	fmt.Fprintln(d.out, "[bot] listening for updates")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			d.dispatch(ctx, ev)
		}
	}
}

// dispatch hands the event to the chat's worker, starting one on first
// contact. Workers live until the context is cancelled.
func (d *Daemon) dispatch(ctx context.Context, ev Inbound) {
	d.mu.Lock()
	q, ok := d.queues[ev.ChatID]
	if !ok {
		q = make(chan Inbound, 16)
		d.queues[ev.ChatID] = q
		go d.work(ctx, q)
	}
	d.mu.Unlock()

	select {
	case q <- ev:
	case <-ctx.Done():
	}
}

func (d *Daemon) work(ctx context.Context, q <-chan Inbound) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-q:
			d.router.Handle(ctx, ev)
		}
	}
}
