// Package daemon runs the long-lived process: it fans command sources
// (IPC clients, the compositor's gesture stream) into a single channel
// and feeds them to the switcher one at a time.
package daemon

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/gridswitch/internal/command"
	"github.com/yourusername/gridswitch/internal/logging"
	"github.com/yourusername/gridswitch/internal/switcher"
	"github.com/yourusername/gridswitch/internal/visualizer"
)

// Dispatch is one command on its way to the switcher. Reply, if non-nil,
// receives the Handle result; sources that do not care (gesture events)
// leave it nil.
type Dispatch struct {
	Cmd   command.Command
	Reply chan<- error
}

// Source produces dispatches. Run blocks until ctx is cancelled or the
// source fails fatally; transient per-message errors are the source's
// own business.
type Source interface {
	Run(ctx context.Context, sink chan<- Dispatch) error
}

// EventSink receives visualizer events fanned out by the daemon.
type EventSink func(visualizer.Event)

// Daemon wires sources to a switcher and distributes visualizer events.
type Daemon struct {
	sw      *switcher.Switcher
	sources []Source
	sinks   []EventSink
	queries chan chan switcher.Status
	log     zerolog.Logger
}

func New(sw *switcher.Switcher) *Daemon {
	return &Daemon{
		sw:      sw,
		queries: make(chan chan switcher.Status),
		log:     logging.Logger.With().Str("component", "daemon").Logger(),
	}
}

// AddSource registers a command source. Must be called before Run.
func (d *Daemon) AddSource(src Source) {
	d.sources = append(d.sources, src)
}

// AddEventSink registers a visualizer event consumer. Must be called
// before Run.
func (d *Daemon) AddEventSink(sink EventSink) {
	d.sinks = append(d.sinks, sink)
}

// Run starts every source and consumes dispatches until ctx is
// cancelled or a source fails. Commands are handled strictly one at a
// time, which is what keeps the per-monitor positions in lock-step
// without locking inside the switcher.
func (d *Daemon) Run(ctx context.Context) error {
	dispatches := make(chan Dispatch, 64)
	events := make(chan visualizer.Event, 64)
	d.sw.SetVisualizer(events)

	g, ctx := errgroup.WithContext(ctx)

	for _, src := range d.sources {
		src := src
		g.Go(func() error {
			return src.Run(ctx, dispatches)
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev := <-events:
				for _, sink := range d.sinks {
					sink(ev)
				}
			}
		}
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case disp := <-dispatches:
				err := d.sw.Handle(disp.Cmd)
				if err != nil {
					d.log.Error().Err(err).Stringer("command", disp.Cmd).Msg("command failed")
				}
				if disp.Reply != nil {
					disp.Reply <- err
				}
			case reply := <-d.queries:
				reply <- d.sw.Snapshot()
			}
		}
	})

	err := g.Wait()
	if err == context.Canceled {
		return nil
	}
	return err
}

// Status queries the switcher state on the command loop, so the
// snapshot never observes a half-applied command.
func (d *Daemon) Status() switcher.Status {
	reply := make(chan switcher.Status, 1)
	d.queries <- reply
	return <-reply
}
