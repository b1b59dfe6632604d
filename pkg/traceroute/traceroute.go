// Package traceroute discovers the routers between this host and a target by
// sending native pings with increasing TTL.
package traceroute

import (
	"context"
	"errors"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/ping"
	"github.com/projectdiscovery/netsurvey/pkg/task"
	"github.com/projectdiscovery/netsurvey/pkg/types"
)

const (
	DefaultMaxHops = 30
	MaxHops        = 255
	// MaxHopTimeout caps the wait for each hop.
	MaxHopTimeout = time.Second

	hopGrace = 2 * time.Second
)

// Listener receives hops as they are discovered.
type Listener interface {
	OnHop(Hop)
	OnFinished([]Hop)
	OnError(error)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Hop      func(Hop)
	Finished func([]Hop)
	Error    func(error)
}

func (l ListenerFuncs) OnHop(h Hop) {
	if l.Hop != nil {
		l.Hop(h)
	}
}

func (l ListenerFuncs) OnFinished(hops []Hop) {
	if l.Finished != nil {
		l.Finished(hops)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}

type Option func(*Tracer) error

// WithMaxHops sets the highest TTL tried.
func WithMaxHops(hops int) Option {
	return func(t *Tracer) error {
		if hops < 1 || hops > MaxHops {
			return types.InvalidArgument("max-hops", "%d is outside 1-%d", hops, MaxHops)
		}
		t.maxHops = hops
		return nil
	}
}

// WithTimeout sets the per-hop timeout, capped at MaxHopTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(t *Tracer) error {
		if timeout < 0 {
			return types.InvalidArgument("timeout", "%s is negative", timeout)
		}
		t.timeout = min(timeout, MaxHopTimeout)
		return nil
	}
}

// WithRunner replaces the process runner used to invoke ping.
func WithRunner(runner ping.CommandRunner) Option {
	return func(t *Tracer) error {
		if runner == nil {
			return types.InvalidArgument("runner", "runner is nil")
		}
		t.runner = runner
		return nil
	}
}

// Tracer walks the path to one target
type Tracer struct {
	target  *common.Target
	maxHops int
	timeout time.Duration
	runner  ping.CommandRunner
}

// New validates a trace to target.
func New(target *common.Target, opts ...Option) (*Tracer, error) {
	if target == nil {
		return nil, common.ErrNoTarget
	}
	t := &Tracer{
		target:  target,
		maxHops: DefaultMaxHops,
		timeout: MaxHopTimeout,
		runner:  ping.ExecRunner(),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Run traces in the foreground.
func (t *Tracer) Run(ctx context.Context) ([]Hop, error) {
	var (
		hops   []Hop
		runErr error
	)
	t.Start(ctx, ListenerFuncs{
		Finished: func(found []Hop) { hops = found },
		Error:    func(err error) { runErr = err },
	}).Wait()
	return hops, runErr
}

// Start traces in the background and returns immediately. Exactly one of
// OnFinished and OnError is called.
func (t *Tracer) Start(ctx context.Context, listener Listener) *task.Handle {
	return task.Go(ctx, func(h *task.Handle) {
		t.run(ctx, h, listener)
	})
}

func (t *Tracer) run(ctx context.Context, h *task.Handle, listener Listener) {
	ip, err := t.target.Resolve(ctx)
	if err != nil {
		listener.OnError(err)
		return
	}
	gologger.Verbose().Msgf("[%s] tracing %s (%s) max-hops=%d", h.ID(), t.target, ip, t.maxHops)

	var hops []Hop
	for ttl := 1; ttl <= t.maxHops; ttl++ {
		if h.Cancelled() {
			break
		}
		opts, err := ping.NewOptions(ping.WithTimeout(t.timeout), ping.WithTTL(ttl))
		if err != nil {
			listener.OnError(err)
			return
		}

		name, args := ping.NativeCommand(ip, opts)
		hopCtx, cancel := context.WithTimeout(ctx, opts.Timeout+hopGrace)
		output, _, err := t.runner.Run(hopCtx, name, args...)
		cancel()

		switch {
		case errors.Is(err, ping.ErrNotStarted):
			listener.OnError(err)
			return
		case ctx.Err() != nil:
			listener.OnFinished(hops)
			return
		case err != nil:
			gologger.Debug().Msgf("[%s] ttl %d: %v", h.ID(), ttl, err)
			continue
		}

		hop, ok := parseHop(ttl, string(output))
		if !ok {
			gologger.Debug().Msgf("[%s] ttl %d: no answer", h.ID(), ttl)
			continue
		}
		hops = append(hops, hop)
		listener.OnHop(hop)
		if hop.Destination {
			break
		}
	}
	listener.OnFinished(hops)
}
