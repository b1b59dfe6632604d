package ping

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/types"
)

// nativeGrace is added to the probe timeout as a hard stop for the native process
const nativeGrace = 3 * time.Second

// Strategy selects how probes are performed
type Strategy int

const (
	// StrategyHybrid runs the native utility and falls back to TCP when it cannot start.
	StrategyHybrid Strategy = iota
	// StrategyNative only uses the native utility.
	StrategyNative
	// StrategyFallback only uses the TCP echo-port check.
	StrategyFallback
)

func (s Strategy) String() string {
	switch s {
	case StrategyNative:
		return "native"
	case StrategyFallback:
		return "fallback"
	default:
		return "hybrid"
	}
}

// ParseStrategy maps a strategy name to its value.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hybrid":
		return StrategyHybrid, nil
	case "native":
		return StrategyNative, nil
	case "fallback", "tcp":
		return StrategyFallback, nil
	}
	return StrategyHybrid, types.InvalidArgument("strategy", "unknown strategy %q", name)
}

// Prober performs single echo probes
type Prober struct {
	strategy Strategy
	runner   CommandRunner
	platform string
	grace    time.Duration
}

// ProberOption configures a Prober
type ProberOption func(*Prober)

// WithStrategy sets the probing strategy.
func WithStrategy(strategy Strategy) ProberOption {
	return func(p *Prober) {
		p.strategy = strategy
	}
}

// WithRunner replaces the command runner used for native probes.
func WithRunner(runner CommandRunner) ProberOption {
	return func(p *Prober) {
		p.runner = runner
	}
}

// New returns a hybrid prober using the system ping utility.
func New(opts ...ProberOption) *Prober {
	p := &Prober{
		strategy: StrategyHybrid,
		runner:   ExecRunner(),
		platform: currentPlatform(),
		grace:    nativeGrace,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProbeOnce resolves target and probes it once. The error is non-nil only
// when the target is missing or cannot be resolved; network failures are
// reported in the Result.
func (p *Prober) ProbeOnce(ctx context.Context, target *common.Target, opts Options) (Result, error) {
	if target == nil {
		return Result{}, common.ErrNoTarget
	}
	ip, err := target.Resolve(ctx)
	if err != nil {
		return Result{}, err
	}
	return p.ProbeAddress(ctx, ip, opts), nil
}

// ProbeAddress probes an already resolved address once.
func (p *Prober) ProbeAddress(ctx context.Context, ip net.IP, opts Options) Result {
	if opts.Timeout <= 0 || opts.TTL < 1 {
		opts = DefaultOptions()
	}

	if p.strategy == StrategyFallback {
		return probeFallback(ctx, ip, opts)
	}

	result, err := p.probeNative(ctx, ip, opts)
	if err == nil {
		return result
	}
	if p.strategy == StrategyNative {
		return unreachable(ip, err.Error(), "")
	}
	gologger.Debug().Msgf("native ping unavailable, using tcp fallback for %s: %v", ip, err)
	return probeFallback(ctx, ip, opts)
}

// probeNative returns an error only when the utility could not be started
func (p *Prober) probeNative(ctx context.Context, ip net.IP, opts Options) (Result, error) {
	name, args := nativeCommand(p.platform, ip, opts)

	runCtx, cancel := context.WithTimeout(ctx, opts.Timeout+p.grace)
	defer cancel()

	start := time.Now()
	output, exitCode, err := p.runner.Run(runCtx, name, args...)
	wall := time.Since(start)
	raw := string(output)

	switch {
	case errors.Is(err, ErrNotStarted):
		return Result{}, err
	case ctx.Err() != nil:
		return unreachable(ip, ReasonInterrupted, raw), nil
	case err != nil && runCtx.Err() != nil:
		return unreachable(ip, ReasonTimedOut, raw), nil
	case err != nil:
		return Result{}, fmt.Errorf("%w: %v", ErrNotStarted, err)
	}

	ok, elapsed, reason := parseNativeOutput(raw)
	if !ok {
		gologger.Debug().Msgf("ping %s exited with %d: %s", ip, exitCode, reason)
		return unreachable(ip, reason, raw), nil
	}
	if elapsed == 0 {
		elapsed = wall
	}
	return reachable(ip, elapsed, raw), nil
}
