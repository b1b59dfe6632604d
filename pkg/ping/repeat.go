package ping

import (
	"context"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/task"
	"github.com/projectdiscovery/netsurvey/pkg/types"
)

// Listener receives the events of a repeated probe. OnFinished is called
// once after the last OnResult; OnError replaces both when the target
// cannot be resolved.
type Listener interface {
	OnResult(Result)
	OnFinished(Statistics)
	OnError(error)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Result   func(Result)
	Finished func(Statistics)
	Error    func(error)
}

func (l ListenerFuncs) OnResult(r Result) {
	if l.Result != nil {
		l.Result(r)
	}
}

func (l ListenerFuncs) OnFinished(s Statistics) {
	if l.Finished != nil {
		l.Finished(s)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}

// Repeater probes one target serially
type Repeater struct {
	target  *common.Target
	options Options
	times   int
	delay   time.Duration
	prober  *Prober
}

// NewRepeater validates a repeated probe. times == 0 probes until cancelled.
// A nil prober uses New().
func NewRepeater(target *common.Target, options Options, times int, delay time.Duration, prober *Prober) (*Repeater, error) {
	if target == nil {
		return nil, common.ErrNoTarget
	}
	if times < 0 {
		return nil, types.InvalidArgument("times", "%d is negative", times)
	}
	if delay < 0 {
		return nil, types.InvalidArgument("delay", "%s is negative", delay)
	}
	if prober == nil {
		prober = New()
	}
	return &Repeater{
		target:  target,
		options: options,
		times:   times,
		delay:   delay,
		prober:  prober,
	}, nil
}

// Start probes in the background and returns immediately.
func (r *Repeater) Start(ctx context.Context, listener Listener) *task.Handle {
	return task.Go(ctx, func(h *task.Handle) {
		r.run(ctx, h, listener)
	})
}

// Run probes in the foreground and returns the final statistics.
func (r *Repeater) Run(ctx context.Context) (Statistics, error) {
	var (
		stats  Statistics
		runErr error
	)
	h := r.Start(ctx, ListenerFuncs{
		Finished: func(s Statistics) { stats = s },
		Error:    func(err error) { runErr = err },
	})
	h.Wait()
	return stats, runErr
}

func (r *Repeater) run(ctx context.Context, h *task.Handle, listener Listener) {
	ip, err := r.target.Resolve(ctx)
	if err != nil {
		listener.OnError(err)
		return
	}

	gologger.Verbose().Msgf("[%s] probing %s (%s) times=%d delay=%s", h.ID(), r.target, ip, r.times, r.delay)

	collector := newStatsCollector(ip)
	for attempt := 1; r.times == 0 || attempt <= r.times; attempt++ {
		result := r.prober.ProbeAddress(ctx, ip, r.options)
		listener.OnResult(result)
		collector.add(result)

		if h.Cancelled() || attempt == r.times {
			break
		}
		if !sleep(ctx, h, r.delay) {
			break
		}
	}

	listener.OnFinished(collector.statistics())
}

// sleep waits for d and reports false when ctx ended or the run was
// cancelled first
func sleep(ctx context.Context, h *task.Handle, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil && !h.Cancelled()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-h.Stopping():
		return false
	case <-timer.C:
		return true
	}
}
