package ping

import (
	"fmt"
	"net"
	"time"
)

// Result is the outcome of one probe attempt.
// Reachable is true exactly when Error is empty.
type Result struct {
	Target    net.IP        `json:"target"`
	Reachable bool          `json:"reachable"`
	Elapsed   time.Duration `json:"elapsed"`
	Error     string        `json:"error,omitempty"`
	RawOutput string        `json:"raw_output,omitempty"`
}

func reachable(ip net.IP, elapsed time.Duration, raw string) Result {
	return Result{Target: ip, Reachable: true, Elapsed: elapsed, RawOutput: raw}
}

func unreachable(ip net.IP, reason, raw string) Result {
	return Result{Target: ip, Error: reason, RawOutput: raw}
}

// HasError reports whether the probe failed.
func (r Result) HasError() bool {
	return r.Error != ""
}

// ElapsedMillis returns the round-trip time in fractional milliseconds.
func (r Result) ElapsedMillis() float64 {
	return float64(r.Elapsed) / float64(time.Millisecond)
}

func (r Result) String() string {
	if r.HasError() {
		return fmt.Sprintf("%s unreachable: %s", r.Target, r.Error)
	}
	return fmt.Sprintf("%s reachable in %.2f ms", r.Target, r.ElapsedMillis())
}

// Statistics summarises a repeated probe run.
type Statistics struct {
	Target   net.IP        `json:"target"`
	Attempts int           `json:"attempts"`
	Lost     int           `json:"lost"`
	Total    time.Duration `json:"total"`
	// Min and Max are -1 until an attempt succeeds.
	Min time.Duration `json:"min"`
	Max time.Duration `json:"max"`
}

// Average returns Total divided by Attempts.
func (s Statistics) Average() time.Duration {
	if s.Attempts == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Attempts)
}

// Reachable reports whether at least one attempt succeeded.
func (s Statistics) Reachable() bool {
	return s.Attempts-s.Lost > 0
}

// HasRTT reports whether Min and Max hold measured values.
func (s Statistics) HasRTT() bool {
	return s.Min >= 0
}

// PacketLoss returns the fraction of lost attempts.
func (s Statistics) PacketLoss() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Lost) / float64(s.Attempts)
}

func (s Statistics) String() string {
	return fmt.Sprintf("%s: %d sent, %d lost (%.0f%% loss), avg %.2f ms",
		s.Target, s.Attempts, s.Lost, s.PacketLoss()*100, float64(s.Average())/float64(time.Millisecond))
}

type statsCollector struct {
	stats Statistics
}

func newStatsCollector(ip net.IP) *statsCollector {
	return &statsCollector{stats: Statistics{Target: ip, Min: -1, Max: -1}}
}

func (c *statsCollector) add(r Result) {
	c.stats.Attempts++
	if r.HasError() {
		c.stats.Lost++
		return
	}
	c.stats.Total += r.Elapsed
	if c.stats.Max == -1 || r.Elapsed > c.stats.Max {
		c.stats.Max = r.Elapsed
	}
	if c.stats.Min == -1 || r.Elapsed < c.stats.Min {
		c.stats.Min = r.Elapsed
	}
}

func (c *statsCollector) statistics() Statistics {
	return c.stats
}
