package ping

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/task"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	"github.com/stretchr/testify/require"
)

const (
	linuxReply = `PING 192.168.1.1 (192.168.1.1) 56(84) bytes of data.
64 bytes from 192.168.1.1: icmp_seq=1 ttl=64 time=0.045 ms

--- 192.168.1.1 ping statistics ---
1 packets transmitted, 1 received, 0% packet loss, time 0ms
rtt min/avg/max/mdev = 0.045/0.045/0.045/0.000 ms
`
	linuxLost = `PING 192.168.1.77 (192.168.1.77) 56(84) bytes of data.

--- 192.168.1.77 ping statistics ---
1 packets transmitted, 0 received, +1 errors, 100% packet loss, time 0ms
`
	darwinReply = `PING 10.0.0.1 (10.0.0.1): 56 data bytes
64 bytes from 10.0.0.1: icmp_seq=0 ttl=64 time=3.210 ms

--- 10.0.0.1 ping statistics ---
1 packets transmitted, 1 packets received, 0.0% packet loss
round-trip min/avg/max/stddev = 3.210/3.210/3.210/0.000 ms
`
	windowsReply = `Pinging 10.0.0.1 with 32 bytes of data:
Reply from 10.0.0.1: bytes=32 time=4ms TTL=64

Ping statistics for 10.0.0.1:
    Packets: Sent = 1, Received = 1, Lost = 0 (0% loss),
Approximate round trip times in milli-seconds:
    Minimum = 4ms, Maximum = 4ms, Average = 4ms
`
)

type fakeRunner struct {
	mu       sync.Mutex
	output   string
	exitCode int
	err      error
	block    bool
	calls    [][]string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, int, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return []byte(f.output), -1, ctx.Err()
	}
	return []byte(f.output), f.exitCode, f.err
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestNewOptions(t *testing.T) {
	opts, err := NewOptions()
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, opts.Timeout)
	require.Equal(t, DefaultTTL, opts.TTL)

	opts, err = NewOptions(WithTimeout(200*time.Millisecond), WithTTL(3))
	require.NoError(t, err)
	require.Equal(t, MinTimeout, opts.Timeout, "timeout is floored")
	require.Equal(t, 3, opts.TTL)

	opts, err = NewOptions(WithTimeout(0))
	require.NoError(t, err)
	require.Equal(t, MinTimeout, opts.Timeout, "zero timeout is never kept")

	_, err = NewOptions(WithTimeout(-time.Second))
	require.ErrorIs(t, err, types.ErrInvalidArgument)

	_, err = NewOptions(WithTTL(0))
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestOptionsWithReturnsCopy(t *testing.T) {
	base := DefaultOptions()
	changed, err := base.With(WithTTL(5), WithTimeout(3*time.Second))
	require.NoError(t, err)
	require.Equal(t, DefaultTTL, base.TTL)
	require.Equal(t, 5, changed.TTL)
	require.Equal(t, 3*time.Second, changed.Timeout)

	unchanged, err := base.With(WithTTL(-1))
	require.Error(t, err)
	require.Equal(t, base, unchanged)
}

func TestParseNativeOutput(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		ok      bool
		elapsed time.Duration
		reason  string
	}{
		{"linux reply", linuxReply, true, 45 * time.Microsecond, ""},
		{"darwin reply", darwinReply, true, 3210 * time.Microsecond, ""},
		{"windows reply", windowsReply, true, 4 * time.Millisecond, ""},
		{"total loss is not zero loss", linuxLost, false, 0, ReasonTotalLoss},
		{"darwin total loss", "1 packets transmitted, 0 packets received, 100.0% packet loss", false, 0, ReasonTotalLoss},
		{"partial loss", "4 packets transmitted, 2 received, 50% packet loss, time 3004ms", false, 0, ReasonPartialLoss},
		{"linux unknown host", "ping: unknown host nosuchhost", false, 0, ReasonUnknownHost},
		{"glibc resolver failure", "ping: nosuchhost: Name or service not known", false, 0, ReasonUnknownHost},
		{"darwin unknown host", "ping: cannot resolve nosuchhost: Unknown host", false, 0, ReasonUnknownHost},
		{"windows unknown host", "Ping request could not find host nosuchhost. Please check the name and try again.", false, 0, ReasonUnknownHost},
		{"garbage", "connect: Network is unreachable", false, 0, ReasonUnknown},
		{"empty", "", false, 0, ReasonUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, elapsed, reason := parseNativeOutput(tt.output)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.reason, reason)
			require.InDelta(t, float64(tt.elapsed), float64(elapsed), float64(time.Microsecond))
		})
	}
}

func TestNativeCommand(t *testing.T) {
	opts := Options{Timeout: 1500 * time.Millisecond, TTL: 64}
	v4 := net.ParseIP("10.0.0.1")
	v6 := net.ParseIP("fe80::1")

	tests := []struct {
		platform string
		ip       net.IP
		want     string
	}{
		{platformLinux, v4, "ping -c 1 -W 2 -t 64 10.0.0.1"},
		{platformLinux, v6, "ping -c 1 -W 2 -t 64 -6 fe80::1"},
		{platformDarwin, v4, "ping -c 1 -W 1500 -m 64 10.0.0.1"},
		{platformDarwin, v6, "ping6 -c 1 -h 64 fe80::1"},
		{platformWindows, v4, "ping -n 1 -w 1500 -i 64 10.0.0.1"},
		{platformWindows, v6, "ping -n 1 -w 1500 -i 64 -6 fe80::1"},
	}
	for _, tt := range tests {
		t.Run(tt.platform+" "+tt.ip.String(), func(t *testing.T) {
			name, args := nativeCommand(tt.platform, tt.ip, opts)
			require.Equal(t, tt.want, strings.Join(append([]string{name}, args...), " "))
		})
	}
}

func newTestProber(runner CommandRunner, strategy Strategy) *Prober {
	p := New(WithRunner(runner), WithStrategy(strategy))
	p.platform = platformLinux
	return p
}

func TestProbeAddressNative(t *testing.T) {
	runner := &fakeRunner{output: linuxReply}
	p := newTestProber(runner, StrategyHybrid)
	ip := net.ParseIP("192.168.1.1")

	result := p.ProbeAddress(context.Background(), ip, DefaultOptions())
	require.True(t, result.Reachable)
	require.False(t, result.HasError())
	require.InDelta(t, 0.045, result.ElapsedMillis(), 0.001)
	require.Equal(t, linuxReply, result.RawOutput)
	require.Equal(t, []string{"ping", "-c", "1", "-W", "1", "-t", "128", "192.168.1.1"}, runner.calls[0])
}

func TestProbeAddressUnreachableIsIdempotent(t *testing.T) {
	runner := &fakeRunner{output: linuxLost, exitCode: 1}
	p := newTestProber(runner, StrategyHybrid)
	ip := net.ParseIP("192.168.1.77")

	for i := 0; i < 2; i++ {
		result := p.ProbeAddress(context.Background(), ip, DefaultOptions())
		require.False(t, result.Reachable)
		require.Equal(t, ReasonTotalLoss, result.Error)
	}
}

func TestProbeAddressNativeOnlyDoesNotFallBack(t *testing.T) {
	runner := &fakeRunner{err: ErrNotStarted}
	p := newTestProber(runner, StrategyNative)

	result := p.ProbeAddress(context.Background(), net.ParseIP("127.0.0.1"), DefaultOptions())
	require.False(t, result.Reachable)
	require.Contains(t, result.Error, ErrNotStarted.Error())
}

func TestProbeAddressFallsBackWhenNativeMissing(t *testing.T) {
	runner := &fakeRunner{err: ErrNotStarted}
	p := newTestProber(runner, StrategyHybrid)

	// loopback either accepts or refuses the echo port; both prove it is up
	result := p.ProbeAddress(context.Background(), net.ParseIP("127.0.0.1"), DefaultOptions())
	require.True(t, result.Reachable, result.Error)
	require.Empty(t, result.RawOutput)
	require.Equal(t, 1, runner.callCount())
}

func TestProbeAddressInterrupted(t *testing.T) {
	runner := &fakeRunner{block: true, output: "PING 10.0.0.1 (10.0.0.1) 56(84) bytes of data.\n"}
	p := newTestProber(runner, StrategyHybrid)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	result := p.ProbeAddress(ctx, net.ParseIP("10.0.0.1"), DefaultOptions())
	require.False(t, result.Reachable)
	require.Equal(t, ReasonInterrupted, result.Error)
	// raw output only exists when the native attempt produced the result
	require.Equal(t, runner.output, result.RawOutput)
}

func TestProbeAddressNativeTimedOut(t *testing.T) {
	runner := &fakeRunner{block: true}
	p := newTestProber(runner, StrategyHybrid)
	p.grace = 10 * time.Millisecond

	opts := Options{Timeout: 20 * time.Millisecond, TTL: 64}
	result := p.ProbeAddress(context.Background(), net.ParseIP("10.0.0.1"), opts)
	require.False(t, result.Reachable)
	require.Equal(t, ReasonTimedOut, result.Error)
	require.Equal(t, 1, runner.callCount())
}

type dialTimeoutError struct{}

func (dialTimeoutError) Error() string   { return "i/o timeout" }
func (dialTimeoutError) Timeout() bool   { return true }
func (dialTimeoutError) Temporary() bool { return true }

func stubFallbackDial(t *testing.T, err error) {
	t.Helper()
	original := dialFallback
	dialFallback = func(context.Context, *net.Dialer, string) (net.Conn, error) {
		return nil, err
	}
	t.Cleanup(func() { dialFallback = original })
}

func TestProbeFallbackOutcomes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "timeout", err: &net.OpError{Op: "dial", Net: "tcp", Err: dialTimeoutError{}}, want: ReasonTimedOut},
		{name: "unreachable", err: errors.New("network is unreachable"), want: "io error: network is unreachable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubFallbackDial(t, tt.err)
			p := newTestProber(&fakeRunner{}, StrategyFallback)

			result := p.ProbeAddress(context.Background(), net.ParseIP("10.0.0.1"), DefaultOptions())
			require.False(t, result.Reachable)
			require.Equal(t, tt.want, result.Error)
			require.True(t, result.HasError())
		})
	}
}

func TestProbeFallbackInterrupted(t *testing.T) {
	stubFallbackDial(t, context.Canceled)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := newTestProber(&fakeRunner{}, StrategyFallback).ProbeAddress(ctx, net.ParseIP("10.0.0.1"), DefaultOptions())
	require.Equal(t, ReasonInterrupted, result.Error)
}

func TestProbeOnceRequiresTarget(t *testing.T) {
	p := newTestProber(&fakeRunner{output: linuxReply}, StrategyHybrid)
	_, err := p.ProbeOnce(context.Background(), nil, DefaultOptions())
	require.ErrorIs(t, err, common.ErrNoTarget)
}

func TestProbeOnceResolutionError(t *testing.T) {
	target, err := common.NewTargetWithLookup("nosuchhost.invalid", func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return nil, errors.New("no such host")
	})
	require.NoError(t, err)

	p := newTestProber(&fakeRunner{output: linuxReply}, StrategyHybrid)
	_, err = p.ProbeOnce(context.Background(), target, DefaultOptions())
	require.ErrorIs(t, err, common.ErrUnresolvable)
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{"": StrategyHybrid, "Native": StrategyNative, "tcp": StrategyFallback} {
		got, err := ParseStrategy(name)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseStrategy("icmp")
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestStatisticsCollector(t *testing.T) {
	ip := net.ParseIP("10.0.0.1")
	c := newStatsCollector(ip)
	require.False(t, c.statistics().HasRTT())

	c.add(reachable(ip, 10*time.Millisecond, ""))
	c.add(unreachable(ip, ReasonTotalLoss, ""))
	c.add(reachable(ip, 30*time.Millisecond, ""))
	c.add(reachable(ip, 20*time.Millisecond, ""))

	stats := c.statistics()
	require.Equal(t, 4, stats.Attempts)
	require.Equal(t, 1, stats.Lost)
	require.Equal(t, 60*time.Millisecond, stats.Total)
	require.Equal(t, 10*time.Millisecond, stats.Min)
	require.Equal(t, 30*time.Millisecond, stats.Max)
	require.Equal(t, 15*time.Millisecond, stats.Average())
	require.True(t, stats.Reachable())
	require.InDelta(t, 0.25, stats.PacketLoss(), 0.0001)

	lost := newStatsCollector(ip)
	lost.add(unreachable(ip, ReasonTotalLoss, ""))
	require.False(t, lost.statistics().Reachable())
	require.Equal(t, time.Duration(-1), lost.statistics().Min)
}

type recordingListener struct {
	mu       sync.Mutex
	events   []string
	results  []Result
	stats    *Statistics
	err      error
	onResult func(n int)
}

func (l *recordingListener) OnResult(r Result) {
	l.mu.Lock()
	l.events = append(l.events, "result")
	l.results = append(l.results, r)
	n := len(l.results)
	l.mu.Unlock()
	if l.onResult != nil {
		l.onResult(n)
	}
}

func (l *recordingListener) OnFinished(s Statistics) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "finished")
	l.stats = &s
}

func (l *recordingListener) OnError(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, "error")
	l.err = err
}

func TestRepeaterEmitsExactlyNResults(t *testing.T) {
	target, err := common.NewTarget("192.168.1.1")
	require.NoError(t, err)

	p := newTestProber(&fakeRunner{output: linuxReply}, StrategyHybrid)
	r, err := NewRepeater(target, DefaultOptions(), 3, time.Millisecond, p)
	require.NoError(t, err)

	listener := &recordingListener{}
	r.Start(context.Background(), listener).Wait()

	require.Equal(t, []string{"result", "result", "result", "finished"}, listener.events)
	require.Equal(t, 3, listener.stats.Attempts)
	require.Zero(t, listener.stats.Lost)
	require.True(t, listener.stats.Reachable())
}

func TestRepeaterUnboundedStopsOnCancel(t *testing.T) {
	target, err := common.NewTarget("192.168.1.1")
	require.NoError(t, err)

	p := newTestProber(&fakeRunner{output: linuxReply}, StrategyHybrid)
	r, err := NewRepeater(target, DefaultOptions(), 0, 0, p)
	require.NoError(t, err)

	var h *task.Handle
	ready := make(chan struct{})
	listener := &recordingListener{onResult: func(n int) {
		if n == 5 {
			<-ready
			h.Cancel()
		}
	}}
	h = r.Start(context.Background(), listener)
	close(ready)
	h.Wait()

	require.LessOrEqual(t, len(listener.results), 6)
	require.GreaterOrEqual(t, len(listener.results), 5)
	require.Equal(t, "finished", listener.events[len(listener.events)-1])
	require.Equal(t, len(listener.results), listener.stats.Attempts)
}

func TestRepeaterCancelInterruptsDelay(t *testing.T) {
	target, err := common.NewTarget("192.168.1.1")
	require.NoError(t, err)

	p := newTestProber(&fakeRunner{output: linuxReply}, StrategyHybrid)
	r, err := NewRepeater(target, DefaultOptions(), 0, time.Hour, p)
	require.NoError(t, err)

	var h *task.Handle
	ready := make(chan struct{})
	listener := &recordingListener{onResult: func(n int) {
		<-ready
		h.Cancel()
	}}
	h = r.Start(context.Background(), listener)
	close(ready)

	select {
	case <-h.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("cancel did not interrupt the delay")
	}
	require.Equal(t, []string{"result", "finished"}, listener.events)
	require.Equal(t, 1, listener.stats.Attempts)
}

func TestRepeaterResolutionErrorSkipsFinished(t *testing.T) {
	target, err := common.NewTargetWithLookup("nosuchhost.invalid", func(ctx context.Context, host string) ([]net.IPAddr, error) {
		return nil, errors.New("no such host")
	})
	require.NoError(t, err)

	r, err := NewRepeater(target, DefaultOptions(), 2, 0, newTestProber(&fakeRunner{}, StrategyHybrid))
	require.NoError(t, err)

	listener := &recordingListener{}
	r.Start(context.Background(), listener).Wait()
	require.Equal(t, []string{"error"}, listener.events)
	require.ErrorIs(t, listener.err, common.ErrUnresolvable)
}

func TestRepeaterRun(t *testing.T) {
	target, err := common.NewTarget("192.168.1.77")
	require.NoError(t, err)

	r, err := NewRepeater(target, DefaultOptions(), 2, 0, newTestProber(&fakeRunner{output: linuxLost, exitCode: 1}, StrategyHybrid))
	require.NoError(t, err)

	stats, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, stats.Attempts)
	require.Equal(t, 2, stats.Lost)
	require.False(t, stats.Reachable())
}

func TestNewRepeaterValidation(t *testing.T) {
	target, err := common.NewTarget("10.0.0.1")
	require.NoError(t, err)

	_, err = NewRepeater(nil, DefaultOptions(), 1, 0, nil)
	require.ErrorIs(t, err, common.ErrNoTarget)
	_, err = NewRepeater(target, DefaultOptions(), -1, 0, nil)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	_, err = NewRepeater(target, DefaultOptions(), 1, -time.Second, nil)
	require.ErrorIs(t, err, types.ErrInvalidArgument)
}
