package subnet

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/ping"
	"github.com/projectdiscovery/netsurvey/pkg/task"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	syncutil "github.com/projectdiscovery/utils/sync"
)

const (
	DefaultWorkers = 100
	DefaultTimeout = 2500 * time.Millisecond
)

// CacheReader takes resolution cache snapshots; *arp.Reader implements it.
type CacheReader interface {
	Snapshot(ctx context.Context) arp.Snapshot
}

// Prober probes one address; *ping.Prober implements it.
type Prober interface {
	ProbeAddress(ctx context.Context, ip net.IP, opts ping.Options) ping.Result
}

// Listener receives devices as they answer and the full list once the
// sweep drained.
type Listener interface {
	OnDeviceFound(Device)
	OnFinished([]Device)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	DeviceFound func(Device)
	Finished    func([]Device)
}

func (l ListenerFuncs) OnDeviceFound(d Device) {
	if l.DeviceFound != nil {
		l.DeviceFound(d)
	}
}

func (l ListenerFuncs) OnFinished(devices []Device) {
	if l.Finished != nil {
		l.Finished(devices)
	}
}

type config struct {
	workers        int
	timeout        time.Duration
	disableProcNet bool
	prioritize     bool
	cache          CacheReader
	prober         Prober
	hostnames      HostnameFunc
}

// Option configures a Sweeper
type Option func(*config) error

// WithWorkers sets the worker pool size.
func WithWorkers(workers int) Option {
	return func(c *config) error {
		if workers < 1 {
			return types.InvalidArgument("workers", "%d is less than 1", workers)
		}
		c.workers = workers
		return nil
	}
}

// WithTimeout sets the per-address probe timeout. Zero restores DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		if timeout < 0 {
			return types.InvalidArgument("timeout", "%s is negative", timeout)
		}
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		c.timeout = timeout
		return nil
	}
}

// WithDisableProcNet reads the resolution cache through the neighbor
// command only. It has no effect together with WithCacheReader.
func WithDisableProcNet(disable bool) Option {
	return func(c *config) error {
		c.disableProcNet = disable
		return nil
	}
}

// WithPrioritizedOrder probes gateways and common DHCP addresses before the
// rest of the subnet. Cached addresses still come first.
func WithPrioritizedOrder(prioritize bool) Option {
	return func(c *config) error {
		c.prioritize = prioritize
		return nil
	}
}

// WithCacheReader replaces the resolution cache reader.
func WithCacheReader(cache CacheReader) Option {
	return func(c *config) error {
		c.cache = cache
		return nil
	}
}

// WithProber replaces the reachability prober.
func WithProber(prober Prober) Option {
	return func(c *config) error {
		c.prober = prober
		return nil
	}
}

// WithHostnames replaces the reverse lookup used to name devices.
func WithHostnames(hostnames HostnameFunc) Option {
	return func(c *config) error {
		c.hostnames = hostnames
		return nil
	}
}

func newConfig(opts []Option) (config, error) {
	c := config{
		workers:   DefaultWorkers,
		timeout:   DefaultTimeout,
		hostnames: ReverseLookup,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return config{}, err
		}
	}
	if c.cache == nil {
		c.cache = arp.NewReader(c.disableProcNet)
	}
	if c.prober == nil {
		c.prober = ping.New()
	}
	return c, nil
}

// Sweeper probes a list of candidate addresses
type Sweeper struct {
	addresses []string
	config    config
}

// FromLocalAddress sweeps the /24 of this host's first private IPv4 address.
func FromLocalAddress(ctx context.Context, opts ...Option) (*Sweeper, error) {
	ip, err := common.LocalIPv4()
	if err != nil {
		return nil, fmt.Errorf("could not find local address: %w", err)
	}
	return FromIPAddress(ctx, ip.String(), opts...)
}

// FromIPAddress sweeps the /24 containing ipAddress. Addresses already in the
// resolution cache are probed first.
func FromIPAddress(ctx context.Context, ipAddress string, opts ...Option) (*Sweeper, error) {
	ip := net.ParseIP(ipAddress)
	if ip == nil || ip.To4() == nil {
		return nil, types.InvalidArgument("ip", "%q is not an IPv4 address", ipAddress)
	}
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	snapshot := c.cache.Snapshot(ctx)
	logDegraded(snapshot)

	addresses, err := seedCandidates(ip, snapshot, c.prioritize)
	if err != nil {
		return nil, err
	}
	return &Sweeper{addresses: addresses, config: c}, nil
}

// FromIPList sweeps exactly the given addresses, host names, or CIDR ranges.
func FromIPList(ips []string, opts ...Option) (*Sweeper, error) {
	addresses, err := expandTargets(ips)
	if err != nil {
		return nil, err
	}
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}
	return &Sweeper{addresses: addresses, config: c}, nil
}

// Addresses returns the candidates in probing order.
func (s *Sweeper) Addresses() []string {
	return append([]string{}, s.addresses...)
}

// Run sweeps in the foreground and returns every device found.
func (s *Sweeper) Run(ctx context.Context) []Device {
	var devices []Device
	s.Start(ctx, ListenerFuncs{
		Finished: func(found []Device) { devices = found },
	}).Wait()
	return devices
}

// Start sweeps in the background and returns immediately.
func (s *Sweeper) Start(ctx context.Context, listener Listener) *task.Handle {
	return task.Go(ctx, func(h *task.Handle) {
		s.run(ctx, h, listener)
	})
}

func (s *Sweeper) run(ctx context.Context, h *task.Handle, listener Listener) {
	snapshot := s.config.cache.Snapshot(ctx)
	logDegraded(snapshot)

	found := &deviceList{listener: listener, seen: make(map[string]struct{})}

	probeOptions, err := ping.NewOptions(ping.WithTimeout(s.config.timeout))
	if err != nil {
		gologger.Warning().Msgf("[%s] %v, using default probe options", h.ID(), err)
		probeOptions = ping.DefaultOptions()
	}

	gologger.Verbose().Msgf("[%s] sweeping %d addresses: workers=%d timeout=%s cached=%d",
		h.ID(), len(s.addresses), s.config.workers, probeOptions.Timeout, snapshot.Len())

	awg, err := syncutil.New(syncutil.WithSize(s.config.workers))
	if err != nil {
		gologger.Error().Msgf("[%s] failed to create worker pool: %v", h.ID(), err)
		listener.OnFinished(found.finish())
		return
	}

	for _, address := range s.addresses {
		if h.Cancelled() {
			break
		}
		awg.Add()
		go func(address string) {
			defer awg.Done()
			if h.Cancelled() {
				return
			}
			if device, ok := s.probe(ctx, address, probeOptions, snapshot); ok {
				found.publish(device)
			}
		}(address)
	}

	if !task.Drain(awg, task.DrainCeiling) {
		gologger.Warning().Msgf("[%s] sweep did not drain within %s", h.ID(), task.DrainCeiling)
	}
	devices := found.finish()

	// probing may have taught the OS more hardware addresses
	refreshed := s.config.cache.Snapshot(ctx)
	for i := range devices {
		if devices[i].MAC != "" {
			continue
		}
		if mac, ok := refreshed.MAC(devices[i].IP); ok {
			devices[i].MAC = mac
		}
	}

	gologger.Verbose().Msgf("[%s] sweep finished with %d devices", h.ID(), len(devices))
	listener.OnFinished(devices)
}

func (s *Sweeper) probe(ctx context.Context, address string, opts ping.Options, snapshot arp.Snapshot) (Device, bool) {
	target, err := common.NewTarget(address)
	if err != nil {
		return Device{}, false
	}
	ip, err := target.Resolve(ctx)
	if err != nil {
		gologger.Debug().Msgf("skipping %s: %v", address, err)
		return Device{}, false
	}

	result := s.config.prober.ProbeAddress(ctx, ip, opts)
	if !result.Reachable {
		return Device{}, false
	}

	device := Device{
		IP:       ip.String(),
		Hostname: s.config.hostnames(ctx, ip.String()),
		Latency:  result.Elapsed,
	}
	if mac, ok := snapshot.MAC(device.IP); ok {
		device.MAC = mac
	}
	return device, true
}

func logDegraded(snapshot arp.Snapshot) {
	if snapshot.Status == arp.StatusUnavailable {
		gologger.Warning().Msgf("resolution cache unavailable, devices will have no MAC: %v", snapshot.Err)
	}
}

// deviceList is the sweep accumulator. Appends and listener calls share one
// critical section; nothing is recorded once the sweep finished.
type deviceList struct {
	mu       sync.Mutex
	devices  []Device
	seen     map[string]struct{}
	done     bool
	listener Listener
}

func (l *deviceList) publish(device Device) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return
	}
	if _, dup := l.seen[device.IP]; dup {
		return
	}
	l.seen[device.IP] = struct{}{}
	l.devices = append(l.devices, device)
	l.listener.OnDeviceFound(device)
}

func (l *deviceList) finish() []Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done = true
	return append([]Device{}, l.devices...)
}
