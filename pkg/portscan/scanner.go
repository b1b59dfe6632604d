package portscan

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/task"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	syncutil "github.com/projectdiscovery/utils/sync"
)

// Listener receives per-port observations and the final open ports.
// OnFinished runs after every OnResult of the scan.
type Listener interface {
	OnResult(port int, open bool)
	OnFinished(openPorts []int)
	OnError(err error)
}

// ListenerFuncs adapts plain functions to Listener. Nil fields are skipped.
type ListenerFuncs struct {
	Result   func(port int, open bool)
	Finished func(openPorts []int)
	Error    func(err error)
}

func (l ListenerFuncs) OnResult(port int, open bool) {
	if l.Result != nil {
		l.Result(port, open)
	}
}

func (l ListenerFuncs) OnFinished(openPorts []int) {
	if l.Finished != nil {
		l.Finished(openPorts)
	}
}

func (l ListenerFuncs) OnError(err error) {
	if l.Error != nil {
		l.Error(err)
	}
}

// Scanner scans ports on one target
type Scanner struct {
	target *common.Target
	config Config

	probeTCP ProbeFunc
	probeUDP ProbeFunc
	classify func(net.IP) common.Locality
}

// New validates the scan configuration. At least one port is required.
func New(target *common.Target, opts ...Option) (*Scanner, error) {
	if target == nil {
		return nil, common.ErrNoTarget
	}

	config := Config{Method: MethodTCP, Workers: DefaultWorkers}
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}
	if len(config.Ports) == 0 {
		return nil, types.InvalidArgument("ports", "no ports to scan")
	}

	return &Scanner{
		target:   target,
		config:   config,
		probeTCP: ProbeTCP,
		probeUDP: ProbeUDP,
		classify: common.Classify,
	}, nil
}

// Config returns the configuration as given, before locality tuning.
func (s *Scanner) Config() Config {
	return s.config
}

// Scan blocks until every port was probed and returns the open ports in
// ascending order. Only target resolution errors are returned.
func (s *Scanner) Scan(ctx context.Context) ([]int, error) {
	var (
		openPorts []int
		scanErr   error
	)
	s.Start(ctx, ListenerFuncs{
		Finished: func(ports []int) { openPorts = ports },
		Error:    func(err error) { scanErr = err },
	}).Wait()
	return openPorts, scanErr
}

// Start scans in the background and streams results to listener.
func (s *Scanner) Start(ctx context.Context, listener Listener) *task.Handle {
	return task.Go(ctx, func(h *task.Handle) {
		s.run(ctx, h, listener)
	})
}

func (s *Scanner) run(ctx context.Context, h *task.Handle, listener Listener) {
	ip, err := s.target.Resolve(ctx)
	if err != nil {
		listener.OnError(err)
		return
	}

	locality := s.classify(ip)
	config := s.config.tuned(locality)
	probe := s.probeTCP
	if config.Method == MethodUDP {
		probe = s.probeUDP
	}

	gologger.Verbose().Msgf("[%s] scanning %d %s ports on %s (%s): workers=%d timeout=%s",
		h.ID(), len(config.Ports), config.Method, ip, locality, config.Workers, config.Timeout)

	awg, err := syncutil.New(syncutil.WithSize(config.Workers))
	if err != nil {
		listener.OnError(fmt.Errorf("failed to create worker pool: %w", err))
		return
	}

	results := &openPorts{listener: listener}
	for _, port := range config.Ports {
		if h.Cancelled() {
			break
		}
		awg.Add()
		go func(port int) {
			defer awg.Done()
			if h.Cancelled() {
				return
			}
			results.record(port, probe(ctx, ip, port, config.Timeout))
		}(port)
	}

	if !task.Drain(awg, task.DrainCeiling) {
		gologger.Warning().Msgf("[%s] scan of %s did not drain within %s", h.ID(), ip, task.DrainCeiling)
	}
	listener.OnFinished(results.finish())
}

// openPorts is the scan accumulator. Appends and listener calls share one
// critical section; nothing is recorded once the scan finished.
type openPorts struct {
	mu       sync.Mutex
	ports    []int
	done     bool
	listener Listener
}

func (o *openPorts) record(port int, open bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.done {
		return
	}
	if open {
		o.ports = append(o.ports, port)
	}
	o.listener.OnResult(port, open)
}

func (o *openPorts) finish() []int {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done = true
	ports := append([]int{}, o.ports...)
	sort.Ints(ports)
	return ports
}
