package portscan

import (
	"strings"
	"time"

	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// Method is the transport used to probe ports
type Method int

const (
	// MethodTCP reports a port open when a connection is accepted.
	MethodTCP Method = iota
	// MethodUDP reports a port open when it stays silent; see ProbeUDP.
	MethodUDP
)

func (m Method) String() string {
	if m == MethodUDP {
		return "udp"
	}
	return "tcp"
}

// ParseMethod maps "tcp" or "udp" to a Method.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tcp":
		return MethodTCP, nil
	case "udp":
		return MethodUDP, nil
	}
	return MethodTCP, types.InvalidArgument("method", "unknown scan method %q", name)
}

// DefaultWorkers is used until locality tuning or WithWorkers picks a count.
const DefaultWorkers = 50

// Tuning is the timeout and worker count picked for a locality
type Tuning struct {
	Timeout time.Duration
	Workers int
}

// TuningFor returns the defaults for targets at the given locality.
func TuningFor(locality common.Locality) Tuning {
	switch locality {
	case common.LocalityLoopback:
		return Tuning{Timeout: 25 * time.Millisecond, Workers: 7}
	case common.LocalityLocalNetwork:
		return Tuning{Timeout: time.Second, Workers: 50}
	default:
		return Tuning{Timeout: 2500 * time.Millisecond, Workers: 50}
	}
}

// Config is the validated scan request. Build it through New and Options.
type Config struct {
	Ports   []int
	Method  Method
	Workers int
	Timeout time.Duration

	workersSet bool
	timeoutSet bool
}

// Option sets and validates one part of the Config
type Option func(*Config) error

// WithPort scans a single port.
func WithPort(port int) Option {
	return func(c *Config) error {
		if err := ValidatePort(port); err != nil {
			return err
		}
		c.Ports = []int{port}
		return nil
	}
}

// WithPorts scans the given ports. Duplicates are dropped.
func WithPorts(ports []int) Option {
	return func(c *Config) error {
		for _, port := range ports {
			if err := ValidatePort(port); err != nil {
				return err
			}
		}
		c.Ports = sliceutil.Dedupe(ports)
		return nil
	}
}

// WithPortSpec scans the ports named by a ParsePorts expression.
func WithPortSpec(spec string) Option {
	return func(c *Config) error {
		ports, err := ParsePorts(spec)
		if err != nil {
			return err
		}
		c.Ports = ports
		return nil
	}
}

// WithPrivilegedPorts scans 1-1023.
func WithPrivilegedPorts() Option {
	return func(c *Config) error {
		c.Ports = PrivilegedPorts()
		return nil
	}
}

// WithAllPorts scans 1-65535.
func WithAllPorts() Option {
	return func(c *Config) error {
		c.Ports = AllPorts()
		return nil
	}
}

// WithMethod selects TCP or UDP probing.
func WithMethod(method Method) Option {
	return func(c *Config) error {
		if method != MethodTCP && method != MethodUDP {
			return types.InvalidArgument("method", "unknown scan method %d", method)
		}
		c.Method = method
		return nil
	}
}

// WithWorkers fixes the pool size and disables locality tuning for it.
func WithWorkers(workers int) Option {
	return func(c *Config) error {
		if workers < 1 {
			return types.InvalidArgument("workers", "%d is less than 1", workers)
		}
		c.Workers = workers
		c.workersSet = true
		return nil
	}
}

// WithTimeout fixes the per-port timeout and disables locality tuning for it.
// Zero keeps the locality tuning.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Config) error {
		if timeout < 0 {
			return types.InvalidArgument("timeout", "%s is negative", timeout)
		}
		c.Timeout = timeout
		c.timeoutSet = timeout > 0
		return nil
	}
}

// tuned fills unset values from the locality defaults
func (c Config) tuned(locality common.Locality) Config {
	tuning := TuningFor(locality)
	if !c.timeoutSet {
		c.Timeout = tuning.Timeout
	}
	if !c.workersSet {
		c.Workers = tuning.Workers
	}
	return c
}
