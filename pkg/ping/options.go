package ping

import (
	"time"

	"github.com/projectdiscovery/netsurvey/pkg/types"
)

const (
	// MinTimeout is the smallest timeout the native utility can honour; it
	// takes whole seconds on Linux.
	MinTimeout = time.Second
	// DefaultTimeout is used when no timeout is configured.
	DefaultTimeout = time.Second
	// DefaultTTL is used when no time-to-live is configured.
	DefaultTTL = 128
)

// Options configures a single echo probe. The zero value is not usable;
// build one with NewOptions.
type Options struct {
	Timeout time.Duration
	TTL     int
}

// Option mutates Options under validation
type Option func(*Options) error

// NewOptions returns validated options, starting from the defaults.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{Timeout: DefaultTimeout, TTL: DefaultTTL}
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}
	return options, nil
}

// DefaultOptions returns the default timeout and TTL.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, TTL: DefaultTTL}
}

// WithTimeout sets the probe timeout. Values below MinTimeout are raised to it.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout < 0 {
			return types.InvalidArgument("timeout", "%s is negative", timeout)
		}
		o.Timeout = max(timeout, MinTimeout)
		return nil
	}
}

// WithTTL sets the time-to-live of the echo request.
func WithTTL(ttl int) Option {
	return func(o *Options) error {
		if ttl < 1 {
			return types.InvalidArgument("ttl", "%d is less than 1", ttl)
		}
		o.TTL = ttl
		return nil
	}
}

// With returns a copy of o with opts applied.
func (o Options) With(opts ...Option) (Options, error) {
	copied := o
	for _, opt := range opts {
		if err := opt(&copied); err != nil {
			return o, err
		}
	}
	return copied, nil
}
