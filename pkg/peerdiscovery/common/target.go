package common

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
)

var (
	// ErrNoTarget is returned when neither an address nor a host name was given.
	ErrNoTarget = errors.New("no target address or host name supplied")
	// ErrUnresolvable wraps name resolution failures.
	ErrUnresolvable = errors.New("could not resolve target")
)

// Target is an address, or a host name resolved on first use.
type Target struct {
	host string
	ip   net.IP

	once     sync.Once
	resolved net.IP
	err      error

	lookup LookupFunc
}

// LookupFunc resolves a host name, e.g. (*net.Resolver).LookupIPAddr.
type LookupFunc func(ctx context.Context, host string) ([]net.IPAddr, error)

// NewTarget accepts an IP literal or a host name.
func NewTarget(host string) (*Target, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, ErrNoTarget
	}
	t := &Target{host: host, lookup: net.DefaultResolver.LookupIPAddr}
	if ip := net.ParseIP(strings.Trim(host, "[]")); ip != nil {
		t.ip = ip
	}
	return t, nil
}

// NewTargetWithLookup is NewTarget with a custom resolver.
func NewTargetWithLookup(host string, lookup LookupFunc) (*Target, error) {
	t, err := NewTarget(host)
	if err != nil {
		return nil, err
	}
	if lookup != nil {
		t.lookup = lookup
	}
	return t, nil
}

// TargetFromIP wraps an already resolved address.
func TargetFromIP(ip net.IP) (*Target, error) {
	if ip == nil {
		return nil, ErrNoTarget
	}
	return &Target{host: ip.String(), ip: ip}, nil
}

func (t *Target) String() string {
	return t.host
}

// Resolve returns the target address. Name resolution runs once; later
// calls return the cached address or error.
func (t *Target) Resolve(ctx context.Context) (net.IP, error) {
	if t.ip != nil {
		return t.ip, nil
	}
	t.once.Do(func() {
		addrs, err := t.lookup(ctx, t.host)
		if err != nil {
			t.err = fmt.Errorf("%w %s: %v", ErrUnresolvable, t.host, err)
			return
		}
		t.resolved = pickAddress(addrs)
		if t.resolved == nil {
			t.err = fmt.Errorf("%w %s: no addresses", ErrUnresolvable, t.host)
		}
	})
	return t.resolved, t.err
}

// pickAddress prefers IPv4
func pickAddress(addrs []net.IPAddr) net.IP {
	for _, addr := range addrs {
		if ip4 := addr.IP.To4(); ip4 != nil {
			return ip4
		}
	}
	if len(addrs) > 0 {
		return addrs[0].IP
	}
	return nil
}
