package subnet

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
)

const reverseLookupTimeout = 2 * time.Second

// HostnameFunc returns a display name for ip, or ip itself when none is known.
type HostnameFunc func(ctx context.Context, ip string) string

var hostnameCache = gcache.New[string, string](4096).
	LRU().
	Expiration(10 * time.Minute).
	Build()

// ReverseLookup resolves ip through the system resolver, caching answers
// across sweeps. Failures are not cached.
func ReverseLookup(ctx context.Context, ip string) string {
	if name, err := hostnameCache.Get(ip); err == nil {
		return name
	}

	ctx, cancel := context.WithTimeout(ctx, reverseLookupTimeout)
	defer cancel()

	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return ip
	}
	name := strings.TrimSuffix(names[0], ".")
	_ = hostnameCache.Set(ip, name)
	return name
}
