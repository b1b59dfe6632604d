package ping

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// EchoPort is the TCP port dialled by the fallback probe.
const EchoPort = 7

// dialFallback opens the fallback connection; tests replace it.
var dialFallback = func(ctx context.Context, dialer *net.Dialer, address string) (net.Conn, error) {
	return dialer.DialContext(ctx, "tcp", address)
}

// probeFallback dials the echo port. An accepted or refused connection means
// the host answered.
func probeFallback(ctx context.Context, ip net.IP, opts Options) Result {
	dialer := net.Dialer{
		Timeout: opts.Timeout,
		Control: ttlControl(opts.TTL),
	}

	start := time.Now()
	conn, err := dialFallback(ctx, &dialer, net.JoinHostPort(ip.String(), strconv.Itoa(EchoPort)))
	elapsed := time.Since(start)

	if err == nil {
		_ = conn.Close()
		return reachable(ip, elapsed, "")
	}
	if isRefused(err) {
		return reachable(ip, elapsed, "")
	}
	if ctx.Err() != nil {
		return unreachable(ip, ReasonInterrupted, "")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return unreachable(ip, ReasonTimedOut, "")
	}
	return unreachable(ip, "io error: "+err.Error(), "")
}
