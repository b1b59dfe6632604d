package portscan

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"
)

// udpProbeSize is the size of the empty datagram sent to UDP ports
const udpProbeSize = 128

// ProbeFunc probes one port and reports whether it is open
type ProbeFunc func(ctx context.Context, ip net.IP, port int, timeout time.Duration) bool

// ProbeTCP reports whether a TCP connection to ip:port succeeds within timeout.
func ProbeTCP(ctx context.Context, ip net.IP, port int, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// ProbeUDP sends an empty datagram and waits for an answer. Silence until
// the timeout counts as open; a reply or an ICMP port-unreachable counts as
// closed. This heuristic cannot tell an open port from a filtered one.
func ProbeUDP(ctx context.Context, ip net.IP, port int, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "udp", net.JoinHostPort(ip.String(), strconv.Itoa(port)))
	if err != nil {
		return false
	}
	defer func() {
		_ = conn.Close()
	}()

	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return false
	}
	if _, err := conn.Write(make([]byte, udpProbeSize)); err != nil {
		return false
	}

	buf := make([]byte, udpProbeSize)
	_, err = conn.Read(buf)
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
