// Package ping measures reachability and round-trip time of a single host.
//
// A probe runs the platform ping utility for one echo request and parses its
// summary. When the utility cannot be started the prober falls back to a TCP
// connect against the echo port, where a refused connection still proves the
// host is up. No raw ICMP socket is ever opened.
//
// Repeated probing streams one Result per attempt to a Listener and ends
// with a single Statistics value.
package ping
