// Package portscan probes a set of TCP or UDP ports on one host with a
// bounded worker pool.
//
// Timeouts and worker counts are tuned to where the target sits: loopback
// targets get a short timeout and few workers, hosts on an attached network
// a moderate timeout, remote hosts a longer one. Explicit options override
// the tuning.
//
// UDP results are a heuristic: a port that stays silent until the timeout is
// reported open, and any reply or ICMP rejection is reported closed. Silent
// filtering firewalls therefore show up as open ports.
package portscan
