// Package arp reads the operating system's address-resolution cache.
//
// A Snapshot is an IP to hardware address mapping taken at one point in time:
//   - Linux reads /proc/net/arp and falls back to the `ip neigh` table (JSON
//     when supported) when proc reads are disabled or fail
//   - macOS, BSD and Windows parse `arp -a`
//
// Reads never fail the caller. When every source is unreadable the snapshot
// is empty and carries StatusUnavailable with the underlying errors, so an
// empty cache can be told apart from an unreadable one.
package arp
