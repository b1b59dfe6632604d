package arp

import (
	"bytes"
	"context"
	"errors"
	"net"
	"os"
	"os/exec"
	"sort"
	"time"

	"github.com/projectdiscovery/gologger"
	mapsutil "github.com/projectdiscovery/utils/maps"
)

const (
	procNetARP     = "/proc/net/arp"
	commandTimeout = 5 * time.Second
)

// Status describes how a snapshot was obtained
type Status int

const (
	// StatusOK means at least one source was read and returned entries.
	StatusOK Status = iota
	// StatusEmpty means sources were readable but held no usable entries.
	StatusEmpty
	// StatusUnavailable means no source could be read.
	StatusUnavailable
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	default:
		return "unavailable"
	}
}

// Source names where entries were read from
type Source string

const (
	SourceNeighborTable Source = "ip neigh"
	SourceProcNet       Source = procNetARP
	SourceArpCommand    Source = "arp -a"
)

// Entry is a single cache row
type Entry struct {
	IP  string
	MAC string
}

// Snapshot is an immutable view of the resolution cache.
type Snapshot struct {
	Entries map[string]string
	Status  Status
	Err     error
}

// MAC returns the hardware address cached for ip.
func (s Snapshot) MAC(ip string) (string, bool) {
	mac, ok := s.Entries[ip]
	return mac, ok
}

// IP returns the first address, in IPs order, cached for mac.
func (s Snapshot) IP(mac string) (string, bool) {
	for _, ip := range s.IPs() {
		if s.Entries[ip] == mac {
			return ip, true
		}
	}
	return "", false
}

// IPs returns the cached addresses in ascending numeric order.
func (s Snapshot) IPs() []string {
	ips := make([]string, 0, len(s.Entries))
	for ip := range s.Entries {
		ips = append(ips, ip)
	}
	sort.Slice(ips, func(i, j int) bool {
		a, b := net.ParseIP(ips[i]), net.ParseIP(ips[j])
		if a == nil || b == nil {
			return ips[i] < ips[j]
		}
		return bytes.Compare(a.To16(), b.To16()) < 0
	})
	return ips
}

// Len returns the number of cached entries.
func (s Snapshot) Len() int {
	return len(s.Entries)
}

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Reader takes resolution cache snapshots
type Reader struct {
	// DisableProcNet skips /proc/net/arp and reads the neighbor table command instead.
	DisableProcNet bool

	procPath string
	run      commandRunner
	readFile func(name string) ([]byte, error)
}

// NewReader returns a reader for the local system.
func NewReader(disableProcNet bool) *Reader {
	return &Reader{
		DisableProcNet: disableProcNet,
		procPath:       procNetARP,
		run:            runCommand,
		readFile:       os.ReadFile,
	}
}

type sourceResult struct {
	source  Source
	entries []Entry
	err     error
}

// Snapshot reads every configured source. Earlier sources win for an address
// present in several of them.
func (r *Reader) Snapshot(ctx context.Context) Snapshot {
	merged := mapsutil.NewSyncLockMap[string, string]()
	var errs []error
	readable := 0

	for _, result := range r.readSources(ctx) {
		if result.err != nil {
			gologger.Debug().Msgf("could not read %s: %v", result.source, result.err)
			errs = append(errs, result.err)
			continue
		}
		readable++
		for _, entry := range result.entries {
			if merged.Has(entry.IP) {
				continue
			}
			_ = merged.Set(entry.IP, entry.MAC)
		}
	}

	snapshot := Snapshot{Entries: merged.GetAll()}
	switch {
	case readable == 0:
		snapshot.Status = StatusUnavailable
		snapshot.Err = errors.Join(errs...)
		if snapshot.Err == nil {
			snapshot.Err = errors.New("no resolution cache source for this platform")
		}
	case len(snapshot.Entries) == 0:
		snapshot.Status = StatusEmpty
	default:
		snapshot.Status = StatusOK
	}
	return snapshot
}

// MACFor looks up a single address in a fresh snapshot.
func (r *Reader) MACFor(ctx context.Context, ip string) (string, bool) {
	return r.Snapshot(ctx).MAC(ip)
}

// IPFor looks up the address cached for a hardware address in a fresh snapshot.
func (r *Reader) IPFor(ctx context.Context, mac string) (string, bool) {
	return r.Snapshot(ctx).IP(mac)
}

func (r *Reader) readProcNet() sourceResult {
	data, err := r.readFile(r.procPath)
	if err != nil {
		return sourceResult{source: SourceProcNet, err: err}
	}
	return sourceResult{source: SourceProcNet, entries: parseProcNetARP(data)}
}

func (r *Reader) readNeighborTable(ctx context.Context) sourceResult {
	if output, err := r.run(ctx, "ip", "-j", "neigh", "show"); err == nil {
		if entries, ok := parseNeighborJSON(output); ok {
			return sourceResult{source: SourceNeighborTable, entries: entries}
		}
	}
	// iproute2 without JSON support
	output, err := r.run(ctx, "ip", "neigh", "show")
	if err != nil {
		return sourceResult{source: SourceNeighborTable, err: err}
	}
	return sourceResult{source: SourceNeighborTable, entries: parseNeighborText(output)}
}

func (r *Reader) readArpCommand(ctx context.Context) sourceResult {
	output, err := r.run(ctx, "arp", "-a")
	if err != nil {
		return sourceResult{source: SourceArpCommand, err: err}
	}
	return sourceResult{source: SourceArpCommand, entries: parseArpCommand(output)}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()
	return exec.CommandContext(ctx, name, args...).Output()
}
