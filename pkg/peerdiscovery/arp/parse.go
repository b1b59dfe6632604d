package arp

import (
	"bufio"
	"bytes"
	"net"
	"strings"

	"github.com/projectdiscovery/netsurvey/pkg/macaddr"
	"github.com/tidwall/gjson"
)

// newEntry validates and normalizes one row
func newEntry(ipStr, macStr string) (Entry, bool) {
	ip := net.ParseIP(strings.TrimSpace(ipStr))
	if ip == nil {
		return Entry{}, false
	}
	mac, ok := macaddr.Normalize(macStr)
	if !ok {
		return Entry{}, false
	}
	return Entry{IP: ip.String(), MAC: mac}, true
}

// parseProcNetARP reads the Linux table:
// IP address  HW type  Flags  HW address  Mask  Device
func parseProcNetARP(data []byte) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))

	// header
	if !scanner.Scan() {
		return entries
	}
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 {
			continue
		}
		if entry, ok := newEntry(fields[0], fields[3]); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

// parseNeighborJSON reads `ip -j neigh show`. ok is false when the output is
// not a JSON array, which happens on iproute2 builds without -j.
func parseNeighborJSON(data []byte) ([]Entry, bool) {
	if !gjson.ValidBytes(data) {
		return nil, false
	}
	result := gjson.ParseBytes(data)
	if !result.IsArray() {
		return nil, false
	}

	var entries []Entry
	result.ForEach(func(_, neighbor gjson.Result) bool {
		if failedState(neighbor.Get("state")) {
			return true
		}
		if entry, ok := newEntry(neighbor.Get("dst").String(), neighbor.Get("lladdr").String()); ok {
			entries = append(entries, entry)
		}
		return true
	})
	return entries, true
}

func failedState(state gjson.Result) bool {
	failed := false
	state.ForEach(func(_, value gjson.Result) bool {
		switch value.String() {
		case "FAILED", "INCOMPLETE":
			failed = true
			return false
		}
		return true
	})
	return failed
}

// parseNeighborText reads `ip neigh show`:
// 192.168.1.1 dev eth0 lladdr aa:bb:cc:dd:ee:ff REACHABLE
func parseNeighborText(data []byte) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		for i := 1; i < len(fields)-1; i++ {
			if fields[i] != "lladdr" {
				continue
			}
			if entry, ok := newEntry(fields[0], fields[i+1]); ok {
				entries = append(entries, entry)
			}
			break
		}
	}
	return entries
}

// parseArpCommand reads `arp -a` as printed by macOS/BSD
//
//	? (192.168.1.1) at aa:bb:cc:dd:ee:ff on en0 ifscope [ethernet]
//
// and by Windows
//
//	Interface: 192.168.1.100 --- 0xa
//	  Internet Address      Physical Address      Type
//	  192.168.1.1           aa-bb-cc-dd-ee-ff     dynamic
func parseArpCommand(data []byte) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "Interface:") {
			continue
		}

		open, closing := strings.Index(line, "("), strings.Index(line, ")")
		at := strings.Index(line, " at ")
		if open != -1 && closing > open && at > closing {
			rest := strings.Fields(line[at+len(" at "):])
			if len(rest) == 0 {
				continue
			}
			if entry, ok := newEntry(line[open+1:closing], rest[0]); ok {
				entries = append(entries, entry)
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if entry, ok := newEntry(fields[0], fields[1]); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}
