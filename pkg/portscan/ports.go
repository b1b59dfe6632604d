package portscan

import (
	"strconv"
	"strings"

	"github.com/projectdiscovery/netsurvey/pkg/types"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

const (
	MinPort           = 1
	MaxPort           = 65535
	MaxPrivilegedPort = 1023
)

// ValidatePort rejects ports outside 1-65535.
func ValidatePort(port int) error {
	if port < MinPort || port > MaxPort {
		return types.InvalidArgument("port", "%d is outside %d-%d", port, MinPort, MaxPort)
	}
	return nil
}

// PortRange returns every port from start to end inclusive.
func PortRange(start, end int) []int {
	ports := make([]int, 0, end-start+1)
	for port := start; port <= end; port++ {
		ports = append(ports, port)
	}
	return ports
}

// PrivilegedPorts returns 1-1023.
func PrivilegedPorts() []int {
	return PortRange(MinPort, MaxPrivilegedPort)
}

// AllPorts returns 1-65535.
func AllPorts() []int {
	return PortRange(MinPort, MaxPort)
}

// ParsePorts parses a port list such as "21-23,80" or "ports:443". Anything
// up to the last ':' is ignored. The keywords "privileged" and "all" select
// 1-1023 and 1-65535. The result keeps first-seen order without duplicates.
func ParsePorts(spec string) ([]int, error) {
	if idx := strings.LastIndex(spec, ":"); idx != -1 {
		spec = spec[idx+1:]
	}
	spec = strings.TrimSpace(spec)

	switch strings.ToLower(spec) {
	case "":
		return nil, types.InvalidArgument("ports", "empty port list")
	case "privileged":
		return PrivilegedPorts(), nil
	case "all", "full", "-":
		return AllPorts(), nil
	}

	var ports []int
	for _, item := range strings.Split(spec, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		if start, end, isRange := strings.Cut(item, "-"); isRange {
			first, err := parsePort(start)
			if err != nil {
				return nil, err
			}
			last, err := parsePort(end)
			if err != nil {
				return nil, err
			}
			if last <= first {
				return nil, types.InvalidArgument("ports", "range %q must end above its start", item)
			}
			ports = append(ports, PortRange(first, last)...)
			continue
		}

		port, err := parsePort(item)
		if err != nil {
			return nil, err
		}
		ports = append(ports, port)
	}

	if len(ports) == 0 {
		return nil, types.InvalidArgument("ports", "no ports in %q", spec)
	}
	return sliceutil.Dedupe(ports), nil
}

func parsePort(s string) (int, error) {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, types.InvalidArgument("port", "%q is not a number", s)
	}
	return port, ValidatePort(port)
}
