package common

import (
	"net"

	"github.com/projectdiscovery/gologger"
)

// Locality is where a target sits relative to this host
type Locality int

const (
	LocalityRemote Locality = iota
	LocalityLoopback
	LocalityLocalNetwork
)

func (l Locality) String() string {
	switch l {
	case LocalityLoopback:
		return "loopback"
	case LocalityLocalNetwork:
		return "local-network"
	default:
		return "remote"
	}
}

// Classify reports whether ip is this host, on an attached network, or remote.
func Classify(ip net.IP) Locality {
	addrs, err := interfaceAddrs()
	if err != nil {
		gologger.Debug().Msgf("could not enumerate interfaces for %s: %v", ip, err)
	}

	switch {
	case isLoopbackOrSelf(ip, addrs):
		return LocalityLoopback
	case isLocalNetwork(ip, addrs):
		return LocalityLocalNetwork
	default:
		return LocalityRemote
	}
}

// IsLoopbackOrSelf reports whether ip is a loopback or wildcard address or
// is assigned to one of this host's interfaces.
func IsLoopbackOrSelf(ip net.IP) bool {
	addrs, _ := interfaceAddrs()
	return isLoopbackOrSelf(ip, addrs)
}

// IsLocalNetwork reports whether ip is private, link-local, or inside a
// network attached to this host.
func IsLocalNetwork(ip net.IP) bool {
	addrs, _ := interfaceAddrs()
	return isLocalNetwork(ip, addrs)
}

func isLoopbackOrSelf(ip net.IP, addrs []interfaceAddr) bool {
	if ip.IsLoopback() || ip.IsUnspecified() {
		return true
	}
	for _, addr := range addrs {
		if addr.ip.Equal(ip) {
			return true
		}
	}
	return false
}

func isLocalNetwork(ip net.IP, addrs []interfaceAddr) bool {
	if ip.IsPrivate() || ip.IsLinkLocalUnicast() {
		return true
	}
	for _, addr := range addrs {
		if addr.loopback || addr.network == nil {
			continue
		}
		if addr.network.Contains(ip) {
			return true
		}
	}
	return false
}
