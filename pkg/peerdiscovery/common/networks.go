package common

import (
	"errors"
	"net"
	"strings"

	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoLocalAddress is returned when no up, non-loopback interface carries a private IPv4.
var ErrNoLocalAddress = errors.New("no private IPv4 address on any local interface")

// listInterfaces is swapped in tests
var listInterfaces = psnet.Interfaces

type interfaceAddr struct {
	ip       net.IP
	network  *net.IPNet
	loopback bool
}

// interfaceAddrs returns every address assigned to an up interface
func interfaceAddrs() ([]interfaceAddr, error) {
	interfaces, err := listInterfaces()
	if err != nil {
		return nil, err
	}

	var addrs []interfaceAddr
	for _, iface := range interfaces {
		up, loopback := false, false
		for _, flag := range iface.Flags {
			switch strings.ToLower(flag) {
			case "up":
				up = true
			case "loopback":
				loopback = true
			}
		}
		if !up {
			continue
		}

		for _, addr := range iface.Addrs {
			ip, network, err := net.ParseCIDR(addr.Addr)
			if err != nil {
				// some platforms report bare addresses
				ip = net.ParseIP(addr.Addr)
				if ip == nil {
					continue
				}
				network = nil
			}
			addrs = append(addrs, interfaceAddr{ip: ip, network: network, loopback: loopback})
		}
	}
	return addrs, nil
}

// LocalIPv4 returns the first private IPv4 address of an up, non-loopback interface
func LocalIPv4() (net.IP, error) {
	addrs, err := interfaceAddrs()
	if err != nil {
		return nil, err
	}
	for _, addr := range addrs {
		if addr.loopback {
			continue
		}
		if ip4 := addr.ip.To4(); ip4 != nil && ip4.IsPrivate() {
			return ip4, nil
		}
	}
	return nil, ErrNoLocalAddress
}

// GetLocalNetworks24 returns all local network interfaces as /24 IPNet ranges (IPv4 only)
func GetLocalNetworks24() ([]*net.IPNet, error) {
	addrs, err := interfaceAddrs()
	if err != nil {
		return nil, err
	}

	var networks []*net.IPNet
	seen := make(map[string]struct{})
	mask24 := net.CIDRMask(24, 32)

	for _, addr := range addrs {
		ip4 := addr.ip.To4()
		if addr.loopback || ip4 == nil || !ip4.IsPrivate() {
			continue
		}

		network24 := &net.IPNet{IP: ip4.Mask(mask24), Mask: mask24}
		key := network24.String()
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		networks = append(networks, network24)
	}

	return networks, nil
}

// Prefix24 returns the first three octets of an IPv4 address followed by a dot,
// e.g. "192.168.1." for 192.168.1.17.
func Prefix24(ip net.IP) (string, bool) {
	ip4 := ip.To4()
	if ip4 == nil {
		return "", false
	}
	s := ip4.String()
	return s[:strings.LastIndex(s, ".")+1], true
}
