package common

import "net"

// IsNetworkOrBroadcast reports whether ip is the network address of network,
// its IPv4 broadcast address, or an IPv6 multicast address.
func IsNetworkOrBroadcast(ip net.IP, network *net.IPNet) bool {
	if network == nil {
		return false
	}
	if ip.Equal(network.IP) {
		return true
	}
	if ip.To4() == nil {
		return ip.IsMulticast()
	}

	base := network.IP.To4()
	if base == nil || len(network.Mask) != net.IPv4len {
		return false
	}
	broadcast := make(net.IP, net.IPv4len)
	for i := range broadcast {
		broadcast[i] = base[i] | ^network.Mask[i]
	}
	return ip.Equal(broadcast)
}
