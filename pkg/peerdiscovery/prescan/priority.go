package prescan

import (
	"net"

	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
)

// Priority tiers based on real-world network patterns
const (
	PriorityGateway   = 100
	PriorityReserved  = 90
	PriorityEarlyDHCP = 80
	PriorityDHCPPeak  = 70
	PriorityDHCPPool  = 50
	PriorityLongTail  = 20
	PriorityExcluded  = 0
)

var mask24 = net.CIDRMask(24, 32)

// CalculatePriority scores ip (0-100) within its /24. Higher means more
// likely to answer.
func CalculatePriority(ip net.IP) int {
	ip4 := ip.To4()
	if ip4 == nil {
		return PriorityLongTail
	}
	network := &net.IPNet{IP: ip4.Mask(mask24), Mask: mask24}
	if common.IsNetworkOrBroadcast(ip4, network) {
		return PriorityExcluded
	}

	switch last := int(ip4[3]); {
	case last == 1 || last == 254:
		return PriorityGateway
	case last >= 2 && last <= 5, last >= 250 && last <= 253:
		return PriorityReserved
	case last >= 6 && last <= 10:
		return PriorityEarlyDHCP
	case last == 50 || last == 100 || last == 150:
		return PriorityDHCPPeak
	case last > 50 && last <= 200:
		return PriorityDHCPPool
	default:
		return PriorityLongTail
	}
}
