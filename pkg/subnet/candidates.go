package subnet

import (
	"net"
	"strconv"
	"strings"

	"github.com/projectdiscovery/mapcidr"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/arp"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/common"
	"github.com/projectdiscovery/netsurvey/pkg/peerdiscovery/prescan"
	"github.com/projectdiscovery/netsurvey/pkg/types"
	sliceutil "github.com/projectdiscovery/utils/slice"
)

// lastHostOctet is the highest address filled in after the cached ones
const lastHostOctet = 254

// seedCandidates lists cached addresses sharing seed's /24, then .0 to .254.
// With prioritize the sequential part is reordered by likelihood of being up.
func seedCandidates(seed net.IP, snapshot arp.Snapshot, prioritize bool) ([]string, error) {
	prefix, ok := common.Prefix24(seed)
	if !ok {
		return nil, types.InvalidArgument("ip", "%s is not an IPv4 address", seed)
	}

	var cached []string
	for _, ip := range snapshot.IPs() {
		if strings.HasPrefix(ip, prefix) {
			cached = append(cached, ip)
		}
	}

	sequential := make([]string, 0, lastHostOctet+1)
	for octet := 0; octet <= lastHostOctet; octet++ {
		sequential = append(sequential, prefix+strconv.Itoa(octet))
	}
	if prioritize {
		sequential = prescan.Prioritize(sequential)
	}

	return sliceutil.Dedupe(append(cached, sequential...)), nil
}

// expandTargets accepts addresses, host names and CIDR ranges
func expandTargets(targets []string) ([]string, error) {
	var addresses []string
	for _, target := range targets {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		if !strings.Contains(target, "/") {
			addresses = append(addresses, target)
			continue
		}
		ips, err := mapcidr.IPAddresses(target)
		if err != nil {
			return nil, types.InvalidArgument("cidr", "%s: %v", target, err)
		}
		addresses = append(addresses, ips...)
	}
	if len(addresses) == 0 {
		return nil, types.InvalidArgument("addresses", "no addresses to sweep")
	}
	return sliceutil.Dedupe(addresses), nil
}
