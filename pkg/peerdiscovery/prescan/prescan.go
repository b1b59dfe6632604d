package prescan

import (
	"net"
	"sort"
)

// Prioritize returns addresses sorted by descending priority. Addresses with
// equal priority, and strings that are not IPs, keep their relative order.
func Prioritize(addresses []string) []string {
	type scored struct {
		address  string
		priority int
	}

	items := make([]scored, len(addresses))
	for i, address := range addresses {
		priority := PriorityLongTail
		if ip := net.ParseIP(address); ip != nil {
			priority = CalculatePriority(ip)
		}
		items[i] = scored{address: address, priority: priority}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].priority > items[j].priority
	})

	ordered := make([]string, len(items))
	for i, item := range items {
		ordered[i] = item.address
	}
	return ordered
}
