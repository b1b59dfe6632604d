// Package prescan orders sweep candidates so that addresses most likely to be
// online are probed first. Scores follow common /24 allocation patterns:
//
//   - 100: .1, .254 (routers/gateways)
//   - 90:  .2-.5, .250-.253 (reserved infrastructure)
//   - 80:  .6-.10 (early DHCP)
//   - 70:  .50, .100, .150 (DHCP allocation peaks)
//   - 50:  .51-.99, .101-.149, .151-.200 (main DHCP pool)
//   - 20:  .11-.49, .201-.249 and anything that is not IPv4
//   - 0:   .0, .255 (network/broadcast)
//
// Example:
//
//	ordered := prescan.Prioritize([]string{"192.168.1.0", "192.168.1.1", "192.168.1.77"})
//	// 192.168.1.1, 192.168.1.77, 192.168.1.0
package prescan
