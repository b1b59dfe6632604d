package traceroute

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Hop is one router on the path, or the destination itself.
type Hop struct {
	TTL         int           `json:"ttl"`
	IP          string        `json:"ip"`
	Hostname    string        `json:"hostname,omitempty"`
	Destination bool          `json:"destination"`
	Elapsed     time.Duration `json:"elapsed,omitempty"`
	RawOutput   string        `json:"-"`
}

func (h Hop) String() string {
	name := h.IP
	if h.Hostname != "" {
		name = fmt.Sprintf("%s (%s)", h.Hostname, h.IP)
	}
	if h.Destination {
		return fmt.Sprintf("%2d  %s  %.2f ms", h.TTL, name, float64(h.Elapsed)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%2d  %s", h.TTL, name)
}

var (
	// linux "From gw (10.0.0.1) icmp_seq=1 Time to live exceeded",
	// darwin "92 bytes from 10.0.0.1: Time to live exceeded",
	// windows "Reply from 10.0.0.1: TTL expired in transit."
	exceededPattern = regexp.MustCompile(`(?im)from (\S+?)(?: \(([^)\s]+)\))?:? .*(?:time to live exceeded|ttl expired in transit)`)
	// "64 bytes from dns.google (8.8.8.8): icmp_seq=1 ttl=117 time=10.2 ms"
	// "Reply from 8.8.8.8: bytes=32 time<1ms TTL=117"
	replyPattern = regexp.MustCompile(`(?im)(?:bytes from|reply from) (\S+?)(?: \(([^)\s]+)\))?: .*?time[=<]([\d.]+) ?ms`)
)

// parseHop reads the output of one ping run at the given ttl. ok is false
// when no router and no destination answered.
func parseHop(ttl int, output string) (hop Hop, ok bool) {
	if match := exceededPattern.FindStringSubmatch(output); match != nil {
		hop = Hop{TTL: ttl, RawOutput: output}
		hop.IP, hop.Hostname = addressOf(match[1], match[2])
		return hop, true
	}
	if match := replyPattern.FindStringSubmatch(output); match != nil {
		hop = Hop{TTL: ttl, Destination: true, RawOutput: output}
		hop.IP, hop.Hostname = addressOf(match[1], match[2])
		if millis, err := strconv.ParseFloat(match[3], 64); err == nil {
			hop.Elapsed = time.Duration(millis * float64(time.Millisecond))
		}
		return hop, true
	}
	return Hop{}, false
}

// addressOf splits "name (ip)" captures; without a parenthesised part the
// first capture is the address.
func addressOf(first, parenthesised string) (ip, hostname string) {
	if parenthesised == "" {
		return first, ""
	}
	return parenthesised, first
}
