package subnet

import (
	"fmt"
	"time"
)

// Device is a host that answered during a sweep
type Device struct {
	IP       string        `json:"ip"`
	Hostname string        `json:"hostname,omitempty"`
	MAC      string        `json:"mac,omitempty"`
	Latency  time.Duration `json:"latency"`
}

// LatencyMillis returns the probe round-trip time in fractional milliseconds.
func (d Device) LatencyMillis() float64 {
	return float64(d.Latency) / float64(time.Millisecond)
}

func (d Device) String() string {
	mac := d.MAC
	if mac == "" {
		mac = "unknown"
	}
	return fmt.Sprintf("%s (%s) mac=%s %.2f ms", d.IP, d.Hostname, mac, d.LatencyMillis())
}
