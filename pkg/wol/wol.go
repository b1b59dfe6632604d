// Package wol sends wake-on-LAN magic packets.
package wol

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/projectdiscovery/gologger"
	"github.com/projectdiscovery/netsurvey/pkg/macaddr"
	"github.com/projectdiscovery/netsurvey/pkg/types"
)

const (
	DefaultPort    = 9
	DefaultTimeout = 10 * time.Second
	DefaultPackets = 5

	syncStreamLen = 6
	macRepeats    = 16
	// PacketLen is the size of a magic packet
	PacketLen = syncStreamLen + macRepeats*macaddr.Len
)

type options struct {
	port    int
	timeout time.Duration
	packets int
}

// Option configures Send
type Option func(*options) error

// WithPort sets the destination UDP port.
func WithPort(port int) Option {
	return func(o *options) error {
		if port < 1 || port > 65535 {
			return types.InvalidArgument("port", "%d is outside 1-65535", port)
		}
		o.port = port
		return nil
	}
}

// WithTimeout bounds each write. Zero restores DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) error {
		if timeout < 0 {
			return types.InvalidArgument("timeout", "%s is negative", timeout)
		}
		if timeout == 0 {
			timeout = DefaultTimeout
		}
		o.timeout = timeout
		return nil
	}
}

// WithPackets sets how many copies are sent. Delivery is unacknowledged so
// more than one is usual.
func WithPackets(packets int) Option {
	return func(o *options) error {
		if packets < 1 {
			return types.InvalidArgument("packets", "%d is less than 1", packets)
		}
		o.packets = packets
		return nil
	}
}

// MagicPacket returns six 0xff bytes followed by the hardware address
// repeated sixteen times.
func MagicPacket(mac string) ([]byte, error) {
	hw, err := macaddr.ToBytes(mac)
	if err != nil {
		return nil, err
	}
	packet := make([]byte, 0, PacketLen)
	for i := 0; i < syncStreamLen; i++ {
		packet = append(packet, 0xff)
	}
	for i := 0; i < macRepeats; i++ {
		packet = append(packet, hw...)
	}
	return packet, nil
}

// Send writes the magic packet for mac to ip, usually the subnet broadcast
// address, over UDP.
func Send(ctx context.Context, ip, mac string, opts ...Option) error {
	o := options{port: DefaultPort, timeout: DefaultTimeout, packets: DefaultPackets}
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return err
		}
	}
	if ip == "" {
		return types.InvalidArgument("ip", "address is empty")
	}
	packet, err := MagicPacket(mac)
	if err != nil {
		return err
	}

	address := net.JoinHostPort(ip, strconv.Itoa(o.port))
	for i := 0; i < o.packets; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sendOnce(ctx, address, packet, o.timeout); err != nil {
			return err
		}
	}
	gologger.Verbose().Msgf("sent %d wake packets for %s to %s", o.packets, mac, address)
	return nil
}

// sendOnce uses a fresh socket per packet
func sendOnce(ctx context.Context, address string, packet []byte, timeout time.Duration) error {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "udp", address)
	if err != nil {
		return fmt.Errorf("could not open socket to %s: %w", address, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	if _, err := conn.Write(packet); err != nil {
		return fmt.Errorf("could not send wake packet to %s: %w", address, err)
	}
	return nil
}
