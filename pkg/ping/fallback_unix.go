//go:build !windows

package ping

import (
	"errors"
	"strings"
	"syscall"

	"golang.org/x/sys/unix"
)

func ttlControl(ttl int) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			if strings.HasSuffix(network, "6") {
				sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IPV6, unix.IPV6_UNICAST_HOPS, ttl)
				return
			}
			sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_IP, unix.IP_TTL, ttl)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}

func isRefused(err error) bool {
	return errors.Is(err, unix.ECONNREFUSED)
}
