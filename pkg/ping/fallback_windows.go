//go:build windows

package ping

import (
	"errors"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

func ttlControl(ttl int) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var sockErr error
		err := c.Control(func(fd uintptr) {
			if strings.HasSuffix(network, "6") {
				sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IPV6, windows.IPV6_UNICAST_HOPS, ttl)
				return
			}
			sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.IPPROTO_IP, windows.IP_TTL, ttl)
		})
		if err != nil {
			return err
		}
		return sockErr
	}
}

func isRefused(err error) bool {
	return errors.Is(err, windows.WSAECONNREFUSED)
}
