//go:build linux || darwin

package core

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tuneConn disables Nagle and enables keepalive on an accepted connection.
// Connections that do not expose a raw descriptor (TLS wrappers, pipes) are
// left untouched.
func tuneConn(conn net.Conn) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
}
