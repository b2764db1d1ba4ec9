//go:build !linux && !darwin

package core

import "net"

func tuneConn(net.Conn) {}
