package core

import (
	"crypto/tls"
	"fmt"
	"net"

	"golang.org/x/net/netutil"
)

// listener couples the accept surface (possibly capped and TLS-wrapped) with
// the underlying TCP listener, which is the only layer that accepts a
// deadline. The poll loop arms a short deadline on tcp each tick so Accept
// never blocks past the poll interval.
type listener struct {
	outer net.Listener
	tcp   *net.TCPListener
}

// newListener binds host:port, caps concurrent connections at maxConns when
// positive, and wraps with TLS when tlsConfig is non-nil.
func newListener(host string, port int, maxConns int, tlsConfig *tls.Config) (*listener, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	base, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	tcp, ok := base.(*net.TCPListener)
	if !ok {
		base.Close()
		return nil, fmt.Errorf("listen on %s: not a TCP listener", addr)
	}

	outer := net.Listener(tcp)
	if maxConns > 0 {
		outer = netutil.LimitListener(outer, maxConns)
	}
	if tlsConfig != nil {
		outer = tls.NewListener(outer, tlsConfig)
	}
	return &listener{outer: outer, tcp: tcp}, nil
}

func (l *listener) addr() net.Addr {
	return l.tcp.Addr()
}

func (l *listener) close() error {
	return l.outer.Close()
}
