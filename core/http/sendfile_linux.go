//go:build linux

package http

import (
	"net"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// sendFileFast streams the file with zero-copy sendfile when the connection
// exposes a raw file descriptor (plain TCP; TLS connections fall back to
// the buffered copy). Returns done=false when the fast path is unavailable.
func sendFileFast(conn net.Conn, file *os.File, size int64) (done bool, err error) {
	sc, ok := conn.(syscall.Conn)
	if !ok {
		return false, nil
	}
	raw, rerr := sc.SyscallConn()
	if rerr != nil {
		return false, nil
	}

	var sent, offset int64
	var werr error
	for sent < size {
		cerr := raw.Write(func(fd uintptr) bool {
			n, e := unix.Sendfile(int(fd), int(file.Fd()), &offset, int(size-sent))
			if n > 0 {
				sent += int64(n)
				sentBytes.Add(uint64(n))
			}
			if e == unix.EAGAIN {
				return false // wait for writability, retry
			}
			werr = e
			return true
		})
		if cerr != nil {
			return true, cerr
		}
		if werr != nil {
			if werr == unix.ENOSYS || werr == unix.EINVAL {
				return false, nil
			}
			if IsPeerReset(werr) {
				return true, nil
			}
			return true, werr
		}
	}
	return true, nil
}
