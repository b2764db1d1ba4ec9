//go:build !linux

package http

import (
	"net"
	"os"
)

// sendFileFast is unavailable off Linux; callers use the buffered copy.
func sendFileFast(net.Conn, *os.File, int64) (bool, error) {
	return false, nil
}
