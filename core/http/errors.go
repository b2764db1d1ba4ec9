package http

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
)

// Error definitions
var (
	ErrMalformedRequest = errors.New("malformed request line")
	ErrMalformedHeaders = errors.New("malformed header line")
	ErrMalformedForm    = errors.New("malformed form body")

	ErrFileNotExists            = errors.New("file does not exist")
	ErrBackslashInPath          = errors.New("backslash in file path")
	ErrParentDirectoryReference = errors.New("parent directory reference in file path")

	ErrAlreadySent          = errors.New("response was already sent")
	ErrModeMismatch         = errors.New("send call does not match response mode")
	ErrConflictingArguments = errors.New("conflicting redirect arguments")

	ErrNoBody       = errors.New("request has no decodable body")
	ErrBodyTooLarge = errors.New("request body exceeds the configured maximum")
)

// RequestError wraps any decode failure into a single "unparseable request"
// outcome, carrying the offending raw bytes for diagnostics.
type RequestError struct {
	Raw []byte
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("unparseable request (%d bytes): %v", len(e.Raw), e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsWouldBlock reports whether err is a transient would-block condition
// (EAGAIN or an elapsed I/O deadline).
func IsWouldBlock(err error) bool {
	if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// IsPeerReset reports whether err means the peer went away mid-exchange.
func IsPeerReset(err error) bool {
	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
