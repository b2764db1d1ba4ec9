// Package sse implements Server-Sent Events framing on top of a retained
// HTTP connection.
package sse

import (
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/tinyserv/tiny-server/core/http"
)

// Event is a single Server-Sent Event.
type Event struct {
	ID    string
	Event string
	Data  string
	Retry int // milliseconds

	// Fields carries additional custom "field: value" lines.
	Fields map[string]string
}

// FormatEvent serializes an event as newline-delimited "field: value" lines
// terminated by a blank line.
func FormatEvent(event *Event) []byte {
	var buf []byte

	if event.ID != "" {
		buf = append(buf, fmt.Sprintf("id: %s\n", event.ID)...)
	}
	if event.Event != "" {
		buf = append(buf, fmt.Sprintf("event: %s\n", event.Event)...)
	}
	if event.Retry > 0 {
		buf = append(buf, fmt.Sprintf("retry: %d\n", event.Retry)...)
	}
	if event.Data != "" {
		buf = append(buf, fmt.Sprintf("data: %s\n", event.Data)...)
	}

	names := make([]string, 0, len(event.Fields))
	for name := range event.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		buf = append(buf, fmt.Sprintf("%s: %s\n", name, event.Fields[name])...)
	}

	buf = append(buf, '\n')
	return buf
}

// Response is the SSE response flavor. Send emits the headers immediately
// and retains the connection; the embedding application then calls
// SendEvent between poll ticks and Close when done. There is no automatic
// lifetime tie-in: Close must be called explicitly.
type Response struct {
	Headers *http.Headers
	Cookies map[string]string

	// FailSilently makes use-after-close a no-op instead of an error.
	FailSilently bool

	conn      net.Conn
	started   bool
	closed    bool
	closeOnce sync.Once
}

// NewResponse creates an SSE response.
func NewResponse() *Response {
	return &Response{}
}

// ErrConnectionClosed is returned on use after Close.
var ErrConnectionClosed = fmt.Errorf("sse: connection closed")

// Send emits the event-stream headers (Cache-Control: no-cache,
// Connection: keep-alive) and retains conn for later SendEvent calls.
func (r *Response) Send(conn net.Conn, defaults *http.Headers) error {
	if r.started {
		return http.ErrAlreadySent
	}
	headers := http.NewHeaders()
	if r.Headers != nil {
		headers = r.Headers.Copy()
	}
	headers.SetDefault(http.HeaderCacheControl, "no-cache")
	headers.SetDefault(http.HeaderConnection, "keep-alive")

	if err := http.WriteStreamHead(conn, http.StatusOK, headers, defaults,
		r.Cookies, "text/event-stream"); err != nil {
		return err
	}
	r.conn = conn
	r.started = true
	return nil
}

// RetainsConnection marks the connection as owned by this response beyond
// the initial exchange, so the poll loop does not close it.
func (r *Response) RetainsConnection() bool {
	return true
}

// SendEvent serializes and sends one event.
func (r *Response) SendEvent(event *Event) error {
	if r.closed || !r.started {
		if r.FailSilently {
			return nil
		}
		return ErrConnectionClosed
	}
	return http.SendRaw(r.conn, FormatEvent(event))
}

// Close sends the close sentinel event exactly once and closes the socket.
// Repeated calls are no-ops.
func (r *Response) Close() error {
	var err error
	r.closeOnce.Do(func() {
		if r.started && !r.closed {
			err = http.SendRaw(r.conn, FormatEvent(&Event{Event: "close"}))
		}
		r.closed = true
		if r.conn != nil {
			r.conn.Close()
		}
	})
	return err
}

// Closed reports whether Close has been called.
func (r *Response) Closed() bool {
	return r.closed
}
