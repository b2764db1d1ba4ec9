// Package websocket implements the RFC 6455 subset used by the engine:
// opening handshake key derivation and a bidirectional frame codec for
// single-fragment messages. Continuation frames are not supported.
package websocket

import (
	"bufio"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tinyserv/tiny-server/core/http"
)

// OpCode represents WebSocket operation codes
type OpCode byte

const (
	OpContinuation OpCode = 0x0
	OpText         OpCode = 0x1
	OpBinary       OpCode = 0x2
	OpClose        OpCode = 0x8
	OpPing         OpCode = 0x9
	OpPong         OpCode = 0xA
)

// Error definitions
var (
	ErrHandshake               = errors.New("websocket: invalid upgrade request")
	ErrConnectionClosed        = errors.New("websocket: connection closed")
	ErrContinuationUnsupported = errors.New("websocket: continuation frames not supported")
)

// Frame is a single WebSocket frame.
type Frame struct {
	Fin     bool
	OpCode  OpCode
	Masked  bool
	Payload []byte
}

// Message is a complete single-fragment WebSocket message.
type Message struct {
	OpCode  OpCode
	Payload []byte
}

// Text returns the payload as a string. Invalid UTF-8 passes through as the
// raw bytes rather than erroring; IsText reports whether the payload is
// actually valid text.
func (m *Message) Text() string {
	return string(m.Payload)
}

// IsText reports whether the message carries a valid UTF-8 text payload.
func (m *Message) IsText() bool {
	return m.OpCode == OpText && utf8.Valid(m.Payload)
}

const acceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// AcceptKey derives the Sec-WebSocket-Accept value from the client key.
func AcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key + acceptGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Conn is a WebSocket connection. It is created by Upgrade from a request
// and becomes live once its handshake response is sent; the embedding
// application retains it across poll ticks and drives it with Receive and
// the Send methods.
type Conn struct {
	// FailSilently makes use-after-close a no-op instead of an error.
	FailSilently bool

	acceptKey      string
	conn           net.Conn
	reader         *bufio.Reader
	writeMu        sync.Mutex
	maxMessageSize int64
	receiveTimeout time.Duration

	closed    bool
	closeMu   sync.Mutex
	closeOnce sync.Once
}

// Upgrade validates the opening handshake of req and returns a Conn whose
// Send method emits the 101 response. It fails with ErrHandshake when the
// Upgrade directive does not contain "websocket", the Connection directive
// does not contain "upgrade", or Sec-WebSocket-Key is absent.
func Upgrade(req *http.Request) (*Conn, error) {
	upgrade := strings.ToLower(req.Headers.GetDirective(http.HeaderUpgrade))
	if !strings.Contains(upgrade, "websocket") {
		return nil, fmt.Errorf("%w: Upgrade header is %q", ErrHandshake, upgrade)
	}
	connection := strings.ToLower(req.Headers.Get(http.HeaderConnection))
	if !strings.Contains(connection, "upgrade") {
		return nil, fmt.Errorf("%w: Connection header is %q", ErrHandshake, connection)
	}
	key := req.Headers.Get("Sec-WebSocket-Key")
	if key == "" {
		return nil, fmt.Errorf("%w: missing Sec-WebSocket-Key", ErrHandshake)
	}

	return &Conn{
		acceptKey:      AcceptKey(key),
		maxMessageSize: 1024 * 1024,
		receiveTimeout: 10 * time.Millisecond,
	}, nil
}

// Send emits the 101 Switching Protocols handshake response and takes
// ownership of the connection.
func (c *Conn) Send(conn net.Conn, defaults *http.Headers) error {
	if c.conn != nil {
		return http.ErrAlreadySent
	}
	headers := http.NewHeaders()
	headers.Set(http.HeaderUpgrade, "websocket")
	headers.Set(http.HeaderConnection, "Upgrade")
	headers.Set("Sec-WebSocket-Accept", c.acceptKey)
	headers.Merge(defaults)

	buf := make([]byte, 0, 160)
	buf = append(buf, http.Version...)
	buf = append(buf, ' ')
	buf = append(buf, http.StatusSwitchingProtocols.String()...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, headers.Wire()...)
	buf = append(buf, "\r\n"...)
	if err := http.SendRaw(conn, buf); err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// RetainsConnection marks the connection as owned by this codec beyond the
// initial request/response exchange.
func (c *Conn) RetainsConnection() bool {
	return true
}

// SetMaxMessageSize bounds the accepted payload length.
func (c *Conn) SetMaxMessageSize(size int64) {
	c.maxMessageSize = size
}

// SetReceiveTimeout bounds how long a single Receive call waits for a frame.
func (c *Conn) SetReceiveTimeout(d time.Duration) {
	c.receiveTimeout = d
}

// Receive reads the next message. It returns (nil, nil) when no data is
// available this tick or when a pong was swallowed. A ping triggers an
// automatic pong echo before the payload is returned to the caller; a close
// frame closes the connection and reports ErrConnectionClosed (or nil in
// fail-silently mode).
func (c *Conn) Receive() (*Message, error) {
	if c.conn == nil || c.IsClosed() {
		if c.FailSilently {
			return nil, nil
		}
		return nil, ErrConnectionClosed
	}

	c.conn.SetReadDeadline(time.Now().Add(c.receiveTimeout))
	frame, err := c.readFrame()
	if err != nil {
		if http.IsWouldBlock(err) {
			return nil, nil
		}
		if err == io.EOF || http.IsPeerReset(err) {
			c.markClosed()
			if c.FailSilently {
				return nil, nil
			}
			return nil, ErrConnectionClosed
		}
		return nil, err
	}

	switch frame.OpCode {
	case OpText, OpBinary:
		return &Message{OpCode: frame.OpCode, Payload: frame.Payload}, nil

	case OpContinuation:
		return nil, ErrContinuationUnsupported

	case OpPing:
		if err := c.writeFrame(OpPong, frame.Payload); err != nil {
			return nil, err
		}
		return &Message{OpCode: OpPing, Payload: frame.Payload}, nil

	case OpPong:
		return nil, nil

	case OpClose:
		c.Close()
		if c.FailSilently {
			return nil, nil
		}
		return nil, ErrConnectionClosed

	default:
		return nil, fmt.Errorf("websocket: unknown opcode %#x", byte(frame.OpCode))
	}
}

// readFrame reads one frame, unmasking the payload when a mask is present.
// Client-to-server frames are expected to be masked per RFC 6455.
func (c *Conn) readFrame() (*Frame, error) {
	var header [2]byte
	if _, err := io.ReadFull(c.reader, header[:]); err != nil {
		return nil, err
	}

	frame := &Frame{
		Fin:    header[0]&0x80 != 0,
		OpCode: OpCode(header[0] & 0x0F),
		Masked: header[1]&0x80 != 0,
	}

	payloadLen := int64(header[1] & 0x7F)
	if payloadLen == 126 {
		var ext [2]byte
		if _, err := io.ReadFull(c.reader, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = int64(binary.BigEndian.Uint16(ext[:]))
	} else if payloadLen == 127 {
		var ext [8]byte
		if _, err := io.ReadFull(c.reader, ext[:]); err != nil {
			return nil, err
		}
		payloadLen = int64(binary.BigEndian.Uint64(ext[:]))
	}

	if payloadLen > c.maxMessageSize {
		return nil, fmt.Errorf("websocket: message too large: %d > %d", payloadLen, c.maxMessageSize)
	}

	var maskKey [4]byte
	if frame.Masked {
		if _, err := io.ReadFull(c.reader, maskKey[:]); err != nil {
			return nil, err
		}
	}

	if payloadLen > 0 {
		frame.Payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(c.reader, frame.Payload); err != nil {
			return nil, err
		}
		if frame.Masked {
			for i := range frame.Payload {
				frame.Payload[i] ^= maskKey[i%4]
			}
		}
	}

	return frame, nil
}

// EncodeFrame builds a server-to-client frame: FIN always set (no
// fragmentation), never masked, length encoded in 1/2/8-byte tiers.
func EncodeFrame(opcode OpCode, payload []byte) []byte {
	buf := make([]byte, 0, len(payload)+10)
	buf = append(buf, 0x80|byte(opcode))

	switch {
	case len(payload) < 126:
		buf = append(buf, byte(len(payload)))
	case len(payload) < 65536:
		buf = append(buf, 126)
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(payload)))
	default:
		buf = append(buf, 127)
		buf = binary.BigEndian.AppendUint64(buf, uint64(len(payload)))
	}

	return append(buf, payload...)
}

func (c *Conn) writeFrame(opcode OpCode, payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return http.SendRaw(c.conn, EncodeFrame(opcode, payload))
}

// SendMessage sends a single-fragment message with the given opcode. Using
// a socket whose handshake was never sent is treated like use-after-close.
func (c *Conn) SendMessage(opcode OpCode, payload []byte) error {
	if c.conn == nil || c.IsClosed() {
		if c.FailSilently {
			return nil
		}
		return ErrConnectionClosed
	}
	return c.writeFrame(opcode, payload)
}

// SendText sends a TEXT message.
func (c *Conn) SendText(text string) error {
	return c.SendMessage(OpText, []byte(text))
}

// SendBinary sends a BINARY message.
func (c *Conn) SendBinary(data []byte) error {
	return c.SendMessage(OpBinary, data)
}

// Ping sends a PING frame.
func (c *Conn) Ping() error {
	return c.SendMessage(OpPing, nil)
}

// Close best-effort sends a CLOSE frame, then closes the socket. Repeated
// calls after close are no-ops.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.markClosed()
		if c.conn != nil {
			c.writeFrame(OpClose, nil)
			err = c.conn.Close()
		}
	})
	return err
}

func (c *Conn) markClosed() {
	c.closeMu.Lock()
	c.closed = true
	c.closeMu.Unlock()
}

// IsClosed reports whether the connection has been closed from either side.
func (c *Conn) IsClosed() bool {
	c.closeMu.Lock()
	defer c.closeMu.Unlock()
	return c.closed
}
