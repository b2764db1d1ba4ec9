package http

import (
	"fmt"
	"net"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/tinyserv/tiny-server/core/codec"
)

// Responder is implemented by every response flavor. Send serializes the
// response onto conn; defaults are merged into the response headers with
// response-set headers winning on conflict.
type Responder interface {
	Send(conn net.Conn, defaults *Headers) error
}

// Response sending states: headers may be sent at most once, body bytes only
// after headers.
type sendState uint8

const (
	stateInitial sendState = iota
	stateHeadersSent
	stateBodySent
)

var sentBytes atomic.Uint64

// BytesSent returns the total number of body and header bytes written by
// this package since process start.
func BytesSent() uint64 {
	return sentBytes.Load()
}

// sendAll writes buf fully, retrying indefinitely on a would-block
// condition and treating a peer reset as a silent short-circuit (the
// partial send is accepted as final). All other I/O failures are returned.
func sendAll(conn net.Conn, buf []byte) error {
	sent := 0
	for sent < len(buf) {
		n, err := conn.Write(buf[sent:])
		if n > 0 {
			sent += n
		}
		if err != nil {
			if IsWouldBlock(err) {
				continue
			}
			sentBytes.Add(uint64(sent))
			if IsPeerReset(err) {
				return nil
			}
			return err
		}
	}
	sentBytes.Add(uint64(sent))
	return nil
}

// writeHead emits the status line and the merged header block as a single
// buffered write ending in a blank line. contentLength < 0 omits the
// Content-Length header, which is acceptable only in chunked or streaming
// modes.
func writeHead(conn net.Conn, status Status, headers, defaults *Headers,
	cookies map[string]string, contentType string, contentLength int, chunked bool) error {

	h := NewHeaders()
	if headers != nil {
		h = headers.Copy()
	}

	// Precedence: response headers, then the response's content type, then
	// server defaults, then the engine fallbacks.
	if contentType != "" {
		h.SetDefault(HeaderContentType, contentType)
	}
	if chunked {
		h.SetDefault(HeaderTransferEncoding, "chunked")
	} else if contentLength >= 0 {
		h.SetDefault(HeaderContentLength, strconv.Itoa(contentLength))
	}
	h.Merge(defaults)
	h.SetDefault(HeaderContentType, DefaultContentType)
	h.SetDefault(HeaderConnection, "close")

	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Add(HeaderSetCookie, name+"="+cookies[name])
	}

	buf := make([]byte, 0, 256)
	buf = append(buf, Version...)
	buf = append(buf, ' ')
	buf = append(buf, status.String()...)
	buf = append(buf, "\r\n"...)
	buf = append(buf, h.Wire()...)
	buf = append(buf, "\r\n"...)
	return sendAll(conn, buf)
}

// WriteStreamHead emits the status line and merged headers for a streaming
// response with no declared length (SSE and similar flavors that keep
// producing body bytes after headers are sent).
func WriteStreamHead(conn net.Conn, status Status, headers, defaults *Headers,
	cookies map[string]string, contentType string) error {
	return writeHead(conn, status, headers, defaults, cookies, contentType, -1, false)
}

// SendRaw writes buf using the engine byte-send primitive (retry on
// would-block, silent short-circuit on peer reset).
func SendRaw(conn net.Conn, buf []byte) error {
	return sendAll(conn, buf)
}

// Response is a fixed-body response.
type Response struct {
	Status      Status
	Headers     *Headers
	Cookies     map[string]string
	ContentType string
	Body        []byte

	state sendState
}

// NewResponse creates a 200 OK response with the given body.
func NewResponse(body string) *Response {
	return &Response{Status: StatusOK, Body: []byte(body)}
}

// SetCookie adds a bare name=value cookie to the response.
func (r *Response) SetCookie(name, value string) {
	if r.Cookies == nil {
		r.Cookies = make(map[string]string)
	}
	r.Cookies[name] = value
}

// Send emits headers and body. Calling it twice fails with ErrAlreadySent.
func (r *Response) Send(conn net.Conn, defaults *Headers) error {
	if r.state != stateInitial {
		return ErrAlreadySent
	}
	if err := writeHead(conn, r.Status, r.Headers, defaults,
		r.Cookies, r.ContentType, len(r.Body), false); err != nil {
		return err
	}
	r.state = stateHeadersSent
	if err := sendAll(conn, r.Body); err != nil {
		return err
	}
	r.state = stateBodySent
	return nil
}

// JSONResponse serializes Body as JSON with exact length.
type JSONResponse struct {
	Status  Status
	Headers *Headers
	Cookies map[string]string
	Body    any

	state sendState
}

// NewJSONResponse creates a 200 OK response serializing v as JSON.
func NewJSONResponse(v any) *JSONResponse {
	return &JSONResponse{Status: StatusOK, Body: v}
}

func (r *JSONResponse) Send(conn net.Conn, defaults *Headers) error {
	if r.state != stateInitial {
		return ErrAlreadySent
	}
	data, err := codec.JSON{}.Marshal(r.Body)
	if err != nil {
		return err
	}
	if err := writeHead(conn, r.Status, r.Headers, defaults,
		r.Cookies, codec.JSON{}.ContentType(), len(data), false); err != nil {
		return err
	}
	r.state = stateHeadersSent
	if err := sendAll(conn, data); err != nil {
		return err
	}
	r.state = stateBodySent
	return nil
}

// Redirect answers with a Location header. The status is picked among
// 301/302/307/308 from the Permanent and PreserveMethod flags unless an
// explicit Status override is set; combining both fails with
// ErrConflictingArguments.
type Redirect struct {
	Location       string
	Permanent      bool
	PreserveMethod bool
	Status         Status
	Headers        *Headers

	state sendState
}

// NewRedirect creates a temporary (302) redirect to location.
func NewRedirect(location string) *Redirect {
	return &Redirect{Location: location}
}

func (r *Redirect) Send(conn net.Conn, defaults *Headers) error {
	if r.state != stateInitial {
		return ErrAlreadySent
	}
	status := r.Status
	if status.Code != 0 {
		if r.Permanent || r.PreserveMethod {
			return ErrConflictingArguments
		}
	} else {
		switch {
		case r.Permanent && r.PreserveMethod:
			status = StatusPermanentRedirect
		case r.Permanent:
			status = StatusMovedPermanently
		case r.PreserveMethod:
			status = StatusTemporaryRedirect
		default:
			status = StatusFound
		}
	}
	headers := NewHeaders()
	if r.Headers != nil {
		headers = r.Headers.Copy()
	}
	headers.Set(HeaderLocation, r.Location)
	if err := writeHead(conn, status, headers, defaults, nil, "", 0, false); err != nil {
		return err
	}
	r.state = stateBodySent
	return nil
}

// ChunkWriter emits chunked-transfer frames for a ChunkedResponse body
// generator. Each chunk is wire-encoded as "<hex-length>\r\n<data>\r\n";
// zero-length chunks are skipped so that the terminating empty chunk is
// emitted exactly once, by the response itself.
type ChunkWriter struct {
	conn   net.Conn
	closed bool
}

// SendChunk writes one chunk. Using the writer after the generator has
// returned fails with ErrModeMismatch.
func (w *ChunkWriter) SendChunk(data []byte) error {
	if w.closed {
		return ErrModeMismatch
	}
	if len(data) == 0 {
		return nil
	}
	buf := make([]byte, 0, len(data)+16)
	buf = strconv.AppendUint(buf, uint64(len(data)), 16)
	buf = append(buf, "\r\n"...)
	buf = append(buf, data...)
	buf = append(buf, "\r\n"...)
	return sendAll(w.conn, buf)
}

func (w *ChunkWriter) terminate(conn net.Conn) error {
	w.closed = true
	return sendAll(conn, []byte("0\r\n\r\n"))
}

// ChunkedResponse streams its body as a generator-style chunk sequence with
// Transfer-Encoding: chunked. The terminating empty chunk is always sent,
// even when the generator returns early with an error.
type ChunkedResponse struct {
	Status      Status
	Headers     *Headers
	Cookies     map[string]string
	ContentType string
	Body        func(w *ChunkWriter) error

	state sendState
}

// NewChunkedResponse creates a 200 OK chunked response driven by body.
func NewChunkedResponse(body func(w *ChunkWriter) error) *ChunkedResponse {
	return &ChunkedResponse{Status: StatusOK, Body: body}
}

func (r *ChunkedResponse) Send(conn net.Conn, defaults *Headers) error {
	if r.state != stateInitial {
		return ErrAlreadySent
	}
	if err := writeHead(conn, r.Status, r.Headers, defaults,
		r.Cookies, r.ContentType, -1, true); err != nil {
		return err
	}
	r.state = stateHeadersSent

	w := &ChunkWriter{conn: conn}
	var genErr error
	if r.Body != nil {
		genErr = r.Body(w)
	}
	if err := w.terminate(conn); err != nil {
		return err
	}
	r.state = stateBodySent
	return genErr
}

// FileResponse streams a file from Root in BufferSize chunks, carrying the
// looked-up MIME type and exact length. With Safe set, paths containing a
// backslash or a parent-directory segment are rejected before any I/O.
type FileResponse struct {
	Status      Status
	Headers     *Headers
	Cookies     map[string]string
	ContentType string
	Filename    string
	Root        string
	BufferSize  int
	HeadOnly    bool
	Safe        bool

	state sendState
}

// NewFileResponse creates a safe 200 OK file response for filename under
// root with the default buffer size.
func NewFileResponse(filename, root string) *FileResponse {
	return &FileResponse{
		Status:     StatusOK,
		Filename:   filename,
		Root:       root,
		BufferSize: 2048,
		Safe:       true,
	}
}

func (r *FileResponse) Send(conn net.Conn, defaults *Headers) error {
	if r.state != stateInitial {
		return ErrAlreadySent
	}
	if r.Safe {
		if strings.ContainsRune(r.Filename, '\\') {
			return fmt.Errorf("%w: %q", ErrBackslashInPath, r.Filename)
		}
		for _, segment := range strings.Split(r.Filename, "/") {
			if segment == ".." {
				return fmt.Errorf("%w: %q", ErrParentDirectoryReference, r.Filename)
			}
		}
	}

	root := r.Root
	if root == "" {
		root = "."
	}
	fullPath := path.Join(root, r.Filename)

	info, err := os.Stat(fullPath)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %q", ErrFileNotExists, fullPath)
	}

	contentType := r.ContentType
	if contentType == "" {
		contentType = MIMETypeFor(r.Filename)
	}
	if err := writeHead(conn, r.Status, r.Headers, defaults,
		r.Cookies, contentType, int(info.Size()), false); err != nil {
		return err
	}
	r.state = stateHeadersSent
	if r.HeadOnly {
		r.state = stateBodySent
		return nil
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrFileNotExists, fullPath)
	}
	defer file.Close()

	if done, err := sendFileFast(conn, file, info.Size()); done {
		if err == nil {
			r.state = stateBodySent
		}
		return err
	}

	bufferSize := r.BufferSize
	if bufferSize <= 0 {
		bufferSize = 2048
	}
	buf := make([]byte, bufferSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			if err := sendAll(conn, buf[:n]); err != nil {
				return err
			}
		}
		if err != nil {
			break
		}
	}
	r.state = stateBodySent
	return nil
}
