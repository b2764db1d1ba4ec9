// Package core implements the poll-driven connection engine: a single
// cooperative loop that accepts at most one connection per tick, decodes the
// request, dispatches it through the route table and writes the response.
// There is no background I/O; the embedding application drives the engine by
// calling Poll repeatedly (or hands the loop over to ServeForever).
package core

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tinyserv/tiny-server/config"
	"github.com/tinyserv/tiny-server/core/auth"
	"github.com/tinyserv/tiny-server/core/http"
	"github.com/tinyserv/tiny-server/core/router"
	"github.com/tinyserv/tiny-server/core/websocket"
)

var headerDelimiter = []byte("\r\n\r\n")

// errNoRoute classifies a non-GET/HEAD request that matched nothing.
var errNoRoute = errors.New("no matching route")

// Server is the poll-driven engine. Route registration must finish before
// Start; the route table is read-only while polling.
type Server struct {
	cfg     *config.Config
	routes  *router.Table
	headers *http.Headers

	ln      *listener
	stats   Stats
	bufPool sync.Pool
	stopped atomic.Bool
}

// New creates a server with the given configuration (nil means defaults).
func New(cfg *config.Config) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1024
	}
	s := &Server{
		cfg:     cfg,
		routes:  router.NewTable(),
		headers: http.NewHeaders(),
	}
	s.bufPool.New = func() any {
		b := make([]byte, cfg.BufferSize)
		return &b
	}
	return s
}

// Headers returns the server-default headers merged into every response.
// Response-set headers win on conflict.
func (s *Server) Headers() *http.Headers {
	return s.headers
}

// Add registers a route. Methods defaults to GET when empty.
func (s *Server) Add(template string, methods []string, appendSlash bool, handler router.Handler) error {
	route, err := router.New(template, methods, appendSlash, handler)
	if err != nil {
		return err
	}
	s.routes.Add(route)
	return nil
}

// mustAdd backs the method shorthands; a bad template is a programming
// error caught at startup.
func (s *Server) mustAdd(template, method string, handler router.Handler) {
	if err := s.Add(template, []string{method}, false, handler); err != nil {
		panic(err)
	}
}

// GET registers a GET route, panicking on an invalid template.
func (s *Server) GET(template string, handler router.Handler) { s.mustAdd(template, "GET", handler) }

// POST registers a POST route, panicking on an invalid template.
func (s *Server) POST(template string, handler router.Handler) { s.mustAdd(template, "POST", handler) }

// PUT registers a PUT route, panicking on an invalid template.
func (s *Server) PUT(template string, handler router.Handler) { s.mustAdd(template, "PUT", handler) }

// DELETE registers a DELETE route, panicking on an invalid template.
func (s *Server) DELETE(template string, handler router.Handler) {
	s.mustAdd(template, "DELETE", handler)
}

// PATCH registers a PATCH route, panicking on an invalid template.
func (s *Server) PATCH(template string, handler router.Handler) { s.mustAdd(template, "PATCH", handler) }

// HEAD registers a HEAD route, panicking on an invalid template.
func (s *Server) HEAD(template string, handler router.Handler) { s.mustAdd(template, "HEAD", handler) }

// Start binds the listening socket. Polling can begin once it returns.
func (s *Server) Start(host string, port int) error {
	if s.ln != nil {
		return fmt.Errorf("server already started on %s", s.ln.addr())
	}

	var tlsConfig *tls.Config
	if s.cfg.TLS() {
		cert, err := tls.LoadX509KeyPair(s.cfg.CertFile, s.cfg.KeyFile)
		if err != nil {
			return fmt.Errorf("load TLS keypair: %w", err)
		}
		tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	ln, err := newListener(host, port, s.cfg.MaxConnections, tlsConfig)
	if err != nil {
		return err
	}
	s.ln = ln
	s.stopped.Store(false)

	scheme := "http"
	if tlsConfig != nil {
		scheme = "https"
	}
	log.Printf("🚀 Server started on %s://%s [%s]", scheme, ln.addr(), s.cfg.Env)
	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.addr()
}

// Stop closes the listener. Further Poll calls are no-ops.
func (s *Server) Stop() error {
	if s.ln == nil || !s.stopped.CompareAndSwap(false, true) {
		return nil
	}
	err := s.ln.close()
	log.Printf("🛑 Server stopped on %s", s.ln.addr())
	return err
}

// Stats returns a snapshot of the tick counters.
func (s *Server) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}

// ServeForever starts the server and polls until Stop is called from a
// handler or another goroutine. Transient poll errors are logged in debug
// mode and swallowed.
func (s *Server) ServeForever(host string, port int) error {
	if err := s.Start(host, port); err != nil {
		return err
	}
	for !s.stopped.Load() {
		if _, err := s.Poll(); err != nil {
			s.stats.errors.Add(1)
			s.debugf("poll error: %v", err)
		}
	}
	return nil
}

// Poll runs one tick: accept at most one pending connection, read and parse
// its request, dispatch and respond. The absence of a pending connection is
// not an error. Transient I/O conditions (would-block, peer reset) classify
// as NoRequest; anything else is returned for the embedding loop to judge.
func (s *Server) Poll() (PollResult, error) {
	if s.ln == nil || s.stopped.Load() {
		return NoRequest, nil
	}

	s.ln.tcp.SetDeadline(time.Now().Add(s.cfg.PollInterval))
	conn, err := s.ln.outer.Accept()
	if err != nil {
		if http.IsWouldBlock(err) || http.IsPeerReset(err) {
			return NoRequest, nil
		}
		s.stats.errors.Add(1)
		return NoRequest, err
	}
	s.stats.accepted.Add(1)
	tuneConn(conn)

	retained := false
	defer func() {
		if !retained {
			conn.Close()
		}
	}()

	raw, overflow := s.readHead(conn)
	if overflow {
		s.stats.errors.Add(1)
		s.debugf("oversized header block from %s (%d bytes)", conn.RemoteAddr(), len(raw))
		s.sendStatus(conn, http.StatusRequestTooLarge, nil)
		return RequestHandledResponseSent, nil
	}
	if len(raw) == 0 {
		s.stats.timeouts.Add(1)
		return ConnectionTimedOut, nil
	}

	req, err := http.NewRequest(conn, conn.RemoteAddr(), raw)
	if err != nil {
		s.stats.errors.Add(1)
		s.debugf("unparseable request from %s: %v", conn.RemoteAddr(), err)
		s.sendStatus(conn, http.StatusBadRequest, nil)
		return RequestHandledResponseSent, nil
	}
	req.FormMethods = s.cfg.FormMethods
	req.Debug = s.cfg.Debug

	if err := s.readBody(conn, req); err != nil {
		s.debugf("oversized body from %s: %v", conn.RemoteAddr(), err)
		s.sendStatus(conn, http.StatusRequestTooLarge, nil)
		return RequestHandledResponseSent, nil
	}
	s.stats.requests.Add(1)

	responder, err := s.dispatch(req)
	if err != nil {
		s.respondError(conn, req, err)
		return RequestHandledResponseSent, nil
	}
	if responder == nil {
		return RequestHandledNoResponse, nil
	}

	if err := responder.Send(conn, s.headers); err != nil {
		switch {
		case errors.Is(err, http.ErrFileNotExists),
			errors.Is(err, http.ErrBackslashInPath),
			errors.Is(err, http.ErrParentDirectoryReference):
			// Rejected before any bytes were written; a status answer is
			// still possible.
			s.respondError(conn, req, err)
			return RequestHandledResponseSent, nil
		default:
			s.stats.errors.Add(1)
			s.debugf("send to %s failed: %v", conn.RemoteAddr(), err)
			return RequestHandledResponseSent, err
		}
	}
	s.stats.responses.Add(1)

	if rc, ok := responder.(interface{ RetainsConnection() bool }); ok && rc.RetainsConnection() {
		retained = true
	}
	return RequestHandledResponseSent, nil
}

// readHead reads until the header delimiter arrives, the timeout elapses,
// or MaxHeaderSize is exceeded (overflow=true, the 413 path). Partial reads
// are returned as-is; the parser decides what they are.
func (s *Server) readHead(conn net.Conn) (raw []byte, overflow bool) {
	bufp := s.bufPool.Get().(*[]byte)
	defer s.bufPool.Put(bufp)
	buf := *bufp

	conn.SetReadDeadline(time.Now().Add(s.cfg.Timeout))
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			raw = append(raw, buf[:n]...)
			if bytes.Contains(raw, headerDelimiter) {
				break
			}
			if s.cfg.MaxHeaderSize > 0 && len(raw) > s.cfg.MaxHeaderSize {
				return raw, true
			}
		}
		if err != nil {
			break
		}
	}
	return raw, false
}

// readBody keeps reading until the declared Content-Length is accumulated
// or the timeout elapses (the partial body is then accepted as final).
// Exceeding MaxBodySize fails with ErrBodyTooLarge before further reads.
func (s *Server) readBody(conn net.Conn, req *http.Request) error {
	declared := req.ContentLength()
	if declared == 0 {
		return nil
	}
	if s.cfg.MaxBodySize > 0 && declared > s.cfg.MaxBodySize {
		return http.ErrBodyTooLarge
	}

	body := req.Body()
	if len(body) >= declared {
		req.SetBody(body[:declared])
		return nil
	}

	bufp := s.bufPool.Get().(*[]byte)
	defer s.bufPool.Put(bufp)
	buf := *bufp

	conn.SetReadDeadline(time.Now().Add(s.cfg.Timeout))
	for len(body) < declared {
		chunk := buf
		if remaining := declared - len(body); remaining < len(chunk) {
			chunk = chunk[:remaining]
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			body = append(body, chunk[:n]...)
		}
		if err != nil {
			break
		}
	}
	req.SetBody(body)
	return nil
}

// dispatch finds the first matching route and runs its handler. With no
// match, GET and HEAD fall back to file serving from the configured root;
// other methods classify as errNoRoute (answered 400).
func (s *Server) dispatch(req *http.Request) (http.Responder, error) {
	if route, params, ok := s.routes.Match(req.Method, req.Path); ok {
		req.PathParams = params
		return route.Handler(req)
	}

	if req.Method == "GET" || req.Method == "HEAD" {
		if s.cfg.RootPath == "" {
			return nil, http.ErrFileNotExists
		}
		filename := req.Path
		if strings.HasSuffix(filename, "/") {
			filename += "index.html"
		}
		resp := http.NewFileResponse(filename, s.cfg.RootPath)
		resp.BufferSize = s.cfg.BufferSize
		resp.HeadOnly = req.Method == "HEAD"
		return resp, nil
	}
	return nil, errNoRoute
}

// respondError maps a handler or pre-send failure to its status answer.
func (s *Server) respondError(conn net.Conn, req *http.Request, err error) {
	s.stats.errors.Add(1)
	switch {
	case errors.Is(err, auth.ErrAuthentication):
		headers := http.NewHeaders()
		headers.Set(http.HeaderWWWAuthenticate, `Basic charset="UTF-8"`)
		s.sendStatus(conn, http.StatusUnauthorized, headers)

	case errors.Is(err, websocket.ErrHandshake), errors.Is(err, errNoRoute):
		s.sendStatus(conn, http.StatusBadRequest, nil)

	case errors.Is(err, http.ErrFileNotExists):
		s.sendStatus(conn, http.StatusNotFound, nil)

	case errors.Is(err, http.ErrBackslashInPath),
		errors.Is(err, http.ErrParentDirectoryReference):
		s.sendStatus(conn, http.StatusForbidden, nil)

	default:
		s.debugf("handler for %s %s failed: %v", req.Method, req.Path, err)
		s.sendStatus(conn, http.StatusInternalServerError, nil)
	}
}

// sendStatus writes a bare status answer with an empty body.
func (s *Server) sendStatus(conn net.Conn, status http.Status, headers *http.Headers) {
	resp := &http.Response{Status: status, Headers: headers}
	if err := resp.Send(conn, s.headers); err != nil {
		s.debugf("status answer %s failed: %v", status, err)
	}
}

func (s *Server) debugf(format string, args ...any) {
	if s.cfg.Debug {
		log.Printf("⚠️  "+format, args...)
	}
}
