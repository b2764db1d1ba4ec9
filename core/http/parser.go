package http

import (
	"bytes"
	"net"
	"net/url"
	"strings"
)

var headerDelimiter = []byte("\r\n\r\n")

// NewRequest parses the accumulated bytes of one request. raw must contain
// at least the header block up to and including the empty-line delimiter;
// any bytes after the delimiter become the (possibly partial) body. Every
// decode failure is wrapped into a single RequestError carrying the
// offending bytes.
func NewRequest(conn net.Conn, clientAddress net.Addr, raw []byte) (*Request, error) {
	delim := bytes.Index(raw, headerDelimiter)
	if delim < 0 {
		return nil, &RequestError{Raw: raw, Err: ErrMalformedRequest}
	}

	headerBytes := raw[:delim]
	body := raw[delim+len(headerDelimiter):]

	startLine, headerBlock, _ := strings.Cut(strings.TrimSpace(string(headerBytes)), "\r\n")

	tokens := strings.Fields(startLine)
	if len(tokens) != 3 {
		return nil, &RequestError{Raw: raw, Err: ErrMalformedRequest}
	}
	method, rawPath, version := tokens[0], tokens[1], tokens[2]

	path, queryString, _ := strings.Cut(rawPath, "?")
	if decoded, err := url.PathUnescape(path); err == nil {
		path = decoded
	}

	headers, err := ParseHeaderBlock(headerBlock)
	if err != nil {
		return nil, &RequestError{Raw: raw, Err: err}
	}

	return &Request{
		Conn:          conn,
		ClientAddress: clientAddress,
		Method:        method,
		Path:          path,
		QueryParams:   ParseQueryParams(queryString),
		HTTPVersion:   version,
		Headers:       headers,
		raw:           raw,
		body:          body,
	}, nil
}
