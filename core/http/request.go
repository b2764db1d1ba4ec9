package http

import (
	"net"
	"net/url"
	"strings"

	"github.com/tinyserv/tiny-server/core/codec"
)

// QueryParams is an ordered multimap of decoded query-string parameters.
type QueryParams struct {
	storage *fieldStorage[string]
}

// ParseQueryParams decodes a raw query string by splitting on "&" and then
// on the first "=" per pair. A pair with no "=" is bound to an empty value.
func ParseQueryParams(queryString string) *QueryParams {
	q := &QueryParams{storage: newFieldStorage[string]()}
	for _, pair := range strings.Split(queryString, "&") {
		if pair == "" {
			continue
		}
		name, value, _ := strings.Cut(pair, "=")
		q.storage.add(queryUnescape(name), queryUnescape(value))
	}
	return q
}

// Get returns the first value for the given field, or the optional default.
func (q *QueryParams) Get(name string, def ...string) string {
	if v, ok := q.storage.get(name); ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// GetList returns all values for the given field in insertion order.
func (q *QueryParams) GetList(name string) []string {
	return q.storage.getList(name)
}

// Has reports whether the field is present.
func (q *QueryParams) Has(name string) bool {
	return q.storage.has(name)
}

// Fields returns the distinct field names in first-appearance order.
func (q *QueryParams) Fields() []string {
	return q.storage.fields()
}

// Len returns the number of distinct fields.
func (q *QueryParams) Len() int {
	return q.storage.len()
}

func (q *QueryParams) String() string {
	var b strings.Builder
	for _, name := range q.storage.fields() {
		for _, value := range q.storage.getList(name) {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(name)
			b.WriteByte('=')
			b.WriteString(value)
		}
	}
	return b.String()
}

func queryUnescape(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}

// Request is an incoming request constructed from raw bytes. It is passed as
// the first argument to all route handlers and exclusively owned by the
// connection that produced it.
type Request struct {
	// Conn is the socket used to send and receive data on the connection.
	Conn net.Conn

	// ClientAddress is the peer address on the other end of the connection.
	ClientAddress net.Addr

	// Method is the request method, e.g. "GET" or "POST".
	Method string

	// Path is the decoded request path without the query string.
	Path string

	// QueryParams holds the decoded query parameters.
	QueryParams *QueryParams

	// HTTPVersion is the protocol version string, e.g. "HTTP/1.1".
	HTTPVersion string

	// Headers holds the request headers.
	Headers *Headers

	// PathParams holds parameters bound by the matched route template.
	PathParams map[string]string

	// FormMethods lists the methods for which body decoding is performed.
	FormMethods []string

	// Debug enables decode diagnostics.
	Debug bool

	raw  []byte
	body []byte

	cookies  map[string]string
	formData *FormData
	formErr  error
	formDone bool
}

// Raw returns the raw bytes received from the client. Should not be modified.
func (r *Request) Raw() []byte {
	return r.raw
}

// Body returns the request body bytes.
func (r *Request) Body() []byte {
	return r.body
}

// SetBody replaces the request body once the declared Content-Length has
// been satisfied by the connection loop.
func (r *Request) SetBody(body []byte) {
	r.body = body
	r.formData = nil
	r.formErr = nil
	r.formDone = false
}

// ContentLength returns the declared Content-Length, or 0 if absent or
// unparseable.
func (r *Request) ContentLength() int {
	n := 0
	for _, c := range r.Headers.Get("Content-Length", "0") {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

// Cookies returns the cookies sent with the request, parsed lazily from the
// Cookie header. An absent header yields an empty map.
func (r *Request) Cookies() map[string]string {
	if r.cookies == nil {
		r.cookies = parseCookies(r.Headers.Get("Cookie"))
	}
	return r.cookies
}

func parseCookies(cookieHeader string) map[string]string {
	cookies := make(map[string]string)
	if cookieHeader == "" {
		return cookies
	}
	for _, entry := range strings.Split(cookieHeader, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(entry), "=")
		if name == "" {
			continue
		}
		cookies[name] = strings.Trim(value, `"`)
	}
	return cookies
}

// FormData returns the decoded form fields and files for body-carrying
// methods, computed once on first access and cached. Methods outside
// FormMethods yield (nil, nil).
func (r *Request) FormData() (*FormData, error) {
	if !r.formDone {
		if !r.methodAllowsBody() {
			r.formDone = true
			return nil, nil
		}
		r.formData, r.formErr = NewFormData(r.body, r.Headers, r.Debug)
		r.formDone = true
	}
	return r.formData, r.formErr
}

// Bind decodes the request body into v, dispatching on the Content-Type
// directive (JSON by default, protobuf for application/x-protobuf). Only
// body-carrying methods can be bound.
func (r *Request) Bind(v any) error {
	if len(r.body) == 0 || !r.methodAllowsBody() {
		return ErrNoBody
	}
	c, err := codec.ForContentType(r.Headers.GetDirective("Content-Type", codec.JSON{}.ContentType()))
	if err != nil {
		c = codec.JSON{}
	}
	return c.Unmarshal(r.body, v)
}

func (r *Request) methodAllowsBody() bool {
	methods := r.FormMethods
	if methods == nil {
		methods = DefaultFormMethods
	}
	for _, m := range methods {
		if m == r.Method {
			return true
		}
	}
	return false
}

// DefaultFormMethods is the body-decoding trigger policy: one consistent set
// for both form-data and Bind.
var DefaultFormMethods = []string{"POST", "PUT", "PATCH", "DELETE"}
