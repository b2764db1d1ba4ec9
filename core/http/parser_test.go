package http

import (
	"errors"
	"testing"
)

func TestNewRequestParsesStartLineAndHeaders(t *testing.T) {
	raw := []byte("GET /search?q=hello%20world&page=2&flag HTTP/1.1\r\n" +
		"Host: device.local\r\n" +
		"User-Agent: test\r\n" +
		"\r\n")

	req, err := NewRequest(nil, nil, raw)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}

	if req.Method != "GET" {
		t.Errorf("Method = %q", req.Method)
	}
	if req.Path != "/search" {
		t.Errorf("Path = %q", req.Path)
	}
	if req.HTTPVersion != "HTTP/1.1" {
		t.Errorf("HTTPVersion = %q", req.HTTPVersion)
	}
	if got := req.QueryParams.Get("q"); got != "hello world" {
		t.Errorf("query q = %q, want decoded %q", got, "hello world")
	}
	if got := req.QueryParams.Get("page"); got != "2" {
		t.Errorf("query page = %q", got)
	}
	if !req.QueryParams.Has("flag") || req.QueryParams.Get("flag") != "" {
		t.Errorf("bare query flag not bound to empty value")
	}
	if req.Headers.Get("host") != "device.local" {
		t.Errorf("Host header = %q", req.Headers.Get("host"))
	}
}

func TestNewRequestDecodesPath(t *testing.T) {
	raw := []byte("GET /with%20space HTTP/1.1\r\n\r\n")
	req, err := NewRequest(nil, nil, raw)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	if req.Path != "/with space" {
		t.Errorf("Path = %q, want %q", req.Path, "/with space")
	}
}

func TestNewRequestBodyAfterDelimiter(t *testing.T) {
	raw := []byte("POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello")
	req, err := NewRequest(nil, nil, raw)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	if string(req.Body()) != "hello" {
		t.Errorf("Body = %q", req.Body())
	}
	if req.ContentLength() != 5 {
		t.Errorf("ContentLength = %d", req.ContentLength())
	}
}

func TestNewRequestMalformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no delimiter", "GET / HTTP/1.1\r\nHost: x\r\n"},
		{"two tokens", "GET /path\r\n\r\n"},
		{"four tokens", "GET /path HTTP/1.1 extra\r\n\r\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRequest(nil, nil, []byte(tt.raw))
			if err == nil {
				t.Fatalf("expected error for %q", tt.raw)
			}
			var reqErr *RequestError
			if !errors.As(err, &reqErr) {
				t.Fatalf("error %T is not a *RequestError", err)
			}
			if !errors.Is(err, ErrMalformedRequest) && !errors.Is(err, ErrMalformedHeaders) {
				t.Errorf("error %v does not unwrap to a malformed sentinel", err)
			}
		})
	}
}

func TestRequestCookies(t *testing.T) {
	raw := []byte("GET / HTTP/1.1\r\nCookie: session=abc; theme=\"dark\" ; broken\r\n\r\n")
	req, err := NewRequest(nil, nil, raw)
	if err != nil {
		t.Fatalf("NewRequest error: %v", err)
	}
	cookies := req.Cookies()
	if cookies["session"] != "abc" {
		t.Errorf("session cookie = %q", cookies["session"])
	}
	if cookies["theme"] != "dark" {
		t.Errorf("theme cookie = %q, want unquoted", cookies["theme"])
	}
	if _, ok := cookies["broken"]; !ok {
		t.Errorf("value-less cookie dropped")
	}
}
