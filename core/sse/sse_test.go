package sse

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"

	"github.com/tinyserv/tiny-server/core/http"
)

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event *Event
		want  string
	}{
		{"data only", &Event{Data: "hello"}, "data: hello\n\n"},
		{"full", &Event{ID: "7", Event: "update", Data: "x", Retry: 1500},
			"id: 7\nevent: update\nretry: 1500\ndata: x\n\n"},
		{"custom fields", &Event{Data: "x", Fields: map[string]string{"b": "2", "a": "1"}},
			"data: x\na: 1\nb: 2\n\n"},
		{"empty", &Event{}, "\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(FormatEvent(tt.event)); got != tt.want {
				t.Errorf("FormatEvent = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseSendAndEvents(t *testing.T) {
	server, client := net.Pipe()
	resp := NewResponse()

	done := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(client)
		done <- string(b)
	}()

	if err := resp.Send(server, nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if !resp.RetainsConnection() {
		t.Errorf("SSE response must retain the connection")
	}
	if err := resp.SendEvent(&Event{Data: "tick"}); err != nil {
		t.Fatalf("SendEvent error: %v", err)
	}
	if err := resp.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	wire := <-done
	if !strings.HasPrefix(wire, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("status line: %q", wire)
	}
	if !strings.Contains(wire, "Content-Type: text/event-stream\r\n") {
		t.Errorf("content type: %q", wire)
	}
	if !strings.Contains(wire, "Cache-Control: no-cache\r\n") {
		t.Errorf("cache control: %q", wire)
	}
	if strings.Contains(wire, "Content-Length:") {
		t.Errorf("stream must not declare a length: %q", wire)
	}
	if !strings.Contains(wire, "data: tick\n\n") {
		t.Errorf("event missing: %q", wire)
	}
	if !strings.Contains(wire, "event: close\n\n") {
		t.Errorf("close sentinel missing: %q", wire)
	}
}

func TestResponseCloseIdempotent(t *testing.T) {
	server, client := net.Pipe()
	resp := NewResponse()

	done := make(chan string, 1)
	go func() {
		b, _ := io.ReadAll(client)
		done <- string(b)
	}()

	if err := resp.Send(server, nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	resp.Close()
	if err := resp.Close(); err != nil {
		t.Errorf("repeated Close = %v, want nil", err)
	}
	if !resp.Closed() {
		t.Errorf("Closed() = false after Close")
	}

	wire := <-done
	if strings.Count(wire, "event: close") != 1 {
		t.Errorf("close sentinel sent more than once: %q", wire)
	}
}

func TestResponseUseAfterClose(t *testing.T) {
	server, client := net.Pipe()
	go io.ReadAll(client)

	resp := NewResponse()
	if err := resp.Send(server, nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	resp.Close()

	if err := resp.SendEvent(&Event{Data: "late"}); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("SendEvent after close = %v, want ErrConnectionClosed", err)
	}

	silent := NewResponse()
	silent.FailSilently = true
	if err := silent.SendEvent(&Event{Data: "x"}); err != nil {
		t.Errorf("fail-silently SendEvent before start = %v, want nil", err)
	}
}

func TestResponseDoubleSend(t *testing.T) {
	server, client := net.Pipe()
	go io.ReadAll(client)

	resp := NewResponse()
	if err := resp.Send(server, nil); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if err := resp.Send(server, nil); !errors.Is(err, http.ErrAlreadySent) {
		t.Errorf("second Send = %v, want ErrAlreadySent", err)
	}
	resp.Close()
}
