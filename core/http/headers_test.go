package http

import (
	"strings"
	"testing"
)

func TestHeadersCaseInsensitive(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Type", "text/html")

	tests := []string{"Content-Type", "content-type", "CONTENT-TYPE", "CoNtEnT-tYpE"}
	for _, name := range tests {
		if got := h.Get(name); got != "text/html" {
			t.Errorf("Get(%q) = %q, want %q", name, got, "text/html")
		}
	}
	if h.Get("Missing", "fallback") != "fallback" {
		t.Errorf("Get default not applied")
	}
}

func TestHeadersOrdering(t *testing.T) {
	h := NewHeaders()
	h.Add("B", "1")
	h.Add("A", "2")
	h.Add("B", "3")

	fields := h.Fields()
	if len(fields) != 2 || fields[0] != "B" || fields[1] != "A" {
		t.Fatalf("Fields() = %v, want [B A]", fields)
	}
	if got := h.GetList("b"); len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Errorf("GetList(b) = %v, want [1 3]", got)
	}
}

func TestHeadersSetAndDel(t *testing.T) {
	h := NewHeaders()
	h.Add("X-Token", "a")
	h.Add("X-Token", "b")
	h.Set("x-token", "c")
	if got := h.GetList("X-Token"); len(got) != 1 || got[0] != "c" {
		t.Fatalf("after Set, GetList = %v, want [c]", got)
	}

	h.SetDefault("X-Token", "ignored")
	if h.Get("X-Token") != "c" {
		t.Errorf("SetDefault overwrote an existing value")
	}

	h.Del("X-TOKEN")
	if h.Has("X-Token") {
		t.Errorf("Del left the header in place")
	}
}

func TestHeadersDirectiveAndParameter(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Type", `multipart/form-data; boundary="XYZ"; charset=utf-8`)

	if got := h.GetDirective("Content-Type"); got != "multipart/form-data" {
		t.Errorf("GetDirective = %q", got)
	}
	if got := h.GetParameter("Content-Type", "boundary"); got != "XYZ" {
		t.Errorf("GetParameter(boundary) = %q, want unquoted XYZ", got)
	}
	if got := h.GetParameter("Content-Type", "charset"); got != "utf-8" {
		t.Errorf("GetParameter(charset) = %q", got)
	}
	if got := h.GetParameter("Content-Type", "missing", "def"); got != "def" {
		t.Errorf("GetParameter default = %q", got)
	}
}

func TestHeadersParameterExactKey(t *testing.T) {
	h := NewHeaders()
	h.Add("Content-Disposition", `form-data; name2="wrong"; names="also wrong"; name="right"`)

	if got := h.GetParameter("Content-Disposition", "name"); got != "right" {
		t.Errorf("GetParameter(name) = %q, want exact-key match %q", got, "right")
	}
	if got := h.GetParameter("Content-Disposition", "name2"); got != "wrong" {
		t.Errorf("GetParameter(name2) = %q", got)
	}
	if got := h.GetParameter("Content-Disposition", "nam", "absent"); got != "absent" {
		t.Errorf("GetParameter(nam) = %q, prefix of a key must not match", got)
	}
}

func TestHeadersMergeDefaults(t *testing.T) {
	h := NewHeaders()
	h.Add("Server", "custom")

	defaults := NewHeaders()
	defaults.Add("Server", "default")
	defaults.Add("X-Extra", "1")

	h.Merge(defaults)
	if h.Get("Server") != "custom" {
		t.Errorf("Merge overwrote an existing header")
	}
	if h.Get("X-Extra") != "1" {
		t.Errorf("Merge did not add the missing header")
	}
	h.Merge(nil) // must not panic
}

func TestParseHeaderBlock(t *testing.T) {
	h, err := ParseHeaderBlock("Host: example.com\r\nAccept: */*")
	if err != nil {
		t.Fatalf("ParseHeaderBlock error: %v", err)
	}
	if h.Get("Host") != "example.com" || h.Get("Accept") != "*/*" {
		t.Errorf("parsed headers wrong: %v", h.Items())
	}

	if _, err := ParseHeaderBlock("NoSeparatorHere"); err == nil {
		t.Errorf("expected error for a line without a separator")
	}
}

func TestHeadersWire(t *testing.T) {
	h := NewHeaders()
	h.Add("A", "1")
	h.Add("B", "2")
	want := "A: 1\r\nB: 2\r\n"
	if got := string(h.Wire()); got != want {
		t.Errorf("Wire() = %q, want %q", got, want)
	}
	if !strings.HasSuffix(want, "\r\n") {
		t.Fatal("sanity")
	}
}
