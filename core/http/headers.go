package http

import (
	"strings"
)

// Field is a single header name/value pair.
type Field struct {
	Name  string
	Value string
}

// Headers is an ordered HTTP header multimap with case-insensitive name
// lookup. Insertion order is preserved, multiple values per name are allowed
// (e.g. repeated Set-Cookie). The stored casing is whatever was first
// supplied; it is used only for round-tripping, matching is always
// case-insensitive.
type Headers struct {
	fields []headerField
}

type headerField struct {
	key   string // lowercased name
	name  string // casing as supplied
	value string
}

// NewHeaders creates an empty header multimap.
func NewHeaders() *Headers {
	return &Headers{}
}

// HeadersFrom creates a header multimap from a plain map.
func HeadersFrom(m map[string]string) *Headers {
	h := NewHeaders()
	for name, value := range m {
		h.Add(name, value)
	}
	return h
}

// ParseHeaderBlock parses a CRLF-separated block of "Name: value" lines.
// A line without a ": " separator fails with ErrMalformedHeaders.
func ParseHeaderBlock(block string) (*Headers, error) {
	h := NewHeaders()
	for _, line := range strings.Split(strings.TrimSpace(block), "\r\n") {
		if line == "" {
			continue
		}
		idx := strings.Index(line, ": ")
		if idx < 0 {
			return nil, ErrMalformedHeaders
		}
		h.Add(line[:idx], line[idx+2:])
	}
	return h, nil
}

// Add appends a header, allowing multiple values for the same name.
func (h *Headers) Add(name, value string) {
	h.fields = append(h.fields, headerField{
		key:   strings.ToLower(name),
		name:  name,
		value: value,
	})
}

// Set replaces all values for the given name with a single value.
func (h *Headers) Set(name, value string) {
	h.Del(name)
	h.Add(name, value)
}

// SetDefault sets the value for the given name only if it is not present.
func (h *Headers) SetDefault(name, value string) {
	if !h.Has(name) {
		h.Add(name, value)
	}
}

// Del removes all values for the given name.
func (h *Headers) Del(name string) {
	key := strings.ToLower(name)
	kept := h.fields[:0]
	for _, f := range h.fields {
		if f.key != key {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}

// Has reports whether at least one value exists for the given name.
func (h *Headers) Has(name string) bool {
	key := strings.ToLower(name)
	for _, f := range h.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// Get returns the first value for the given name, or the optional default
// (empty string otherwise) if the name is absent.
func (h *Headers) Get(name string, def ...string) string {
	key := strings.ToLower(name)
	for _, f := range h.fields {
		if f.key == key {
			return f.value
		}
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// Lookup is the strict accessor: it returns the first value and reports
// whether the name was present.
func (h *Headers) Lookup(name string) (string, bool) {
	key := strings.ToLower(name)
	for _, f := range h.fields {
		if f.key == key {
			return f.value, true
		}
	}
	return "", false
}

// GetList returns all values for the given name in insertion order.
func (h *Headers) GetList(name string) []string {
	key := strings.ToLower(name)
	var values []string
	for _, f := range h.fields {
		if f.key == key {
			values = append(values, f.value)
		}
	}
	return values
}

// GetDirective returns the main value of a header before any ";"-separated
// parameters, trimmed of quotes and spaces.
//
//	h.GetDirective("Content-Type")  // "text/html" for "text/html; charset=utf-8"
func (h *Headers) GetDirective(name string, def ...string) string {
	value, ok := h.Lookup(name)
	if !ok {
		if len(def) > 0 {
			return def[0]
		}
		return ""
	}
	directive, _, _ := strings.Cut(value, ";")
	return strings.Trim(directive, `" `)
}

// GetParameter returns the value of a ";"-separated key=value parameter of
// the given header, unquoted, or the optional default if absent.
//
//	h.GetParameter("Content-Type", "charset")  // "utf-8"
func (h *Headers) GetParameter(name, parameter string, def ...string) string {
	value, ok := h.Lookup(name)
	if ok {
		for _, segment := range strings.Split(value, ";") {
			key, v, found := strings.Cut(strings.TrimSpace(segment), "=")
			if !found || strings.TrimSpace(key) != parameter {
				continue
			}
			return strings.Trim(v, `" `)
		}
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// Fields returns the distinct header names in first-appearance order, using
// the stored casing.
func (h *Headers) Fields() []string {
	seen := make(map[string]bool, len(h.fields))
	var names []string
	for _, f := range h.fields {
		if !seen[f.key] {
			seen[f.key] = true
			names = append(names, f.name)
		}
	}
	return names
}

// Items returns every name/value pair in insertion order.
func (h *Headers) Items() []Field {
	items := make([]Field, 0, len(h.fields))
	for _, f := range h.fields {
		items = append(items, Field{Name: f.name, Value: f.value})
	}
	return items
}

// Len returns the number of stored name/value pairs.
func (h *Headers) Len() int {
	return len(h.fields)
}

// Copy returns an independent copy of the headers.
func (h *Headers) Copy() *Headers {
	cp := &Headers{fields: make([]headerField, len(h.fields))}
	copy(cp.fields, h.fields)
	return cp
}

// Merge applies every header of other as a default: names already present
// on h keep their values.
func (h *Headers) Merge(other *Headers) {
	if other == nil {
		return
	}
	for _, f := range other.fields {
		if !h.Has(f.key) {
			h.fields = append(h.fields, f)
		}
	}
}

// Wire serializes the headers as "Name: value\r\n" lines in insertion order.
func (h *Headers) Wire() []byte {
	var buf []byte
	for _, f := range h.fields {
		buf = append(buf, f.name...)
		buf = append(buf, ": "...)
		buf = append(buf, f.value...)
		buf = append(buf, "\r\n"...)
	}
	return buf
}
