package http

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
)

// File is a single uploaded file from a multipart/form-data body.
type File struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Size returns the length of the file content.
func (f File) Size() int {
	return len(f.Content)
}

// Files is an ordered multimap of field name -> uploaded files.
type Files struct {
	storage *fieldStorage[File]
}

// Get returns the first file for the given field.
func (f *Files) Get(name string) (File, bool) {
	return f.storage.get(name)
}

// GetList returns all files for the given field in insertion order.
func (f *Files) GetList(name string) []File {
	return f.storage.getList(name)
}

// Fields returns the distinct field names in first-appearance order.
func (f *Files) Fields() []string {
	return f.storage.fields()
}

// Len returns the number of distinct fields.
func (f *Files) Len() int {
	return f.storage.len()
}

// FormData holds decoded form fields and uploaded files. It supports
// application/x-www-form-urlencoded, multipart/form-data and text/plain
// content types; any other content type leaves the store empty.
type FormData struct {
	ContentType string
	Files       *Files

	storage *fieldStorage[string]
}

// NewFormData decodes body according to the Content-Type directive of
// headers, honoring the declared Content-Length. An unsupported content
// type is accepted but emits a diagnostic when debug is set.
func NewFormData(body []byte, headers *Headers, debug bool) (*FormData, error) {
	fd := &FormData{
		ContentType: headers.GetDirective("Content-Type"),
		Files:       &Files{storage: newFieldStorage[File]()},
		storage:     newFieldStorage[string](),
	}

	contentLength := 0
	for _, c := range headers.Get("Content-Length", "0") {
		if c < '0' || c > '9' {
			contentLength = 0
			break
		}
		contentLength = contentLength*10 + int(c-'0')
	}
	if contentLength > len(body) || contentLength == 0 {
		contentLength = len(body)
	}
	data := body[:contentLength]

	switch fd.ContentType {
	case "application/x-www-form-urlencoded":
		fd.parseURLEncoded(data)
	case "multipart/form-data":
		boundary := headers.GetParameter("Content-Type", "boundary")
		if boundary == "" {
			return nil, fmt.Errorf("%w: missing multipart boundary", ErrMalformedForm)
		}
		if err := fd.parseMultipart(data, boundary); err != nil {
			return nil, err
		}
	case "text/plain":
		if err := fd.parseTextPlain(data); err != nil {
			return nil, err
		}
	default:
		if debug {
			log.Printf("WARNING: unsupported form Content-Type: %q "+
				"(only application/x-www-form-urlencoded, multipart/form-data "+
				"and text/plain are decoded)", fd.ContentType)
		}
	}
	return fd, nil
}

func (fd *FormData) parseURLEncoded(data []byte) {
	decoded := strings.Trim(string(data), "&")
	if decoded == "" {
		return
	}
	for _, pair := range strings.Split(decoded, "&") {
		name, value, _ := strings.Cut(pair, "=")
		fd.storage.add(queryUnescape(name), queryUnescape(value))
	}
}

func (fd *FormData) parseMultipart(data []byte, boundary string) error {
	blocks := bytes.Split(data, []byte("--"+boundary))
	// The first block is the preamble and the last one the "--\r\n"
	// terminator; fewer than two blocks means the terminal boundary
	// never arrived.
	if len(blocks) < 2 {
		return fmt.Errorf("%w: missing terminal multipart boundary", ErrMalformedForm)
	}

	for _, block := range blocks[1 : len(blocks)-1] {
		headerBytes, content, found := bytes.Cut(block, headerDelimiter)
		if !found {
			return fmt.Errorf("%w: multipart part without header block", ErrMalformedForm)
		}
		partHeaders, err := ParseHeaderBlock(string(headerBytes))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedForm, err)
		}

		name := partHeaders.GetParameter("Content-Disposition", "name")
		filename, hasFilename := lookupParameter(partHeaders, "Content-Disposition", "filename")
		contentType := partHeaders.GetDirective("Content-Type", "text/plain")
		charset := partHeaders.GetParameter("Content-Type", "charset", "utf-8")

		content = bytes.TrimSuffix(content, []byte("\r\n"))

		if hasFilename {
			fd.Files.storage.add(name, File{
				Filename:    filename,
				ContentType: contentType,
				Content:     append([]byte(nil), content...),
			})
		} else {
			fd.storage.add(name, decodeCharset(content, charset))
		}
	}
	return nil
}

func (fd *FormData) parseTextPlain(data []byte) error {
	lines := strings.Split(string(data), "\r\n")
	for _, line := range lines[:len(lines)-1] {
		name, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("%w: text/plain line without '='", ErrMalformedForm)
		}
		fd.storage.add(name, value)
	}
	return nil
}

// Get returns the first value for the given field, or the optional default.
func (fd *FormData) Get(name string, def ...string) string {
	if v, ok := fd.storage.get(name); ok {
		return v
	}
	if len(def) > 0 {
		return def[0]
	}
	return ""
}

// GetList returns all values for the given field in insertion order.
func (fd *FormData) GetList(name string) []string {
	return fd.storage.getList(name)
}

// Has reports whether the field is present.
func (fd *FormData) Has(name string) bool {
	return fd.storage.has(name)
}

// Fields returns the distinct field names in first-appearance order.
func (fd *FormData) Fields() []string {
	return fd.storage.fields()
}

// Len returns the number of distinct fields.
func (fd *FormData) Len() int {
	return fd.storage.len()
}

// lookupParameter distinguishes an absent parameter from an empty one.
func lookupParameter(h *Headers, name, parameter string) (string, bool) {
	value, ok := h.Lookup(name)
	if !ok {
		return "", false
	}
	for _, segment := range strings.Split(value, ";") {
		key, v, found := strings.Cut(strings.TrimSpace(segment), "=")
		if !found || strings.TrimSpace(key) != parameter {
			continue
		}
		return strings.Trim(v, `" `), true
	}
	return "", false
}

// decodeCharset decodes text field bytes with the part's charset,
// defaulting to UTF-8 and falling back to the raw bytes on any failure.
func decodeCharset(b []byte, charset string) string {
	if charset == "" || strings.EqualFold(charset, "utf-8") {
		return string(b)
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return string(b)
	}
	decoded, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(decoded)
}
