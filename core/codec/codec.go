// Package codec provides body encoders keyed by Content-Type, used by
// request binding and the JSON response flavor.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedContentType = errors.New("codec: unsupported content type")

// Codec encodes and decodes message bodies.
type Codec interface {
	// Marshal encodes a value to bytes
	Marshal(v interface{}) ([]byte, error)

	// Unmarshal decodes bytes to a value
	Unmarshal(data []byte, v interface{}) error

	// Name returns the codec name
	Name() string

	// ContentType returns the media type this codec handles
	ContentType() string
}

// ForContentType returns the codec for a request or response media type.
// The media type is expected to be bare (no parameters); callers strip
// parameters with Headers.GetDirective first.
func ForContentType(contentType string) (Codec, error) {
	switch contentType {
	case "application/json":
		return JSON{}, nil
	case "application/x-protobuf", "application/protobuf":
		return Protobuf{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}

// JSON implements JSON encoding/decoding
type JSON struct{}

func (JSON) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

func (JSON) Unmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

func (JSON) Name() string {
	return "json"
}

func (JSON) ContentType() string {
	return "application/json"
}
