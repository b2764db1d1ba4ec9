package codec

import (
	"fmt"

	"google.golang.org/protobuf/proto"
)

// Protobuf implements Protocol Buffers encoding/decoding
type Protobuf struct{}

func (Protobuf) Marshal(v interface{}) ([]byte, error) {
	msg, ok := v.(proto.Message)
	if !ok {
		return nil, fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	return proto.Marshal(msg)
}

func (Protobuf) Unmarshal(data []byte, v interface{}) error {
	msg, ok := v.(proto.Message)
	if !ok {
		return fmt.Errorf("value must implement proto.Message interface, got %T", v)
	}
	return proto.Unmarshal(data, msg)
}

func (Protobuf) Name() string {
	return "protobuf"
}

func (Protobuf) ContentType() string {
	return "application/x-protobuf"
}
