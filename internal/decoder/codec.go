package decoder

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Codec converts between the bytes carried by a characteristic and the text
// exchanged with the firmware.
type Codec interface {
	Name() string
	Encode(text string) []byte
	Decode(payload []byte) ([]byte, error)
}

// Base64Codec carries text as standard base64.
type Base64Codec struct{}

func (Base64Codec) Name() string { return "base64" }

func (Base64Codec) Encode(text string) []byte {
	return []byte(base64.StdEncoding.EncodeToString([]byte(text)))
}

func (Base64Codec) Decode(payload []byte) ([]byte, error) {
	trimmed := strings.TrimSpace(string(payload))
	out, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("base64: %w", err)
	}
	return out, nil
}

// RawCodec carries text bytes unchanged.
type RawCodec struct{}

func (RawCodec) Name() string { return "raw" }

func (RawCodec) Encode(text string) []byte { return []byte(text) }

func (RawCodec) Decode(payload []byte) ([]byte, error) {
	return payload, nil
}

// CodecByName resolves a configured transport encoding.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "base64":
		return Base64Codec{}, nil
	case "raw":
		return RawCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown transport encoding %q (must be base64 or raw)", name)
	}
}
