package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// H256 is a 32-byte digest.
type H256 [32]byte

// H160 is a 20-byte digest.
type H160 [20]byte

// ZeroH256 is the all-zero digest.
var ZeroH256 H256

// BytesToH256 copies b into a digest, left-padding short inputs with zeros.
func BytesToH256(b []byte) H256 {
	var h H256
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}

// BytesToH160 copies b into a 20-byte digest, left-padding short inputs.
func BytesToH160(b []byte) H160 {
	var h H160
	if len(b) > len(h) {
		b = b[len(b)-len(h):]
	}
	copy(h[len(h)-len(b):], b)
	return h
}

// Bytes returns a copy of the digest bytes.
func (h H256) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// IsZero reports whether every byte is zero.
func (h H256) IsZero() bool { return h == ZeroH256 }

// Hex returns the 0x-prefixed hex encoding.
func (h H256) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h H256) String() string { return h.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (h H256) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *H256) UnmarshalText(text []byte) error {
	parsed, err := HexToH256(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// Bytes returns a copy of the digest bytes.
func (h H160) Bytes() []byte {
	out := make([]byte, len(h))
	copy(out, h[:])
	return out
}

// Hex returns the 0x-prefixed hex encoding.
func (h H160) Hex() string { return "0x" + hex.EncodeToString(h[:]) }

func (h H160) String() string { return h.Hex() }

// MarshalText implements encoding.TextMarshaler.
func (h H160) MarshalText() ([]byte, error) { return []byte(h.Hex()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *H160) UnmarshalText(text []byte) error {
	raw, err := decodeHex(string(text), len(h))
	if err != nil {
		return err
	}
	copy(h[:], raw)
	return nil
}

// HexToH256 parses a 32-byte hex string with or without the 0x prefix.
func HexToH256(s string) (H256, error) {
	var h H256
	raw, err := decodeHex(s, len(h))
	if err != nil {
		return h, err
	}
	copy(h[:], raw)
	return h, nil
}

// MustHexToH256 is HexToH256 that panics on malformed input. Intended for
// constants and tests.
func MustHexToH256(s string) H256 {
	h, err := HexToH256(s)
	if err != nil {
		panic(err)
	}
	return h
}

func decodeHex(s string, size int) ([]byte, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return nil, errors.New("types: empty hex string")
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return nil, fmt.Errorf("types: invalid hex: %w", err)
	}
	if len(raw) != size {
		return nil, fmt.Errorf("types: expected %d bytes, got %d", size, len(raw))
	}
	return raw, nil
}
