// Package pod encodes the fixed-layout account and instruction records shared by
// the bridge programs. Records are packed little-endian with explicit padding
// fields, so the encoded length of a record type never varies.
package pod

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"sync"

	bin "github.com/gagliardetto/binary"
)

// ErrShortBuffer is returned when a record is decoded from fewer bytes than its
// fixed size.
var ErrShortBuffer = errors.New("pod: buffer too short")

var sizeCache sync.Map // reflect.Type -> int

// Encode serializes v in packed little-endian form.
func Encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBinEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("pod: encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// MustEncode is Encode for record types that cannot fail to encode.
func MustEncode(v interface{}) []byte {
	out, err := Encode(v)
	if err != nil {
		panic(err)
	}
	return out
}

// Decode fills v (a pointer) from the leading bytes of data.
func Decode(data []byte, v interface{}) error {
	size := Size(v)
	if len(data) < size {
		return fmt.Errorf("%w: %T needs %d bytes, have %d", ErrShortBuffer, v, size, len(data))
	}
	if err := bin.NewBinDecoder(data[:size]).Decode(v); err != nil {
		return fmt.Errorf("pod: decode %T: %w", v, err)
	}
	return nil
}

// Size reports the encoded length of the record type of v. v may be a value or
// a pointer.
func Size(v interface{}) int {
	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if cached, ok := sizeCache.Load(rt); ok {
		return cached.(int)
	}
	zero := reflect.New(rt).Interface()
	encoded := MustEncode(zero)
	sizeCache.Store(rt, len(encoded))
	return len(encoded)
}

// EncodeBorsh serializes v with borsh rules (length-prefixed vectors).
func EncodeBorsh(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := bin.NewBorshEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("pod: borsh encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}

// DecodeBorsh fills v (a pointer) from borsh-encoded data.
func DecodeBorsh(data []byte, v interface{}) error {
	if err := bin.NewBorshDecoder(data).Decode(v); err != nil {
		return fmt.Errorf("pod: borsh decode %T: %w", v, err)
	}
	return nil
}
