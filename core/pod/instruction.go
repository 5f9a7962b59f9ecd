package pod

import (
	"errors"
	"fmt"
)

// InstructionHeaderSize is the discriminator byte plus seven bytes of padding
// that precede every instruction body.
const InstructionHeaderSize = 8

// ErrEmptyInstruction marks instruction data shorter than the header.
var ErrEmptyInstruction = errors.New("pod: instruction data shorter than header")

// EncodeInstruction prefixes the encoded body with the 8-byte header.
func EncodeInstruction(disc uint8, body interface{}) ([]byte, error) {
	out := make([]byte, InstructionHeaderSize)
	out[0] = disc
	if body == nil {
		return out, nil
	}
	encoded, err := Encode(body)
	if err != nil {
		return nil, err
	}
	return append(out, encoded...), nil
}

// SplitInstruction returns the discriminator and the body following the header.
func SplitInstruction(data []byte) (uint8, []byte, error) {
	if len(data) < InstructionHeaderSize {
		return 0, nil, ErrEmptyInstruction
	}
	for _, b := range data[1:InstructionHeaderSize] {
		if b != 0 {
			return 0, nil, fmt.Errorf("pod: non-zero instruction padding")
		}
	}
	return data[0], data[InstructionHeaderSize:], nil
}
