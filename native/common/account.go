package common

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
)

// Load decodes a fixed-layout record from the start of the account data.
func Load(acc *host.AccountInfo, v interface{}) error {
	if err := pod.Decode(acc.Data(), v); err != nil {
		return fmt.Errorf("%w: %v", host.ErrInvalidInstructionData, err)
	}
	return nil
}

// Store encodes v over the start of the account data.
func Store(acc *host.AccountInfo, v interface{}) error {
	encoded, err := pod.Encode(v)
	if err != nil {
		return err
	}
	if len(acc.Data()) < len(encoded) {
		return fmt.Errorf("%w: account %s holds %d bytes, record needs %d", host.ErrInvalidRealloc, acc.Key, len(acc.Data()), len(encoded))
	}
	copy(acc.Data(), encoded)
	return nil
}

// DecodeBody splits the instruction header and decodes the fixed-size body.
// The remainder after the body is returned for variable-length payloads.
func DecodeBody(body []byte, v interface{}) ([]byte, error) {
	if err := pod.Decode(body, v); err != nil {
		return nil, fmt.Errorf("%w: %v", host.ErrInvalidInstructionData, err)
	}
	return body[pod.Size(v):], nil
}

// Split returns the discriminator and body of instruction data.
func Split(data []byte) (uint8, []byte, error) {
	disc, body, err := pod.SplitInstruction(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", host.ErrInvalidInstructionData, err)
	}
	return disc, body, nil
}

// Instruction builds an instruction with the 8-byte header followed by body and
// an optional trailing payload.
func Instruction(program solana.PublicKey, disc uint8, body interface{}, trailing []byte, accounts ...*solana.AccountMeta) (solana.Instruction, error) {
	data, err := pod.EncodeInstruction(disc, body)
	if err != nil {
		return nil, err
	}
	data = append(data, trailing...)
	return solana.NewInstruction(program, accounts, data), nil
}

// Canonical finds the canonical program-derived address for seeds.
func Canonical(program solana.PublicKey, seeds ...[]byte) (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		panic(fmt.Sprintf("common: no program address for %s: %v", program, err))
	}
	return addr, bump
}

// SignerSeeds appends the bump to seeds.
func SignerSeeds(bump uint8, seeds ...[]byte) [][]byte {
	out := make([][]byte, 0, len(seeds)+1)
	out = append(out, seeds...)
	return append(out, []byte{bump})
}

// IsCanonical reports whether key is the lowest-bump address for seeds and
// returns the bump.
func IsCanonical(key, program solana.PublicKey, seeds ...[]byte) (uint8, bool) {
	addr, bump := Canonical(program, seeds...)
	return bump, addr.Equals(key)
}

// Writable marks a key writable.
func Writable(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, true, false)
}

// Readonly marks a key read-only.
func Readonly(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, false, false)
}

// Signer marks a key as a read-only signer.
func Signer(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, false, true)
}

// WritableSigner marks a key as a writable signer.
func WritableSigner(key solana.PublicKey) *solana.AccountMeta {
	return solana.NewAccountMeta(key, true, true)
}

// Coverage tracks which bytes of a buffer body have been written. One bit per
// body byte, stored after the body.
type Coverage []byte

// CoverageSize is the bitmap length for n body bytes.
func CoverageSize(n int) int { return (n + 7) / 8 }

// Mark records [offset, offset+length) as written.
func (c Coverage) Mark(offset, length int) {
	for i := offset; i < offset+length; i++ {
		c[i/8] |= 1 << uint(i%8)
	}
}

// Complete reports whether the first n bytes are all written.
func (c Coverage) Complete(n int) bool {
	full := n / 8
	for i := 0; i < full; i++ {
		if c[i] != 0xff {
			return false
		}
	}
	if rem := n % 8; rem != 0 {
		mask := byte(1<<uint(rem)) - 1
		return c[full]&mask == mask
	}
	return true
}

// Reset clears the bitmap.
func (c Coverage) Reset() {
	for i := range c {
		c[i] = 0
	}
}

// EnsureLen grows acc to at least size bytes, topping up rent from payer.
// tooSmall is returned when the growth exceeds what this instruction may
// still reallocate.
func EnsureLen(ctx *host.Context, payer, acc *host.AccountInfo, size int, tooSmall error) error {
	if len(acc.Data()) >= size {
		return nil
	}
	if reach := ctx.ReallocGrowth(acc); size > reach {
		return fmt.Errorf("%w: need %d bytes, can reach %d", tooSmall, size, reach)
	}
	if need := host.MinimumBalance(size); acc.Lamports() < need {
		if err := ctx.Transfer(payer, acc, need-acc.Lamports()); err != nil {
			return err
		}
	}
	return ctx.Realloc(acc, size)
}
