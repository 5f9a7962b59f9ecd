// Package zk holds the compact proof verifier capability consumed by the bridge
// programs. The programs only ever see (proof, program key, public-input digest);
// curve arithmetic stays behind the Verifier interface.
package zk

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

// ProofSize is the length of a serialized compact proof.
const ProofSize = 256

// CompactProof is an opaque 256-byte proof.
type CompactProof [ProofSize]byte

// ProgramKey identifies the proven program (the SP1 program vkey hash).
type ProgramKey [32]byte

// Verifier checks a compact proof for a program against a public-input digest.
type Verifier interface {
	VerifyCompactZKP(proof *CompactProof, key ProgramKey, publicInputs types.H256) bool
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(proof *CompactProof, key ProgramKey, publicInputs types.H256) bool

// VerifyCompactZKP implements Verifier.
func (f VerifierFunc) VerifyCompactZKP(proof *CompactProof, key ProgramKey, publicInputs types.H256) bool {
	return f(proof, key, publicInputs)
}

// ProgramKeys groups the program keys for each proven transition.
type ProgramKeys struct {
	BlockUpdate ProgramKey
	ReorgBlocks ProgramKey
	Withdrawal  ProgramKey
	ManualClaim ProgramKey
}

// ParseProgramKey decodes a hex program key. An empty string yields the zero key.
func ParseProgramKey(s string) (ProgramKey, error) {
	var key ProgramKey
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "0x")
	if trimmed == "" {
		return key, nil
	}
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return key, fmt.Errorf("zk: invalid program key: %w", err)
	}
	if len(raw) != len(key) {
		return key, errors.New("zk: program key must be 32 bytes")
	}
	copy(key[:], raw)
	return key, nil
}

func (k ProgramKey) String() string { return "0x" + hex.EncodeToString(k[:]) }
