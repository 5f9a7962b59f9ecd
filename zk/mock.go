package zk

import (
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

// MockVerifier accepts a proof whose first 65 bytes are a recoverable secp256k1
// signature over the public-input digest by a key whose compressed encoding
// hashes (SHA-256) to the program key. The remaining proof bytes must be zero.
type MockVerifier struct{}

// VerifyCompactZKP implements Verifier.
func (MockVerifier) VerifyCompactZKP(proof *CompactProof, key ProgramKey, publicInputs types.H256) bool {
	if proof == nil {
		return false
	}
	for _, b := range proof[crypto.SignatureSize:] {
		if b != 0 {
			return false
		}
	}
	signer, err := crypto.RecoverCompressed(publicInputs, proof[:crypto.SignatureSize])
	if err != nil {
		return false
	}
	return crypto.Sha256(signer[:]) == types.H256(key)
}

// MockProver signs public-input digests for MockVerifier.
type MockProver struct {
	key *crypto.PrivateKey
}

// NewMockProver creates a prover with a fresh key.
func NewMockProver() (*MockProver, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	return &MockProver{key: key}, nil
}

// NewMockProverFromKey wraps an existing key.
func NewMockProverFromKey(key *crypto.PrivateKey) *MockProver {
	return &MockProver{key: key}
}

// ProgramKey is the key MockVerifier expects for proofs from this prover.
func (p *MockProver) ProgramKey() ProgramKey {
	compressed := p.key.PubKey().Compressed()
	return ProgramKey(crypto.Sha256(compressed[:]))
}

// Prove returns a compact proof for the digest.
func (p *MockProver) Prove(publicInputs types.H256) (CompactProof, error) {
	var proof CompactProof
	sig, err := p.key.Sign(publicInputs)
	if err != nil {
		return proof, err
	}
	copy(proof[:], sig)
	return proof, nil
}

// MustProve is Prove for tests.
func (p *MockProver) MustProve(publicInputs types.H256) CompactProof {
	proof, err := p.Prove(publicInputs)
	if err != nil {
		panic(err)
	}
	return proof
}
