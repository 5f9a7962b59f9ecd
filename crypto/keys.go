package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

const (
	// CompressedPubKeySize is the SEC1 compressed secp256k1 public key length.
	CompressedPubKeySize = 33
	// SignatureSize is r || s || v.
	SignatureSize = 65
)

// CompressedPubKey is a SEC1-compressed secp256k1 public key.
type CompressedPubKey [CompressedPubKeySize]byte

var ErrInvalidSignature = errors.New("crypto: invalid recoverable signature")

// --- Key Management ---

type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Sign produces a 65-byte recoverable signature over a 32-byte digest.
func (k *PrivateKey) Sign(digest types.H256) ([]byte, error) {
	return crypto.Sign(digest[:], k.PrivateKey)
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Compressed returns the SEC1 compressed encoding of the key.
func (k *PublicKey) Compressed() CompressedPubKey {
	var out CompressedPubKey
	copy(out[:], crypto.CompressPubkey(k.PublicKey))
	return out
}

// Hash160 is the P2PKH address hash of the compressed key.
func (k *PublicKey) Hash160() types.H160 {
	compressed := k.Compressed()
	return Hash160(compressed[:])
}

// ParseCompressedPubKey validates that b is a point on secp256k1.
func ParseCompressedPubKey(b []byte) (*PublicKey, error) {
	if len(b) != CompressedPubKeySize {
		return nil, fmt.Errorf("crypto: compressed key must be %d bytes, got %d", CompressedPubKeySize, len(b))
	}
	if b[0] != 0x02 && b[0] != 0x03 {
		return nil, fmt.Errorf("crypto: invalid compressed key prefix 0x%02x", b[0])
	}
	pub, err := crypto.DecompressPubkey(b)
	if err != nil {
		return nil, fmt.Errorf("crypto: invalid compressed key: %w", err)
	}
	return &PublicKey{pub}, nil
}

// RecoverCompressed recovers the signer of digest from a 65-byte r || s || v
// signature and returns its compressed encoding.
func RecoverCompressed(digest types.H256, sig []byte) (CompressedPubKey, error) {
	var out CompressedPubKey
	if len(sig) != SignatureSize {
		return out, ErrInvalidSignature
	}
	normalized := make([]byte, SignatureSize)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}
	if normalized[64] > 1 {
		return out, ErrInvalidSignature
	}
	pub, err := crypto.SigToPub(digest[:], normalized)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	copy(out[:], crypto.CompressPubkey(pub))
	return out, nil
}
