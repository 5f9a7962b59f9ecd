package crypto

import (
	"crypto/sha256"

	"github.com/btcsuite/btcutil"
	"golang.org/x/crypto/ripemd160"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

// Sha256 hashes the concatenation of parts.
func Sha256(parts ...[]byte) types.H256 {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out types.H256
	copy(out[:], h.Sum(nil))
	return out
}

// Sha256Pair hashes left || right, the Merkle node combiner.
func Sha256Pair(left, right types.H256) types.H256 {
	return Sha256(left[:], right[:])
}

// DoubleSha256 is the Bitcoin-style SHA256(SHA256(data)).
func DoubleSha256(data []byte) types.H256 {
	first := sha256.Sum256(data)
	return types.H256(sha256.Sum256(first[:]))
}

// Ripemd160 returns the RIPEMD-160 digest of data.
func Ripemd160(data []byte) types.H160 {
	h := ripemd160.New()
	h.Write(data)
	return types.BytesToH160(h.Sum(nil))
}

// Hash160 is RIPEMD160(SHA256(data)), used for P2PKH and P2SH address hashes.
func Hash160(data []byte) types.H160 {
	return types.BytesToH160(btcutil.Hash160(data))
}
