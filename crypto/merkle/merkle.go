// Package merkle implements the fixed-height SHA-256 Merkle accumulators used by
// the bridge: precomputed zero hashes, append-only frontiers and proof checks.
package merkle

import (
	"errors"
	"fmt"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

// MaxHeight bounds the precomputed zero-hash table.
const MaxHeight = 64

var (
	ErrTreeFull     = errors.New("merkle: tree is full")
	ErrBadHeight    = errors.New("merkle: unsupported tree height")
	ErrProofLength  = errors.New("merkle: proof length does not match tree height")
	ErrIndexOverrun = errors.New("merkle: leaf index out of range")
)

var zeroHashes = func() [MaxHeight + 1]types.H256 {
	var table [MaxHeight + 1]types.H256
	for h := 1; h <= MaxHeight; h++ {
		table[h] = crypto.Sha256Pair(table[h-1], table[h-1])
	}
	return table
}()

// ZeroHash returns Z[h], the root of a subtree of 2^h zero leaves.
func ZeroHash(h int) types.H256 {
	if h < 0 || h > MaxHeight {
		panic(fmt.Sprintf("merkle: zero hash height %d out of range", h))
	}
	return zeroHashes[h]
}

// NewFrontier returns the sibling frontier of an empty tree of the given height.
func NewFrontier(height int) []types.H256 {
	siblings := make([]types.H256, height)
	ResetFrontier(siblings)
	return siblings
}

// ResetFrontier overwrites siblings with the empty-tree frontier.
func ResetFrontier(siblings []types.H256) {
	for h := range siblings {
		siblings[h] = zeroHashes[h]
	}
}

// Append inserts leaf at position index of the tree whose frontier is siblings
// (height = len(siblings)), updates the frontier in place and returns the new
// root. index must be the number of leaves already appended.
func Append(siblings []types.H256, index uint64, leaf types.H256) (types.H256, error) {
	height := len(siblings)
	if height == 0 || height > MaxHeight {
		return types.H256{}, ErrBadHeight
	}
	if height < 64 && index >= uint64(1)<<uint(height) {
		return types.H256{}, ErrTreeFull
	}
	current := leaf
	i := index
	mask := index ^ (index + 1)
	for h := 0; h < height; h++ {
		if i&1 == 0 {
			if mask&1 == 1 {
				siblings[h] = current
			}
			current = crypto.Sha256Pair(current, zeroHashes[h])
		} else {
			current = crypto.Sha256Pair(siblings[h], current)
			if mask&1 == 1 {
				siblings[h] = zeroHashes[h]
			}
		}
		i >>= 1
		mask >>= 1
	}
	return current, nil
}

// ComputeRoot folds leaf up the tree using the per-level sibling path.
func ComputeRoot(leaf types.H256, index uint64, path []types.H256) types.H256 {
	current := leaf
	for _, sibling := range path {
		if index&1 == 0 {
			current = crypto.Sha256Pair(current, sibling)
		} else {
			current = crypto.Sha256Pair(sibling, current)
		}
		index >>= 1
	}
	return current
}

// VerifyProof checks that leaf sits at index under root.
func VerifyProof(root, leaf types.H256, index uint64, path []types.H256, height int) error {
	if len(path) != height {
		return ErrProofLength
	}
	if height < 64 && index >= uint64(1)<<uint(height) {
		return ErrIndexOverrun
	}
	if ComputeRoot(leaf, index, path) != root {
		return errors.New("merkle: proof does not match root")
	}
	return nil
}
