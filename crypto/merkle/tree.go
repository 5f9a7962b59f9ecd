package merkle

import (
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

// Tree is a full in-memory Merkle tree over a leaf list, padded on the right
// with zero subtrees. Off-chain components use it to produce proofs for leaves
// appended through a frontier.
type Tree struct {
	height int
	leaves []types.H256
}

// NewTree builds a tree of the given height over leaves.
func NewTree(height int, leaves []types.H256) (*Tree, error) {
	if height <= 0 || height > MaxHeight {
		return nil, ErrBadHeight
	}
	if height < 64 && uint64(len(leaves)) > uint64(1)<<uint(height) {
		return nil, ErrTreeFull
	}
	copied := make([]types.H256, len(leaves))
	copy(copied, leaves)
	return &Tree{height: height, leaves: copied}, nil
}

// Len returns the number of leaves.
func (t *Tree) Len() int { return len(t.leaves) }

// Push appends a leaf.
func (t *Tree) Push(leaf types.H256) { t.leaves = append(t.leaves, leaf) }

// Root returns the tree root.
func (t *Tree) Root() types.H256 {
	level := t.leaves
	for h := 0; h < t.height; h++ {
		level = t.parents(level, h)
	}
	if len(level) == 0 {
		return zeroHashes[t.height]
	}
	return level[0]
}

// Proof returns the sibling path for the leaf at index.
func (t *Tree) Proof(index int) ([]types.H256, error) {
	if index < 0 || index >= len(t.leaves) {
		return nil, ErrIndexOverrun
	}
	path := make([]types.H256, 0, t.height)
	level := t.leaves
	pos := index
	for h := 0; h < t.height; h++ {
		sibling := pos ^ 1
		if sibling < len(level) {
			path = append(path, level[sibling])
		} else {
			path = append(path, zeroHashes[h])
		}
		level = t.parents(level, h)
		pos >>= 1
	}
	return path, nil
}

func (t *Tree) parents(level []types.H256, h int) []types.H256 {
	if len(level) == 0 {
		return level
	}
	out := make([]types.H256, 0, (len(level)+1)/2)
	for i := 0; i < len(level); i += 2 {
		right := zeroHashes[h]
		if i+1 < len(level) {
			right = level[i+1]
		}
		out = append(out, crypto.Sha256Pair(level[i], right))
	}
	return out
}
