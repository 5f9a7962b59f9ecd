package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

func leafAt(i int) types.H256 {
	return crypto.Sha256([]byte{byte(i), byte(i >> 8), 0xaa})
}

func TestZeroHashesChain(t *testing.T) {
	require.Equal(t, types.H256{}, ZeroHash(0))
	for h := 1; h <= 8; h++ {
		prev := ZeroHash(h - 1)
		require.Equal(t, crypto.Sha256Pair(prev, prev), ZeroHash(h))
	}
}

func TestEmptyFrontierRoot(t *testing.T) {
	tree, err := NewTree(32, nil)
	require.NoError(t, err)
	require.Equal(t, ZeroHash(32), tree.Root())
}

func TestAppendMatchesFreshTree(t *testing.T) {
	for _, height := range []int{3, 8, 32} {
		siblings := NewFrontier(height)
		var leaves []types.H256
		count := 37
		if height == 3 {
			count = 8
		}
		for i := 0; i < count; i++ {
			leaf := leafAt(i)
			leaves = append(leaves, leaf)
			root, err := Append(siblings, uint64(i), leaf)
			require.NoError(t, err)

			fresh, err := NewTree(height, leaves)
			require.NoError(t, err)
			require.Equal(t, fresh.Root(), root, "height %d leaf %d", height, i)
		}

		full, err := NewTree(height, leaves)
		require.NoError(t, err)
		for i := range leaves {
			path, err := full.Proof(i)
			require.NoError(t, err)
			require.Equal(t, full.Root(), ComputeRoot(leaves[i], uint64(i), path))
			require.NoError(t, VerifyProof(full.Root(), leaves[i], uint64(i), path, height))
		}
	}
}

func TestAppendRejectsFullTree(t *testing.T) {
	siblings := NewFrontier(2)
	for i := 0; i < 4; i++ {
		_, err := Append(siblings, uint64(i), leafAt(i))
		require.NoError(t, err)
	}
	_, err := Append(siblings, 4, leafAt(4))
	require.ErrorIs(t, err, ErrTreeFull)
}

func TestVerifyProofRejectsWrongLeaf(t *testing.T) {
	leaves := []types.H256{leafAt(0), leafAt(1), leafAt(2)}
	tree, err := NewTree(4, leaves)
	require.NoError(t, err)
	path, err := tree.Proof(2)
	require.NoError(t, err)
	require.Error(t, VerifyProof(tree.Root(), leafAt(9), 2, path, 4))
	require.ErrorIs(t, VerifyProof(tree.Root(), leaves[2], 2, path[:3], 4), ErrProofLength)
}
