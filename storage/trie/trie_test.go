package trie

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestCommitmentIsOrderIndependent(t *testing.T) {
	a := NewCommitment()
	b := NewCommitment()

	keys := [][]byte{
		crypto.Keccak256([]byte("alpha")),
		crypto.Keccak256([]byte("beta")),
		crypto.Keccak256([]byte("gamma")),
	}
	for i, key := range keys {
		require.NoError(t, a.Update(key, []byte{byte(i + 1)}))
	}
	for i := len(keys) - 1; i >= 0; i-- {
		require.NoError(t, b.Update(keys[i], []byte{byte(i + 1)}))
	}

	rootA, err := a.Root()
	require.NoError(t, err)
	rootB, err := b.Root()
	require.NoError(t, err)
	require.Equal(t, rootA, rootB)

	require.NoError(t, b.Update(keys[0], []byte{0x42}))
	rootC, err := b.Root()
	require.NoError(t, err)
	require.NotEqual(t, rootA, rootC)
}

func TestCommitmentEmptyRoot(t *testing.T) {
	c := NewCommitment()
	root, err := c.Root()
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, [32]byte(root))
	require.Error(t, c.Update([]byte("k"), nil))
}
