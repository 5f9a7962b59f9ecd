package trie

import (
	"bytes"
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	gethtrie "github.com/ethereum/go-ethereum/trie"
)

var errEmptyValue = errors.New("trie: empty value")

// Commitment accumulates key/value pairs and folds them into a Merkle-Patricia
// root with go-ethereum's stack trie. The host uses it to commit to the set of
// accounts a transaction wrote.
//
// Keys must all share one length. Commitment is not safe for concurrent use.
type Commitment struct {
	entries map[string][]byte
}

// NewCommitment returns an empty commitment.
func NewCommitment() *Commitment {
	return &Commitment{entries: make(map[string][]byte)}
}

// Update records value under key, replacing any previous value.
func (c *Commitment) Update(key, value []byte) error {
	if len(value) == 0 {
		return errEmptyValue
	}
	c.entries[string(key)] = append([]byte(nil), value...)
	return nil
}

// Len reports the number of recorded keys.
func (c *Commitment) Len() int { return len(c.entries) }

// Root returns the trie root over every recorded pair. An empty commitment
// yields the canonical empty root.
func (c *Commitment) Root() (common.Hash, error) {
	if len(c.entries) == 0 {
		return gethtypes.EmptyRootHash, nil
	}
	keys := make([][]byte, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, []byte(key))
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i], keys[j]) < 0 })

	st := gethtrie.NewStackTrie(nil)
	for _, key := range keys {
		if err := st.Update(key, c.entries[string(key)]); err != nil {
			return common.Hash{}, err
		}
	}
	return st.Hash(), nil
}
