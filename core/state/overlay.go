package state

import (
	"sort"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage/trie"
)

// Overlay caches every account a transaction touches. Programs mutate the
// cached records in place; nothing reaches storage until Commit.
type Overlay struct {
	base      *AccountsDB
	accounts  map[solana.PublicKey]*Account
	originals map[solana.PublicKey][]byte
}

// Load returns the shared cached record for key, reading it on first use.
func (o *Overlay) Load(key solana.PublicKey) (*Account, error) {
	if acc, ok := o.accounts[key]; ok {
		return acc, nil
	}
	acc, err := o.base.Get(key)
	if err != nil {
		return nil, err
	}
	encoded, err := encodeAccount(acc)
	if err != nil {
		return nil, err
	}
	o.accounts[key] = acc
	o.originals[key] = encoded
	return acc, nil
}

// Dirty returns the keys whose records differ from what was loaded, sorted.
func (o *Overlay) Dirty() ([]solana.PublicKey, error) {
	var out []solana.PublicKey
	for key, acc := range o.accounts {
		encoded, err := encodeAccount(acc)
		if err != nil {
			return nil, err
		}
		if !sameEncoding(encoded, o.originals[key]) {
			out = append(out, key)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

// Commit writes every changed account in one batch and returns a commitment to
// the written records together with the number of accounts written.
func (o *Overlay) Commit() (types.H256, int, error) {
	dirty, err := o.Dirty()
	if err != nil {
		return types.H256{}, 0, err
	}
	batch := o.base.db.NewBatch()
	commitment := trie.NewCommitment()
	for _, key := range dirty {
		encoded, err := encodeAccount(o.accounts[key])
		if err != nil {
			return types.H256{}, 0, err
		}
		batch.Put(accountKey(key), encoded)
		if err := commitment.Update(key[:], encoded); err != nil {
			return types.H256{}, 0, err
		}
	}
	root, err := commitment.Root()
	if err != nil {
		return types.H256{}, 0, err
	}
	if batch.Len() > 0 {
		if err := batch.Write(); err != nil {
			return types.H256{}, 0, err
		}
	}
	for _, key := range dirty {
		encoded, _ := encodeAccount(o.accounts[key])
		o.originals[key] = encoded
	}
	return types.H256(root), len(dirty), nil
}
