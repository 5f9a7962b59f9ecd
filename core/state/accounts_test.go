package state

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

func TestMissingAccountIsEmpty(t *testing.T) {
	db := NewAccountsDB(storage.NewMemDB())
	acc, err := db.Get(solana.NewWallet().PublicKey())
	require.NoError(t, err)
	require.True(t, acc.IsEmpty())
}

func TestOverlayCommitsOnlyChangedAccounts(t *testing.T) {
	mem := storage.NewMemDB()
	db := NewAccountsDB(mem)
	owner := solana.NewWallet().PublicKey()
	touched := solana.NewWallet().PublicKey()
	untouched := solana.NewWallet().PublicKey()

	overlay := db.Begin()
	acc, err := overlay.Load(touched)
	require.NoError(t, err)
	_, err = overlay.Load(untouched)
	require.NoError(t, err)

	acc.Owner = owner
	acc.Lamports = 10
	acc.Data = []byte{1, 2, 3}

	again, err := overlay.Load(touched)
	require.NoError(t, err)
	require.Same(t, acc, again)

	root, written, err := overlay.Commit()
	require.NoError(t, err)
	require.Equal(t, 1, written)
	require.False(t, root.IsZero())

	stored, err := db.Get(touched)
	require.NoError(t, err)
	require.Equal(t, owner, stored.Owner)
	require.Equal(t, uint64(10), stored.Lamports)
	require.Equal(t, []byte{1, 2, 3}, stored.Data)

	has, err := mem.Has(accountKey(untouched))
	require.NoError(t, err)
	require.False(t, has)
}

func TestDiscardedOverlayLeavesStorageUntouched(t *testing.T) {
	db := NewAccountsDB(storage.NewMemDB())
	key := solana.NewWallet().PublicKey()
	require.NoError(t, db.Put(key, &Account{Owner: solana.TokenProgramID, Lamports: 5, Data: []byte{9}}))

	overlay := db.Begin()
	acc, err := overlay.Load(key)
	require.NoError(t, err)
	acc.Data[0] = 7
	acc.Lamports = 0

	stored, err := db.Get(key)
	require.NoError(t, err)
	require.Equal(t, []byte{9}, stored.Data)
	require.Equal(t, uint64(5), stored.Lamports)
}
