// Package state persists program-owned accounts and stages the writes of a
// transaction so they commit atomically or not at all.
package state

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

var accountPrefix = []byte("accounts/")

// Account is the storage record behind every address.
type Account struct {
	Owner      solana.PublicKey
	Lamports   uint64
	Data       []byte
	Executable bool
}

type storedAccount struct {
	Owner      [32]byte
	Lamports   uint64
	Data       []byte
	Executable bool
}

// IsEmpty reports whether the account was never created: no lamports, no data
// and owned by the system program.
func (a *Account) IsEmpty() bool {
	return a.Lamports == 0 && len(a.Data) == 0 && a.Owner.Equals(solana.SystemProgramID)
}

// Clone returns a deep copy.
func (a *Account) Clone() *Account {
	return &Account{
		Owner:      a.Owner,
		Lamports:   a.Lamports,
		Data:       append([]byte(nil), a.Data...),
		Executable: a.Executable,
	}
}

func accountKey(key solana.PublicKey) []byte {
	out := make([]byte, 0, len(accountPrefix)+len(key))
	out = append(out, accountPrefix...)
	return append(out, key[:]...)
}

func encodeAccount(acc *Account) ([]byte, error) {
	return rlp.EncodeToBytes(&storedAccount{
		Owner:      acc.Owner,
		Lamports:   acc.Lamports,
		Data:       acc.Data,
		Executable: acc.Executable,
	})
}

func decodeAccount(raw []byte) (*Account, error) {
	var stored storedAccount
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, fmt.Errorf("state: decode account: %w", err)
	}
	return &Account{
		Owner:      solana.PublicKeyFromBytes(stored.Owner[:]),
		Lamports:   stored.Lamports,
		Data:       stored.Data,
		Executable: stored.Executable,
	}, nil
}

// AccountsDB reads and writes account records.
type AccountsDB struct {
	db storage.Database
}

// NewAccountsDB wraps a key-value store.
func NewAccountsDB(db storage.Database) *AccountsDB {
	return &AccountsDB{db: db}
}

// Get returns the stored account or an empty system-owned account.
func (a *AccountsDB) Get(key solana.PublicKey) (*Account, error) {
	raw, err := a.db.Get(accountKey(key))
	if errors.Is(err, storage.ErrNotFound) {
		return &Account{Owner: solana.SystemProgramID}, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeAccount(raw)
}

// Put writes an account outside of any transaction. Used for bootstrap.
func (a *AccountsDB) Put(key solana.PublicKey, acc *Account) error {
	encoded, err := encodeAccount(acc)
	if err != nil {
		return err
	}
	return a.db.Put(accountKey(key), encoded)
}

// Begin starts a transaction overlay.
func (a *AccountsDB) Begin() *Overlay {
	return &Overlay{
		base:      a,
		accounts:  make(map[solana.PublicKey]*Account),
		originals: make(map[solana.PublicKey][]byte),
	}
}

func sameEncoding(a, b []byte) bool { return bytes.Equal(a, b) }
