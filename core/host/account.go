package host

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/state"
)

// AccountInfo is a program's view of one account passed to an instruction.
// Data returns the live backing slice; writes are visible to later readers in
// the same transaction. Slices taken before a Realloc must be re-read.
type AccountInfo struct {
	Key        solana.PublicKey
	IsSigner   bool
	IsWritable bool

	account *state.Account
}

func (a *AccountInfo) Owner() solana.PublicKey { return a.account.Owner }

func (a *AccountInfo) Lamports() uint64 { return a.account.Lamports }

func (a *AccountInfo) Data() []byte { return a.account.Data }

func (a *AccountInfo) Executable() bool { return a.account.Executable }

// IsEmpty reports whether the account has never been created.
func (a *AccountInfo) IsEmpty() bool { return a.account.IsEmpty() }

// IsOwnedBy reports whether program owns the account.
func (a *AccountInfo) IsOwnedBy(program solana.PublicKey) bool {
	return a.account.Owner.Equals(program)
}

// Meta returns the account meta carrying this view's privileges.
func (a *AccountInfo) Meta() *solana.AccountMeta {
	return solana.NewAccountMeta(a.Key, a.IsWritable, a.IsSigner)
}

// ReadonlyMeta returns a read-only, non-signer meta for the account.
func (a *AccountInfo) ReadonlyMeta() *solana.AccountMeta {
	return solana.NewAccountMeta(a.Key, false, false)
}

// RequireAccounts fails when fewer than n accounts were supplied.
func RequireAccounts(accounts []*AccountInfo, n int) error {
	if len(accounts) < n {
		return ErrNotEnoughAccountKeys
	}
	return nil
}

// NewAccountInfo wraps acc for read-only decoding outside a transaction.
func NewAccountInfo(key solana.PublicKey, acc *state.Account) *AccountInfo {
	return &AccountInfo{Key: key, account: acc}
}
