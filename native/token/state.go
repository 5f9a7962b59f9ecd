// Package token implements the token program the bridge mints and burns
// through, plus the associated token account program. Account and instruction
// layouts follow the SPL token program.
package token

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
)

const (
	// MintSize is the length of a mint account.
	MintSize = 82
	// AccountSize is the length of a token account.
	AccountSize = 165
)

const (
	AccountStateUninitialized uint8 = iota
	AccountStateInitialized
	AccountStateFrozen
)

// ProgramID is the token program id.
var ProgramID = solana.TokenProgramID

// AssociatedProgramID is the associated token account program id.
var AssociatedProgramID = solana.SPLAssociatedTokenAccountProgramID

// Mint is the mint account layout.
type Mint struct {
	MintAuthorityOption   uint32
	MintAuthority         solana.PublicKey
	Supply                uint64
	Decimals              uint8
	IsInitialized         uint8
	FreezeAuthorityOption uint32
	FreezeAuthority       solana.PublicKey
}

// Account is the token account layout.
type Account struct {
	Mint                 solana.PublicKey
	Owner                solana.PublicKey
	Amount               uint64
	DelegateOption       uint32
	Delegate             solana.PublicKey
	State                uint8
	IsNativeOption       uint32
	IsNative             uint64
	DelegatedAmount      uint64
	CloseAuthorityOption uint32
	CloseAuthority       solana.PublicKey
}

// DecodeMint parses a mint from raw account data.
func DecodeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, ErrInvalidAccountData
	}
	var m Mint
	if err := pod.Decode(data, &m); err != nil {
		return nil, ErrInvalidAccountData
	}
	return &m, nil
}

// DecodeAccount parses a token account from raw account data.
func DecodeAccount(data []byte) (*Account, error) {
	if len(data) != AccountSize {
		return nil, ErrInvalidAccountData
	}
	var a Account
	if err := pod.Decode(data, &a); err != nil {
		return nil, ErrInvalidAccountData
	}
	return &a, nil
}

// ReadMint returns the initialized mint held by info.
func ReadMint(info *host.AccountInfo) (*Mint, error) {
	if !info.IsOwnedBy(ProgramID) {
		return nil, ErrInvalidAccountData
	}
	m, err := DecodeMint(info.Data())
	if err != nil {
		return nil, err
	}
	if m.IsInitialized == 0 {
		return nil, ErrUninitializedState
	}
	return m, nil
}

// ReadAccount returns the initialized token account held by info.
func ReadAccount(info *host.AccountInfo) (*Account, error) {
	if !info.IsOwnedBy(ProgramID) {
		return nil, ErrInvalidAccountData
	}
	a, err := DecodeAccount(info.Data())
	if err != nil {
		return nil, err
	}
	if a.State == AccountStateUninitialized {
		return nil, ErrUninitializedState
	}
	return a, nil
}

func writeRecord(info *host.AccountInfo, v interface{}) {
	copy(info.Data(), pod.MustEncode(v))
}
