package token

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// Instruction indices of the token program.
const (
	InstructionTransfer           uint8 = 3
	InstructionMintTo             uint8 = 7
	InstructionBurn               uint8 = 8
	InstructionInitializeAccount3 uint8 = 18
	InstructionInitializeMint2    uint8 = 20
)

// Instruction indices of the associated token account program.
const (
	AssociatedCreate           uint8 = 0
	AssociatedCreateIdempotent uint8 = 1
)

func amountData(disc uint8, amount uint64) []byte {
	data := make([]byte, 9)
	data[0] = disc
	binary.LittleEndian.PutUint64(data[1:], amount)
	return data
}

// InitializeMint builds InitializeMint2 without a freeze authority.
func InitializeMint(mint, authority solana.PublicKey, decimals uint8) solana.Instruction {
	data := make([]byte, 0, 35)
	data = append(data, InstructionInitializeMint2, decimals)
	data = append(data, authority[:]...)
	data = append(data, 0)
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
	}, data)
}

// InitializeAccount builds InitializeAccount3.
func InitializeAccount(account, mint, owner solana.PublicKey) solana.Instruction {
	data := make([]byte, 0, 33)
	data = append(data, InstructionInitializeAccount3)
	data = append(data, owner[:]...)
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(mint, false, false),
	}, data)
}

// MintTo credits amount to destination. authority must be the mint authority.
func MintTo(mint, destination, authority solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(authority, false, true),
	}, amountData(InstructionMintTo, amount))
}

// Burn destroys amount from account. owner must own the account.
func Burn(account, mint, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(account, true, false),
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(owner, false, true),
	}, amountData(InstructionBurn, amount))
}

// Transfer moves amount between two accounts of the same mint.
func Transfer(source, destination, owner solana.PublicKey, amount uint64) solana.Instruction {
	return solana.NewInstruction(ProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(source, true, false),
		solana.NewAccountMeta(destination, true, false),
		solana.NewAccountMeta(owner, false, true),
	}, amountData(InstructionTransfer, amount))
}

// AssociatedAddress returns the associated token account of wallet for mint.
func AssociatedAddress(wallet, mint solana.PublicKey) solana.PublicKey {
	addr, _, err := solana.FindAssociatedTokenAddress(wallet, mint)
	if err != nil {
		panic(err)
	}
	return addr
}

// CreateAssociatedAccount builds an associated token account creation.
func CreateAssociatedAccount(payer, wallet, mint solana.PublicKey, idempotent bool) solana.Instruction {
	disc := AssociatedCreate
	if idempotent {
		disc = AssociatedCreateIdempotent
	}
	return solana.NewInstruction(AssociatedProgramID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(AssociatedAddress(wallet, mint), true, false),
		solana.NewAccountMeta(wallet, false, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(ProgramID, false, false),
	}, []byte{disc})
}
