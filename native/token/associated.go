package token

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
)

// AssociatedProgram creates the canonical token account of a wallet for a
// mint.
type AssociatedProgram struct{}

// NewAssociatedProgram returns the associated token account program.
func NewAssociatedProgram() *AssociatedProgram { return &AssociatedProgram{} }

func (*AssociatedProgram) ID() solana.PublicKey { return AssociatedProgramID }

func (*AssociatedProgram) Name() string { return "associated_token" }

func (*AssociatedProgram) InstructionName(data []byte) string {
	if len(data) > 0 && data[0] == AssociatedCreateIdempotent {
		return "create_idempotent"
	}
	return "create"
}

// Execute handles Create and CreateIdempotent. Accounts: payer (signer,
// writable), associated account (writable), wallet, mint, system program,
// token program.
func (p *AssociatedProgram) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	idempotent := len(data) > 0 && data[0] == AssociatedCreateIdempotent
	payer, ata, wallet, mint := accounts[0], accounts[1], accounts[2], accounts[3]

	addr, bump, err := solana.FindAssociatedTokenAddress(wallet.Key, mint.Key)
	if err != nil || !addr.Equals(ata.Key) {
		return ErrInvalidAssociatedAddress
	}
	if !ata.IsEmpty() {
		if !idempotent {
			return ErrAssociatedAccountExists
		}
		existing, err := ReadAccount(ata)
		if err != nil {
			return err
		}
		if !existing.Owner.Equals(wallet.Key) || !existing.Mint.Equals(mint.Key) {
			return ErrOwnerMismatch
		}
		return nil
	}
	if _, err := ReadMint(mint); err != nil {
		return err
	}
	seeds := [][]byte{wallet.Key[:], ProgramID[:], mint.Key[:], {bump}}
	if err := ctx.CreateAccount(payer, ata, AccountSize, ProgramID, seeds); err != nil {
		return err
	}
	return ctx.Invoke(InitializeAccount(ata.Key, mint.Key, wallet.Key))
}
