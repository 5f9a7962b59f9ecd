package token

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
)

// Program is the token program.
type Program struct{}

// NewProgram returns the token program.
func NewProgram() *Program { return &Program{} }

func (*Program) ID() solana.PublicKey { return ProgramID }

func (*Program) Name() string { return "token" }

func (*Program) InstructionName(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch data[0] {
	case InstructionTransfer:
		return "transfer"
	case InstructionMintTo:
		return "mint_to"
	case InstructionBurn:
		return "burn"
	case InstructionInitializeAccount3:
		return "initialize_account"
	case InstructionInitializeMint2:
		return "initialize_mint"
	default:
		return ""
	}
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstruction
	}
	switch data[0] {
	case InstructionInitializeMint2:
		return p.initializeMint(accounts, data[1:])
	case InstructionInitializeAccount3:
		return p.initializeAccount(accounts, data[1:])
	case InstructionMintTo:
		amount, err := readAmount(data)
		if err != nil {
			return err
		}
		return p.mintTo(ctx, accounts, amount)
	case InstructionBurn:
		amount, err := readAmount(data)
		if err != nil {
			return err
		}
		return p.burn(ctx, accounts, amount)
	case InstructionTransfer:
		amount, err := readAmount(data)
		if err != nil {
			return err
		}
		return p.transfer(accounts, amount)
	default:
		return fmt.Errorf("%w: index %d", ErrInvalidInstruction, data[0])
	}
}

func readAmount(data []byte) (uint64, error) {
	if len(data) < 9 {
		return 0, ErrInvalidInstruction
	}
	return binary.LittleEndian.Uint64(data[1:9]), nil
}

func (p *Program) initializeMint(accounts []*host.AccountInfo, args []byte) error {
	if err := host.RequireAccounts(accounts, 1); err != nil {
		return err
	}
	if len(args) < 34 {
		return ErrInvalidInstruction
	}
	mintInfo := accounts[0]
	if !mintInfo.IsOwnedBy(ProgramID) {
		return ErrInvalidAccountData
	}
	mint, err := DecodeMint(mintInfo.Data())
	if err != nil {
		return err
	}
	if mint.IsInitialized != 0 {
		return ErrAlreadyInUse
	}
	mint.Decimals = args[0]
	mint.MintAuthorityOption = 1
	mint.MintAuthority = solana.PublicKeyFromBytes(args[1:33])
	if len(args) >= 67 && args[33] == 1 {
		mint.FreezeAuthorityOption = 1
		mint.FreezeAuthority = solana.PublicKeyFromBytes(args[34:66])
	}
	mint.IsInitialized = 1
	writeRecord(mintInfo, mint)
	return nil
}

func (p *Program) initializeAccount(accounts []*host.AccountInfo, args []byte) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	if len(args) < 32 {
		return ErrInvalidInstruction
	}
	accInfo, mintInfo := accounts[0], accounts[1]
	if !accInfo.IsOwnedBy(ProgramID) {
		return ErrInvalidAccountData
	}
	acc, err := DecodeAccount(accInfo.Data())
	if err != nil {
		return err
	}
	if acc.State != AccountStateUninitialized {
		return ErrAlreadyInUse
	}
	if _, err := ReadMint(mintInfo); err != nil {
		return err
	}
	acc.Mint = mintInfo.Key
	acc.Owner = solana.PublicKeyFromBytes(args[:32])
	acc.State = AccountStateInitialized
	writeRecord(accInfo, acc)
	return nil
}

func (p *Program) mintTo(ctx *host.Context, accounts []*host.AccountInfo, amount uint64) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	mintInfo, destInfo, authority := accounts[0], accounts[1], accounts[2]
	mint, err := ReadMint(mintInfo)
	if err != nil {
		return err
	}
	dest, err := ReadAccount(destInfo)
	if err != nil {
		return err
	}
	if !dest.Mint.Equals(mintInfo.Key) {
		return ErrMintMismatch
	}
	if mint.MintAuthorityOption == 0 {
		return ErrFixedSupply
	}
	if !authority.IsSigner || !authority.Key.Equals(mint.MintAuthority) {
		return ErrOwnerMismatch
	}
	if mint.Supply+amount < mint.Supply || dest.Amount+amount < dest.Amount {
		return ErrOverflow
	}
	mint.Supply += amount
	dest.Amount += amount
	writeRecord(mintInfo, mint)
	writeRecord(destInfo, dest)
	ctx.Logf("mint_to %d to %s", amount, destInfo.Key)
	return nil
}

func (p *Program) burn(ctx *host.Context, accounts []*host.AccountInfo, amount uint64) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	accInfo, mintInfo, owner := accounts[0], accounts[1], accounts[2]
	acc, err := ReadAccount(accInfo)
	if err != nil {
		return err
	}
	mint, err := ReadMint(mintInfo)
	if err != nil {
		return err
	}
	if !acc.Mint.Equals(mintInfo.Key) {
		return ErrMintMismatch
	}
	if !owner.IsSigner || !owner.Key.Equals(acc.Owner) {
		return ErrOwnerMismatch
	}
	if acc.Amount < amount {
		return ErrInsufficientFunds
	}
	if mint.Supply < amount {
		return ErrOverflow
	}
	acc.Amount -= amount
	mint.Supply -= amount
	writeRecord(accInfo, acc)
	writeRecord(mintInfo, mint)
	ctx.Logf("burn %d from %s", amount, accInfo.Key)
	return nil
}

func (p *Program) transfer(accounts []*host.AccountInfo, amount uint64) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	srcInfo, dstInfo, owner := accounts[0], accounts[1], accounts[2]
	src, err := ReadAccount(srcInfo)
	if err != nil {
		return err
	}
	dst, err := ReadAccount(dstInfo)
	if err != nil {
		return err
	}
	if !src.Mint.Equals(dst.Mint) {
		return ErrMintMismatch
	}
	if !owner.IsSigner || !owner.Key.Equals(src.Owner) {
		return ErrOwnerMismatch
	}
	if src.Amount < amount {
		return ErrInsufficientFunds
	}
	if srcInfo.Key.Equals(dstInfo.Key) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}
	src.Amount -= amount
	dst.Amount += amount
	writeRecord(srcInfo, src)
	writeRecord(dstInfo, dst)
	return nil
}
