package host

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

const (
	// AccountStorageOverhead is the per-account byte overhead charged by rent.
	AccountStorageOverhead = 128
	// LamportsPerByteYear is the rent rate.
	LamportsPerByteYear = 3480
	// ExemptionThreshold is the number of rent years a balance must cover.
	ExemptionThreshold = 2
	// MaxPermittedDataIncrease bounds how much a program may grow an account
	// within one top-level instruction.
	MaxPermittedDataIncrease = 10 * 1024
	// MaxAccountDataLength bounds the size of any account.
	MaxAccountDataLength = 10 * 1024 * 1024
)

// MinimumBalance returns the rent-exempt balance for dataLen bytes.
func MinimumBalance(dataLen int) uint64 {
	return uint64(dataLen+AccountStorageOverhead) * LamportsPerByteYear * ExemptionThreshold
}

// CreateAccount funds target from payer with the rent-exempt minimum, allocates
// space zeroed bytes and assigns it to owner. target must sign the
// transaction, or seeds must derive it from the executing program.
func (c *Context) CreateAccount(payer, target *AccountInfo, space int, owner solana.PublicKey, seeds [][]byte) error {
	if err := c.verify(); err != nil {
		return err
	}
	if seeds != nil {
		addr, err := solana.CreateProgramAddress(seeds, c.program.ID())
		if err != nil || !addr.Equals(target.Key) {
			return fmt.Errorf("%w: %s", ErrInvalidSeeds, target.Key)
		}
	} else if !target.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, target.Key)
	}
	if space > c.run.origLens[target.Key]+MaxPermittedDataIncrease {
		return ErrInvalidRealloc
	}
	if err := createAccount(payer, target, MinimumBalance(space), space, owner); err != nil {
		return err
	}
	c.snapshot()
	return nil
}

// Transfer moves lamports from a signing system account.
func (c *Context) Transfer(from, to *AccountInfo, lamports uint64) error {
	if err := c.verify(); err != nil {
		return err
	}
	if err := transfer(from, to, lamports); err != nil {
		return err
	}
	c.snapshot()
	return nil
}

// Realloc resizes an account owned by the executing program. Growth within a
// top-level instruction is capped at MaxPermittedDataIncrease and the balance
// must stay rent exempt.
func (c *Context) Realloc(acc *AccountInfo, newLen int) error {
	if !acc.IsOwnedBy(c.program.ID()) {
		return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, acc.Key)
	}
	if !acc.IsWritable {
		return fmt.Errorf("%w: %s", ErrReadonlyDataModified, acc.Key)
	}
	if newLen < 0 || newLen > MaxAccountDataLength {
		return ErrInvalidRealloc
	}
	if newLen > c.run.origLens[acc.Key]+MaxPermittedDataIncrease {
		return ErrInvalidRealloc
	}
	if acc.Lamports() < MinimumBalance(newLen) {
		return ErrAccountNotRentExempt
	}
	data := acc.account.Data
	if newLen <= len(data) {
		acc.account.Data = data[:newLen:newLen]
		return nil
	}
	grown := make([]byte, newLen)
	copy(grown, data)
	acc.account.Data = grown
	return nil
}

// ReallocGrowth is the largest size acc can reach in the current top-level
// instruction.
func (c *Context) ReallocGrowth(acc *AccountInfo) int {
	return c.run.origLens[acc.Key] + MaxPermittedDataIncrease
}

func createAccount(payer, target *AccountInfo, lamports uint64, space int, owner solana.PublicKey) error {
	if !payer.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, payer.Key)
	}
	if !payer.IsWritable || !target.IsWritable {
		return fmt.Errorf("%w: payer and new account must be writable", ErrPrivilegeEscalation)
	}
	if !payer.IsOwnedBy(solana.SystemProgramID) || len(payer.Data()) != 0 {
		return fmt.Errorf("%w: payer %s", ErrIllegalOwner, payer.Key)
	}
	if !target.IsEmpty() {
		return fmt.Errorf("%w: %s", ErrAccountAlreadyInUse, target.Key)
	}
	if space < 0 || space > MaxAccountDataLength {
		return ErrInvalidRealloc
	}
	if lamports < MinimumBalance(space) {
		return ErrAccountNotRentExempt
	}
	if payer.Lamports() < lamports {
		return fmt.Errorf("%w: payer %s has %d, needs %d", ErrInsufficientFunds, payer.Key, payer.Lamports(), lamports)
	}
	payer.account.Lamports -= lamports
	target.account.Lamports = lamports
	target.account.Data = make([]byte, space)
	target.account.Owner = owner
	return nil
}

func transfer(from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, from.Key)
	}
	if !from.IsWritable || !to.IsWritable {
		return fmt.Errorf("%w: transfer accounts must be writable", ErrPrivilegeEscalation)
	}
	if !from.IsOwnedBy(solana.SystemProgramID) || len(from.Data()) != 0 {
		return fmt.Errorf("%w: %s", ErrIllegalOwner, from.Key)
	}
	if from.Lamports() < lamports {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from.Key, from.Lamports(), lamports)
	}
	if from.Key.Equals(to.Key) {
		return nil
	}
	from.account.Lamports -= lamports
	to.account.Lamports += lamports
	return nil
}

// systemProgram implements the system instructions the bridge flow needs:
// CreateAccount and Transfer, in the system program's wire format.
type systemProgram struct{}

func (systemProgram) ID() solana.PublicKey { return solana.SystemProgramID }

func (systemProgram) Name() string { return "system" }

func (systemProgram) InstructionName(data []byte) string {
	if len(data) < 4 {
		return ""
	}
	switch binary.LittleEndian.Uint32(data) {
	case system.Instruction_CreateAccount:
		return "create_account"
	case system.Instruction_Transfer:
		return "transfer"
	default:
		return ""
	}
}

func (systemProgram) Execute(ctx *Context, accounts []*AccountInfo, data []byte) error {
	if len(data) < 4 {
		return ErrInvalidInstructionData
	}
	if err := RequireAccounts(accounts, 2); err != nil {
		return err
	}
	switch binary.LittleEndian.Uint32(data) {
	case system.Instruction_CreateAccount:
		if len(data) < 52 {
			return ErrInvalidInstructionData
		}
		lamports := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner := solana.PublicKeyFromBytes(data[20:52])
		if !accounts[1].IsSigner {
			return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, accounts[1].Key)
		}
		if space > MaxAccountDataLength {
			return ErrInvalidRealloc
		}
		if err := createAccount(accounts[0], accounts[1], lamports, int(space), owner); err != nil {
			return err
		}
	case system.Instruction_Transfer:
		if len(data) < 12 {
			return ErrInvalidInstructionData
		}
		if err := transfer(accounts[0], accounts[1], binary.LittleEndian.Uint64(data[4:12])); err != nil {
			return err
		}
	default:
		return ErrInvalidInstructionData
	}
	ctx.snapshot()
	return nil
}

// CreateAccountInstruction builds a system CreateAccount instruction funding
// newAccount with the rent-exempt minimum for space bytes.
func CreateAccountInstruction(payer, newAccount solana.PublicKey, space int, owner solana.PublicKey) solana.Instruction {
	return system.NewCreateAccountInstruction(MinimumBalance(space), uint64(space), owner, payer, newAccount).Build()
}

// TransferInstruction builds a system Transfer instruction.
func TransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	return system.NewTransferInstruction(lamports, from, to).Build()
}
