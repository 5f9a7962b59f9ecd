package mintbuffer

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

// Instruction discriminators.
const (
	InstructionSetup uint8 = iota
	InstructionReinit
	InstructionResize
	InstructionInsert
	InstructionLock
	InstructionUnlock
)

// SetupArgs names the locker allowed to lock the buffer.
type SetupArgs struct {
	Locker solana.PublicKey
}

// ReinitArgs sizes the buffer for a new mint list.
type ReinitArgs struct {
	TotalMints uint16
	Padding    [6]uint8
}

// ResizeArgs grows the account towards TargetSize.
type ResizeArgs struct {
	TargetSize uint32
	Padding    [4]uint8
}

// InsertArgs selects the group the trailing mint bytes belong to.
type InsertArgs struct {
	GroupIndex uint16
	Padding    [6]uint8
}

func writerAccounts(program, payer, writer solana.PublicKey) []*solana.AccountMeta {
	buffer, _ := Address(program, writer)
	return []*solana.AccountMeta{
		common.WritableSigner(payer),
		common.Signer(writer),
		common.Writable(buffer),
	}
}

// Setup creates the writer's buffer.
func Setup(program, payer, writer, locker solana.PublicKey) (solana.Instruction, error) {
	return common.Instruction(program, InstructionSetup, &SetupArgs{Locker: locker}, nil, writerAccounts(program, payer, writer)...)
}

// Reinit sizes the buffer for totalMints mints and clears every group.
func Reinit(program, payer, writer solana.PublicKey, totalMints uint16) (solana.Instruction, error) {
	return common.Instruction(program, InstructionReinit, &ReinitArgs{TotalMints: totalMints}, nil, writerAccounts(program, payer, writer)...)
}

// Resize grows the buffer towards targetSize.
func Resize(program, payer, writer solana.PublicKey, targetSize uint32) (solana.Instruction, error) {
	return common.Instruction(program, InstructionResize, &ResizeArgs{TargetSize: targetSize}, nil, writerAccounts(program, payer, writer)...)
}

// Insert writes the records of one group.
func Insert(program, writer solana.PublicKey, group uint16, mints []MintRecord) (solana.Instruction, error) {
	buffer, _ := Address(program, writer)
	return common.Instruction(program, InstructionInsert, &InsertArgs{GroupIndex: group}, EncodeMints(mints),
		common.Signer(writer),
		common.Writable(buffer),
	)
}

// Lock locks buffer. locker must sign.
func Lock(program, locker, buffer solana.PublicKey) (solana.Instruction, error) {
	return common.Instruction(program, InstructionLock, nil, nil,
		common.Signer(locker),
		common.Writable(buffer),
	)
}

// Unlock releases buffer. locker must sign.
func Unlock(program, locker, buffer solana.PublicKey) (solana.Instruction, error) {
	return common.Instruction(program, InstructionUnlock, nil, nil,
		common.Signer(locker),
		common.Writable(buffer),
	)
}

// Fill returns the instructions that size a buffer and write every group of
// mints. The first instruction set is Reinit; Insert instructions follow, one
// per group.
func Fill(program, payer, writer solana.PublicKey, mints []MintRecord) ([]solana.Instruction, error) {
	reinit, err := Reinit(program, payer, writer, uint16(len(mints)))
	if err != nil {
		return nil, err
	}
	out := []solana.Instruction{reinit}
	for g := 0; g < GroupCount(len(mints)); g++ {
		start, n := GroupBounds(len(mints), g)
		ix, err := Insert(program, writer, uint16(g), mints[start:start+n])
		if err != nil {
			return nil, err
		}
		out = append(out, ix)
	}
	return out, nil
}
