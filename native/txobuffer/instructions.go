package txobuffer

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

// Instruction discriminators.
const (
	InstructionInit uint8 = iota
	InstructionSetLen
	InstructionWrite
	InstructionResize
)

// SetLenArgs begins, resizes or finalizes a batch.
type SetLenArgs struct {
	Len             uint32
	BatchID         uint32
	DogeBlockHeight uint32
	IsBegin         uint8
	IsFinalize      uint8
	Padding         [2]uint8
}

// WriteArgs places the trailing chunk at Offset of the body.
type WriteArgs struct {
	BatchID uint32
	Offset  uint32
}

// ResizeArgs grows the account towards TargetSize.
type ResizeArgs struct {
	TargetSize uint32
	Padding    [4]uint8
}

func writerAccounts(program, payer, writer solana.PublicKey) []*solana.AccountMeta {
	buffer, _ := Address(program, writer)
	return []*solana.AccountMeta{
		common.WritableSigner(payer),
		common.Signer(writer),
		common.Writable(buffer),
	}
}

// Init creates the writer's buffer.
func Init(program, payer, writer solana.PublicKey) (solana.Instruction, error) {
	return common.Instruction(program, InstructionInit, nil, nil, writerAccounts(program, payer, writer)...)
}

// SetLen adjusts the open batch.
func SetLen(program, payer, writer solana.PublicKey, args SetLenArgs) (solana.Instruction, error) {
	return common.Instruction(program, InstructionSetLen, &args, nil, writerAccounts(program, payer, writer)...)
}

// Begin opens batchID for a body of size bytes at height.
func Begin(program, payer, writer solana.PublicKey, size int, batchID, height uint32) (solana.Instruction, error) {
	return SetLen(program, payer, writer, SetLenArgs{Len: uint32(size), BatchID: batchID, DogeBlockHeight: height, IsBegin: 1})
}

// Finalize latches the open batch.
func Finalize(program, payer, writer solana.PublicKey, size int, batchID, height uint32) (solana.Instruction, error) {
	return SetLen(program, payer, writer, SetLenArgs{Len: uint32(size), BatchID: batchID, DogeBlockHeight: height, IsFinalize: 1})
}

// Write copies chunk into the body at offset.
func Write(program, writer solana.PublicKey, batchID uint32, offset int, chunk []byte) (solana.Instruction, error) {
	buffer, _ := Address(program, writer)
	return common.Instruction(program, InstructionWrite, &WriteArgs{BatchID: batchID, Offset: uint32(offset)}, chunk,
		common.Signer(writer),
		common.Writable(buffer),
	)
}

// Resize grows the buffer towards targetSize.
func Resize(program, payer, writer solana.PublicKey, targetSize uint32) (solana.Instruction, error) {
	return common.Instruction(program, InstructionResize, &ResizeArgs{TargetSize: targetSize}, nil, writerAccounts(program, payer, writer)...)
}

// Fill returns Begin, one Write per chunk of body, and Finalize.
func Fill(program, payer, writer solana.PublicKey, batchID, height uint32, body []byte) ([]solana.Instruction, error) {
	begin, err := Begin(program, payer, writer, len(body), batchID, height)
	if err != nil {
		return nil, err
	}
	out := []solana.Instruction{begin}
	for off := 0; off < len(body); off += MaxChunkSize {
		end := off + MaxChunkSize
		if end > len(body) {
			end = len(body)
		}
		ix, err := Write(program, writer, batchID, off, body[off:end])
		if err != nil {
			return nil, err
		}
		out = append(out, ix)
	}
	finalize, err := Finalize(program, payer, writer, len(body), batchID, height)
	if err != nil {
		return nil, err
	}
	return append(out, finalize), nil
}
