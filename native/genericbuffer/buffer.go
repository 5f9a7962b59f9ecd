// Package genericbuffer implements a fixed-target-size byte buffer filled by
// chunked writes, used to carry payloads too large for one instruction.
package genericbuffer

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

const (
	// HeaderSize is the fixed header length.
	HeaderSize = 32
	// MaxChunkSize bounds the payload of one Write.
	MaxChunkSize = 900
	// MaxTargetSize bounds the body so header, body and coverage fit one account.
	MaxTargetSize = (host.MaxAccountDataLength - HeaderSize) * 8 / 9
)

// Instruction discriminators.
const (
	InstructionInit uint8 = iota
	InstructionWrite
	InstructionResize
)

var bufferSeed = []byte("generic_buffer")

// Header is the fixed buffer header.
type Header struct {
	TargetSize uint32
	Reserved   [28]uint8
}

// InitArgs sets the body length.
type InitArgs struct {
	TargetSize uint32
	Padding    [4]uint8
}

// WriteArgs places the trailing chunk at Offset.
type WriteArgs struct {
	Offset  uint32
	Padding [4]uint8
}

// ResizeArgs grows the account towards TargetSize.
type ResizeArgs struct {
	TargetSize uint32
	Padding    [4]uint8
}

// AccountLen is the account length needed for a body of size bytes.
func AccountLen(size int) int {
	return HeaderSize + size + common.CoverageSize(size)
}

// Address returns the buffer account of writer.
func Address(program, writer solana.PublicKey) (solana.PublicKey, uint8) {
	return common.Canonical(program, bufferSeed, writer[:])
}

// View is a read-only decoded buffer.
type View struct {
	Key    solana.PublicKey
	Header Header
	data   []byte
}

// Read decodes the buffer held by info, which must be owned by program.
func Read(program solana.PublicKey, info *host.AccountInfo) (*View, error) {
	if !info.IsOwnedBy(program) {
		return nil, ErrNotInitialized
	}
	var hdr Header
	if err := pod.Decode(info.Data(), &hdr); err != nil {
		return nil, ErrNotInitialized
	}
	if len(info.Data()) < AccountLen(int(hdr.TargetSize)) {
		return nil, ErrBufferTooSmall
	}
	return &View{Key: info.Key, Header: hdr, data: info.Data()}, nil
}

// Body returns the target-size body.
func (v *View) Body() []byte {
	return v.data[HeaderSize : HeaderSize+int(v.Header.TargetSize)]
}

// Complete reports whether every body byte has been written.
func (v *View) Complete() bool {
	size := int(v.Header.TargetSize)
	return coverage(v.data, size).Complete(size)
}

func coverage(data []byte, size int) common.Coverage {
	off := HeaderSize + size
	return common.Coverage(data[off : off+common.CoverageSize(size)])
}

func writerAccounts(program, payer, writer solana.PublicKey) []*solana.AccountMeta {
	buffer, _ := Address(program, writer)
	return []*solana.AccountMeta{
		common.WritableSigner(payer),
		common.Signer(writer),
		common.Writable(buffer),
	}
}

// Init creates or resets the writer's buffer for a body of targetSize bytes.
func Init(program, payer, writer solana.PublicKey, targetSize int) (solana.Instruction, error) {
	return common.Instruction(program, InstructionInit, &InitArgs{TargetSize: uint32(targetSize)}, nil, writerAccounts(program, payer, writer)...)
}

// Write copies chunk into the body at offset.
func Write(program, writer solana.PublicKey, offset int, chunk []byte) (solana.Instruction, error) {
	buffer, _ := Address(program, writer)
	return common.Instruction(program, InstructionWrite, &WriteArgs{Offset: uint32(offset)}, chunk,
		common.Signer(writer),
		common.Writable(buffer),
	)
}

// Resize grows the account towards targetSize bytes.
func Resize(program, payer, writer solana.PublicKey, targetSize int) (solana.Instruction, error) {
	return common.Instruction(program, InstructionResize, &ResizeArgs{TargetSize: uint32(targetSize)}, nil, writerAccounts(program, payer, writer)...)
}

// Fill returns Init followed by one Write per chunk of body.
func Fill(program, payer, writer solana.PublicKey, body []byte) ([]solana.Instruction, error) {
	first, err := Init(program, payer, writer, len(body))
	if err != nil {
		return nil, err
	}
	out := []solana.Instruction{first}
	for off := 0; off < len(body); off += MaxChunkSize {
		end := off + MaxChunkSize
		if end > len(body) {
			end = len(body)
		}
		ix, err := Write(program, writer, off, body[off:end])
		if err != nil {
			return nil, err
		}
		out = append(out, ix)
	}
	return out, nil
}

// Program is the generic buffer program.
type Program struct {
	id solana.PublicKey
}

// NewProgram returns the program deployed at id.
func NewProgram(id solana.PublicKey) *Program { return &Program{id: id} }

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Name() string { return "generic_buffer" }

func (p *Program) InstructionName(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	switch data[0] {
	case InstructionInit:
		return "init"
	case InstructionWrite:
		return "write"
	case InstructionResize:
		return "resize"
	}
	return ""
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	switch disc {
	case InstructionInit:
		var args InitArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.initialize(ctx, accounts, args)
	case InstructionWrite:
		var args WriteArgs
		chunk, err := common.DecodeBody(body, &args)
		if err != nil {
			return err
		}
		return p.write(accounts, args, chunk)
	case InstructionResize:
		var args ResizeArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.resize(ctx, accounts, args)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidInstruction, disc)
	}
}

// buffer checks that buffer is writer's canonical address and writer signed.
func (p *Program) buffer(writer, buffer *host.AccountInfo) (uint8, error) {
	if !writer.IsSigner {
		return 0, ErrUnauthorizedWriter
	}
	bump, ok := common.IsCanonical(buffer.Key, p.id, bufferSeed, writer.Key[:])
	if !ok {
		return 0, ErrInvalidAddress
	}
	return bump, nil
}

func (p *Program) initialize(ctx *host.Context, accounts []*host.AccountInfo, args InitArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	bump, err := p.buffer(writer, buffer)
	if err != nil {
		return err
	}
	size := int(args.TargetSize)
	if size > MaxTargetSize {
		return ErrTooLarge
	}
	if buffer.IsEmpty() {
		space := AccountLen(size)
		if space > host.MaxPermittedDataIncrease {
			space = HeaderSize
		}
		if err := ctx.CreateAccount(payer, buffer, space, p.id, common.SignerSeeds(bump, bufferSeed, writer.Key[:])); err != nil {
			return err
		}
	} else if !buffer.IsOwnedBy(p.id) {
		return ErrNotInitialized
	}
	want := AccountLen(size)
	if reach := ctx.ReallocGrowth(buffer); want > reach {
		want = reach
	}
	if err := common.EnsureLen(ctx, payer, buffer, want, ErrBufferTooSmall); err != nil {
		return err
	}
	data := buffer.Data()
	for i := HeaderSize; i < len(data) && i < AccountLen(size); i++ {
		data[i] = 0
	}
	ctx.Logf("generic buffer %s reset to %d bytes", buffer.Key, size)
	return common.Store(buffer, &Header{TargetSize: args.TargetSize})
}

func (p *Program) write(accounts []*host.AccountInfo, args WriteArgs, chunk []byte) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	writer, buffer := accounts[0], accounts[1]
	if _, err := p.buffer(writer, buffer); err != nil {
		return err
	}
	if !buffer.IsOwnedBy(p.id) {
		return ErrNotInitialized
	}
	var hdr Header
	if err := common.Load(buffer, &hdr); err != nil {
		return ErrNotInitialized
	}
	if len(chunk) > MaxChunkSize {
		return ErrChunkTooLarge
	}
	size := int(hdr.TargetSize)
	off := int(args.Offset)
	if off+len(chunk) > size {
		return fmt.Errorf("%w: [%d, %d) beyond %d", ErrOutOfBounds, off, off+len(chunk), size)
	}
	data := buffer.Data()
	if len(data) < AccountLen(size) {
		return ErrBufferTooSmall
	}
	copy(data[HeaderSize+off:], chunk)
	coverage(data, size).Mark(off, len(chunk))
	return nil
}

func (p *Program) resize(ctx *host.Context, accounts []*host.AccountInfo, args ResizeArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	if _, err := p.buffer(writer, buffer); err != nil {
		return err
	}
	if !buffer.IsOwnedBy(p.id) {
		return ErrNotInitialized
	}
	target := AccountLen(int(args.TargetSize))
	if int(args.TargetSize) > MaxTargetSize {
		return ErrTooLarge
	}
	if reach := ctx.ReallocGrowth(buffer); target > reach {
		target = reach
	}
	return common.EnsureLen(ctx, payer, buffer, target, ErrBufferTooSmall)
}
