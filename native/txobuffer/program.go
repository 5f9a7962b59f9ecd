package txobuffer

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

// Program is the TXO buffer program.
type Program struct {
	id solana.PublicKey
}

// NewProgram returns the program deployed at id.
func NewProgram(id solana.PublicKey) *Program { return &Program{id: id} }

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Name() string { return "txo_buffer" }

var instructionNames = map[uint8]string{
	InstructionInit:   "init",
	InstructionSetLen: "set_len",
	InstructionWrite:  "write",
	InstructionResize: "resize",
}

func (p *Program) InstructionName(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return instructionNames[data[0]]
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	switch disc {
	case InstructionInit:
		return p.initialize(ctx, accounts)
	case InstructionSetLen:
		var args SetLenArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.setLen(ctx, accounts, args)
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

func (p *Program) initialize(ctx *host.Context, accounts []*host.AccountInfo) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	if !writer.IsSigner {
		return ErrUnauthorizedWriter
	}
	addr, bump := Address(p.id, writer.Key)
	if !addr.Equals(buffer.Key) {
		return ErrInvalidAddress
	}
	if !buffer.IsEmpty() {
		return ErrAlreadyInitialized
	}
	if err := ctx.CreateAccount(payer, buffer, HeaderSize, p.id, common.SignerSeeds(bump, bufferSeed, writer.Key[:])); err != nil {
		return err
	}
	return common.Store(buffer, &Header{AuthorizedWriter: writer.Key})
}

func (p *Program) header(writer, buffer *host.AccountInfo) (*Header, error) {
	if !buffer.IsOwnedBy(p.id) {
		return nil, ErrNotInitialized
	}
	var hdr Header
	if err := common.Load(buffer, &hdr); err != nil {
		return nil, ErrNotInitialized
	}
	if !writer.IsSigner || !writer.Key.Equals(hdr.AuthorizedWriter) {
		return nil, ErrUnauthorizedWriter
	}
	return &hdr, nil
}

func coverage(data []byte, size int) common.Coverage {
	off := HeaderSize + size
	return common.Coverage(data[off : off+common.CoverageSize(size)])
}

func (p *Program) setLen(ctx *host.Context, accounts []*host.AccountInfo, args SetLenArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	hdr, err := p.header(writer, buffer)
	if err != nil {
		return err
	}
	size := int(args.Len)
	if size > MaxDataSize {
		return ErrTooLarge
	}

	if args.IsBegin != 0 {
		if hdr.FinalizedStatus == 1 && args.BatchID <= hdr.BatchID {
			return fmt.Errorf("%w: batch %d, finalized %d", ErrStaleBatch, args.BatchID, hdr.BatchID)
		}
		if err := common.EnsureLen(ctx, payer, buffer, AccountLen(size), ErrBufferTooSmall); err != nil {
			return err
		}
		hdr.InitStatus = 1
		hdr.FinalizedStatus = 0
		hdr.BatchID = args.BatchID
		hdr.DogeBlockHeight = args.DogeBlockHeight
		hdr.DataSize = args.Len
		coverage(buffer.Data(), size).Reset()
		ctx.Logf("txo buffer %s batch %d begun for height %d, %d bytes", buffer.Key, hdr.BatchID, hdr.DogeBlockHeight, size)
	} else {
		if hdr.InitStatus != 1 {
			return ErrNoOpenBatch
		}
		if hdr.FinalizedStatus == 1 {
			return ErrFinalized
		}
		if args.BatchID != hdr.BatchID {
			return ErrBatchMismatch
		}
		if args.DogeBlockHeight != hdr.DogeBlockHeight {
			return ErrHeightMismatch
		}
		if size != int(hdr.DataSize) {
			if err := p.relen(ctx, payer, buffer, hdr, size); err != nil {
				return err
			}
		}
	}

	if args.IsFinalize != 0 {
		if !coverage(buffer.Data(), size).Complete(size) {
			return ErrIncomplete
		}
		hdr.FinalizedStatus = 1
		ctx.Logf("txo buffer %s batch %d finalized", buffer.Key, hdr.BatchID)
	}
	return common.Store(buffer, hdr)
}

// relen changes the body length of the open batch, carrying over the
// coverage of bytes that remain in range.
func (p *Program) relen(ctx *host.Context, payer, buffer *host.AccountInfo, hdr *Header, size int) error {
	old := int(hdr.DataSize)
	prev := append(common.Coverage(nil), coverage(buffer.Data(), old)...)
	if err := common.EnsureLen(ctx, payer, buffer, AccountLen(size), ErrBufferTooSmall); err != nil {
		return err
	}
	data := buffer.Data()
	keep := old
	if size < keep {
		keep = size
	}
	next := coverage(data, size)
	next.Reset()
	for i := 0; i < keep; i++ {
		if prev[i/8]&(1<<uint(i%8)) != 0 {
			next.Mark(i, 1)
		}
	}
	for i := keep; i < size; i++ {
		data[HeaderSize+i] = 0
	}
	hdr.DataSize = uint32(size)
	return nil
}

func (p *Program) write(accounts []*host.AccountInfo, args WriteArgs, chunk []byte) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	writer, buffer := accounts[0], accounts[1]
	hdr, err := p.header(writer, buffer)
	if err != nil {
		return err
	}
	if hdr.InitStatus != 1 {
		return ErrNoOpenBatch
	}
	if hdr.FinalizedStatus == 1 {
		return ErrFinalized
	}
	if args.BatchID != hdr.BatchID {
		return ErrBatchMismatch
	}
	if len(chunk) > MaxChunkSize {
		return ErrChunkTooLarge
	}
	size := int(hdr.DataSize)
	off := int(args.Offset)
	if off+len(chunk) > size {
		return fmt.Errorf("%w: [%d, %d) beyond %d", ErrOutOfBounds, off, off+len(chunk), size)
	}
	data := buffer.Data()
	copy(data[HeaderSize+off:], chunk)
	coverage(data, size).Mark(off, len(chunk))
	return nil
}

func (p *Program) resize(ctx *host.Context, accounts []*host.AccountInfo, args ResizeArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	if _, err := p.header(writer, buffer); err != nil {
		return err
	}
	target := int(args.TargetSize)
	if target > AccountLen(MaxDataSize) {
		return ErrTooLarge
	}
	if reach := ctx.ReallocGrowth(buffer); target > reach {
		target = reach
	}
	return common.EnsureLen(ctx, payer, buffer, target, ErrBufferTooSmall)
}
