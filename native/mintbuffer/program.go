package mintbuffer

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

// Program is the pending-mint buffer program.
type Program struct {
	id solana.PublicKey
}

// NewProgram returns the program deployed at id.
func NewProgram(id solana.PublicKey) *Program { return &Program{id: id} }

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Name() string { return "mint_buffer" }

var instructionNames = map[uint8]string{
	InstructionSetup:  "setup",
	InstructionReinit: "reinit",
	InstructionResize: "resize",
	InstructionInsert: "insert",
	InstructionLock:   "lock",
	InstructionUnlock: "unlock",
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
	case InstructionSetup:
		var args SetupArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.setup(ctx, accounts, args)
	case InstructionReinit:
		var args ReinitArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.reinit(ctx, accounts, args)
	case InstructionResize:
		var args ResizeArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.resize(ctx, accounts, args)
	case InstructionInsert:
		var args InsertArgs
		mintBytes, err := common.DecodeBody(body, &args)
		if err != nil {
			return err
		}
		return p.insert(ctx, accounts, args, mintBytes)
	case InstructionLock:
		return p.lock(ctx, accounts)
	case InstructionUnlock:
		return p.unlock(ctx, accounts)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidInstruction, disc)
	}
}

func (p *Program) setup(ctx *host.Context, accounts []*host.AccountInfo, args SetupArgs) error {
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
	return common.Store(buffer, &Header{
		AuthorizedLocker: args.Locker,
		AuthorizedWriter: writer.Key,
		Mode:             ModeIdle,
	})
}

// writable loads the header for a writer-side instruction.
func (p *Program) writable(writer, buffer *host.AccountInfo) (*Header, error) {
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
	if hdr.IsLocked != 0 {
		return nil, ErrLocked
	}
	return &hdr, nil
}

func (p *Program) reinit(ctx *host.Context, accounts []*host.AccountInfo, args ReinitArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	hdr, err := p.writable(writer, buffer)
	if err != nil {
		return err
	}
	count := int(args.TotalMints)
	size := BufferLen(count)
	if err := common.EnsureLen(ctx, payer, buffer, size, ErrBufferTooSmall); err != nil {
		return err
	}
	body := buffer.Data()[HeaderSize:size]
	for i := range body {
		body[i] = 0
	}
	hdr.PendingMintsCount = args.TotalMints
	hdr.PendingMintGroupsCount = uint16(GroupCount(count))
	hdr.PendingMintsInitialized = 0
	hdr.Mode = ModeWriting
	if hdr.PendingMintGroupsCount == 0 {
		hdr.Mode = ModeReady
	}
	ctx.Logf("mint buffer %s sized for %d mints in %d groups", buffer.Key, count, hdr.PendingMintGroupsCount)
	return common.Store(buffer, hdr)
}

func (p *Program) resize(ctx *host.Context, accounts []*host.AccountInfo, args ResizeArgs) error {
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	payer, writer, buffer := accounts[0], accounts[1], accounts[2]
	if _, err := p.writable(writer, buffer); err != nil {
		return err
	}
	target := int(args.TargetSize)
	if target > BufferLen(MaxPendingMints) {
		return ErrTooManyMints
	}
	if reach := ctx.ReallocGrowth(buffer); target > reach {
		target = reach
	}
	return common.EnsureLen(ctx, payer, buffer, target, ErrBufferTooSmall)
}

func (p *Program) insert(ctx *host.Context, accounts []*host.AccountInfo, args InsertArgs, mintBytes []byte) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	writer, buffer := accounts[0], accounts[1]
	hdr, err := p.writable(writer, buffer)
	if err != nil {
		return err
	}
	group := int(args.GroupIndex)
	if group >= int(hdr.PendingMintGroupsCount) {
		return ErrGroupOutOfRange
	}
	count := int(hdr.PendingMintsCount)
	start, n := GroupBounds(count, group)
	if len(mintBytes) != n*MintRecordSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrMintBytesLength, len(mintBytes), n*MintRecordSize)
	}
	data := buffer.Data()
	if len(data) < BufferLen(count) {
		return ErrBufferTooSmall
	}
	groups := int(hdr.PendingMintGroupsCount)
	recordOff := HeaderSize + groups*GroupHashSize + start*MintRecordSize
	copy(data[recordOff:], mintBytes)

	slot := data[HeaderSize+group*GroupHashSize : HeaderSize+(group+1)*GroupHashSize]
	if types.BytesToH256(slot).IsZero() {
		hdr.PendingMintsInitialized++
	}
	hash := crypto.Sha256(mintBytes)
	copy(slot, hash[:])
	if hdr.PendingMintsInitialized == hdr.PendingMintGroupsCount {
		hdr.Mode = ModeReady
	}
	return common.Store(buffer, hdr)
}

func (p *Program) lockerHeader(accounts []*host.AccountInfo) (*host.AccountInfo, *Header, error) {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return nil, nil, err
	}
	locker, buffer := accounts[0], accounts[1]
	if !buffer.IsOwnedBy(p.id) {
		return nil, nil, ErrNotInitialized
	}
	var hdr Header
	if err := common.Load(buffer, &hdr); err != nil {
		return nil, nil, ErrNotInitialized
	}
	if !locker.IsSigner || !locker.Key.Equals(hdr.AuthorizedLocker) {
		return nil, nil, ErrUnauthorizedLocker
	}
	return buffer, &hdr, nil
}

func (p *Program) lock(ctx *host.Context, accounts []*host.AccountInfo) error {
	buffer, hdr, err := p.lockerHeader(accounts)
	if err != nil {
		return err
	}
	if hdr.IsLocked != 0 {
		return ErrAlreadyLocked
	}
	if hdr.PendingMintsInitialized != hdr.PendingMintGroupsCount {
		return ErrGroupsIncomplete
	}
	hdr.IsLocked = 1
	ctx.Logf("mint buffer %s locked", buffer.Key)
	return common.Store(buffer, hdr)
}

func (p *Program) unlock(ctx *host.Context, accounts []*host.AccountInfo) error {
	buffer, hdr, err := p.lockerHeader(accounts)
	if err != nil {
		return err
	}
	if hdr.IsLocked == 0 {
		return nil
	}
	hdr.IsLocked = 0
	ctx.Logf("mint buffer %s unlocked", buffer.Key)
	return common.Store(buffer, hdr)
}
