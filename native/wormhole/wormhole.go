// Package wormhole is the message emission shim. The bridge posts withdrawal
// payloads through it; every emitter gets a monotonic sequence kept in a
// program-derived account.
package wormhole

import (
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
)

const (
	InstructionPostMessage uint8 = 1

	// MaxPayloadSize bounds a posted payload.
	MaxPayloadSize = 64 * 1024

	sequenceSize = 8

	EventTypeMessagePublished = "wormhole.message_published"
)

var sequenceSeed = []byte("Sequence")

var (
	ErrInvalidInstruction      = host.NewError(6700, host.KindValidation, "wormhole: invalid instruction")
	ErrEmitterNotSigner        = host.NewError(6701, host.KindAuthorization, "wormhole: emitter must sign")
	ErrInvalidSequenceAccount  = host.NewError(6702, host.KindValidation, "wormhole: sequence account does not match emitter")
	ErrPayloadTooLarge         = host.NewError(6703, host.KindCapacity, "wormhole: payload too large")
	ErrSequenceAccountNotOwned = host.NewError(6704, host.KindValidation, "wormhole: sequence account not owned by the shim")
)

// PostMessageArgs precede the raw payload in PostMessage data.
type PostMessageArgs struct {
	Nonce       uint32
	Consistency uint8
	Padding     [3]uint8
}

// MessagePublished is emitted for every posted message.
type MessagePublished struct {
	Emitter     solana.PublicKey
	Sequence    uint64
	Nonce       uint32
	Consistency uint8
	Payload     []byte
}

func (MessagePublished) EventType() string { return EventTypeMessagePublished }

func (e MessagePublished) Event() *types.Event {
	return &types.Event{
		Type: EventTypeMessagePublished,
		Attributes: map[string]string{
			"emitter":     e.Emitter.String(),
			"sequence":    strconv.FormatUint(e.Sequence, 10),
			"nonce":       strconv.FormatUint(uint64(e.Nonce), 10),
			"consistency": strconv.FormatUint(uint64(e.Consistency), 10),
			"payload":     hex.EncodeToString(e.Payload),
		},
	}
}

// Program is the emission shim.
type Program struct {
	id solana.PublicKey
}

// NewProgram returns the shim deployed at id.
func NewProgram(id solana.PublicKey) *Program { return &Program{id: id} }

func (p *Program) ID() solana.PublicKey { return p.id }

func (p *Program) Name() string { return "wormhole" }

func (p *Program) InstructionName(data []byte) string {
	if len(data) > 0 && data[0] == InstructionPostMessage {
		return "post_message"
	}
	return ""
}

// SequenceAddress returns the sequence account of emitter.
func SequenceAddress(program, emitter solana.PublicKey) solana.PublicKey {
	addr, _ := common.Canonical(program, sequenceSeed, emitter[:])
	return addr
}

// PostMessage builds a PostMessage instruction. Accounts: payer (signer,
// writable), emitter (signer), sequence (writable).
func PostMessage(program, payer, emitter solana.PublicKey, nonce uint32, consistency uint8, payload []byte) (solana.Instruction, error) {
	return common.Instruction(program, InstructionPostMessage,
		&PostMessageArgs{Nonce: nonce, Consistency: consistency}, payload,
		common.WritableSigner(payer),
		common.Signer(emitter),
		common.Writable(SequenceAddress(program, emitter)),
	)
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	if disc != InstructionPostMessage {
		return ErrInvalidInstruction
	}
	if err := host.RequireAccounts(accounts, 3); err != nil {
		return err
	}
	var args PostMessageArgs
	payload, err := common.DecodeBody(body, &args)
	if err != nil {
		return err
	}
	if len(payload) > MaxPayloadSize {
		return ErrPayloadTooLarge
	}
	payer, emitter, sequence := accounts[0], accounts[1], accounts[2]
	if !emitter.IsSigner {
		return ErrEmitterNotSigner
	}
	bump, ok := common.IsCanonical(sequence.Key, p.id, sequenceSeed, emitter.Key[:])
	if !ok {
		return ErrInvalidSequenceAccount
	}
	if sequence.IsEmpty() {
		seeds := common.SignerSeeds(bump, sequenceSeed, emitter.Key[:])
		if err := ctx.CreateAccount(payer, sequence, sequenceSize, p.id, seeds); err != nil {
			return err
		}
	} else if !sequence.IsOwnedBy(p.id) || len(sequence.Data()) < sequenceSize {
		return ErrSequenceAccountNotOwned
	}

	next := binary.LittleEndian.Uint64(sequence.Data())
	binary.LittleEndian.PutUint64(sequence.Data(), next+1)
	ctx.Emit(MessagePublished{
		Emitter:     emitter.Key,
		Sequence:    next,
		Nonce:       args.Nonce,
		Consistency: args.Consistency,
		Payload:     append([]byte(nil), payload...),
	})
	ctx.Logf("message %d published by %s", next, emitter.Key)
	return nil
}
