package host

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/events"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

const (
	opCreate byte = iota
	opWrite
	opGrow
	opFail
	opInvokeSigned
	opRequireSigner
	opEmit
)

var errTestFailure = NewError(6999, KindValidation, "test: failure requested")

var vaultSeed = []byte("vault")

type pingEvent struct{}

func (pingEvent) EventType() string { return "test.ping" }

type testProgram struct {
	id     solana.PublicKey
	name   string
	callee solana.PublicKey
}

func (p testProgram) ID() solana.PublicKey { return p.id }

func (p testProgram) Name() string { return p.name }

func (p testProgram) vault() (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress([][]byte{vaultSeed}, p.id)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

func (p testProgram) Execute(ctx *Context, accounts []*AccountInfo, data []byte) error {
	if len(data) == 0 {
		return ErrInvalidInstructionData
	}
	switch data[0] {
	case opCreate:
		if err := RequireAccounts(accounts, 2); err != nil {
			return err
		}
		_, bump := p.vault()
		return ctx.CreateAccount(accounts[0], accounts[1], 8, p.id, [][]byte{vaultSeed, {bump}})
	case opWrite:
		accounts[0].Data()[0] = data[1]
	case opGrow:
		return ctx.Realloc(accounts[0], int(binary.LittleEndian.Uint32(data[1:5])))
	case opFail:
		accounts[0].Data()[0] = 0xff
		return errTestFailure
	case opInvokeSigned:
		_, bump := p.vault()
		ix := solana.NewInstruction(p.callee, solana.AccountMetaSlice{
			solana.NewAccountMeta(accounts[0].Key, true, true),
		}, data[1:])
		return ctx.Invoke(ix, [][]byte{vaultSeed, {bump}})
	case opRequireSigner:
		if !accounts[0].IsSigner {
			return ErrMissingRequiredSignature
		}
	case opEmit:
		ctx.Emit(pingEvent{})
	}
	return nil
}

type collector struct{ got []events.Event }

func (c *collector) Emit(evt events.Event) { c.got = append(c.got, evt) }

func newTestHost(t *testing.T) (*Host, testProgram, testProgram, solana.PublicKey) {
	t.Helper()
	h := New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	h.SetNowFunc(func() int64 { return 1_700_000_000 })
	caller := testProgram{id: DeriveProgramID("test-caller"), name: "caller", callee: DeriveProgramID("test-callee")}
	callee := testProgram{id: DeriveProgramID("test-callee"), name: "callee"}
	require.NoError(t, h.Register(caller))
	require.NoError(t, h.Register(callee))
	payer := solana.NewWallet().PublicKey()
	require.NoError(t, h.Airdrop(payer, 1_000_000_000))
	return h, caller, callee, payer
}

func createVault(t *testing.T, h *Host, p testProgram, payer solana.PublicKey) solana.PublicKey {
	t.Helper()
	vault, _ := p.vault()
	ix := solana.NewInstruction(p.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(vault, true, false),
	}, []byte{opCreate})
	_, err := h.Execute(context.Background(), NewTransaction([]solana.PublicKey{payer}, ix))
	require.NoError(t, err)
	return vault
}

func TestCreateAccountWithSeeds(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)

	acc, err := h.Account(vault)
	require.NoError(t, err)
	require.Equal(t, caller.id, acc.Owner)
	require.Len(t, acc.Data, 8)
	require.Equal(t, MinimumBalance(8), acc.Lamports)

	payerAcc, err := h.Account(payer)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000_000_000)-MinimumBalance(8), payerAcc.Lamports)
}

func TestMissingSignatureRejected(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault, _ := caller.vault()
	ix := solana.NewInstruction(caller.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(vault, true, false),
	}, []byte{opCreate})
	_, err := h.Execute(context.Background(), NewTransaction(nil, ix))
	require.ErrorIs(t, err, ErrMissingRequiredSignature)
}

func TestFailedInstructionRevertsWholeTransaction(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)
	meta := solana.AccountMetaSlice{solana.NewAccountMeta(vault, true, false)}

	write := solana.NewInstruction(caller.id, meta, []byte{opWrite, 7})
	fail := solana.NewInstruction(caller.id, meta, []byte{opFail})
	_, err := h.Execute(context.Background(), NewTransaction(nil, write, fail))
	require.ErrorIs(t, err, errTestFailure)

	var ixErr *InstructionError
	require.True(t, errors.As(err, &ixErr))
	require.Equal(t, 1, ixErr.Index)
	code, program, msg := ixErr.Code()
	require.Equal(t, uint32(6999), code)
	require.Equal(t, "caller", program)
	require.Equal(t, errTestFailure.Msg, msg)
	require.False(t, Retryable(err))

	acc, err := h.Account(vault)
	require.NoError(t, err)
	require.Equal(t, byte(0), acc.Data[0])
}

func TestReadonlyAndForeignWritesRejected(t *testing.T) {
	h, caller, callee, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)

	readonly := solana.NewInstruction(caller.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(vault, false, false),
	}, []byte{opWrite, 1})
	_, err := h.Execute(context.Background(), NewTransaction(nil, readonly))
	require.ErrorIs(t, err, ErrReadonlyDataModified)

	foreign := solana.NewInstruction(callee.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(vault, true, false),
	}, []byte{opWrite, 1})
	_, err = h.Execute(context.Background(), NewTransaction(nil, foreign))
	require.ErrorIs(t, err, ErrExternalAccountDataModified)
}

func TestInvokeGrantsProgramDerivedSigner(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)

	ix := solana.NewInstruction(caller.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(vault, true, false),
	}, []byte{opInvokeSigned, opRequireSigner})
	_, err := h.Execute(context.Background(), NewTransaction(nil, ix))
	require.NoError(t, err)

	// The callee does not own the vault, so writing through the invocation fails.
	ix = solana.NewInstruction(caller.id, solana.AccountMetaSlice{
		solana.NewAccountMeta(vault, true, false),
	}, []byte{opInvokeSigned, opWrite, 9})
	_, err = h.Execute(context.Background(), NewTransaction(nil, ix))
	require.ErrorIs(t, err, ErrExternalAccountDataModified)
	var ixErr *InstructionError
	require.True(t, errors.As(err, &ixErr))
	_, program, _ := ixErr.Code()
	require.Equal(t, "callee", program)
}

func TestReallocGrowthCapped(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)
	_, err := h.Execute(context.Background(), NewTransaction([]solana.PublicKey{payer},
		TransferInstruction(payer, vault, MinimumBalance(3*MaxPermittedDataIncrease))))
	require.NoError(t, err)

	grow := func(size int) solana.Instruction {
		data := make([]byte, 5)
		data[0] = opGrow
		binary.LittleEndian.PutUint32(data[1:], uint32(size))
		return solana.NewInstruction(caller.id, solana.AccountMetaSlice{solana.NewAccountMeta(vault, true, false)}, data)
	}
	_, err = h.Execute(context.Background(), NewTransaction(nil, grow(8+MaxPermittedDataIncrease+1)))
	require.ErrorIs(t, err, ErrInvalidRealloc)

	_, err = h.Execute(context.Background(), NewTransaction(nil, grow(8+MaxPermittedDataIncrease)))
	require.NoError(t, err)
	acc, err := h.Account(vault)
	require.NoError(t, err)
	require.Len(t, acc.Data, 8+MaxPermittedDataIncrease)

	_, err = h.Execute(context.Background(), NewTransaction(nil, grow(4*MaxPermittedDataIncrease)))
	require.ErrorIs(t, err, ErrInvalidRealloc)
}

func TestEventsDeliveredOnlyOnCommit(t *testing.T) {
	h, caller, _, payer := newTestHost(t)
	vault := createVault(t, h, caller, payer)
	sink := &collector{}
	h.SetEmitter(sink)
	meta := solana.AccountMetaSlice{solana.NewAccountMeta(vault, true, false)}

	_, err := h.Execute(context.Background(), NewTransaction(nil,
		solana.NewInstruction(caller.id, meta, []byte{opEmit}),
		solana.NewInstruction(caller.id, meta, []byte{opFail})))
	require.Error(t, err)
	require.Empty(t, sink.got)

	receipt, err := h.Execute(context.Background(), NewTransaction(nil,
		solana.NewInstruction(caller.id, meta, []byte{opEmit}),
		solana.NewInstruction(caller.id, meta, []byte{opWrite, 3})))
	require.NoError(t, err)
	require.Len(t, sink.got, 1)
	require.Len(t, receipt.Events, 1)
	require.Equal(t, 1, receipt.AccountsWritten)
	require.NotEqual(t, types.H256{}, receipt.DeltaHash)
}

func TestUnknownProgramAndRetryable(t *testing.T) {
	h, _, _, _ := newTestHost(t)
	ix := solana.NewInstruction(DeriveProgramID("missing"), nil, []byte{0})
	_, err := h.Execute(context.Background(), NewTransaction(nil, ix))
	require.ErrorIs(t, err, ErrUnknownProgram)
	require.False(t, Retryable(err))
	require.True(t, Retryable(errors.New("leveldb: closed")))
	require.False(t, Retryable(context.Canceled))
	require.False(t, Retryable(nil))
}

func TestMinimumBalance(t *testing.T) {
	require.Equal(t, uint64(128*3480*2), MinimumBalance(0))
	require.Equal(t, uint64((100+128)*3480*2), MinimumBalance(100))
}
