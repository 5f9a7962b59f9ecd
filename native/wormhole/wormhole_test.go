package wormhole

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

func TestPostMessageSequences(t *testing.T) {
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	programID := host.DeriveProgramID("wormhole-test")
	require.NoError(t, h.Register(NewProgram(programID)))
	payer := solana.NewWallet().PublicKey()
	emitter := solana.NewWallet().PublicKey()
	require.NoError(t, h.Airdrop(payer, 1_000_000_000))

	for want := uint64(0); want < 3; want++ {
		ix, err := PostMessage(programID, payer, emitter, 7, 1, []byte{byte(want), 0xaa})
		require.NoError(t, err)
		receipt, err := h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{payer, emitter}, ix))
		require.NoError(t, err)
		require.Len(t, receipt.Events, 1)
		msg := receipt.Events[0].(MessagePublished)
		require.Equal(t, want, msg.Sequence)
		require.Equal(t, emitter, msg.Emitter)
		require.Equal(t, []byte{byte(want), 0xaa}, msg.Payload)
		require.Equal(t, "1", msg.Event().Attributes["consistency"])
	}
}

func TestPostMessageRequiresEmitterSignature(t *testing.T) {
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	programID := host.DeriveProgramID("wormhole-test")
	require.NoError(t, h.Register(NewProgram(programID)))
	payer := solana.NewWallet().PublicKey()
	emitter := solana.NewWallet().PublicKey()
	require.NoError(t, h.Airdrop(payer, 1_000_000_000))

	seq := SequenceAddress(programID, emitter)
	ix := solana.NewInstruction(programID, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(emitter, false, false),
		solana.NewAccountMeta(seq, true, false),
	}, []byte{InstructionPostMessage, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 1, 0, 0, 0})
	_, err := h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{payer}, ix))
	require.ErrorIs(t, err, ErrEmitterNotSigner)
}
