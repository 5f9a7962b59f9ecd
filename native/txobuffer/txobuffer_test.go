package txobuffer

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

type fixture struct {
	h       *host.Host
	program solana.PublicKey
	payer   solana.PublicKey
	writer  solana.PublicKey
	buffer  solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	f := &fixture{
		h:       h,
		program: host.DeriveProgramID("txo-buffer-test"),
		payer:   solana.NewWallet().PublicKey(),
		writer:  solana.NewWallet().PublicKey(),
	}
	require.NoError(t, h.Register(NewProgram(f.program)))
	require.NoError(t, h.Airdrop(f.payer, 100_000_000_000))
	f.buffer, _ = Address(f.program, f.writer)
	ix, err := Init(f.program, f.payer, f.writer)
	require.NoError(t, err)
	require.NoError(t, f.exec(ix))
	return f
}

func (f *fixture) exec(ixs ...solana.Instruction) error {
	_, err := f.h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{f.payer, f.writer}, ixs...))
	return err
}

func (f *fixture) view(t *testing.T) *View {
	t.Helper()
	acc, err := f.h.Account(f.buffer)
	require.NoError(t, err)
	v, err := Decode(f.buffer, acc.Data)
	require.NoError(t, err)
	return v
}

func indices(n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i*7 + 3)
	}
	return out
}

func TestFillFinalizesAndDigests(t *testing.T) {
	f := newFixture(t)
	idx := indices(500)
	body := EncodeIndices(idx)
	ixs, err := Fill(f.program, f.payer, f.writer, 1, 100, body)
	require.NoError(t, err)
	require.Len(t, ixs, 2+3)
	require.NoError(t, f.exec(ixs...))

	v := f.view(t)
	require.True(t, v.Finalized())
	require.Equal(t, uint32(100), v.Header.DogeBlockHeight)
	require.Equal(t, uint32(1), v.Header.BatchID)
	require.Equal(t, crypto.Sha256(body), v.Digest())
	require.Equal(t, idx, v.Indices())

	w, err := Write(f.program, f.writer, 1, 0, body[:4])
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(w), ErrFinalized)
}

func TestEmptyBody(t *testing.T) {
	f := newFixture(t)
	ixs, err := Fill(f.program, f.payer, f.writer, 1, 7, nil)
	require.NoError(t, err)
	require.NoError(t, f.exec(ixs...))
	v := f.view(t)
	require.True(t, v.Finalized())
	require.Equal(t, EmptyDigest, v.Digest())
}

func TestFinalizeRequiresTiling(t *testing.T) {
	f := newFixture(t)
	body := make([]byte, 2000)
	for i := range body {
		body[i] = byte(i)
	}
	begin, err := Begin(f.program, f.payer, f.writer, len(body), 3, 9)
	require.NoError(t, err)
	second, err := Write(f.program, f.writer, 3, 900, body[900:1800])
	require.NoError(t, err)
	last, err := Write(f.program, f.writer, 3, 1800, body[1800:])
	require.NoError(t, err)
	finalize, err := Finalize(f.program, f.payer, f.writer, len(body), 3, 9)
	require.NoError(t, err)

	require.NoError(t, f.exec(begin, last, second))
	require.ErrorIs(t, f.exec(finalize), ErrIncomplete)

	first, err := Write(f.program, f.writer, 3, 0, body[:900])
	require.NoError(t, err)
	require.NoError(t, f.exec(first, finalize))
	require.Equal(t, crypto.Sha256(body), f.view(t).Digest())
}

func TestBatchGuards(t *testing.T) {
	f := newFixture(t)
	begin, err := Begin(f.program, f.payer, f.writer, 8, 2, 50)
	require.NoError(t, err)
	require.NoError(t, f.exec(begin))

	wrongBatch, err := Write(f.program, f.writer, 1, 0, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(wrongBatch), ErrBatchMismatch)

	outside, err := Write(f.program, f.writer, 2, 6, []byte{1, 2, 3, 4})
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(outside), ErrOutOfBounds)

	tooBig, err := Write(f.program, f.writer, 2, 0, make([]byte, MaxChunkSize+1))
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(tooBig), ErrChunkTooLarge)

	wrongHeight, err := Finalize(f.program, f.payer, f.writer, 8, 2, 51)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(wrongHeight), ErrHeightMismatch)
}

func TestReuseAcrossBlocks(t *testing.T) {
	f := newFixture(t)
	first, err := Fill(f.program, f.payer, f.writer, 1, 10, EncodeIndices(indices(10)))
	require.NoError(t, err)
	require.NoError(t, f.exec(first...))

	stale, err := Begin(f.program, f.payer, f.writer, 4, 1, 11)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(stale), ErrStaleBatch)

	body := EncodeIndices(indices(3))
	second, err := Fill(f.program, f.payer, f.writer, 2, 11, body)
	require.NoError(t, err)
	require.NoError(t, f.exec(second...))
	v := f.view(t)
	require.Equal(t, uint32(11), v.Header.DogeBlockHeight)
	require.Equal(t, DigestOf(body), v.Digest())
}

func TestShrinkKeepsCoverage(t *testing.T) {
	f := newFixture(t)
	begin, err := Begin(f.program, f.payer, f.writer, 16, 1, 5)
	require.NoError(t, err)
	w, err := Write(f.program, f.writer, 1, 0, []byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	shrink, err := SetLen(f.program, f.payer, f.writer, SetLenArgs{Len: 8, BatchID: 1, DogeBlockHeight: 5, IsFinalize: 1})
	require.NoError(t, err)
	require.NoError(t, f.exec(begin, w, shrink))
	require.Equal(t, DigestOf([]byte{1, 2, 3, 4, 5, 6, 7, 8}), f.view(t).Digest())
}

func TestOnlyWriterMayWrite(t *testing.T) {
	f := newFixture(t)
	impostor := solana.NewWallet().PublicKey()
	ix, err := Write(f.program, impostor, 0, 0, nil)
	require.NoError(t, err)
	// The impostor's own buffer address does not exist.
	_, err = f.h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{impostor}, ix))
	require.ErrorIs(t, err, ErrNotInitialized)

	again, err := Init(f.program, f.payer, f.writer)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(again), ErrAlreadyInitialized)
}

func TestLargeBodyNeedsResize(t *testing.T) {
	f := newFixture(t)
	size := 12_000
	begin, err := Begin(f.program, f.payer, f.writer, size, 1, 1)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(begin), ErrBufferTooSmall)

	resize, err := Resize(f.program, f.payer, f.writer, uint32(AccountLen(size)))
	require.NoError(t, err)
	require.NoError(t, f.exec(resize))
	require.NoError(t, f.exec(resize))
	require.NoError(t, f.exec(begin))
}
