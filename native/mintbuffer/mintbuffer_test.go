package mintbuffer

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
	locker  solana.PublicKey
	buffer  solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	f := &fixture{
		h:       h,
		program: host.DeriveProgramID("mint-buffer-test"),
		payer:   solana.NewWallet().PublicKey(),
		writer:  solana.NewWallet().PublicKey(),
		locker:  solana.NewWallet().PublicKey(),
	}
	require.NoError(t, h.Register(NewProgram(f.program)))
	require.NoError(t, h.Airdrop(f.payer, 100_000_000_000))
	f.buffer, _ = Address(f.program, f.writer)
	ix, err := Setup(f.program, f.payer, f.writer, f.locker)
	require.NoError(t, err)
	require.NoError(t, f.exec(ix))
	return f
}

func (f *fixture) exec(ixs ...solana.Instruction) error {
	_, err := f.h.Execute(context.Background(), host.NewTransaction(
		[]solana.PublicKey{f.payer, f.writer, f.locker}, ixs...))
	return err
}

func (f *fixture) view(t *testing.T) *View {
	t.Helper()
	acc, err := f.h.Account(f.buffer)
	require.NoError(t, err)
	require.Equal(t, f.program, acc.Owner)
	v, err := Decode(f.buffer, acc.Data)
	require.NoError(t, err)
	return v
}

func makeMints(n int, amount uint64) []MintRecord {
	out := make([]MintRecord, n)
	for i := range out {
		out[i] = MintRecord{Recipient: crypto.Sha256([]byte{byte(i), byte(i >> 8)}), Amount: amount + uint64(i)}
	}
	return out
}

func TestGroupBoundaries(t *testing.T) {
	require.Equal(t, 0, GroupCount(0))
	require.Equal(t, 1, GroupCount(24))
	require.Equal(t, 2, GroupCount(25))
	require.Equal(t, EmptyDigest, Digest(nil))
	require.Equal(t, crypto.Sha256([]byte{0, 0}), EmptyDigest)
	start, n := GroupBounds(30, 1)
	require.Equal(t, 24, start)
	require.Equal(t, 6, n)
}

func TestFillAndLockCycle(t *testing.T) {
	f := newFixture(t)
	mints := makeMints(30, 1_000)
	ixs, err := Fill(f.program, f.payer, f.writer, mints)
	require.NoError(t, err)
	require.Len(t, ixs, 3)
	require.NoError(t, f.exec(ixs...))

	v := f.view(t)
	require.Equal(t, 30, v.Count())
	require.Equal(t, 2, v.Groups())
	require.True(t, v.Complete())
	require.Equal(t, ModeReady, v.Header.Mode)
	require.Equal(t, Digest(mints), v.Digest())
	group, err := v.Group(1)
	require.NoError(t, err)
	require.Equal(t, mints[24:], group)

	lock, err := Lock(f.program, f.locker, f.buffer)
	require.NoError(t, err)
	require.NoError(t, f.exec(lock))
	require.ErrorIs(t, f.exec(lock), ErrAlreadyLocked)

	insert, err := Insert(f.program, f.writer, 0, mints[:24])
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(insert), ErrLocked)
	reinit, err := Reinit(f.program, f.payer, f.writer, 1)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(reinit), ErrLocked)

	unlock, err := Unlock(f.program, f.locker, f.buffer)
	require.NoError(t, err)
	require.NoError(t, f.exec(unlock))
	require.NoError(t, f.exec(unlock))
	require.Equal(t, uint8(0), f.view(t).Header.IsLocked)
}

func TestLockRequiresEveryGroup(t *testing.T) {
	f := newFixture(t)
	mints := makeMints(25, 5)
	ixs, err := Fill(f.program, f.payer, f.writer, mints)
	require.NoError(t, err)
	// Reinit plus only the second group.
	require.NoError(t, f.exec(ixs[0], ixs[2]))
	lock, err := Lock(f.program, f.locker, f.buffer)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(lock), ErrGroupsIncomplete)

	// Rewriting a group does not double count it.
	require.NoError(t, f.exec(ixs[2]))
	require.Equal(t, uint16(1), f.view(t).Header.PendingMintsInitialized)
	require.NoError(t, f.exec(ixs[1]))
	require.NoError(t, f.exec(lock))
}

func TestOnlyAuthorizedLockerAndWriter(t *testing.T) {
	f := newFixture(t)
	impostor := solana.NewWallet().PublicKey()
	lock, err := Lock(f.program, impostor, f.buffer)
	require.NoError(t, err)
	_, err = f.h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{impostor}, lock))
	require.ErrorIs(t, err, ErrUnauthorizedLocker)

	ix, err := Insert(f.program, f.writer, 0, nil)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(ix), ErrGroupOutOfRange)
}

func TestInsertRejectsWrongLength(t *testing.T) {
	f := newFixture(t)
	mints := makeMints(3, 1)
	ixs, err := Fill(f.program, f.payer, f.writer, mints)
	require.NoError(t, err)
	require.NoError(t, f.exec(ixs[0]))
	short, err := Insert(f.program, f.writer, 0, mints[:2])
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(short), ErrMintBytesLength)
}

func TestLargeBufferNeedsResize(t *testing.T) {
	f := newFixture(t)
	mints := makeMints(300, 1)
	require.Greater(t, BufferLen(300), HeaderSize+host.MaxPermittedDataIncrease)

	reinit, err := Reinit(f.program, f.payer, f.writer, 300)
	require.NoError(t, err)
	require.ErrorIs(t, f.exec(reinit), ErrBufferTooSmall)

	resize, err := Resize(f.program, f.payer, f.writer, uint32(BufferLen(300)))
	require.NoError(t, err)
	require.NoError(t, f.exec(resize))
	require.NoError(t, f.exec(resize))

	ixs, err := Fill(f.program, f.payer, f.writer, mints)
	require.NoError(t, err)
	require.NoError(t, f.exec(ixs...))
	v := f.view(t)
	require.Equal(t, Digest(mints), v.Digest())

	acc, err := f.h.Account(f.buffer)
	require.NoError(t, err)
	require.GreaterOrEqual(t, acc.Lamports, host.MinimumBalance(len(acc.Data)))
}

func TestEmptyBufferDigest(t *testing.T) {
	f := newFixture(t)
	reinit, err := Reinit(f.program, f.payer, f.writer, 0)
	require.NoError(t, err)
	require.NoError(t, f.exec(reinit))
	v := f.view(t)
	require.Equal(t, EmptyDigest, v.Digest())
	require.True(t, v.Complete())
	require.Equal(t, ModeReady, v.Header.Mode)
}
