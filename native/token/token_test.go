package token

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

type fixture struct {
	h         *host.Host
	payer     solana.PublicKey
	mint      solana.PublicKey
	authority solana.PublicKey
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	require.NoError(t, h.Register(NewProgram()))
	require.NoError(t, h.Register(NewAssociatedProgram()))
	f := &fixture{
		h:         h,
		payer:     solana.NewWallet().PublicKey(),
		mint:      solana.NewWallet().PublicKey(),
		authority: solana.NewWallet().PublicKey(),
	}
	require.NoError(t, h.Airdrop(f.payer, 10_000_000_000))
	require.NoError(t, f.exec(t, []solana.PublicKey{f.payer, f.mint},
		host.CreateAccountInstruction(f.payer, f.mint, MintSize, ProgramID),
		InitializeMint(f.mint, f.authority, 8)))
	return f
}

func (f *fixture) exec(t *testing.T, signers []solana.PublicKey, ixs ...solana.Instruction) error {
	t.Helper()
	_, err := f.h.Execute(context.Background(), host.NewTransaction(signers, ixs...))
	return err
}

func (f *fixture) wallet(t *testing.T) (solana.PublicKey, solana.PublicKey) {
	t.Helper()
	owner := solana.NewWallet().PublicKey()
	require.NoError(t, f.exec(t, []solana.PublicKey{f.payer}, CreateAssociatedAccount(f.payer, owner, f.mint, false)))
	return owner, AssociatedAddress(owner, f.mint)
}

func (f *fixture) balance(t *testing.T, key solana.PublicKey) uint64 {
	t.Helper()
	acc, err := f.h.Account(key)
	require.NoError(t, err)
	decoded, err := DecodeAccount(acc.Data)
	require.NoError(t, err)
	return decoded.Amount
}

func (f *fixture) supply(t *testing.T) uint64 {
	t.Helper()
	acc, err := f.h.Account(f.mint)
	require.NoError(t, err)
	decoded, err := DecodeMint(acc.Data)
	require.NoError(t, err)
	return decoded.Supply
}

func TestLayoutSizes(t *testing.T) {
	m, err := DecodeMint(make([]byte, MintSize))
	require.NoError(t, err)
	require.Zero(t, m.Supply)
	_, err = DecodeAccount(make([]byte, AccountSize))
	require.NoError(t, err)
	_, err = DecodeAccount(make([]byte, AccountSize-1))
	require.ErrorIs(t, err, ErrInvalidAccountData)
}

func TestMintBurnTransfer(t *testing.T) {
	f := newFixture(t)
	owner, ata := f.wallet(t)
	other, otherAta := f.wallet(t)

	require.NoError(t, f.exec(t, []solana.PublicKey{f.authority}, MintTo(f.mint, ata, f.authority, 1_000)))
	require.Equal(t, uint64(1_000), f.balance(t, ata))
	require.Equal(t, uint64(1_000), f.supply(t))

	require.NoError(t, f.exec(t, []solana.PublicKey{owner}, Transfer(ata, otherAta, owner, 400)))
	require.Equal(t, uint64(600), f.balance(t, ata))
	require.Equal(t, uint64(400), f.balance(t, otherAta))

	require.NoError(t, f.exec(t, []solana.PublicKey{other}, Burn(otherAta, f.mint, other, 150)))
	require.Equal(t, uint64(250), f.balance(t, otherAta))
	require.Equal(t, uint64(850), f.supply(t))

	err := f.exec(t, []solana.PublicKey{owner}, Burn(ata, f.mint, owner, 601))
	require.ErrorIs(t, err, ErrInsufficientFunds)
}

func TestMintToRequiresAuthority(t *testing.T) {
	f := newFixture(t)
	impostor := solana.NewWallet().PublicKey()
	_, ata := f.wallet(t)
	err := f.exec(t, []solana.PublicKey{impostor}, MintTo(f.mint, ata, impostor, 1))
	require.ErrorIs(t, err, ErrOwnerMismatch)
}

func TestAssociatedAccountCreation(t *testing.T) {
	f := newFixture(t)
	owner, ata := f.wallet(t)

	acc, err := f.h.Account(ata)
	require.NoError(t, err)
	require.Equal(t, ProgramID, acc.Owner)
	decoded, err := DecodeAccount(acc.Data)
	require.NoError(t, err)
	require.Equal(t, owner, decoded.Owner)
	require.Equal(t, f.mint, decoded.Mint)
	require.Equal(t, AccountStateInitialized, decoded.State)

	err = f.exec(t, []solana.PublicKey{f.payer}, CreateAssociatedAccount(f.payer, owner, f.mint, false))
	require.ErrorIs(t, err, ErrAssociatedAccountExists)
	require.NoError(t, f.exec(t, []solana.PublicKey{f.payer}, CreateAssociatedAccount(f.payer, owner, f.mint, true)))
}
