package managerset

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

func testKeys(t *testing.T) []crypto.CompressedPubKey {
	t.Helper()
	keys := make([]crypto.CompressedPubKey, Keys)
	for i := range keys {
		priv, err := crypto.GeneratePrivateKey()
		require.NoError(t, err)
		keys[i] = priv.PubKey().Compressed()
	}
	return keys
}

func newHost(t *testing.T) (*host.Host, solana.PublicKey, solana.PublicKey) {
	t.Helper()
	h := host.New(storage.NewMemDB())
	h.SetLogger(logging.Discard())
	program := host.DeriveProgramID("manager-set-test")
	require.NoError(t, h.Register(NewProgram(program)))
	payer := solana.NewWallet().PublicKey()
	require.NoError(t, h.Airdrop(payer, 10_000_000_000))
	return h, program, payer
}

func install(h *host.Host, program, payer solana.PublicKey, chainID uint16, index uint32, data []byte) error {
	ix, err := SetManagerSetInstruction(program, payer, chainID, index, data)
	if err != nil {
		return err
	}
	_, err = h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{payer}, ix))
	return err
}

func TestSetDataLayout(t *testing.T) {
	keys := testKeys(t)
	data, err := EncodeSetData(keys)
	require.NoError(t, err)
	require.Len(t, data, 234)
	require.Equal(t, []byte{0x01, 0x05, 0x07}, data[:3])

	parsed, err := ParseSetData(data)
	require.NoError(t, err)
	require.Equal(t, keys, parsed)

	bad := append([]byte(nil), data...)
	bad[1] = 0x04
	_, err = ParseSetData(bad)
	require.ErrorIs(t, err, ErrInvalidSetData)

	offCurve := append([]byte(nil), data...)
	offCurve[3] = 0x05
	_, err = ParseSetData(offCurve)
	require.ErrorIs(t, err, ErrInvalidSetData)

	_, err = EncodeSetData(keys[:6])
	require.ErrorIs(t, err, ErrInvalidSetData)
}

func TestCustodianHash(t *testing.T) {
	keys := testKeys(t)
	data, err := EncodeSetData(keys)
	require.NoError(t, err)
	script := RedeemScript(keys)
	require.Len(t, script, 1+7*34+2)
	require.Equal(t, byte(0x55), script[0])
	require.Equal(t, byte(0x21), script[1])
	require.Equal(t, []byte{0x57, 0xae}, script[len(script)-2:])

	hash, err := CustodianHash(data)
	require.NoError(t, err)
	require.Equal(t, crypto.Hash160(script), hash)
}

func TestDiscriminators(t *testing.T) {
	sum := crypto.Sha256([]byte("account:ManagerSet"))
	require.Equal(t, sum[:8], SetDiscriminator[:])
	require.NotEqual(t, IndexDiscriminator, SetDiscriminator)
}

func TestInstallAndRotate(t *testing.T) {
	h, program, payer := newHost(t)
	first, err := EncodeSetData(testKeys(t))
	require.NoError(t, err)
	require.NoError(t, install(h, program, payer, 3, 0, first))

	indexAddr, _ := IndexAddress(program, 3)
	acc, err := h.Account(indexAddr)
	require.NoError(t, err)
	require.Len(t, acc.Data, IndexAccountSize)
	idx, err := DecodeIndex(acc.Data)
	require.NoError(t, err)
	require.Equal(t, ManagerSetIndex{ManagerChainID: 3, CurrentIndex: 0}, *idx)

	second, err := EncodeSetData(testKeys(t))
	require.NoError(t, err)
	require.NoError(t, install(h, program, payer, 3, 1, second))

	setAddr, _ := SetAddress(program, 3, 1)
	acc, err = h.Account(setAddr)
	require.NoError(t, err)
	require.Len(t, acc.Data, SetAccountSize)
	set, err := DecodeSet(acc.Data)
	require.NoError(t, err)
	require.Equal(t, uint32(1), set.Index)
	require.Equal(t, second, set.ManagerSet)

	acc, err = h.Account(indexAddr)
	require.NoError(t, err)
	idx, err = DecodeIndex(acc.Data)
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx.CurrentIndex)

	// Installed sets are immutable.
	require.ErrorIs(t, install(h, program, payer, 3, 1, first), ErrSetExists)
}

func TestIndexOnlyMovesForward(t *testing.T) {
	h, program, payer := newHost(t)
	data, err := EncodeSetData(testKeys(t))
	require.NoError(t, err)
	require.NoError(t, install(h, program, payer, 1, 5, data))
	require.ErrorIs(t, install(h, program, payer, 1, 4, data), ErrIndexNotIncreasing)
	// Chains are independent.
	require.NoError(t, install(h, program, payer, 2, 4, data))
}

func TestRejectsWrongAddresses(t *testing.T) {
	h, program, payer := newHost(t)
	data, err := EncodeSetData(testKeys(t))
	require.NoError(t, err)
	indexAddr, _ := IndexAddress(program, 1)
	wrongSet, _ := SetAddress(program, 1, 9)
	ix := solana.NewInstruction(program, solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(indexAddr, true, false),
		solana.NewAccountMeta(wrongSet, true, false),
	}, mustData(t, 1, 0, data))
	_, err = h.Execute(context.Background(), host.NewTransaction([]solana.PublicKey{payer}, ix))
	require.ErrorIs(t, err, ErrInvalidSetPDA)

	require.ErrorIs(t, install(h, program, payer, 1, 0, data[:200]), ErrInvalidSetData)
}

func mustData(t *testing.T, chainID uint16, index uint32, data []byte) []byte {
	t.Helper()
	ix, err := SetManagerSetInstruction(solana.PublicKey{}, solana.PublicKey{}, chainID, index, data)
	require.NoError(t, err)
	raw, err := ix.Data()
	require.NoError(t, err)
	return raw
}
