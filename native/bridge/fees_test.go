package bridge

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

var testFees = FeeConfig{
	DepositFeeFlatSats:           1000,
	DepositFeeRateNumerator:      2,
	DepositFeeRateDenominator:    100,
	WithdrawalFeeFlatSats:        1000,
	WithdrawalFeeRateNumerator:   2,
	WithdrawalFeeRateDenominator: 100,
}

func TestDepositFee(t *testing.T) {
	fee, net, err := testFees.DepositFee(500_000_000)
	require.NoError(t, err)
	require.Equal(t, uint64(10_001_000), fee)
	require.Equal(t, uint64(489_999_000), net)

	_, _, err = testFees.DepositFee(1000)
	require.ErrorIs(t, err, ErrInvalidDepositAmount)
}

func TestWithdrawalFeeBoundary(t *testing.T) {
	// flat + flat*num/denom = 1020 is the largest rejected amount.
	_, _, err := testFees.WithdrawalFee(1020)
	require.ErrorIs(t, err, ErrInvalidWithdrawalAmount)
	fee, net, err := testFees.WithdrawalFee(1021)
	require.NoError(t, err)
	require.Equal(t, uint64(1020), fee)
	require.Equal(t, uint64(1), net)

	huge := FeeConfig{WithdrawalFeeRateNumerator: 1, WithdrawalFeeRateDenominator: 1, DepositFeeRateDenominator: 1}
	_, _, err = huge.WithdrawalFee(math.MaxUint64)
	require.ErrorIs(t, err, ErrInvalidWithdrawalAmount)

	half := FeeConfig{WithdrawalFeeRateNumerator: 1, WithdrawalFeeRateDenominator: 2}
	fee, net, err = half.WithdrawalFee(math.MaxUint64)
	require.NoError(t, err)
	require.Equal(t, uint64(math.MaxUint64/2), fee)
	require.Equal(t, uint64(math.MaxUint64)-fee, net)
}

func TestFeeConfigValidate(t *testing.T) {
	require.NoError(t, testFees.Validate())
	bad := testFees
	bad.DepositFeeRateDenominator = 0
	require.ErrorIs(t, bad.Validate(), ErrInvalidFeeConfig)
	bad = testFees
	bad.WithdrawalFeeRateNumerator = 101
	require.ErrorIs(t, bad.Validate(), ErrInvalidFeeConfig)
}

func TestCombinedTxoIndex(t *testing.T) {
	combined := CombinedTxoIndex(812_345, 17, 3)
	require.Equal(t, uint64(812_345)<<32|17<<16|3, combined)
	height, tx, out := SplitTxoIndex(combined)
	require.Equal(t, uint32(812_345), height)
	require.Equal(t, uint16(17), tx)
	require.Equal(t, uint16(3), out)
}

func TestLeafLayouts(t *testing.T) {
	recipient := types.H160{0xaa, 0xbb}
	leaf := WithdrawalLeaf(recipient, 1, 391_999_000)
	require.Equal(t, recipient[:], leaf[:20])
	require.Equal(t, uint32(1), binary.LittleEndian.Uint32(leaf[20:24]))
	require.Equal(t, uint64(391_999_000), binary.LittleEndian.Uint64(leaf[24:]))

	txHash := crypto.Sha256([]byte("tx"))
	ata := solana.NewWallet().PublicKey()
	var tail [16]byte
	binary.LittleEndian.PutUint64(tail[:8], 42)
	binary.LittleEndian.PutUint64(tail[8:], 7)
	want := crypto.Sha256(append(append(txHash.Bytes(), ata[:]...), tail[:]...))
	require.Equal(t, want, DepositLeaf(txHash, ata, 42, 7))
}

func TestPublicInputs(t *testing.T) {
	var prev, next BridgeHeader
	next.FinalizedState.BlockHeight = 1
	custodian := CustodianWalletConfig{WalletAddressHash: types.H160{9}}
	prevHash, nextHash := prev.Hash(), next.Hash()
	configHash, custodianHash := testFees.Hash(), custodian.Hash()
	transition := crypto.Sha256(prevHash[:], nextHash[:])
	want := crypto.Sha256(transition[:], configHash[:], custodianHash[:])
	require.Equal(t, want, BlockUpdatePublicInputs(&prev, &next, &testFees, &custodian))
	require.Equal(t, crypto.Sha256(pod.MustEncode(&next)), nextHash)

	infos := []FinalizedBlockMintTxoInfo{
		{PendingMintsFinalizedHash: types.H256{1}, TxoOutputListFinalizedHash: types.H256{2}},
		{PendingMintsFinalizedHash: types.H256{3}, TxoOutputListFinalizedHash: types.H256{4}},
	}
	var acc types.H256
	for _, info := range infos {
		entry := crypto.Sha256(info.PendingMintsFinalizedHash[:], info.TxoOutputListFinalizedHash[:])
		acc = crypto.Sha256(acc[:], entry[:])
	}
	require.Equal(t, acc, BacklogHash(infos))
	require.Equal(t, types.H256{}, BacklogHash(nil))
	require.NotEqual(t, BlockUpdatePublicInputs(&prev, &next, &testFees, &custodian),
		ReorgPublicInputs(&prev, &next, infos, &testFees, &custodian))

	snapshot := WithdrawalSnapshot{BlockHeight: 4, NextRequestedWithdrawalsTreeIndex: 2}
	a := WithdrawalPublicInputs(&snapshot, &ReturnTxOutput{}, &ReturnTxOutput{AmountSats: 1}, types.H256{}, types.H256{1}, 1)
	b := WithdrawalPublicInputs(&snapshot, &ReturnTxOutput{}, &ReturnTxOutput{AmountSats: 1}, types.H256{}, types.H256{1}, 2)
	require.NotEqual(t, a, b)
}

func TestBridgeStateRoundTrip(t *testing.T) {
	args := &InitializeArgs{
		Operator: solana.NewWallet().PublicKey(),
		DogeMint: solana.NewWallet().PublicKey(),
		Config:   testFees,
	}
	args.Header.FinalizedState.BlockHeight = 41
	st := newState(args, 254)
	encoded := pod.MustEncode(st)
	require.Len(t, encoded, BridgeStateSize)
	decoded, err := Decode(encoded)
	require.NoError(t, err)
	require.Equal(t, st, decoded)
	require.Equal(t, encoded, pod.MustEncode(decoded))
	require.Equal(t, uint32(42), decoded.PendingMintTxos.StartBlockHeight)

	_, err = Decode(encoded[1:])
	require.ErrorIs(t, err, ErrNotInitialized)
}
