package manualclaim_test

import (
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto/merkle"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge/bridgetest"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/manualclaim"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
)

const depositSats = 250_000_000

type claimer struct {
	h    *bridgetest.Harness
	user solana.PublicKey
	ata  solana.PublicKey
}

func newClaimer(t *testing.T) *claimer {
	h := bridgetest.New(t)
	user, ata := h.Wallet()
	return &claimer{h: h, user: user, ata: ata}
}

// args builds a proven claim moving the user's root from oldRoot to newRoot.
func (c *claimer) args(oldRoot, newRoot types.H256) *manualclaim.ManualClaimArgs {
	st := c.h.BridgeState()
	args := &manualclaim.ManualClaimArgs{
		RecentBlockMerkleTreeRoot: st.Header.FinalizedState.BlockMerkleTreeRoot,
		RecentAutoClaimTxoRoot:    st.Header.FinalizedState.AutoClaimedTxoTreeRoot,
		NewManualClaimTxoRoot:     newRoot,
		TxHash:                    crypto.Sha256([]byte("deposit tx")),
		CombinedTxoIndex:          bridge.CombinedTxoIndex(7, 2, 1),
		DepositAmountSats:         depositSats,
	}
	leaf := bridge.DepositLeaf(args.TxHash, c.ata, args.CombinedTxoIndex, args.DepositAmountSats)
	inputs := manualclaim.PublicInputs(args.RecentBlockMerkleTreeRoot, args.RecentAutoClaimTxoRoot, oldRoot, newRoot, leaf)
	args.Proof = c.h.Prover.MustProve(inputs)
	return args
}

func (c *claimer) claim(args *manualclaim.ManualClaimArgs) error {
	ix, err := manualclaim.ManualClaim(c.h.IDs, c.user, c.h.Mint, args)
	require.NoError(c.h.T, err)
	return c.h.Exec([]solana.PublicKey{c.user}, ix)
}

func (c *claimer) state(t *testing.T) *manualclaim.ClaimState {
	addr, _ := manualclaim.Address(c.h.IDs.ManualClaim, c.user)
	acc, err := c.h.Host.Account(addr)
	require.NoError(t, err)
	st, err := manualclaim.Decode(acc.Data)
	require.NoError(t, err)
	return st
}

func TestManualClaimMintsNetDeposit(t *testing.T) {
	c := newClaimer(t)
	empty := merkle.ZeroHash(manualclaim.TreeHeight)
	newRoot := crypto.Sha256([]byte("root after first claim"))

	args := c.args(empty, newRoot)
	ix, err := manualclaim.ManualClaim(c.h.IDs, c.user, c.h.Mint, args)
	require.NoError(t, err)
	receipt, err := c.h.Receipt([]solana.PublicKey{c.user}, ix)
	require.NoError(t, err)

	fee, net, err := bridgetest.DefaultFees.DepositFee(depositSats)
	require.NoError(t, err)
	require.Equal(t, uint64(depositSats), fee+net)
	require.Equal(t, net, c.h.Balance(c.ata))

	st := c.state(t)
	require.Equal(t, newRoot, st.ManualClaimedTxoTreeRoot)
	require.True(t, st.User.Equals(c.user))

	bs := c.h.BridgeState()
	require.Equal(t, uint64(1), bs.ManualClaimDepositsNextIndex)
	leaf := bridge.DepositLeaf(args.TxHash, c.ata, args.CombinedTxoIndex, depositSats)
	tree, err := merkle.NewTree(bridge.ManualDepositsTreeHeight, []types.H256{leaf})
	require.NoError(t, err)
	require.Equal(t, tree.Root(), bs.ManualClaimDepositsTreeRoot)
	// Manual deposit fees never become withdrawable.
	require.Zero(t, bs.AvailableFees())

	claimAddr, _ := manualclaim.Address(c.h.IDs.ManualClaim, c.user)
	var found bool
	for _, evt := range receipt.Events {
		if claimed, ok := evt.(bridge.ManualDepositClaimed); ok {
			found = true
			require.True(t, claimed.Depositor.Equals(c.user))
			require.True(t, claimed.Claimer.Equals(claimAddr))
			require.Equal(t, uint64(depositSats), claimed.DepositAmountSats)
		}
	}
	require.True(t, found)

	// Replaying the claim cannot move the root again.
	require.ErrorIs(t, c.claim(args), manualclaim.ErrRootUnchanged)
	second := crypto.Sha256([]byte("root after second claim"))
	require.ErrorIs(t, c.claim(c.args(empty, second)), manualclaim.ErrManualClaimZKP)
	require.Equal(t, net, c.h.Balance(c.ata))

	require.NoError(t, c.claim(c.args(newRoot, second)))
	require.Equal(t, 2*net, c.h.Balance(c.ata))
	require.Equal(t, second, c.state(t).ManualClaimedTxoTreeRoot)
}

func TestManualClaimRejectsUnchangedRoot(t *testing.T) {
	c := newClaimer(t)
	empty := merkle.ZeroHash(manualclaim.TreeHeight)
	require.ErrorIs(t, c.claim(c.args(empty, empty)), manualclaim.ErrRootUnchanged)
	require.Zero(t, c.h.Balance(c.ata))
}

func TestManualClaimRejectsStaleRoots(t *testing.T) {
	c := newClaimer(t)
	args := c.args(merkle.ZeroHash(manualclaim.TreeHeight), crypto.Sha256([]byte("next")))
	args.RecentBlockMerkleTreeRoot = crypto.Sha256([]byte("old block root"))
	require.ErrorIs(t, c.claim(args), manualclaim.ErrStaleRoots)

	args = c.args(merkle.ZeroHash(manualclaim.TreeHeight), crypto.Sha256([]byte("next")))
	args.RecentAutoClaimTxoRoot = crypto.Sha256([]byte("old txo root"))
	require.ErrorIs(t, c.claim(args), manualclaim.ErrStaleRoots)
}

func TestManualClaimRejectsForeignClaimAccount(t *testing.T) {
	c := newClaimer(t)
	other, _ := c.h.Wallet()
	foreign, _ := manualclaim.Address(c.h.IDs.ManualClaim, other)
	state, _ := bridge.Address(c.h.IDs.Bridge)
	args := c.args(merkle.ZeroHash(manualclaim.TreeHeight), crypto.Sha256([]byte("next")))
	ix, err := common.Instruction(c.h.IDs.ManualClaim, manualclaim.InstructionManualClaim, args, nil,
		common.WritableSigner(c.user),
		common.Writable(foreign),
		common.Writable(state),
		common.Writable(c.h.Mint),
		common.Writable(c.ata),
	)
	require.NoError(t, err)
	require.ErrorIs(t, c.h.Exec([]solana.PublicKey{c.user}, ix), manualclaim.ErrInvalidClaimAccount)
}

func TestManualClaimRequiresOwnTokenAccount(t *testing.T) {
	c := newClaimer(t)
	_, otherATA := c.h.Wallet()
	claim, _ := manualclaim.Address(c.h.IDs.ManualClaim, c.user)
	state, _ := bridge.Address(c.h.IDs.Bridge)
	args := c.args(merkle.ZeroHash(manualclaim.TreeHeight), crypto.Sha256([]byte("next")))
	ix, err := common.Instruction(c.h.IDs.ManualClaim, manualclaim.InstructionManualClaim, args, nil,
		common.WritableSigner(c.user),
		common.Writable(claim),
		common.Writable(state),
		common.Writable(c.h.Mint),
		common.Writable(otherATA),
	)
	require.NoError(t, err)
	require.ErrorIs(t, c.h.Exec([]solana.PublicKey{c.user}, ix), manualclaim.ErrInvalidTokenAccount)
}

func TestBridgeRejectsDirectManualDeposit(t *testing.T) {
	c := newClaimer(t)
	ix, err := c.h.Bridge.ProcessManualDeposit(c.user, c.h.Mint, &bridge.ProcessManualDepositArgs{
		TxHash:            crypto.Sha256([]byte("forged")),
		DepositAmountSats: depositSats,
		Depositor:         c.user,
	})
	require.NoError(t, err)
	require.ErrorIs(t, c.h.Exec([]solana.PublicKey{c.user}, ix), bridge.ErrInvalidManualClaimAccount)
	require.Zero(t, c.h.Balance(token.AssociatedAddress(c.user, c.h.Mint)))
}

func TestPublicInputsLayout(t *testing.T) {
	a, b, c, d, e := types.H256{1}, types.H256{2}, types.H256{3}, types.H256{4}, types.H256{5}
	want := crypto.Sha256Pair(crypto.Sha256Pair(crypto.Sha256Pair(a, b), crypto.Sha256Pair(c, d)), e)
	require.Equal(t, want, manualclaim.PublicInputs(a, b, c, d, e))
	require.NotEqual(t, want, manualclaim.PublicInputs(b, a, c, d, e))
}
