// Package bridge implements the bridge program: the authoritative state of the
// Dogecoin bridge, its block-update and reorg transitions, the pending-mint
// backlog, and the withdrawal and manual-deposit flows.
package bridge

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto/merkle"
)

const (
	// RingCapacity bounds the unfinalized blocks that may trail the tip.
	RingCapacity = 8
	// ClaimedBitmapSize holds one bit per mint group of a full mint buffer.
	ClaimedBitmapSize = 344
	// WithdrawalsTreeHeight is the height of the requested-withdrawals tree.
	WithdrawalsTreeHeight = 32
	// ManualDepositsTreeHeight is the height of the manual-claim deposits tree.
	ManualDepositsTreeHeight = 32
)

var stateSeed = []byte("bridge_state")

// FinalizedBlockState commits to a finalized Dogecoin block.
type FinalizedBlockState struct {
	BlockHash                    types.H256
	BlockMerkleTreeRoot          types.H256
	PendingMintsFinalizedHash    types.H256
	TxoOutputListFinalizedHash   types.H256
	AutoClaimedTxoTreeRoot       types.H256
	AutoClaimedDepositsTreeRoot  types.H256
	AutoClaimedDepositsNextIndex uint32
	BlockHeight                  uint32
}

// TipBlockState commits to the chain tip.
type TipBlockState struct {
	BlockHash                    types.H256
	BlockMerkleTreeRoot          types.H256
	PendingMintsFinalizedHash    types.H256
	TxoOutputListFinalizedHash   types.H256
	AutoClaimedTxoTreeRoot       types.H256
	AutoClaimedDepositsTreeRoot  types.H256
	AutoClaimedDepositsNextIndex uint32
	BlockHeight                  uint32
	BlockTime                    uint32
	Padding                      uint32
}

// BridgeHeader is the proven header a block update installs.
type BridgeHeader struct {
	TipState                                TipBlockState
	FinalizedState                          FinalizedBlockState
	BridgeStateHash                         types.H256
	LastRollbackAtSecs                      uint32
	PausedUntilSecs                         uint32
	TotalFinalizedFeesCollectedChainHistory uint64
}

// ReturnTxOutput is the bridge's change output that funds the next
// withdrawal transaction.
type ReturnTxOutput struct {
	Sighash     types.H256
	OutputIndex uint64
	AmountSats  uint64
}

// FeeConfig holds flat and proportional deposit and withdrawal fees.
type FeeConfig struct {
	DepositFeeFlatSats           uint64
	DepositFeeRateNumerator      uint64
	DepositFeeRateDenominator    uint64
	WithdrawalFeeFlatSats        uint64
	WithdrawalFeeRateNumerator   uint64
	WithdrawalFeeRateDenominator uint64
}

// CustodianWalletConfig binds the active custodian set.
type CustodianWalletConfig struct {
	WalletAddressHash types.H160
	NetworkType       uint32
}

// WithdrawalSnapshot is the periodic copy of roots used by withdrawal proofs.
type WithdrawalSnapshot struct {
	AutoClaimedDepositsTreeRoot          types.H256
	RequestedWithdrawalsTreeRoot         types.H256
	BlockMerkleTreeRoot                  types.H256
	BlockHeight                          uint32
	LastSnapshottedForWithdrawalsSeconds uint32
	NextRequestedWithdrawalsTreeIndex    uint64
}

// FinalizedBlockMintTxoInfo is one ring entry: the mint and TXO list digests
// of a finalized block.
type FinalizedBlockMintTxoInfo struct {
	PendingMintsFinalizedHash  types.H256
	TxoOutputListFinalizedHash types.H256
}

// PendingMintsTracker follows the consumption of the current ring entry.
type PendingMintsTracker struct {
	PendingMintGroupsClaimed                  [ClaimedBitmapSize]uint8
	TotalPendingMints                         uint32
	PendingMintGroupsCount                    uint32
	PendingMintsGroupsRemaining               uint32
	Loaded                                    uint8
	Padding                                   [3]uint8
	LastFinalizedAutoClaimMintsStorageAccount solana.PublicKey
}

// FinalizedBlockMintTxoManager is the ring of blocks awaiting mint
// consumption.
type FinalizedBlockMintTxoManager struct {
	Infos                            [RingCapacity]FinalizedBlockMintTxoInfo
	PendingFinalizedInfoCurrentIndex uint32
	PendingFinalizedInfoTotalCount   uint32
	StartBlockHeight                 uint32
	Padding                          uint32
	Tracker                          PendingMintsTracker
}

// BridgeState is the singleton bridge account.
type BridgeState struct {
	Header                        BridgeHeader
	ReturnOutput                  ReturnTxOutput
	SpentDepositUtxoTreeRoot      types.H256
	TotalSpentDepositUtxoCount    uint64
	RequestedWithdrawalsTreeRoot  types.H256
	NextRequestedWithdrawalsIndex uint64
	NextProcessedWithdrawalsIndex uint64
	RequestedWithdrawalsFrontier  [WithdrawalsTreeHeight]types.H256
	ManualClaimDepositsTreeRoot   types.H256
	ManualClaimDepositsNextIndex  uint64
	ManualClaimDepositsFrontier   [ManualDepositsTreeHeight]types.H256
	WithdrawalSnapshot            WithdrawalSnapshot
	PendingMintTxos               FinalizedBlockMintTxoManager
	Config                        FeeConfig
	CustodianWalletConfig         CustodianWalletConfig
	TotalFeesWithdrawnSats        uint64
	DogeMint                      solana.PublicKey
	Operator                      solana.PublicKey
	FeeSpender                    solana.PublicKey
	Bump                          uint8
	Padding                       [7]uint8
}

// BridgeStateSize is the encoded length of BridgeState.
var BridgeStateSize = pod.Size(BridgeState{})

// Address returns the bridge state account of program and its bump.
func Address(program solana.PublicKey) (solana.PublicKey, uint8) {
	addr, bump, err := solana.FindProgramAddress([][]byte{stateSeed}, program)
	if err != nil {
		panic(err)
	}
	return addr, bump
}

// Decode parses raw bridge state account data.
func Decode(data []byte) (*BridgeState, error) {
	if len(data) != BridgeStateSize {
		return nil, ErrNotInitialized
	}
	var st BridgeState
	if err := pod.Decode(data, &st); err != nil {
		return nil, ErrNotInitialized
	}
	return &st, nil
}

// Read decodes the bridge state held by info, which must be the canonical
// state account owned by program.
func Read(program solana.PublicKey, info *host.AccountInfo) (*BridgeState, error) {
	addr, _ := Address(program)
	if !addr.Equals(info.Key) {
		return nil, ErrInvalidStateAddress
	}
	if !info.IsOwnedBy(program) {
		return nil, ErrNotInitialized
	}
	return Decode(info.Data())
}

func hashOf(v interface{}) types.H256 {
	return crypto.Sha256(pod.MustEncode(v))
}

// Hash is SHA256 of the encoded header.
func (h *BridgeHeader) Hash() types.H256 { return hashOf(h) }

// Hash is SHA256 of the encoded fee config.
func (c *FeeConfig) Hash() types.H256 { return hashOf(c) }

// Hash is SHA256 of the encoded custodian config.
func (c *CustodianWalletConfig) Hash() types.H256 { return hashOf(c) }

// Hash is SHA256 of the encoded return output.
func (r *ReturnTxOutput) Hash() types.H256 { return hashOf(r) }

// Hash is SHA256 of the encoded snapshot.
func (s *WithdrawalSnapshot) Hash() types.H256 { return hashOf(s) }

// newState builds the state installed by Initialize.
func newState(args *InitializeArgs, bump uint8) *BridgeState {
	st := &BridgeState{
		Header:                       args.Header,
		ReturnOutput:                 args.ReturnOutput,
		SpentDepositUtxoTreeRoot:     merkle.ZeroHash(WithdrawalsTreeHeight),
		RequestedWithdrawalsTreeRoot: merkle.ZeroHash(WithdrawalsTreeHeight),
		ManualClaimDepositsTreeRoot:  merkle.ZeroHash(ManualDepositsTreeHeight),
		Config:                       args.Config,
		CustodianWalletConfig:        args.CustodianWalletConfig,
		DogeMint:                     args.DogeMint,
		Operator:                     args.Operator,
		FeeSpender:                   args.FeeSpender,
		Bump:                         bump,
	}
	merkle.ResetFrontier(st.RequestedWithdrawalsFrontier[:])
	merkle.ResetFrontier(st.ManualClaimDepositsFrontier[:])
	st.PendingMintTxos.StartBlockHeight = args.Header.FinalizedState.BlockHeight + 1
	st.snapshot(0)
	return st
}

func (st *BridgeState) snapshot(now uint32) {
	st.WithdrawalSnapshot = WithdrawalSnapshot{
		AutoClaimedDepositsTreeRoot:          st.Header.FinalizedState.AutoClaimedDepositsTreeRoot,
		RequestedWithdrawalsTreeRoot:         st.RequestedWithdrawalsTreeRoot,
		BlockMerkleTreeRoot:                  st.Header.FinalizedState.BlockMerkleTreeRoot,
		BlockHeight:                          st.Header.FinalizedState.BlockHeight,
		LastSnapshottedForWithdrawalsSeconds: now,
		NextRequestedWithdrawalsTreeIndex:    st.NextRequestedWithdrawalsIndex,
	}
}

// AvailableFees is the fee balance the fee spender may still withdraw.
func (st *BridgeState) AvailableFees() uint64 {
	total := st.Header.TotalFinalizedFeesCollectedChainHistory
	if st.TotalFeesWithdrawnSats >= total {
		return 0
	}
	return total - st.TotalFeesWithdrawnSats
}
