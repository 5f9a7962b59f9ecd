package bridge

import (
	"strconv"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
)

const (
	EventTypeBlockTransition        = "bridge.block_transition"
	EventTypeMintGroupProcessed     = "bridge.mint_group_processed"
	EventTypeWithdrawalRequested    = "bridge.withdrawal_requested"
	EventTypeWithdrawalProcessed    = "bridge.withdrawal_processed"
	EventTypeManualDepositClaimed   = "bridge.manual_deposit_claimed"
	EventTypeFeesWithdrawn          = "bridge.fees_withdrawn"
	EventTypeWithdrawalsSnapshotted = "bridge.withdrawals_snapshotted"
	EventTypeCustodianConfigUpdated = "bridge.custodian_config_updated"
)

func u64(v uint64) string { return strconv.FormatUint(v, 10) }

// BlockTransition is emitted when a block update or reorg is accepted.
type BlockTransition struct {
	BlockHeight uint32
	IsReorg     bool
}

func (BlockTransition) EventType() string { return EventTypeBlockTransition }

func (e BlockTransition) Event() *types.Event {
	return &types.Event{Type: EventTypeBlockTransition, Attributes: map[string]string{
		"blockHeight": u64(uint64(e.BlockHeight)),
		"isReorg":     strconv.FormatBool(e.IsReorg),
	}}
}

// MintGroupProcessed is emitted per drained mint group.
type MintGroupProcessed struct {
	BlockHeight uint32
	Group       uint32
	Mints       uint32
	Amount      uint64
	Remaining   uint32
}

func (MintGroupProcessed) EventType() string { return EventTypeMintGroupProcessed }

func (e MintGroupProcessed) Event() *types.Event {
	return &types.Event{Type: EventTypeMintGroupProcessed, Attributes: map[string]string{
		"blockHeight": u64(uint64(e.BlockHeight)),
		"group":       u64(uint64(e.Group)),
		"mints":       u64(uint64(e.Mints)),
		"amount":      u64(e.Amount),
		"remaining":   u64(uint64(e.Remaining)),
	}}
}

// WithdrawalRequested is emitted for every queued withdrawal.
type WithdrawalRequested struct {
	AmountSats      uint64
	FeeSats         uint64
	Recipient       types.H160
	AddressType     uint32
	User            solana.PublicKey
	WithdrawalIndex uint64
}

func (WithdrawalRequested) EventType() string { return EventTypeWithdrawalRequested }

func (e WithdrawalRequested) Event() *types.Event {
	return &types.Event{Type: EventTypeWithdrawalRequested, Attributes: map[string]string{
		"amountSats":      u64(e.AmountSats),
		"feeSats":         u64(e.FeeSats),
		"recipient":       e.Recipient.Hex(),
		"addressType":     u64(uint64(e.AddressType)),
		"user":            e.User.String(),
		"withdrawalIndex": u64(e.WithdrawalIndex),
	}}
}

// WithdrawalProcessed is emitted when a withdrawal transaction is accepted.
type WithdrawalProcessed struct {
	NewReturnOutput                  ReturnTxOutput
	NewSpentTxoTreeRoot              types.H256
	NewNextProcessedWithdrawalsIndex uint64
}

func (WithdrawalProcessed) EventType() string { return EventTypeWithdrawalProcessed }

func (e WithdrawalProcessed) Event() *types.Event {
	return &types.Event{Type: EventTypeWithdrawalProcessed, Attributes: map[string]string{
		"newReturnOutputSighash":           e.NewReturnOutput.Sighash.Hex(),
		"newReturnOutputIndex":             u64(e.NewReturnOutput.OutputIndex),
		"newReturnOutputAmountSats":        u64(e.NewReturnOutput.AmountSats),
		"newSpentTxoTreeRoot":              e.NewSpentTxoTreeRoot.Hex(),
		"newNextProcessedWithdrawalsIndex": u64(e.NewNextProcessedWithdrawalsIndex),
	}}
}

// ManualDepositClaimed is emitted when a manual claim mints a deposit.
type ManualDepositClaimed struct {
	TxHash            types.H256
	CombinedTxoIndex  uint64
	DepositAmountSats uint64
	Depositor         solana.PublicKey
	Claimer           solana.PublicKey
}

func (ManualDepositClaimed) EventType() string { return EventTypeManualDepositClaimed }

func (e ManualDepositClaimed) Event() *types.Event {
	return &types.Event{Type: EventTypeManualDepositClaimed, Attributes: map[string]string{
		"txHash":            e.TxHash.Hex(),
		"combinedTxoIndex":  u64(e.CombinedTxoIndex),
		"depositAmountSats": u64(e.DepositAmountSats),
		"depositor":         e.Depositor.String(),
		"claimer":           e.Claimer.String(),
	}}
}

// FeesWithdrawn is emitted when the fee spender withdraws collected fees.
type FeesWithdrawn struct {
	AmountSats         uint64
	TotalWithdrawnSats uint64
	Destination        solana.PublicKey
}

func (FeesWithdrawn) EventType() string { return EventTypeFeesWithdrawn }

func (e FeesWithdrawn) Event() *types.Event {
	return &types.Event{Type: EventTypeFeesWithdrawn, Attributes: map[string]string{
		"amountSats":         u64(e.AmountSats),
		"totalWithdrawnSats": u64(e.TotalWithdrawnSats),
		"destination":        e.Destination.String(),
	}}
}

// WithdrawalsSnapshotted is emitted when the withdrawal snapshot is refreshed.
type WithdrawalsSnapshotted struct {
	Snapshot WithdrawalSnapshot
}

func (WithdrawalsSnapshotted) EventType() string { return EventTypeWithdrawalsSnapshotted }

func (e WithdrawalsSnapshotted) Event() *types.Event {
	return &types.Event{Type: EventTypeWithdrawalsSnapshotted, Attributes: map[string]string{
		"blockHeight":                       u64(uint64(e.Snapshot.BlockHeight)),
		"requestedWithdrawalsTreeRoot":      e.Snapshot.RequestedWithdrawalsTreeRoot.Hex(),
		"nextRequestedWithdrawalsTreeIndex": u64(e.Snapshot.NextRequestedWithdrawalsTreeIndex),
		"snapshotAt":                        u64(uint64(e.Snapshot.LastSnapshottedForWithdrawalsSeconds)),
	}}
}

// CustodianConfigUpdated is emitted when the custodian set is rotated.
type CustodianConfigUpdated struct {
	ChainID           uint16
	Index             uint32
	WalletAddressHash types.H160
}

func (CustodianConfigUpdated) EventType() string { return EventTypeCustodianConfigUpdated }

func (e CustodianConfigUpdated) Event() *types.Event {
	return &types.Event{Type: EventTypeCustodianConfigUpdated, Attributes: map[string]string{
		"chainId":           u64(uint64(e.ChainID)),
		"index":             u64(uint64(e.Index)),
		"walletAddressHash": e.WalletAddressHash.Hex(),
	}}
}
