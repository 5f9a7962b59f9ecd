package bridge

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/managerset"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/metrics"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

// Program is the bridge program.
type Program struct {
	ids      common.ProgramIDs
	verifier zk.Verifier
	keys     zk.ProgramKeys
	metrics  *metrics.BridgeMetrics
}

// NewProgram returns the bridge deployed at ids.Bridge. Proofs are checked by
// verifier against keys.
func NewProgram(ids common.ProgramIDs, verifier zk.Verifier, keys zk.ProgramKeys) *Program {
	return &Program{ids: ids, verifier: verifier, keys: keys, metrics: metrics.Bridge()}
}

func (p *Program) ID() solana.PublicKey { return p.ids.Bridge }

func (p *Program) Name() string { return "bridge" }

var instructionNames = map[uint8]string{
	InstructionInitialize:                  "initialize",
	InstructionBlockUpdate:                 "block_update",
	InstructionRequestWithdrawal:           "request_withdrawal",
	InstructionProcessWithdrawal:           "process_withdrawal",
	InstructionOperatorWithdrawFees:        "operator_withdraw_fees",
	InstructionProcessManualDeposit:        "process_manual_deposit",
	InstructionReplayWithdrawal:            "replay_withdrawal",
	InstructionProcessMintGroup:            "process_mint_group",
	InstructionProcessReorgBlocks:          "process_reorg_blocks",
	InstructionProcessMintGroupAutoAdvance: "process_mint_group_auto_advance",
	InstructionSnapshotWithdrawals:         "snapshot_withdrawals",
	InstructionUpdateCustodianConfig:       "update_custodian_config",
}

func (p *Program) InstructionName(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	return instructionNames[data[0]]
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	switch disc {
	case InstructionInitialize:
		var args InitializeArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.initialize(ctx, accounts, &args)
	case InstructionBlockUpdate:
		var args BlockUpdateArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.blockUpdate(ctx, accounts, &args)
	case InstructionProcessReorgBlocks:
		var args BlockUpdateArgs
		trailing, err := common.DecodeBody(body, &args)
		if err != nil {
			return err
		}
		infos, err := DecodeInfos(trailing)
		if err != nil {
			return err
		}
		return p.reorg(ctx, accounts, &args, infos)
	case InstructionProcessMintGroup, InstructionProcessMintGroupAutoAdvance:
		var args MintGroupArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.processMintGroup(ctx, accounts, &args, disc == InstructionProcessMintGroupAutoAdvance)
	case InstructionRequestWithdrawal:
		var args RequestWithdrawalArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.requestWithdrawal(ctx, accounts, &args)
	case InstructionProcessWithdrawal:
		var args ProcessWithdrawalArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.processWithdrawal(ctx, accounts, &args)
	case InstructionReplayWithdrawal:
		return p.replayWithdrawal(ctx, accounts)
	case InstructionOperatorWithdrawFees:
		return p.withdrawFees(ctx, accounts)
	case InstructionProcessManualDeposit:
		var args ProcessManualDepositArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.processManualDeposit(ctx, accounts, &args)
	case InstructionSnapshotWithdrawals:
		return p.snapshotWithdrawals(ctx, accounts)
	case InstructionUpdateCustodianConfig:
		var args UpdateCustodianConfigArgs
		if _, err := common.DecodeBody(body, &args); err != nil {
			return err
		}
		return p.updateCustodianConfig(ctx, accounts, &args)
	default:
		return fmt.Errorf("%w: %d", ErrInvalidInstruction, disc)
	}
}

func (p *Program) initialize(ctx *host.Context, accounts []*host.AccountInfo, args *InitializeArgs) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	payer, stateInfo := accounts[0], accounts[1]
	addr, bump := Address(p.ids.Bridge)
	if !addr.Equals(stateInfo.Key) {
		return ErrInvalidStateAddress
	}
	if !stateInfo.IsEmpty() {
		return ErrAlreadyInitialized
	}
	if err := args.Config.Validate(); err != nil {
		return err
	}
	if err := ctx.CreateAccount(payer, stateInfo, BridgeStateSize, p.ids.Bridge, common.SignerSeeds(bump, stateSeed)); err != nil {
		return err
	}
	st := newState(args, bump)
	ctx.Logf("bridge initialized at finalized height %d", st.Header.FinalizedState.BlockHeight)
	p.metrics.SetFinalizedHeight(st.Header.FinalizedState.BlockHeight)
	return common.Store(stateInfo, st)
}

// load decodes the writable bridge state.
func (p *Program) load(info *host.AccountInfo) (*BridgeState, error) {
	return Read(p.ids.Bridge, info)
}

// signerSeeds lets the state account sign for CPIs.
func (st *BridgeState) signerSeeds() [][]byte {
	return common.SignerSeeds(st.Bump, stateSeed)
}

func (p *Program) operatorState(operator, stateInfo *host.AccountInfo) (*BridgeState, error) {
	st, err := p.load(stateInfo)
	if err != nil {
		return nil, err
	}
	if !operator.IsSigner || !operator.Key.Equals(st.Operator) {
		return nil, ErrUnauthorizedOperator
	}
	return st, nil
}

func now(ctx *host.Context) uint32 {
	ts := ctx.Clock().UnixTimestamp
	if ts < 0 {
		return 0
	}
	return uint32(ts)
}

func (p *Program) snapshotWithdrawals(ctx *host.Context, accounts []*host.AccountInfo) error {
	if err := host.RequireAccounts(accounts, 2); err != nil {
		return err
	}
	stateInfo := accounts[1]
	st, err := p.operatorState(accounts[0], stateInfo)
	if err != nil {
		return err
	}
	st.snapshot(now(ctx))
	ctx.Emit(WithdrawalsSnapshotted{Snapshot: st.WithdrawalSnapshot})
	return common.Store(stateInfo, st)
}

func (p *Program) updateCustodianConfig(ctx *host.Context, accounts []*host.AccountInfo, args *UpdateCustodianConfigArgs) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	stateInfo, indexInfo, setInfo := accounts[1], accounts[2], accounts[3]
	st, err := p.operatorState(accounts[0], stateInfo)
	if err != nil {
		return err
	}
	if !st.PendingMintTxos.IsEmpty() {
		return ErrRemainingPendingMintsInPreviousState
	}
	indexAddr, _ := managerset.IndexAddress(p.ids.ManagerSet, args.ChainID)
	setAddr, _ := managerset.SetAddress(p.ids.ManagerSet, args.ChainID, args.Index)
	if !indexAddr.Equals(indexInfo.Key) || !setAddr.Equals(setInfo.Key) {
		return ErrInvalidManagerSet
	}
	index, err := managerset.ReadIndex(p.ids.ManagerSet, indexInfo)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManagerSet, err)
	}
	if index.CurrentIndex != args.Index {
		return fmt.Errorf("%w: index %d is not current (%d)", ErrInvalidManagerSet, args.Index, index.CurrentIndex)
	}
	set, err := managerset.ReadSet(p.ids.ManagerSet, setInfo)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManagerSet, err)
	}
	hash, err := managerset.CustodianHash(set.ManagerSet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManagerSet, err)
	}
	st.CustodianWalletConfig.WalletAddressHash = hash
	ctx.Emit(CustodianConfigUpdated{ChainID: args.ChainID, Index: args.Index, WalletAddressHash: hash})
	return common.Store(stateInfo, st)
}
