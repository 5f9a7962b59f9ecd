package bridge

import (
	"errors"
	"fmt"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto/merkle"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/genericbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/wormhole"
)

// WithdrawalConsistency is the finality level requested for withdrawal
// messages.
const WithdrawalConsistency uint8 = 1

// WithdrawalPayload is the published message: sighash followed by the raw
// transaction.
func WithdrawalPayload(tx []byte) []byte {
	sighash := crypto.Sha256(tx)
	return append(sighash.Bytes(), tx...)
}

func (p *Program) requestWithdrawal(ctx *host.Context, accounts []*host.AccountInfo, args *RequestWithdrawalArgs) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	user, userToken, mint, stateInfo := accounts[0], accounts[1], accounts[2], accounts[3]
	st, err := p.load(stateInfo)
	if err != nil {
		return err
	}
	if !mint.Key.Equals(st.DogeMint) {
		return ErrWrongMint
	}
	if t := now(ctx); t < st.Header.PausedUntilSecs {
		return fmt.Errorf("%w: until %d", ErrPaused, st.Header.PausedUntilSecs)
	}
	if !crypto.AddressType(args.AddressType).Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidAddressType, args.AddressType)
	}
	fee, net, err := st.Config.WithdrawalFee(args.AmountSats)
	if err != nil {
		return err
	}
	index := st.NextRequestedWithdrawalsIndex
	leaf := WithdrawalLeaf(args.Recipient, args.AddressType, net)
	root, err := merkle.Append(st.RequestedWithdrawalsFrontier[:], index, leaf)
	if err != nil {
		if errors.Is(err, merkle.ErrTreeFull) {
			return ErrTreeFull
		}
		return err
	}
	if err := ctx.Invoke(token.Burn(userToken.Key, st.DogeMint, user.Key, args.AmountSats)); err != nil {
		return err
	}
	st.RequestedWithdrawalsTreeRoot = root
	st.NextRequestedWithdrawalsIndex = index + 1
	ctx.Emit(WithdrawalRequested{
		AmountSats:      args.AmountSats,
		FeeSats:         fee,
		Recipient:       args.Recipient,
		AddressType:     args.AddressType,
		User:            user.Key,
		WithdrawalIndex: index,
	})
	p.metrics.IncWithdrawalsRequested()
	return common.Store(stateInfo, st)
}

// withdrawalAccounts are shared by ProcessWithdrawal and ReplayWithdrawal.
type withdrawalAccounts struct {
	operator *host.AccountInfo
	state    *host.AccountInfo
	buffer   *host.AccountInfo
	sequence *host.AccountInfo
}

func (p *Program) prepareWithdrawal(accounts []*host.AccountInfo) (*withdrawalAccounts, *BridgeState, []byte, error) {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return nil, nil, nil, err
	}
	acc := &withdrawalAccounts{operator: accounts[0], state: accounts[1], buffer: accounts[2], sequence: accounts[3]}
	st, err := p.operatorState(acc.operator, acc.state)
	if err != nil {
		return nil, nil, nil, err
	}
	view, err := genericbuffer.Read(p.ids.GenericBuffer, acc.buffer)
	if err != nil {
		return nil, nil, nil, err
	}
	if !view.Complete() {
		return nil, nil, nil, ErrGenericBufferIncomplete
	}
	return acc, st, view.Body(), nil
}

// publish posts sighash || tx with the state account as emitter.
func (p *Program) publish(ctx *host.Context, st *BridgeState, acc *withdrawalAccounts, tx []byte) error {
	ix, err := wormhole.PostMessage(p.ids.Wormhole, acc.operator.Key, acc.state.Key,
		uint32(st.NextProcessedWithdrawalsIndex), WithdrawalConsistency, WithdrawalPayload(tx))
	if err != nil {
		return err
	}
	return ctx.Invoke(ix, st.signerSeeds())
}

func (p *Program) processWithdrawal(ctx *host.Context, accounts []*host.AccountInfo, args *ProcessWithdrawalArgs) error {
	acc, st, tx, err := p.prepareWithdrawal(accounts)
	if err != nil {
		return err
	}
	if crypto.Sha256(tx) != args.NewReturnOutput.Sighash {
		return ErrSighashMismatch
	}
	next := args.NewNextProcessedWithdrawalsIndex
	if next < st.NextProcessedWithdrawalsIndex || next > st.WithdrawalSnapshot.NextRequestedWithdrawalsTreeIndex {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrProcessedIndexOutOfRange, next,
			st.NextProcessedWithdrawalsIndex, st.WithdrawalSnapshot.NextRequestedWithdrawalsTreeIndex)
	}
	inputs := WithdrawalPublicInputs(&st.WithdrawalSnapshot, &st.ReturnOutput, &args.NewReturnOutput,
		st.SpentDepositUtxoTreeRoot, args.NewSpentTxoTreeRoot, next)
	if err := p.verify(p.keys.Withdrawal, &args.Proof, inputs); err != nil {
		return err
	}
	st.ReturnOutput = args.NewReturnOutput
	st.SpentDepositUtxoTreeRoot = args.NewSpentTxoTreeRoot
	st.NextProcessedWithdrawalsIndex = next
	if err := p.publish(ctx, st, acc, tx); err != nil {
		return err
	}
	ctx.Emit(WithdrawalProcessed{
		NewReturnOutput:                  args.NewReturnOutput,
		NewSpentTxoTreeRoot:              args.NewSpentTxoTreeRoot,
		NewNextProcessedWithdrawalsIndex: next,
	})
	p.metrics.SetWithdrawalsProcessed(next)
	return common.Store(acc.state, st)
}

func (p *Program) replayWithdrawal(ctx *host.Context, accounts []*host.AccountInfo) error {
	acc, st, tx, err := p.prepareWithdrawal(accounts)
	if err != nil {
		return err
	}
	if crypto.Sha256(tx) != st.ReturnOutput.Sighash {
		return ErrNothingToReplay
	}
	ctx.Logf("replaying withdrawal %s", st.ReturnOutput.Sighash)
	return p.publish(ctx, st, acc, tx)
}

func (p *Program) withdrawFees(ctx *host.Context, accounts []*host.AccountInfo) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	operator, stateInfo, mint, dest := accounts[0], accounts[1], accounts[2], accounts[3]
	st, err := p.operatorState(operator, stateInfo)
	if err != nil {
		return err
	}
	if !mint.Key.Equals(st.DogeMint) {
		return ErrWrongMint
	}
	account, err := token.ReadAccount(dest)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecipientAccount, err)
	}
	if !account.Owner.Equals(st.Operator) || !account.Mint.Equals(st.DogeMint) {
		return ErrInvalidRecipientAccount
	}
	amount := st.AvailableFees()
	if amount == 0 {
		return ErrNoFeesToWithdraw
	}
	st.TotalFeesWithdrawnSats += amount
	if err := ctx.Invoke(token.MintTo(st.DogeMint, dest.Key, stateInfo.Key, amount), st.signerSeeds()); err != nil {
		return err
	}
	ctx.Emit(FeesWithdrawn{AmountSats: amount, TotalWithdrawnSats: st.TotalFeesWithdrawnSats, Destination: dest.Key})
	p.metrics.SetFeesWithdrawn(st.TotalFeesWithdrawnSats)
	return common.Store(stateInfo, st)
}
