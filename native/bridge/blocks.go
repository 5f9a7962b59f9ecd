package bridge

import (
	"fmt"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

// blockAccounts are the accounts shared by BlockUpdate and ProcessReorgBlocks.
type blockAccounts struct {
	operator   *host.AccountInfo
	state      *host.AccountInfo
	mintBuffer *host.AccountInfo
	txoBuffer  *host.AccountInfo
}

func (p *Program) prepareBlock(accounts []*host.AccountInfo) (*blockAccounts, *BridgeState, error) {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return nil, nil, err
	}
	acc := &blockAccounts{operator: accounts[0], state: accounts[1], mintBuffer: accounts[2], txoBuffer: accounts[3]}
	st, err := p.operatorState(acc.operator, acc.state)
	if err != nil {
		return nil, nil, err
	}
	if !st.PendingMintTxos.IsEmpty() {
		return nil, nil, ErrRemainingPendingMintsInPreviousState
	}
	return acc, st, nil
}

func (p *Program) verify(key zk.ProgramKey, proof *zk.CompactProof, inputs types.H256) error {
	if !p.verifier.VerifyCompactZKP(proof, key, inputs) {
		return ErrBridgeZKPError
	}
	return nil
}

// checkTxoBuffer asserts that the TXO buffer holds the finalized list of the
// new finalized block.
func (p *Program) checkTxoBuffer(info *host.AccountInfo, header *BridgeHeader) error {
	view, err := txobuffer.Read(p.ids.TxoBuffer, info)
	if err != nil {
		return err
	}
	if !view.Finalized() {
		return ErrTxoBufferNotFinalized
	}
	if view.Header.DogeBlockHeight != header.FinalizedState.BlockHeight {
		return fmt.Errorf("%w: buffer %d, header %d", ErrTxoBufferHeightMismatch, view.Header.DogeBlockHeight, header.FinalizedState.BlockHeight)
	}
	if view.Digest() != header.FinalizedState.TxoOutputListFinalizedHash {
		return ErrTxoBufferHashMismatch
	}
	return nil
}

// checkMintBuffer asserts that the mint buffer is an unlocked operator buffer
// whose digest is expected.
func (p *Program) checkMintBuffer(info *host.AccountInfo, st *BridgeState, expected types.H256) error {
	view, err := mintbuffer.Read(p.ids.MintBuffer, info)
	if err != nil {
		return err
	}
	if view.Header.IsLocked != 0 {
		return ErrMintBufferLocked
	}
	if !view.Header.AuthorizedWriter.Equals(st.Operator) {
		return ErrMintBufferWriter
	}
	if view.Digest() != expected {
		return ErrMintBufferHashMismatch
	}
	return nil
}

// expectedMintDigest is the mint digest the buffer must hold right after a
// new ring is installed: that of the first entry still carrying work.
func expectedMintDigest(m *FinalizedBlockMintTxoManager, header *BridgeHeader) types.H256 {
	if cur := m.Current(); cur != nil {
		return cur.PendingMintsFinalizedHash
	}
	return header.FinalizedState.PendingMintsFinalizedHash
}

// adoptHeader replaces the header. The proven fee history never decreases.
func (st *BridgeState) adoptHeader(header *BridgeHeader) error {
	if header.TotalFinalizedFeesCollectedChainHistory < st.Header.TotalFinalizedFeesCollectedChainHistory {
		return ErrFeeHistoryDecreased
	}
	st.Header = *header
	return nil
}

func (p *Program) blockUpdate(ctx *host.Context, accounts []*host.AccountInfo, args *BlockUpdateArgs) error {
	acc, st, err := p.prepareBlock(accounts)
	if err != nil {
		return err
	}
	prevHeight := st.Header.FinalizedState.BlockHeight
	height := args.Header.FinalizedState.BlockHeight
	if height != prevHeight+1 {
		return fmt.Errorf("%w: %d after %d", ErrBlockHeightNotAdvancing, height, prevHeight)
	}
	inputs := BlockUpdatePublicInputs(&st.Header, &args.Header, &st.Config, &st.CustodianWalletConfig)
	if err := p.verify(p.keys.BlockUpdate, &args.Proof, inputs); err != nil {
		return err
	}
	if err := p.checkMintBuffer(acc.mintBuffer, st, args.Header.FinalizedState.PendingMintsFinalizedHash); err != nil {
		return err
	}
	if err := p.checkTxoBuffer(acc.txoBuffer, &args.Header); err != nil {
		return err
	}
	if err := st.adoptHeader(&args.Header); err != nil {
		return err
	}
	st.PendingMintTxos.install([]FinalizedBlockMintTxoInfo{{
		PendingMintsFinalizedHash:  args.Header.FinalizedState.PendingMintsFinalizedHash,
		TxoOutputListFinalizedHash: args.Header.FinalizedState.TxoOutputListFinalizedHash,
	}}, height)
	if _, err := p.settle(ctx, st, acc.state, acc.mintBuffer, true); err != nil {
		return err
	}
	ctx.Emit(BlockTransition{BlockHeight: height})
	p.observeRing(st)
	return common.Store(acc.state, st)
}

func (p *Program) reorg(ctx *host.Context, accounts []*host.AccountInfo, args *BlockUpdateArgs, infos []FinalizedBlockMintTxoInfo) error {
	if len(infos) > RingCapacity {
		return fmt.Errorf("%w: %d blocks", ErrReorgTooLarge, len(infos))
	}
	if len(infos) == 0 {
		return ErrReorgInfosMismatch
	}
	acc, st, err := p.prepareBlock(accounts)
	if err != nil {
		return err
	}
	prevHeight := st.Header.FinalizedState.BlockHeight
	height := args.Header.FinalizedState.BlockHeight
	if height <= prevHeight {
		return fmt.Errorf("%w: %d after %d", ErrBlockHeightNotAdvancing, height, prevHeight)
	}
	if height-prevHeight != uint32(len(infos)) {
		return fmt.Errorf("%w: %d infos for %d blocks", ErrReorgInfosMismatch, len(infos), height-prevHeight)
	}
	last := infos[len(infos)-1]
	if last.PendingMintsFinalizedHash != args.Header.FinalizedState.PendingMintsFinalizedHash ||
		last.TxoOutputListFinalizedHash != args.Header.FinalizedState.TxoOutputListFinalizedHash {
		return fmt.Errorf("%w: last info does not match the header", ErrReorgInfosMismatch)
	}
	inputs := ReorgPublicInputs(&st.Header, &args.Header, infos, &st.Config, &st.CustodianWalletConfig)
	if err := p.verify(p.keys.ReorgBlocks, &args.Proof, inputs); err != nil {
		return err
	}
	if err := p.checkTxoBuffer(acc.txoBuffer, &args.Header); err != nil {
		return err
	}
	if err := st.adoptHeader(&args.Header); err != nil {
		return err
	}
	st.Header.LastRollbackAtSecs = now(ctx)
	st.PendingMintTxos.install(infos, prevHeight+1)
	st.PendingMintTxos.FastForwardEmpty()
	if err := p.checkMintBuffer(acc.mintBuffer, st, expectedMintDigest(&st.PendingMintTxos, &args.Header)); err != nil {
		return err
	}
	if _, err := p.settle(ctx, st, acc.state, acc.mintBuffer, true); err != nil {
		return err
	}
	ctx.Emit(BlockTransition{BlockHeight: height, IsReorg: true})
	p.observeRing(st)
	return common.Store(acc.state, st)
}

// settle brings the ring to a state where the tracker is consuming an entry
// or nothing is left: empty blocks are skipped when skipEmpty is set, entries
// without mints drain immediately, and the first entry whose mint digest
// matches buffer is loaded and the buffer locked. It reports whether the ring
// moved.
func (p *Program) settle(ctx *host.Context, st *BridgeState, stateInfo, buffer *host.AccountInfo, skipEmpty bool) (bool, error) {
	m := &st.PendingMintTxos
	moved := false
	for m.Tracker.IsEmpty() {
		if skipEmpty && m.FastForwardEmpty() > 0 {
			moved = true
		}
		cur := m.Current()
		if cur == nil {
			return moved, nil
		}
		view, err := mintbuffer.Read(p.ids.MintBuffer, buffer)
		if err != nil {
			return moved, err
		}
		if view.Digest() != cur.PendingMintsFinalizedHash {
			return moved, nil
		}
		moved = true
		if view.Count() == 0 {
			ctx.Logf("block %d has no mints", m.CurrentBlockHeight())
			m.PendingFinalizedInfoCurrentIndex++
			continue
		}
		if !view.Header.AuthorizedWriter.Equals(st.Operator) {
			return moved, ErrMintBufferWriter
		}
		lock, err := mintbuffer.Lock(p.ids.MintBuffer, stateInfo.Key, buffer.Key)
		if err != nil {
			return moved, err
		}
		if err := ctx.Invoke(lock, st.signerSeeds()); err != nil {
			return moved, err
		}
		m.load(buffer.Key, view)
		ctx.Logf("block %d loaded: %d mints in %d groups", m.CurrentBlockHeight(), view.Count(), view.Groups())
	}
	return moved, nil
}

func (p *Program) observeRing(st *BridgeState) {
	p.metrics.SetFinalizedHeight(st.Header.FinalizedState.BlockHeight)
	p.metrics.SetPendingMintGroups(st.PendingMintTxos.Tracker.PendingMintsGroupsRemaining)
}
