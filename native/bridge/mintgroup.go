package bridge

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
)

func (p *Program) processMintGroup(ctx *host.Context, accounts []*host.AccountInfo, args *MintGroupArgs, autoAdvance bool) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	stateInfo, buffer, mint := accounts[1], accounts[2], accounts[3]
	recipients := accounts[4:]
	st, err := p.operatorState(accounts[0], stateInfo)
	if err != nil {
		return err
	}
	if !mint.Key.Equals(st.DogeMint) {
		return ErrWrongMint
	}
	m := &st.PendingMintTxos
	if m.IsEmpty() {
		return ErrRingEmpty
	}
	if m.Tracker.IsEmpty() {
		moved, err := p.settle(ctx, st, stateInfo, buffer, autoAdvance)
		if err != nil {
			return err
		}
		if m.Tracker.IsEmpty() {
			if !moved {
				return fmt.Errorf("%w: buffer %s does not hold block %d", ErrMintBufferHashMismatch, buffer.Key, m.CurrentBlockHeight())
			}
			p.observeRing(st)
			return common.Store(stateInfo, st)
		}
	}

	t := &m.Tracker
	if !buffer.Key.Equals(t.LastFinalizedAutoClaimMintsStorageAccount) {
		return ErrWrongMintBuffer
	}
	group := int(args.GroupIndex)
	if group >= int(t.PendingMintGroupsCount) {
		return fmt.Errorf("%w: group %d of %d", ErrGroupOutOfRange, group, t.PendingMintGroupsCount)
	}
	if t.Claimed(group) {
		return fmt.Errorf("%w: group %d", ErrGroupAlreadyClaimed, group)
	}
	view, err := mintbuffer.Read(p.ids.MintBuffer, buffer)
	if err != nil {
		return err
	}
	records, err := view.Group(group)
	if err != nil {
		return err
	}
	if len(recipients) != len(records) {
		return fmt.Errorf("%w: %d accounts for %d mints", ErrRecipientMismatch, len(recipients), len(records))
	}
	var total uint64
	for i, rec := range records {
		want := solana.PublicKeyFromBytes(rec.Recipient[:])
		if !recipients[i].Key.Equals(want) {
			return fmt.Errorf("%w: slot %d is %s, record names %s", ErrRecipientMismatch, i, recipients[i].Key, want)
		}
		if err := ctx.Invoke(token.MintTo(st.DogeMint, want, stateInfo.Key, rec.Amount), st.signerSeeds()); err != nil {
			return err
		}
		total += rec.Amount
	}
	t.claim(group)
	height := m.CurrentBlockHeight()
	ctx.Emit(MintGroupProcessed{
		BlockHeight: height,
		Group:       uint32(group),
		Mints:       uint32(len(records)),
		Amount:      total,
		Remaining:   t.PendingMintsGroupsRemaining,
	})
	p.metrics.AddMinted(total)

	if t.PendingMintsGroupsRemaining == 0 {
		unlock, err := mintbuffer.Unlock(p.ids.MintBuffer, stateInfo.Key, buffer.Key)
		if err != nil {
			return err
		}
		if err := ctx.Invoke(unlock, st.signerSeeds()); err != nil {
			return err
		}
		m.finish()
		ctx.Logf("block %d drained", height)
		if autoAdvance {
			m.FastForwardEmpty()
		}
	} else if args.IsLast != 0 {
		return fmt.Errorf("%w: %d groups remain", ErrNotLastGroup, t.PendingMintsGroupsRemaining)
	}
	p.observeRing(st)
	return common.Store(stateInfo, st)
}
