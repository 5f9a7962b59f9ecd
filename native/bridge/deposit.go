package bridge

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto/merkle"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
)

// ManualClaimSeed prefixes the per-user manual-claim state address.
var ManualClaimSeed = []byte("manual-claim")

// ManualClaimAddress returns the manual-claim state of user under program.
func ManualClaimAddress(program, user solana.PublicKey) (solana.PublicKey, uint8) {
	return common.Canonical(program, ManualClaimSeed, user[:])
}

func (p *Program) processManualDeposit(ctx *host.Context, accounts []*host.AccountInfo, args *ProcessManualDepositArgs) error {
	if err := host.RequireAccounts(accounts, 4); err != nil {
		return err
	}
	claimer, stateInfo, mint, ata := accounts[0], accounts[1], accounts[2], accounts[3]
	if !claimer.IsSigner {
		return ErrInvalidManualClaimAccount
	}
	if _, ok := common.IsCanonical(claimer.Key, p.ids.ManualClaim, ManualClaimSeed, args.Depositor[:]); !ok {
		return fmt.Errorf("%w: %s is not the claim state of %s", ErrInvalidManualClaimAccount, claimer.Key, args.Depositor)
	}
	st, err := p.load(stateInfo)
	if err != nil {
		return err
	}
	if !mint.Key.Equals(st.DogeMint) {
		return ErrWrongMint
	}
	if !ata.Key.Equals(token.AssociatedAddress(args.Depositor, st.DogeMint)) {
		return ErrInvalidRecipientAccount
	}
	_, net, err := st.Config.DepositFee(args.DepositAmountSats)
	if err != nil {
		return err
	}
	leaf := DepositLeaf(args.TxHash, ata.Key, args.CombinedTxoIndex, args.DepositAmountSats)
	root, err := merkle.Append(st.ManualClaimDepositsFrontier[:], st.ManualClaimDepositsNextIndex, leaf)
	if err != nil {
		if errors.Is(err, merkle.ErrTreeFull) {
			return ErrTreeFull
		}
		return err
	}
	st.ManualClaimDepositsTreeRoot = root
	st.ManualClaimDepositsNextIndex++
	if err := ctx.Invoke(token.MintTo(st.DogeMint, ata.Key, stateInfo.Key, net), st.signerSeeds()); err != nil {
		return err
	}
	ctx.Emit(ManualDepositClaimed{
		TxHash:            args.TxHash,
		CombinedTxoIndex:  args.CombinedTxoIndex,
		DepositAmountSats: args.DepositAmountSats,
		Depositor:         args.Depositor,
		Claimer:           claimer.Key,
	})
	p.metrics.IncManualClaims()
	p.metrics.AddMinted(net)
	return common.Store(stateInfo, st)
}
