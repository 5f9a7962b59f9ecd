package manualclaim

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto/merkle"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

// InstructionManualClaim claims one deposit by proof.
const InstructionManualClaim uint8 = 0

// ManualClaimArgs is the body of ManualClaim.
type ManualClaimArgs struct {
	Proof                     zk.CompactProof
	RecentBlockMerkleTreeRoot types.H256
	RecentAutoClaimTxoRoot    types.H256
	NewManualClaimTxoRoot     types.H256
	TxHash                    types.H256
	CombinedTxoIndex          uint64
	DepositAmountSats         uint64
}

// ManualClaim builds a claim for user. Accounts: user (signer, writable),
// claim state, bridge state, doge mint and the user's associated token
// account, all writable.
func ManualClaim(ids common.ProgramIDs, user, dogeMint solana.PublicKey, args *ManualClaimArgs) (solana.Instruction, error) {
	claim, _ := Address(ids.ManualClaim, user)
	state, _ := bridge.Address(ids.Bridge)
	return common.Instruction(ids.ManualClaim, InstructionManualClaim, args, nil,
		common.WritableSigner(user),
		common.Writable(claim),
		common.Writable(state),
		common.Writable(dogeMint),
		common.Writable(token.AssociatedAddress(user, dogeMint)),
	)
}

// Program is the manual-claim program.
type Program struct {
	ids      common.ProgramIDs
	verifier zk.Verifier
	key      zk.ProgramKey
	bridge   *bridge.Builder
}

// NewProgram returns the program deployed at ids.ManualClaim. Claims are
// proven against key.
func NewProgram(ids common.ProgramIDs, verifier zk.Verifier, key zk.ProgramKey) *Program {
	return &Program{ids: ids, verifier: verifier, key: key, bridge: bridge.NewBuilder(ids)}
}

func (p *Program) ID() solana.PublicKey { return p.ids.ManualClaim }

func (p *Program) Name() string { return "manual_claim" }

func (p *Program) InstructionName(data []byte) string {
	if len(data) > 0 && data[0] == InstructionManualClaim {
		return "manual_claim"
	}
	return ""
}

func (p *Program) Execute(ctx *host.Context, accounts []*host.AccountInfo, data []byte) error {
	disc, body, err := common.Split(data)
	if err != nil {
		return err
	}
	if disc != InstructionManualClaim {
		return fmt.Errorf("%w: %d", ErrInvalidInstruction, disc)
	}
	var args ManualClaimArgs
	if _, err := common.DecodeBody(body, &args); err != nil {
		return err
	}
	return p.claim(ctx, accounts, &args)
}

// claimState loads the user's claim state, creating it on first use.
func (p *Program) claimState(ctx *host.Context, user, info *host.AccountInfo) (*ClaimState, error) {
	bump, ok := common.IsCanonical(info.Key, p.ids.ManualClaim, bridge.ManualClaimSeed, user.Key[:])
	if !ok {
		return nil, ErrInvalidClaimAccount
	}
	if !info.IsEmpty() {
		st, err := Read(p.ids.ManualClaim, info)
		if err != nil {
			return nil, err
		}
		if !st.User.Equals(user.Key) {
			return nil, ErrInvalidClaimState
		}
		return st, nil
	}
	seeds := common.SignerSeeds(bump, bridge.ManualClaimSeed, user.Key[:])
	if err := ctx.CreateAccount(user, info, ClaimStateSize, p.ids.ManualClaim, seeds); err != nil {
		return nil, err
	}
	ctx.Logf("claim state created for %s", user.Key)
	return &ClaimState{
		ManualClaimedTxoTreeRoot: merkle.ZeroHash(TreeHeight),
		User:                     user.Key,
		Bump:                     bump,
	}, nil
}

func (p *Program) claim(ctx *host.Context, accounts []*host.AccountInfo, args *ManualClaimArgs) error {
	if err := host.RequireAccounts(accounts, 5); err != nil {
		return err
	}
	user, claimInfo, stateInfo, mint, ata := accounts[0], accounts[1], accounts[2], accounts[3], accounts[4]
	if !user.IsSigner {
		return ErrUserNotSigner
	}
	claim, err := p.claimState(ctx, user, claimInfo)
	if err != nil {
		return err
	}
	st, err := bridge.Read(p.ids.Bridge, stateInfo)
	if err != nil {
		return err
	}
	if args.RecentBlockMerkleTreeRoot != st.Header.FinalizedState.BlockMerkleTreeRoot ||
		args.RecentAutoClaimTxoRoot != st.Header.FinalizedState.AutoClaimedTxoTreeRoot {
		return ErrStaleRoots
	}
	if !ata.Key.Equals(token.AssociatedAddress(user.Key, st.DogeMint)) {
		return ErrInvalidTokenAccount
	}
	if args.NewManualClaimTxoRoot == claim.ManualClaimedTxoTreeRoot {
		return ErrRootUnchanged
	}
	leaf := bridge.DepositLeaf(args.TxHash, ata.Key, args.CombinedTxoIndex, args.DepositAmountSats)
	inputs := PublicInputs(args.RecentBlockMerkleTreeRoot, args.RecentAutoClaimTxoRoot,
		claim.ManualClaimedTxoTreeRoot, args.NewManualClaimTxoRoot, leaf)
	if !p.verifier.VerifyCompactZKP(&args.Proof, p.key, inputs) {
		return ErrManualClaimZKP
	}
	claim.ManualClaimedTxoTreeRoot = args.NewManualClaimTxoRoot
	if err := common.Store(claimInfo, claim); err != nil {
		return err
	}

	ix, err := p.bridge.ProcessManualDeposit(claimInfo.Key, mint.Key, &bridge.ProcessManualDepositArgs{
		TxHash:            args.TxHash,
		CombinedTxoIndex:  args.CombinedTxoIndex,
		DepositAmountSats: args.DepositAmountSats,
		Depositor:         user.Key,
	})
	if err != nil {
		return err
	}
	return ctx.Invoke(ix, common.SignerSeeds(claim.Bump, bridge.ManualClaimSeed, user.Key[:]))
}
