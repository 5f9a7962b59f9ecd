package bridge

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/genericbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/managerset"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/wormhole"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

// Instruction discriminators.
const (
	InstructionInitialize uint8 = iota
	InstructionBlockUpdate
	InstructionRequestWithdrawal
	InstructionProcessWithdrawal
	InstructionOperatorWithdrawFees
	InstructionProcessManualDeposit
	InstructionReplayWithdrawal
	InstructionProcessMintGroup
	InstructionProcessReorgBlocks
	InstructionProcessMintGroupAutoAdvance
	InstructionSnapshotWithdrawals
	InstructionUpdateCustodianConfig
)

// FinalizedBlockMintTxoInfoSize is the encoded size of one reorg info.
var FinalizedBlockMintTxoInfoSize = pod.Size(FinalizedBlockMintTxoInfo{})

// InitializeArgs carries the genesis configuration of the bridge.
type InitializeArgs struct {
	Operator              solana.PublicKey
	FeeSpender            solana.PublicKey
	DogeMint              solana.PublicKey
	Header                BridgeHeader
	ReturnOutput          ReturnTxOutput
	Config                FeeConfig
	CustodianWalletConfig CustodianWalletConfig
}

// BlockUpdateArgs is the body of BlockUpdate and ProcessReorgBlocks. Reorgs
// append the block infos after the body.
type BlockUpdateArgs struct {
	Proof  zk.CompactProof
	Header BridgeHeader
}

// RequestWithdrawalArgs queues a withdrawal to a Dogecoin address.
type RequestWithdrawalArgs struct {
	AmountSats  uint64
	Recipient   types.H160
	AddressType uint32
}

// ProcessWithdrawalArgs installs the roots proven by a withdrawal transaction.
type ProcessWithdrawalArgs struct {
	Proof                            zk.CompactProof
	NewReturnOutput                  ReturnTxOutput
	NewSpentTxoTreeRoot              types.H256
	NewNextProcessedWithdrawalsIndex uint64
}

// ProcessManualDepositArgs describes a deposit proven by the manual-claim
// program.
type ProcessManualDepositArgs struct {
	TxHash            types.H256
	CombinedTxoIndex  uint64
	DepositAmountSats uint64
	Depositor         solana.PublicKey
}

// MintGroupArgs selects the group to drain.
type MintGroupArgs struct {
	GroupIndex uint16
	IsLast     uint8
	Padding    [5]uint8
}

// UpdateCustodianConfigArgs names the manager set to bind.
type UpdateCustodianConfigArgs struct {
	ChainID uint16
	Padding [2]uint8
	Index   uint32
}

// EncodeInfos concatenates reorg block infos.
func EncodeInfos(infos []FinalizedBlockMintTxoInfo) []byte {
	out := make([]byte, 0, len(infos)*FinalizedBlockMintTxoInfoSize)
	for i := range infos {
		out = append(out, pod.MustEncode(&infos[i])...)
	}
	return out
}

// DecodeInfos splits trailing reorg bytes into block infos.
func DecodeInfos(data []byte) ([]FinalizedBlockMintTxoInfo, error) {
	if len(data)%FinalizedBlockMintTxoInfoSize != 0 {
		return nil, ErrReorgInfosMismatch
	}
	out := make([]FinalizedBlockMintTxoInfo, len(data)/FinalizedBlockMintTxoInfoSize)
	for i := range out {
		off := i * FinalizedBlockMintTxoInfoSize
		if err := pod.Decode(data[off:off+FinalizedBlockMintTxoInfoSize], &out[i]); err != nil {
			return nil, ErrReorgInfosMismatch
		}
	}
	return out, nil
}

// Builder assembles bridge instructions for a deployment.
type Builder struct {
	IDs common.ProgramIDs
}

// NewBuilder returns a builder for ids.
func NewBuilder(ids common.ProgramIDs) *Builder { return &Builder{IDs: ids} }

// State is the bridge state account.
func (b *Builder) State() solana.PublicKey {
	addr, _ := Address(b.IDs.Bridge)
	return addr
}

func (b *Builder) instruction(disc uint8, body interface{}, trailing []byte, accounts ...*solana.AccountMeta) (solana.Instruction, error) {
	return common.Instruction(b.IDs.Bridge, disc, body, trailing, accounts...)
}

// Initialize creates the bridge state.
func (b *Builder) Initialize(payer solana.PublicKey, args *InitializeArgs) (solana.Instruction, error) {
	return b.instruction(InstructionInitialize, args, nil,
		common.WritableSigner(payer),
		common.Writable(b.State()),
	)
}

func (b *Builder) blockAccounts(operator, mintWriter, txoWriter solana.PublicKey) []*solana.AccountMeta {
	mintBuffer, _ := mintbuffer.Address(b.IDs.MintBuffer, mintWriter)
	txoBuffer, _ := txobuffer.Address(b.IDs.TxoBuffer, txoWriter)
	return []*solana.AccountMeta{
		common.Signer(operator),
		common.Writable(b.State()),
		common.Writable(mintBuffer),
		common.Readonly(txoBuffer),
	}
}

// BlockUpdate advances the finalized tip by one block. mintWriter and
// txoWriter own the buffers holding the block's mints and TXOs.
func (b *Builder) BlockUpdate(operator, mintWriter, txoWriter solana.PublicKey, proof zk.CompactProof, header *BridgeHeader) (solana.Instruction, error) {
	return b.instruction(InstructionBlockUpdate, &BlockUpdateArgs{Proof: proof, Header: *header}, nil,
		b.blockAccounts(operator, mintWriter, txoWriter)...)
}

// ProcessReorgBlocks replaces the finalized tip with header and queues infos,
// one per block after the previous finalized height.
func (b *Builder) ProcessReorgBlocks(operator, mintWriter, txoWriter solana.PublicKey, proof zk.CompactProof, header *BridgeHeader, infos []FinalizedBlockMintTxoInfo) (solana.Instruction, error) {
	return b.instruction(InstructionProcessReorgBlocks, &BlockUpdateArgs{Proof: proof, Header: *header}, EncodeInfos(infos),
		b.blockAccounts(operator, mintWriter, txoWriter)...)
}

func (b *Builder) mintGroup(disc uint8, operator, mintWriter, dogeMint solana.PublicKey, group uint16, isLast bool, recipients []solana.PublicKey) (solana.Instruction, error) {
	mintBuffer, _ := mintbuffer.Address(b.IDs.MintBuffer, mintWriter)
	args := &MintGroupArgs{GroupIndex: group}
	if isLast {
		args.IsLast = 1
	}
	accounts := []*solana.AccountMeta{
		common.Signer(operator),
		common.Writable(b.State()),
		common.Writable(mintBuffer),
		common.Writable(dogeMint),
	}
	for _, key := range recipients {
		accounts = append(accounts, common.Writable(key))
	}
	return b.instruction(disc, args, nil, accounts...)
}

// ProcessMintGroup mints group of the current ring entry to recipients, which
// must list the group's token accounts in record order.
func (b *Builder) ProcessMintGroup(operator, mintWriter, dogeMint solana.PublicKey, group uint16, isLast bool, recipients []solana.PublicKey) (solana.Instruction, error) {
	return b.mintGroup(InstructionProcessMintGroup, operator, mintWriter, dogeMint, group, isLast, recipients)
}

// ProcessMintGroupAutoAdvance is ProcessMintGroup that also skips empty
// blocks once the current entry drains.
func (b *Builder) ProcessMintGroupAutoAdvance(operator, mintWriter, dogeMint solana.PublicKey, group uint16, isLast bool, recipients []solana.PublicKey) (solana.Instruction, error) {
	return b.mintGroup(InstructionProcessMintGroupAutoAdvance, operator, mintWriter, dogeMint, group, isLast, recipients)
}

// RequestWithdrawal burns amount from userToken and queues the withdrawal.
func (b *Builder) RequestWithdrawal(user, userToken, dogeMint solana.PublicKey, amount uint64, recipient types.H160, addressType uint32) (solana.Instruction, error) {
	return b.instruction(InstructionRequestWithdrawal, &RequestWithdrawalArgs{AmountSats: amount, Recipient: recipient, AddressType: addressType}, nil,
		common.Signer(user),
		common.Writable(userToken),
		common.Writable(dogeMint),
		common.Writable(b.State()),
	)
}

func (b *Builder) withdrawalAccounts(operator, bufferWriter solana.PublicKey) []*solana.AccountMeta {
	buffer, _ := genericbuffer.Address(b.IDs.GenericBuffer, bufferWriter)
	return []*solana.AccountMeta{
		common.WritableSigner(operator),
		common.Writable(b.State()),
		common.Readonly(buffer),
		common.Writable(wormhole.SequenceAddress(b.IDs.Wormhole, b.State())),
	}
}

// ProcessWithdrawal installs the withdrawal roots and publishes the raw
// transaction held in bufferWriter's generic buffer.
func (b *Builder) ProcessWithdrawal(operator, bufferWriter solana.PublicKey, args *ProcessWithdrawalArgs) (solana.Instruction, error) {
	return b.instruction(InstructionProcessWithdrawal, args, nil, b.withdrawalAccounts(operator, bufferWriter)...)
}

// ReplayWithdrawal publishes the last processed withdrawal again.
func (b *Builder) ReplayWithdrawal(operator, bufferWriter solana.PublicKey) (solana.Instruction, error) {
	return b.instruction(InstructionReplayWithdrawal, nil, nil, b.withdrawalAccounts(operator, bufferWriter)...)
}

// OperatorWithdrawFees mints the unwithdrawn fee balance to destination, a
// token account of the operator.
func (b *Builder) OperatorWithdrawFees(operator, dogeMint, destination solana.PublicKey) (solana.Instruction, error) {
	return b.instruction(InstructionOperatorWithdrawFees, nil, nil,
		common.Signer(operator),
		common.Writable(b.State()),
		common.Writable(dogeMint),
		common.Writable(destination),
	)
}

// ProcessManualDeposit is invoked by the manual-claim program on behalf of
// claimState.
func (b *Builder) ProcessManualDeposit(claimState, dogeMint solana.PublicKey, args *ProcessManualDepositArgs) (solana.Instruction, error) {
	return b.instruction(InstructionProcessManualDeposit, args, nil,
		common.Signer(claimState),
		common.Writable(b.State()),
		common.Writable(dogeMint),
		common.Writable(token.AssociatedAddress(args.Depositor, dogeMint)),
	)
}

// SnapshotWithdrawals refreshes the withdrawal snapshot.
func (b *Builder) SnapshotWithdrawals(operator solana.PublicKey) (solana.Instruction, error) {
	return b.instruction(InstructionSnapshotWithdrawals, nil, nil,
		common.Signer(operator),
		common.Writable(b.State()),
	)
}

// UpdateCustodianConfig binds the bridge to the current manager set of chainID.
func (b *Builder) UpdateCustodianConfig(operator solana.PublicKey, chainID uint16, index uint32) (solana.Instruction, error) {
	indexAddr, _ := managerset.IndexAddress(b.IDs.ManagerSet, chainID)
	setAddr, _ := managerset.SetAddress(b.IDs.ManagerSet, chainID, index)
	return b.instruction(InstructionUpdateCustodianConfig, &UpdateCustodianConfigArgs{ChainID: chainID, Index: index}, nil,
		common.Signer(operator),
		common.Writable(b.State()),
		common.Readonly(indexAddr),
		common.Readonly(setAddr),
	)
}
