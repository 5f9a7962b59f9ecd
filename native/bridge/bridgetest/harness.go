// Package bridgetest wires every bridge program into an in-memory host for
// end-to-end tests.
package bridgetest

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/common"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/genericbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/managerset"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/manualclaim"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/mintbuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/token"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/txobuffer"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/wormhole"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/logging"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/zk"
)

// DefaultFees are flat 1000 sats plus 2% on both sides.
var DefaultFees = bridge.FeeConfig{
	DepositFeeFlatSats:           1000,
	DepositFeeRateNumerator:      2,
	DepositFeeRateDenominator:    100,
	WithdrawalFeeFlatSats:        1000,
	WithdrawalFeeRateNumerator:   2,
	WithdrawalFeeRateDenominator: 100,
}

// Harness is a host with the bridge deployed and initialized.
type Harness struct {
	T          *testing.T
	Host       *host.Host
	IDs        common.ProgramIDs
	Bridge     *bridge.Builder
	Prover     *zk.MockProver
	Payer      solana.PublicKey
	Operator   solana.PublicKey
	FeeSpender solana.PublicKey
	Mint       solana.PublicKey
	State      solana.PublicKey
	MintBuffer solana.PublicKey
	TxoBuffer  solana.PublicKey
	Genesis    bridge.BridgeHeader

	batch uint32
}

// New deploys every program, creates the doge mint under the bridge state's
// authority, initializes the bridge at height 0 and sets up the operator's
// buffers.
func New(t *testing.T) *Harness {
	t.Helper()
	prover, err := zk.NewMockProver()
	require.NoError(t, err)
	key := prover.ProgramKey()
	keys := zk.ProgramKeys{BlockUpdate: key, ReorgBlocks: key, Withdrawal: key, ManualClaim: key}

	hst := host.New(storage.NewMemDB())
	hst.SetLogger(logging.Discard())
	ids := common.DefaultProgramIDs()
	for _, p := range []host.Program{
		token.NewProgram(),
		token.NewAssociatedProgram(),
		mintbuffer.NewProgram(ids.MintBuffer),
		txobuffer.NewProgram(ids.TxoBuffer),
		genericbuffer.NewProgram(ids.GenericBuffer),
		managerset.NewProgram(ids.ManagerSet),
		wormhole.NewProgram(ids.Wormhole),
		bridge.NewProgram(ids, zk.MockVerifier{}, keys),
		manualclaim.NewProgram(ids, zk.MockVerifier{}, keys.ManualClaim),
	} {
		require.NoError(t, hst.Register(p))
	}

	h := &Harness{
		T:          t,
		Host:       hst,
		IDs:        ids,
		Bridge:     bridge.NewBuilder(ids),
		Prover:     prover,
		Payer:      solana.NewWallet().PublicKey(),
		Operator:   solana.NewWallet().PublicKey(),
		FeeSpender: solana.NewWallet().PublicKey(),
		Mint:       solana.NewWallet().PublicKey(),
	}
	h.State, _ = bridge.Address(ids.Bridge)
	h.MintBuffer, _ = mintbuffer.Address(ids.MintBuffer, h.Operator)
	h.TxoBuffer, _ = txobuffer.Address(ids.TxoBuffer, h.Operator)
	for _, key := range []solana.PublicKey{h.Payer, h.Operator, h.FeeSpender} {
		require.NoError(t, hst.Airdrop(key, 1_000_000_000_000))
	}

	h.MustExec([]solana.PublicKey{h.Payer, h.Mint},
		host.CreateAccountInstruction(h.Payer, h.Mint, token.MintSize, token.ProgramID),
		token.InitializeMint(h.Mint, h.State, 8))

	h.Genesis = bridge.BridgeHeader{}
	h.Genesis.FinalizedState.PendingMintsFinalizedHash = mintbuffer.EmptyDigest
	h.Genesis.FinalizedState.TxoOutputListFinalizedHash = txobuffer.EmptyDigest
	h.Genesis.TipState.PendingMintsFinalizedHash = mintbuffer.EmptyDigest
	h.Genesis.TipState.TxoOutputListFinalizedHash = txobuffer.EmptyDigest
	initialize, err := h.Bridge.Initialize(h.Payer, &bridge.InitializeArgs{
		Operator:   h.Operator,
		FeeSpender: h.FeeSpender,
		DogeMint:   h.Mint,
		Header:     h.Genesis,
		ReturnOutput: bridge.ReturnTxOutput{
			Sighash:    crypto.Sha256([]byte("genesis return output")),
			AmountSats: 1_000_000_000,
		},
		Config:                DefaultFees,
		CustodianWalletConfig: bridge.CustodianWalletConfig{NetworkType: uint32(crypto.NetworkMainnet)},
	})
	require.NoError(t, err)
	h.MustExec([]solana.PublicKey{h.Payer}, initialize)

	setup, err := mintbuffer.Setup(ids.MintBuffer, h.Operator, h.Operator, h.State)
	require.NoError(t, err)
	txoInit, err := txobuffer.Init(ids.TxoBuffer, h.Operator, h.Operator)
	require.NoError(t, err)
	h.MustExec([]solana.PublicKey{h.Operator}, setup, txoInit)
	return h
}

// Exec runs one transaction.
func (h *Harness) Exec(signers []solana.PublicKey, ixs ...solana.Instruction) error {
	_, err := h.Host.Execute(context.Background(), host.NewTransaction(signers, ixs...))
	return err
}

// Receipt runs one transaction and returns its receipt.
func (h *Harness) Receipt(signers []solana.PublicKey, ixs ...solana.Instruction) (*host.Receipt, error) {
	return h.Host.Execute(context.Background(), host.NewTransaction(signers, ixs...))
}

// MustExec runs one transaction that must succeed.
func (h *Harness) MustExec(signers []solana.PublicKey, ixs ...solana.Instruction) {
	h.T.Helper()
	require.NoError(h.T, h.Exec(signers, ixs...))
}

// Wallet creates a user and its associated token account.
func (h *Harness) Wallet() (solana.PublicKey, solana.PublicKey) {
	h.T.Helper()
	owner := solana.NewWallet().PublicKey()
	require.NoError(h.T, h.Host.Airdrop(owner, 10_000_000_000))
	h.MustExec([]solana.PublicKey{h.Payer}, token.CreateAssociatedAccount(h.Payer, owner, h.Mint, false))
	return owner, token.AssociatedAddress(owner, h.Mint)
}

// Balance is the token balance of account.
func (h *Harness) Balance(account solana.PublicKey) uint64 {
	h.T.Helper()
	acc, err := h.Host.Account(account)
	require.NoError(h.T, err)
	decoded, err := token.DecodeAccount(acc.Data)
	require.NoError(h.T, err)
	return decoded.Amount
}

// BridgeState decodes the current bridge state.
func (h *Harness) BridgeState() *bridge.BridgeState {
	h.T.Helper()
	acc, err := h.Host.Account(h.State)
	require.NoError(h.T, err)
	st, err := bridge.Decode(acc.Data)
	require.NoError(h.T, err)
	return st
}

// Block is the content of one Dogecoin block as the bridge sees it.
type Block struct {
	Mints []mintbuffer.MintRecord
	Txos  []uint32
}

// Info is the ring entry of b.
func (b Block) Info() bridge.FinalizedBlockMintTxoInfo {
	return bridge.FinalizedBlockMintTxoInfo{
		PendingMintsFinalizedHash:  mintbuffer.Digest(b.Mints),
		TxoOutputListFinalizedHash: txobuffer.DigestOf(txobuffer.EncodeIndices(b.Txos)),
	}
}

// Deposit is a mint record crediting amount, net of the deposit fee, to the
// token account.
func (h *Harness) Deposit(account solana.PublicKey, amount uint64) (mintbuffer.MintRecord, uint64) {
	h.T.Helper()
	fees := DefaultFees
	fee, net, err := fees.DepositFee(amount)
	require.NoError(h.T, err)
	return mintbuffer.MintRecord{Recipient: types.H256(account), Amount: net}, fee
}

// NextHeader derives the header finalizing b on top of prev.
func NextHeader(prev *bridge.BridgeHeader, height uint32, b Block, fees uint64) bridge.BridgeHeader {
	info := b.Info()
	next := *prev
	next.FinalizedState.BlockHeight = height
	next.FinalizedState.BlockHash = crypto.Sha256([]byte("block"), []byte{byte(height), byte(height >> 8)})
	next.FinalizedState.BlockMerkleTreeRoot = crypto.Sha256([]byte("blocks"), next.FinalizedState.BlockHash[:])
	next.FinalizedState.PendingMintsFinalizedHash = info.PendingMintsFinalizedHash
	next.FinalizedState.TxoOutputListFinalizedHash = info.TxoOutputListFinalizedHash
	next.TipState.BlockHeight = height
	next.TipState.BlockHash = next.FinalizedState.BlockHash
	next.TipState.PendingMintsFinalizedHash = info.PendingMintsFinalizedHash
	next.TipState.TxoOutputListFinalizedHash = info.TxoOutputListFinalizedHash
	next.TotalFinalizedFeesCollectedChainHistory += fees
	return next
}

// StageMints refills the operator's mint buffer.
func (h *Harness) StageMints(mints []mintbuffer.MintRecord) {
	h.T.Helper()
	ixs, err := mintbuffer.Fill(h.IDs.MintBuffer, h.Operator, h.Operator, mints)
	require.NoError(h.T, err)
	h.MustExec([]solana.PublicKey{h.Operator}, ixs...)
}

// StageTxos writes and finalizes the TXO list of height in a fresh batch.
func (h *Harness) StageTxos(height uint32, txos []uint32) {
	h.T.Helper()
	h.batch++
	ixs, err := txobuffer.Fill(h.IDs.TxoBuffer, h.Operator, h.Operator, h.batch, height, txobuffer.EncodeIndices(txos))
	require.NoError(h.T, err)
	h.MustExec([]solana.PublicKey{h.Operator}, ixs...)
}

// BlockUpdate stages b and submits a proven update to header.
func (h *Harness) BlockUpdate(b Block, header *bridge.BridgeHeader) error {
	h.T.Helper()
	h.StageMints(b.Mints)
	h.StageTxos(header.FinalizedState.BlockHeight, b.Txos)
	return h.SubmitBlockUpdate(header)
}

// SubmitBlockUpdate proves and submits header against the staged buffers.
func (h *Harness) SubmitBlockUpdate(header *bridge.BridgeHeader) error {
	h.T.Helper()
	st := h.BridgeState()
	proof := h.Prover.MustProve(bridge.BlockUpdatePublicInputs(&st.Header, header, &st.Config, &st.CustodianWalletConfig))
	ix, err := h.Bridge.BlockUpdate(h.Operator, h.Operator, h.Operator, proof, header)
	require.NoError(h.T, err)
	return h.Exec([]solana.PublicKey{h.Operator}, ix)
}

// SubmitReorg proves and submits a reorg to header carrying infos.
func (h *Harness) SubmitReorg(header *bridge.BridgeHeader, infos []bridge.FinalizedBlockMintTxoInfo) error {
	h.T.Helper()
	st := h.BridgeState()
	proof := h.Prover.MustProve(bridge.ReorgPublicInputs(&st.Header, header, infos, &st.Config, &st.CustodianWalletConfig))
	ix, err := h.Bridge.ProcessReorgBlocks(h.Operator, h.Operator, h.Operator, proof, header, infos)
	require.NoError(h.T, err)
	return h.Exec([]solana.PublicKey{h.Operator}, ix)
}

// MintGroup drains group of the loaded buffer, naming the recipients of the
// records currently staged.
func (h *Harness) MintGroup(group int, isLast, autoAdvance bool) error {
	h.T.Helper()
	return h.MintGroupTo(group, isLast, autoAdvance, h.Recipients(group))
}

// MintGroupTo is MintGroup with explicit recipient accounts.
func (h *Harness) MintGroupTo(group int, isLast, autoAdvance bool, recipients []solana.PublicKey) error {
	h.T.Helper()
	build := h.Bridge.ProcessMintGroup
	if autoAdvance {
		build = h.Bridge.ProcessMintGroupAutoAdvance
	}
	ix, err := build(h.Operator, h.Operator, h.Mint, uint16(group), isLast, recipients)
	require.NoError(h.T, err)
	return h.Exec([]solana.PublicKey{h.Operator}, ix)
}

// Recipients lists the token accounts of group in the staged mint buffer.
func (h *Harness) Recipients(group int) []solana.PublicKey {
	h.T.Helper()
	acc, err := h.Host.Account(h.MintBuffer)
	require.NoError(h.T, err)
	view, err := mintbuffer.Decode(h.MintBuffer, acc.Data)
	require.NoError(h.T, err)
	if group >= view.Groups() {
		return nil
	}
	records, err := view.Group(group)
	require.NoError(h.T, err)
	out := make([]solana.PublicKey, len(records))
	for i, rec := range records {
		out[i] = solana.PublicKeyFromBytes(rec.Recipient[:])
	}
	return out
}
