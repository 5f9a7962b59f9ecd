package bridge

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
	"github.com/holiman/uint256"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
)

// Validate checks that both fee rates are proper fractions.
func (c *FeeConfig) Validate() error {
	if c.DepositFeeRateDenominator == 0 || c.DepositFeeRateNumerator > c.DepositFeeRateDenominator {
		return ErrInvalidFeeConfig
	}
	if c.WithdrawalFeeRateDenominator == 0 || c.WithdrawalFeeRateNumerator > c.WithdrawalFeeRateDenominator {
		return ErrInvalidFeeConfig
	}
	return nil
}

// proportional returns floor(amount * num / denom) without intermediate
// overflow.
func proportional(amount, num, denom uint64) (uint64, error) {
	if denom == 0 {
		return 0, ErrInvalidFeeConfig
	}
	product := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(num))
	quotient := product.Div(product, uint256.NewInt(denom))
	if !quotient.IsUint64() {
		return 0, ErrFeeOverflow
	}
	return quotient.Uint64(), nil
}

// applyFee returns (fee, amount - fee) where fee = flat + floor(amount*num/denom).
// A fee that consumes the whole amount is rejected with invalid.
func applyFee(amount, flat, num, denom uint64, invalid error) (uint64, uint64, error) {
	if amount <= flat {
		return 0, 0, invalid
	}
	rate, err := proportional(amount, num, denom)
	if err != nil {
		return 0, 0, err
	}
	fee := flat + rate
	if fee < flat {
		return 0, 0, ErrFeeOverflow
	}
	if amount <= fee {
		return 0, 0, invalid
	}
	return fee, amount - fee, nil
}

// DepositFee splits a deposit into (fee, credited amount).
func (c *FeeConfig) DepositFee(amount uint64) (uint64, uint64, error) {
	return applyFee(amount, c.DepositFeeFlatSats, c.DepositFeeRateNumerator, c.DepositFeeRateDenominator, ErrInvalidDepositAmount)
}

// WithdrawalFee splits a withdrawal into (fee, amount paid out on Dogecoin).
func (c *FeeConfig) WithdrawalFee(amount uint64) (uint64, uint64, error) {
	return applyFee(amount, c.WithdrawalFeeFlatSats, c.WithdrawalFeeRateNumerator, c.WithdrawalFeeRateDenominator, ErrInvalidWithdrawalAmount)
}

// CombinedTxoIndex packs a TXO position as height(32) | tx(16) | output(16).
func CombinedTxoIndex(blockHeight uint32, txIndex, outputIndex uint16) uint64 {
	return uint64(blockHeight)<<32 | uint64(txIndex)<<16 | uint64(outputIndex)
}

// SplitTxoIndex unpacks a combined TXO index.
func SplitTxoIndex(combined uint64) (uint32, uint16, uint16) {
	return uint32(combined >> 32), uint16(combined >> 16), uint16(combined)
}

// DepositLeaf is SHA256(tx_hash || depositor_ata || combined_le || amount_le).
func DepositLeaf(txHash types.H256, depositorATA solana.PublicKey, combined, amount uint64) types.H256 {
	var tail [16]byte
	binary.LittleEndian.PutUint64(tail[:8], combined)
	binary.LittleEndian.PutUint64(tail[8:], amount)
	return crypto.Sha256(txHash[:], depositorATA[:], tail[:])
}

// WithdrawalLeaf is recipient[0..20] || address_type[20..24] || amount[24..32].
func WithdrawalLeaf(recipient types.H160, addressType uint32, amount uint64) types.H256 {
	var leaf types.H256
	copy(leaf[:20], recipient[:])
	binary.LittleEndian.PutUint32(leaf[20:24], addressType)
	binary.LittleEndian.PutUint64(leaf[24:], amount)
	return leaf
}

// BlockUpdatePublicInputs is
// SHA256(SHA256(prev_header_hash || new_header_hash) || config_hash || custodian_hash).
func BlockUpdatePublicInputs(prev, next *BridgeHeader, config *FeeConfig, custodian *CustodianWalletConfig) types.H256 {
	prevHash, nextHash := prev.Hash(), next.Hash()
	transition := crypto.Sha256(prevHash[:], nextHash[:])
	configHash, custodianHash := config.Hash(), custodian.Hash()
	return crypto.Sha256(transition[:], configHash[:], custodianHash[:])
}

// BacklogHash folds h_i = SHA256(h_{i-1} || SHA256(p_i || t_i)) from h_0 = 0.
func BacklogHash(infos []FinalizedBlockMintTxoInfo) types.H256 {
	var acc types.H256
	for _, info := range infos {
		entry := crypto.Sha256(info.PendingMintsFinalizedHash[:], info.TxoOutputListFinalizedHash[:])
		acc = crypto.Sha256Pair(acc, entry)
	}
	return acc
}

// ReorgPublicInputs extends the block-update transition with the backlog hash:
// SHA256(SHA256(prev || new || backlog) || config_hash || custodian_hash).
func ReorgPublicInputs(prev, next *BridgeHeader, infos []FinalizedBlockMintTxoInfo, config *FeeConfig, custodian *CustodianWalletConfig) types.H256 {
	prevHash, nextHash := prev.Hash(), next.Hash()
	backlog := BacklogHash(infos)
	transition := crypto.Sha256(prevHash[:], nextHash[:], backlog[:])
	configHash, custodianHash := config.Hash(), custodian.Hash()
	return crypto.Sha256(transition[:], configHash[:], custodianHash[:])
}

// WithdrawalPublicInputs is
// SHA256(snapshot_hash || SHA256(old_return || new_return) || SHA256(old_spent || new_spent) || next_processed_le).
func WithdrawalPublicInputs(snapshot *WithdrawalSnapshot, oldReturn, newReturn *ReturnTxOutput, oldSpent, newSpent types.H256, nextProcessed uint64) types.H256 {
	snapshotHash := snapshot.Hash()
	oldReturnHash, newReturnHash := oldReturn.Hash(), newReturn.Hash()
	returns := crypto.Sha256(oldReturnHash[:], newReturnHash[:])
	spent := crypto.Sha256Pair(oldSpent, newSpent)
	var next [8]byte
	binary.LittleEndian.PutUint64(next[:], nextProcessed)
	return crypto.Sha256(snapshotHash[:], returns[:], spent[:], next[:])
}
