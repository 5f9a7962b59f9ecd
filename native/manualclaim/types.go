// Package manualclaim implements the manual-claim program. Each user owns one
// claim state holding the root of the deposits they claimed by proof; a claim
// advances that root and asks the bridge to mint the deposit.
package manualclaim

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/pod"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/crypto"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/native/bridge"
)

// TreeHeight is the height of each user's manual-claim TXO tree.
const TreeHeight = 32

// ClaimState is the per-user claim account.
type ClaimState struct {
	ManualClaimedTxoTreeRoot types.H256
	User                     solana.PublicKey
	Bump                     uint8
	Padding                  [7]uint8
}

// ClaimStateSize is the encoded length of ClaimState.
var ClaimStateSize = pod.Size(ClaimState{})

// Address returns the claim state of user under program.
func Address(program, user solana.PublicKey) (solana.PublicKey, uint8) {
	return bridge.ManualClaimAddress(program, user)
}

// Decode parses raw claim state data.
func Decode(data []byte) (*ClaimState, error) {
	if len(data) != ClaimStateSize {
		return nil, ErrInvalidClaimState
	}
	var st ClaimState
	if err := pod.Decode(data, &st); err != nil {
		return nil, ErrInvalidClaimState
	}
	return &st, nil
}

// Read decodes the claim state held by info.
func Read(program solana.PublicKey, info *host.AccountInfo) (*ClaimState, error) {
	if !info.IsOwnedBy(program) {
		return nil, ErrInvalidClaimState
	}
	return Decode(info.Data())
}

// PublicInputs binds a claim to the bridge's recent roots, the transition of
// the user's manual root, and the deposit leaf.
func PublicInputs(recentBlockRoot, recentAutoClaimRoot, oldRoot, newRoot, depositLeaf types.H256) types.H256 {
	roots := crypto.Sha256Pair(recentBlockRoot, recentAutoClaimRoot)
	manual := crypto.Sha256Pair(oldRoot, newRoot)
	return crypto.Sha256Pair(crypto.Sha256Pair(roots, manual), depositLeaf)
}
