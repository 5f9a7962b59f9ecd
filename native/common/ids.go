// Package common holds the account helpers and program registry shared by the
// bridge programs.
package common

import (
	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"
)

// ProgramIDs names every program the bridge flow calls into.
type ProgramIDs struct {
	Bridge        solana.PublicKey
	MintBuffer    solana.PublicKey
	TxoBuffer     solana.PublicKey
	GenericBuffer solana.PublicKey
	ManualClaim   solana.PublicKey
	ManagerSet    solana.PublicKey
	Wormhole      solana.PublicKey
}

// DefaultProgramIDs derives the program ids used when none are configured.
func DefaultProgramIDs() ProgramIDs {
	return ProgramIDs{
		Bridge:        host.DeriveProgramID("doge-bridge"),
		MintBuffer:    host.DeriveProgramID("pending-mint-buffer"),
		TxoBuffer:     host.DeriveProgramID("txo-buffer"),
		GenericBuffer: host.DeriveProgramID("generic-buffer"),
		ManualClaim:   host.DeriveProgramID("manual-claim"),
		ManagerSet:    host.DeriveProgramID("delegated-manager-set"),
		Wormhole:      host.DeriveProgramID("wormhole-shim"),
	}
}
