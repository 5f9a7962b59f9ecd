package manualclaim

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction  = host.NewError(6400, host.KindValidation, "manual claim: invalid instruction")
	ErrInvalidClaimAccount = host.NewError(6401, host.KindValidation, "manual claim: account is not the user's claim state")
	ErrUserNotSigner       = host.NewError(6402, host.KindAuthorization, "manual claim: user must sign")
	ErrInvalidClaimState   = host.NewError(6403, host.KindValidation, "manual claim: claim state is malformed")
	ErrManualClaimZKP      = host.NewError(6404, host.KindCryptographic, "manual claim: proof verification failed")
	ErrStaleRoots          = host.NewError(6405, host.KindOrdering, "manual claim: recent roots do not match the bridge")
	ErrRootUnchanged       = host.NewError(6406, host.KindValidation, "manual claim: new manual claim root equals the old one")
	ErrInvalidTokenAccount = host.NewError(6407, host.KindValidation, "manual claim: token account is not the user's associated account")
)
