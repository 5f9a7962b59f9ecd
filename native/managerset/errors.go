package managerset

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction = host.NewError(6500, host.KindValidation, "manager set: invalid instruction")
	ErrInvalidIndexPDA    = host.NewError(6501, host.KindValidation, "manager set: index account is not the canonical address")
	ErrInvalidSetPDA      = host.NewError(6502, host.KindValidation, "manager set: set account is not the canonical address")
	ErrInvalidSetData     = host.NewError(6503, host.KindValidation, "manager set: data must be 01 05 07 followed by seven compressed keys")
	ErrSetExists          = host.NewError(6504, host.KindOrdering, "manager set: set already installed")
	ErrIndexNotIncreasing = host.NewError(6505, host.KindOrdering, "manager set: index must exceed the current index")
	ErrInvalidAccount     = host.NewError(6506, host.KindValidation, "manager set: account data is not a manager set record")
)
