package mintbuffer

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction = host.NewError(6100, host.KindValidation, "mint buffer: invalid instruction")
	ErrInvalidAddress     = host.NewError(6101, host.KindValidation, "mint buffer: account is not the writer's buffer address")
	ErrUnauthorizedWriter = host.NewError(6102, host.KindAuthorization, "mint buffer: writer not authorized")
	ErrUnauthorizedLocker = host.NewError(6103, host.KindAuthorization, "mint buffer: locker not authorized")
	ErrLocked             = host.NewError(6104, host.KindAuthorization, "mint buffer: buffer is locked")
	ErrGroupOutOfRange    = host.NewError(6105, host.KindOrdering, "mint buffer: group index out of range")
	ErrMintBytesLength    = host.NewError(6106, host.KindValidation, "mint buffer: mint bytes do not match the group size")
	ErrGroupsIncomplete   = host.NewError(6107, host.KindOrdering, "mint buffer: not every group is initialized")
	ErrBufferTooSmall     = host.NewError(6108, host.KindCapacity, "mint buffer: account too small, resize first")
	ErrAlreadyInitialized = host.NewError(6109, host.KindValidation, "mint buffer: buffer already set up")
	ErrNotInitialized     = host.NewError(6110, host.KindValidation, "mint buffer: buffer not set up")
	ErrTooManyMints       = host.NewError(6111, host.KindCapacity, "mint buffer: too many mints for buffer sizing")
	ErrAlreadyLocked      = host.NewError(6112, host.KindOrdering, "mint buffer: buffer already locked")
)
