package genericbuffer

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction = host.NewError(6300, host.KindValidation, "generic buffer: invalid instruction")
	ErrInvalidAddress     = host.NewError(6301, host.KindValidation, "generic buffer: account is not the writer's buffer address")
	ErrUnauthorizedWriter = host.NewError(6302, host.KindAuthorization, "generic buffer: writer must sign")
	ErrNotInitialized     = host.NewError(6303, host.KindValidation, "generic buffer: buffer not initialized")
	ErrChunkTooLarge      = host.NewError(6304, host.KindCapacity, "generic buffer: chunk exceeds the per-write limit")
	ErrOutOfBounds        = host.NewError(6305, host.KindValidation, "generic buffer: write past the target size")
	ErrBufferTooSmall     = host.NewError(6306, host.KindCapacity, "generic buffer: account too small, resize first")
	ErrTooLarge           = host.NewError(6307, host.KindCapacity, "generic buffer: target exceeds the account limit")
	ErrIncomplete         = host.NewError(6308, host.KindOrdering, "generic buffer: body not fully written")
)
