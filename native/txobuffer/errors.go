package txobuffer

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction = host.NewError(6200, host.KindValidation, "txo buffer: invalid instruction")
	ErrInvalidAddress     = host.NewError(6201, host.KindValidation, "txo buffer: account is not the writer's buffer address")
	ErrUnauthorizedWriter = host.NewError(6202, host.KindAuthorization, "txo buffer: writer not authorized")
	ErrAlreadyInitialized = host.NewError(6203, host.KindValidation, "txo buffer: buffer already initialized")
	ErrNotInitialized     = host.NewError(6204, host.KindValidation, "txo buffer: buffer not initialized")
	ErrFinalized          = host.NewError(6205, host.KindOrdering, "txo buffer: batch already finalized")
	ErrBatchMismatch      = host.NewError(6206, host.KindOrdering, "txo buffer: batch id does not match the open batch")
	ErrHeightMismatch     = host.NewError(6207, host.KindOrdering, "txo buffer: block height does not match the open batch")
	ErrChunkTooLarge      = host.NewError(6208, host.KindCapacity, "txo buffer: chunk exceeds the per-write limit")
	ErrOutOfBounds        = host.NewError(6209, host.KindValidation, "txo buffer: write past the declared length")
	ErrIncomplete         = host.NewError(6210, host.KindOrdering, "txo buffer: body not fully written")
	ErrBufferTooSmall     = host.NewError(6211, host.KindCapacity, "txo buffer: account too small, resize first")
	ErrNoOpenBatch        = host.NewError(6212, host.KindOrdering, "txo buffer: no batch begun")
	ErrTooLarge           = host.NewError(6213, host.KindCapacity, "txo buffer: length exceeds the account limit")
	ErrStaleBatch         = host.NewError(6214, host.KindOrdering, "txo buffer: new batch id must exceed the finalized one")
)
