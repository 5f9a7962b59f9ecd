package bridge

import "github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/host"

var (
	ErrInvalidInstruction                   = host.NewError(6000, host.KindValidation, "bridge: invalid instruction")
	ErrAlreadyInitialized                   = host.NewError(6001, host.KindValidation, "bridge: state already initialized")
	ErrNotInitialized                       = host.NewError(6002, host.KindValidation, "bridge: state not initialized")
	ErrInvalidStateAddress                  = host.NewError(6003, host.KindValidation, "bridge: account is not the bridge state address")
	ErrUnauthorizedOperator                 = host.NewError(6004, host.KindAuthorization, "bridge: operator signature required")
	ErrRemainingPendingMintsInPreviousState = host.NewError(6005, host.KindOrdering, "bridge: pending mints remain from the previous block")
	ErrBridgeZKPError                       = host.NewError(6006, host.KindCryptographic, "bridge: proof verification failed")
	ErrMintBufferHashMismatch               = host.NewError(6007, host.KindCryptographic, "bridge: mint buffer digest does not match")
	ErrMintBufferLocked                     = host.NewError(6008, host.KindAuthorization, "bridge: mint buffer is locked")
	ErrMintBufferWriter                     = host.NewError(6009, host.KindAuthorization, "bridge: mint buffer is not written by the operator")
	ErrTxoBufferHashMismatch                = host.NewError(6010, host.KindCryptographic, "bridge: txo buffer digest does not match")
	ErrTxoBufferNotFinalized                = host.NewError(6011, host.KindOrdering, "bridge: txo buffer not finalized")
	ErrTxoBufferHeightMismatch              = host.NewError(6012, host.KindValidation, "bridge: txo buffer height does not match")
	ErrBlockHeightNotAdvancing              = host.NewError(6013, host.KindOrdering, "bridge: block height must advance")
	ErrReorgTooLarge                        = host.NewError(6014, host.KindCapacity, "bridge: reorg spans more blocks than the backlog holds")
	ErrReorgInfosMismatch                   = host.NewError(6015, host.KindValidation, "bridge: reorg block infos do not match the new header")
	ErrRingEmpty                            = host.NewError(6016, host.KindOrdering, "bridge: no pending mints")
	ErrGroupAlreadyClaimed                  = host.NewError(6017, host.KindOrdering, "bridge: mint group already processed")
	ErrGroupOutOfRange                      = host.NewError(6018, host.KindOrdering, "bridge: mint group index out of range")
	ErrWrongMintBuffer                      = host.NewError(6019, host.KindValidation, "bridge: mint buffer is not the one being consumed")
	ErrRecipientMismatch                    = host.NewError(6020, host.KindValidation, "bridge: recipient accounts do not match the group")
	ErrNotLastGroup                         = host.NewError(6021, host.KindOrdering, "bridge: group marked last but mints remain")
	ErrInvalidWithdrawalAmount              = host.NewError(6022, host.KindNumeric, "bridge: withdrawal amount does not cover fees")
	ErrInvalidAddressType                   = host.NewError(6023, host.KindValidation, "bridge: unknown address type")
	ErrPaused                               = host.NewError(6024, host.KindOrdering, "bridge: withdrawals paused")
	ErrWrongMint                            = host.NewError(6025, host.KindValidation, "bridge: mint is not the bridge mint")
	ErrSighashMismatch                      = host.NewError(6026, host.KindCryptographic, "bridge: transaction hash does not match the return output sighash")
	ErrProcessedIndexOutOfRange             = host.NewError(6027, host.KindOrdering, "bridge: processed withdrawal index out of range")
	ErrGenericBufferIncomplete              = host.NewError(6028, host.KindOrdering, "bridge: transaction buffer not fully written")
	ErrNoFeesToWithdraw                     = host.NewError(6029, host.KindNumeric, "bridge: no fees to withdraw")
	ErrInvalidManualClaimAccount            = host.NewError(6031, host.KindValidation, "bridge: caller is not the depositor's manual claim account")
	ErrInvalidDepositAmount                 = host.NewError(6032, host.KindNumeric, "bridge: deposit amount does not cover fees")
	ErrInvalidRecipientAccount              = host.NewError(6033, host.KindValidation, "bridge: recipient token account mismatch")
	ErrFeeOverflow                          = host.NewError(6034, host.KindNumeric, "bridge: fee computation overflow")
	ErrInvalidFeeConfig                     = host.NewError(6035, host.KindValidation, "bridge: fee rate denominator must be non-zero and exceed the numerator")
	ErrFeeHistoryDecreased                  = host.NewError(6036, host.KindNumeric, "bridge: collected fee history cannot decrease")
	ErrInvalidManagerSet                    = host.NewError(6037, host.KindValidation, "bridge: manager set accounts do not match")
	ErrNothingToReplay                      = host.NewError(6038, host.KindOrdering, "bridge: buffer does not hold the last processed withdrawal")
	ErrTreeFull                             = host.NewError(6039, host.KindCapacity, "bridge: accumulator is full")
)
