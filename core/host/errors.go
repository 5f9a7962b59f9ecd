package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Kind classifies program errors.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindAuthorization Kind = "authorization"
	KindOrdering      Kind = "ordering"
	KindNumeric       Kind = "numeric"
	KindCryptographic Kind = "cryptographic"
	KindCapacity      Kind = "capacity"
	KindCPI           Kind = "cpi"
)

// ProgramError is a numbered domain error. Any ProgramError aborts the
// transaction that raised it.
type ProgramError struct {
	Code uint32
	Kind Kind
	Msg  string
}

// NewError declares a program error.
func NewError(code uint32, kind Kind, msg string) *ProgramError {
	return &ProgramError{Code: code, Kind: kind, Msg: msg}
}

func (e *ProgramError) Error() string { return e.Msg }

// Is matches program errors by code.
func (e *ProgramError) Is(target error) bool {
	t, ok := target.(*ProgramError)
	return ok && t.Code == e.Code
}

var (
	ErrMissingRequiredSignature    = NewError(1, KindAuthorization, "host: missing required signature")
	ErrUnknownProgram              = NewError(2, KindValidation, "host: unknown program")
	ErrNotEnoughAccountKeys        = NewError(3, KindValidation, "host: not enough account keys")
	ErrInvalidInstructionData      = NewError(4, KindValidation, "host: invalid instruction data")
	ErrAccountNotInCaller          = NewError(5, KindValidation, "host: account not passed by caller")
	ErrPrivilegeEscalation         = NewError(6, KindAuthorization, "host: cross-program invocation privilege escalation")
	ErrExternalAccountDataModified = NewError(7, KindAuthorization, "host: data of an account owned by another program modified")
	ErrReadonlyDataModified        = NewError(8, KindAuthorization, "host: data of a read-only account modified")
	ErrExternalAccountLamportSpend = NewError(9, KindAuthorization, "host: lamports of an account owned by another program debited")
	ErrReadonlyLamportChange       = NewError(10, KindAuthorization, "host: lamports of a read-only account changed")
	ErrModifiedProgramID           = NewError(11, KindAuthorization, "host: account owner modified outside the system program")
	ErrCallDepth                   = NewError(12, KindCapacity, "host: cross-program invocation depth exceeded")
	ErrAccountAlreadyInUse         = NewError(13, KindValidation, "host: account already in use")
	ErrInvalidSeeds                = NewError(14, KindValidation, "host: seeds do not derive the account")
	ErrInsufficientFunds           = NewError(15, KindNumeric, "host: insufficient funds")
	ErrInvalidRealloc              = NewError(16, KindCapacity, "host: account data growth exceeds the permitted increase")
	ErrAccountNotRentExempt        = NewError(17, KindNumeric, "host: account balance below rent exemption")
	ErrUnbalancedInstruction       = NewError(18, KindNumeric, "host: instruction changed total lamports")
	ErrExecutableModified          = NewError(19, KindAuthorization, "host: executable flag modified")
	ErrIllegalOwner                = NewError(20, KindAuthorization, "host: account owner cannot perform this operation")
	ErrEmptyTransaction            = NewError(21, KindValidation, "host: transaction has no instructions")
)

// CodeOf extracts the outermost program error carried by err.
func CodeOf(err error) (*ProgramError, bool) {
	var pe *ProgramError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// CallError wraps a failure raised by a program reached through a
// cross-program invocation.
type CallError struct {
	Program string
	Err     error
}

func (e *CallError) Error() string { return fmt.Sprintf("invoke %s: %v", e.Program, e.Err) }

func (e *CallError) Unwrap() error { return e.Err }

// InstructionError reports which top-level instruction aborted a transaction.
type InstructionError struct {
	Index       int
	Program     solana.PublicKey
	ProgramName string
	Err         error
}

func (e *InstructionError) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", e.Index, e.ProgramName, e.Err)
}

func (e *InstructionError) Unwrap() error { return e.Err }

// Code returns the (code, program, message) triple of the innermost failing
// program. Code 0 marks an error that did not originate in a program.
func (e *InstructionError) Code() (uint32, string, string) {
	program := e.ProgramName
	err := e.Err
	var call *CallError
	for errors.As(err, &call) {
		program = call.Program
		err = call.Err
	}
	if pe, ok := CodeOf(err); ok {
		return pe.Code, program, pe.Msg
	}
	return 0, program, err.Error()
}

// Retryable reports whether err is transient. Program errors are domain
// failures and never retryable; storage failures and deadlines are. A canceled
// context is the caller's decision and is not retried.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := CodeOf(err); ok {
		return false
	}
	return !errors.Is(err, context.Canceled)
}
