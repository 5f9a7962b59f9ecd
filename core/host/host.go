// Package host executes transactions against the bridge programs. It owns the
// account store, enforces account privileges after every program call, and
// provides cross-program invocation with program-derived signers.
package host

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/events"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/state"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/types"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/metrics"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/observability/otel"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/storage"
)

// MaxInvokeDepth bounds nested cross-program invocations.
const MaxInvokeDepth = 4

// Program is an on-chain program.
type Program interface {
	ID() solana.PublicKey
	Name() string
	Execute(ctx *Context, accounts []*AccountInfo, data []byte) error
}

// InstructionNamer is implemented by programs that can label instruction data
// for metrics and logs.
type InstructionNamer interface {
	InstructionName(data []byte) string
}

// Clock is the execution clock visible to programs.
type Clock struct {
	Slot          uint64
	UnixTimestamp int64
}

// Transaction is an ordered list of instructions plus the keys that signed it.
// Signature verification belongs to the transport; the host trusts Signers.
type Transaction struct {
	Instructions []solana.Instruction
	Signers      []solana.PublicKey
}

// NewTransaction builds a transaction.
func NewTransaction(signers []solana.PublicKey, instructions ...solana.Instruction) *Transaction {
	return &Transaction{Instructions: instructions, Signers: signers}
}

// Receipt describes a committed transaction.
type Receipt struct {
	Slot            uint64
	DeltaHash       types.H256
	AccountsWritten int
	Events          []events.Event
	Logs            []string
}

// DeriveProgramID maps a program name to a deterministic program id.
func DeriveProgramID(name string) solana.PublicKey {
	sum := sha256.Sum256([]byte(name))
	return solana.PublicKeyFromBytes(sum[:])
}

// Host runs transactions one at a time.
type Host struct {
	mu       sync.Mutex
	accounts *state.AccountsDB
	programs map[solana.PublicKey]Program
	emitter  events.Emitter
	logger   *slog.Logger
	metrics  *metrics.BridgeMetrics
	tracer   trace.Tracer
	nowFn    func() int64
	slot     uint64
}

// New creates a host over db with the system program registered.
func New(db storage.Database) *Host {
	h := &Host{
		accounts: state.NewAccountsDB(db),
		programs: make(map[solana.PublicKey]Program),
		emitter:  events.NoopEmitter{},
		logger:   slog.Default(),
		metrics:  metrics.Bridge(),
		tracer:   otel.Tracer(),
		nowFn:    func() int64 { return time.Now().Unix() },
	}
	h.programs[solana.SystemProgramID] = systemProgram{}
	return h
}

// SetEmitter configures where committed events are delivered. Passing nil
// resets the emitter to a no-op.
func (h *Host) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		h.emitter = events.NoopEmitter{}
		return
	}
	h.emitter = emitter
}

// SetLogger overrides the logger.
func (h *Host) SetLogger(logger *slog.Logger) {
	if logger != nil {
		h.logger = logger
	}
}

// SetNowFunc overrides the time source used for the clock. Primarily intended
// for tests to provide deterministic timestamps.
func (h *Host) SetNowFunc(now func() int64) {
	if now == nil {
		h.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	h.nowFn = now
}

// Register adds a program. Registering the same id twice is an error.
func (h *Host) Register(p Program) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.programs[p.ID()]; exists {
		return fmt.Errorf("host: program %s already registered", p.ID())
	}
	h.programs[p.ID()] = p
	return nil
}

// Program returns the registered program with id.
func (h *Host) Program(id solana.PublicKey) (Program, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.programs[id]
	return p, ok
}

// Account reads a committed account.
func (h *Host) Account(key solana.PublicKey) (*state.Account, error) {
	return h.accounts.Get(key)
}

// SetAccount writes an account directly, bypassing programs. Used for genesis
// and fixtures.
func (h *Host) SetAccount(key solana.PublicKey, acc *state.Account) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.accounts.Put(key, acc)
}

// Airdrop credits lamports to a system account.
func (h *Host) Airdrop(key solana.PublicKey, lamports uint64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	acc, err := h.accounts.Get(key)
	if err != nil {
		return err
	}
	acc.Lamports += lamports
	return h.accounts.Put(key, acc)
}

// Execute runs every instruction of tx. Either all of them succeed and their
// writes are committed together, or nothing is written.
func (h *Host) Execute(ctx context.Context, tx *Transaction) (*Receipt, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	started := time.Now()
	ctx, span := h.tracer.Start(ctx, "host.Execute", trace.WithAttributes(
		attribute.Int("instructions", len(tx.Instructions)),
	))
	defer span.End()

	receipt, err := h.execute(ctx, tx)
	h.metrics.ObserveTransaction(time.Since(started), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logArgs := []any{"slot", h.slot, "error", err}
		var ixErr *InstructionError
		if errors.As(err, &ixErr) {
			code, program, _ := ixErr.Code()
			logArgs = append(logArgs, "program", program, "code", code)
		}
		h.logger.Info("transaction reverted", logArgs...)
		return nil, err
	}
	span.SetAttributes(attribute.Int("accounts_written", receipt.AccountsWritten))
	h.logger.Debug("transaction committed",
		"slot", receipt.Slot,
		"accounts", receipt.AccountsWritten,
		"events", len(receipt.Events))
	return receipt, nil
}

func (h *Host) execute(ctx context.Context, tx *Transaction) (*Receipt, error) {
	if len(tx.Instructions) == 0 {
		return nil, ErrEmptyTransaction
	}
	h.slot++
	run := &txState{
		overlay: h.accounts.Begin(),
		clock:   Clock{Slot: h.slot, UnixTimestamp: h.nowFn()},
		signers: make(map[solana.PublicKey]bool, len(tx.Signers)),
	}
	for _, signer := range tx.Signers {
		run.signers[signer] = true
	}

	for idx, ix := range tx.Instructions {
		programID := ix.ProgramID()
		program, ok := h.programs[programID]
		if !ok {
			return nil, &InstructionError{Index: idx, Program: programID, ProgramName: programID.String(), Err: ErrUnknownProgram}
		}
		err := h.executeTopLevel(ctx, run, program, ix)
		h.metrics.ObserveInstruction(program.Name(), instructionName(program, ix), err)
		if err != nil {
			return nil, &InstructionError{Index: idx, Program: programID, ProgramName: program.Name(), Err: err}
		}
	}

	root, written, err := run.overlay.Commit()
	if err != nil {
		return nil, fmt.Errorf("host: commit: %w", err)
	}
	receipt := &Receipt{
		Slot:            run.clock.Slot,
		DeltaHash:       root,
		AccountsWritten: written,
		Events:          append([]events.Event(nil), run.recorder.Events()...),
		Logs:            run.logs,
	}
	run.recorder.Flush(h.emitter)
	return receipt, nil
}

func (h *Host) executeTopLevel(ctx context.Context, run *txState, program Program, ix solana.Instruction) error {
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	metas := ix.Accounts()
	infos := make([]*AccountInfo, len(metas))
	run.origLens = make(map[solana.PublicKey]int, len(metas))
	for i, meta := range metas {
		if meta.IsSigner && !run.signers[meta.PublicKey] {
			return fmt.Errorf("%w: %s", ErrMissingRequiredSignature, meta.PublicKey)
		}
		acc, err := run.overlay.Load(meta.PublicKey)
		if err != nil {
			return err
		}
		if _, seen := run.origLens[meta.PublicKey]; !seen {
			run.origLens[meta.PublicKey] = len(acc.Data)
		}
		infos[i] = &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			account:    acc,
		}
	}
	return h.invoke(ctx, run, program, infos, data, 1)
}

func (h *Host) invoke(ctx context.Context, run *txState, program Program, infos []*AccountInfo, data []byte, depth int) error {
	frame := newContext(ctx, h, run, program, infos, depth)
	if err := program.Execute(frame, infos, data); err != nil {
		return err
	}
	return frame.verify()
}

func instructionName(program Program, ix solana.Instruction) string {
	namer, ok := program.(InstructionNamer)
	if !ok {
		return ""
	}
	data, err := ix.Data()
	if err != nil {
		return ""
	}
	return namer.InstructionName(data)
}
