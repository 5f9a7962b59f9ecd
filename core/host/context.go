package host

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/gagliardetto/solana-go"

	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/events"
	"github.com/PsyProtocol/psy-doge-solana-bridge-sub001/core/state"
)

type txState struct {
	overlay  *state.Overlay
	recorder events.Recorder
	clock    Clock
	signers  map[solana.PublicKey]bool
	origLens map[solana.PublicKey]int
	logs     []string
}

type privilege struct {
	signer   bool
	writable bool
}

type snapshot struct {
	owner      solana.PublicKey
	lamports   uint64
	data       []byte
	executable bool
}

// Context is the execution frame of one program invocation.
type Context struct {
	ctx     context.Context
	host    *Host
	run     *txState
	program Program
	depth   int

	accounts map[solana.PublicKey]*state.Account
	privs    map[solana.PublicKey]privilege
	order    []solana.PublicKey
	snaps    map[solana.PublicKey]snapshot
}

func newContext(ctx context.Context, h *Host, run *txState, program Program, infos []*AccountInfo, depth int) *Context {
	c := &Context{
		ctx:      ctx,
		host:     h,
		run:      run,
		program:  program,
		depth:    depth,
		accounts: make(map[solana.PublicKey]*state.Account, len(infos)),
		privs:    make(map[solana.PublicKey]privilege, len(infos)),
	}
	for _, info := range infos {
		if _, seen := c.accounts[info.Key]; !seen {
			c.order = append(c.order, info.Key)
		}
		c.accounts[info.Key] = info.account
		p := c.privs[info.Key]
		p.signer = p.signer || info.IsSigner
		p.writable = p.writable || info.IsWritable
		c.privs[info.Key] = p
	}
	c.snapshot()
	return c
}

// Context returns the transaction's context.
func (c *Context) Context() context.Context { return c.ctx }

// ProgramID returns the id of the executing program.
func (c *Context) ProgramID() solana.PublicKey { return c.program.ID() }

// Clock returns the transaction clock.
func (c *Context) Clock() Clock { return c.run.clock }

// Depth is 1 for a top-level instruction and grows with each invocation.
func (c *Context) Depth() int { return c.depth }

// Emit records an event. Events are delivered only if the transaction commits.
func (c *Context) Emit(evt events.Event) { c.run.recorder.Emit(evt) }

// Logf appends a program log line to the receipt.
func (c *Context) Logf(format string, args ...any) {
	line := fmt.Sprintf("Program log: "+format, args...)
	c.run.logs = append(c.run.logs, line)
	c.Logger().Debug(line)
}

// Logger returns the host logger scoped to the executing program.
func (c *Context) Logger() *slog.Logger {
	return c.host.logger.With("program", c.program.Name(), "slot", c.run.clock.Slot)
}

// Invoke calls another program. Every account the callee receives must have
// been passed to the caller with at least the same privileges. Each entry of
// signerSeeds (seeds including the bump) grants signer status to the caller's
// program-derived address it produces.
func (c *Context) Invoke(ix solana.Instruction, signerSeeds ...[][]byte) error {
	if c.depth >= MaxInvokeDepth {
		return ErrCallDepth
	}
	callee, ok := c.host.programs[ix.ProgramID()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID())
	}
	data, err := ix.Data()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructionData, err)
	}
	derived := make(map[solana.PublicKey]bool, len(signerSeeds))
	for _, seeds := range signerSeeds {
		addr, err := solana.CreateProgramAddress(seeds, c.program.ID())
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidSeeds, err)
		}
		derived[addr] = true
	}
	if err := c.verify(); err != nil {
		return err
	}

	metas := ix.Accounts()
	infos := make([]*AccountInfo, len(metas))
	for i, meta := range metas {
		priv, ok := c.privs[meta.PublicKey]
		if !ok {
			return fmt.Errorf("%w: %s", ErrAccountNotInCaller, meta.PublicKey)
		}
		if meta.IsWritable && !priv.writable {
			return fmt.Errorf("%w: %s writable", ErrPrivilegeEscalation, meta.PublicKey)
		}
		if meta.IsSigner && !priv.signer && !derived[meta.PublicKey] {
			return fmt.Errorf("%w: %s signer", ErrPrivilegeEscalation, meta.PublicKey)
		}
		infos[i] = &AccountInfo{
			Key:        meta.PublicKey,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
			account:    c.accounts[meta.PublicKey],
		}
	}

	err = c.host.invoke(c.ctx, c.run, callee, infos, data, c.depth+1)
	c.snapshot()
	if err != nil {
		return &CallError{Program: callee.Name(), Err: err}
	}
	return nil
}

func (c *Context) snapshot() {
	c.snaps = make(map[solana.PublicKey]snapshot, len(c.order))
	for _, key := range c.order {
		acc := c.accounts[key]
		c.snaps[key] = snapshot{
			owner:      acc.Owner,
			lamports:   acc.Lamports,
			data:       append([]byte(nil), acc.Data...),
			executable: acc.Executable,
		}
	}
}

// verify checks every change made since the last snapshot against the
// executing program's privileges.
func (c *Context) verify() error {
	self := c.program.ID()
	var before, after uint64
	for _, key := range c.order {
		acc := c.accounts[key]
		snap := c.snaps[key]
		priv := c.privs[key]
		before += snap.lamports
		after += acc.Lamports

		if !acc.Owner.Equals(snap.owner) {
			return fmt.Errorf("%w: %s", ErrModifiedProgramID, key)
		}
		if acc.Executable != snap.executable {
			return fmt.Errorf("%w: %s", ErrExecutableModified, key)
		}
		if acc.Lamports != snap.lamports {
			if !priv.writable {
				return fmt.Errorf("%w: %s", ErrReadonlyLamportChange, key)
			}
			if acc.Lamports < snap.lamports && !snap.owner.Equals(self) {
				return fmt.Errorf("%w: %s", ErrExternalAccountLamportSpend, key)
			}
		}
		if !bytes.Equal(acc.Data, snap.data) {
			if !priv.writable {
				return fmt.Errorf("%w: %s", ErrReadonlyDataModified, key)
			}
			if !snap.owner.Equals(self) {
				return fmt.Errorf("%w: %s", ErrExternalAccountDataModified, key)
			}
		}
	}
	if before != after {
		return ErrUnbalancedInstruction
	}
	return nil
}
