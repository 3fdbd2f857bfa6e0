package nucleus

import (
	"context"
	"errors"
	"testing"

	"github.com/zeozeozeo/gonucleus/emulator"
)

const codeBase = emulator.USER_BASE

// Transmits `c` on terminal 0 and waits for the completion, storing the
// status word at the address in s0
func putc(c byte) []uint32 {
	return program(
		emulator.AsmLi(emulator.R_T0, emulator.DeviceRegAddr(TERMINAL_LINE, 0)+emulator.TERM_TRANSM_COMMAND*4),
		emulator.AsmLi(emulator.R_T1, uint32(c)<<8|emulator.DEV_CMD_OP),
		[]uint32{emulator.AsmSw(emulator.R_T1, emulator.R_T0, 0)},
		sys(SYS_WAITIO, TERMINAL_LINE, 0, 0),
		[]uint32{emulator.AsmSw(emulator.R_V0, emulator.R_S0, 0)},
	)
}

func TestRunTerminalOutput(t *testing.T) {
	m := newMachine(t, Config{})
	m.loadProgram(codeBase, program(
		emulator.AsmLi(emulator.R_S0, 0x3000),
		putc('h'),
		putc('i'),
		sys(SYS_TERMINATEPROCESS),
	))
	if err := m.n.Boot(kernelState(codeBase)); err != nil {
		t.Fatal(err)
	}

	if err := m.n.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if out := m.termOut.String(); out != "hi" {
		t.Fatalf("expected \"hi\", got %q", out)
	}
	if status := m.inter.Load32(0x3000); status != emulator.DEV_STATUS_CHAR_DONE|uint32('i')<<8 {
		t.Fatalf("unexpected status word 0x%x", status)
	}
	if m.n.SoftBlockCount() != 0 {
		t.Fatalf("soft-blocked count leaked: %d", m.n.SoftBlockCount())
	}
}

func TestRunDeadlock(t *testing.T) {
	m := newMachine(t, Config{})
	m.loadProgram(codeBase, sys(SYS_PASSEREN, 0x3000))
	m.n.Boot(kernelState(codeBase))

	if err := m.n.Run(context.Background()); !errors.Is(err, ErrDeadlock) {
		t.Fatalf("expected deadlock, got %v", err)
	}
}

func TestRunWaitForClock(t *testing.T) {
	m := newMachine(t, Config{ClockPeriod: 1000})
	m.loadProgram(codeBase, program(
		sys(SYS_WAITCLOCK),
		sys(SYS_WAITCLOCK),
		sys(SYS_TERMINATEPROCESS),
	))
	m.n.Boot(kernelState(codeBase))

	if err := m.n.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.inter.Time.TOD() < 1000 {
		t.Fatalf("two clock waits finished after only %dus", m.inter.Time.TOD())
	}
}

func TestRunCycleBudget(t *testing.T) {
	m := newMachine(t, Config{MaxCycles: 5000})
	m.loadProgram(codeBase, []uint32{emulator.AsmJ(codeBase)})
	m.n.Boot(kernelState(codeBase))

	if err := m.n.Run(context.Background()); !errors.Is(err, ErrCycleBudget) {
		t.Fatalf("expected cycle budget error, got %v", err)
	}
}

func TestRunCancelled(t *testing.T) {
	m := newMachine(t, Config{})
	m.loadProgram(codeBase, []uint32{emulator.AsmJ(codeBase)})
	m.n.Boot(kernelState(codeBase))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.n.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestRunIllegalInstructionPassUp(t *testing.T) {
	const (
		oldArea   = 0x3000
		newArea   = 0x3100
		handlerPC = codeBase + 0x100
	)
	m := newMachine(t, Config{})
	emulator.StoreState(m.inter, newArea, emulator.State{PC: handlerPC})

	code := program(
		sys(SYS_SPECTRAPVEC, uint32(PROGRAM_TRAP), oldArea, newArea),
		[]uint32{0xfc000000}, // opcode 0x3f is not an instruction
	)
	m.loadProgram(codeBase, code)
	m.loadProgram(handlerPC, sys(SYS_TERMINATEPROCESS))
	m.n.Boot(kernelState(codeBase))

	if err := m.n.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	saved := emulator.LoadState(m.inter, oldArea)
	if saved.PC != codeBase+uint32(len(code)-1)*4 {
		t.Fatalf("old area holds pc 0x%x", saved.PC)
	}
	exc := emulator.Exception((saved.Cause & emulator.CAUSE_EXC_MASK) >> emulator.CAUSE_EXC_SHIFT)
	if exc != emulator.EXCEPTION_ILLEGAL_INSTRUCTION {
		t.Fatalf("old area holds cause %d", exc)
	}
}

func TestRunUserModeProcessDiesOnPrivilegedSyscall(t *testing.T) {
	m := newMachine(t, Config{})
	emulator.StoreState(m.inter, 0x3100, kernelState(0x4000))
	m.loadProgram(codeBase, sys(SYS_CREATEPROCESS, 0x3100))

	user := kernelState(codeBase)
	user.Status |= emulator.STATUS_KUP
	m.n.Boot(user)

	if err := m.n.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if m.n.ProcessCount() != 0 {
		t.Fatalf("expected no processes, got %d", m.n.ProcessCount())
	}
}

func TestSnapshot(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	emulator.StoreState(m.inter, 0x3100, kernelState(0x4000))
	m.syscall(false, 0x2000, SYS_CREATEPROCESS, 0x3100, 0, 0)
	m.syscall(false, 0x2000, SYS_WAITCLOCK, 0, 0, 0)

	snap := m.n.Snapshot()
	assert(snap.ProcessCount == 2)
	assert(snap.SoftBlockCount == 1)
	assert(snap.Current == 1)
	roots := snap.Roots()
	assert(len(roots) == 1 && roots[0] == 0)

	root, ok := snap.Process(0)
	assert(ok && root.State == PROC_BLOCKED && root.SemAdd == CLOCK_SEM_ADDR)
	assert(len(root.Children) == 1 && root.Children[0] == 1)

	assert(len(snap.Semaphores) == 1)
	assert(snap.Semaphores[0].Device && snap.Semaphores[0].Value == -1)
}

func TestBootTwice(t *testing.T) {
	m := newMachine(t, Config{})
	if err := m.n.Boot(kernelState(codeBase)); err != nil {
		t.Fatal(err)
	}
	if err := m.n.Boot(kernelState(codeBase)); !errors.Is(err, ErrBooted) {
		t.Fatalf("expected ErrBooted, got %v", err)
	}
}

func TestObserverSeesEveryDispatch(t *testing.T) {
	var dispatched []ProcID
	m := newMachine(t, Config{
		Observer: func(snap Snapshot) {
			dispatched = append(dispatched, snap.Current)
		},
	})
	emulator.StoreState(m.inter, 0x3100, kernelState(codeBase+0x100))
	m.loadProgram(codeBase, program(
		sys(SYS_CREATEPROCESS, 0x3100),
		sys(SYS_PASSEREN, 0x3000),
		sys(SYS_TERMINATEPROCESS),
	))
	m.loadProgram(codeBase+0x100, program(
		sys(SYS_VERHOGEN, 0x3000),
		sys(SYS_TERMINATEPROCESS),
	))
	m.n.Boot(kernelState(codeBase))

	if err := m.n.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	// 0, then 1 while 0 waits, then 0 again once 1 is gone
	if len(dispatched) != 3 || dispatched[0] != 0 || dispatched[1] != 1 || dispatched[2] != 0 {
		t.Fatalf("unexpected dispatch order %v", dispatched)
	}
}
