package nucleus

import (
	"testing"

	"github.com/zeozeozeo/gonucleus/emulator"
)

func faultState(exc emulator.Exception, pc uint32) emulator.State {
	return emulator.State{
		Cause: uint32(exc) << emulator.CAUSE_EXC_SHIFT,
		PC:    pc,
	}
}

func TestTLBMissWithoutHandlerKillsSubtree(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	emulator.StoreState(m.inter, 0x3100, kernelState(0x4000))
	m.syscall(false, 0x2000, SYS_CREATEPROCESS, 0x3100, 0, 0)
	m.syscall(false, 0x2000, SYS_CREATEPROCESS, 0x3100, 0, 0)
	assert(m.n.ProcessCount() == 3)

	m.trap(emulator.TRAP_TLB, faultState(emulator.EXCEPTION_TLB_LOAD, 0x2008))

	assert(m.n.ProcessCount() == 0)
	assert(m.n.Current() == NO_PROC)
	assert(len(m.readyQueue()) == 0)
}

func TestProgramTrapPassUp(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	emulator.StoreState(m.inter, 0x3200, kernelState(0x5000))
	m.syscall(false, 0x2000, SYS_SPECTRAPVEC, int32(PROGRAM_TRAP), 0x3100, 0x3200)

	fault := faultState(emulator.EXCEPTION_ILLEGAL_INSTRUCTION, 0x2004)
	fault.Reg[emulator.REG_T9] = 42
	m.trap(emulator.TRAP_PROGRAM, fault)

	assert(m.n.ProcessCount() == 1)
	assert(m.n.Current() == 0)
	assert(emulator.LoadState(m.inter, 0x3100) == fault)
	assert(m.n.procs.Get(0).State.PC == 0x5000)
	assert(m.cpu.PC == 0x5000)
}

func TestTLBPassUpIgnoresOtherCategories(t *testing.T) {
	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	m.syscall(false, 0x2000, SYS_SPECTRAPVEC, int32(PROGRAM_TRAP), 0x3100, 0x3200)

	// only the program trap handler is registered
	m.trap(emulator.TRAP_TLB, faultState(emulator.EXCEPTION_TLB_STORE, 0x2004))
	if m.n.ProcessCount() != 0 {
		t.Fatalf("a TLB miss without a TLB handler must kill the process")
	}
}

func TestHighSyscallWithoutHandlerKills(t *testing.T) {
	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	m.syscall(false, 0x2000, 9, 0, 0, 0)
	if m.n.ProcessCount() != 0 || m.n.Current() != NO_PROC {
		t.Fatalf("syscall 9 without a handler must kill the process")
	}
}

func TestHighSyscallPassUp(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	m := newMachine(t, Config{})
	m.boot(t, 0x2000)
	emulator.StoreState(m.inter, 0x3200, kernelState(0x6000))
	m.syscall(false, 0x2000, SYS_SPECTRAPVEC, int32(SYSCALL_TRAP), 0x3100, 0x3200)

	// user mode is fine for codes above 8
	m.syscall(true, 0x2080, 12, 1, 2, 3)

	saved := emulator.LoadState(m.inter, 0x3100)
	assert(saved.A0() == 12 && saved.A1() == 1 && saved.A3() == 3)
	assert(saved.PC == 0x2080)
	assert(m.n.Current() == 0)
	assert(m.n.procs.Get(0).State.PC == 0x6000)
}

func TestInvalidLowSyscallCode(t *testing.T) {
	for _, code := range []int32{0, -1} {
		m := newMachine(t, Config{})
		m.boot(t, 0x2000)
		m.syscall(false, 0x2000, code, 0, 0, 0)
		if m.n.ProcessCount() != 0 {
			t.Errorf("code %d must be passed up or die", code)
		}
	}
}

func TestSyscallChargesCPUTime(t *testing.T) {
	m := newMachine(t, Config{})
	m.boot(t, 0x2000)

	m.inter.Time.Tick(500)
	m.syscall(false, 0x2000, SYS_GETCPUTIME, 0, 0, 0)
	if v0 := m.n.procs.Get(0).State.V0(); v0 != 500 {
		t.Fatalf("expected 500us of CPU time, got %d", v0)
	}
}
