package nucleus

import (
	"bytes"
	"testing"

	"github.com/zeozeozeo/gonucleus/emulator"
)

type machine struct {
	cpu     *emulator.CPU
	inter   *emulator.Interconnect
	n       *Nucleus
	termOut *bytes.Buffer
	prnOut  *bytes.Buffer
}

func newMachine(t *testing.T, cfg Config) *machine {
	t.Helper()
	inter := emulator.NewInterconnect(emulator.NewRAM(emulator.DEFAULT_RAM_SIZE), emulator.NewTimeHandler(1))
	m := &machine{
		cpu:     emulator.NewCPU(inter),
		inter:   inter,
		termOut: &bytes.Buffer{},
		prnOut:  &bytes.Buffer{},
	}
	inter.Install(TERMINAL_LINE, 0, emulator.NewTerminal(m.termOut))
	inter.Install(6, 0, emulator.NewPrinter(m.prnOut))
	m.n = New(m.cpu, cfg)
	return m
}

// Boots with a single kernel process at `pc` and dispatches it
func (m *machine) boot(t *testing.T, pc uint32) {
	t.Helper()
	if err := m.n.Boot(kernelState(pc)); err != nil {
		t.Fatalf("boot: %v", err)
	}
	m.n.scheduler()
	if m.n.Current() != 0 {
		t.Fatalf("expected process 0 to run, got %d", m.n.Current())
	}
}

// Initial state of a kernel process with interrupts enabled once loaded
func kernelState(pc uint32) emulator.State {
	return emulator.State{Status: emulator.STATUS_IEP | emulator.STATUS_IM_ALL, PC: pc}
}

// Status of a trap taken from kernel or user mode
func trapStatus(user bool) uint32 {
	if user {
		return emulator.STATUS_KUP
	}
	return 0
}

// Simulates a SYSCALL by the current process at `pc`
func (m *machine) syscall(user bool, pc uint32, a0, a1, a2, a3 int32) {
	s := emulator.State{
		Status: trapStatus(user),
		Cause:  uint32(emulator.EXCEPTION_SYSCALL) << emulator.CAUSE_EXC_SHIFT,
		PC:     pc,
	}
	s.Reg[emulator.REG_A0] = a0
	s.Reg[emulator.REG_A1] = a1
	s.Reg[emulator.REG_A2] = a2
	s.Reg[emulator.REG_A3] = a3
	emulator.StoreState(m.inter, emulator.SYS_OLD_AREA, s)
	m.n.syscallHandler()
}

// Simulates a trap of class `trap` with `s` as the faulting state
func (m *machine) trap(trap emulator.Trap, s emulator.State) {
	emulator.StoreState(m.inter, trap.OldArea(), s)
	switch trap {
	case emulator.TRAP_TLB:
		m.n.tlbHandler()
	case emulator.TRAP_PROGRAM:
		m.n.programTrapHandler()
	}
}

func (m *machine) readyQueue() []ProcID {
	var out []ProcID
	m.n.procs.EachProcQ(&m.n.readyQueue, func(id ProcID) { out = append(out, id) })
	return out
}

// Assembles a program from instruction groups
func program(groups ...[]uint32) []uint32 {
	var out []uint32
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Instructions issuing syscall `code` with up to three arguments
func sys(code int32, args ...uint32) []uint32 {
	regs := []uint32{emulator.R_A1, emulator.R_A2, emulator.R_A3}
	out := emulator.AsmLi(emulator.R_A0, uint32(code))
	for i, a := range args {
		out = append(out, emulator.AsmLi(regs[i], a)...)
	}
	return append(out, emulator.AsmSyscall())
}

func (m *machine) loadProgram(base uint32, code []uint32) {
	emulator.NewImage(base, code).Load(m.inter)
}
