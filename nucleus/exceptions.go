package nucleus

import (
	"fmt"

	"github.com/zeozeozeo/gonucleus/emulator"
)

// Address translation failed
func (n *Nucleus) tlbHandler() {
	n.chargeCPU()
	n.passUpOrDie(TLB_TRAP, emulator.LoadState(n.mem, emulator.TLB_OLD_AREA))
}

// Illegal or undefined action, including privileged syscalls from user mode
func (n *Nucleus) programTrapHandler() {
	n.chargeCPU()
	n.passUpOrDie(PROGRAM_TRAP, emulator.LoadState(n.mem, emulator.PGM_OLD_AREA))
}

// SYSCALL or BREAK. Codes 1..8 are served here when requested from
// kernel mode; everything else goes through passUpOrDie
func (n *Nucleus) syscallHandler() {
	n.chargeCPU()
	old := emulator.LoadState(n.mem, emulator.SYS_OLD_AREA)

	p := n.currentPcb()
	p.State = old
	p.State.PC += INSTRUCTION_WIDTH

	code := old.A0()
	userMode := emulator.StatusRegister(old.Status).PreviousUserMode()
	reserved := code >= SYS_CREATEPROCESS && code <= SYS_WAITIO

	switch {
	case reserved && userMode:
		old.Cause &^= emulator.CAUSE_EXC_MASK
		old.Cause |= uint32(emulator.EXCEPTION_ILLEGAL_INSTRUCTION) << emulator.CAUSE_EXC_SHIFT
		emulator.StoreState(n.mem, emulator.PGM_OLD_AREA, old)
		n.log.Debug("privileged syscall from user mode", "pid", n.current, "code", code)
		n.passUpOrDie(PROGRAM_TRAP, old)
	case reserved:
		n.dispatchSyscall(code, &p.State)
	default:
		n.passUpOrDie(SYSCALL_TRAP, old)
	}
}

func (n *Nucleus) dispatchSyscall(code int32, s *emulator.State) {
	n.log.Trace("syscall", "pid", n.current, "code", code,
		"a1", s.A1(), "a2", s.A2(), "a3", s.A3())

	switch code {
	case SYS_CREATEPROCESS:
		n.createProcess(uint32(s.A1()))
	case SYS_TERMINATEPROCESS:
		n.terminateProcess(n.current)
		n.scheduler()
	case SYS_VERHOGEN:
		n.verhogen(uint32(s.A1()))
	case SYS_PASSEREN:
		n.passeren(uint32(s.A1()))
	case SYS_SPECTRAPVEC:
		n.specTrapVec(TrapType(s.A1()), uint32(s.A2()), uint32(s.A3()))
	case SYS_GETCPUTIME:
		n.getCPUTime()
	case SYS_WAITCLOCK:
		n.waitForClock()
	case SYS_WAITIO:
		n.waitForIO(int(s.A1()), int(s.A2()), s.A3() != 0)
	default:
		panicFmt("nucleus: syscall %d is not dispatchable", code)
	}
}

// Kills the current process if it has no handler for `t`, otherwise
// saves `old` in its registered old area and resumes it at the
// registered new area
func (n *Nucleus) passUpOrDie(t TrapType, old emulator.State) {
	p := n.currentPcb()
	vec := p.Vectors[t]

	switch vec.State {
	case VECTOR_UNREGISTERED:
		n.log.Debug("die", "pid", n.current, "trap", t.String(),
			"cause", fmt.Sprintf("0x%x", old.Cause), "pc", fmt.Sprintf("0x%x", old.PC))
		n.terminateProcess(n.current)
		n.current = NO_PROC
		n.scheduler()
	case VECTOR_REGISTERED:
		emulator.StoreState(n.mem, vec.OldArea, old)
		p.State = emulator.LoadState(n.mem, vec.NewArea)
		n.log.Debug("pass up", "pid", n.current, "trap", t.String(),
			"handler_pc", fmt.Sprintf("0x%x", p.State.PC))
		n.resume()
	}
}
