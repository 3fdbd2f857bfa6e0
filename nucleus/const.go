package nucleus

import "github.com/zeozeozeo/gonucleus/emulator"

// Maximum number of concurrent processes
const MAXPROC = 20

// Syscall codes, passed in a0
const (
	SYS_CREATEPROCESS    = 1
	SYS_TERMINATEPROCESS = 2
	SYS_VERHOGEN         = 3
	SYS_PASSEREN         = 4
	SYS_SPECTRAPVEC      = 5
	SYS_GETCPUTIME       = 6
	SYS_WAITCLOCK        = 7
	SYS_WAITIO           = 8
)

// Trap categories a process can register a handler for
type TrapType int

const (
	TLB_TRAP     TrapType = 0
	PROGRAM_TRAP TrapType = 1
	SYSCALL_TRAP TrapType = 2

	TRAP_TYPES = 3
)

func (t TrapType) String() string {
	switch t {
	case TLB_TRAP:
		return "tlb"
	case PROGRAM_TRAP:
		return "program"
	case SYSCALL_TRAP:
		return "syscall"
	}
	return "invalid"
}

// Width of one instruction, the PC advance past a handled SYSCALL
const INSTRUCTION_WIDTH = 4

// Device semaphore table. Lines 3..6 use row line-3, the terminal line
// is split into a receive row and a transmit row
const (
	DEVICE_ROWS    = emulator.DEV_INT_NUM + 1
	DEVICE_PER_ROW = emulator.DEV_PER_INT

	TERMINAL_LINE   = 7
	TERM_READ_ROW   = TERMINAL_LINE - emulator.DEV_LINE_0
	TERM_WRITE_ROW  = TERM_READ_ROW + 1
	DEVICE_LINE_MIN = emulator.DEV_LINE_0
	DEVICE_LINE_MAX = TERMINAL_LINE
)

// Nucleus-owned semaphore counters live in kernel RAM
const (
	DEVICE_SEM_BASE = emulator.KERNEL_DATA_BASE
	CLOCK_SEM_ADDR  = DEVICE_SEM_BASE + DEVICE_ROWS*DEVICE_PER_ROW*4
)

// Pseudo-clock tick, in microseconds
const PSEUDO_CLOCK_PERIOD = 100000

// Address of the device semaphore for (`row`, `dev`)
func deviceSemAddr(row, dev int) uint32 {
	return DEVICE_SEM_BASE + uint32(row*DEVICE_PER_ROW+dev)*4
}
