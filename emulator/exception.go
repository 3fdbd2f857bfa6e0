package emulator

type Exception uint32

const (
	EXCEPTION_INTERRUPT           Exception = 0x0 // External interrupt (timer or device line)
	EXCEPTION_TLB_MODIFICATION    Exception = 0x1 // TLB entry marked read-only
	EXCEPTION_TLB_LOAD            Exception = 0x2 // TLB miss on load or instruction fetch
	EXCEPTION_TLB_STORE           Exception = 0x3 // TLB miss on store
	EXCEPTION_LOAD_ADDRESS_ERROR  Exception = 0x4 // Address error on load
	EXCEPTION_STORE_ADDRESS_ERROR Exception = 0x5 // Address error on store
	EXCEPTION_SYSCALL             Exception = 0x8 // System call (caused by the SYSCALL opcode)
	EXCEPTION_BREAK               Exception = 0x9 // Breakpoint (caused by BREAK opcode)
	EXCEPTION_ILLEGAL_INSTRUCTION Exception = 0xa // CPU encountered an unknown instruction
	EXCEPTION_COPROCESSOR_ERROR   Exception = 0xb // Unsupported coprocessor operation
	EXCEPTION_OVERFLOW            Exception = 0xc // Arithmetic overflow
)

// Trap is the class of a processor exception. Each class has its own
// fixed old area that the processor writes the faulting state to
type Trap int

const (
	TRAP_NONE      Trap = iota // Instruction retired without a trap
	TRAP_INTERRUPT             // Interrupt line became pending
	TRAP_TLB                   // Address translation failed
	TRAP_PROGRAM               // Illegal instruction, address error, overflow...
	TRAP_SYSCALL               // SYSCALL or BREAK
)

func (trap Trap) String() string {
	switch trap {
	case TRAP_NONE:
		return "none"
	case TRAP_INTERRUPT:
		return "interrupt"
	case TRAP_TLB:
		return "tlb"
	case TRAP_PROGRAM:
		return "program"
	case TRAP_SYSCALL:
		return "syscall"
	}
	return "unknown"
}

// Returns the trap class an exception code belongs to
func (exc Exception) Trap() Trap {
	switch exc {
	case EXCEPTION_INTERRUPT:
		return TRAP_INTERRUPT
	case EXCEPTION_TLB_MODIFICATION, EXCEPTION_TLB_LOAD, EXCEPTION_TLB_STORE:
		return TRAP_TLB
	case EXCEPTION_SYSCALL, EXCEPTION_BREAK:
		return TRAP_SYSCALL
	default:
		return TRAP_PROGRAM
	}
}

// Returns the address of the old area the processor saves state to for this trap
func (trap Trap) OldArea() uint32 {
	switch trap {
	case TRAP_INTERRUPT:
		return INT_OLD_AREA
	case TRAP_TLB:
		return TLB_OLD_AREA
	case TRAP_PROGRAM:
		return PGM_OLD_AREA
	case TRAP_SYSCALL:
		return SYS_OLD_AREA
	}
	panicFmt("exception: trap %d has no old area", trap)
	return 0
}
