package emulator

// CPU state
type CPU struct {
	PC       uint32        // The program counter register
	Regs     [32]uint32    // General purpose registers. The first value must always be 0
	Hi, Lo   uint32        // Multiply/divide result registers
	Cop0     *Cop0         // System control coprocessor
	Inter    *Interconnect // Memory interface
	Debugger *Debugger     // Optional, checked on every fetch

	nextPC uint32 // PC of the instruction after the current one
}

// Creates a new CPU state
func NewCPU(inter *Interconnect) *CPU {
	cpu := &CPU{
		Cop0:  NewCop0(),
		Inter: inter,
	}
	return cpu
}

// Runs the instruction at the program counter. Returns the class of the
// trap it raised, TRAP_NONE if it retired normally. When a trap is
// returned the faulting state has already been saved to its old area
func (cpu *CPU) Step() Trap {
	cpu.Inter.Time.Tick(1)
	cpu.Inter.Sync()

	if cpu.Cop0.IrqActive(cpu.Inter.Irq) {
		return cpu.exception(EXCEPTION_INTERRUPT, cpu.PC)
	}

	pc := cpu.PC
	if cpu.Debugger != nil {
		cpu.Debugger.changedPc(pc)
	}

	user := cpu.Cop0.SR.UserMode()
	if exc, ok := cpu.Inter.Translate(pc, user, false); !ok {
		return cpu.exception(exc, pc)
	}

	// fetch instruction at PC
	instruction := Instruction(cpu.Inter.Load32(pc))

	// PC points to the next instruction unless the instruction jumps
	cpu.nextPC = pc + 4 // wraps around: 0xfffffffc + 4 = 0
	if exc, ok := cpu.DecodeAndExecute(instruction); !ok {
		return cpu.exception(exc, pc)
	}
	cpu.PC = cpu.nextPC
	return TRAP_NONE
}

// Advances time to the next interrupt source without executing anything.
// Returns true if an interrupt line is pending afterwards
func (cpu *CPU) Idle() bool {
	if next, ok := cpu.Inter.NextEvent(); ok && next > cpu.Inter.Time.Cycles {
		cpu.Inter.Time.Tick(next - cpu.Inter.Time.Cycles)
	}
	cpu.Inter.Sync()
	return cpu.Inter.Irq.Active()
}

func (cpu *CPU) exception(cause Exception, pc uint32) Trap {
	cpu.Cop0.EnterException(cause, pc)
	trap := cause.Trap()
	StoreState(cpu.Inter, trap.OldArea(), cpu.SaveState())
	return trap
}

// Returns a snapshot of the processor registers
func (cpu *CPU) SaveState() State {
	s := State{
		Cause:  cpu.Cop0.GetCause(cpu.Inter.Irq),
		Status: uint32(cpu.Cop0.SR),
		PC:     cpu.Cop0.Epc,
	}
	for r := uint32(1); r < 32; r++ {
		if idx, ok := stateRegIndex(r); ok {
			s.Reg[idx] = int32(cpu.Regs[r])
		}
	}
	s.Reg[REG_HI] = int32(cpu.Hi)
	s.Reg[REG_LO] = int32(cpu.Lo)
	return s
}

// Installs `s` as the live processor state. The status register is
// loaded and then popped, so the previous KU/IE pair becomes current
func (cpu *CPU) LoadState(s State) {
	for r := uint32(1); r < 32; r++ {
		if idx, ok := stateRegIndex(r); ok {
			cpu.Regs[r] = uint32(s.Reg[idx])
		}
	}
	cpu.Regs[0] = 0
	cpu.Hi = uint32(s.Reg[REG_HI])
	cpu.Lo = uint32(s.Reg[REG_LO])
	cpu.PC = s.PC
	cpu.Cop0.Cause = s.Cause &^ CAUSE_IP_MASK
	cpu.Cop0.SetSR(s.Status)
	cpu.Cop0.ReturnFromException()
}

func (cpu *CPU) load32(addr uint32) (uint32, Exception, bool) {
	if exc, ok := cpu.Inter.Translate(addr, cpu.Cop0.SR.UserMode(), false); !ok {
		return 0, exc, false
	}
	if cpu.Debugger != nil {
		cpu.Debugger.memoryRead(addr)
	}
	return cpu.Inter.Load32(addr), 0, true
}

func (cpu *CPU) store32(addr, val uint32) (Exception, bool) {
	if exc, ok := cpu.Inter.Translate(addr, cpu.Cop0.SR.UserMode(), true); !ok {
		return exc, false
	}
	if cpu.Debugger != nil {
		cpu.Debugger.memoryWrite(addr)
	}
	cpu.Inter.Store32(addr, val)
	return 0, true
}

// Decodes and executes an instruction. Returns false and the exception
// to raise if the instruction traps
func (cpu *CPU) DecodeAndExecute(instruction Instruction) (Exception, bool) {
	i := instruction.ImmSE()
	s := instruction.S()
	t := instruction.T()

	switch instruction.Function() {
	case OP_SPECIAL:
		return cpu.executeSpecial(instruction)
	case OP_J:
		cpu.nextPC = (cpu.nextPC & 0xf0000000) | (instruction.ImmJump() << 2)
	case OP_JAL:
		cpu.SetReg(R_RA, cpu.nextPC)
		cpu.nextPC = (cpu.nextPC & 0xf0000000) | (instruction.ImmJump() << 2)
	case OP_BEQ:
		if cpu.Reg(s) == cpu.Reg(t) {
			cpu.nextPC += i << 2
		}
	case OP_BNE:
		if cpu.Reg(s) != cpu.Reg(t) {
			cpu.nextPC += i << 2
		}
	case OP_ADDI:
		v, err := add32Overflow(int32(cpu.Reg(s)), int32(i))
		if err != nil {
			return EXCEPTION_OVERFLOW, false
		}
		cpu.SetReg(t, uint32(v))
	case OP_ADDIU:
		cpu.SetReg(t, cpu.Reg(s)+i)
	case OP_SLTI:
		cpu.SetReg(t, oneIfTrue(int32(cpu.Reg(s)) < int32(i)))
	case OP_SLTIU:
		cpu.SetReg(t, oneIfTrue(cpu.Reg(s) < i))
	case OP_ANDI:
		cpu.SetReg(t, cpu.Reg(s)&instruction.Imm())
	case OP_ORI:
		cpu.SetReg(t, cpu.Reg(s)|instruction.Imm())
	case OP_XORI:
		cpu.SetReg(t, cpu.Reg(s)^instruction.Imm())
	case OP_LUI:
		// low 16 bits are set to 0
		cpu.SetReg(t, instruction.Imm()<<16)
	case OP_LW:
		v, exc, ok := cpu.load32(cpu.Reg(s) + i)
		if !ok {
			return exc, false
		}
		cpu.SetReg(t, v)
	case OP_SW:
		return cpu.store32(cpu.Reg(s)+i, cpu.Reg(t))
	default:
		if op := instruction.Function(); op >= OP_COP0 && op <= OP_COP3 {
			return EXCEPTION_COPROCESSOR_ERROR, false
		}
		return EXCEPTION_ILLEGAL_INSTRUCTION, false
	}
	return 0, true
}

func (cpu *CPU) executeSpecial(instruction Instruction) (Exception, bool) {
	s := instruction.S()
	t := instruction.T()
	d := instruction.D()

	switch instruction.Subfunction() {
	case FN_SLL:
		cpu.SetReg(d, cpu.Reg(t)<<instruction.Shift())
	case FN_SRL:
		cpu.SetReg(d, cpu.Reg(t)>>instruction.Shift())
	case FN_JR:
		cpu.nextPC = cpu.Reg(s)
	case FN_JALR:
		target := cpu.Reg(s)
		cpu.SetReg(d, cpu.nextPC)
		cpu.nextPC = target
	case FN_SYSCALL:
		return EXCEPTION_SYSCALL, false
	case FN_BREAK:
		return EXCEPTION_BREAK, false
	case FN_MFHI:
		cpu.SetReg(d, cpu.Hi)
	case FN_MFLO:
		cpu.SetReg(d, cpu.Lo)
	case FN_ADD:
		v, err := add32Overflow(int32(cpu.Reg(s)), int32(cpu.Reg(t)))
		if err != nil {
			return EXCEPTION_OVERFLOW, false
		}
		cpu.SetReg(d, uint32(v))
	case FN_ADDU:
		cpu.SetReg(d, cpu.Reg(s)+cpu.Reg(t))
	case FN_SUB:
		v, err := sub32Overflow(int32(cpu.Reg(s)), int32(cpu.Reg(t)))
		if err != nil {
			return EXCEPTION_OVERFLOW, false
		}
		cpu.SetReg(d, uint32(v))
	case FN_SUBU:
		cpu.SetReg(d, cpu.Reg(s)-cpu.Reg(t))
	case FN_AND:
		cpu.SetReg(d, cpu.Reg(s)&cpu.Reg(t))
	case FN_OR:
		cpu.SetReg(d, cpu.Reg(s)|cpu.Reg(t))
	case FN_XOR:
		cpu.SetReg(d, cpu.Reg(s)^cpu.Reg(t))
	case FN_NOR:
		cpu.SetReg(d, ^(cpu.Reg(s) | cpu.Reg(t)))
	case FN_SLT:
		cpu.SetReg(d, oneIfTrue(int32(cpu.Reg(s)) < int32(cpu.Reg(t))))
	case FN_SLTU:
		cpu.SetReg(d, oneIfTrue(cpu.Reg(s) < cpu.Reg(t)))
	default:
		return EXCEPTION_ILLEGAL_INSTRUCTION, false
	}
	return 0, true
}

// Returns the register value at `index`. The first register is always zero
func (cpu *CPU) Reg(index uint32) uint32 {
	return cpu.Regs[index]
}

// Sets the value at the `index` register and sets the first register to zero
func (cpu *CPU) SetReg(index, val uint32) {
	cpu.Regs[index] = val
	// R0 should always remain 0, we can't change it
	cpu.Regs[0] = 0
}
