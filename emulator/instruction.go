package emulator

type Instruction uint32

// Primary opcodes, bits [31:26]
const (
	OP_SPECIAL = 0x00
	OP_J       = 0x02
	OP_JAL     = 0x03
	OP_BEQ     = 0x04
	OP_BNE     = 0x05
	OP_ADDI    = 0x08
	OP_ADDIU   = 0x09
	OP_SLTI    = 0x0a
	OP_SLTIU   = 0x0b
	OP_ANDI    = 0x0c
	OP_ORI     = 0x0d
	OP_XORI    = 0x0e
	OP_LUI     = 0x0f
	OP_COP0    = 0x10
	OP_COP3    = 0x13
	OP_LW      = 0x23
	OP_SW      = 0x2b
)

// SPECIAL subfunctions, bits [5:0]
const (
	FN_SLL     = 0x00
	FN_SRL     = 0x02
	FN_JR      = 0x08
	FN_JALR    = 0x09
	FN_SYSCALL = 0x0c
	FN_BREAK   = 0x0d
	FN_MFHI    = 0x10
	FN_MFLO    = 0x12
	FN_ADD     = 0x20
	FN_ADDU    = 0x21
	FN_SUB     = 0x22
	FN_SUBU    = 0x23
	FN_AND     = 0x24
	FN_OR      = 0x25
	FN_XOR     = 0x26
	FN_NOR     = 0x27
	FN_SLT     = 0x2a
	FN_SLTU    = 0x2b
)

// Return bits [31:26] of the instruction
func (op Instruction) Function() uint32 {
	return uint32(op) >> 26
}

// Return bits [5:0] of the instruction
func (op Instruction) Subfunction() uint32 {
	return uint32(op) & 0x3f
}

// Return register index in bits [25:21]
func (op Instruction) S() uint32 {
	return (uint32(op) >> 21) & 0x1f
}

// Return register index in bits [20:16]
func (op Instruction) T() uint32 {
	return (uint32(op) >> 16) & 0x1f
}

// Return register index in bits [15:11]
func (op Instruction) D() uint32 {
	return (uint32(op) >> 11) & 0x1f
}

// Return immediate value in bits [15:0]
func (op Instruction) Imm() uint32 {
	return uint32(op) & 0xffff
}

// Return immediate value in bits [15:0] as a sign-extended 32 bit value
func (op Instruction) ImmSE() uint32 {
	v := int16(uint32(op) & 0xffff)
	return uint32(int32(v))
}

// Jump target stored in bits [25:0]
func (op Instruction) ImmJump() uint32 {
	return uint32(op) & 0x3ffffff
}

// Shift Immediate values are stored in bits [10:6]
func (op Instruction) Shift() uint32 {
	return (uint32(op) >> 6) & 0x1f
}
