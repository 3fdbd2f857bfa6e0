package emulator

// Encoders for the supported instruction set. They are used to build
// test programs and the demo image without an external assembler

func encodeI(op, rs, rt uint32, imm int32) uint32 {
	return op<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | uint32(imm)&0xffff
}

func encodeR(rs, rt, rd, shamt, fn uint32) uint32 {
	return OP_SPECIAL<<26 | (rs&0x1f)<<21 | (rt&0x1f)<<16 | (rd&0x1f)<<11 | (shamt&0x1f)<<6 | fn
}

func AsmNop() uint32                   { return 0 }
func AsmSyscall() uint32               { return encodeR(0, 0, 0, 0, FN_SYSCALL) }
func AsmBreak() uint32                 { return encodeR(0, 0, 0, 0, FN_BREAK) }
func AsmJr(rs uint32) uint32           { return encodeR(rs, 0, 0, 0, FN_JR) }
func AsmJalr(rd, rs uint32) uint32     { return encodeR(rs, 0, rd, 0, FN_JALR) }
func AsmAddu(rd, rs, rt uint32) uint32 { return encodeR(rs, rt, rd, 0, FN_ADDU) }
func AsmAdd(rd, rs, rt uint32) uint32  { return encodeR(rs, rt, rd, 0, FN_ADD) }
func AsmSubu(rd, rs, rt uint32) uint32 { return encodeR(rs, rt, rd, 0, FN_SUBU) }
func AsmOr(rd, rs, rt uint32) uint32   { return encodeR(rs, rt, rd, 0, FN_OR) }
func AsmSlt(rd, rs, rt uint32) uint32  { return encodeR(rs, rt, rd, 0, FN_SLT) }
func AsmSll(rd, rt, sa uint32) uint32  { return encodeR(0, rt, rd, sa, FN_SLL) }

func AsmAddiu(rt, rs uint32, imm int32) uint32 { return encodeI(OP_ADDIU, rs, rt, imm) }
func AsmAddi(rt, rs uint32, imm int32) uint32  { return encodeI(OP_ADDI, rs, rt, imm) }
func AsmOri(rt, rs uint32, imm uint32) uint32  { return encodeI(OP_ORI, rs, rt, int32(imm)) }
func AsmLui(rt uint32, imm uint32) uint32      { return encodeI(OP_LUI, 0, rt, int32(imm)) }
func AsmLw(rt, base uint32, off int32) uint32  { return encodeI(OP_LW, base, rt, off) }
func AsmSw(rt, base uint32, off int32) uint32  { return encodeI(OP_SW, base, rt, off) }

// Branch offsets are in instructions, relative to the next instruction
func AsmBeq(rs, rt uint32, off int32) uint32 { return encodeI(OP_BEQ, rs, rt, off) }
func AsmBne(rs, rt uint32, off int32) uint32 { return encodeI(OP_BNE, rs, rt, off) }

func AsmJ(target uint32) uint32   { return OP_J<<26 | (target>>2)&0x3ffffff }
func AsmJal(target uint32) uint32 { return OP_JAL<<26 | (target>>2)&0x3ffffff }

// Loads a full 32 bit constant into `rt` (two instructions)
func AsmLi(rt uint32, val uint32) []uint32 {
	return []uint32{AsmLui(rt, val>>16), AsmOri(rt, rt, val&0xffff)}
}
