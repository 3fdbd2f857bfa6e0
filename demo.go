package main

import (
	"github.com/zeozeozeo/gonucleus/emulator"
	"github.com/zeozeozeo/gonucleus/nucleus"
)

// Layout of the built-in demo
const (
	demoParentPC  = emulator.USER_BASE
	demoWriterPC  = emulator.USER_BASE + 0x200
	demoClockPC   = emulator.USER_BASE + 0x400
	demoWriterSt  = 0x3000 // initial state of the writer
	demoClockSt   = 0x3100 // initial state of the clock waiter
	demoDoneSem   = 0x3200 // V'd by each child before it terminates
	demoCPUTime   = 0x3204 // parent stores its CPU time here
	demoMessage   = 0x4000 // one character per word, zero terminated
	demoClockWait = 3
)

const demoText = "hello from the nucleus\n"

// Tiny assembler with forward branch patching
type program struct {
	base uint32
	code []uint32
}

func (p *program) emit(words ...uint32) {
	p.code = append(p.code, words...)
}

// Returns the address of the next instruction
func (p *program) here() uint32 {
	return p.base + uint32(len(p.code))*4
}

// Emits a placeholder and returns its index for patch
func (p *program) hole() int {
	p.emit(emulator.AsmNop())
	return len(p.code) - 1
}

// Branch offset from the instruction at `idx` to the next instruction
func (p *program) forward(idx int) int32 {
	return int32(len(p.code) - idx - 1)
}

// Branch offset from the next instruction back to `target`
func (p *program) back(target uint32) int32 {
	return (int32(target) - int32(p.here()) - 4) / 4
}

func (p *program) sys(code uint32, args ...uint32) {
	regs := []uint32{emulator.R_A1, emulator.R_A2, emulator.R_A3}
	p.emit(emulator.AsmLi(emulator.R_A0, code)...)
	for i, a := range args {
		p.emit(emulator.AsmLi(regs[i], a)...)
	}
	p.emit(emulator.AsmSyscall())
}

func (p *program) load(mem emulator.Memory) {
	emulator.NewImage(p.base, p.code).Load(mem)
}

// Kernel mode state that starts at `pc` with every interrupt line enabled
func initialState(pc, sp uint32) emulator.State {
	s := emulator.State{
		Status: emulator.STATUS_IEP | emulator.STATUS_IM_ALL,
		PC:     pc,
	}
	s.Reg[emulator.REG_SP] = int32(sp)
	return s
}

// Loads the demo: a parent creates a child printing a message on
// terminal 0 and a child sleeping on the pseudo-clock, waits for both,
// records its CPU time and terminates. Returns the initial state
func loadDemo(mem emulator.Memory, ramSize uint32) emulator.State {
	// parent
	parent := &program{base: demoParentPC}
	parent.sys(nucleus.SYS_CREATEPROCESS, demoWriterSt)
	parent.sys(nucleus.SYS_CREATEPROCESS, demoClockSt)
	parent.sys(nucleus.SYS_PASSEREN, demoDoneSem)
	parent.sys(nucleus.SYS_PASSEREN, demoDoneSem)
	parent.sys(nucleus.SYS_GETCPUTIME)
	parent.emit(emulator.AsmLi(emulator.R_T0, demoCPUTime)...)
	parent.emit(emulator.AsmSw(emulator.R_V0, emulator.R_T0, 0))
	parent.sys(nucleus.SYS_TERMINATEPROCESS)
	parent.load(mem)

	// writer: transmits the message one character at a time
	transmit := emulator.DeviceRegAddr(nucleus.TERMINAL_LINE, 0) + emulator.TERM_TRANSM_COMMAND*4
	writer := &program{base: demoWriterPC}
	writer.emit(emulator.AsmLi(emulator.R_S0, demoMessage)...)
	writer.emit(emulator.AsmLi(emulator.R_T1, transmit)...)
	loop := writer.here()
	writer.emit(emulator.AsmLw(emulator.R_T0, emulator.R_S0, 0))
	exit := writer.hole()
	writer.emit(
		emulator.AsmSll(emulator.R_T0, emulator.R_T0, 8),
		emulator.AsmOri(emulator.R_T0, emulator.R_T0, emulator.DEV_CMD_OP),
		emulator.AsmSw(emulator.R_T0, emulator.R_T1, 0),
	)
	writer.sys(nucleus.SYS_WAITIO, nucleus.TERMINAL_LINE, 0, 0)
	writer.emit(emulator.AsmAddiu(emulator.R_S0, emulator.R_S0, 4))
	writer.emit(emulator.AsmBeq(0, 0, writer.back(loop)))
	writer.code[exit] = emulator.AsmBeq(emulator.R_T0, 0, writer.forward(exit))
	writer.sys(nucleus.SYS_VERHOGEN, demoDoneSem)
	writer.sys(nucleus.SYS_TERMINATEPROCESS)
	writer.load(mem)

	message := make([]uint32, 0, len(demoText)+1)
	for _, c := range []byte(demoText) {
		message = append(message, uint32(c))
	}
	emulator.NewImage(demoMessage, append(message, 0)).Load(mem)

	// clock waiter
	clock := &program{base: demoClockPC}
	clock.emit(emulator.AsmAddiu(emulator.R_S0, 0, demoClockWait))
	wait := clock.here()
	clock.sys(nucleus.SYS_WAITCLOCK)
	clock.emit(emulator.AsmAddiu(emulator.R_S0, emulator.R_S0, -1))
	clock.emit(emulator.AsmBne(emulator.R_S0, 0, clock.back(wait)))
	clock.sys(nucleus.SYS_VERHOGEN, demoDoneSem)
	clock.sys(nucleus.SYS_TERMINATEPROCESS)
	clock.load(mem)

	// each process gets 4K of stack from the top of RAM
	emulator.StoreState(mem, demoWriterSt, initialState(demoWriterPC, ramSize-0x1000))
	emulator.StoreState(mem, demoClockSt, initialState(demoClockPC, ramSize-0x2000))
	mem.Store32(demoDoneSem, 0)
	return initialState(demoParentPC, ramSize)
}
