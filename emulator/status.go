package emulator

// Represents the value of the status register
type StatusRegister uint32

// Bits [5:0] are three pairs of Interrupt Enable/Kernel-User bits
// (current, previous, old). A set KU bit means user mode
const (
	STATUS_IEC uint32 = 1 << 0 // Interrupts enabled (current)
	STATUS_KUC uint32 = 1 << 1 // User mode (current)
	STATUS_IEP uint32 = 1 << 2 // Interrupts enabled (previous)
	STATUS_KUP uint32 = 1 << 3 // User mode (previous)
	STATUS_IEO uint32 = 1 << 4 // Interrupts enabled (old)
	STATUS_KUO uint32 = 1 << 5 // User mode (old)

	STATUS_IM_SHIFT = 8                       // Interrupt mask, one bit per line
	STATUS_IM_ALL   = 0xff << STATUS_IM_SHIFT // All interrupt lines unmasked
)

// Returns true if the processor currently runs in user mode
func (sr StatusRegister) UserMode() bool {
	return uint32(sr)&STATUS_KUC != 0
}

// Returns true if the processor was in user mode before the last trap
func (sr StatusRegister) PreviousUserMode() bool {
	return uint32(sr)&STATUS_KUP != 0
}

// Returns true if interrupts are currently enabled
func (sr StatusRegister) InterruptsEnabled() bool {
	return uint32(sr)&STATUS_IEC != 0
}

// Returns true if interrupt `line` is not masked
func (sr StatusRegister) LineEnabled(line uint32) bool {
	return uint32(sr)&(1<<(STATUS_IM_SHIFT+line)) != 0
}

// Shift bits [5:0] of the SR two places to the left.
// those bits are three pairs of Interrupt Enable/User Mode
// bits behaving like a stack of 3 entries deep. Entering an
// exception pushes a pair of zeroes by left shifting the stack
// which disables interrupts and puts the CPU in kernel mode.
// The original third entry is discarded (it's up to the kernel
// to handle more than two recursive exception levels)
func (sr *StatusRegister) EnterException() {
	mode := *sr & 0x3f
	*sr = StatusRegister(uint32(*sr) &^ 0x3f)
	*sr |= (mode << 2) & 0x3f
}

// Pops the KU/IE stack, restoring the mode saved by the last push
func (sr *StatusRegister) ReturnFromException() {
	mode := *sr & 0x3f
	*sr = StatusRegister(uint32(*sr) &^ 0xf)
	*sr |= mode >> 2
}
