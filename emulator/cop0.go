package emulator

// Coprocessor 0: System Control
type Cop0 struct {
	SR    StatusRegister // Register 12: status register
	Cause uint32         // Register 13: cause register
	Epc   uint32         // Register 14: exception PC
}

const (
	CAUSE_EXC_SHIFT = 2         // ExcCode lives in bits [6:2]
	CAUSE_EXC_MASK  = 0x1f << 2 // ExcCode field
	CAUSE_IP_SHIFT  = 8         // Pending interrupt lines live in bits [15:8]
	CAUSE_IP_MASK   = 0xff << 8 // Pending interrupt field
)

// Creates a new Cop0 instance. The processor starts in kernel mode
// with interrupts disabled
func NewCop0() *Cop0 {
	return &Cop0{}
}

func (cop *Cop0) SetSR(sr uint32) {
	cop.SR = StatusRegister(sr)
}

// Returns the value of the cause register with the pending lines of `irqState`
func (cop *Cop0) GetCause(irqState *IrqState) uint32 {
	return (cop.Cause &^ CAUSE_IP_MASK) | (uint32(irqState.Pending) << CAUSE_IP_SHIFT)
}

// Returns the exception code stored in the cause register
func (cop *Cop0) ExcCode() Exception {
	return Exception((cop.Cause & CAUSE_EXC_MASK) >> CAUSE_EXC_SHIFT)
}

// Records `cause` and `pc` and pushes the KU/IE stack
func (cop *Cop0) EnterException(cause Exception, pc uint32) {
	cop.SR.EnterException()

	// update `CAUSE` register with exception code
	cop.Cause &^= CAUSE_EXC_MASK
	cop.Cause |= uint32(cause) << CAUSE_EXC_SHIFT
	cop.Epc = pc
}

// Discard the current state of the status register
func (cop *Cop0) ReturnFromException() {
	cop.SR.ReturnFromException()
}

func (cop *Cop0) IrqEnabled() bool {
	return cop.SR.InterruptsEnabled()
}

// Returns true if an unmasked interrupt line is pending and interrupts are enabled
func (cop *Cop0) IrqActive(irqState *IrqState) bool {
	if !cop.IrqEnabled() {
		return false
	}
	pending := uint32(irqState.Pending) << STATUS_IM_SHIFT
	return pending&uint32(cop.SR)&STATUS_IM_ALL != 0
}
