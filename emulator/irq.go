package emulator

// State of the interrupt lines. Bit N is set while line N is pending
type IrqState struct {
	Pending uint8
}

// Interrupt line numbers
type Interrupt uint8

const (
	INTERRUPT_IPI      Interrupt = 0 // Inter-processor interrupt (unused on one processor)
	INTERRUPT_LOCAL    Interrupt = 1 // Processor local timer (unused)
	INTERRUPT_TIMER    Interrupt = 2 // Interval timer
	INTERRUPT_DISK     Interrupt = 3 // Disk devices
	INTERRUPT_TAPE     Interrupt = 4 // Tape devices
	INTERRUPT_NETWORK  Interrupt = 5 // Network devices
	INTERRUPT_PRINTER  Interrupt = 6 // Printer devices
	INTERRUPT_TERMINAL Interrupt = 7 // Terminal devices
)

// Returns a new interrupt instance
func NewIrqState() *IrqState {
	return &IrqState{}
}

// Returns true if any interrupt is pending
func (state *IrqState) Active() bool {
	return state.Pending != 0
}

// Returns true if `line` is pending
func (state *IrqState) IsHigh(line Interrupt) bool {
	return state.Pending&(1<<line) != 0
}

func (state *IrqState) SetHigh(line Interrupt) {
	state.Pending |= 1 << line
}

func (state *IrqState) SetLow(line Interrupt) {
	state.Pending &^= 1 << line
}
