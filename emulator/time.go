package emulator

// Default processor speed in cycles per microsecond
const DEFAULT_TIMESCALE uint64 = 1

// Keeps track of the emulation time
type TimeHandler struct {
	// Keeps track of the current execution time. It is measured in
	// processor cycles, one per retired instruction
	Cycles     uint64
	Timescale  uint64 // Cycles per microsecond
	TimeSheets []*TimeSheet
}

// Represents a TimeSheet index
type Peripheral uint32

const (
	PERIPHERAL_TIMER   Peripheral = 0 // Interval timer
	PERIPHERAL_DEVICES Peripheral = 1 // Device registers
)

// Returns a new instance of TimeHandler
func NewTimeHandler(timescale uint64) *TimeHandler {
	if timescale == 0 {
		timescale = DEFAULT_TIMESCALE
	}
	th := &TimeHandler{
		Timescale:  timescale,
		TimeSheets: []*TimeSheet{NewTimeSheet(), NewTimeSheet()},
	}
	return th
}

// Advance the current time by `cycles`
func (th *TimeHandler) Tick(cycles uint64) {
	th.Cycles += cycles
}

// Returns the time of day clock in microseconds
func (th *TimeHandler) TOD() uint64 {
	return th.Cycles / th.Timescale
}

// Synchronizes a peripheral
func (th *TimeHandler) Sync(from Peripheral) uint64 {
	return th.TimeSheets[from].Sync(th.Cycles)
}

func (th *TimeHandler) SetNextSyncDelta(from Peripheral, delta uint64) {
	th.TimeSheets[from].NextSync = th.Cycles + delta
}

// Returns true if the peripheral reached the time of the next forced
// synchronization
func (th *TimeHandler) NeedsSync(from Peripheral) bool {
	return th.TimeSheets[from].NeedsSync(th.Cycles)
}

// Keeps track of synchronization of different peripherals
type TimeSheet struct {
	LastSync uint64 // Time of the last synchronization
	NextSync uint64 // Date of the next synchronization
}

// Returns a new TimeSheet instance
func NewTimeSheet() *TimeSheet {
	return &TimeSheet{}
}

// Set the time sheet to the current time and return the time
// since the last synchronization
func (sheet *TimeSheet) Sync(cycles uint64) uint64 {
	delta := cycles - sheet.LastSync
	sheet.LastSync = cycles
	return delta
}

// Returns true if the peripheral reached `NextSync`
func (sheet *TimeSheet) NeedsSync(cycles uint64) bool {
	return sheet.NextSync <= cycles
}
