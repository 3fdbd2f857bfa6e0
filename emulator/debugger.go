package emulator

// Kinds of debugger hits
type DebugEvent int

const (
	DEBUG_BREAKPOINT       DebugEvent = iota // Instruction at a breakpoint is about to run
	DEBUG_READ_WATCHPOINT                    // Watched address is about to be read
	DEBUG_WRITE_WATCHPOINT                   // Watched address is about to be written
)

func (ev DebugEvent) String() string {
	switch ev {
	case DEBUG_BREAKPOINT:
		return "breakpoint"
	case DEBUG_READ_WATCHPOINT:
		return "read watchpoint"
	case DEBUG_WRITE_WATCHPOINT:
		return "write watchpoint"
	}
	return "unknown"
}

type Debugger struct {
	Breakpoints      []uint32 // All breakpoint addresses
	ReadWatchpoints  []uint32 // All read watchpoints
	WriteWatchpoints []uint32 // All write watchpoints

	// Called on every hit. The processor keeps running afterwards
	OnHit func(ev DebugEvent, addr uint32)
	Hits  uint64 // Number of hits so far
}

func NewDebugger(onHit func(ev DebugEvent, addr uint32)) *Debugger {
	return &Debugger{OnHit: onHit}
}

func addUnique(list []uint32, addr uint32) []uint32 {
	for _, a := range list {
		if a == addr {
			return list
		}
	}
	return append(list, addr)
}

func remove(list []uint32, addr uint32) []uint32 {
	for idx, a := range list {
		if a == addr {
			return append(list[:idx], list[idx+1:]...)
		}
	}
	return list
}

func contains(list []uint32, addr uint32) bool {
	for _, a := range list {
		if a == addr {
			return true
		}
	}
	return false
}

// Adds a breakpoint when the instruction at `addr` is about to be executed
func (debugger *Debugger) AddBreakpoint(addr uint32) {
	debugger.Breakpoints = addUnique(debugger.Breakpoints, addr)
}

// Deletes a breakpoint at `addr`. Does nothing if it doesn't exist
func (debugger *Debugger) DeleteBreakpoint(addr uint32) {
	debugger.Breakpoints = remove(debugger.Breakpoints, addr)
}

// Adds a memory read watchpoint for `addr`
func (debugger *Debugger) AddReadWatchpoint(addr uint32) {
	debugger.ReadWatchpoints = addUnique(debugger.ReadWatchpoints, addr)
}

// Adds a memory write watchpoint for `addr`
func (debugger *Debugger) AddWriteWatchpoint(addr uint32) {
	debugger.WriteWatchpoints = addUnique(debugger.WriteWatchpoints, addr)
}

// Deletes a memory read watchpoint at `addr`. Does nothing if it doesn't exist
func (debugger *Debugger) DeleteReadWatchpoint(addr uint32) {
	debugger.ReadWatchpoints = remove(debugger.ReadWatchpoints, addr)
}

// Deletes a memory write watchpoint at `addr`. Does nothing if it doesn't exist
func (debugger *Debugger) DeleteWriteWatchpoint(addr uint32) {
	debugger.WriteWatchpoints = remove(debugger.WriteWatchpoints, addr)
}

// Debugger entrypoint
func (debugger *Debugger) changedPc(pc uint32) {
	if contains(debugger.Breakpoints, pc) {
		debugger.hit(DEBUG_BREAKPOINT, pc)
	}
}

// Called by the CPU when it's about to read a value from memory
func (debugger *Debugger) memoryRead(addr uint32) {
	if contains(debugger.ReadWatchpoints, addr) {
		debugger.hit(DEBUG_READ_WATCHPOINT, addr)
	}
}

// Called by the CPU when it's about to write a value to memory
func (debugger *Debugger) memoryWrite(addr uint32) {
	if contains(debugger.WriteWatchpoints, addr) {
		debugger.hit(DEBUG_WRITE_WATCHPOINT, addr)
	}
}

func (debugger *Debugger) hit(ev DebugEvent, addr uint32) {
	debugger.Hits++
	if debugger.OnHit != nil {
		debugger.OnHit(ev, addr)
	}
}
