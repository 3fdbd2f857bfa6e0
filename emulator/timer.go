package emulator

// Count-down interval timer. Raises INTERRUPT_TIMER when the
// counter goes past zero and keeps it raised until it's reloaded
type IntervalTimer struct {
	Counter   int64 // Remaining cycles, negative once expired
	Interrupt bool  // True if an interrupt is active
}

// Returns a new IntervalTimer instance. The timer starts expired
// with no interrupt pending, like it does at reset
func NewIntervalTimer() *IntervalTimer {
	return &IntervalTimer{Counter: -1}
}

// Loads a new value (in microseconds) and acknowledges the interrupt
func (timer *IntervalTimer) Load(micros uint32, th *TimeHandler, irqState *IrqState) {
	timer.Sync(th, irqState)
	timer.Counter = int64(micros) * int64(th.Timescale)
	timer.Interrupt = false
	irqState.SetLow(INTERRUPT_TIMER)
	th.SetNextSyncDelta(PERIPHERAL_TIMER, uint64(timer.Counter))
}

// Returns the counter value in microseconds, as read from the bus
func (timer *IntervalTimer) Value(th *TimeHandler) uint32 {
	return uint32(timer.Counter / int64(th.Timescale))
}

// Synchronizes this timer
func (timer *IntervalTimer) Sync(th *TimeHandler, irqState *IrqState) {
	delta := th.Sync(PERIPHERAL_TIMER)
	if delta == 0 {
		return
	}

	wasRunning := timer.Counter >= 0
	timer.Counter -= int64(delta)
	if wasRunning && timer.Counter < 0 {
		// start pulse
		irqState.SetHigh(INTERRUPT_TIMER)
		timer.Interrupt = true
	}
}

// Returns the number of cycles until the timer fires, false if it
// already expired
func (timer *IntervalTimer) Remaining() (uint64, bool) {
	if timer.Counter < 0 {
		return 0, false
	}
	return uint64(timer.Counter) + 1, true
}
