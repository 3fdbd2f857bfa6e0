package nucleus

import (
	"math/bits"

	"github.com/zeozeozeo/gonucleus/emulator"
)

// Serves the highest priority pending line, then resumes the
// interrupted process or dispatches one if the processor was idle
func (n *Nucleus) interruptHandler() {
	if n.current != NO_PROC {
		n.chargeCPU()
		n.currentPcb().State = emulator.LoadState(n.mem, emulator.INT_OLD_AREA)
	}

	irq := n.mem.Irq
	switch {
	case irq.IsHigh(emulator.INTERRUPT_TIMER):
		n.pseudoClockTick()
	default:
		for line := DEVICE_LINE_MIN; line <= DEVICE_LINE_MAX; line++ {
			if irq.IsHigh(emulator.Interrupt(line)) {
				n.deviceInterrupt(line)
				break
			}
		}
	}

	if n.current == NO_PROC {
		n.scheduler()
		return
	}
	n.resume()
}

// Releases every process waiting for the pseudo-clock
func (n *Nucleus) pseudoClockTick() {
	n.mem.Store32(emulator.BUS_INTERVAL, n.cfg.ClockPeriod)

	woken := 0
	for id := n.asl.RemoveBlocked(CLOCK_SEM_ADDR); id != NO_PROC; id = n.asl.RemoveBlocked(CLOCK_SEM_ADDR) {
		n.procs.InsertProcQ(&n.readyQueue, id)
		n.softBlockCount--
		woken++
	}
	n.setSem(CLOCK_SEM_ADDR, 0)
	n.log.Trace("pseudo-clock tick", "woken", woken)
}

// Acknowledges the lowest numbered pending device on `line` and Vs its
// semaphore. A waiting process gets the status word in v0
func (n *Nucleus) deviceInterrupt(line int) {
	lineIdx := uint32(line - DEVICE_LINE_MIN)
	bitmap := n.mem.Load32(emulator.BUS_INTERRUPT_DEV + lineIdx*4)
	if bitmap == 0 {
		return
	}
	dev := bits.TrailingZeros32(bitmap)
	reg := emulator.DeviceRegAddr(uint32(line), uint32(dev))

	row := line - DEVICE_LINE_MIN
	var status uint32
	if line == TERMINAL_LINE && terminalTransmitDone(n.mem.Load32(reg+emulator.TERM_TRANSM_STATUS*4)) {
		row = TERM_WRITE_ROW
		status = n.mem.Load32(reg + emulator.TERM_TRANSM_STATUS*4)
		n.mem.Store32(reg+emulator.TERM_TRANSM_COMMAND*4, emulator.DEV_CMD_ACK)
	} else {
		status = n.mem.Load32(reg + emulator.DEV_FIELD_STATUS*4)
		n.mem.Store32(reg+emulator.DEV_FIELD_COMMAND*4, emulator.DEV_CMD_ACK)
	}

	n.deviceStatus[row][dev] = status
	semAdd := deviceSemAddr(row, dev)
	n.setSem(semAdd, n.sem(semAdd)+1)
	if id := n.asl.RemoveBlocked(semAdd); id != NO_PROC {
		n.softBlockCount--
		n.procs.Get(id).State.SetV0(int32(status))
		n.procs.InsertProcQ(&n.readyQueue, id)
	}
	n.log.Trace("device interrupt", "line", line, "dev", dev, "status", status)
}

// A transmit status other than ready or busy is a completion to acknowledge
func terminalTransmitDone(status uint32) bool {
	code := status & 0xff
	return code != emulator.DEV_STATUS_READY && code != emulator.DEV_STATUS_BUSY
}
