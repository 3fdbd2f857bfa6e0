package nucleus

import "github.com/zeozeozeo/gonucleus/emulator"

// SYS1: creates a child of the caller from the state at `statep`.
// v0 is 0 on success, -1 if no process record is free
func (n *Nucleus) createProcess(statep uint32) {
	p := n.currentPcb()
	if !n.validArea(statep, emulator.STATE_SIZE) {
		n.kill("invalid state address")
		return
	}

	id, ok := n.procs.AllocPcb()
	if !ok {
		p.State.SetV0(-1)
		n.resume()
		return
	}

	n.processCount++
	n.procs.Get(id).State = emulator.LoadState(n.mem, statep)
	n.procs.InsertChild(n.current, id)
	n.procs.InsertProcQ(&n.readyQueue, id)
	n.log.Debug("create", "parent", n.current, "pid", id)

	p.State.SetV0(0)
	n.resume()
}

// SYS2: destroys `id` and all of its progeny. Children go first, so no
// record is released while something still links to it
func (n *Nucleus) terminateProcess(id ProcID) {
	for !n.procs.EmptyChild(id) {
		n.terminateProcess(n.procs.RemoveChild(id))
	}

	p := n.procs.Get(id)
	switch {
	case id == n.current:
		n.procs.OutChild(id)
		n.current = NO_PROC
	case p.SemAdd != NO_SEM:
		semAdd := p.SemAdd
		n.asl.OutBlocked(id)
		if isSoftBlockSem(semAdd) {
			// the interrupt still Vs the device semaphore
			n.softBlockCount--
		} else {
			n.setSem(semAdd, n.sem(semAdd)+1)
		}
		n.procs.OutChild(id)
	default:
		if n.procs.OutProcQ(&n.readyQueue, id) == NO_PROC {
			panicFmt("nucleus: process %d is neither running, blocked nor ready", id)
		}
		n.procs.OutChild(id)
	}

	n.procs.FreePcb(id)
	n.processCount--
	n.log.Debug("terminate", "pid", id, "processes", n.processCount)
}

// Terminates the current process for a protocol violation and
// dispatches the next one
func (n *Nucleus) kill(reason string) {
	n.log.Debug("kill", "pid", n.current, "reason", reason)
	n.terminateProcess(n.current)
	n.scheduler()
}

// SYS3: V on the counter at `semAdd`
func (n *Nucleus) verhogen(semAdd uint32) {
	if !n.validSem(semAdd) {
		n.kill("invalid semaphore address")
		return
	}

	n.setSem(semAdd, n.sem(semAdd)+1)
	if id := n.asl.RemoveBlocked(semAdd); id != NO_PROC {
		n.procs.InsertProcQ(&n.readyQueue, id)
	}
	n.resume()
}

// SYS4: P on the counter at `semAdd`
func (n *Nucleus) passeren(semAdd uint32) {
	if !n.validSem(semAdd) {
		n.kill("invalid semaphore address")
		return
	}

	v := n.sem(semAdd) - 1
	n.setSem(semAdd, v)
	if v < 0 {
		n.block(semAdd)
		n.scheduler()
		return
	}
	n.resume()
}

// Queues the current process on `semAdd` and gives up the processor
func (n *Nucleus) block(semAdd uint32) {
	if !n.asl.InsertBlocked(semAdd, n.current) {
		panicFmt("nucleus: no semaphore descriptor for process %d", n.current)
	}
	n.chargeCPU()
	n.current = NO_PROC
}

// SYS5: registers the old and new areas for trap type `t`. A second
// registration for the same type kills the caller
func (n *Nucleus) specTrapVec(t TrapType, oldArea, newArea uint32) {
	if t < 0 || t >= TRAP_TYPES {
		n.kill("invalid trap type")
		return
	}

	p := n.currentPcb()
	switch p.Vectors[t].State {
	case VECTOR_REGISTERED:
		n.kill("trap vector registered twice")
	case VECTOR_UNREGISTERED:
		if !n.validArea(oldArea, emulator.STATE_SIZE) || !n.validArea(newArea, emulator.STATE_SIZE) {
			n.kill("invalid trap vector area")
			return
		}
		p.Vectors[t] = TrapVector{State: VECTOR_REGISTERED, OldArea: oldArea, NewArea: newArea}
		n.resume()
	}
}

// SYS6: returns the CPU time of the caller in microseconds
func (n *Nucleus) getCPUTime() {
	p := n.currentPcb()
	p.State.SetV0(int32(p.CPUTime))
	n.resume()
}

// SYS7: P on the pseudo-clock semaphore
func (n *Nucleus) waitForClock() {
	v := n.sem(CLOCK_SEM_ADDR) - 1
	n.setSem(CLOCK_SEM_ADDR, v)
	if v < 0 {
		n.softBlockCount++
		n.block(CLOCK_SEM_ADDR)
		n.scheduler()
		return
	}
	n.resume()
}

// Maps an interrupt line and terminal direction to a device semaphore row
func deviceRow(line int, termRead bool) int {
	if line == TERMINAL_LINE && !termRead {
		return TERM_WRITE_ROW
	}
	return line - DEVICE_LINE_MIN
}

// SYS8: P on the semaphore of a device. v0 receives the device status,
// here if the I/O already completed, from the interrupt handler otherwise
func (n *Nucleus) waitForIO(line, dev int, termRead bool) {
	if line < DEVICE_LINE_MIN || line > DEVICE_LINE_MAX || dev < 0 || dev >= DEVICE_PER_ROW {
		n.kill("invalid device")
		return
	}

	row := deviceRow(line, termRead)
	semAdd := deviceSemAddr(row, dev)
	v := n.sem(semAdd) - 1
	n.setSem(semAdd, v)
	if v < 0 {
		n.softBlockCount++
		n.block(semAdd)
		n.scheduler()
		return
	}

	n.currentPcb().State.SetV0(int32(n.deviceStatus[row][dev]))
	n.resume()
}
