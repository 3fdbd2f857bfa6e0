package nucleus

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zeozeozeo/gonucleus/emulator"
)

var (
	// Live processes remain but none is ready and none waits on a device or the clock
	ErrDeadlock = errors.New("nucleus: deadlock")
	// Config.MaxCycles elapsed before every process terminated
	ErrCycleBudget = errors.New("nucleus: cycle budget exhausted")
	// Boot was called twice
	ErrBooted = errors.New("nucleus: already booted")
)

// How long Run sleeps when every process waits on host terminal input
const idlePoll = time.Millisecond

type Config struct {
	Logger      hclog.Logger
	ClockPeriod uint32 // pseudo-clock tick in microseconds
	MaxCycles   uint64 // 0 means unlimited

	// Called with a fresh snapshot every time a process is dispatched
	Observer func(Snapshot)
}

// Returns the configuration used when fields are left empty
func DefaultConfig() Config {
	return Config{
		Logger:      hclog.NewNullLogger(),
		ClockPeriod: PSEUDO_CLOCK_PERIOD,
	}
}

// Nucleus state. Every handler runs with exclusive control of it
type Nucleus struct {
	cfg Config
	log hclog.Logger

	cpu *emulator.CPU
	mem *emulator.Interconnect

	procs      *ProcessStore
	asl        *BlockingStore
	readyQueue ProcQueue

	current        ProcID // NO_PROC while scheduling or idle
	processCount   int
	softBlockCount int
	startTOD       uint64 // TOD when current was dispatched or last charged

	deviceStatus [DEVICE_ROWS][DEVICE_PER_ROW]uint32
	booted       bool
}

// Returns a nucleus driving `cpu`
func New(cpu *emulator.CPU, cfg Config) *Nucleus {
	def := DefaultConfig()
	if cfg.Logger == nil {
		cfg.Logger = def.Logger
	}
	if cfg.ClockPeriod == 0 {
		cfg.ClockPeriod = def.ClockPeriod
	}
	procs := NewProcessStore()
	return &Nucleus{
		cfg:        cfg,
		log:        cfg.Logger.Named("nucleus"),
		cpu:        cpu,
		mem:        cpu.Inter,
		procs:      procs,
		asl:        NewBlockingStore(procs),
		readyQueue: NewProcQueue(),
		current:    NO_PROC,
	}
}

// Initializes the nucleus semaphores, starts the pseudo-clock and makes
// a process out of `initial`. The first process is ready, not running
func (n *Nucleus) Boot(initial emulator.State) error {
	if n.booted {
		return ErrBooted
	}
	for row := 0; row < DEVICE_ROWS; row++ {
		for dev := 0; dev < DEVICE_PER_ROW; dev++ {
			n.setSem(deviceSemAddr(row, dev), 0)
		}
	}
	n.setSem(CLOCK_SEM_ADDR, 0)
	n.mem.Store32(emulator.BUS_INTERVAL, n.cfg.ClockPeriod)

	id, ok := n.procs.AllocPcb()
	if !ok {
		panicFmt("nucleus: no process record for the first process")
	}
	n.procs.Get(id).State = initial
	n.procs.InsertProcQ(&n.readyQueue, id)
	n.processCount++
	n.booted = true

	n.log.Debug("booted", "pc", fmt.Sprintf("0x%x", initial.PC))
	return nil
}

// Runs processes until all of them terminated (nil), ctx is cancelled,
// the cycle budget runs out or a deadlock is detected
func (n *Nucleus) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if n.cfg.MaxCycles != 0 && n.mem.Time.Cycles >= n.cfg.MaxCycles {
			return ErrCycleBudget
		}

		if n.current == NO_PROC {
			n.scheduler()
			if n.current != NO_PROC {
				continue
			}
			done, err := n.idle(ctx)
			if done || err != nil {
				return err
			}
			continue
		}

		switch n.cpu.Step() {
		case emulator.TRAP_NONE:
		case emulator.TRAP_INTERRUPT:
			n.interruptHandler()
		case emulator.TRAP_TLB:
			n.tlbHandler()
		case emulator.TRAP_PROGRAM:
			n.programTrapHandler()
		case emulator.TRAP_SYSCALL:
			n.syscallHandler()
		}
	}
}

// Called with an empty ready queue. Halts, reports a deadlock or waits
// for the next interrupt and handles it
func (n *Nucleus) idle(ctx context.Context) (bool, error) {
	if n.processCount == 0 {
		n.log.Debug("halt: no processes left")
		return true, nil
	}
	if n.softBlockCount == 0 {
		n.log.Error("deadlock", "processes", n.processCount)
		return true, ErrDeadlock
	}

	if n.cpu.Idle() {
		n.interruptHandler()
		return false, nil
	}

	// only host input can wake us up
	select {
	case <-ctx.Done():
		return true, ctx.Err()
	case <-time.After(idlePoll):
	}
	return false, nil
}

// Installs the saved state of the current process on the processor
func (n *Nucleus) resume() {
	n.cpu.LoadState(n.procs.Get(n.current).State)
}

// Returns the record of the current process
func (n *Nucleus) currentPcb() *Pcb {
	if n.current == NO_PROC {
		panicFmt("nucleus: trap with no current process")
	}
	return n.procs.Get(n.current)
}

// Returns the time of day clock in microseconds
func (n *Nucleus) tod() uint64 {
	return n.mem.Time.TOD()
}

// Adds the time elapsed since the last charge to the current process
func (n *Nucleus) chargeCPU() {
	now := n.tod()
	if n.current != NO_PROC {
		n.procs.Get(n.current).CPUTime += int64(now - n.startTOD)
	}
	n.startTOD = now
}

func (n *Nucleus) sem(addr uint32) int32 {
	return int32(n.mem.Load32(addr))
}

func (n *Nucleus) setSem(addr uint32, v int32) {
	n.mem.Store32(addr, uint32(v))
}

// Returns true if `addr` is a device or pseudo-clock semaphore
func isSoftBlockSem(addr uint32) bool {
	return addr >= DEVICE_SEM_BASE && addr <= CLOCK_SEM_ADDR
}

// Returns true if `size` bytes at `addr` are word aligned kernel RAM
func (n *Nucleus) validArea(addr, size uint32) bool {
	ramSize := n.mem.Ram.Size()
	return addr&3 == 0 && addr < ramSize && size <= ramSize-addr
}

// Returns true if `addr` can hold a user semaphore counter
func (n *Nucleus) validSem(addr uint32) bool {
	return n.validArea(addr, 4) && addr >= emulator.USER_BASE
}

// Number of live processes
func (n *Nucleus) ProcessCount() int { return n.processCount }

// Number of processes blocked on device or pseudo-clock semaphores
func (n *Nucleus) SoftBlockCount() int { return n.softBlockCount }

// Currently running process, NO_PROC if none
func (n *Nucleus) Current() ProcID { return n.current }

// Returns the process store, for inspection
func (n *Nucleus) Procs() *ProcessStore { return n.procs }

// Returns the blocking store, for inspection
func (n *Nucleus) Blocked() *BlockingStore { return n.asl }

// Last status word latched for device semaphore (`row`, `dev`)
func (n *Nucleus) DeviceStatus(row, dev int) uint32 { return n.deviceStatus[row][dev] }
