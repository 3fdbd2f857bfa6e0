package nucleus

// Where a live process is
type ProcState int

const (
	PROC_RUNNING ProcState = iota
	PROC_READY
	PROC_BLOCKED
)

func (s ProcState) String() string {
	switch s {
	case PROC_RUNNING:
		return "running"
	case PROC_READY:
		return "ready"
	case PROC_BLOCKED:
		return "blocked"
	}
	return "unknown"
}

type ProcessInfo struct {
	ID         ProcID
	Parent     ProcID
	Children   []ProcID
	State      ProcState
	SemAdd     uint32
	CPUTime    int64
	PC         uint32
	Registered [TRAP_TYPES]bool
}

type SemaphoreInfo struct {
	Addr    uint32
	Value   int32
	Device  bool // device or pseudo-clock semaphore
	Waiters []ProcID
}

// Read-only copy of the nucleus state
type Snapshot struct {
	TOD            uint64
	Current        ProcID
	ProcessCount   int
	SoftBlockCount int
	ReadyQueue     []ProcID
	Processes      []ProcessInfo
	Semaphores     []SemaphoreInfo
}

// Returns the roots of the process forest in the snapshot
func (s *Snapshot) Roots() []ProcID {
	var roots []ProcID
	for _, p := range s.Processes {
		if p.Parent == NO_PROC {
			roots = append(roots, p.ID)
		}
	}
	return roots
}

// Returns the info for `id`, false if it isn't live
func (s *Snapshot) Process(id ProcID) (ProcessInfo, bool) {
	for _, p := range s.Processes {
		if p.ID == id {
			return p, true
		}
	}
	return ProcessInfo{}, false
}

// Captures the current nucleus state
func (n *Nucleus) Snapshot() Snapshot {
	snap := Snapshot{
		TOD:            n.tod(),
		Current:        n.current,
		ProcessCount:   n.processCount,
		SoftBlockCount: n.softBlockCount,
	}
	n.procs.EachProcQ(&n.readyQueue, func(id ProcID) {
		snap.ReadyQueue = append(snap.ReadyQueue, id)
	})

	for i := 0; i < MAXPROC; i++ {
		id := ProcID(i)
		if !n.procs.Live(id) {
			continue
		}
		p := n.procs.Get(id)
		info := ProcessInfo{
			ID:       id,
			Parent:   p.parent,
			Children: n.procs.Children(id),
			SemAdd:   p.SemAdd,
			CPUTime:  p.CPUTime,
			PC:       p.State.PC,
		}
		switch {
		case id == n.current:
			info.State = PROC_RUNNING
		case p.SemAdd != NO_SEM:
			info.State = PROC_BLOCKED
		default:
			info.State = PROC_READY
		}
		for t := range p.Vectors {
			info.Registered[t] = p.Vectors[t].State == VECTOR_REGISTERED
		}
		snap.Processes = append(snap.Processes, info)
	}

	for _, addr := range n.asl.Active() {
		snap.Semaphores = append(snap.Semaphores, SemaphoreInfo{
			Addr:    addr,
			Value:   n.sem(addr),
			Device:  isSoftBlockSem(addr),
			Waiters: n.asl.Waiters(addr),
		})
	}
	return snap
}
