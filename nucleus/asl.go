package nucleus

import "sort"

// Semaphore descriptor: the FIFO of processes blocked on one counter
type semd struct {
	semAdd uint32
	procQ  ProcQueue
}

// Active semaphore list. Descriptors exist only while their queue is
// non-empty, at most one per process
type BlockingStore struct {
	procs  *ProcessStore
	active map[uint32]*semd
	free   []*semd
}

// Returns an empty store backed by `procs`
func NewBlockingStore(procs *ProcessStore) *BlockingStore {
	asl := &BlockingStore{
		procs:  procs,
		active: make(map[uint32]*semd, MAXPROC),
		free:   make([]*semd, 0, MAXPROC),
	}
	for i := 0; i < MAXPROC; i++ {
		asl.free = append(asl.free, &semd{})
	}
	return asl
}

// Appends `id` to the queue of `semAdd` and records it as blocked there.
// Returns false if no descriptor is available
func (asl *BlockingStore) InsertBlocked(semAdd uint32, id ProcID) bool {
	sd, ok := asl.active[semAdd]
	if !ok {
		if len(asl.free) == 0 {
			return false
		}
		sd = asl.free[len(asl.free)-1]
		asl.free = asl.free[:len(asl.free)-1]
		sd.semAdd = semAdd
		sd.procQ = NewProcQueue()
		asl.active[semAdd] = sd
	}
	asl.procs.InsertProcQ(&sd.procQ, id)
	asl.procs.Get(id).SemAdd = semAdd
	return true
}

// Removes the longest waiting process blocked on `semAdd`. Returns
// NO_PROC if none is
func (asl *BlockingStore) RemoveBlocked(semAdd uint32) ProcID {
	sd, ok := asl.active[semAdd]
	if !ok {
		return NO_PROC
	}
	id := asl.procs.RemoveProcQ(&sd.procQ)
	asl.released(sd, id)
	return id
}

// Removes `id` from the queue of the semaphore it is blocked on.
// Returns NO_PROC if it isn't blocked
func (asl *BlockingStore) OutBlocked(id ProcID) ProcID {
	sd, ok := asl.active[asl.procs.Get(id).SemAdd]
	if !ok {
		return NO_PROC
	}
	out := asl.procs.OutProcQ(&sd.procQ, id)
	asl.released(sd, out)
	return out
}

// Returns the process at the head of the queue of `semAdd` without
// removing it
func (asl *BlockingStore) HeadBlocked(semAdd uint32) ProcID {
	sd, ok := asl.active[semAdd]
	if !ok {
		return NO_PROC
	}
	return asl.procs.HeadProcQ(&sd.procQ)
}

// Returns the processes blocked on `semAdd`, longest waiting first
func (asl *BlockingStore) Waiters(semAdd uint32) []ProcID {
	sd, ok := asl.active[semAdd]
	if !ok {
		return nil
	}
	var out []ProcID
	asl.procs.EachProcQ(&sd.procQ, func(id ProcID) { out = append(out, id) })
	return out
}

// Returns the addresses of every semaphore with waiters, ascending
func (asl *BlockingStore) Active() []uint32 {
	addrs := make([]uint32, 0, len(asl.active))
	for addr := range asl.active {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}

func (asl *BlockingStore) released(sd *semd, id ProcID) {
	if id != NO_PROC {
		asl.procs.Get(id).SemAdd = NO_SEM
	}
	if sd.procQ.Empty() {
		delete(asl.active, sd.semAdd)
		asl.free = append(asl.free, sd)
	}
}
