package nucleus

import "github.com/zeozeozeo/gonucleus/emulator"

// Index of a process record in the arena
type ProcID int

// The empty process reference
const NO_PROC ProcID = -1

// Blocked-on value of a process that is not on any semaphore
const NO_SEM uint32 = 0

// Registration state of one trap category
type VectorState int

const (
	VECTOR_UNREGISTERED VectorState = iota
	VECTOR_REGISTERED
)

// Trap vector registered through SYS5. OldArea receives the trap state,
// NewArea is the handler context installed on the trap
type TrapVector struct {
	State   VectorState
	OldArea uint32
	NewArea uint32
}

// Process control block
type Pcb struct {
	// process queue fields
	next, prev ProcID

	// process tree fields
	parent, child, prevSib, nextSib ProcID

	State   emulator.State         // saved processor state
	SemAdd  uint32                 // semaphore the process is blocked on, NO_SEM if none
	CPUTime int64                  // microseconds spent running
	Vectors [TRAP_TYPES]TrapVector // handlers registered with SYS5

	inUse bool
}

// Returns the parent of the process, NO_PROC for a root
func (p *Pcb) Parent() ProcID { return p.parent }

func (p *Pcb) reset() {
	*p = Pcb{
		next: NO_PROC, prev: NO_PROC,
		parent: NO_PROC, child: NO_PROC, prevSib: NO_PROC, nextSib: NO_PROC,
		SemAdd: NO_SEM,
	}
}

// Fixed arena of process records. Records are linked by index, so a
// freed record can't be reached through a stale pointer
type ProcessStore struct {
	table    [MAXPROC]Pcb
	freeList ProcQueue
}

// Returns a store with every record on the free list
func NewProcessStore() *ProcessStore {
	s := &ProcessStore{freeList: NewProcQueue()}
	for i := range s.table {
		s.table[i].reset()
		s.InsertProcQ(&s.freeList, ProcID(i))
	}
	return s
}

// Returns the record for `id`
func (s *ProcessStore) Get(id ProcID) *Pcb {
	if id < 0 || int(id) >= MAXPROC {
		panicFmt("pcb: invalid process id %d", id)
	}
	return &s.table[id]
}

// Returns true if `id` is an allocated record
func (s *ProcessStore) Live(id ProcID) bool {
	return id >= 0 && int(id) < MAXPROC && s.table[id].inUse
}

// Takes a record off the free list and clears it. Returns false if
// every record is in use
func (s *ProcessStore) AllocPcb() (ProcID, bool) {
	id := s.RemoveProcQ(&s.freeList)
	if id == NO_PROC {
		return NO_PROC, false
	}
	p := &s.table[id]
	p.reset()
	p.inUse = true
	return id, true
}

// Returns `id` to the free list
func (s *ProcessStore) FreePcb(id ProcID) {
	p := s.Get(id)
	if !p.inUse {
		panicFmt("pcb: double free of process %d", id)
	}
	p.inUse = false
	s.InsertProcQ(&s.freeList, id)
}

// A process queue: circular doubly linked list identified by its tail
type ProcQueue struct {
	tail ProcID
}

// Returns an empty queue
func NewProcQueue() ProcQueue {
	return ProcQueue{tail: NO_PROC}
}

func (q *ProcQueue) Empty() bool {
	return q.tail == NO_PROC
}

// Returns the head of `q` without removing it, NO_PROC if empty
func (s *ProcessStore) HeadProcQ(q *ProcQueue) ProcID {
	if q.Empty() {
		return NO_PROC
	}
	return s.table[q.tail].next
}

// Appends `id` at the tail of `q`
func (s *ProcessStore) InsertProcQ(q *ProcQueue, id ProcID) {
	p := &s.table[id]
	if q.Empty() {
		p.next, p.prev = id, id
	} else {
		tail := &s.table[q.tail]
		head := &s.table[tail.next]
		p.next = tail.next
		p.prev = q.tail
		head.prev = id
		tail.next = id
	}
	q.tail = id
}

// Removes the head of `q`. Returns NO_PROC if `q` is empty
func (s *ProcessStore) RemoveProcQ(q *ProcQueue) ProcID {
	head := s.HeadProcQ(q)
	if head == NO_PROC {
		return NO_PROC
	}
	return s.OutProcQ(q, head)
}

// Removes `id` from anywhere in `q`. Returns NO_PROC if it isn't there
func (s *ProcessStore) OutProcQ(q *ProcQueue, id ProcID) ProcID {
	if q.Empty() || !s.inQueue(q, id) {
		return NO_PROC
	}
	p := &s.table[id]
	if p.next == id {
		q.tail = NO_PROC
	} else {
		s.table[p.prev].next = p.next
		s.table[p.next].prev = p.prev
		if q.tail == id {
			q.tail = p.prev
		}
	}
	p.next, p.prev = NO_PROC, NO_PROC
	return id
}

func (s *ProcessStore) inQueue(q *ProcQueue, id ProcID) bool {
	found := false
	s.EachProcQ(q, func(p ProcID) {
		if p == id {
			found = true
		}
	})
	return found
}

// Calls `fn` for every member of `q`, head first
func (s *ProcessStore) EachProcQ(q *ProcQueue, fn func(ProcID)) {
	if q.Empty() {
		return
	}
	for id := s.table[q.tail].next; ; id = s.table[id].next {
		fn(id)
		if id == q.tail {
			return
		}
	}
}

// Returns true if `id` has no children
func (s *ProcessStore) EmptyChild(id ProcID) bool {
	return s.table[id].child == NO_PROC
}

// Makes `child` the first child of `parent`
func (s *ProcessStore) InsertChild(parent, child ProcID) {
	pp := &s.table[parent]
	c := &s.table[child]
	c.parent = parent
	c.prevSib = NO_PROC
	c.nextSib = pp.child
	if pp.child != NO_PROC {
		s.table[pp.child].prevSib = child
	}
	pp.child = child
}

// Detaches the first child of `parent`. Returns NO_PROC if it has none
func (s *ProcessStore) RemoveChild(parent ProcID) ProcID {
	first := s.table[parent].child
	if first == NO_PROC {
		return NO_PROC
	}
	return s.OutChild(first)
}

// Detaches `id` from its parent. Returns NO_PROC if it has no parent
func (s *ProcessStore) OutChild(id ProcID) ProcID {
	p := &s.table[id]
	if p.parent == NO_PROC {
		return NO_PROC
	}
	if p.prevSib == NO_PROC {
		s.table[p.parent].child = p.nextSib
	} else {
		s.table[p.prevSib].nextSib = p.nextSib
	}
	if p.nextSib != NO_PROC {
		s.table[p.nextSib].prevSib = p.prevSib
	}
	p.parent, p.prevSib, p.nextSib = NO_PROC, NO_PROC, NO_PROC
	return id
}

// Returns the children of `id`, most recently inserted first
func (s *ProcessStore) Children(id ProcID) []ProcID {
	var out []ProcID
	for c := s.table[id].child; c != NO_PROC; c = s.table[c].nextSib {
		out = append(out, c)
	}
	return out
}
