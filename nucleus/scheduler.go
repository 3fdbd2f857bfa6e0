package nucleus

// Dispatches the process at the head of the ready queue. Leaves the
// nucleus without a current process if the queue is empty
func (n *Nucleus) scheduler() {
	id := n.procs.RemoveProcQ(&n.readyQueue)
	n.current = id
	if id == NO_PROC {
		return
	}
	n.startTOD = n.tod()
	n.log.Trace("dispatch", "pid", id)
	if n.cfg.Observer != nil {
		n.cfg.Observer(n.Snapshot())
	}
	n.resume()
}
