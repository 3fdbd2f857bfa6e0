package emulator

// Characters typed on a terminal that the device has not received yet
type FIFO struct {
	Buffer   [16]byte
	WritePtr uint8 // Write pointer (4 bits and carry)
	ReadPtr  uint8 // Read pointer (4 bits and carry)
}

// Returns a new FIFO instance
func NewFIFO() *FIFO {
	return &FIFO{}
}

// Returns true if the FIFO is empty
func (fifo *FIFO) IsEmpty() bool {
	// if the read and write pointers are the same, the FIFO is empty
	return fifo.WritePtr == fifo.ReadPtr
}

// Returns true if the FIFO is full
func (fifo *FIFO) IsFull() bool {
	// if both pointers point to the same address, but have a different
	// carry
	return fifo.WritePtr == fifo.ReadPtr^0x10
}

// Pushes a value to the FIFO. Returns false and drops the value if
// the FIFO is full
func (fifo *FIFO) Push(val byte) bool {
	if fifo.IsFull() {
		return false
	}
	fifo.Buffer[fifo.WritePtr&0xf] = val
	fifo.WritePtr = (fifo.WritePtr + 1) & 0x1f
	return true
}

// Increments the read pointer of the FIFO and returns the value at
// that pointer
func (fifo *FIFO) Pop() byte {
	idx := fifo.ReadPtr & 0xf
	fifo.ReadPtr = (fifo.ReadPtr + 1) & 0x1f
	return fifo.Buffer[idx]
}

// Returns the amount of elements in the FIFO
func (fifo *FIFO) Length() uint8 {
	return (fifo.WritePtr - fifo.ReadPtr) & 0x1f
}
