package emulator

type RAM struct {
	Data []byte // RAM buffer
}

// Creates a new RAM instance of `size` bytes (rounded down to a word)
func NewRAM(size uint32) *RAM {
	return &RAM{Data: make([]byte, size&^3)}
}

// Returns the size of the RAM in bytes
func (ram *RAM) Size() uint32 {
	return uint32(len(ram.Data))
}

// Load a 32 bit little endian word at `offset`
func (ram *RAM) Load32(offset uint32) uint32 {
	b0 := uint32(ram.Data[offset+0])
	b1 := uint32(ram.Data[offset+1])
	b2 := uint32(ram.Data[offset+2])
	b3 := uint32(ram.Data[offset+3])
	return b0 | (b1 << 8) | (b2 << 16) | (b3 << 24)
}

// Store a 32 bit little endian word `val` into `offset`
func (ram *RAM) Store32(offset, val uint32) {
	ram.Data[offset+0] = byte(val)
	ram.Data[offset+1] = byte(val >> 8)
	ram.Data[offset+2] = byte(val >> 16)
	ram.Data[offset+3] = byte(val >> 24)
}
