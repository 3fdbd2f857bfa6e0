package emulator

// Fixed trap areas. The processor saves the faulting state of each trap
// class here before control reaches the kernel
const (
	INT_OLD_AREA uint32 = 0x000
	TLB_OLD_AREA uint32 = 0x100
	PGM_OLD_AREA uint32 = 0x200
	SYS_OLD_AREA uint32 = 0x300

	// Start of kernel data (free for the kernel to use)
	KERNEL_DATA_BASE uint32 = 0x400
	// Lowest address reachable from user mode
	USER_BASE uint32 = 0x2000
	// Default amount of RAM
	DEFAULT_RAM_SIZE uint32 = 512 * 1024
)

// Bus register layout
const (
	BUS_BASE          uint32 = 0x10000000
	BUS_RAMBASE       uint32 = BUS_BASE + 0x00
	BUS_RAMSIZE       uint32 = BUS_BASE + 0x04
	BUS_TODHI         uint32 = BUS_BASE + 0x18
	BUS_TODLO         uint32 = BUS_BASE + 0x1c
	BUS_INTERVAL      uint32 = BUS_BASE + 0x20
	BUS_TIMESCALE     uint32 = BUS_BASE + 0x24
	BUS_INST_DEV      uint32 = BUS_BASE + 0x28 // 5 words: installed device bitmap per line
	BUS_INTERRUPT_DEV uint32 = BUS_BASE + 0x3c // 5 words: pending device bitmap per line
	DEV_REG_BASE      uint32 = BUS_BASE + 0x50

	DEV_INT_NUM  = 5  // Number of device interrupt lines (3..7)
	DEV_PER_INT  = 8  // Devices per line
	DEV_REG_SIZE = 16 // Bytes per device register
	DEV_LINE_0   = 3  // First device line
)

var (
	// Bus registers and the device register area
	BUS_RANGE = NewRange(BUS_BASE, DEV_REG_BASE-BUS_BASE+DEV_INT_NUM*DEV_PER_INT*DEV_REG_SIZE)
	// Device registers only
	DEVREG_RANGE = NewRange(DEV_REG_BASE, DEV_INT_NUM*DEV_PER_INT*DEV_REG_SIZE)
)

type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping
}

func NewRange(start uint32, length uint32) Range {
	return Range{Start: start, Length: length}
}

// Returns whether `addr` is located inside this range
func (r *Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr-r.Start < r.Length
}

// Returns the offset between `addr` and the `Start` of the range.
// Does not check if the range contains the address, so if `addr`
// is smaller than `Start`, there will be an overflow
func (r *Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}

// Returns the address of the register block of device `dev` on `line`
func DeviceRegAddr(line, dev uint32) uint32 {
	return DEV_REG_BASE + ((line-DEV_LINE_0)*DEV_PER_INT+dev)*DEV_REG_SIZE
}
