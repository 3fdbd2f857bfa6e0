package emulator

// Global interconnect. It stores the RAM, the bus registers and all of
// the devices
type Interconnect struct {
	Ram     *RAM
	Time    *TimeHandler
	Timer   *IntervalTimer
	Irq     *IrqState
	Devices [DEV_INT_NUM][DEV_PER_INT]Device // nil if not installed
}

// Creates a new interconnect instance
func NewInterconnect(ram *RAM, th *TimeHandler) *Interconnect {
	inter := &Interconnect{
		Ram:   ram,
		Time:  th,
		Timer: NewIntervalTimer(),
		Irq:   NewIrqState(),
	}
	return inter
}

// Installs `dev` as device number `dev` on interrupt line `line`
func (inter *Interconnect) Install(line, num uint32, dev Device) {
	if line < DEV_LINE_0 || line >= DEV_LINE_0+DEV_INT_NUM || num >= DEV_PER_INT {
		panicFmt("interconnect: no slot for device %d on line %d", num, line)
	}
	inter.Devices[line-DEV_LINE_0][num] = dev
}

// Returns the device installed at (`line`, `num`), or nil
func (inter *Interconnect) Device(line, num uint32) Device {
	return inter.Devices[line-DEV_LINE_0][num]
}

// Checks whether the processor may access `addr`. Returns the exception
// to raise if it can't
func (inter *Interconnect) Translate(addr uint32, user, store bool) (Exception, bool) {
	addrErr, tlbErr := EXCEPTION_LOAD_ADDRESS_ERROR, EXCEPTION_TLB_LOAD
	if store {
		addrErr, tlbErr = EXCEPTION_STORE_ADDRESS_ERROR, EXCEPTION_TLB_STORE
	}

	if addr&3 != 0 {
		return addrErr, false
	}
	if BUS_RANGE.Contains(addr) {
		if user {
			return addrErr, false
		}
		return 0, true
	}
	if addr >= inter.Ram.Size() {
		return tlbErr, false
	}
	if user && addr < USER_BASE {
		return addrErr, false
	}
	return 0, true
}

// Returns a 32bit little endian value at `addr`. Panics
// if the address does not exist
func (inter *Interconnect) Load32(addr uint32) uint32 {
	if addr < inter.Ram.Size() {
		return inter.Ram.Load32(addr)
	}
	if BUS_RANGE.Contains(addr) {
		return inter.loadBus(addr)
	}

	// couldn't load address, panic
	panicFmt("interconnect: unhandled load32 at address 0x%x", addr)
	return 0
}

// Stores a 32bit value at `addr`. Panics if the address does not exist
func (inter *Interconnect) Store32(addr, val uint32) {
	if addr < inter.Ram.Size() {
		inter.Ram.Store32(addr, val)
		return
	}
	if BUS_RANGE.Contains(addr) {
		inter.storeBus(addr, val)
		return
	}

	panicFmt("interconnect: unhandled store32 at address 0x%x", addr)
}

func (inter *Interconnect) loadBus(addr uint32) uint32 {
	switch {
	case addr == BUS_RAMBASE:
		return 0
	case addr == BUS_RAMSIZE:
		return inter.Ram.Size()
	case addr == BUS_TODHI:
		return uint32(inter.Time.TOD() >> 32)
	case addr == BUS_TODLO:
		return uint32(inter.Time.TOD())
	case addr == BUS_INTERVAL:
		inter.Timer.Sync(inter.Time, inter.Irq)
		return inter.Timer.Value(inter.Time)
	case addr == BUS_TIMESCALE:
		return uint32(inter.Time.Timescale)
	case addr >= BUS_INST_DEV && addr < BUS_INTERRUPT_DEV:
		return inter.deviceBitmap((addr-BUS_INST_DEV)/4, func(d Device) bool { return true })
	case addr >= BUS_INTERRUPT_DEV && addr < DEV_REG_BASE:
		inter.Sync()
		return inter.deviceBitmap((addr-BUS_INTERRUPT_DEV)/4, Device.Pending)
	case DEVREG_RANGE.Contains(addr):
		line, num, field := decodeDevReg(addr)
		if dev := inter.Devices[line][num]; dev != nil {
			inter.Sync()
			return dev.Load(field)
		}
		return DEV_STATUS_NOT_INSTALLED
	}
	return 0
}

func (inter *Interconnect) storeBus(addr, val uint32) {
	switch {
	case addr == BUS_INTERVAL:
		inter.Timer.Load(val, inter.Time, inter.Irq)
	case DEVREG_RANGE.Contains(addr):
		line, num, field := decodeDevReg(addr)
		if dev := inter.Devices[line][num]; dev != nil {
			dev.Store(field, val, inter.Time.Cycles)
			inter.Sync()
		}
	}
	// everything else on the bus is read-only
}

func decodeDevReg(addr uint32) (line, num, field uint32) {
	off := DEVREG_RANGE.Offset(addr)
	slot := off / DEV_REG_SIZE
	return slot / DEV_PER_INT, slot % DEV_PER_INT, (off % DEV_REG_SIZE) / 4
}

func (inter *Interconnect) deviceBitmap(line uint32, pred func(Device) bool) uint32 {
	if line >= DEV_INT_NUM {
		return 0
	}
	var bitmap uint32
	for num, dev := range inter.Devices[line] {
		if dev != nil && pred(dev) {
			bitmap |= 1 << uint32(num)
		}
	}
	return bitmap
}

// Brings the timer and devices up to date and recomputes the
// interrupt lines
func (inter *Interconnect) Sync() {
	inter.Timer.Sync(inter.Time, inter.Irq)
	inter.Time.Sync(PERIPHERAL_DEVICES)

	now := inter.Time.Cycles
	for line := range inter.Devices {
		pending := false
		for _, dev := range inter.Devices[line] {
			if dev == nil {
				continue
			}
			dev.Update(now)
			pending = pending || dev.Pending()
		}
		irq := Interrupt(line + DEV_LINE_0)
		if pending {
			inter.Irq.SetHigh(irq)
		} else {
			inter.Irq.SetLow(irq)
		}
	}
}

// Returns the cycle at which the next interrupt source fires, false
// if no source has a known completion date
func (inter *Interconnect) NextEvent() (uint64, bool) {
	var next uint64
	found := false
	consider := func(at uint64) {
		if !found || at < next {
			next = at
			found = true
		}
	}
	if rem, ok := inter.Timer.Remaining(); ok {
		consider(inter.Time.TimeSheets[PERIPHERAL_TIMER].LastSync + rem)
	}
	for line := range inter.Devices {
		for _, dev := range inter.Devices[line] {
			if dev == nil {
				continue
			}
			if at, ok := dev.NextEvent(); ok {
				consider(at)
			}
		}
	}
	return next, found
}
