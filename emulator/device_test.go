package emulator

import (
	"bytes"
	"testing"
)

func newTestBus() *Interconnect {
	return NewInterconnect(NewRAM(DEFAULT_RAM_SIZE), NewTimeHandler(DEFAULT_TIMESCALE))
}

func TestPrinter(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	out := &bytes.Buffer{}
	inter := newTestBus()
	inter.Install(uint32(INTERRUPT_PRINTER), 0, NewPrinter(out))
	reg := DeviceRegAddr(uint32(INTERRUPT_PRINTER), 0)

	assert(inter.Load32(reg) == DEV_STATUS_READY)
	inter.Store32(reg+DEV_FIELD_DATA0*4, 'x')
	inter.Store32(reg+DEV_FIELD_COMMAND*4, DEV_CMD_OP)
	assert(inter.Load32(reg) == DEV_STATUS_BUSY)
	assert(!inter.Irq.IsHigh(INTERRUPT_PRINTER))

	inter.Time.Tick(DEVICE_LATENCY)
	inter.Sync()
	assert(out.String() == "x")
	assert(inter.Load32(reg) == DEV_STATUS_READY)
	assert(inter.Irq.IsHigh(INTERRUPT_PRINTER))
	assert(inter.Load32(BUS_INTERRUPT_DEV+3*4) == 1)

	inter.Store32(reg+DEV_FIELD_COMMAND*4, DEV_CMD_ACK)
	assert(!inter.Irq.IsHigh(INTERRUPT_PRINTER))
	assert(inter.Load32(BUS_INTERRUPT_DEV+3*4) == 0)
}

func TestUnknownCommand(t *testing.T) {
	inter := newTestBus()
	inter.Install(uint32(INTERRUPT_PRINTER), 2, NewPrinter(&bytes.Buffer{}))
	reg := DeviceRegAddr(uint32(INTERRUPT_PRINTER), 2)

	inter.Store32(reg+DEV_FIELD_COMMAND*4, 0x7f)
	if inter.Load32(reg) != DEV_STATUS_ILLEGAL_OP {
		t.Fatalf("expected illegal operation status, got %d", inter.Load32(reg))
	}
	if inter.Load32(BUS_INTERRUPT_DEV+3*4) != 1<<2 {
		t.Fatalf("expected device 2 to interrupt")
	}
}

func TestNotInstalled(t *testing.T) {
	inter := newTestBus()
	if inter.Load32(DeviceRegAddr(uint32(INTERRUPT_DISK), 5)) != DEV_STATUS_NOT_INSTALLED {
		t.Fatalf("empty slot must read as not installed")
	}
	inter.Install(uint32(INTERRUPT_TERMINAL), 5, NewTerminal(&bytes.Buffer{}))
	if inter.Load32(BUS_INST_DEV+4*4) != 1<<5 {
		t.Fatalf("installed bitmap is wrong")
	}
}

func TestTerminalTransmit(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	out := &bytes.Buffer{}
	term := NewTerminal(out)
	inter := newTestBus()
	inter.Install(uint32(INTERRUPT_TERMINAL), 0, term)
	reg := DeviceRegAddr(uint32(INTERRUPT_TERMINAL), 0)

	inter.Store32(reg+TERM_TRANSM_COMMAND*4, 'k'<<8|DEV_CMD_OP)
	assert(inter.Load32(reg+TERM_TRANSM_STATUS*4) == DEV_STATUS_BUSY)
	next, ok := inter.NextEvent()
	assert(ok && next == DEVICE_LATENCY)

	inter.Time.Tick(DEVICE_LATENCY)
	inter.Sync()
	assert(out.String() == "k")
	assert(term.TransmitPending())
	assert(inter.Load32(reg+TERM_TRANSM_STATUS*4) == DEV_STATUS_CHAR_DONE|'k'<<8)
	assert(inter.Irq.IsHigh(INTERRUPT_TERMINAL))

	inter.Store32(reg+TERM_TRANSM_COMMAND*4, DEV_CMD_ACK)
	assert(!term.Pending())
	assert(!inter.Irq.IsHigh(INTERRUPT_TERMINAL))
}

func TestTerminalReceive(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	term := NewTerminal(&bytes.Buffer{})
	inter := newTestBus()
	inter.Install(uint32(INTERRUPT_TERMINAL), 1, term)
	reg := DeviceRegAddr(uint32(INTERRUPT_TERMINAL), 1)

	inter.Store32(reg+TERM_RECV_COMMAND*4, DEV_CMD_OP)
	inter.Time.Tick(10 * DEVICE_LATENCY)
	inter.Sync()
	// nothing typed yet
	assert(term.WaitingForInput())
	assert(!term.Pending())

	assert(term.Feed([]byte("ab")) == 2)
	inter.Sync()
	assert(inter.Load32(reg+TERM_RECV_STATUS*4) == DEV_STATUS_CHAR_DONE|'a'<<8)
	assert(term.Pending() && !term.TransmitPending())

	inter.Store32(reg+TERM_RECV_COMMAND*4, DEV_CMD_ACK)
	inter.Store32(reg+TERM_RECV_COMMAND*4, DEV_CMD_OP)
	inter.Time.Tick(DEVICE_LATENCY)
	inter.Sync()
	assert(inter.Load32(reg+TERM_RECV_STATUS*4) == DEV_STATUS_CHAR_DONE|'b'<<8)
}

func TestTerminalInputOverflow(t *testing.T) {
	term := NewTerminal(&bytes.Buffer{})
	if n := term.Feed(make([]byte, 40)); n != 16 {
		t.Fatalf("expected 16 accepted bytes, got %d", n)
	}
}
