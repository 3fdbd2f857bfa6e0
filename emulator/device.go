package emulator

import (
	"io"
	"sync"
)

// Device status codes
const (
	DEV_STATUS_NOT_INSTALLED uint32 = 0
	DEV_STATUS_READY         uint32 = 1
	DEV_STATUS_ILLEGAL_OP    uint32 = 2
	DEV_STATUS_BUSY          uint32 = 3
	DEV_STATUS_CHAR_DONE     uint32 = 5 // Character printed, transmitted or received
)

// Device commands
const (
	DEV_CMD_RESET uint32 = 0
	DEV_CMD_ACK   uint32 = 1
	DEV_CMD_OP    uint32 = 2 // Print, transmit or receive one character
)

// Device register fields (word index)
const (
	DEV_FIELD_STATUS  = 0
	DEV_FIELD_COMMAND = 1
	DEV_FIELD_DATA0   = 2
	DEV_FIELD_DATA1   = 3

	// Terminals split the register into a receive and a transmit half
	TERM_RECV_STATUS    = DEV_FIELD_STATUS
	TERM_RECV_COMMAND   = DEV_FIELD_COMMAND
	TERM_TRANSM_STATUS  = DEV_FIELD_DATA0
	TERM_TRANSM_COMMAND = DEV_FIELD_DATA1
)

// Cycles between a command and its completion
const DEVICE_LATENCY uint64 = 64

// A device mapped in the device register area
type Device interface {
	Load(field uint32) uint32
	Store(field uint32, val uint32, now uint64)
	// Completes the commands whose latency elapsed by `now`
	Update(now uint64)
	// Returns true while the device waits for an acknowledgement
	Pending() bool
	// Returns the time of the next completion, false if nothing is in flight
	NextEvent() (uint64, bool)
}

// One character-oriented channel: the printer, or a terminal half
type charChannel struct {
	status  uint32
	command uint32
	busy    bool
	doneAt  uint64
	pending bool
}

func (ch *charChannel) start(cmd uint32, now uint64) {
	ch.command = cmd
	switch cmd & 0xff {
	case DEV_CMD_RESET, DEV_CMD_ACK:
		ch.status = DEV_STATUS_READY
		ch.pending = false
		ch.busy = false
	case DEV_CMD_OP:
		ch.status = DEV_STATUS_BUSY
		ch.busy = true
		ch.doneAt = now + DEVICE_LATENCY
	default:
		ch.status = DEV_STATUS_ILLEGAL_OP
		ch.pending = true
	}
}

func (ch *charChannel) complete(status uint32) {
	ch.status = status
	ch.busy = false
	ch.pending = true
}

func (ch *charChannel) due(now uint64) bool {
	return ch.busy && now >= ch.doneAt
}

// Line printer. Prints the character in DATA0 on DEV_CMD_OP
type Printer struct {
	Out   io.Writer
	ch    charChannel
	data0 uint32
}

// Returns a new Printer instance writing to `out`
func NewPrinter(out io.Writer) *Printer {
	return &Printer{Out: out, ch: charChannel{status: DEV_STATUS_READY}}
}

func (p *Printer) Load(field uint32) uint32 {
	switch field {
	case DEV_FIELD_STATUS:
		return p.ch.status
	case DEV_FIELD_COMMAND:
		return p.ch.command
	case DEV_FIELD_DATA0:
		return p.data0
	}
	return 0
}

func (p *Printer) Store(field uint32, val uint32, now uint64) {
	switch field {
	case DEV_FIELD_COMMAND:
		p.ch.start(val, now)
	case DEV_FIELD_DATA0:
		p.data0 = val
	}
}

func (p *Printer) Update(now uint64) {
	if !p.ch.due(now) {
		return
	}
	if _, err := p.Out.Write([]byte{byte(p.data0)}); err != nil {
		p.ch.complete(DEV_STATUS_ILLEGAL_OP)
		return
	}
	p.ch.complete(DEV_STATUS_READY)
}

func (p *Printer) Pending() bool {
	return p.ch.pending
}

func (p *Printer) NextEvent() (uint64, bool) {
	return p.ch.doneAt, p.ch.busy
}

// Terminal with independent receive and transmit halves. Characters
// to transmit are in bits [15:8] of the transmit command; received
// characters are reported in bits [15:8] of the receive status
type Terminal struct {
	Out io.Writer

	mu    sync.Mutex // guards input, fed from the host side
	input *FIFO

	recv   charChannel
	transm charChannel
}

// Returns a new Terminal instance writing to `out`
func NewTerminal(out io.Writer) *Terminal {
	return &Terminal{
		Out:    out,
		input:  NewFIFO(),
		recv:   charChannel{status: DEV_STATUS_READY},
		transm: charChannel{status: DEV_STATUS_READY},
	}
}

// Queues characters typed on the host side. Returns how many were
// accepted before the input buffer filled up
func (term *Terminal) Feed(data []byte) int {
	term.mu.Lock()
	defer term.mu.Unlock()
	for i, b := range data {
		if !term.input.Push(b) {
			return i
		}
	}
	return len(data)
}

func (term *Terminal) Load(field uint32) uint32 {
	switch field {
	case TERM_RECV_STATUS:
		return term.recv.status
	case TERM_RECV_COMMAND:
		return term.recv.command
	case TERM_TRANSM_STATUS:
		return term.transm.status
	case TERM_TRANSM_COMMAND:
		return term.transm.command
	}
	return 0
}

func (term *Terminal) Store(field uint32, val uint32, now uint64) {
	switch field {
	case TERM_RECV_COMMAND:
		term.recv.start(val, now)
	case TERM_TRANSM_COMMAND:
		term.transm.start(val, now)
	}
}

func (term *Terminal) Update(now uint64) {
	if term.transm.due(now) {
		c := byte(term.transm.command >> 8)
		if _, err := term.Out.Write([]byte{c}); err != nil {
			term.transm.complete(DEV_STATUS_ILLEGAL_OP)
		} else {
			term.transm.complete(DEV_STATUS_CHAR_DONE | uint32(c)<<8)
		}
	}
	if term.recv.due(now) {
		term.mu.Lock()
		if !term.input.IsEmpty() {
			c := term.input.Pop()
			term.recv.complete(DEV_STATUS_CHAR_DONE | uint32(c)<<8)
		}
		term.mu.Unlock()
	}
}

func (term *Terminal) Pending() bool {
	return term.recv.pending || term.transm.pending
}

// Returns true while the transmit half waits for an acknowledgement
func (term *Terminal) TransmitPending() bool {
	return term.transm.pending
}

func (term *Terminal) NextEvent() (uint64, bool) {
	if term.transm.busy {
		return term.transm.doneAt, true
	}
	// a receive waits on the host, it has no completion date
	return 0, false
}

// Returns true if a receive command is waiting for host input
func (term *Terminal) WaitingForInput() bool {
	return term.recv.busy
}
