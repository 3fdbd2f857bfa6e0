package console

import (
	"bytes"
	"io"
	"testing"

	"github.com/hashicorp/go-hclog"

	"github.com/zeozeozeo/gonucleus/emulator"
)

type runes struct {
	data []rune
}

func (r *runes) NextRune() (rune, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	c := r.data[0]
	r.data = r.data[1:]
	return c, nil
}

var (
	_ runeSource = ttyRunes{}
	_ runeSource = (*runes)(nil)
)

// Issues a receive command and returns the character it completed with
func receive(inter *emulator.Interconnect) byte {
	reg := emulator.DeviceRegAddr(uint32(emulator.INTERRUPT_TERMINAL), 0)
	inter.Store32(reg+emulator.TERM_RECV_COMMAND*4, emulator.DEV_CMD_ACK)
	inter.Store32(reg+emulator.TERM_RECV_COMMAND*4, emulator.DEV_CMD_OP)
	inter.Time.Tick(emulator.DEVICE_LATENCY)
	inter.Sync()
	return byte(inter.Load32(reg+emulator.TERM_RECV_STATUS*4) >> 8)
}

func TestPump(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	inter := emulator.NewInterconnect(emulator.NewRAM(emulator.DEFAULT_RAM_SIZE), emulator.NewTimeHandler(1))
	term := emulator.NewTerminal(io.Discard)
	inter.Install(uint32(emulator.INTERRUPT_TERMINAL), 0, term)

	pump(&runes{data: []rune("ok\r")}, term, make(chan struct{}), hclog.NewNullLogger())

	assert(receive(inter) == 'o')
	assert(receive(inter) == 'k')
	assert(receive(inter) == '\n')
}

func TestPumpStopsWhenDoneWithFullBuffer(t *testing.T) {
	term := emulator.NewTerminal(io.Discard)
	done := make(chan struct{})
	close(done)

	src := &runes{data: []rune("0123456789abcdefXYZ")}
	pump(src, term, done, hclog.NewNullLogger())
	// the rune that didn't fit was consumed, the rest are left
	if len(src.data) != 2 {
		t.Fatalf("expected 2 unread runes, got %d", len(src.data))
	}
}

func TestNewlineWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	n, err := newlineWriter{buf}.Write([]byte("a\nb\n"))
	if err != nil || n != 4 {
		t.Fatalf("write returned %d, %v", n, err)
	}
	if buf.String() != "a\r\nb\r\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestPumpStopsOnSourceError(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	inter := emulator.NewInterconnect(emulator.NewRAM(emulator.DEFAULT_RAM_SIZE), emulator.NewTimeHandler(1))
	term := emulator.NewTerminal(io.Discard)
	inter.Install(uint32(emulator.INTERRUPT_TERMINAL), 0, term)

	src := &runes{data: []rune("a")}
	pump(src, term, make(chan struct{}), hclog.NewNullLogger())
	assert(len(src.data) == 0)
	// the source stays exhausted
	_, err := src.NextRune()
	assert(err == io.EOF)
	assert(receive(inter) == 'a')
}
