// Package console connects an emulated terminal to the host tty
package console

import (
	"errors"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	tty "github.com/mattn/go-tty"

	"github.com/zeozeozeo/gonucleus/emulator"
)

// How long to wait before retrying when the terminal input buffer is full
const feedRetry = 5 * time.Millisecond

// Source of typed characters
type runeSource interface {
	NextRune() (rune, error)
}

// Reads runes from the host tty
type ttyRunes struct {
	t *tty.TTY
}

func (r ttyRunes) NextRune() (rune, error) {
	return r.t.ReadRune()
}

// A host terminal in raw mode. Output written by the emulated terminal
// goes to the tty, typed characters are fed to its receive half
type Console struct {
	tty     *tty.TTY
	restore func() error
	log     hclog.Logger

	closed chan struct{}
}

// Opens the tty at `path`, or the controlling terminal if empty, and
// switches it to raw mode
func Open(path string, logger hclog.Logger) (*Console, error) {
	var (
		t   *tty.TTY
		err error
	)
	if path == "" {
		t, err = tty.Open()
	} else {
		t, err = tty.OpenDevice(path)
	}
	if err != nil {
		return nil, err
	}

	restore, err := t.Raw()
	if err != nil {
		t.Close()
		return nil, err
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Console{
		tty:     t,
		restore: restore,
		log:     logger.Named("console"),
		closed:  make(chan struct{}),
	}, nil
}

// Writer for the emulated terminal's output
func (c *Console) Output() io.Writer {
	return newlineWriter{c.tty.Output()}
}

// Starts feeding typed characters to `term`
func (c *Console) Attach(term *emulator.Terminal) {
	go pump(ttyRunes{c.tty}, term, c.closed, c.log)
}

// Restores the tty mode and closes it
func (c *Console) Close() error {
	close(c.closed)
	err := c.restore()
	if cerr := c.tty.Close(); err == nil {
		err = cerr
	}
	return err
}

// Feeds everything read from `src` to `term` until `src` fails or
// `done` is closed
func pump(src runeSource, term *emulator.Terminal, done <-chan struct{}, log hclog.Logger) {
	buf := make([]byte, utf8.UTFMax)
	for {
		r, err := src.NextRune()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
				log.Debug("input stopped", "error", err)
			}
			return
		}
		if r == '\r' {
			r = '\n'
		}

		data := buf[:utf8.EncodeRune(buf, r)]
		for {
			data = data[term.Feed(data):]
			if len(data) == 0 {
				break
			}
			select {
			case <-done:
				return
			case <-time.After(feedRetry):
			}
		}
	}
}

// Translates "\n" to "\r\n", the tty is in raw mode
type newlineWriter struct {
	w io.Writer
}

func (nw newlineWriter) Write(p []byte) (int, error) {
	for i, b := range p {
		var err error
		if b == '\n' {
			_, err = nw.w.Write([]byte("\r\n"))
		} else {
			_, err = nw.w.Write(p[i : i+1])
		}
		if err != nil {
			return i, err
		}
	}
	return len(p), nil
}
