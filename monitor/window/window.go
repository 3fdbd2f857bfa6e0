// Package window shows nucleus snapshots in a live window while the
// nucleus runs on another goroutine
package window

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/zeozeozeo/gonucleus/monitor"
	"github.com/zeozeozeo/gonucleus/nucleus"
)

// Returned by Update once Stop was called, ends RunGame
var errStopped = errors.New("window: stopped")

// An Ebitengine game drawing the latest snapshot
type Window struct {
	Title    string
	renderer *monitor.Renderer

	mu      sync.Mutex // guards everything below
	snap    nucleus.Snapshot
	dirty   bool
	stopped bool
	status  string

	frame *ebiten.Image
}

// Returns a new window of `width` x `height` pixels
func New(title string, width, height int) *Window {
	return &Window{
		Title:    title,
		renderer: monitor.NewRenderer(width, height),
	}
}

// Records a new snapshot. Safe to use as nucleus.Config.Observer
func (w *Window) Observe(snap nucleus.Snapshot) {
	w.mu.Lock()
	w.snap = snap
	w.dirty = true
	w.mu.Unlock()
}

// Shows `status` in the corner, e.g. once the nucleus halted
func (w *Window) SetStatus(status string) {
	w.mu.Lock()
	w.status = status
	w.mu.Unlock()
}

// Closes the window on the next frame
func (w *Window) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
}

// Opens the window and blocks until it's closed or stopped. Must be
// called from the main goroutine
func (w *Window) Run() error {
	ebiten.SetWindowSize(w.renderer.Width, w.renderer.Height)
	ebiten.SetWindowTitle(w.Title)
	ebiten.SetRunnableOnUnfocused(true)

	err := ebiten.RunGame(w)
	if errors.Is(err, errStopped) {
		return nil
	}
	return err
}

func (w *Window) Update() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return errStopped
	}
	return nil
}

func (w *Window) Draw(screen *ebiten.Image) {
	w.mu.Lock()
	snap, dirty, status := w.snap, w.dirty, w.status
	w.dirty = false
	w.mu.Unlock()

	if dirty || w.frame == nil {
		if w.frame != nil {
			w.frame.Dispose()
		}
		w.frame = ebiten.NewImageFromImage(w.renderer.Render(snap))
	}
	screen.DrawImage(w.frame, nil)

	msg := fmt.Sprintf("TPS: %0.2f", ebiten.ActualTPS())
	if status != "" {
		msg += "\n" + status
	}
	ebitenutil.DebugPrintAt(screen, msg, w.renderer.Width-120, 0)
}

func (w *Window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return w.renderer.Width, w.renderer.Height
}
