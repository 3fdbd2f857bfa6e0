// Package monitor draws nucleus snapshots: the process forest, the
// ready queue and the semaphores with their waiters
package monitor

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"strings"

	gg "github.com/fogleman/gg"

	"github.com/zeozeozeo/gonucleus/nucleus"
)

const (
	DEFAULT_WIDTH  = 640
	DEFAULT_HEIGHT = 480

	nodeRadius = 14
	rowHeight  = 56
	colWidth   = 40
	margin     = 16
	lineHeight = 16
)

var (
	background = color.RGBA{24, 24, 32, 255}
	foreground = color.RGBA{220, 220, 220, 255}
	edgeColor  = color.RGBA{110, 110, 130, 255}

	// Fill color of a process node by state
	StateColors = map[nucleus.ProcState]color.RGBA{
		nucleus.PROC_RUNNING: {80, 200, 120, 255},
		nucleus.PROC_READY:   {90, 150, 230, 255},
		nucleus.PROC_BLOCKED: {230, 110, 80, 255},
	}
)

// Draws snapshots onto a fixed size canvas
type Renderer struct {
	Width, Height int
}

// Returns a renderer for a `width` x `height` canvas. Zero values
// select the default size
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = DEFAULT_WIDTH
	}
	if height <= 0 {
		height = DEFAULT_HEIGHT
	}
	return &Renderer{Width: width, Height: height}
}

// Renders `snap` into a new image
func (r *Renderer) Render(snap nucleus.Snapshot) image.Image {
	return r.context(snap).Image()
}

// Renders `snap` and encodes it as PNG into `w`
func (r *Renderer) WritePNG(w io.Writer, snap nucleus.Snapshot) error {
	return r.context(snap).EncodePNG(w)
}

// Renders `snap` into a PNG file at `path`
func (r *Renderer) SavePNG(path string, snap nucleus.Snapshot) error {
	return r.context(snap).SavePNG(path)
}

func (r *Renderer) context(snap nucleus.Snapshot) *gg.Context {
	dc := gg.NewContext(r.Width, r.Height)
	dc.SetColor(background)
	dc.Clear()

	y := r.drawHeader(dc, snap)
	r.drawForest(dc, snap, y)
	r.drawSemaphores(dc, snap)
	return dc
}

func (r *Renderer) drawHeader(dc *gg.Context, snap nucleus.Snapshot) float64 {
	current := "none"
	if snap.Current != nucleus.NO_PROC {
		current = fmt.Sprint(snap.Current)
	}
	lines := []string{
		fmt.Sprintf("tod %dus  processes %d  soft-blocked %d  running %s",
			snap.TOD, snap.ProcessCount, snap.SoftBlockCount, current),
		"ready " + idList(snap.ReadyQueue),
	}

	dc.SetColor(foreground)
	y := float64(margin)
	for _, l := range lines {
		dc.DrawStringAnchored(l, margin, y, 0, 1)
		y += lineHeight
	}
	return y + margin
}

func (r *Renderer) drawForest(dc *gg.Context, snap nucleus.Snapshot, top float64) {
	pos := Layout(snap)

	dc.SetLineWidth(2)
	dc.SetColor(edgeColor)
	for _, p := range snap.Processes {
		from, ok := pos[p.ID]
		if !ok {
			continue
		}
		for _, c := range p.Children {
			to := pos[c]
			dc.DrawLine(nodeX(from.X), top+nodeY(from.Y), nodeX(to.X), top+nodeY(to.Y))
			dc.Stroke()
		}
	}

	for _, p := range snap.Processes {
		at, ok := pos[p.ID]
		if !ok {
			continue
		}
		x, y := nodeX(at.X), top+nodeY(at.Y)
		dc.DrawCircle(x, y, nodeRadius)
		dc.SetColor(StateColors[p.State])
		dc.Fill()

		dc.SetColor(background)
		dc.DrawStringAnchored(fmt.Sprint(p.ID), x, y, 0.5, 0.35)
		if p.State == nucleus.PROC_BLOCKED {
			dc.SetColor(foreground)
			dc.DrawStringAnchored(fmt.Sprintf("%#x", p.SemAdd), x, y+nodeRadius+2, 0.5, 1)
		}
	}
}

func (r *Renderer) drawSemaphores(dc *gg.Context, snap nucleus.Snapshot) {
	dc.SetColor(foreground)
	y := float64(r.Height - margin - lineHeight*len(snap.Semaphores))
	for _, s := range snap.Semaphores {
		kind := "sem"
		if s.Device {
			kind = "dev"
		}
		line := fmt.Sprintf("%s %#x = %d  waiters %s", kind, s.Addr, s.Value, idList(s.Waiters))
		dc.DrawStringAnchored(line, margin, y, 0, 1)
		y += lineHeight
	}
}

// Grid position of a process node: column and depth
type Point struct {
	X, Y int
}

// Places every process of the snapshot on a grid. Leaves take
// consecutive columns and parents are centered over their children
func Layout(snap nucleus.Snapshot) map[nucleus.ProcID]Point {
	children := make(map[nucleus.ProcID][]nucleus.ProcID, len(snap.Processes))
	for _, p := range snap.Processes {
		children[p.ID] = p.Children
	}

	pos := make(map[nucleus.ProcID]Point, len(snap.Processes))
	next := 0
	var place func(id nucleus.ProcID, depth int)
	place = func(id nucleus.ProcID, depth int) {
		kids := children[id]
		if len(kids) == 0 {
			pos[id] = Point{next, depth}
			next++
			return
		}
		for _, c := range kids {
			place(c, depth+1)
		}
		first, last := pos[kids[0]], pos[kids[len(kids)-1]]
		pos[id] = Point{(first.X + last.X) / 2, depth}
	}
	for _, root := range snap.Roots() {
		place(root, 0)
	}
	return pos
}

func nodeX(col int) float64 {
	return float64(margin + nodeRadius + col*colWidth)
}

func nodeY(depth int) float64 {
	return float64(nodeRadius + depth*rowHeight)
}

func idList(ids []nucleus.ProcID) string {
	if len(ids) == 0 {
		return "-"
	}
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, " ")
}
