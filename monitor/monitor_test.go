package monitor

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"

	"github.com/zeozeozeo/gonucleus/nucleus"
)

// 0 -> {1 -> {3}, 2}, and a second root 4
func testSnapshot() nucleus.Snapshot {
	return nucleus.Snapshot{
		TOD:          1234,
		Current:      3,
		ProcessCount: 5,
		ReadyQueue:   []nucleus.ProcID{2, 4},
		Processes: []nucleus.ProcessInfo{
			{ID: 0, Parent: nucleus.NO_PROC, Children: []nucleus.ProcID{2, 1}, State: nucleus.PROC_BLOCKED, SemAdd: 0x3000},
			{ID: 1, Parent: 0, Children: []nucleus.ProcID{3}, State: nucleus.PROC_BLOCKED, SemAdd: 0x3000},
			{ID: 2, Parent: 0, State: nucleus.PROC_READY},
			{ID: 3, Parent: 1, State: nucleus.PROC_RUNNING},
			{ID: 4, Parent: nucleus.NO_PROC, State: nucleus.PROC_READY},
		},
		Semaphores: []nucleus.SemaphoreInfo{
			{Addr: 0x3000, Value: -2, Waiters: []nucleus.ProcID{0, 1}},
		},
	}
}

func TestLayout(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	pos := Layout(testSnapshot())
	assert(len(pos) == 5)
	assert(pos[2] == Point{0, 1})
	assert(pos[3] == Point{1, 2})
	assert(pos[1] == Point{1, 1})
	assert(pos[0] == Point{0, 0})
	assert(pos[4] == Point{2, 0})
}

func TestRenderColorsNodesByState(t *testing.T) {
	snap := testSnapshot()
	r := NewRenderer(0, 0)
	img := r.Render(snap)
	if b := img.Bounds(); b.Dx() != DEFAULT_WIDTH || b.Dy() != DEFAULT_HEIGHT {
		t.Fatalf("unexpected bounds %v", b)
	}

	top := float64(margin + 2*lineHeight + margin)
	for id, at := range Layout(snap) {
		p, _ := snap.Process(id)
		// left of the label, inside the circle
		x, y := int(nodeX(at.X))-nodeRadius+4, int(top+nodeY(at.Y))
		got := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
		if got != StateColors[p.State] {
			t.Errorf("process %d: expected %v at (%d, %d), got %v", id, StateColors[p.State], x, y, got)
		}
	}
}

func TestWritePNG(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := NewRenderer(320, 240).WritePNG(buf, testSnapshot()); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 320 || b.Dy() != 240 {
		t.Fatalf("unexpected bounds %v", b)
	}
}
