// Package display provides render and input backends for the playback loop.
// The terminal backend draws objects as colored blocks with tcell and exposes
// the mouse as a polled pointer.
package display

import (
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
)

// Terminal renders the scene to a terminal screen and samples mouse state.
// Rendering happens on the scheduler goroutine; the tcell event stream is
// consumed on a separate goroutine that only updates polled state under a
// mutex, so the loop never blocks on input.
type Terminal struct {
	screen tcell.Screen

	worldW float64
	worldH float64

	mu       sync.Mutex
	pointerX float64
	pointerY float64
	buttons  [3]bool
	cols     int
	rows     int

	done     chan struct{}
	doneOnce sync.Once
}

// NewTerminal initializes the terminal screen with mouse reporting enabled.
// worldW and worldH define the coordinate space object positions live in;
// they are scaled to whatever cell grid the terminal provides. Callers must
// Close the terminal to restore the host shell.
func NewTerminal(worldW, worldH float64) (*Terminal, error) {
	if worldW <= 0 || worldH <= 0 {
		return nil, fmt.Errorf("world dimensions must be positive, got %gx%g", worldW, worldH)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.EnableMouse()
	screen.SetStyle(tcell.StyleDefault)

	t := &Terminal{
		screen: screen,
		worldW: worldW,
		worldH: worldH,
		done:   make(chan struct{}),
	}
	t.cols, t.rows = screen.Size()

	go t.pollEvents()
	return t, nil
}

// pollEvents drains tcell events into polled state. It exits when the screen
// is finalized, which makes PollEvent return nil.
func (t *Terminal) pollEvents() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}

		switch ev := ev.(type) {
		case *tcell.EventMouse:
			x, y := ev.Position()
			mask := ev.Buttons()
			t.mu.Lock()
			t.pointerX = float64(x)
			t.pointerY = float64(y)
			t.buttons[0] = mask&tcell.Button1 != 0
			t.buttons[1] = mask&tcell.Button2 != 0
			t.buttons[2] = mask&tcell.Button3 != 0
			t.mu.Unlock()

		case *tcell.EventResize:
			cols, rows := ev.Size()
			t.mu.Lock()
			t.cols, t.rows = cols, rows
			t.mu.Unlock()
			t.screen.Sync()

		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
				t.signalDone()
			case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
				t.signalDone()
			}
		}
	}
}

func (t *Terminal) signalDone() {
	t.doneOnce.Do(func() { close(t.done) })
}

// Done is closed when the user asks to quit (q, Escape or Ctrl+C).
func (t *Terminal) Done() <-chan struct{} { return t.done }

// Close restores the terminal. Safe to call once rendering has stopped.
func (t *Terminal) Close() {
	t.screen.Fini()
}

// Begin clears the frame buffer for a new frame.
func (t *Terminal) Begin() {
	t.screen.Clear()
}

// Draw paints one object as a block of cells. World coordinates scale to the
// current cell grid; the status row at the bottom stays clear.
func (t *Terminal) Draw(x, y, size float64, color string) {
	cols, rows := t.Size()
	drawRows := rows - 1
	if drawRows < 1 {
		return
	}

	sx := float64(cols) / t.worldW
	sy := float64(drawRows) / t.worldH

	cx := int(x * sx)
	cy := int(y * sy)
	cw := int(size * sx)
	ch := int(size * sy)
	if cw < 1 {
		cw = 1
	}
	if ch < 1 {
		ch = 1
	}

	style := tcell.StyleDefault.Foreground(tcell.GetColor(color))
	for dy := 0; dy < ch; dy++ {
		for dx := 0; dx < cw; dx++ {
			px, py := cx+dx, cy+dy
			if px < 0 || px >= cols || py < 0 || py >= drawRows {
				continue
			}
			t.screen.SetContent(px, py, '█', nil, style)
		}
	}
}

// Status writes the status line into the bottom row.
func (t *Terminal) Status(line string) {
	cols, rows := t.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	for i, r := range line {
		if i >= cols {
			break
		}
		t.screen.SetContent(i, rows-1, r, nil, style)
	}
}

// End flushes the frame to the terminal.
func (t *Terminal) End() {
	t.screen.Show()
}

// Size reports the current cell grid dimensions.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.cols, t.rows
}

// Pointer reports the last observed mouse position in world coordinates.
func (t *Terminal) Pointer() (float64, float64) {
	t.mu.Lock()
	px, py := t.pointerX, t.pointerY
	cols, rows := t.cols, t.rows
	t.mu.Unlock()

	drawRows := rows - 1
	if cols < 1 || drawRows < 1 {
		return 0, 0
	}
	return px * t.worldW / float64(cols), py * t.worldH / float64(drawRows)
}

// Pressed reports whether the given mouse button (0, 1 or 2) is held.
func (t *Terminal) Pressed(button int) bool {
	if button < 0 || button >= len(t.buttons) {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buttons[button]
}
