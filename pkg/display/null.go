package display

// Null is a render and input backend that discards every frame and reports
// no pointer activity. It serves headless runs where only the HTTP surface
// and metrics matter.
type Null struct {
	W, H int
}

// NewNull returns a null display with a nominal cell grid.
func NewNull() *Null {
	return &Null{W: 80, H: 24}
}

func (n *Null) Begin() {}

func (n *Null) Draw(x, y, size float64, color string) {}

func (n *Null) Status(line string) {}

func (n *Null) End() {}

func (n *Null) Size() (int, int) { return n.W, n.H }

func (n *Null) Pointer() (float64, float64) { return 0, 0 }

func (n *Null) Pressed(button int) bool { return false }
