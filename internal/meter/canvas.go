package meter

// Surface is a drawable meter area. Coordinates start at the top left.
type Surface interface {
	Size() (width, height int)
	FillRect(x, y, w, h int, pen Pen)
	HLine(x0, x1, y int, pen Pen)
	Visible() bool
}

// Label is a text widget showing a slot's peak-hold in dB
type Label interface {
	SetText(text string)
	SetAlert(alert bool)
}

// Canvas is an in-memory pixel surface
type Canvas struct {
	width, height int
	pix           []Pen
	hidden        bool
	draws         int
}

// NewCanvas allocates a canvas filled with PenBlack
func NewCanvas(width, height int) *Canvas {
	return &Canvas{
		width:  max(width, 0),
		height: max(height, 0),
		pix:    make([]Pen, max(width, 0)*max(height, 0)),
	}
}

// Size implements Surface
func (c *Canvas) Size() (int, int) {
	return c.width, c.height
}

// Visible implements Surface
func (c *Canvas) Visible() bool {
	return !c.hidden
}

// SetVisible shows or hides the canvas
func (c *Canvas) SetVisible(v bool) {
	c.hidden = !v
}

// FillRect implements Surface, clipping to the canvas
func (c *Canvas) FillRect(x, y, w, h int, pen Pen) {
	c.draws++
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, c.width), min(y+h, c.height)
	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col++ {
			c.pix[row*c.width+col] = pen
		}
	}
}

// HLine implements Surface; both ends are inclusive
func (c *Canvas) HLine(x0, x1, y int, pen Pen) {
	c.FillRect(x0, y, x1-x0+1, 1, pen)
}

// At returns the pen at a pixel, PenBlack outside the canvas
func (c *Canvas) At(x, y int) Pen {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return PenBlack
	}
	return c.pix[y*c.width+x]
}

// Draws counts drawing calls since the last ResetDraws
func (c *Canvas) Draws() int {
	return c.draws
}

// ResetDraws clears the drawing call counter
func (c *Canvas) ResetDraws() {
	c.draws = 0
}
