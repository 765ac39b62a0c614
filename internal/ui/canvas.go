package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/envymix/internal/meter"
)

// Meter canvas widths in pixels (terminal cells)
const (
	monoMeterWidth   = 4
	stereoMeterWidth = 8
)

// palette maps meter pens to terminal colours
type palette struct {
	colours map[meter.Pen]lipgloss.Color
	cells   map[[2]meter.Pen]string
}

func newPalette(lights, background string) palette {
	return palette{
		colours: map[meter.Pen]lipgloss.Color{
			meter.PenBlack:      lipgloss.Color("#000000"),
			meter.PenBackground: lipgloss.Color(background),
			meter.PenForeground: lipgloss.Color(lights),
			meter.PenGreen:      lipgloss.Color("#00ff00"),
			meter.PenWhite:      lipgloss.Color("#ffffff"),
			meter.PenOrange:     lipgloss.Color("#ffa500"),
			meter.PenRed:        lipgloss.Color("#ff0000"),
		},
		cells: make(map[[2]meter.Pen]string),
	}
}

// cell renders two vertically stacked pixels as one upper half block
func (p palette) cell(top, bottom meter.Pen) string {
	key := [2]meter.Pen{top, bottom}
	if s, ok := p.cells[key]; ok {
		return s
	}
	s := lipgloss.NewStyle().
		Foreground(p.colours[top]).
		Background(p.colours[bottom]).
		Render("▀")
	p.cells[key] = s
	return s
}

// renderCanvas returns one string per terminal row of a meter canvas
func renderCanvas(c *meter.Canvas, p palette) []string {
	width, height := c.Size()
	rows := make([]string, 0, (height+1)/2)
	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		sb.Reset()
		for x := range width {
			sb.WriteString(p.cell(c.At(x, y), c.At(x, y+1)))
		}
		rows = append(rows, sb.String())
	}
	return rows
}
