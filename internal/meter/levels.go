// Package meter drives the ICE1712 hardware peak meters: it polls the
// "Multi Track Peak" register, keeps a peak-hold per slot and repaints a
// meter surface only when its state changed.
package meter

import (
	"fmt"
	"math"

	"github.com/linuxmatters/envymix/internal/control"
)

// meterFloor is the dB value mapped to the bottom of a meter. It is a
// little below the register's real floor (-48.13dB) so bars line up
// with the mixer scale marks.
const meterFloor = 51.0

// Pen is a drawing colour on a meter surface
type Pen int

const (
	PenBlack Pen = iota
	PenBackground
	PenForeground
	PenGreen
	PenWhite
	PenOrange
	PenRed
)

func (p Pen) String() string {
	switch p {
	case PenBlack:
		return "black"
	case PenBackground:
		return "background"
	case PenForeground:
		return "foreground"
	case PenGreen:
		return "green"
	case PenWhite:
		return "white"
	case PenOrange:
		return "orange"
	case PenRed:
		return "red"
	}
	return fmt.Sprintf("Pen(%d)", int(p))
}

// Pixels maps a raw peak reading (0..255) to a bar height in pixels
func Pixels(level, height int) int {
	if level == 0 {
		return 0
	}
	db := 20 * math.Log10(float64(level)/control.MaxMeteringLevel)
	return int(float64(height)*((db+meterFloor)/meterFloor)) - 1
}

// PeakPen returns the colour of a peak-hold line: red within 1dB of full
// scale, orange within 3dB, white within 6dB, green below.
func PeakPen(level int) Pen {
	switch {
	case level > 228:
		return PenRed
	case level > 181:
		return PenOrange
	case level > 128:
		return PenWhite
	}
	return PenGreen
}

// PeakLevelToDB formats a raw peak reading in dBFS for a peak label
func PeakLevelToDB(level int) string {
	if level <= 0 {
		return "(Off)"
	}
	db := 20 * math.Log10(float64(level)/control.MaxMeteringLevel)
	switch {
	case db == 0:
		return "0.0dB"
	case db > -10:
		return fmt.Sprintf("%+.2f", db)
	}
	return fmt.Sprintf("%+.1f", db)
}
