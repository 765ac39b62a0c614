package mixer

import (
	"fmt"

	"github.com/linuxmatters/envymix/internal/control"
)

// MarkColour tints a scale mark by the sign of its gain
type MarkColour int

const (
	MarkNegative MarkColour = iota
	MarkUnity
	MarkPositive
)

// Mark is one labelled tick on a slider, at slider value Value
type Mark struct {
	Value  int
	Label  string
	Colour MarkColour
}

const (
	markStep  = 600    // 6dB in hundredths
	markFloor = -12000 // lowest labelled gain; lower ranges mean -inf
)

// DBConverter is the dB side of the control registry
type DBConverter interface {
	DBRange(id control.ID) (int, int, error)
	FromDB(id control.ID, cdb int, dir int) (int, error)
}

// MixerScaleMarks returns the fixed marks of a digital mixer slider:
// every MixerStepSize steps is 6dB on the ICE1712 attenuator.
func MixerScaleMarks() []Mark {
	var marks []Mark
	for i := 0; i <= 8; i++ {
		m := Mark{
			Value:  control.MinMixerAttenuation + i*control.MixerStepSize,
			Label:  fmt.Sprintf("-%d", i*6),
			Colour: MarkNegative,
		}
		if i == 0 {
			m.Label = "+0"
			m.Colour = MarkUnity
		}
		marks = append(marks, m)
	}
	return marks
}

// BuildScaleMarks returns marks every 6dB across an analog gain control,
// positioned on a slider showing the negated raw value. A control
// without a dB table gets no marks.
func BuildScaleMarks(conv DBConverter, id control.ID) []Mark {
	lo, hi, err := conv.DBRange(id)
	if err != nil {
		return nil
	}
	hi = floorDiv(hi, markStep) * markStep
	lo = -floorDiv(-lo, markStep) * markStep
	lo = max(lo, markFloor)

	var (
		marks []Mark
		last  int
		first = true
	)
	for cdb := lo; cdb <= hi; cdb += markStep {
		raw, err := conv.FromDB(id, cdb, 0)
		if err != nil {
			continue
		}
		if !first && raw == last {
			continue
		}
		first = false
		last = raw

		m := Mark{Value: -raw, Label: fmt.Sprintf("%+d", cdb/100)}
		switch {
		case cdb > 0:
			m.Colour = MarkPositive
		case cdb == 0:
			m.Colour = MarkUnity
		default:
			m.Colour = MarkNegative
		}
		if cdb <= markFloor {
			m.Label = "~"
		}
		marks = append(marks, m)
	}
	return marks
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

// Snap returns the slider value after a step or page move from cur.
// up moves toward lower. Pages stop at the nearest scale mark when
// there are marks; otherwise moves go by whole multiples of inc from
// lower.
func Snap(marks []Mark, cur, lower, upper, inc int, page, up bool) int {
	if page && len(marks) > 0 {
		next := upper
		if up {
			next = lower
		}
		for _, m := range marks {
			if up && m.Value < cur && m.Value > next {
				next = m.Value
			}
			if !up && m.Value > cur && m.Value < next {
				next = m.Value
			}
		}
		return next
	}

	if inc <= 0 {
		inc = 1
	}
	next := (cur-lower)/inc*inc + lower
	if up {
		if cur == next {
			next -= inc
		}
	} else {
		next += inc
	}
	return max(lower, min(next, upper))
}
