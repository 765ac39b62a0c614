// Package mixer keeps the panel's volume, mute, link and sensitivity
// controls in step with the card's digital mixer and analog gain stages.
package mixer

// Adjuster is a range control. SetValue is for programmatic updates and
// must never be reported back as a user adjustment.
type Adjuster interface {
	Value() int
	SetValue(v int)
	Range() (lower, upper int)
}

// Toggle is a two-state control
type Toggle interface {
	Active() bool
	SetActive(active bool)
}

// Label is a text control
type Label interface {
	SetText(text string)
}

// Slider is an in-memory Adjuster with optional scale marks
type Slider struct {
	value        int
	lower, upper int
	Marks        []Mark
}

// NewSlider creates a slider over [lower, upper] positioned at lower
func NewSlider(lower, upper int) *Slider {
	if upper < lower {
		lower, upper = upper, lower
	}
	return &Slider{value: lower, lower: lower, upper: upper}
}

func (s *Slider) Value() int { return s.value }

func (s *Slider) Range() (int, int) { return s.lower, s.upper }

// SetValue moves the slider, clamping to its range
func (s *Slider) SetValue(v int) {
	s.value = max(s.lower, min(v, s.upper))
}

// Fraction returns the slider position as 0 at lower to 1 at upper
func (s *Slider) Fraction() float64 {
	if s.upper == s.lower {
		return 0
	}
	return float64(s.value-s.lower) / float64(s.upper-s.lower)
}

// Switch is an in-memory Toggle
type Switch struct {
	active bool
}

func (s *Switch) Active() bool { return s.active }

func (s *Switch) SetActive(active bool) { s.active = active }

// Text is an in-memory label. It also carries the alert flag peak labels
// use at full scale.
type Text struct {
	text  string
	alert bool
}

// NewText creates a label showing text
func NewText(text string) *Text {
	return &Text{text: text}
}

func (t *Text) SetText(text string) { t.text = text }

func (t *Text) SetAlert(alert bool) { t.alert = alert }

func (t *Text) String() string { return t.text }

func (t *Text) Alert() bool { return t.alert }
