package mixer

import (
	"fmt"

	"github.com/linuxmatters/envymix/internal/control"
)

// Analog keeps one DAC, ADC or IPGA gain control in step with its
// slider. Sliders show the negated raw value so more gain sits higher.
type Analog struct {
	id      control.ID
	reg     Registry
	slider  Adjuster
	label   Label
	partner *Analog
	logf    Logf
	syncing bool
}

// NewAnalog binds a gain control to its slider and label
func NewAnalog(id control.ID, reg Registry, slider Adjuster, label Label, logf Logf) *Analog {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Analog{id: id, reg: reg, slider: slider, label: label, logf: logf}
}

// ID returns the control element
func (a *Analog) ID() control.ID { return a.id }

// Slider returns the bound slider
func (a *Analog) Slider() Adjuster { return a.slider }

// Couple pairs an ADC with the IPGA stage of the same input
func Couple(adc, ipga *Analog) {
	adc.partner = ipga
	ipga.partner = adc
}

// Sync reads the gain into the slider. When the gain changed outside the
// panel the coupled stage follows: an ADC parks its IPGA partner at no
// gain, an IPGA with gain drives its ADC partner to full gain.
func (a *Analog) Sync() {
	raw, err := a.read()
	if err != nil {
		return
	}
	moved := false
	a.syncing = true
	if display := clampTo(a.slider, -raw); a.slider.Value() != display {
		a.slider.SetValue(display)
		moved = true
	}
	a.syncing = false
	a.showLabel(raw)
	if moved {
		a.couple(raw)
	}
}

func (a *Analog) couple(raw int) {
	if a.partner == nil {
		return
	}
	switch a.id.Kind {
	case control.ADCVolume:
		_, upper := a.partner.slider.Range()
		a.partner.drive(upper)
	case control.IPGAVolume:
		if raw != 0 {
			lower, _ := a.partner.slider.Range()
			a.partner.drive(lower)
		}
	}
}

// drive moves a coupled slider and writes it through if it moved
func (a *Analog) drive(display int) {
	if a.slider.Value() == display {
		return
	}
	a.slider.SetValue(display)
	a.apply(display)
}

// OnUserAdjust writes a slider position chosen by the user
func (a *Analog) OnUserAdjust(display int) {
	if a.syncing {
		return
	}
	display = clampTo(a.slider, display)
	if a.slider.Value() != display {
		a.slider.SetValue(display)
	}
	if a.apply(display) {
		a.couple(-display)
	}
}

func (a *Analog) apply(display int) bool {
	raw := -display
	if err := a.reg.Write(a.id, []int{raw}); err != nil {
		a.logf("Unable to write %s: %v\n", a.id, err)
		a.setText("(Err)")
		return false
	}
	a.showLabel(raw)
	return true
}

func (a *Analog) read() (int, error) {
	values, err := a.reg.Read(a.id)
	if err != nil {
		a.logf("Unable to read %s: %v\n", a.id, err)
		return 0, err
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("%s: no values", a.id)
	}
	return values[0], nil
}

// Label returns the text shown for a raw gain
func (a *Analog) Label(raw int) string {
	if raw == 0 {
		return "(Off)"
	}
	cdb, err := a.reg.ToDB(a.id, raw)
	if err != nil {
		return fmt.Sprintf("%03d", raw)
	}
	return formatGain(cdb)
}

func (a *Analog) showLabel(raw int) {
	a.setText(a.Label(raw))
}

func (a *Analog) setText(text string) {
	if a.label != nil {
		a.label.SetText(text)
	}
}

// Sense drives one enumerated sensitivity switch as a set of radio
// toggles, one per item
type Sense struct {
	id      control.ID
	reg     Registry
	Items   []string
	toggles []Toggle
	logf    Logf
}

// NewSense binds an enumerated switch to one toggle per item
func NewSense(id control.ID, reg Registry, items []string, toggles []Toggle, logf Logf) *Sense {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Sense{id: id, reg: reg, Items: items, toggles: toggles, logf: logf}
}

// ID returns the control element
func (s *Sense) ID() control.ID { return s.id }

// Selected returns the index of the active toggle, or -1
func (s *Sense) Selected() int {
	for i, t := range s.toggles {
		if t.Active() {
			return i
		}
	}
	return -1
}

// Sync reads the switch and activates the matching toggle
func (s *Sense) Sync() {
	values, err := s.reg.Read(s.id)
	if err != nil {
		s.logf("Unable to read %s: %v\n", s.id, err)
		return
	}
	if len(values) == 0 {
		return
	}
	s.show(values[0])
}

func (s *Sense) show(item int) {
	for i, t := range s.toggles {
		if t.Active() != (i == item) {
			t.SetActive(i == item)
		}
	}
}

// OnUserSelect writes the item chosen by the user
func (s *Sense) OnUserSelect(item int) {
	if item < 0 || item >= len(s.toggles) {
		return
	}
	if err := s.reg.Write(s.id, []int{item}); err != nil {
		s.logf("Unable to write %s: %v\n", s.id, err)
		return
	}
	s.show(item)
}
