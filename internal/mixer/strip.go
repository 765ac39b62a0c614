package mixer

import (
	"fmt"

	"github.com/linuxmatters/envymix/internal/control"
)

// Sides of a stereo mixer stream
const (
	Left = iota
	Right
)

// Registry is the control access the synchronizer needs
type Registry interface {
	DBConverter
	Read(id control.ID) ([]int, error)
	Write(id control.ID, values []int) error
	ToDB(id control.ID, raw int) (int, error)
}

// Logf is a printf-style log sink
type Logf func(format string, args ...any)

// StripWidgets are the controls of one digital mixer stream
type StripWidgets struct {
	Sliders [2]Adjuster
	Mutes   [2]Toggle
	Labels  [2]Label
	Link    Toggle
}

// Strip keeps one stereo digital mixer stream and its widgets in step.
// The mixer stores attenuation counted up from silence; sliders show
// attenuation down from 0dB, so display = MaxMixerAttenuation - raw.
type Strip struct {
	stream  int
	reg     Registry
	w       StripWidgets
	echo    Echo
	logf    Logf
	syncing bool
}

// NewStrip binds a stream's widgets to the registry
func NewStrip(stream int, reg Registry, w StripWidgets, echo Echo, logf Logf) *Strip {
	if echo == nil {
		echo = Nop{}
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Strip{stream: stream, reg: reg, w: w, echo: echo, logf: logf}
}

// Stream returns the 1-based stream number
func (s *Strip) Stream() int { return s.stream }

// Widgets returns the bound widgets
func (s *Strip) Widgets() StripWidgets { return s.w }

// Linked reports whether the stereo link is on
func (s *Strip) Linked() bool {
	return s.w.Link != nil && s.w.Link.Active()
}

// ToDisplay converts a raw attenuation to a slider position
func ToDisplay(raw int) int {
	return control.MaxMixerAttenuation - raw
}

// ToRaw converts a slider position to the raw attenuation written to the
// mixer. Everything at or below the low threshold is the single "Off"
// position.
func ToRaw(display int) int {
	raw := control.MaxMixerAttenuation - display
	if raw <= control.MaxMixerAttenuation-control.LowMixerAttenuation {
		return control.MinMixerAttenuation
	}
	return raw
}

func clampTo(a Adjuster, v int) int {
	lower, upper := a.Range()
	return max(lower, min(v, upper))
}

// SyncVolume reads the stream's attenuation and moves the sliders that
// disagree. Hardware that reports different left and right values turns
// the stereo link off. Every read is echoed, so a control surface that
// missed a message catches up on the next sync.
func (s *Strip) SyncVolume() {
	id := control.StreamVolume(s.stream)
	values, err := s.reg.Read(id)
	if err != nil {
		s.logf("Unable to read %s: %v\n", id, err)
		return
	}
	if len(values) < 2 {
		return
	}

	s.syncing = true
	defer func() { s.syncing = false }()

	for side := Left; side <= Right; side++ {
		slider := s.w.Sliders[side]
		if slider == nil {
			continue
		}
		display := clampTo(slider, ToDisplay(values[side]))
		if slider.Value() != display {
			slider.SetValue(display)
		}
		s.echo.Controller(EchoChannel(s.stream, side), echoValue(display))
		s.setLabel(side, values[side])
	}
	if s.Linked() && values[Left] != values[Right] {
		s.w.Link.SetActive(false)
	}
}

// SyncSwitch reads the stream's mute switches into the mute toggles.
// Switches that differ between left and right turn the stereo link off.
func (s *Strip) SyncSwitch() {
	id := control.StreamSwitch(s.stream)
	values, err := s.reg.Read(id)
	if err != nil {
		s.logf("Unable to read %s: %v\n", id, err)
		return
	}

	s.syncing = true
	defer func() { s.syncing = false }()

	for side := Left; side <= Right && side < len(values); side++ {
		mute := s.w.Mutes[side]
		if mute == nil {
			continue
		}
		muted := values[side] == 0
		if mute.Active() != muted {
			mute.SetActive(muted)
		}
		s.echo.Button(EchoChannel(s.stream, side), muted)
	}
	if s.Linked() && len(values) >= 2 && values[Left] != values[Right] {
		s.w.Link.SetActive(false)
	}
}

// OnUserAdjust handles a slider moved by the user. A linked sibling
// follows. Only changed values are written.
func (s *Strip) OnUserAdjust(side, display int) {
	if s.syncing || side < Left || side > Right {
		return
	}
	sides := []int{side}
	if s.Linked() {
		sides = []int{Left, Right}
	}

	id := control.StreamVolume(s.stream)
	values, err := s.reg.Read(id)
	if err != nil {
		s.logf("Unable to read %s: %v\n", id, err)
		return
	}
	if len(values) < 2 {
		return
	}

	raw := ToRaw(display)
	changed := false
	for _, sd := range sides {
		if slider := s.w.Sliders[sd]; slider != nil && slider.Value() != display {
			slider.SetValue(display)
		}
		if values[sd] != raw {
			values[sd] = raw
			changed = true
		}
	}
	if changed {
		if err := s.reg.Write(id, values); err != nil {
			s.logf("Unable to write %s: %v\n", id, err)
			return
		}
	}
	for _, sd := range sides {
		s.setLabel(sd, raw)
		s.echo.Controller(EchoChannel(s.stream, sd), echoValue(display))
	}
}

// OnUserMute handles a mute toggle set by the user
func (s *Strip) OnUserMute(side int, muted bool) {
	if s.syncing || side < Left || side > Right {
		return
	}
	sides := []int{side}
	if s.Linked() {
		sides = []int{Left, Right}
	}

	id := control.StreamSwitch(s.stream)
	values, err := s.reg.Read(id)
	if err != nil {
		s.logf("Unable to read %s: %v\n", id, err)
		return
	}

	on := 1
	if muted {
		on = 0
	}
	changed := false
	for _, sd := range sides {
		if sd >= len(values) {
			continue
		}
		if t := s.w.Mutes[sd]; t != nil && t.Active() != muted {
			t.SetActive(muted)
		}
		if values[sd] != on {
			values[sd] = on
			changed = true
		}
	}
	if !changed {
		return
	}
	if err := s.reg.Write(id, values); err != nil {
		s.logf("Unable to write %s: %v\n", id, err)
		return
	}
	for _, sd := range sides {
		s.echo.Button(EchoChannel(s.stream, sd), muted)
	}
}

// OnUserLink handles the stereo link toggle. Linking moves the right
// side to the left side's position.
func (s *Strip) OnUserLink(linked bool) {
	if s.syncing || s.w.Link == nil {
		return
	}
	s.w.Link.SetActive(linked)
	if linked && s.w.Sliders[Left] != nil {
		s.OnUserAdjust(Left, s.w.Sliders[Left].Value())
	}
}

// MixerLabel formats a raw attenuation as a dB label using the
// hardware's table, falling back to the chip's 1.5dB steps
func MixerLabel(reg Registry, stream, raw int) string {
	if raw == control.MinMixerAttenuation {
		return "(Off)"
	}
	cdb, err := reg.ToDB(control.StreamDB(stream), raw)
	if err != nil {
		cdb = (raw - control.MaxMixerAttenuation) * 150
	}
	return formatGain(cdb)
}

func formatGain(cdb int) string {
	return fmt.Sprintf("%+.1f", float64(cdb)/100)
}

func (s *Strip) setLabel(side, raw int) {
	if l := s.w.Labels[side]; l != nil {
		l.SetText(MixerLabel(s.reg, s.stream, raw))
	}
}
