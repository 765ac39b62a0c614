package mixer

import (
	"slices"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/meter"
)

// Discoverer is the registry surface the board needs at start-up
type Discoverer interface {
	Registry
	Info(id control.ID) (control.Info, error)
	Has(id control.ID) bool
	Discover(kind control.Kind, limit int) int
}

// Options bounds discovery and selects optional panels
type Options struct {
	PCMOutputs        int
	Inputs            int
	Outputs           int
	SPDIF             int
	ViewSPDIFPlayback bool
	NoScaleMarks      bool
}

// DefaultOptions mirrors a fully populated ICE1712 card
func DefaultOptions() Options {
	return Options{
		PCMOutputs: control.MaxPCMOutputChannels,
		Inputs:     control.MaxInputChannels,
		Outputs:    control.MaxOutputChannels,
		SPDIF:      control.MaxSPDIFChannels,
	}
}

// AnalogStrip is one gain control with its widgets and peak label
type AnalogStrip struct {
	*Analog
	Fader   *Slider
	Readout *Text
	Peak    *Text
}

// SenseStrip is one sensitivity switch with its radio toggles
type SenseStrip struct {
	*Sense
	Toggles []*Switch
}

// MixerStrip is one digital mixer stream with its widgets
type MixerStrip struct {
	*Strip
	Sliders [2]*Slider
	Mutes   [2]*Switch
	Labels  [2]*Text
	Link    *Switch
	Peak    *Text
}

// Board is every control the card exposes, discovered once
type Board struct {
	reg  Discoverer
	opts Options
	logf Logf

	Mixer     []*MixerStrip
	MixPeak   [2]*Text
	DACs      []*AnalogStrip
	ADCs      []*AnalogStrip
	IPGAs     []*AnalogStrip
	DACSenses []*SenseStrip
	ADCSenses []*SenseStrip
}

// NewBoard discovers the card's controls and builds their widgets.
// Nothing is read from the hardware until SyncAll.
func NewBoard(reg Discoverer, opts Options, echo Echo, logf Logf) *Board {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	b := &Board{
		reg:     reg,
		opts:    opts,
		logf:    logf,
		MixPeak: [2]*Text{NewText("(Off)"), NewText("(Off)")},
	}
	for _, stream := range b.streams() {
		b.Mixer = append(b.Mixer, b.newMixerStrip(stream, echo))
	}
	b.DACs = b.analogs(control.DACVolume, opts.Outputs)
	b.ADCs = b.analogs(control.ADCVolume, opts.Inputs)
	b.IPGAs = b.analogs(control.IPGAVolume, opts.Inputs)
	for i := range min(len(b.ADCs), len(b.IPGAs)) {
		Couple(b.ADCs[i].Analog, b.IPGAs[i].Analog)
	}
	b.DACSenses = b.senses(control.DACSense, len(b.DACs))
	b.ADCSenses = b.senses(control.ADCSense, len(b.ADCs))
	return b
}

// streams lists the mixer streams present on the card, in panel order
func (b *Board) streams() []int {
	var streams []int
	pcm := min(b.opts.PCMOutputs, control.MaxPCMOutputChannels)
	pcm = b.reg.Discover(control.MultiPlaybackVolume, pcm)
	for i := range pcm {
		streams = append(streams, control.FirstPCMStream+i)
	}
	spdif := min(b.opts.SPDIF, control.MaxSPDIFChannels)
	if b.opts.ViewSPDIFPlayback {
		for i := range spdif {
			if s := control.FirstSPDIFPlaybackStream + i; b.reg.Has(control.StreamVolume(s)) {
				streams = append(streams, s)
			}
		}
	}
	inputs := min(b.opts.Inputs, control.MaxInputChannels)
	inputs = b.reg.Discover(control.HWCaptureVolume, inputs)
	for i := range inputs {
		streams = append(streams, control.FirstCaptureStream+i)
	}
	for i := range spdif {
		if s := control.FirstSPDIFCaptureStream + i; b.reg.Has(control.StreamVolume(s)) {
			streams = append(streams, s)
		}
	}
	return streams
}

func (b *Board) newMixerStrip(stream int, echo Echo) *MixerStrip {
	m := &MixerStrip{Link: &Switch{active: true}, Peak: NewText("(Off)")}
	var w StripWidgets
	for side := Left; side <= Right; side++ {
		m.Sliders[side] = NewSlider(control.MinMixerAttenuation, control.LowMixerAttenuation)
		if !b.opts.NoScaleMarks {
			m.Sliders[side].Marks = MixerScaleMarks()
		}
		m.Mutes[side] = &Switch{}
		m.Labels[side] = NewText("")
		w.Sliders[side] = m.Sliders[side]
		w.Mutes[side] = m.Mutes[side]
		w.Labels[side] = m.Labels[side]
	}
	w.Link = m.Link
	m.Strip = NewStrip(stream, b.reg, w, echo, b.logf)
	return m
}

func (b *Board) analogs(kind control.Kind, limit int) []*AnalogStrip {
	n := min(b.reg.Discover(kind, control.AnalogProbeLimit), max(limit, 0))
	var strips []*AnalogStrip
	for i := range n {
		id := control.ID{Kind: kind, Index: i}
		info, err := b.reg.Info(id)
		if err != nil {
			break
		}
		s := &AnalogStrip{
			Fader:   NewSlider(-info.Max, -info.Min),
			Readout: NewText(""),
			Peak:    NewText("(Off)"),
		}
		if !b.opts.NoScaleMarks {
			s.Fader.Marks = BuildScaleMarks(b.reg, id)
		}
		s.Analog = NewAnalog(id, b.reg, s.Fader, s.Readout, b.logf)
		strips = append(strips, s)
	}
	return strips
}

func (b *Board) senses(kind control.Kind, limit int) []*SenseStrip {
	n := b.reg.Discover(kind, limit)
	var strips []*SenseStrip
	for i := range n {
		id := control.ID{Kind: kind, Index: i}
		info, err := b.reg.Info(id)
		if err != nil {
			break
		}
		s := &SenseStrip{}
		toggles := make([]Toggle, len(info.Items))
		for j := range info.Items {
			sw := &Switch{}
			s.Toggles = append(s.Toggles, sw)
			toggles[j] = sw
		}
		s.Sense = NewSense(id, b.reg, info.Items, toggles, b.logf)
		strips = append(strips, s)
	}
	return strips
}

// Strip returns the mixer strip of a stream, or nil
func (b *Board) Strip(stream int) *MixerStrip {
	for _, m := range b.Mixer {
		if m.Stream() == stream {
			return m
		}
	}
	return nil
}

// Channels returns the meter channels to poll: the digital mix, then
// every present stream
func (b *Board) Channels() []int {
	channels := []int{0}
	for _, m := range b.Mixer {
		channels = append(channels, m.Stream())
	}
	return channels
}

// AttachMeters activates the board's meter channels and hooks every
// peak label to its slot. DAC n follows PCM stream n+1; ADC n follows
// capture stream n+1.
func (b *Board) AttachMeters(e *meter.Engine) {
	e.SetActive(b.Channels())
	e.AttachLabel(control.IdxLMix, b.MixPeak[Left])
	e.AttachLabel(control.IdxRMix, b.MixPeak[Right])
	for _, m := range b.Mixer {
		e.AttachLabel(m.Stream()-1, m.Peak)
	}
	for i, d := range b.DACs {
		e.AttachLabel(control.FirstPCMStream-1+i, d.Peak)
	}
	for i, a := range b.ADCs {
		e.AttachLabel(control.FirstCaptureStream-1+i, a.Peak)
	}
}

// RestoreLinks sets the stereo links from saved state. A nil list leaves
// every stream linked.
func (b *Board) RestoreLinks(streams []int) {
	if streams == nil {
		return
	}
	for _, m := range b.Mixer {
		m.Link.SetActive(slices.Contains(streams, m.Stream()))
	}
}

// Links returns the streams whose stereo link is on
func (b *Board) Links() []int {
	var links []int
	for _, m := range b.Mixer {
		if m.Linked() {
			links = append(links, m.Stream())
		}
	}
	return links
}

// SyncAll reads every control into its widgets
func (b *Board) SyncAll() {
	for _, m := range b.Mixer {
		m.SyncVolume()
		m.SyncSwitch()
	}
	for _, group := range [][]*AnalogStrip{b.DACs, b.ADCs, b.IPGAs} {
		for _, a := range group {
			a.Sync()
		}
	}
	for _, s := range b.DACSenses {
		s.Sync()
	}
	for _, s := range b.ADCSenses {
		s.Sync()
	}
}
