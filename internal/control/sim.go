package control

import (
	"errors"
	"fmt"
	"io"
)

// ErrNoSuchElement is returned by SimCard for elements the modelled card lacks
var ErrNoSuchElement = errors.New("no such element")

// SenseItems are the enumerated values of the sensitivity switches
var SenseItems = []string{"+4dBu", "-10dBV"}

// PeakFeed supplies the levels the simulated peak register latches.
// Peaks fills one value per peak slot in hardware units (0..255).
type PeakFeed interface {
	Peaks(dst []int)
}

// SimConfig describes the card a SimCard models. The zero value is
// completed with the layout of a Delta 66 style card.
type SimConfig struct {
	PCMOutputs int // PCM playback streams, excluding S/PDIF
	Inputs     int // analog capture streams
	DACs       int
	ADCs       int
	IPGA       bool // ADC channels have an IPGA stage
	Feed       PeakFeed
}

func (c SimConfig) withDefaults() SimConfig {
	if c.PCMOutputs <= 0 {
		c.PCMOutputs = MaxPCMOutputChannels
	}
	if c.Inputs <= 0 {
		c.Inputs = MaxInputChannels
	}
	if c.DACs <= 0 {
		c.DACs = 4
	}
	if c.ADCs <= 0 {
		c.ADCs = 4
	}
	c.PCMOutputs = min(c.PCMOutputs, MaxPCMOutputChannels)
	c.Inputs = min(c.Inputs, MaxInputChannels)
	return c
}

// dbLaw is a linear step-to-dB table: raw r maps to zero + r*step
// hundredths of a dB, with the lowest step optionally muting.
type dbLaw struct {
	zero int
	step int
	mute bool
}

var (
	mixerLaw = dbLaw{zero: -14400, step: 150, mute: true}
	dacLaw   = dbLaw{zero: -6350, step: 50, mute: true}
	adcLaw   = dbLaw{zero: -4550, step: 50, mute: true}
	ipgaLaw  = dbLaw{zero: 0, step: 50}
)

type simElement struct {
	info   Info
	values []int
	law    *dbLaw
}

// SimCard is an in-memory ICE1712 card. Its peak register latches the
// highest level fed since the previous read and clears on read, like the
// chip's own.
type SimCard struct {
	elements map[ID]*simElement
	peaks    []int
	scratch  []int
	feed     PeakFeed
	closed   bool
}

// NewSimCard builds a simulated card from cfg
func NewSimCard(cfg SimConfig) *SimCard {
	cfg = cfg.withDefaults()
	s := &SimCard{
		elements: make(map[ID]*simElement),
		peaks:    make([]int, PeakChannels),
		scratch:  make([]int, PeakChannels),
		feed:     cfg.Feed,
	}

	volume := Info{Type: TypeInteger, Count: 2, Min: MinMixerAttenuation, Max: MaxMixerAttenuation}
	boolean := Info{Type: TypeBoolean, Count: 2, Min: 0, Max: 1}

	for i := 0; i < cfg.PCMOutputs+MaxSPDIFChannels; i++ {
		idx := i
		if i >= cfg.PCMOutputs {
			// S/PDIF playback keeps its fixed indices after the PCM block
			idx = MaxPCMOutputChannels + i - cfg.PCMOutputs
		}
		s.add(ID{MultiPlaybackVolume, idx}, volume, MaxMixerAttenuation, &mixerLaw)
		s.add(ID{MultiPlaybackSwitch, idx}, boolean, 1, nil)
	}
	for i := 0; i < cfg.Inputs; i++ {
		s.add(ID{HWCaptureVolume, i}, volume, MaxMixerAttenuation, &mixerLaw)
		s.add(ID{HWCaptureSwitch, i}, boolean, 1, nil)
	}
	for i := 0; i < MaxSPDIFChannels; i++ {
		s.add(ID{SPDIFCaptureVolume, i}, volume, MaxMixerAttenuation, nil)
		s.add(ID{SPDIFCaptureSwitch, i}, boolean, 1, nil)
	}

	analog := Info{Type: TypeInteger, Count: 1, Min: 0, Max: 127}
	sense := Info{Type: TypeEnumerated, Count: 1, Items: SenseItems}
	for i := 0; i < cfg.DACs; i++ {
		s.add(ID{DACVolume, i}, analog, 127, &dacLaw)
		s.add(ID{DACSense, i}, sense, 0, nil)
	}
	for i := 0; i < cfg.ADCs; i++ {
		s.add(ID{ADCVolume, i}, analog, 91, &adcLaw)
		s.add(ID{ADCSense, i}, sense, 0, nil)
		if cfg.IPGA {
			s.add(ID{IPGAVolume, i}, Info{Type: TypeInteger, Count: 1, Min: 0, Max: 36}, 0, &ipgaLaw)
		}
	}

	s.add(ID{MultiTrackPeak, 0}, Info{Type: TypeInteger, Count: PeakChannels, Min: 0, Max: MaxMeteringLevel}, 0, nil)
	return s
}

func (s *SimCard) add(id ID, info Info, initial int, law *dbLaw) {
	values := make([]int, info.Count)
	for i := range values {
		values[i] = initial
	}
	s.elements[id] = &simElement{info: info, values: values, law: law}
}

func (s *SimCard) lookup(id ID) (*simElement, error) {
	if s.closed {
		return nil, errors.New("card closed")
	}
	e, ok := s.elements[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrNoSuchElement)
	}
	return e, nil
}

// Info implements Hardware
func (s *SimCard) Info(id ID) (Info, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Info{}, err
	}
	return e.info, nil
}

// Read implements Hardware. Reading the peak register pulls one batch
// from the feed and clears the latched levels.
func (s *SimCard) Read(id ID) ([]int, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if id.Kind == MultiTrackPeak {
		if s.feed != nil {
			clear(s.scratch)
			s.feed.Peaks(s.scratch)
			s.Latch(s.scratch)
		}
		out := append([]int(nil), s.peaks...)
		clear(s.peaks)
		return out, nil
	}
	return append([]int(nil), e.values...), nil
}

// Write implements Hardware
func (s *SimCard) Write(id ID, values []int) error {
	e, err := s.lookup(id)
	if err != nil {
		return err
	}
	if id.Kind == MultiTrackPeak {
		return fmt.Errorf("%s is read-only", id)
	}
	if len(values) != len(e.values) {
		return fmt.Errorf("%s: want %d values, got %d", id, len(e.values), len(values))
	}
	copy(e.values, values)
	return nil
}

// Latch raises the peak register to at least levels, slot by slot
func (s *SimCard) Latch(levels []int) {
	for i, v := range levels {
		if i >= len(s.peaks) {
			break
		}
		v = max(0, min(v, MaxMeteringLevel))
		if v > s.peaks[i] {
			s.peaks[i] = v
		}
	}
}

func (s *SimCard) law(id ID) (*simElement, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if e.law == nil {
		return nil, fmt.Errorf("%s has no dB table", id)
	}
	return e, nil
}

// DBRange implements Hardware
func (s *SimCard) DBRange(id ID) (int, int, error) {
	e, err := s.law(id)
	if err != nil {
		return 0, 0, err
	}
	return e.law.zero + e.info.Min*e.law.step, e.law.zero + e.info.Max*e.law.step, nil
}

// ToDB implements Hardware
func (s *SimCard) ToDB(id ID, raw int) (int, error) {
	e, err := s.law(id)
	if err != nil {
		return 0, err
	}
	raw = max(e.info.Min, min(raw, e.info.Max))
	if e.law.mute && raw == e.info.Min {
		return MuteDB, nil
	}
	return e.law.zero + raw*e.law.step, nil
}

// FromDB implements Hardware
func (s *SimCard) FromDB(id ID, cdb int, dir int) (int, error) {
	e, err := s.law(id)
	if err != nil {
		return 0, err
	}
	off := cdb - e.law.zero
	raw := off / e.law.step
	if rem := off % e.law.step; rem != 0 {
		// integer division truncates toward zero; adjust to floor first
		if off < 0 {
			raw--
		}
		if dir > 0 {
			raw++
		}
	}
	return max(e.info.Min, min(raw, e.info.Max)), nil
}

// Close implements Hardware. A feed that holds a file is closed too.
func (s *SimCard) Close() error {
	s.closed = true
	if c, ok := s.feed.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
