// Package config loads the panel settings from an optional TOML file and
// merges command-line overrides on top.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/linuxmatters/envymix/internal/control"
)

var (
	ErrInvalid    = errors.New("invalid configuration")
	ErrUnknownKey = errors.New("unknown configuration key")
)

// Config is every setting the panel reads at start-up
type Config struct {
	Card              string `toml:"card"`
	IntervalMS        int    `toml:"interval_ms"`
	InputChannels     int    `toml:"input_channels"`
	OutputChannels    int    `toml:"output_channels"`
	PCMOutputs        int    `toml:"pcm_outputs"`
	SPDIFChannels     int    `toml:"spdif_channels"`
	ViewSPDIFPlayback bool   `toml:"view_spdif_playback"`
	NoScaleMarks      bool   `toml:"no_scale_marks"`
	LightsColor       string `toml:"lights_color"`
	BgColor           string `toml:"bg_color"`
	MIDIPort          string `toml:"midi_port"`
	MIDIChannel       int    `toml:"midi_channel"`
	Links             []int  `toml:"links,omitempty"`
	Simulate          bool   `toml:"simulate"`
	Source            string `toml:"source,omitempty"`
}

// Default returns the settings of a fully populated card
func Default() Config {
	return Config{
		IntervalMS:     100,
		InputChannels:  control.MaxInputChannels,
		OutputChannels: control.MaxOutputChannels,
		PCMOutputs:     control.MaxPCMOutputChannels,
		SPDIFChannels:  control.MaxSPDIFChannels,
		LightsColor:    "#1e90ff",
		BgColor:        "#304050",
	}
}

// Load reads path over the defaults. Keys the panel does not know are
// rejected so typos do not silently fall back to defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// Save writes the settings to path as TOML
func Save(path string, cfg Config) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return fmt.Errorf("failed to write config: %w", err)
	}
	return f.Close()
}

var hexColour = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks every setting is within what the card and panel support
func (c Config) Validate() error {
	ranges := []struct {
		name   string
		v      int
		lo, hi int
	}{
		{"interval_ms", c.IntervalMS, 10, 10000},
		{"input_channels", c.InputChannels, 0, control.MaxInputChannels},
		{"output_channels", c.OutputChannels, 0, control.MaxOutputChannels},
		{"pcm_outputs", c.PCMOutputs, 0, control.MaxPCMOutputChannels},
		{"spdif_channels", c.SPDIFChannels, 0, control.MaxSPDIFChannels},
		{"midi_channel", c.MIDIChannel, 0, 15},
	}
	for _, r := range ranges {
		if r.v < r.lo || r.v > r.hi {
			return fmt.Errorf("%w: %s must be %d..%d, got %d", ErrInvalid, r.name, r.lo, r.hi, r.v)
		}
	}
	for _, colour := range [][2]string{{"lights_color", c.LightsColor}, {"bg_color", c.BgColor}} {
		if !hexColour.MatchString(colour[1]) {
			return fmt.Errorf("%w: %s must be #rrggbb, got %q", ErrInvalid, colour[0], colour[1])
		}
	}
	for _, s := range c.Links {
		if s < 1 || s > control.MaxStreams {
			return fmt.Errorf("%w: links: no stream %d", ErrInvalid, s)
		}
	}
	return nil
}

// Interval returns the meter poll period
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Overrides carries command-line values; nil fields were not given
type Overrides struct {
	Card              *string
	IntervalMS        *int
	InputChannels     *int
	OutputChannels    *int
	PCMOutputs        *int
	SPDIFChannels     *int
	ViewSPDIFPlayback *bool
	NoScaleMarks      *bool
	LightsColor       *string
	BgColor           *string
	MIDIPort          *string
	MIDIChannel       *int
	Simulate          *bool
	Source            *string
}

// Apply merges the given overrides into c
func (c *Config) Apply(o Overrides) {
	set(&c.Card, o.Card)
	set(&c.IntervalMS, o.IntervalMS)
	set(&c.InputChannels, o.InputChannels)
	set(&c.OutputChannels, o.OutputChannels)
	set(&c.PCMOutputs, o.PCMOutputs)
	set(&c.SPDIFChannels, o.SPDIFChannels)
	set(&c.ViewSPDIFPlayback, o.ViewSPDIFPlayback)
	set(&c.NoScaleMarks, o.NoScaleMarks)
	set(&c.LightsColor, o.LightsColor)
	set(&c.BgColor, o.BgColor)
	set(&c.MIDIPort, o.MIDIPort)
	set(&c.MIDIChannel, o.MIDIChannel)
	set(&c.Simulate, o.Simulate)
	set(&c.Source, o.Source)
	if c.Source != "" {
		c.Simulate = true
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
