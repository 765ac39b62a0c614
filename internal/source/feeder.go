package source

import (
	"errors"
	"io"
	"math"
	"time"

	"github.com/linuxmatters/envymix/internal/control"
)

// Feeder plays a file into the simulated peak register: every call to
// Peaks consumes one poll interval of audio and reports its absolute
// peak per slot. Slot s carries file channel s mod channels; the digital
// mix pair carries channels 0 and 1. The file loops at its end.
type Feeder struct {
	path     string
	open     func(path string) (Stream, error)
	stream   Stream
	interval time.Duration
	buf      []float32
	peaks    []float64
	logf     func(format string, args ...any)
	failed   bool
}

// NewFeeder opens path and prepares to feed one interval per poll
func NewFeeder(path string, interval time.Duration, logf func(format string, args ...any)) (*Feeder, error) {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	f := &Feeder{path: path, open: Open, interval: interval, logf: logf}
	if err := f.rewind(); err != nil {
		return nil, err
	}
	channels := f.stream.Channels()
	frames := max(1, int(time.Duration(f.stream.SampleRate())*interval/time.Second))
	f.buf = make([]float32, frames*channels)
	f.peaks = make([]float64, channels)
	return f, nil
}

// Channels returns the file's channel count
func (f *Feeder) Channels() int { return len(f.peaks) }

// Frames returns how many frames each poll consumes
func (f *Feeder) Frames() int { return len(f.buf) / len(f.peaks) }

// Path returns the file being played
func (f *Feeder) Path() string { return f.path }

func (f *Feeder) rewind() error {
	if f.stream != nil {
		f.stream.Close()
		f.stream = nil
	}
	s, err := f.open(f.path)
	if err != nil {
		return err
	}
	f.stream = s
	return nil
}

// Peaks implements control.PeakFeed
func (f *Feeder) Peaks(dst []int) {
	if f.stream == nil {
		return
	}
	clear(f.peaks)
	channels := len(f.peaks)

	rewound := false
	for pos := 0; pos < len(f.buf); {
		n, err := f.stream.ReadSamples(f.buf[pos:])
		for i := pos; i < pos+n; i++ {
			c := i % channels
			f.peaks[c] = max(f.peaks[c], math.Abs(float64(f.buf[i])))
		}
		pos += n
		if n > 0 {
			rewound = false
			if err == nil {
				continue
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			if !f.failed {
				f.logf("Unable to decode %s: %v\n", f.path, err)
				f.failed = true
			}
			break
		}
		// a file with no samples never fills a tick
		if rewound {
			break
		}
		if err := f.rewind(); err != nil {
			f.logf("Unable to rewind %s: %v\n", f.path, err)
			break
		}
		rewound = true
	}

	for s := range dst {
		var c int
		switch s {
		case control.IdxLMix:
			c = 0
		case control.IdxRMix:
			c = 1 % channels
		default:
			c = s % channels
		}
		dst[s] = Level(f.peaks[c])
	}
}

// Level scales an absolute sample peak to the 8-bit register unit
func Level(peak float64) int {
	return max(0, min(int(peak*control.MaxMeteringLevel+0.5), control.MaxMeteringLevel))
}

// Close releases the file
func (f *Feeder) Close() error {
	if f.stream == nil {
		return nil
	}
	err := f.stream.Close()
	f.stream = nil
	return err
}
