// Package source decodes an audio file into the peak levels a simulated
// card's meter register latches, so the panel can be demonstrated and
// tested without ICE1712 hardware.
package source

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrInvalidFile       = errors.New("invalid audio file")
)

// Stream is decoded PCM. ReadSamples fills dst with interleaved samples
// in [-1, 1] and returns how many values it wrote; io.EOF marks the end.
type Stream interface {
	SampleRate() int
	Channels() int
	ReadSamples(dst []float32) (int, error)
	Close() error
}

// Open decodes a WAV, AIFF, MP3 or Ogg Vorbis file chosen by extension
func Open(path string) (Stream, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav", ".wave", ".aif", ".aiff", ".mp3", ".ogg", ".oga":
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}

	var s Stream
	switch ext {
	case ".wav", ".wave":
		s, err = decodeWAV(f)
	case ".aif", ".aiff":
		s, err = decodeAIFF(f)
	case ".mp3":
		s, err = decodeMP3(f)
	default:
		s, err = decodeOgg(f)
	}
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// pcmReader is the shared surface of the go-audio WAV and AIFF decoders
type pcmReader interface {
	PCMBuffer(buf *audio.IntBuffer) (int, error)
}

type intStream struct {
	f        io.Closer
	dec      pcmReader
	rate     int
	channels int
	offset   int // midpoint of unsigned samples
	scale    float32
	buf      *audio.IntBuffer
}

func newIntStream(f io.Closer, dec pcmReader, format *audio.Format, bitDepth int, unsigned bool) (*intStream, error) {
	if format == nil || format.NumChannels <= 0 || format.SampleRate <= 0 {
		return nil, ErrInvalidFile
	}
	if bitDepth <= 0 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: %d-bit samples", ErrUnsupportedFormat, bitDepth)
	}
	s := &intStream{
		f:        f,
		dec:      dec,
		rate:     format.SampleRate,
		channels: format.NumChannels,
		scale:    float32(int64(1) << (bitDepth - 1)),
		buf:      &audio.IntBuffer{Format: format, SourceBitDepth: bitDepth},
	}
	if unsigned {
		s.offset = 1 << (bitDepth - 1)
	}
	return s, nil
}

func (s *intStream) SampleRate() int { return s.rate }

func (s *intStream) Channels() int { return s.channels }

func (s *intStream) Close() error { return s.f.Close() }

func (s *intStream) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if cap(s.buf.Data) < len(dst) {
		s.buf.Data = make([]int, len(dst))
	}
	s.buf.Data = s.buf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.buf)
	for i := range n {
		dst[i] = float32(s.buf.Data[i]-s.offset) / s.scale
	}
	if n == 0 && err == nil {
		err = io.EOF
	}
	return n, err
}

const (
	wavPCM        = 1
	wavExtensible = 0xFFFE
)

func decodeWAV(f *os.File) (Stream, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not a WAV file", ErrInvalidFile)
	}
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, err
	}
	if dec.WavAudioFormat != wavPCM && dec.WavAudioFormat != wavExtensible {
		return nil, fmt.Errorf("%w: WAV format %d", ErrUnsupportedFormat, dec.WavAudioFormat)
	}
	// 8-bit WAV samples are unsigned around 128
	return newIntStream(f, dec, dec.Format(), int(dec.BitDepth), dec.BitDepth == 8)
}

func decodeAIFF(f *os.File) (Stream, error) {
	dec := aiff.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: not an AIFF file", ErrInvalidFile)
	}
	dec.ReadInfo()
	return newIntStream(f, dec, dec.Format(), int(dec.BitDepth), false)
}

// mp3Stream converts go-mp3's 16-bit little-endian stereo output
type mp3Stream struct {
	f   io.Closer
	dec *gomp3.Decoder
	buf []byte
}

func decodeMP3(f *os.File) (Stream, error) {
	dec, err := gomp3.NewDecoder(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &mp3Stream{f: f, dec: dec}, nil
}

func (s *mp3Stream) SampleRate() int { return s.dec.SampleRate() }

func (s *mp3Stream) Channels() int { return 2 }

func (s *mp3Stream) Close() error { return s.f.Close() }

func (s *mp3Stream) ReadSamples(dst []float32) (int, error) {
	need := len(dst) * 2
	if cap(s.buf) < need {
		s.buf = make([]byte, need)
	}
	s.buf = s.buf[:need]

	n, err := io.ReadFull(s.dec, s.buf)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	samples := n / 2
	for i := range samples {
		v := int16(uint16(s.buf[2*i]) | uint16(s.buf[2*i+1])<<8)
		dst[i] = float32(v) / 32768
	}
	return samples, err
}

type oggStream struct {
	f   io.Closer
	dec *oggvorbis.Reader
}

func decodeOgg(f *os.File) (Stream, error) {
	dec, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFile, err)
	}
	return &oggStream{f: f, dec: dec}, nil
}

func (s *oggStream) SampleRate() int { return s.dec.SampleRate() }

func (s *oggStream) Channels() int { return s.dec.Channels() }

func (s *oggStream) Close() error { return s.f.Close() }

func (s *oggStream) ReadSamples(dst []float32) (int, error) {
	// whole frames only
	dst = dst[:len(dst)/s.dec.Channels()*s.dec.Channels()]
	return s.dec.Read(dst)
}
