// Package midiecho mirrors mixer changes to a MIDI output port so a
// hardware control surface can follow the panel.
package midiecho

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// Sender echoes volume changes as control change messages and mute
// changes as notes, on one MIDI channel. Controller and note numbers are
// the mixer's echo channel numbers.
type Sender struct {
	send    func(msg midi.Message) error
	port    drivers.Out
	channel uint8
	logf    func(format string, args ...any)
}

// Open connects to the first output port whose name contains port
func Open(port string, channel int, logf func(format string, args ...any)) (*Sender, error) {
	out, err := midi.FindOutPort(port)
	if err != nil {
		return nil, fmt.Errorf("MIDI port %q: %w", port, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("MIDI port %q: %w", port, err)
	}
	s := New(send, channel, logf)
	s.port = out
	return s, nil
}

// New builds a sender around a message sink
func New(send func(msg midi.Message) error, channel int, logf func(format string, args ...any)) *Sender {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	return &Sender{send: send, channel: uint8(clamp(channel, 0, 15)), logf: logf}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// Controller sends a control change for a volume
func (s *Sender) Controller(channel, value int) {
	if channel < 0 || channel > 127 {
		return
	}
	s.emit(midi.ControlChange(s.channel, uint8(channel), uint8(clamp(value, 0, 127))))
}

// Button sends note on for an active switch and note off otherwise
func (s *Sender) Button(channel int, on bool) {
	if channel < 0 || channel > 127 {
		return
	}
	if on {
		s.emit(midi.NoteOn(s.channel, uint8(channel), 127))
		return
	}
	s.emit(midi.NoteOff(s.channel, uint8(channel)))
}

func (s *Sender) emit(msg midi.Message) {
	if err := s.send(msg); err != nil {
		s.logf("Unable to send MIDI %s: %v\n", msg, err)
	}
}

// Port returns the connected port name, or "" for a plain sink
func (s *Sender) Port() string {
	if s.port == nil {
		return ""
	}
	return s.port.String()
}

// Close releases the port and the MIDI driver
func (s *Sender) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	midi.CloseDriver()
	return err
}
