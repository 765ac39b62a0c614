package midiecho

import (
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
)

type capture struct {
	msgs []midi.Message
	err  error
}

func (c *capture) send(msg midi.Message) error {
	c.msgs = append(c.msgs, msg)
	return c.err
}

func TestController(t *testing.T) {
	tests := []struct {
		name    string
		channel int
		value   int
		want    []byte
	}{
		{"full_scale", 4, 127, []byte{0xB2, 4, 127}},
		{"off", 0, 0, []byte{0xB2, 0, 0}},
		{"clamped_high", 39, 300, []byte{0xB2, 39, 127}},
		{"clamped_low", 1, -5, []byte{0xB2, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &capture{}
			New(c.send, 2, nil).Controller(tt.channel, tt.value)
			if len(c.msgs) != 1 {
				t.Fatalf("sent %d messages, want 1", len(c.msgs))
			}
			if !bytes.Equal(c.msgs[0].Bytes(), tt.want) {
				t.Errorf("message = % X, want % X", c.msgs[0].Bytes(), tt.want)
			}
		})
	}
}

func TestControllerOutOfRangeDropped(t *testing.T) {
	c := &capture{}
	s := New(c.send, 0, nil)
	s.Controller(128, 10)
	s.Button(-1, true)
	if len(c.msgs) != 0 {
		t.Errorf("sent %d messages, want 0", len(c.msgs))
	}
}

func TestButton(t *testing.T) {
	c := &capture{}
	s := New(c.send, 0, nil)
	s.Button(5, true)
	s.Button(5, false)

	var ch, key, vel uint8
	if !c.msgs[0].GetNoteStart(&ch, &key, &vel) || key != 5 || vel != 127 {
		t.Errorf("first message = %s, want note on 5", c.msgs[0])
	}
	if !c.msgs[1].GetNoteEnd(&ch, &key) || key != 5 {
		t.Errorf("second message = %s, want note off 5", c.msgs[1])
	}
}

func TestSendFailureLogged(t *testing.T) {
	c := &capture{err: errors.New("port gone")}
	var lines int
	s := New(c.send, 20, func(string, ...any) { lines++ })
	s.Controller(1, 64)
	if lines != 1 {
		t.Errorf("logged %d lines, want 1", lines)
	}
	if s.channel != 15 {
		t.Errorf("channel = %d, want clamped to 15", s.channel)
	}
	if s.Port() != "" || s.Close() != nil {
		t.Error("plain sink should have no port")
	}
}
