package mixer

import "github.com/linuxmatters/envymix/internal/control"

// Echo mirrors volume and switch changes to an external control surface.
// Channels are numbered (stream-1)*2 + side; values are 0..127.
type Echo interface {
	Controller(channel, value int)
	Button(channel int, on bool)
}

// Nop discards echo events
type Nop struct{}

func (Nop) Controller(channel, value int) {}

func (Nop) Button(channel int, on bool) {}

// EchoChannel numbers one side of a stream for the control surface
func EchoChannel(stream, side int) int {
	return (stream-1)*2 + side
}

// echoValue scales a mixer slider position to a controller value:
// 127 at 0dB down to 0 at the "Off" position.
func echoValue(display int) int {
	display = max(control.MinMixerAttenuation, min(display, control.LowMixerAttenuation))
	return (control.LowMixerAttenuation - display) * 127 / control.LowMixerAttenuation
}
