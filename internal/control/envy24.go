package control

import "strconv"

// ICE1712 digital mixer and peak meter constants
const (
	// MaxMixerAttenuation is the raw mixer value for 0dB (the chip counts
	// attenuation steps up from silence)
	MaxMixerAttenuation = 96
	// LowMixerAttenuation is the bottom of the foreshortened mixer slider (-49.5dB)
	LowMixerAttenuation = 33
	// MinMixerAttenuation is the raw "off" value
	MinMixerAttenuation = 0

	// MixerStepSize is the slider distance between 6dB scale marks (1.5dB per step)
	MixerStepSize = 4

	PeakChannels     = 22
	IdxLMix          = 20
	IdxRMix          = 21
	MaxMeteringLevel = 255
)

// Channel maxima of the ICE1712 family
const (
	MaxPCMOutputChannels = 8
	MaxSPDIFChannels     = 2
	MaxInputChannels     = 8
	MaxOutputChannels    = 8

	// MaxStreams is the number of mixer streams (and mono meters)
	MaxStreams = MaxPCMOutputChannels + MaxSPDIFChannels + MaxInputChannels + MaxSPDIFChannels

	// AnalogProbeLimit bounds the DAC/ADC/IPGA discovery loops
	AnalogProbeLimit = 10
)

// Stream numbers (1-based) where each class of mixer input begins
const (
	FirstPCMStream           = 1
	FirstSPDIFPlaybackStream = MaxPCMOutputChannels + 1
	FirstCaptureStream       = MaxPCMOutputChannels + MaxSPDIFChannels + 1
	FirstSPDIFCaptureStream  = MaxPCMOutputChannels + MaxSPDIFChannels + MaxInputChannels + 1
)

// Class is the kind of signal a metering/mixing slot carries
type Class int

const (
	ClassDigitalMix Class = iota
	ClassPCM
	ClassSPDIFPlayback
	ClassCapture
	ClassSPDIFCapture
)

func (c Class) String() string {
	switch c {
	case ClassDigitalMix:
		return "Digital Mix"
	case ClassPCM:
		return "PCM"
	case ClassSPDIFPlayback:
		return "S/PDIF Out"
	case ClassCapture:
		return "H/W In"
	case ClassSPDIFCapture:
		return "S/PDIF In"
	}
	return "unknown"
}

// Channel identifies one metering/mixing slot. Index 0 is the stereo
// digital mix pair, 1..20 are the mono streams.
type Channel struct {
	Index  int
	Class  Class
	Stereo bool
}

// ChannelAt returns the channel description for a meter index
func ChannelAt(index int) Channel {
	switch {
	case index == 0:
		return Channel{Index: 0, Class: ClassDigitalMix, Stereo: true}
	case index < FirstSPDIFPlaybackStream:
		return Channel{Index: index, Class: ClassPCM}
	case index < FirstCaptureStream:
		return Channel{Index: index, Class: ClassSPDIFPlayback}
	case index < FirstSPDIFCaptureStream:
		return Channel{Index: index, Class: ClassCapture}
	}
	return Channel{Index: index, Class: ClassSPDIFCapture}
}

// Name returns a short label such as "PCM 3" or "H/W In 1"
func (c Channel) Name() string {
	switch c.Class {
	case ClassDigitalMix:
		return "Mix"
	case ClassPCM:
		return "PCM " + strconv.Itoa(c.Index-FirstPCMStream+1)
	case ClassSPDIFPlayback:
		return "S/PDIF " + lr(c.Index-FirstSPDIFPlaybackStream)
	case ClassCapture:
		return "In " + strconv.Itoa(c.Index-FirstCaptureStream+1)
	}
	return "S/PDIF In " + lr(c.Index-FirstSPDIFCaptureStream)
}

// Slot returns the peak register slot of a mono channel
func (c Channel) Slot() int {
	return c.Index - 1
}

// StreamVolume returns the mixer volume element for a 1-based stream
func StreamVolume(stream int) ID {
	switch {
	case stream < FirstCaptureStream:
		return ID{Kind: MultiPlaybackVolume, Index: (stream - 1) % 10}
	case stream < FirstSPDIFCaptureStream:
		return ID{Kind: HWCaptureVolume, Index: (stream - 1) % 10}
	}
	return ID{Kind: SPDIFCaptureVolume, Index: (stream - 1) % 18}
}

// StreamSwitch returns the mixer switch element for a 1-based stream
func StreamSwitch(stream int) ID {
	vol := StreamVolume(stream)
	switch vol.Kind {
	case MultiPlaybackVolume:
		vol.Kind = MultiPlaybackSwitch
	case HWCaptureVolume:
		vol.Kind = HWCaptureSwitch
	default:
		vol.Kind = SPDIFCaptureSwitch
	}
	return vol
}

// StreamDB returns the element whose dB table labels a stream's slider.
// The IEC958 capture volumes carry no dB table although they sit in the
// same mixer, so they borrow the first H/W capture element.
func StreamDB(stream int) ID {
	switch {
	case stream < FirstCaptureStream:
		return ID{Kind: MultiPlaybackVolume, Index: (stream - 1) % 10}
	case stream < FirstSPDIFCaptureStream:
		return ID{Kind: HWCaptureVolume, Index: (stream - 1) % 10}
	}
	return ID{Kind: HWCaptureVolume, Index: 0}
}

func lr(i int) string {
	if i%2 == 0 {
		return "L"
	}
	return "R"
}
