// Package control adapts the ALSA control interface of an ICE1712 card into
// typed read/write operations on a fixed vocabulary of named elements.
package control

import "fmt"

// Kind identifies one of the named control elements the panel knows about
type Kind int

const (
	MultiPlaybackVolume Kind = iota
	MultiPlaybackSwitch
	HWCaptureVolume
	HWCaptureSwitch
	SPDIFCaptureVolume
	SPDIFCaptureSwitch
	DACVolume
	ADCVolume
	IPGAVolume
	DACSense
	ADCSense
	MultiTrackPeak
)

// ValueType is the declared value type of a control element
type ValueType int

const (
	TypeInteger ValueType = iota
	TypeBoolean
	TypeEnumerated
)

func (t ValueType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeBoolean:
		return "boolean"
	case TypeEnumerated:
		return "enumerated"
	}
	return fmt.Sprintf("ValueType(%d)", int(t))
}

// Interface is the ALSA control interface an element lives on
type Interface int

const (
	IfaceMixer Interface = iota
	IfacePCM
)

// descriptor is the static knowledge about a control kind, resolved once at
// discovery time instead of passing name strings around.
type descriptor struct {
	name  string
	iface Interface
	typ   ValueType
}

var descriptors = map[Kind]descriptor{
	MultiPlaybackVolume: {"Multi Playback Volume", IfaceMixer, TypeInteger},
	MultiPlaybackSwitch: {"Multi Playback Switch", IfaceMixer, TypeBoolean},
	HWCaptureVolume:     {"H/W Multi Capture Volume", IfaceMixer, TypeInteger},
	HWCaptureSwitch:     {"H/W Multi Capture Switch", IfaceMixer, TypeBoolean},
	SPDIFCaptureVolume:  {"IEC958 Multi Capture Volume", IfaceMixer, TypeInteger},
	SPDIFCaptureSwitch:  {"IEC958 Multi Capture Switch", IfaceMixer, TypeBoolean},
	DACVolume:           {"DAC Volume", IfaceMixer, TypeInteger},
	ADCVolume:           {"ADC Volume", IfaceMixer, TypeInteger},
	IPGAVolume:          {"IPGA Analog Capture Volume", IfaceMixer, TypeInteger},
	DACSense:            {"Output Sensitivity Switch", IfaceMixer, TypeEnumerated},
	ADCSense:            {"Input Sensitivity Switch", IfaceMixer, TypeEnumerated},
	MultiTrackPeak:      {"Multi Track Peak", IfacePCM, TypeInteger},
}

// Name returns the ALSA element name for the kind
func (k Kind) Name() string {
	if d, ok := descriptors[k]; ok {
		return d.name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Interface returns the ALSA interface the element is normally found on
func (k Kind) Interface() Interface {
	return descriptors[k].iface
}

// ExpectedType returns the value type the panel expects the element to declare
func (k Kind) ExpectedType() ValueType {
	return descriptors[k].typ
}

func (k Kind) String() string {
	return k.Name()
}

// ID addresses one indexed element of a kind
type ID struct {
	Kind  Kind
	Index int
}

func (id ID) String() string {
	return fmt.Sprintf("%s[%d]", id.Kind.Name(), id.Index)
}

// Info is the result of an info query: declared type, value count and range
type Info struct {
	Type  ValueType
	Count int
	Min   int
	Max   int
	Items []string // enumerated item names
}

// Contains reports whether v is a legal value for the element
func (i Info) Contains(v int) bool {
	switch i.Type {
	case TypeBoolean:
		return v == 0 || v == 1
	case TypeEnumerated:
		return v >= 0 && v < len(i.Items)
	}
	return v >= i.Min && v <= i.Max
}
