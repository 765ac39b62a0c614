//go:build cgo

package midiecho

import _ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
