//go:build !linux || !cgo

package control

import (
	"errors"
	"strconv"
	"strings"
)

// ErrNoALSA is returned by OpenALSA on builds without libasound
var ErrNoALSA = errors.New("ALSA support not compiled in (needs linux and cgo)")

// ALSACard is unavailable on this platform
type ALSACard struct{}

// DeviceName turns a card number or name into an ALSA control device name
func DeviceName(card string) string {
	if card == "" {
		return "hw:0"
	}
	if _, err := strconv.Atoi(card); err == nil || !strings.Contains(card, ":") {
		return "hw:" + card
	}
	return card
}

// OpenALSA always fails on this platform; use the simulated card instead
func OpenALSA(card string) (*ALSACard, error) {
	return nil, ErrNoALSA
}

func (a *ALSACard) Device() string { return "" }

func (a *ALSACard) Info(id ID) (Info, error) { return Info{}, ErrNoALSA }

func (a *ALSACard) Read(id ID) ([]int, error) { return nil, ErrNoALSA }

func (a *ALSACard) Write(id ID, values []int) error { return ErrNoALSA }

func (a *ALSACard) DBRange(id ID) (int, int, error) { return 0, 0, ErrNoALSA }

func (a *ALSACard) ToDB(id ID, raw int) (int, error) { return 0, ErrNoALSA }

func (a *ALSACard) FromDB(id ID, cdb, dir int) (int, error) { return 0, ErrNoALSA }

func (a *ALSACard) Close() error { return nil }
