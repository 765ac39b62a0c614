package mixer

import (
	"errors"
	"testing"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/meter"
)

// countingCard counts writes reaching the simulated hardware and can
// fail them on demand
type countingCard struct {
	*control.SimCard
	writes    int
	failWrite bool
}

func (c *countingCard) Write(id control.ID, values []int) error {
	if c.failWrite {
		return errors.New("EIO")
	}
	c.writes++
	return c.SimCard.Write(id, values)
}

func newTestRegistry(cfg control.SimConfig) (*control.Registry, *countingCard) {
	card := &countingCard{SimCard: control.NewSimCard(cfg)}
	return control.NewRegistry(card), card
}

type echoEvent struct {
	channel int
	value   int
	button  bool
}

type recordingEcho struct {
	events []echoEvent
}

func (r *recordingEcho) Controller(channel, value int) {
	r.events = append(r.events, echoEvent{channel: channel, value: value})
}

func (r *recordingEcho) Button(channel int, on bool) {
	v := 0
	if on {
		v = 1
	}
	r.events = append(r.events, echoEvent{channel: channel, value: v, button: true})
}

func newTestStrip(t *testing.T, stream int, reg Registry, echo Echo) (*Strip, StripWidgets) {
	t.Helper()
	w := StripWidgets{
		Sliders: [2]Adjuster{NewSlider(0, control.LowMixerAttenuation), NewSlider(0, control.LowMixerAttenuation)},
		Mutes:   [2]Toggle{&Switch{}, &Switch{}},
		Labels:  [2]Label{NewText(""), NewText("")},
		Link:    &Switch{active: true},
	}
	return NewStrip(stream, reg, w, echo, nil), w
}

func TestDisplayConversion(t *testing.T) {
	tests := []struct {
		name    string
		raw     int
		display int
		back    int
	}{
		{"unity", 96, 0, 96},
		{"minus_1.5dB", 95, 1, 95},
		{"lowest_audible", 64, 32, 64},
		{"low_threshold", 63, 33, 0},
		{"silence", 0, 96, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToDisplay(tt.raw); got != tt.display {
				t.Errorf("ToDisplay(%d) = %d, want %d", tt.raw, got, tt.display)
			}
			if got := ToRaw(tt.display); got != tt.back {
				t.Errorf("ToRaw(%d) = %d, want %d", tt.display, got, tt.back)
			}
		})
	}
}

func TestAdjustThenSyncRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	strip, w := newTestStrip(t, 1, reg, nil)
	strip.SyncVolume()

	for display := 0; display <= control.LowMixerAttenuation; display++ {
		strip.OnUserAdjust(Left, display)
		strip.SyncVolume()
		for side := Left; side <= Right; side++ {
			if got := w.Sliders[side].Value(); got != display {
				t.Fatalf("display %d: slider %d reads %d after sync", display, side, got)
			}
		}
	}
}

func TestSyncVolumeMovesSliders(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	strip, w := newTestStrip(t, 11, reg, nil)

	if err := reg.Write(control.ID{Kind: control.HWCaptureVolume}, []int{80, 80}); err != nil {
		t.Fatal(err)
	}
	strip.SyncVolume()
	if got := w.Sliders[Left].Value(); got != 16 {
		t.Errorf("slider = %d, want 16", got)
	}
	if got := w.Labels[Left].(*Text).String(); got != "-24.0" {
		t.Errorf("label = %q, want -24.0", got)
	}

	// silence sits at the bottom of the foreshortened slider
	reg.Write(control.ID{Kind: control.HWCaptureVolume}, []int{0, 0})
	strip.SyncVolume()
	if got := w.Sliders[Left].Value(); got != control.LowMixerAttenuation {
		t.Errorf("slider = %d, want %d", got, control.LowMixerAttenuation)
	}
	if got := w.Labels[Left].(*Text).String(); got != "(Off)" {
		t.Errorf("label = %q, want (Off)", got)
	}
}

func TestLinkForcedOffOnMismatch(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	strip, w := newTestStrip(t, 2, reg, nil)
	id := control.StreamVolume(2)

	reg.Write(id, []int{90, 70})
	strip.SyncVolume()

	if w.Link.Active() {
		t.Error("link still on after L != R")
	}
	got, _ := reg.Read(id)
	if got[0] != 90 || got[1] != 70 {
		t.Errorf("hardware = %v, want [90 70] untouched", got)
	}
	if w.Sliders[Left].Value() != 6 || w.Sliders[Right].Value() != 26 {
		t.Errorf("sliders = %d/%d, want 6/26", w.Sliders[Left].Value(), w.Sliders[Right].Value())
	}
}

func TestLinkForcedOffOnSwitchMismatch(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	strip, w := newTestStrip(t, 2, reg, nil)

	reg.Write(control.StreamVolume(2), []int{80, 80})
	reg.Write(control.StreamSwitch(2), []int{1, 0})
	strip.SyncVolume()
	if !w.Link.Active() {
		t.Fatal("link dropped with equal volumes")
	}
	strip.SyncSwitch()

	if w.Link.Active() {
		t.Error("link still on after L != R switches")
	}
	if w.Mutes[Left].Active() || !w.Mutes[Right].Active() {
		t.Errorf("mutes = %v/%v, want false/true", w.Mutes[Left].Active(), w.Mutes[Right].Active())
	}
	got, _ := reg.Read(control.StreamSwitch(2))
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("hardware = %v, want [1 0] untouched", got)
	}
}

func TestSyncEchoesEveryRead(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	echo := &recordingEcho{}
	strip, _ := newTestStrip(t, 1, reg, echo)

	for range 2 {
		strip.SyncVolume()
		strip.SyncSwitch()
	}

	var controllers, buttons int
	for _, e := range echo.events {
		if e.button {
			buttons++
		} else {
			controllers++
		}
	}
	if controllers != 4 || buttons != 4 {
		t.Errorf("echoed %d controllers and %d buttons, want 4 and 4", controllers, buttons)
	}
	if last := echo.events[len(echo.events)-1]; last.channel != 1 || last.value != 0 {
		t.Errorf("last echo = %+v, want unmuted right side of stream 1", last)
	}
}

func TestLinkedAdjustMirrorsSibling(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	echo := &recordingEcho{}
	strip, w := newTestStrip(t, 3, reg, echo)
	strip.SyncVolume()
	echo.events = nil

	strip.OnUserAdjust(Right, 8)
	got, _ := reg.Read(control.StreamVolume(3))
	if got[0] != 88 || got[1] != 88 {
		t.Errorf("hardware = %v, want [88 88]", got)
	}
	if w.Sliders[Left].Value() != 8 {
		t.Errorf("left slider = %d, want 8", w.Sliders[Left].Value())
	}
	if len(echo.events) != 2 || echo.events[0].channel != 4 || echo.events[1].channel != 5 {
		t.Errorf("echo events = %+v, want channels 4 and 5", echo.events)
	}

	w.Link.SetActive(false)
	strip.OnUserAdjust(Left, 12)
	got, _ = reg.Read(control.StreamVolume(3))
	if got[0] != 84 || got[1] != 88 {
		t.Errorf("unlinked hardware = %v, want [84 88]", got)
	}
}

func TestAdjustSkipsRedundantWrites(t *testing.T) {
	reg, card := newTestRegistry(control.SimConfig{})
	strip, _ := newTestStrip(t, 1, reg, nil)
	strip.SyncVolume()

	strip.OnUserAdjust(Left, 0)
	if card.writes != 0 {
		t.Errorf("writes = %d, want 0 for an unchanged value", card.writes)
	}
	strip.OnUserAdjust(Left, 5)
	strip.OnUserAdjust(Left, 5)
	if card.writes != 1 {
		t.Errorf("writes = %d, want 1", card.writes)
	}
}

// echoingSlider reports every SetValue as a user adjustment, as a naive
// toolkit binding would
type echoingSlider struct {
	*Slider
	strip *Strip
	side  int
}

func (e *echoingSlider) SetValue(v int) {
	e.Slider.SetValue(v)
	if e.strip != nil {
		e.strip.OnUserAdjust(e.side, v)
	}
}

func TestSyncDoesNotWriteBack(t *testing.T) {
	reg, card := newTestRegistry(control.SimConfig{})
	left := &echoingSlider{Slider: NewSlider(0, control.LowMixerAttenuation), side: Left}
	right := &echoingSlider{Slider: NewSlider(0, control.LowMixerAttenuation), side: Right}
	w := StripWidgets{Sliders: [2]Adjuster{left, right}, Link: &Switch{}}
	strip := NewStrip(1, reg, w, nil, nil)
	left.strip, right.strip = strip, strip

	reg.Write(control.StreamVolume(1), []int{70, 72})
	card.writes = 0
	strip.SyncVolume()
	if card.writes != 0 {
		t.Errorf("sync wrote to hardware %d times", card.writes)
	}
	if left.Value() != 26 || right.Value() != 24 {
		t.Errorf("sliders = %d/%d, want 26/24", left.Value(), right.Value())
	}
}

func TestMute(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	echo := &recordingEcho{}
	strip, w := newTestStrip(t, 12, reg, echo)

	strip.OnUserMute(Left, true)
	got, _ := reg.Read(control.StreamSwitch(12))
	if got[0] != 0 || got[1] != 0 {
		t.Errorf("linked mute = %v, want [0 0]", got)
	}
	if !w.Mutes[Right].Active() {
		t.Error("right mute toggle not mirrored")
	}

	reg.Write(control.StreamSwitch(12), []int{1, 0})
	strip.SyncSwitch()
	if w.Mutes[Left].Active() || !w.Mutes[Right].Active() {
		t.Errorf("mutes = %v/%v, want false/true", w.Mutes[Left].Active(), w.Mutes[Right].Active())
	}
}

func TestReadFailureLeavesWidgets(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	var logged []string
	w := StripWidgets{Sliders: [2]Adjuster{NewSlider(0, 33), NewSlider(0, 33)}}
	strip := NewStrip(1, reg, w, nil, func(format string, args ...any) {
		logged = append(logged, format)
	})
	w.Sliders[Left].SetValue(7)
	reg.Close()

	strip.SyncVolume()
	if w.Sliders[Left].Value() != 7 {
		t.Errorf("slider changed to %d after failed read", w.Sliders[Left].Value())
	}
	if len(logged) != 1 {
		t.Errorf("logged %d lines, want 1", len(logged))
	}
}

func TestMixerLabel(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	tests := []struct {
		stream int
		raw    int
		want   string
	}{
		{1, 96, "+0.0"},
		{1, 95, "-1.5"},
		{1, 0, "(Off)"},
		{11, 64, "-48.0"},
		{19, 92, "-6.0"},
	}
	for _, tt := range tests {
		if got := MixerLabel(reg, tt.stream, tt.raw); got != tt.want {
			t.Errorf("MixerLabel(%d, %d) = %q, want %q", tt.stream, tt.raw, got, tt.want)
		}
	}
}

func TestAnalogGain(t *testing.T) {
	reg, card := newTestRegistry(control.SimConfig{})
	id := control.ID{Kind: control.DACVolume, Index: 1}
	slider := NewSlider(-127, 0)
	label := NewText("")
	dac := NewAnalog(id, reg, slider, label, nil)

	dac.Sync()
	if slider.Value() != -127 || label.String() != "+0.0" {
		t.Errorf("after sync slider=%d label=%q, want -127 +0.0", slider.Value(), label.String())
	}

	dac.OnUserAdjust(-115)
	got, _ := reg.Read(id)
	if got[0] != 115 {
		t.Errorf("hardware = %d, want 115", got[0])
	}
	if label.String() != "-6.0" {
		t.Errorf("label = %q, want -6.0", label.String())
	}

	dac.OnUserAdjust(0)
	if label.String() != "(Off)" {
		t.Errorf("label at 0 = %q, want (Off)", label.String())
	}

	card.failWrite = true
	dac.OnUserAdjust(-50)
	if label.String() != "(Err)" {
		t.Errorf("label on failed write = %q, want (Err)", label.String())
	}
}

func TestIPGACoupling(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{IPGA: true})
	adcID := control.ID{Kind: control.ADCVolume}
	ipgaID := control.ID{Kind: control.IPGAVolume}
	adc := NewAnalog(adcID, reg, NewSlider(-127, 0), NewText(""), nil)
	ipga := NewAnalog(ipgaID, reg, NewSlider(-36, 0), NewText(""), nil)
	Couple(adc, ipga)
	adc.Sync()
	ipga.Sync()

	ipga.OnUserAdjust(-10)
	got, _ := reg.Read(adcID)
	if got[0] != 127 {
		t.Errorf("ADC after IPGA gain = %d, want 127", got[0])
	}

	// ADC moved outside the panel parks the IPGA stage
	reg.Write(adcID, []int{100})
	adc.Sync()
	got, _ = reg.Read(ipgaID)
	if got[0] != 0 {
		t.Errorf("IPGA after ADC change = %d, want 0", got[0])
	}

	// a steady ADC leaves the IPGA alone
	ipga.OnUserAdjust(-4)
	reg.Write(adcID, []int{127})
	adc.Sync()
	adc.Sync()
	got, _ = reg.Read(ipgaID)
	if got[0] != 4 {
		t.Errorf("IPGA = %d after steady ADC syncs, want 4", got[0])
	}
}

func TestSense(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{})
	id := control.ID{Kind: control.ADCSense, Index: 2}
	toggles := []Toggle{&Switch{}, &Switch{}}
	sense := NewSense(id, reg, control.SenseItems, toggles, nil)

	sense.Sync()
	if sense.Selected() != 0 {
		t.Errorf("selected = %d, want 0", sense.Selected())
	}
	sense.OnUserSelect(1)
	got, _ := reg.Read(id)
	if got[0] != 1 || sense.Selected() != 1 || toggles[0].Active() {
		t.Errorf("after select hardware=%v selected=%d", got, sense.Selected())
	}
}

type fakeDB struct {
	lo, hi int
	err    error
	step   int
}

func (f fakeDB) DBRange(id control.ID) (int, int, error) {
	return f.lo, f.hi, f.err
}

func (f fakeDB) FromDB(id control.ID, cdb, dir int) (int, error) {
	return (cdb - f.lo) / f.step, nil
}

func TestBuildScaleMarks(t *testing.T) {
	t.Run("adc", func(t *testing.T) {
		reg, _ := newTestRegistry(control.SimConfig{})
		marks := BuildScaleMarks(reg, control.ID{Kind: control.ADCVolume})
		if len(marks) != 11 {
			t.Fatalf("got %d marks, want 11: %+v", len(marks), marks)
		}
		first, last := marks[0], marks[len(marks)-1]
		if first.Label != "-42" || first.Value != -7 || first.Colour != MarkNegative {
			t.Errorf("first mark = %+v", first)
		}
		if last.Label != "+18" || last.Value != -127 || last.Colour != MarkPositive {
			t.Errorf("last mark = %+v", last)
		}
		if marks[7].Label != "+0" || marks[7].Colour != MarkUnity {
			t.Errorf("unity mark = %+v", marks[7])
		}
	})

	t.Run("range_unavailable", func(t *testing.T) {
		reg, _ := newTestRegistry(control.SimConfig{})
		if marks := BuildScaleMarks(reg, control.ID{Kind: control.SPDIFCaptureVolume}); len(marks) != 0 {
			t.Errorf("got %d marks, want none", len(marks))
		}
	})

	t.Run("mute_sentinel_clamped", func(t *testing.T) {
		marks := BuildScaleMarks(fakeDB{lo: control.MuteDB, hi: 0, step: 1}, control.ID{})
		if len(marks) != 21 {
			t.Fatalf("got %d marks, want 21", len(marks))
		}
		if marks[0].Label != "~" {
			t.Errorf("floor mark = %q, want ~", marks[0].Label)
		}
	})

	t.Run("duplicate_raw_skipped", func(t *testing.T) {
		marks := BuildScaleMarks(fakeDB{lo: -2400, hi: 0, step: 1200}, control.ID{})
		if len(marks) != 3 {
			t.Errorf("got %d marks, want 3: %+v", len(marks), marks)
		}
	})

	t.Run("bounds_rounded_inward", func(t *testing.T) {
		marks := BuildScaleMarks(fakeDB{lo: -6350, hi: -50, step: 50}, control.ID{})
		if marks[0].Label != "-60" || marks[len(marks)-1].Label != "-6" {
			t.Errorf("marks span %s..%s, want -60..-6", marks[0].Label, marks[len(marks)-1].Label)
		}
	})
}

func TestMixerScaleMarks(t *testing.T) {
	marks := MixerScaleMarks()
	if len(marks) != 9 {
		t.Fatalf("got %d marks, want 9", len(marks))
	}
	if marks[0].Label != "+0" || marks[0].Value != 0 {
		t.Errorf("first mark = %+v", marks[0])
	}
	if marks[8].Label != "-48" || marks[8].Value != 32 {
		t.Errorf("last mark = %+v", marks[8])
	}
}

func TestSnap(t *testing.T) {
	marks := MixerScaleMarks()
	tests := []struct {
		name  string
		marks []Mark
		cur   int
		page  bool
		up    bool
		want  int
	}{
		{"page_up_to_mark", marks, 10, true, true, 8},
		{"page_up_from_mark", marks, 8, true, true, 4},
		{"page_down_to_mark", marks, 10, true, false, 12},
		{"page_down_past_last_mark", marks, 32, true, false, 33},
		{"page_up_at_top", marks, 0, true, true, 0},
		{"page_without_marks", nil, 10, true, false, 12},
		{"page_up_without_marks_on_stop", nil, 8, true, true, 4},
		{"page_up_without_marks_between", nil, 10, true, true, 8},
		{"step_down", marks, 10, false, false, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snap(tt.marks, tt.cur, 0, control.LowMixerAttenuation, 4, tt.page, tt.up)
			if got != tt.want {
				t.Errorf("Snap(cur=%d) = %d, want %d", tt.cur, got, tt.want)
			}
		})
	}
}

func TestBoardDiscovery(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{PCMOutputs: 4, Inputs: 4, DACs: 4, ADCs: 4, IPGA: true})
	opts := DefaultOptions()
	opts.Inputs = 2
	board := NewBoard(reg, opts, nil, nil)

	want := []int{0, 1, 2, 3, 4, 11, 12, 19, 20}
	got := board.Channels()
	if len(got) != len(want) {
		t.Fatalf("channels = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("channels = %v, want %v", got, want)
		}
	}
	if len(board.DACs) != 4 || len(board.ADCs) != 2 || len(board.IPGAs) != 2 {
		t.Errorf("analog = %d/%d/%d, want 4/2/2", len(board.DACs), len(board.ADCs), len(board.IPGAs))
	}
	if len(board.DACSenses) != 4 || len(board.DACSenses[0].Toggles) != 2 {
		t.Errorf("dac senses = %d", len(board.DACSenses))
	}

	opts.ViewSPDIFPlayback = true
	board = NewBoard(reg, opts, nil, nil)
	if board.Strip(9) == nil || board.Strip(10) == nil {
		t.Error("S/PDIF playback strips missing")
	}
}

func TestBoardRestoreLinksAndSync(t *testing.T) {
	reg, _ := newTestRegistry(control.SimConfig{PCMOutputs: 2, Inputs: 2})
	board := NewBoard(reg, DefaultOptions(), nil, nil)

	reg.Write(control.StreamVolume(2), []int{96, 60})
	board.RestoreLinks([]int{1, 2})
	board.SyncAll()

	links := board.Links()
	if len(links) != 1 || links[0] != 1 {
		t.Errorf("links = %v, want [1]", links)
	}
	if got := board.Strip(2).Sliders[Right].Value(); got != control.LowMixerAttenuation {
		t.Errorf("stream 2 right slider = %d, want %d", got, control.LowMixerAttenuation)
	}
	if got := board.DACs[0].Readout.String(); got != "+0.0" {
		t.Errorf("DAC label = %q, want +0.0", got)
	}
}

type feedFunc func(dst []int)

func (f feedFunc) Peaks(dst []int) { f(dst) }

func TestBoardMeterLabels(t *testing.T) {
	feed := feedFunc(func(dst []int) {
		dst[0] = 255
		dst[control.FirstCaptureStream-1] = 128
		dst[control.IdxRMix] = 230
	})
	reg, _ := newTestRegistry(control.SimConfig{PCMOutputs: 2, Inputs: 2, Feed: feed})
	board := NewBoard(reg, DefaultOptions(), nil, nil)
	engine := meter.NewEngine(reg, meter.CompactLayout, nil)
	board.AttachMeters(engine)

	engine.Tick()

	if got := board.Strip(1).Peak; got.String() != "0.0dB" || !got.Alert() {
		t.Errorf("PCM 1 peak = %q alert=%v", got.String(), got.Alert())
	}
	if got := board.DACs[0].Peak.String(); got != "0.0dB" {
		t.Errorf("DAC 1 peak = %q, want 0.0dB", got)
	}
	if got := board.ADCs[0].Peak.String(); got != meter.PeakLevelToDB(128) {
		t.Errorf("ADC 1 peak = %q", got)
	}
	if got := board.MixPeak[Right].String(); got != "-0.90" {
		t.Errorf("mix right peak = %q, want -0.90", got)
	}
}
