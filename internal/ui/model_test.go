package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/meter"
	"github.com/linuxmatters/envymix/internal/mixer"
)

type levelFeed []int

func (f levelFeed) Peaks(dst []int) { copy(dst, f) }

func newTestModel(t *testing.T, feed control.PeakFeed) (Model, *control.Registry) {
	t.Helper()
	reg := control.NewRegistry(control.NewSimCard(control.SimConfig{
		PCMOutputs: 2, Inputs: 2, DACs: 2, ADCs: 2, IPGA: true, Feed: feed,
	}))
	board := mixer.NewBoard(reg, mixer.DefaultOptions(), nil, nil)
	engine := meter.NewEngine(reg, meter.CompactLayout, nil)
	board.AttachMeters(engine)
	m := NewModel(board, engine, Options{Device: "sim", Interval: 50 * time.Millisecond, MeterRows: 4})
	m.Init()
	return m, reg
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "pgup":
			msg = tea.KeyMsg{Type: tea.KeyPgUp}
		case "pgdown":
			msg = tea.KeyMsg{Type: tea.KeyPgDown}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestPanels(t *testing.T) {
	m, _ := newTestModel(t, nil)

	if got := len(m.panelStrips()); got != 2 {
		t.Errorf("monitor strips = %d, want 2", got)
	}
	if !m.canvases[1].Visible() || m.canvases[control.FirstCaptureStream].Visible() {
		t.Error("monitor panel should show PCM meters only")
	}

	m = press(t, m, "tab")
	if m.Panel != PanelInputs {
		t.Fatalf("panel = %v, want inputs", m.Panel)
	}
	// H/W In 1-2 and S/PDIF In L/R
	if got := len(m.panelStrips()); got != 4 {
		t.Errorf("input strips = %d, want 4", got)
	}
	if m.canvases[1].Visible() || !m.canvases[control.FirstCaptureStream].Visible() {
		t.Error("inputs panel should show capture meters only")
	}

	m = press(t, m, "tab")
	if got := len(m.analogItems()); got != 6 {
		t.Errorf("analog items = %d, want 6", got)
	}
	if m.canvases[0].Visible() {
		t.Error("analog panel should hide every meter")
	}
}

func TestMixerKeys(t *testing.T) {
	m, reg := newTestModel(t, nil)
	id := control.StreamVolume(2)

	m = press(t, m, "right", "down", "down")
	got, _ := reg.Read(id)
	if got[0] != 94 || got[1] != 94 {
		t.Fatalf("after two steps down = %v, want [94 94]", got)
	}

	m = press(t, m, "pgdown")
	got, _ = reg.Read(id)
	if got[0] != 92 {
		t.Errorf("after page down = %v, want 92 (the -6dB mark)", got)
	}

	// unlink, then move only the right side
	m = press(t, m, "l", "x", "up")
	got, _ = reg.Read(id)
	if got[0] != 92 || got[1] != 93 {
		t.Errorf("unlinked right step = %v, want [92 93]", got)
	}

	m = press(t, m, "m")
	sw, _ := reg.Read(control.StreamSwitch(2))
	if sw[0] != 1 || sw[1] != 0 {
		t.Errorf("switches = %v, want right muted only", sw)
	}
}

func TestAnalogKeys(t *testing.T) {
	m, reg := newTestModel(t, nil)
	m = press(t, m, "tab", "tab", "down", "s")

	got, _ := reg.Read(control.ID{Kind: control.DACVolume})
	if got[0] != 126 {
		t.Errorf("DAC 1 = %d, want 126", got[0])
	}
	sense, _ := reg.Read(control.ID{Kind: control.DACSense})
	if sense[0] != 1 {
		t.Errorf("DAC 1 sense = %d, want 1", sense[0])
	}
}

func TestTickUpdatesMeters(t *testing.T) {
	feed := make(levelFeed, control.PeakChannels)
	feed[0] = 255
	m, _ := newTestModel(t, feed)

	next, cmd := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if cmd == nil {
		t.Error("tick did not schedule the next poll")
	}
	if m.engine.Peak(0) != 255 {
		t.Errorf("peak = %d, want 255", m.engine.Peak(0))
	}
	if s := m.board.Strip(1); s.Peak.String() != "0.0dB" || !s.Peak.Alert() {
		t.Errorf("PCM 1 peak label = %q alert=%v", s.Peak.String(), s.Peak.Alert())
	}

	// the reset render clears the hold; the next poll raises it again
	m = press(t, m, "r")
	if m.engine.Peak(0) != 0 {
		t.Errorf("peak after reset = %d, want 0", m.engine.Peak(0))
	}
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)
	if m.engine.Peak(0) != 255 {
		t.Errorf("peak after re-poll = %d, want 255", m.engine.Peak(0))
	}
}

// burstFeed delivers its levels on the first poll only
type burstFeed struct {
	levels []int
	done   bool
}

func (f *burstFeed) Peaks(dst []int) {
	if !f.done {
		copy(dst, f.levels)
		f.done = true
	}
}

func TestPanelRoundTripKeepsPeaks(t *testing.T) {
	levels := make([]int, control.PeakChannels)
	levels[0] = 255
	m, _ := newTestModel(t, &burstFeed{levels: levels})

	next, _ := m.Update(TickMsg(time.Now()))
	m = next.(Model)
	strip := m.board.Strip(1)
	if strip.Peak.String() != "0.0dB" || !strip.Peak.Alert() {
		t.Fatalf("PCM 1 peak label = %q alert=%v", strip.Peak.String(), strip.Peak.Alert())
	}

	m = press(t, m, "tab", "tab")
	if dac := m.board.DACs[0].Peak; dac.String() != "0.0dB" || !dac.Alert() {
		t.Errorf("DAC 1 peak label = %q alert=%v", dac.String(), dac.Alert())
	}
	m = press(t, m, "tab")
	if m.Panel != PanelMonitor {
		t.Fatalf("panel = %v, want monitor", m.Panel)
	}
	next, _ = m.Update(TickMsg(time.Now()))
	m = next.(Model)

	if m.engine.Peak(0) != 255 {
		t.Errorf("peak = %d, want 255 held", m.engine.Peak(0))
	}
	if strip.Peak.String() != "0.0dB" || !strip.Peak.Alert() {
		t.Errorf("PCM 1 peak label = %q alert=%v after round trip", strip.Peak.String(), strip.Peak.Alert())
	}
	if got := m.canvases[1].At(meter.CompactLayout.Inset, 0); got != meter.PenRed {
		t.Errorf("PCM 1 peak line = %v, want red", got)
	}
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, nil)
	if got := m.View(); !strings.Contains(got, "Initializing") {
		t.Errorf("view before size = %q", got)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	view := m.View()
	for _, want := range []string{"envymix", "Monitor Outputs", "PCM 1", "PCM 2", "+0.0", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	m = press(t, m, "tab", "tab")
	view = m.View()
	for _, want := range []string{"DAC 1", "IPGA 2", "+4dBu", "s sense"} {
		if !strings.Contains(view, want) {
			t.Errorf("analog view missing %q", want)
		}
	}
}

func TestRenderCanvas(t *testing.T) {
	c := meter.NewCanvas(2, 3)
	c.FillRect(0, 0, 2, 1, meter.PenRed)
	rows := renderCanvas(c, newPalette("#1e90ff", "#304050"))
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if strings.Count(rows[0], "▀") != 2 {
		t.Errorf("row 0 = %q", rows[0])
	}
}

func TestRenderSlider(t *testing.T) {
	s := mixer.NewSlider(0, 33)
	s.Marks = mixer.MixerScaleMarks()
	s.SetValue(33)
	rows := renderSlider(s, 4)
	if !strings.Contains(rows[3], "█") {
		t.Errorf("knob not at bottom: %q", rows)
	}
	if !strings.Contains(rows[0], "┼") {
		t.Errorf("unity mark missing at top: %q", rows)
	}
}
