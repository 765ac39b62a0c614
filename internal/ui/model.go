// Package ui provides the Bubbletea terminal panel: hardware meters drawn
// with half-block characters above the card's mixer and analog controls.
package ui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/meter"
	"github.com/linuxmatters/envymix/internal/mixer"
)

// Panel is one page of the control panel
type Panel int

const (
	PanelMonitor Panel = iota
	PanelInputs
	PanelAnalog
	panelCount
)

func (p Panel) String() string {
	switch p {
	case PanelMonitor:
		return "Monitor Outputs"
	case PanelInputs:
		return "Monitor Inputs"
	case PanelAnalog:
		return "Analog Volume"
	}
	return "unknown"
}

// analogPageStep is the page size of analog sliders without scale marks
const analogPageStep = 6

// Options configures the panel
type Options struct {
	Device     string
	Interval   time.Duration
	SyncEvery  int // ticks between full control re-reads
	MeterRows  int // terminal rows per meter; each row is two pixels
	Lights     string
	Background string
	Logf       func(format string, args ...any)
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = 100 * time.Millisecond
	}
	if o.SyncEvery <= 0 {
		o.SyncEvery = max(1, int(time.Second/o.Interval))
	}
	if o.MeterRows <= 0 {
		o.MeterRows = 12
	}
	if o.Lights == "" {
		o.Lights = "#1e90ff"
	}
	if o.Background == "" {
		o.Background = "#304050"
	}
	if o.Logf == nil {
		o.Logf = func(string, ...any) {}
	}
	return o
}

// Model is the Bubbletea model of the control panel. The board and the
// meter engine are only touched from Update, so every hardware access
// happens on the event loop.
type Model struct {
	board    *mixer.Board
	engine   *meter.Engine
	opts     Options
	canvases map[int]*meter.Canvas
	palette  palette
	keys     keyMap
	help     help.Model

	Panel    Panel
	selected [panelCount]int
	side     int
	ticks    int
	status   string

	Width  int
	Height int
}

// NewModel builds the panel over a discovered board. The engine's meter
// channels must already be attached to the board.
func NewModel(board *mixer.Board, engine *meter.Engine, opts Options) Model {
	opts = opts.withDefaults()
	m := Model{
		board:    board,
		engine:   engine,
		opts:     opts,
		canvases: make(map[int]*meter.Canvas),
		palette:  newPalette(opts.Lights, opts.Background),
		keys:     defaultKeyMap(),
		help:     newHelp(),
	}
	height := opts.MeterRows * 2
	for _, ch := range board.Channels() {
		width := monoMeterWidth
		if control.ChannelAt(ch).Stereo {
			width = stereoMeterWidth
		}
		c := meter.NewCanvas(width, height)
		m.canvases[ch] = c
		engine.Configure(ch, c)
	}
	m.showPanel(PanelMonitor)
	return m
}

// Init reads every control once and starts polling
func (m Model) Init() tea.Cmd {
	m.board.SyncAll()
	return tick(m.opts.Interval)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.opts.Logf("[UI] Window size: %dx%d", m.Width, m.Height)

	case TickMsg:
		m.engine.Tick()
		m.ticks++
		if m.ticks%m.opts.SyncEvery == 0 {
			m.board.SyncAll()
		}
		return m, tick(m.opts.Interval)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := m.keys
	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit
	case key.Matches(msg, k.NextPanel):
		m.showPanel((m.Panel + 1) % panelCount)
	case key.Matches(msg, k.PrevPanel):
		m.showPanel((m.Panel + panelCount - 1) % panelCount)
	case key.Matches(msg, k.Left):
		m.selected[m.Panel] = max(0, m.selected[m.Panel]-1)
	case key.Matches(msg, k.Right):
		m.selected[m.Panel] = min(m.items()-1, m.selected[m.Panel]+1)
	case key.Matches(msg, k.Side):
		m.side = 1 - m.side
	case key.Matches(msg, k.Up):
		m.adjust(false, true)
	case key.Matches(msg, k.Down):
		m.adjust(false, false)
	case key.Matches(msg, k.PageUp):
		m.adjust(true, true)
	case key.Matches(msg, k.PageDown):
		m.adjust(true, false)
	case key.Matches(msg, k.Link):
		if s := m.currentStrip(); s != nil {
			s.OnUserLink(!s.Linked())
		}
	case key.Matches(msg, k.Mute):
		if s := m.currentStrip(); s != nil {
			s.OnUserMute(m.side, !s.Mutes[m.side].Active())
		}
	case key.Matches(msg, k.Sense):
		if sense := m.currentSense(); sense != nil && len(sense.Items) > 0 {
			sense.OnUserSelect((sense.Selected() + 1) % len(sense.Items))
		}
	case key.Matches(msg, k.Reset):
		m.engine.ResetAllPeaks()
		m.status = "Peaks reset"
	}
	return m, nil
}

// showPanel makes the panel's meters visible. Meters coming into view are
// repainted with their held peaks; hidden ones keep only their peak
// labels current.
func (m *Model) showPanel(p Panel) {
	m.Panel = p
	visible := make(map[int]bool)
	for _, ch := range m.panelChannels() {
		visible[ch] = true
	}
	for ch, c := range m.canvases {
		switch {
		case visible[ch] && !c.Visible():
			c.SetVisible(true)
			m.engine.Redraw(ch)
		case !visible[ch]:
			c.SetVisible(false)
		}
	}
	m.selected[p] = max(0, min(m.selected[p], m.items()-1))
}

// panelChannels returns the meter channels drawn on the current panel
func (m *Model) panelChannels() []int {
	if m.Panel == PanelAnalog {
		return nil
	}
	channels := []int{0}
	for _, s := range m.panelStrips() {
		channels = append(channels, s.Stream())
	}
	return channels
}

// panelStrips returns the mixer strips of the current panel
func (m *Model) panelStrips() []*mixer.MixerStrip {
	var strips []*mixer.MixerStrip
	for _, s := range m.board.Mixer {
		capture := s.Stream() >= control.FirstCaptureStream
		if (m.Panel == PanelInputs) == capture && m.Panel != PanelAnalog {
			strips = append(strips, s)
		}
	}
	return strips
}

type analogItem struct {
	name  string
	strip *mixer.AnalogStrip
	sense *mixer.SenseStrip
}

func (m *Model) analogItems() []analogItem {
	var items []analogItem
	add := func(prefix string, strips []*mixer.AnalogStrip, senses []*mixer.SenseStrip) {
		for i, a := range strips {
			item := analogItem{name: prefix + " " + strconv.Itoa(i+1), strip: a}
			if i < len(senses) {
				item.sense = senses[i]
			}
			items = append(items, item)
		}
	}
	add("DAC", m.board.DACs, m.board.DACSenses)
	add("ADC", m.board.ADCs, m.board.ADCSenses)
	add("IPGA", m.board.IPGAs, nil)
	return items
}

func (m *Model) items() int {
	if m.Panel == PanelAnalog {
		return len(m.analogItems())
	}
	return len(m.panelStrips())
}

func (m *Model) currentStrip() *mixer.MixerStrip {
	if m.Panel == PanelAnalog {
		return nil
	}
	strips := m.panelStrips()
	if i := m.selected[m.Panel]; i >= 0 && i < len(strips) {
		return strips[i]
	}
	return nil
}

func (m *Model) currentAnalog() *analogItem {
	if m.Panel != PanelAnalog {
		return nil
	}
	items := m.analogItems()
	if i := m.selected[m.Panel]; i >= 0 && i < len(items) {
		return &items[i]
	}
	return nil
}

func (m *Model) currentSense() *mixer.SenseStrip {
	if a := m.currentAnalog(); a != nil {
		return a.sense
	}
	return nil
}

// adjust moves the selected slider one step or one page. Up raises the
// gain, which is toward the slider's lower bound.
func (m *Model) adjust(page, up bool) {
	if s := m.currentStrip(); s != nil {
		slider := s.Sliders[m.side]
		lower, upper := slider.Range()
		inc := 1
		if page {
			inc = control.MixerStepSize
		}
		s.OnUserAdjust(m.side, mixer.Snap(slider.Marks, slider.Value(), lower, upper, inc, page, up))
		return
	}
	if a := m.currentAnalog(); a != nil {
		slider := a.strip.Fader
		lower, upper := slider.Range()
		inc := 1
		if page {
			inc = analogPageStep
		}
		a.strip.OnUserAdjust(mixer.Snap(slider.Marks, slider.Value(), lower, upper, inc, page, up))
	}
}
