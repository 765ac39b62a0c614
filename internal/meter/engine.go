package meter

import (
	"github.com/linuxmatters/envymix/internal/control"
)

// State is the render state of one peak slot
type State int

const (
	Unchanged State = iota
	Changed
	ResetPending
)

func (s State) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	case ResetPending:
		return "reset pending"
	}
	return "unknown"
}

// Layout is the bar geometry inside a meter surface. A mono bar starts at
// Inset and is MonoTrim narrower than the surface; each half of a stereo
// meter is StereoTrim narrower than half the surface, the right bar
// starting Split pixels past the middle.
type Layout struct {
	Inset      int
	MonoTrim   int
	StereoTrim int
	Split      int
}

var (
	// DefaultLayout is the geometry of the windowed meters
	DefaultLayout = Layout{Inset: 6, MonoTrim: 12, StereoTrim: 8, Split: 2}
	// CompactLayout suits meters a few terminal cells wide
	CompactLayout = Layout{Inset: 1, MonoTrim: 2, StereoTrim: 2, Split: 1}
)

func (l Layout) segment(width int, stereo bool) int {
	if stereo {
		return width/2 - l.StereoTrim
	}
	return width - l.MonoTrim
}

// PeakReader reads the peak register
type PeakReader interface {
	Read(id control.ID) ([]int, error)
}

type slot struct {
	peak     int
	previous int
	state    State
}

// boundLabel caches what was last written to a label so repeated
// renders of an unchanged peak don't touch the widget
type boundLabel struct {
	Label
	text  string
	alert bool
	set   bool
}

func (b *boundLabel) show(text string, alert bool) {
	if !b.set || b.text != text {
		b.Label.SetText(text)
		b.text = text
	}
	if !b.set || b.alert != alert {
		b.Label.SetAlert(alert)
		b.alert = alert
	}
	b.set = true
}

// Engine owns the peak-hold state of every slot and the surfaces the
// meters are drawn on. It is not safe for concurrent use; all calls must
// come from the event loop that owns the hardware.
type Engine struct {
	peaks    PeakReader
	peakID   control.ID
	layout   Layout
	logf     func(format string, args ...any)
	snapshot [control.PeakChannels]int
	slots    [control.PeakChannels]slot
	surfaces [control.MaxStreams + 1]Surface
	labels   [control.PeakChannels][]*boundLabel
	active   []int
}

// NewEngine creates a meter engine reading from peaks. Every slot starts
// in ResetPending so the first render clears its surface.
func NewEngine(peaks PeakReader, layout Layout, logf func(format string, args ...any)) *Engine {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	e := &Engine{
		peaks:  peaks,
		peakID: control.ID{Kind: control.MultiTrackPeak},
		layout: layout,
		logf:   logf,
	}
	e.ResetPeaks()
	return e
}

// slotsOf returns the peak slots behind a meter channel
func slotsOf(ch int) (int, int, bool) {
	if ch == 0 {
		return control.IdxLMix, control.IdxRMix, true
	}
	return ch - 1, -1, false
}

func validChannel(ch int) bool {
	return ch >= 0 && ch <= control.MaxStreams
}

// SetActive sets the channels Tick polls and renders, in order
func (e *Engine) SetActive(channels []int) {
	e.active = e.active[:0]
	for _, ch := range channels {
		if validChannel(ch) {
			e.active = append(e.active, ch)
		}
	}
}

// Active returns the channels Tick renders
func (e *Engine) Active() []int {
	return append([]int(nil), e.active...)
}

// AttachLabel adds a label that follows a slot's peak-hold
func (e *Engine) AttachLabel(slot int, l Label) {
	if slot < 0 || slot >= control.PeakChannels || l == nil {
		return
	}
	e.labels[slot] = append(e.labels[slot], &boundLabel{Label: l})
}

// Peak returns the held peak of a slot
func (e *Engine) Peak(slot int) int {
	return e.slots[slot].peak
}

// State returns the render state of a slot
func (e *Engine) State(slot int) State {
	return e.slots[slot].state
}

// Snapshot returns the last polled register values
func (e *Engine) Snapshot() []int {
	return append([]int(nil), e.snapshot[:]...)
}

// PollPeaks reads the whole peak register once. A failed read keeps the
// previous snapshot.
func (e *Engine) PollPeaks() error {
	values, err := e.peaks.Read(e.peakID)
	if err != nil {
		e.logf("Unable to read peaks: %v\n", err)
		return err
	}
	for i := range e.snapshot {
		v := 0
		if i < len(values) {
			v = max(0, min(values[i], control.MaxMeteringLevel))
		}
		e.snapshot[i] = v
	}
	return nil
}

// raise compares a fresh reading against the held peak
func (e *Engine) raise(slot int) int {
	level := e.snapshot[slot]
	if level > e.slots[slot].peak {
		e.slots[slot].peak = level
		e.slots[slot].state = Changed
	}
	return level
}

// Levels returns the live readings of a channel from the last poll and
// raises its peak-hold. A channel waiting for its reset render reads as
// silent and keeps its held peak.
func (e *Engine) Levels(ch int) (uint8, uint8) {
	if !validChannel(ch) {
		return 0, 0
	}
	left, right, stereo := slotsOf(ch)
	if stereo {
		if e.slots[left].state == ResetPending || e.slots[right].state == ResetPending {
			return 0, 0
		}
		return uint8(e.raise(left)), uint8(e.raise(right))
	}
	if e.slots[left].state == ResetPending {
		return 0, 0
	}
	return uint8(e.raise(left)), 0
}

func (e *Engine) pending(ch int) bool {
	left, right, stereo := slotsOf(ch)
	if stereo {
		return e.slots[left].state == ResetPending || e.slots[right].state == ResetPending
	}
	return e.slots[left].state == ResetPending
}

// Render repaints a channel's meter from its state and live readings
func (e *Engine) Render(ch int, l1, l2 uint8) {
	if !validChannel(ch) {
		return
	}
	s := e.surfaces[ch]
	if s == nil {
		return
	}
	if e.pending(ch) {
		e.renderReset(ch, s)
		return
	}
	e.renderChanged(ch, s, l1, l2)
}

func (e *Engine) renderReset(ch int, s Surface) {
	width, height := s.Size()
	left, right, stereo := slotsOf(ch)
	seg := e.layout.segment(width, stereo)

	s.FillRect(e.layout.Inset, 0, seg, height, PenBackground)
	e.showLabels(left, true)
	e.slots[left].state = Unchanged
	if stereo {
		s.FillRect(e.layout.Split+width/2, 0, seg, height, PenBackground)
		e.showLabels(right, true)
		e.slots[right].state = Unchanged
	}
}

// bar describes one vertical bar of a meter
type bar struct {
	slot  int
	x     int
	live  int
	peakY int
}

func (e *Engine) renderChanged(ch int, s Surface, l1, l2 uint8) {
	width, height := s.Size()
	left, right, stereo := slotsOf(ch)
	seg := e.layout.segment(width, stereo)

	bars := []bar{{slot: left, x: e.layout.Inset, live: int(l1)}}
	if stereo {
		bars = append(bars, bar{slot: right, x: e.layout.Split + width/2, live: int(l2)})
	}
	for i := range bars {
		bars[i].peakY = height - Pixels(e.slots[bars[i].slot].peak, height)
	}

	for _, b := range bars {
		st := &e.slots[b.slot]
		if st.state != Changed {
			continue
		}
		s.HLine(b.x, b.x+seg-1, b.peakY-1, PeakPen(st.peak))
		e.showLabels(b.slot, false)
		st.state = Unchanged
	}

	for _, b := range bars {
		st := &e.slots[b.slot]
		if b.live == st.previous {
			continue
		}
		fill := Pixels(b.live, height)
		s.FillRect(b.x, b.peakY, seg, height-fill-b.peakY, PenBackground)
		s.FillRect(b.x, height-fill, seg, fill, PenForeground)
		st.previous = b.live
	}
}

// showLabels writes a slot's held peak to its labels. A reset clears the
// alert colour; otherwise the alert is raised at full scale and left set.
func (e *Engine) showLabels(slot int, reset bool) {
	peak := e.slots[slot].peak
	text := PeakLevelToDB(peak)
	for _, l := range e.labels[slot] {
		alert := l.alert && l.set
		if reset {
			alert = false
		} else if peak >= control.MaxMeteringLevel {
			alert = true
		}
		l.show(text, alert)
	}
}

// Configure attaches a new or resized surface to a channel. Its slots
// are re-armed for a full reset render, which happens immediately.
func (e *Engine) Configure(ch int, s Surface) {
	if !validChannel(ch) {
		return
	}
	e.surfaces[ch] = s
	if s == nil {
		return
	}
	width, height := s.Size()
	s.FillRect(0, 0, width, height, PenBlack)

	left, right, stereo := slotsOf(ch)
	e.slots[left] = slot{state: ResetPending}
	if stereo {
		e.slots[right] = slot{state: ResetPending}
	}
	e.Render(ch, 0, 0)
}

// Redraw repaints a channel's surface from its held state, for a surface
// shown again after being hidden. Unlike Configure the peak-hold is kept.
func (e *Engine) Redraw(ch int) {
	if !validChannel(ch) {
		return
	}
	s := e.surfaces[ch]
	if s == nil {
		return
	}
	left, right, stereo := slotsOf(ch)
	if e.pending(ch) {
		e.Render(ch, 0, 0)
		return
	}

	width, height := s.Size()
	seg := e.layout.segment(width, stereo)
	s.FillRect(0, 0, width, height, PenBlack)
	s.FillRect(e.layout.Inset, 0, seg, height, PenBackground)
	slots := []int{left}
	if stereo {
		s.FillRect(e.layout.Split+width/2, 0, seg, height, PenBackground)
		slots = append(slots, right)
	}
	for _, i := range slots {
		if e.slots[i].peak > 0 {
			e.slots[i].state = Changed
		}
		e.slots[i].previous = -1
	}

	l1, l2 := e.snapshot[left], 0
	if stereo {
		l2 = e.snapshot[right]
	}
	e.Render(ch, uint8(l1), uint8(l2))
}

// ResetPeaks clears every peak-hold and arms every slot for a reset render
func (e *Engine) ResetPeaks() {
	for i := range e.slots {
		e.slots[i] = slot{state: ResetPending}
	}
}

// ResetAllPeaks clears every peak-hold and renders at once
func (e *Engine) ResetAllPeaks() {
	e.ResetPeaks()
	e.Tick()
}

// Tick polls the register once and renders every active channel from
// that snapshot. Channels without a visible surface still keep their
// peak-hold and labels current.
func (e *Engine) Tick() {
	if err := e.PollPeaks(); err != nil {
		return
	}
	for _, ch := range e.active {
		l1, l2 := e.Levels(ch)
		if s := e.surfaces[ch]; s != nil && s.Visible() {
			e.Render(ch, l1, l2)
			continue
		}
		e.updateLabelsOnly(ch)
	}
}

func (e *Engine) updateLabelsOnly(ch int) {
	left, right, stereo := slotsOf(ch)
	slots := []int{left}
	if stereo {
		slots = append(slots, right)
	}
	for _, slot := range slots {
		switch e.slots[slot].state {
		case Changed:
			e.showLabels(slot, false)
		case ResetPending:
			e.raise(slot)
			e.showLabels(slot, true)
			if e.slots[slot].peak >= control.MaxMeteringLevel {
				e.showLabels(slot, false)
			}
		}
		e.slots[slot].state = Unchanged
	}
}
