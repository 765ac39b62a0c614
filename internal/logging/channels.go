package logging

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/meter"
	"github.com/linuxmatters/envymix/internal/mixer"
)

// ReportData is everything the --once report prints
type ReportData struct {
	Device   string
	Time     time.Time
	Interval time.Duration
	Board    *mixer.Board
	Engine   *meter.Engine
}

// WriteReport prints the card's meters, mixer and analog settings as
// plain aligned tables
func WriteReport(w io.Writer, data ReportData) error {
	var sb strings.Builder
	title := "envymix: " + data.Device
	writeSection(&sb, title)
	fmt.Fprintf(&sb, "Polled:   %s\n", data.Time.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Interval: %s\n\n", data.Interval)

	writeSection(&sb, "Monitor Mixer")
	sb.WriteString(MixerTable(data.Board, data.Engine).String())

	if analog := AnalogTable(data.Board); len(analog.Rows) > 0 {
		sb.WriteString("\n")
		writeSection(&sb, "Analog Volume")
		sb.WriteString(analog.String())
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// writeSection writes a title with a dashed underline of the same length
func writeSection(sb *strings.Builder, title string) {
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", len(title)) + "\n")
}

// MixerTable has one row per meter channel: live level, held peak, the
// mixer attenuation of each side and the switch states
func MixerTable(b *mixer.Board, e *meter.Engine) *MetricTable {
	t := NewMetricTable("Level", "Peak", "Left", "Right")
	snapshot := e.Snapshot()
	for _, ch := range b.Channels() {
		c := control.ChannelAt(ch)
		if ch == 0 {
			t.AddRow(c.Name()+" L", []string{
				formatLevel(snapshot[control.IdxLMix]),
				meter.PeakLevelToDB(e.Peak(control.IdxLMix)),
			}, "", "")
			t.AddRow(c.Name()+" R", []string{
				formatLevel(snapshot[control.IdxRMix]),
				meter.PeakLevelToDB(e.Peak(control.IdxRMix)),
			}, "", "")
			continue
		}
		m := b.Strip(ch)
		if m == nil {
			continue
		}
		values := []string{
			formatLevel(snapshot[c.Slot()]),
			meter.PeakLevelToDB(e.Peak(c.Slot())),
			m.Labels[mixer.Left].String(),
			m.Labels[mixer.Right].String(),
		}
		t.AddRow(c.Name(), values, "dB", stripNote(m))
	}
	return t
}

func stripNote(m *mixer.MixerStrip) string {
	var notes []string
	if m.Linked() {
		notes = append(notes, "linked")
	}
	switch l, r := m.Mutes[mixer.Left].Active(), m.Mutes[mixer.Right].Active(); {
	case l && r:
		notes = append(notes, "muted")
	case l:
		notes = append(notes, "left muted")
	case r:
		notes = append(notes, "right muted")
	}
	return strings.Join(notes, ", ")
}

// AnalogTable has one row per DAC, ADC and IPGA gain stage
func AnalogTable(b *mixer.Board) *MetricTable {
	t := NewMetricTable("Gain", "Raw", "Sense")
	add := func(name string, strips []*mixer.AnalogStrip, senses []*mixer.SenseStrip) {
		for i, a := range strips {
			sense := ""
			if i < len(senses) {
				if sel := senses[i].Selected(); sel >= 0 && sel < len(senses[i].Items) {
					sense = senses[i].Items[sel]
				}
			}
			raw := fmt.Sprintf("%d", -a.Fader.Value())
			t.AddRow(fmt.Sprintf("%s %d", name, i+1), []string{a.Readout.String(), raw, sense}, "", "")
		}
	}
	add("DAC", b.DACs, b.DACSenses)
	add("ADC", b.ADCs, b.ADCSenses)
	add("IPGA", b.IPGAs, nil)
	return t
}

// formatLevel shows a live register reading as dBFS
func formatLevel(level int) string {
	if level <= 0 {
		return MissingValue
	}
	return meter.PeakLevelToDB(level)
}
