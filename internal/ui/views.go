package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/linuxmatters/envymix/internal/control"
	"github.com/linuxmatters/envymix/internal/mixer"
)

var (
	accentColor = lipgloss.Color("#1e90ff")
	mutedColor  = lipgloss.Color("#888888")
	alertColor  = lipgloss.Color("#ff0000")
	unityColor  = lipgloss.Color("#ffa500")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	subtitleStyle = lipgloss.NewStyle().Foreground(mutedColor).Italic(true)
	tabStyle      = lipgloss.NewStyle().Foreground(mutedColor).Padding(0, 1)
	activeTab     = lipgloss.NewStyle().Bold(true).Foreground(accentColor).Padding(0, 1).Underline(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
	alertStyle    = lipgloss.NewStyle().Bold(true).Foreground(alertColor)
	helpStyle     = lipgloss.NewStyle().Foreground(mutedColor)
	stripStyle    = lipgloss.NewStyle().Width(12).Align(lipgloss.Center)
)

// View renders the panel
func (m Model) View() string {
	if m.Width == 0 {
		return "Initializing...\n"
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	if m.Panel == PanelAnalog {
		b.WriteString(m.renderAnalog())
	} else {
		b.WriteString(m.renderMixer())
	}
	b.WriteString("\n\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := titleStyle.Render("envymix") + " " + subtitleStyle.Render(m.opts.Device)

	var tabs []string
	for p := range panelCount {
		if p == m.Panel {
			tabs = append(tabs, activeTab.Render(p.String()))
		} else {
			tabs = append(tabs, tabStyle.Render(p.String()))
		}
	}
	return title + "\n" + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// renderMixer draws the digital mix meter followed by one column per
// mixer strip of the panel
func (m Model) renderMixer() string {
	cols := []string{m.renderMixColumn()}
	for i, s := range m.panelStrips() {
		cols = append(cols, m.renderStrip(s, i == m.selected[m.Panel]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) renderMixColumn() string {
	lines := []string{control.ChannelAt(0).Name(), ""}
	if c := m.canvases[0]; c != nil {
		lines = append(lines, renderCanvas(c, m.palette)...)
	}
	lines = append(lines,
		peakText(m.board.MixPeak[mixer.Left]),
		peakText(m.board.MixPeak[mixer.Right]),
	)
	return stripStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderStrip(s *mixer.MixerStrip, selected bool) string {
	name := control.ChannelAt(s.Stream()).Name()
	if selected {
		name = selectedStyle.Render(name)
	}
	sides := "L R"
	if selected && !s.Linked() {
		sides = [2]string{"▸L R", "L ▸R"}[m.side]
	}
	lines := []string{name, sides}

	var meterRows []string
	if c := m.canvases[s.Stream()]; c != nil {
		meterRows = renderCanvas(c, m.palette)
	}
	left := renderSlider(s.Sliders[mixer.Left], m.opts.MeterRows)
	right := renderSlider(s.Sliders[mixer.Right], m.opts.MeterRows)
	for row := range m.opts.MeterRows {
		meterRow := strings.Repeat(" ", monoMeterWidth)
		if row < len(meterRows) {
			meterRow = meterRows[row]
		}
		lines = append(lines, meterRow+" "+left[row]+right[row])
	}

	lines = append(lines,
		s.Labels[mixer.Left].String(),
		s.Labels[mixer.Right].String(),
		peakText(s.Peak),
		switches(s),
	)
	return stripStyle.Render(strings.Join(lines, "\n"))
}

// switches shows the mute and link state of a strip
func switches(s *mixer.MixerStrip) string {
	mute := func(side int, tag string) string {
		if s.Mutes[side].Active() {
			return alertStyle.Render(tag)
		}
		return helpStyle.Render(strings.ToLower(tag))
	}
	link := helpStyle.Render("-")
	if s.Linked() {
		link = selectedStyle.Render("∞")
	}
	return mute(mixer.Left, "M") + link + mute(mixer.Right, "M")
}

func peakText(t *mixer.Text) string {
	if t.Alert() {
		return alertStyle.Render(t.String())
	}
	return t.String()
}

// renderSlider draws a vertical slider with its lower bound at the top.
// Scale marks show as ticks; the unity mark is highlighted.
func renderSlider(s *mixer.Slider, rows int) []string {
	out := make([]string, rows)
	lower, upper := s.Range()
	rowOf := func(v int) int {
		if upper == lower || rows < 2 {
			return 0
		}
		return max(0, min(rows-1, (v-lower)*(rows-1)/(upper-lower)))
	}
	for i := range out {
		out[i] = helpStyle.Render("│")
	}
	for _, mk := range s.Marks {
		if mk.Colour == mixer.MarkUnity {
			out[rowOf(mk.Value)] = lipgloss.NewStyle().Foreground(unityColor).Render("┼")
		} else {
			out[rowOf(mk.Value)] = helpStyle.Render("┼")
		}
	}
	out[rowOf(s.Value())] = selectedStyle.Render("█")
	return out
}

// renderAnalog draws one row per DAC, ADC and IPGA gain stage
func (m Model) renderAnalog() string {
	const barWidth = 32
	var b strings.Builder
	for i, item := range m.analogItems() {
		cursor := "  "
		name := fmt.Sprintf("%-7s", item.name)
		if i == m.selected[m.Panel] {
			cursor = selectedStyle.Render("▸ ")
			name = selectedStyle.Render(name)
		}
		// more gain fills more of the bar
		filled := int((1 - item.strip.Fader.Fraction()) * barWidth)
		bar := lipgloss.NewStyle().Foreground(lipgloss.Color(m.opts.Lights)).Render(strings.Repeat("█", filled)) +
			helpStyle.Render(strings.Repeat("░", barWidth-filled))

		sense := ""
		if item.sense != nil {
			if sel := item.sense.Selected(); sel >= 0 && sel < len(item.sense.Items) {
				sense = item.sense.Items[sel]
			}
		}
		fmt.Fprintf(&b, "%s%s %s %7s %-7s %s\n", cursor, name, bar,
			item.strip.Readout.String(), sense, peakText(item.strip.Peak))
	}
	if b.Len() == 0 {
		return helpStyle.Render("No analog controls on this card")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (m Model) renderFooter() string {
	footer := m.help.View(panelHelp{keys: m.keys, analog: m.Panel == PanelAnalog})
	if m.status != "" {
		footer = m.status + "\n" + footer
	}
	return footer
}

func newHelp() help.Model {
	h := help.New()
	h.Styles.ShortKey = selectedStyle
	h.Styles.ShortDesc = helpStyle
	h.Styles.ShortSeparator = helpStyle
	return h
}
