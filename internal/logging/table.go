// Package logging writes the panel's diagnostic output: printf-style log
// sinks and the plain-text channel report printed by --once.
package logging

import (
	"fmt"
	"strings"
)

// MetricRow is one row of a report table. Values are pre-formatted so a
// row can mix dB figures, raw values and switch states.
type MetricRow struct {
	Label  string   // row label, e.g. "PCM 1"
	Values []string // one value per header
	Unit   string   // unit suffix, "" for none
	Note   string   // optional trailing note
}

// MetricTable renders aligned columns of channel readings
type MetricTable struct {
	Headers []string
	Rows    []MetricRow
}

// NewMetricTable creates an empty table with the given column headers
func NewMetricTable(headers ...string) *MetricTable {
	return &MetricTable{Headers: headers}
}

// AddRow appends a row of pre-formatted values
func (t *MetricTable) AddRow(label string, values []string, unit string, note string) {
	t.Rows = append(t.Rows, MetricRow{Label: label, Values: values, Unit: unit, Note: note})
}

// String renders the table. Labels are left-aligned, values right-aligned
// under their header; missing values show as MissingValue. The unit and
// note columns appear only when some row uses them.
func (t *MetricTable) String() string {
	if len(t.Rows) == 0 {
		return ""
	}

	labelWidth, unitWidth := 0, 0
	hasNote := false
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
		unitWidth = max(unitWidth, len(row.Unit))
		hasNote = hasNote || row.Note != ""
		for i := range widths {
			widths[i] = max(widths[i], len(cell(row, i)))
		}
	}

	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", labelWidth+2))
	for i, h := range t.Headers {
		fmt.Fprintf(&sb, "%*s  ", widths[i], h)
	}
	if hasNote {
		if unitWidth > 0 {
			sb.WriteString(strings.Repeat(" ", unitWidth+1))
		}
		sb.WriteString("Note")
	}
	sb.WriteString("\n")

	for _, row := range t.Rows {
		fmt.Fprintf(&sb, "%-*s  ", labelWidth, row.Label)
		for i := range t.Headers {
			fmt.Fprintf(&sb, "%*s  ", widths[i], cell(row, i))
		}
		if unitWidth > 0 {
			fmt.Fprintf(&sb, "%-*s ", unitWidth, row.Unit)
		}
		if hasNote {
			sb.WriteString(row.Note)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cell(row MetricRow, i int) string {
	if i < len(row.Values) && row.Values[i] != "" {
		return row.Values[i]
	}
	return MissingValue
}

// MissingValue is the placeholder for a reading the card does not have
const MissingValue = "-"
