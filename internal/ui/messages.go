package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives one meter poll
type TickMsg time.Time

// tick schedules the next meter poll
func tick(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}
