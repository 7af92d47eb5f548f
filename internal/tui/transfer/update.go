package transfer

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		if m.bar.Width > 60 {
			m.bar.Width = 60
		}
		return m, nil

	case eventMsg:
		if !msg.ok {
			// Channel closed: the producer is gone
			m.done = true
			return m, tea.Quit
		}
		return m.applyEvent(msg.event)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m Model) applyEvent(ev Event) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{waitForEvent(m.events)}

	switch ev.Kind {
	case EventStart:
		m.current = ev.Name
		m.percent = -1
		m.received = 0
		m.total = ev.Total
		m.active = true

	case EventProgress:
		m.received = ev.Received
		m.total = ev.Total
		m.percent = ev.Percent
		if m.percent >= 0 {
			cmds = append(cmds, m.bar.SetPercent(float64(m.percent)/100))
		}

	case EventDone:
		m.active = false
		if ev.Err != nil {
			m.failed = append(m.failed, failedItem{name: ev.Name, err: ev.Err})
		} else {
			m.completed++
		}

	case EventFinished:
		m.done = true
		return m, tea.Quit
	}

	return m, tea.Batch(cmds...)
}
