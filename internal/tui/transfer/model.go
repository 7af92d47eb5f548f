package transfer

import (
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubbletea model for transfer progress. It renders a
// determinate bar while the total size is known and falls back to a
// spinner with a byte counter when it is not.
type Model struct {
	events <-chan Event

	// Current item state
	current  string
	percent  int
	received int64
	total    int64
	active   bool

	// Session totals
	completed int
	failed    []failedItem

	bar      progress.Model
	spin     spinner.Model
	width    int
	quitting bool
	done     bool
}

type failedItem struct {
	name string
	err  error
}

// NewModel creates a transfer progress model fed by events
func NewModel(events <-chan Event) Model {
	bar := progress.New(progress.WithDefaultGradient())

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		events:  events,
		percent: -1,
		bar:     bar,
		spin:    s,
	}
}

// Init starts listening for events
func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForEvent(m.events), m.spin.Tick)
}

// Failed returns the items that failed during the session
func (m Model) Failed() []failedItem {
	return m.failed
}

// waitForEvent blocks on the event channel as a tea command
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return eventMsg{event: ev, ok: ok}
	}
}
