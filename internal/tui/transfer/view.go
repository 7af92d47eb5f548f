package transfer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles with adaptive colors for light/dark backgrounds
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"})

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"})

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"}).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "34", Dark: "10"}).
			Bold(true)
)

// View renders the transfer progress
func (m Model) View() string {
	if m.quitting {
		return "Canceled.\n"
	}

	var b strings.Builder

	if m.active {
		b.WriteString(titleStyle.Render(m.current))
		b.WriteString("\n")

		if m.percent >= 0 {
			b.WriteString(m.bar.View())
			b.WriteString(fmt.Sprintf(" %3d%%", m.percent))
		} else {
			// Unknown total: spinner plus received byte count
			b.WriteString(m.spin.View())
			b.WriteString(" " + formatBytes(m.received))
		}
		b.WriteString("\n")
	}

	if m.completed > 0 || len(m.failed) > 0 {
		b.WriteString(countStyle.Render(
			fmt.Sprintf("%d completed, %d failed", m.completed, len(m.failed))))
		b.WriteString("\n")
	}

	if m.done {
		if len(m.failed) == 0 {
			b.WriteString(successStyle.Render("✓ All transfers finished"))
		} else {
			for _, f := range m.failed {
				b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", f.name, f.err)))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
