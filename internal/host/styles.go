package host

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/orbis-ime/internal/imedialog"
	"github.com/muurk/orbis-ime/internal/ui"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(ui.PrimaryColor).
			Bold(true).
			PaddingLeft(1)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(ui.MutedColor).
				Italic(true)

	cursorStyle = lipgloss.NewStyle().
			Reverse(true)

	counterStyle = lipgloss.NewStyle().
			Foreground(ui.MutedColor).
			PaddingLeft(1)

	helpStyle = lipgloss.NewStyle().
			PaddingLeft(1)
)

// inputBoxStyle colours the border by dialog state
func inputBoxStyle(width int, state imedialog.State) lipgloss.Style {
	border := ui.PrimaryColor
	switch state {
	case imedialog.StateConfirmed:
		border = ui.SuccessColor
	case imedialog.StateCancelled:
		border = ui.WarningColor
	case imedialog.StateAborted:
		border = ui.ErrorColor
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Width(width - 2).
		Padding(0, 1)
}
