package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
)

const inlineBarWidth = 20

// StatusLine renders a single-line view of t for the headless run command.
// A width under 40 drops the progress bar.
func StatusLine(t domain.Timer, theme *config.ThemeConfig, width int) string {
	th := resolveTheme(theme)

	icon := th.IconApp
	color := th.ColorRunning
	switch t.State() {
	case domain.StatePaused:
		icon, color = th.IconPaused, th.ColorPaused
	case domain.StateExpired:
		icon, color = th.IconExpired, th.ColorExpired
	}

	timeStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(th.ColorHelp))

	line := fmt.Sprintf("%s %s  %s", icon, timeStyle.Render(t.Display()), labelStyle.Render(domain.GetStateLabel(t.State())))
	if width < 40 {
		return line
	}

	bar := progress.New(
		progress.WithGradient(th.RunningGradientStart, th.RunningGradientEnd),
		progress.WithoutPercentage(),
	)
	bar.Width = inlineBarWidth
	return line + "  " + bar.ViewAs(t.Progress())
}
