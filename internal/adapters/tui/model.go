// Package tui provides the terminal user interface implementation
// using the Bubbletea framework.
package tui

import (
	"fmt"
	"reflect"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
)

// resolveTheme fills any empty string fields in the given ThemeConfig with defaults.
// If theme is nil, returns the full default theme.
func resolveTheme(theme *config.ThemeConfig) config.ThemeConfig {
	defaults := config.DefaultThemeConfig()
	if theme == nil {
		return defaults
	}
	resolved := *theme
	rv := reflect.ValueOf(&resolved).Elem()
	dv := reflect.ValueOf(defaults)
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if f.Kind() == reflect.String && f.String() == "" {
			f.SetString(dv.Field(i).String())
		}
	}
	return resolved
}

// timerMsg carries a timer published by the countdown controller.
type timerMsg domain.Timer

// DispatchFunc delivers a command to the countdown controller and returns
// the resulting timer.
type DispatchFunc func(domain.Event) (domain.Timer, error)

// Model represents the TUI state.
type Model struct {
	timer     domain.Timer
	input     textinput.Model
	width     int
	height    int
	theme     config.ThemeConfig
	dispatch  DispatchFunc
	lastError error
	quitting  bool
}

// NewModel creates a new TUI model showing initial.
func NewModel(initial domain.Timer, theme *config.ThemeConfig) Model {
	input := textinput.New()
	input.Placeholder = "seconds"
	input.Prompt = ""
	input.CharLimit = 6
	input.Width = 8
	input.Focus()

	return Model{
		timer: initial,
		input: input,
		theme: resolveTheme(theme),
	}
}

// SetDispatch routes commands to fn. Without one, commands are reduced
// locally and nothing ticks.
func (m *Model) SetDispatch(fn DispatchFunc) {
	m.dispatch = fn
}

// Timer returns the timer currently displayed.
func (m Model) Timer() domain.Timer {
	return m.timer
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case timerMsg:
		m.timer = domain.Timer(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		// A rejected value stays in the input so it can be corrected.
		ev := domain.SetDurationInput(m.input.Value())
		if err := m.send(ev); err == nil && ev.Seconds > 0 {
			m.input.Reset()
		}
		return m, nil
	case tea.KeyEsc:
		m.input.Reset()
		return m, nil
	case tea.KeySpace:
		m.toggle()
		return m, nil
	case tea.KeyBackspace, tea.KeyDelete, tea.KeyLeft, tea.KeyRight, tea.KeyHome, tea.KeyEnd:
		return m.updateInput(msg)
	case tea.KeyRunes:
		if isDigits(msg.Runes) {
			return m.updateInput(msg)
		}
		// Non-numeric text discards the pending value.
		if msg.Paste || len(msg.Runes) > 1 {
			m.input.Reset()
			return m, nil
		}
		switch msg.Runes[0] {
		case 's':
			m.send(domain.Start())
		case 'p':
			m.send(domain.Pause())
		case 'r':
			m.send(domain.Reset())
		case 'q':
			m.quitting = true
			return m, tea.Quit
		default:
			m.input.Reset()
		}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) toggle() {
	switch {
	case m.timer.CanPause():
		m.send(domain.Pause())
	case m.timer.CanStart():
		m.send(domain.Start())
	}
}

func (m *Model) send(ev domain.Event) error {
	if m.dispatch == nil {
		m.timer, _ = domain.Reduce(m.timer, ev)
		return nil
	}
	timer, err := m.dispatch(ev)
	m.lastError = err
	if err == nil {
		m.timer = timer
	}
	return err
}

func isDigits(runes []rune) bool {
	if len(runes) == 0 {
		return false
	}
	for _, r := range runes {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// stateColor returns the accent color for the current timer state.
func (m Model) stateColor() lipgloss.Color {
	switch m.timer.State() {
	case domain.StateRunning:
		return lipgloss.Color(m.theme.ColorRunning)
	case domain.StateExpired:
		return lipgloss.Color(m.theme.ColorExpired)
	default:
		return lipgloss.Color(m.theme.ColorPaused)
	}
}

// View renders the TUI.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	helpStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorHelp))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorTitle)).MarginBottom(1)

	sections := []string{
		titleStyle.Render(fmt.Sprintf("%s Countdown", m.theme.IconApp)),
		renderBigTime(m.timer.Display(), m.stateColor(), m.width),
		"",
	}

	switch m.timer.State() {
	case domain.StatePaused:
		sections = append(sections, m.badge(fmt.Sprintf("%s PAUSED", m.theme.IconPaused), m.theme.ColorPaused))
	case domain.StateExpired:
		sections = append(sections, m.badge(fmt.Sprintf("%s TIME'S UP", m.theme.IconExpired), m.theme.ColorExpired))
	default:
		sections = append(sections, helpStyle.Render(domain.GetStateLabel(m.timer.State())))
	}

	if m.timer.Duration > 0 {
		sections = append(sections, "", m.progressBar().ViewAs(m.timer.Progress()))
	}

	sections = append(sections,
		"",
		helpStyle.Render("Duration: ")+m.input.View(),
		"",
		m.buttons(),
	)

	if m.lastError != nil {
		errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.ColorExpired))
		sections = append(sections, "", errStyle.Render(fmt.Sprintf("Error: %v", m.lastError)))
	}

	sections = append(sections, "", helpStyle.Render("enter set · space toggle · esc clear · q quit"))

	content := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m Model) badge(text, color string) string {
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color(color)).
		Padding(0, 1).
		Render(text)
}

func (m Model) progressBar() progress.Model {
	var bar progress.Model
	if m.timer.Ticking() {
		bar = progress.New(progress.WithGradient(m.theme.RunningGradientStart, m.theme.RunningGradientEnd))
	} else {
		bar = progress.New(progress.WithGradient(m.theme.PausedGradientStart, m.theme.PausedGradientEnd))
	}
	bar.Width = max(m.width-4, 10)
	return bar
}

// buttons renders the command row, dimming commands the timer would ignore.
func (m Model) buttons() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.button("[s] Start", m.timer.CanStart()),
		"  ",
		m.button("[p] Pause", m.timer.CanPause()),
		"  ",
		m.button("[r] Reset", true),
	)
}

func (m Model) button(label string, enabled bool) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.ColorRunning))
	if !enabled {
		style = lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color(m.theme.ColorDisabled))
	}
	return style.Render(label)
}
