package tui

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/services"
)

// Runner drives a bubbletea program from a CountdownService.
type Runner struct {
	svc     *services.CountdownService
	theme   *config.ThemeConfig
	updates chan domain.Timer

	mu      sync.RWMutex
	program *tea.Program
}

// NewRunner creates a runner for svc. It subscribes to svc, so it must be
// called before the service's event loop starts.
func NewRunner(svc *services.CountdownService, theme *config.ThemeConfig) *Runner {
	r := &Runner{
		svc:     svc,
		theme:   theme,
		updates: make(chan domain.Timer, 1),
	}
	svc.OnChange(r.publish)
	return r
}

// publish keeps only the latest timer so the event loop never waits on the UI.
func (r *Runner) publish(t domain.Timer) {
	select {
	case <-r.updates:
	default:
	}
	select {
	case r.updates <- t:
	default:
	}
}

// Run starts the interface and blocks until the user quits or ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := NewModel(r.svc.Snapshot(), r.theme)
	model.SetDispatch(func(ev domain.Event) (domain.Timer, error) {
		return r.svc.Dispatch(ctx, ev)
	})

	program := tea.NewProgram(model, tea.WithAltScreen())
	r.mu.Lock()
	r.program = program
	r.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				r.Stop()
				return
			case t := <-r.updates:
				program.Send(timerMsg(t))
			}
		}
	}()

	_, err := program.Run()

	cancel()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// Stop quits the interface if it is running. Run calls it when its context
// is cancelled.
func (r *Runner) Stop() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.program != nil {
		r.program.Quit()
	}
}
