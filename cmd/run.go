package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"
	"github.com/xvierd/countdown-cli/internal/adapters/tui"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/services"
)

var runNoNotify bool

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <duration|preset>",
	Short: "Run a countdown without the fullscreen timer",
	Long: `Run a countdown in the current terminal until it expires.

The duration is whole seconds ("90"), a Go duration ("1m30s") or a preset name.
Press Ctrl+C to abandon the countdown.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeadless,
}

func init() {
	runCmd.Flags().BoolVar(&runNoNotify, "no-notify", false, "Skip the desktop notification when the countdown ends")
}

func runHeadless(cmd *cobra.Command, args []string) error {
	seconds, err := services.ResolveDuration(args[0], app.config.GetPresets())
	if err != nil {
		return err
	}
	if runNoNotify {
		app.config.Notifications.Enabled = false
	}

	out := cmd.OutOrStdout()
	tty, width := terminalInfo(out)

	interrupted := setupSignalHandler()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := newCountdownService()
	expired := make(chan struct{})
	var once sync.Once
	svc.OnChange(func(t domain.Timer) {
		if !jsonOutput {
			printStatus(out, t, tty, width)
		}
		if t.State() == domain.StateExpired {
			once.Do(func() { close(expired) })
		}
	})

	go func() { _ = svc.Run(ctx) }()

	if _, err := svc.Dispatch(ctx, domain.SetDuration(seconds)); err != nil {
		return fmt.Errorf("failed to set duration: %w", err)
	}
	if _, err := svc.Dispatch(ctx, domain.Start()); err != nil {
		return fmt.Errorf("failed to start countdown: %w", err)
	}

	outcome := domain.RunOutcomeCompleted
	select {
	case <-expired:
	case <-interrupted.Done():
		outcome = domain.RunOutcomeAbandoned
	}

	cancel()
	<-svc.Done()
	final := svc.Snapshot()

	if jsonOutput {
		data := map[string]interface{}{
			"duration":  seconds,
			"time_left": final.TimeLeft,
			"elapsed":   seconds - final.TimeLeft,
			"display":   final.Display(),
			"outcome":   string(outcome),
		}
		jsonData, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		fmt.Fprintln(out, string(jsonData))
		return nil
	}

	if tty {
		fmt.Fprintln(out)
	}
	if outcome == domain.RunOutcomeCompleted {
		fmt.Fprintf(out, "%s Time's up! (%s)\n", app.config.Theme.IconExpired, domain.FormatTime(seconds))
	} else {
		fmt.Fprintf(out, "Countdown abandoned with %s left.\n", final.Display())
	}
	return nil
}

// printStatus redraws the status line in place on a terminal and writes one
// line per update otherwise.
func printStatus(out io.Writer, t domain.Timer, tty bool, width int) {
	line := tui.StatusLine(t, &app.config.Theme, width)
	if tty {
		fmt.Fprintf(out, "\r\033[K%s", line)
		return
	}
	fmt.Fprintln(out, line)
}

// terminalInfo reports whether out is a terminal and its width.
func terminalInfo(out io.Writer) (bool, int) {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return false, 80
	}
	w, _, err := term.GetSize(f.Fd())
	if err != nil || w <= 0 {
		return true, 80
	}
	return true, w
}
