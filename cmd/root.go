// Package cmd provides the CLI commands for the countdown application.
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/countdown-cli/internal/adapters/tui"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/services"
)

var (
	// Version info (set at build time via ldflags)
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"

	// Global flags
	dbPath     string
	jsonOutput bool
	logFile    string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "countdown [duration|preset]",
	Short: "Countdown - A terminal countdown timer",
	Long: `Countdown is a terminal countdown timer with start, pause and reset.

Run "countdown" to open the timer, optionally with a starting duration
such as "90", "25m" or the name of a preset like "tea".`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeServices()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return cleanupServices()
	},
	RunE: runInteractive,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the history database (default: ~/.countdown/countdown.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output results in JSON format")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write debug logs to this file")

	// Set version - cobra handles --version automatically
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("Countdown CLI\nVersion: {{.Version}}\n")

	// Add subcommands
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(presetsCmd)
}

// runInteractive opens the fullscreen timer.
func runInteractive(cmd *cobra.Command, args []string) error {
	seconds, err := initialSeconds(args)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(setupSignalHandler())
	defer cancel()

	svc := newCountdownService()
	runner := tui.NewRunner(svc, &app.config.Theme)

	go func() { _ = svc.Run(ctx) }()

	if seconds > 0 {
		if _, err := svc.Dispatch(ctx, domain.SetDuration(seconds)); err != nil {
			return fmt.Errorf("failed to set duration: %w", err)
		}
	}

	runErr := runner.Run(ctx)

	cancel()
	<-svc.Done()

	if runErr != nil {
		return fmt.Errorf("timer error: %w", runErr)
	}
	return nil
}

// initialSeconds resolves the optional positional argument, falling back to
// the configured default duration.
func initialSeconds(args []string) (int, error) {
	if len(args) > 0 {
		return services.ResolveDuration(args[0], app.config.GetPresets())
	}
	return int(time.Duration(app.config.DefaultDuration) / time.Second), nil
}

// formatMinutes formats a duration as a human-friendly string like "25m" or "1h30m".
func formatMinutes(d time.Duration) string {
	if d >= time.Hour {
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	}
	if d < time.Minute || d%time.Minute != 0 {
		return d.Round(time.Second).String()
	}
	return fmt.Sprintf("%dm", int(d.Minutes()))
}
