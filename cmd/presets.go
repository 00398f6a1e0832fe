package cmd

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/services"
)

// presetsCmd represents the presets command
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List named countdown durations",
	Long: `List the named durations that can be passed to "countdown" and "countdown run".
Names may be abbreviated; "pomo" finds "pomodoro".`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		presets := app.config.GetPresets()

		if jsonOutput {
			list := make([]map[string]interface{}, 0, len(presets))
			for _, p := range presets {
				list = append(list, map[string]interface{}{
					"name":     p.Name,
					"duration": int(p.Duration / time.Second),
					"display":  domain.FormatTime(int(p.Duration / time.Second)),
				})
			}
			jsonData, err := json.MarshalIndent(map[string]interface{}{"presets": list}, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal presets: %w", err)
			}
			fmt.Fprintln(out, string(jsonData))
			return nil
		}

		if len(presets) == 0 {
			fmt.Fprintln(out, `No presets. Add one with "countdown presets set <name> <duration>".`)
			return nil
		}

		fmt.Fprintln(out, "Presets:")
		for _, p := range presets {
			fmt.Fprintf(out, "  %-10s %s\n", p.Name, formatMinutes(p.Duration))
		}
		fmt.Fprintf(out, "\nDefault: %s\n", formatMinutes(time.Duration(app.config.DefaultDuration)))
		return nil
	},
}

var presetsSetCmd = &cobra.Command{
	Use:   "set <name> <duration>",
	Short: "Add or change a preset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.ToLower(strings.TrimSpace(args[0]))
		if name == "" {
			return fmt.Errorf("preset name cannot be empty")
		}
		if _, err := domain.ParseSeconds(name); err == nil {
			return fmt.Errorf("preset name %q looks like a duration", name)
		}

		seconds, err := domain.ParseSeconds(args[1])
		if err != nil {
			return err
		}

		err = editPresets(func(presets map[string]config.Duration) {
			presets[name] = config.Duration(time.Duration(seconds) * time.Second)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Preset %q set to %s.\n", name, domain.FormatTime(seconds))
		return nil
	},
}

var presetsRmCmd = &cobra.Command{
	Use:     "rm <name>",
	Aliases: []string{"delete"},
	Short:   "Remove a preset",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		preset, err := services.FindPreset(args[0], app.config.GetPresets())
		if err != nil {
			return err
		}
		// Fuzzy matches are not removed without the exact name.
		if !strings.EqualFold(preset.Name, strings.TrimSpace(args[0])) {
			return fmt.Errorf("%w: %q (did you mean %q?)", domain.ErrUnknownPreset, args[0], preset.Name)
		}

		err = editPresets(func(presets map[string]config.Duration) {
			delete(presets, preset.Name)
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Preset %q removed.\n", preset.Name)
		return nil
	},
}

// editPresets rewrites the presets in the config file. Only the presets
// change; everything else is kept as written on disk.
func editPresets(fn func(map[string]config.Duration)) error {
	if app.configErr != nil {
		return fmt.Errorf("refusing to save presets, config file could not be loaded: %w", app.configErr)
	}

	err := config.Edit(func(cfg *config.Config) {
		if cfg.Presets == nil {
			cfg.Presets = make(map[string]config.Duration)
		}
		fn(cfg.Presets)
		app.config.Presets = cfg.Presets
	})
	if err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}

func init() {
	presetsCmd.AddCommand(presetsSetCmd)
	presetsCmd.AddCommand(presetsRmCmd)
}
