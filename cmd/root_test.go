package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
)

// executeCmd is a helper to execute a cobra command in tests
func executeCmd(cmd *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	bufOut := new(bytes.Buffer)
	bufErr := new(bytes.Buffer)

	cmd.SetOut(bufOut)
	cmd.SetErr(bufErr)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return bufOut.String(), bufErr.String(), err
}

// setupTestHome points config and history at a temporary home directory
// and clears flag values left over from earlier executions.
func setupTestHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)

	dbPath = ""
	jsonOutput = false
	logFile = ""
	historyLimit = 0
	historyClear = false
	runNoNotify = false

	t.Cleanup(func() { _ = cleanupServices() })
	return home
}

// TestRootCmd_Use verifies the root command accepts an optional duration.
func TestRootCmd_Use(t *testing.T) {
	if rootCmd == nil {
		t.Fatal("rootCmd should not be nil")
	}

	if rootCmd.Use != "countdown [duration|preset]" {
		t.Errorf("rootCmd.Use = %q, want %q", rootCmd.Use, "countdown [duration|preset]")
	}

	if err := rootCmd.Args(rootCmd, []string{"a", "b"}); err == nil {
		t.Error("rootCmd should reject more than one argument")
	}
}

// TestRootCmd_Help tests the --help flag
func TestRootCmd_Help(t *testing.T) {
	setupTestHome(t)
	stdout, _, err := executeCmd(rootCmd, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}

	for _, want := range []string{"countdown", "run", "history", "presets"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

// TestRootCmd_Flags tests that global flags are registered
func TestRootCmd_Flags(t *testing.T) {
	for _, name := range []string{"db", "json", "log-file"} {
		if rootCmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s flag should be registered", name)
		}
	}
}

// TestFormatMinutes tests the formatMinutes helper function
func TestFormatMinutes(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"25 minutes", 25 * time.Minute, "25m"},
		{"60 minutes", 60 * time.Minute, "1h"},
		{"90 minutes", 90 * time.Minute, "1h30m"},
		{"120 minutes", 120 * time.Minute, "2h"},
		{"90 seconds", 90 * time.Second, "1m30s"},
		{"45 seconds", 45 * time.Second, "45s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatMinutes(tt.duration)
			if got != tt.want {
				t.Errorf("formatMinutes(%v) = %q, want %q", tt.duration, got, tt.want)
			}
		})
	}
}

func TestInitialSeconds(t *testing.T) {
	app.config = config.DefaultConfig()

	got, err := initialSeconds(nil)
	require.NoError(t, err)
	assert.Equal(t, 300, got)

	got, err = initialSeconds([]string{"tea"})
	require.NoError(t, err)
	assert.Equal(t, 180, got)

	got, err = initialSeconds([]string{"45"})
	require.NoError(t, err)
	assert.Equal(t, 45, got)

	_, err = initialSeconds([]string{"nonsense"})
	assert.ErrorIs(t, err, domain.ErrUnknownPreset)
}

func TestPresetsCmd_List(t *testing.T) {
	setupTestHome(t)

	stdout, _, err := executeCmd(rootCmd, "presets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pomodoro")
	assert.Contains(t, stdout, "25m")
	assert.Contains(t, stdout, "Default: 5m")
}

func TestPresetsCmd_JSON(t *testing.T) {
	setupTestHome(t)

	stdout, _, err := executeCmd(rootCmd, "presets", "--json")
	require.NoError(t, err)

	var data struct {
		Presets []struct {
			Name     string `json:"name"`
			Duration int    `json:"duration"`
		} `json:"presets"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &data))
	require.NotEmpty(t, data.Presets)
	assert.Equal(t, "break", data.Presets[0].Name)
	assert.Equal(t, 300, data.Presets[0].Duration)
}

func TestPresetsCmd_SetAndRemove(t *testing.T) {
	setupTestHome(t)

	stdout, _, err := executeCmd(rootCmd, "presets", "set", "Nap", "20m")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"nap" set to 20:00`)

	stdout, _, err = executeCmd(rootCmd, "presets")
	require.NoError(t, err)
	assert.Contains(t, stdout, "nap")

	_, _, err = executeCmd(rootCmd, "presets", "rm", "na")
	assert.ErrorIs(t, err, domain.ErrUnknownPreset, "fuzzy names must not delete")

	stdout, _, err = executeCmd(rootCmd, "presets", "rm", "nap")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"nap" removed`)

	stdout, _, err = executeCmd(rootCmd, "presets")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "nap")
}

func TestPresetsCmd_SetKeepsRunOnlySettings(t *testing.T) {
	home := setupTestHome(t)
	logPath := filepath.Join(home, "once.log")

	_, _, err := executeCmd(rootCmd, "presets", "set", "nap", "20m", "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, ".countdown", "config.toml"))
	require.NoError(t, err)
	saved := string(data)

	assert.Contains(t, saved, "nap")
	assert.Contains(t, saved, "~/.countdown")
	assert.NotContains(t, saved, "once.log", "--log-file must not be persisted")
	assert.NotContains(t, saved, home, "paths must not be expanded on save")
}

func TestPresetsCmd_RefusesWhenConfigUnreadable(t *testing.T) {
	home := setupTestHome(t)
	configPath := filepath.Join(home, ".countdown", "config.toml")
	broken := []byte("presets = [unclosed\n")
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0750))
	require.NoError(t, os.WriteFile(configPath, broken, 0600))

	_, _, err := executeCmd(rootCmd, "presets", "set", "nap", "20m")
	assert.Error(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, broken, data, "an unreadable config must not be overwritten")
}

func TestPresetsCmd_SetRejectsBadInput(t *testing.T) {
	setupTestHome(t)

	_, _, err := executeCmd(rootCmd, "presets", "set", "nap", "soon")
	assert.ErrorIs(t, err, domain.ErrInvalidDuration)

	_, _, err = executeCmd(rootCmd, "presets", "set", "90", "5m")
	assert.Error(t, err)
}

func TestHistoryCmd_Empty(t *testing.T) {
	setupTestHome(t)

	stdout, _, err := executeCmd(rootCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No countdowns yet.")
}

func TestRunCmd_UnknownPreset(t *testing.T) {
	setupTestHome(t)

	_, _, err := executeCmd(rootCmd, "run", "xyz", "--no-notify")
	assert.True(t, errors.Is(err, domain.ErrUnknownPreset), "err = %v", err)
}

func TestRunCmd_CompletesAndRecordsHistory(t *testing.T) {
	home := setupTestHome(t)
	db := filepath.Join(home, "runs.db")

	stdout, _, err := executeCmd(rootCmd, "run", "1", "--no-notify", "--json", "--db", db)
	require.NoError(t, err)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "completed", result["outcome"])
	assert.Equal(t, "00:00", result["display"])
	assert.EqualValues(t, 1, result["elapsed"])

	stdout, _, err = executeCmd(rootCmd, "history", "--json", "--db", db)
	require.NoError(t, err)

	var history struct {
		Count int `json:"count"`
		Runs  []struct {
			Outcome  string `json:"outcome"`
			Duration int    `json:"duration"`
		} `json:"runs"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &history))
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "completed", history.Runs[0].Outcome)
	assert.Equal(t, 1, history.Runs[0].Duration)

	stdout, _, err = executeCmd(rootCmd, "history", "--clear", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted 1 run.")
}

func TestGetOutcomeIcon(t *testing.T) {
	tests := []struct {
		outcome  domain.RunOutcome
		expected string
	}{
		{domain.RunOutcomeCompleted, "✅"},
		{domain.RunOutcomeAbandoned, "⏹️"},
		{domain.RunOutcome("unknown"), "❓"},
	}

	for _, tt := range tests {
		t.Run(string(tt.outcome), func(t *testing.T) {
			if got := getOutcomeIcon(tt.outcome); got != tt.expected {
				t.Errorf("getOutcomeIcon(%q) = %q, want %q", tt.outcome, got, tt.expected)
			}
		})
	}
}
