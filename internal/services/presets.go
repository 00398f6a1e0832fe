package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
)

// ResolveDuration turns a CLI argument into whole seconds. The argument is
// either a duration ("90", "1m30s") or the name of a configured preset,
// matched exactly first and then fuzzily.
func ResolveDuration(arg string, presets []config.Preset) (int, error) {
	arg = strings.TrimSpace(arg)
	if seconds, err := domain.ParseSeconds(arg); err == nil {
		return seconds, nil
	}

	preset, err := FindPreset(arg, presets)
	if err != nil {
		return 0, err
	}
	seconds := int(preset.Duration / time.Second)
	if seconds <= 0 {
		return 0, fmt.Errorf("%w: preset %q has duration %s", domain.ErrInvalidDuration, preset.Name, preset.Duration)
	}
	return seconds, nil
}

// FindPreset does an exact, then fuzzy, search for a preset by name.
func FindPreset(query string, presets []config.Preset) (config.Preset, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return config.Preset{}, domain.ErrUnknownPreset
	}

	names := make([]string, len(presets))
	for i, p := range presets {
		if strings.ToLower(p.Name) == query {
			return p, nil
		}
		names[i] = p.Name
	}

	// Matches are sorted best first.
	matches := fuzzy.Find(query, names)
	if len(matches) == 0 || matches[0].Score <= 0 {
		return config.Preset{}, fmt.Errorf("%w: %q", domain.ErrUnknownPreset, query)
	}
	return presets[matches[0].Index], nil
}
