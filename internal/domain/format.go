package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatTime formats seconds as MM:SS. Minutes are not wrapped into hours.
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// ParseSeconds parses a duration entered by the user. Plain integers are
// seconds; anything else must be a Go duration string such as "1m30s",
// truncated to whole seconds. The result is always positive.
func ParseSeconds(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, ErrInvalidDuration
	}

	if n, err := strconv.Atoi(raw); err == nil {
		if n <= 0 {
			return 0, ErrInvalidDuration
		}
		return n, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, raw)
	}
	seconds := int(d / time.Second)
	if seconds <= 0 {
		return 0, ErrInvalidDuration
	}
	return seconds, nil
}
