// Package notification provides desktop notification utilities.
package notification

import (
	"fmt"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/xvierd/countdown-cli/internal/config"
	"github.com/xvierd/countdown-cli/internal/domain"
	"github.com/xvierd/countdown-cli/internal/ports"
)

// Notifier handles desktop notifications.
type Notifier struct {
	cfg    *config.NotificationConfig
	notify func(title, message string) error
	beep   func() error
}

// Ensure Notifier implements ports.Notifier.
var _ ports.Notifier = (*Notifier)(nil)

// New creates a new notifier with the given configuration.
func New(cfg *config.NotificationConfig) *Notifier {
	return &Notifier{
		cfg:    cfg,
		notify: func(title, message string) error {
			return beeep.Notify(title, message, "")
		},
		beep: func() error {
			return beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
		},
	}
}

// Notify displays a desktop notification if enabled.
func (n *Notifier) Notify(title, message string) error {
	if !n.IsEnabled() {
		return nil
	}

	return n.notify(title, message)
}

// NotifyExpired displays a notification, and beeps if sound is on, when a countdown ends.
func (n *Notifier) NotifyExpired(duration time.Duration) error {
	if !n.IsEnabled() {
		return nil
	}

	seconds := int(duration / time.Second)
	title := "⏰ Time's up!"
	message := fmt.Sprintf("Your %s countdown has finished.", domain.FormatTime(seconds))
	if err := n.Notify(title, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	if n.cfg.Sound {
		if err := n.beep(); err != nil {
			return fmt.Errorf("failed to beep: %w", err)
		}
	}
	return nil
}

// IsEnabled returns true if notifications are enabled.
func (n *Notifier) IsEnabled() bool {
	return n.cfg != nil && n.cfg.Enabled
}
