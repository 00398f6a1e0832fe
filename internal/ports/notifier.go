package ports

import "time"

// Notifier alerts the user outside the terminal.
// This is a driven port (implemented by adapters).
type Notifier interface {
	// NotifyExpired is called once when a countdown reaches zero.
	NotifyExpired(duration time.Duration) error
}
