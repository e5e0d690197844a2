package notifier

import (
	"errors"
	"time"
)

var (
	ErrQueueFull = errors.New("notifier queue full")
	ErrStopped   = errors.New("notifier stopped")
)

// Config controls the outbound pipeline. Retry knobs are intentionally
// absent: delivery is at-most-once and a failed send is never repeated.
type Config struct {
	Workers    int
	QueueSize  int
	RatePerSec int // Telegram tolerates ~30 msg/s globally; default is far below
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 2
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.RatePerSec <= 0 {
		c.RatePerSec = 3
	}
	return c
}

// DeliveryEvent is published on the bus for every attempted send.
// Type "notifier.sent" on success, "notifier.failed" otherwise.
type DeliveryEvent struct {
	OwnerID string
	Kind    string // "reply" | "reminder"
	Text    string
	Error   string
	At      time.Time
}
