// Package config loads, validates, and hot-reloads the bot configuration.
//
// Both YAML and JSON files are accepted; YAML is coerced to JSON so a
// single strict decoder (DisallowUnknownFields) covers both formats.
package config

type Config struct {
	Telegram TelegramConfig `json:"telegram"`
	Logging  LoggingConfig  `json:"logging"`
	Reminder ReminderConfig `json:"reminder"`
	Notifier NotifierConfig `json:"notifier,omitempty"`
	Storage  StorageConfig  `json:"storage,omitempty"`
}

type TelegramConfig struct {
	Token string `json:"token"`
	// PollTimeout is a Go duration string (e.g. "10s", "2m").
	PollTimeout string `json:"poll_timeout,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file,omitempty"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// ReminderConfig controls the parse-and-schedule core.
//
// All durations are Go duration strings (e.g. "1s", "5m").
type ReminderConfig struct {
	// Timezone is the fixed reference zone year-less dates resolve in.
	// IANA name, default "Asia/Taipei".
	Timezone string `json:"timezone,omitempty"`

	// DefaultLeadMinutes is used when the message has no lead-time text.
	// Default 15.
	DefaultLeadMinutes int `json:"default_lead_minutes,omitempty"`

	PollInterval    string `json:"poll_interval,omitempty"`    // default "1s"
	GraceWindow     string `json:"grace_window,omitempty"`     // default "5m"
	DispatchTimeout string `json:"dispatch_timeout,omitempty"` // default "10s"
}

type NotifierConfig struct {
	Workers    int `json:"workers,omitempty"`
	QueueSize  int `json:"queue_size,omitempty"`
	RatePerSec int `json:"rate_per_sec,omitempty"`
}

// StorageConfig controls the optional delivery-history database.
//
// Example:
//
//	"storage": { "driver": "sqlite", "path": "./remindbot.db" }
type StorageConfig struct {
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string

	KeepDays      int    `json:"keep_days,omitempty"`      // history retention, default 30
	PruneSchedule string `json:"prune_schedule,omitempty"` // cron spec, default "0 3 * * *"
}
