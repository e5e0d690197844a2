package storage

import (
	"context"
	"errors"
	"strings"
	"time"

	logx "remindbot/pkg/logx"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures storage.
//
// Driver values:
//   - "sqlite": SQLite database file
//   - "" or "none": storage disabled (history commands degrade gracefully)
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // 0 means driver default

	// Retention for delivery history.
	KeepDays      int    // prune entries older than this many days (default 30)
	PruneSchedule string // cron spec for the prune job (default "0 3 * * *")
}

// DeliveryEntry records one attempted outbound send.
type DeliveryEntry struct {
	At      time.Time
	OwnerID string
	Kind    string // "reply" | "reminder"
	Text    string
	OK      bool
	Error   string
}

// Store is the minimal persistence API used by the app.
type Store interface {
	AppendDelivery(ctx context.Context, e DeliveryEntry) error
	RecentDeliveries(ctx context.Context, ownerID string, limit int) ([]DeliveryEntry, error)
	PruneBefore(ctx context.Context, cutoff time.Time) (int64, error)
	Close() error
}

// Open initializes the configured store.
// It returns (nil, nil) if storage is disabled.
func Open(cfg Config, log logx.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" || driver == "none" {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}

	switch driver {
	case "sqlite", "sqlite3":
		return openSQLite(cfg, log)
	default:
		return nil, errors.New("unknown storage driver: " + driver)
	}
}
