package sched

import (
	"time"
)

// Payload carries everything delivery needs, captured at scheduling time.
// It is never re-read from the originating reminder after Put.
type Payload struct {
	OwnerID     string
	Label       string
	TriggerAt   time.Time
	LeadMinutes int
}

// Job is the schedulable unit derived 1:1 from a reminder.
type Job struct {
	ID      string
	OwnerID string
	FireAt  time.Time // TriggerAt minus lead
	Payload Payload
}

// JobID is the deterministic dedup key: resubmitting the same owner and
// trigger instant replaces the prior job instead of duplicating it.
func JobID(ownerID string, triggerAt time.Time) string {
	return ownerID + "|" + triggerAt.UTC().Format(time.RFC3339)
}

// Config controls the scheduler timing loop.
//
// All fields have safe defaults; see New.
type Config struct {
	// PollInterval is how often the loop claims due jobs.
	PollInterval time.Duration
	// GraceWindow is how late a fire may run and still count as on-time.
	// Later fires are still attempted, but logged as late deliveries.
	GraceWindow time.Duration
	// DispatchTimeout bounds each delivery call so a slow gateway cannot
	// stall unrelated reminders.
	DispatchTimeout time.Duration
}

const (
	defaultPollInterval    = 1 * time.Second
	defaultGraceWindow     = 5 * time.Minute
	defaultDispatchTimeout = 10 * time.Second
)

func (c Config) withDefaults() Config {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.GraceWindow <= 0 {
		c.GraceWindow = defaultGraceWindow
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = defaultDispatchTimeout
	}
	return c
}

// Snapshot is a point-in-time view for /status output.
type Snapshot struct {
	Pending         int
	PollInterval    time.Duration
	GraceWindow     time.Duration
	DispatchTimeout time.Duration
}
