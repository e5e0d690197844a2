package storage

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	logx "remindbot/pkg/logx"
)

const (
	defaultKeepDays      = 30
	defaultPruneSchedule = "0 3 * * *"
)

// Maintenance runs the cron-scheduled retention prune for the delivery
// history. It is a no-op when the store is disabled.
type Maintenance struct {
	c     *cron.Cron
	store Store
	keep  time.Duration
	log   logx.Logger
}

func NewMaintenance(store Store, cfg Config, loc *time.Location, log logx.Logger) (*Maintenance, error) {
	if store == nil {
		return nil, nil
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	if loc == nil {
		loc = time.Local
	}
	keepDays := cfg.KeepDays
	if keepDays <= 0 {
		keepDays = defaultKeepDays
	}
	spec := cfg.PruneSchedule
	if spec == "" {
		spec = defaultPruneSchedule
	}

	m := &Maintenance{
		c:     cron.New(cron.WithLocation(loc)),
		store: store,
		keep:  time.Duration(keepDays) * 24 * time.Hour,
		log:   log,
	}
	if _, err := m.c.AddFunc(spec, m.prune); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Maintenance) Start() {
	if m == nil {
		return
	}
	m.c.Start()
	m.log.Debug("history prune scheduled", logx.Duration("keep", m.keep))
}

func (m *Maintenance) Stop(ctx context.Context) {
	if m == nil {
		return
	}
	select {
	case <-m.c.Stop().Done():
	case <-ctx.Done():
		// best-effort
	}
}

func (m *Maintenance) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-m.keep)
	n, err := m.store.PruneBefore(ctx, cutoff)
	if err != nil {
		m.log.Warn("history prune failed", logx.Err(err))
		return
	}
	if n > 0 {
		m.log.Info("history pruned", logx.Int64("removed", n), logx.Time("cutoff", cutoff))
	}
}
